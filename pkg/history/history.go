// Package history is the undo/redo command log. Each entry carries full
// before and after snapshots of the affected macro and its note, so
// inversion is a data copy rather than a re-derivation.
//
// The log survives between CLI invocations: entries live under a
// .history directory inside the data directory, one file per entry,
// split into undo and redo stacks.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/macromouse/pkg/macro"
	"tableflip.dev/macromouse/pkg/store"
	"tableflip.dev/macromouse/pkg/usage"
)

// Capacity bounds the undo stack. The oldest entry is evicted silently
// when a new record would exceed it.
const Capacity = 20

// Dir is the history directory name inside the data directory.
const Dir = ".history"

// Kind tags the operation an entry reverses.
type Kind string

const (
	KindAddMacro    Kind = "add-macro"
	KindEditMacro   Kind = "edit-macro"
	KindDeleteMacro Kind = "delete-macro"
	KindEditNotes   Kind = "edit-notes"
)

// Snapshot captures one side (before or after) of an operation. A nil
// Macro means the macro does not exist on that side; a nil Note means
// no note exists on that side.
type Snapshot struct {
	Macro *macro.Macro `json:"macro,omitempty"`
	Note  *usage.Note  `json:"note,omitempty"`
}

// Entry is one reversible operation.
type Entry struct {
	Seq      int64           `json:"seq"`
	Kind     Kind            `json:"kind"`
	MacroID  string          `json:"macroId"`
	Before   Snapshot        `json:"before"`
	After    Snapshot        `json:"after"`
	Recorded macro.Timestamp `json:"recorded"`
}

// AddMacro records a macro creation.
func AddMacro(after *macro.Macro) Entry {
	return Entry{
		Kind:     KindAddMacro,
		MacroID:  after.ID,
		After:    Snapshot{Macro: after.Clone()},
		Recorded: macro.Now(),
	}
}

// EditMacro records a macro update, including the note that rode along
// under the macro's id on both sides.
func EditMacro(before, after *macro.Macro, beforeNote, afterNote *usage.Note) Entry {
	return Entry{
		Kind:     KindEditMacro,
		MacroID:  after.ID,
		Before:   Snapshot{Macro: before.Clone(), Note: cloneNote(beforeNote)},
		After:    Snapshot{Macro: after.Clone(), Note: cloneNote(afterNote)},
		Recorded: macro.Now(),
	}
}

// DeleteMacro records a macro removal.
func DeleteMacro(before *macro.Macro, beforeNote *usage.Note) Entry {
	return Entry{
		Kind:     KindDeleteMacro,
		MacroID:  before.ID,
		Before:   Snapshot{Macro: before.Clone(), Note: cloneNote(beforeNote)},
		Recorded: macro.Now(),
	}
}

// EditNotes records a note change on an unchanged macro.
func EditNotes(m *macro.Macro, before, after *usage.Note) Entry {
	return Entry{
		Kind:     KindEditNotes,
		MacroID:  m.ID,
		Before:   Snapshot{Macro: m.Clone(), Note: cloneNote(before)},
		After:    Snapshot{Macro: m.Clone(), Note: cloneNote(after)},
		Recorded: macro.Now(),
	}
}

func cloneNote(n *usage.Note) *usage.Note {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// Applier is what replaying a snapshot needs from the rest of the app.
// *store.Store provides the macro methods, *usage.Tables the note one.
type Applier interface {
	RestoreMacro(m *macro.Macro) error
	DeleteMacro(id string) error
	RestoreNote(id string, note *usage.Note) error
}

// Log is the persisted pair of stacks.
type Log struct {
	d *diskv.Diskv
}

// Open loads (or creates) the history store under dir.
func Open(dir string) (*Log, error) {
	if dir == "" {
		return nil, errors.New("history: directory required")
	}
	return &Log{d: diskv.New(diskv.Options{
		BasePath:          dir,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}, nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return &diskv.PathKey{Path: []string{}, FileName: s}
	}
	return &diskv.PathKey{Path: []string{parts[0]}, FileName: parts[1]}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

func stackKey(stack string, seq int64) string {
	return fmt.Sprintf("%s-%012d", stack, seq)
}

// seqs returns the sequence numbers on one stack, ascending.
func (l *Log) seqs(stack string) []int64 {
	out := make([]int64, 0)
	prefix := stack + "-"
	for key := range l.d.Keys(nil) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		n, err := strconv.ParseInt(key[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (l *Log) read(stack string, seq int64) (Entry, error) {
	data, err := l.d.Read(stackKey(stack, seq))
	if err != nil {
		return Entry{}, fmt.Errorf("history: read entry %d: %w", seq, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("history: decode entry %d: %w", seq, err)
	}
	return e, nil
}

func (l *Log) write(stack string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("history: encode entry: %w", err)
	}
	if err := l.d.Write(stackKey(stack, e.Seq), data); err != nil {
		return fmt.Errorf("history: write entry: %w", err)
	}
	return nil
}

// Depth reports the undo stack size.
func (l *Log) Depth() int {
	return len(l.seqs("undo"))
}

// RedoDepth reports the redo stack size.
func (l *Log) RedoDepth() int {
	return len(l.seqs("redo"))
}

// Record pushes a new entry onto the undo stack. Any redoable entries
// are discarded (linear history), and the oldest undo entry is evicted
// once the stack exceeds Capacity.
func (l *Log) Record(e Entry) error {
	next := int64(1)
	undo := l.seqs("undo")
	if len(undo) > 0 {
		next = undo[len(undo)-1] + 1
	}
	for _, seq := range l.seqs("redo") {
		if seq >= next {
			next = seq + 1
		}
		if err := l.d.Erase(stackKey("redo", seq)); err != nil {
			return fmt.Errorf("history: clear redo: %w", err)
		}
	}
	e.Seq = next
	if err := l.write("undo", e); err != nil {
		return err
	}
	undo = append(undo, next)
	for len(undo) > Capacity {
		if err := l.d.Erase(stackKey("undo", undo[0])); err != nil {
			return fmt.Errorf("history: evict oldest: %w", err)
		}
		undo = undo[1:]
	}
	return nil
}

// Undo pops the most recent entry, applies its before-side, and moves
// the entry to the redo stack. The second return is false when there is
// nothing to undo.
func (l *Log) Undo(a Applier) (Entry, bool, error) {
	return l.shift("undo", "redo", a, func(e Entry) Snapshot { return e.Before })
}

// Redo re-applies the most recently undone entry and moves it back to
// the undo stack.
func (l *Log) Redo(a Applier) (Entry, bool, error) {
	return l.shift("redo", "undo", a, func(e Entry) Snapshot { return e.After })
}

func (l *Log) shift(from, to string, a Applier, side func(Entry) Snapshot) (Entry, bool, error) {
	seqs := l.seqs(from)
	if len(seqs) == 0 {
		return Entry{}, false, nil
	}
	seq := seqs[len(seqs)-1]
	e, err := l.read(from, seq)
	if err != nil {
		return Entry{}, false, err
	}
	if err := apply(a, e.MacroID, side(e)); err != nil {
		return Entry{}, false, err
	}
	if err := l.write(to, e); err != nil {
		return Entry{}, false, err
	}
	if err := l.d.Erase(stackKey(from, seq)); err != nil {
		return Entry{}, false, fmt.Errorf("history: pop entry: %w", err)
	}
	return e, true, nil
}

// apply makes the world look like one side of an entry: the macro is
// upserted or removed, then the note under its id is reinstated or
// cleared.
func apply(a Applier, id string, s Snapshot) error {
	if s.Macro != nil {
		if err := a.RestoreMacro(s.Macro); err != nil {
			return err
		}
	} else if err := a.DeleteMacro(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return a.RestoreNote(id, s.Note)
}
