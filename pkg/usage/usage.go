// Package usage holds the per-macro side tables: copy counts, free-form
// notes, and leave-raw placeholder preferences. Each table is a small
// JSON file beside the macro document.
//
// Tables are keyed by macro id. Older data files keyed entries by
// "category|||name" (or bare macro name for leave-raw preferences);
// those keys are migrated to ids on load by resolving names against the
// current document. Keys that no longer resolve are kept as-is so no
// data is dropped.
package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"tableflip.dev/macromouse/pkg/macro"
)

const (
	CountsFile      = "usage_counts.json"
	NotesFile       = "usage_notes.json"
	LeaveRawFile    = "leave_raw_preferences.json"
	legacySeparator = "|||"
)

// Note is a free-form annotation on a macro.
type Note struct {
	Notes       string          `json:"notes"`
	LastUpdated macro.Timestamp `json:"lastUpdated"`
}

// Tables is the loaded set of side tables. Mutating methods persist
// before returning.
type Tables struct {
	dir string
	Log zerolog.Logger

	counts   map[string]int
	notes    map[string]Note
	leaveRaw map[string]map[string]bool
}

// Open loads the side tables from dir, migrating legacy keys against
// doc. Missing files mean empty tables; a malformed file is logged and
// treated as empty.
func Open(dir string, doc *macro.Document, log zerolog.Logger) (*Tables, error) {
	if dir == "" {
		return nil, errors.New("usage: data directory required")
	}
	t := &Tables{
		dir:      dir,
		Log:      log,
		counts:   make(map[string]int),
		notes:    make(map[string]Note),
		leaveRaw: make(map[string]map[string]bool),
	}
	if err := t.loadJSON(CountsFile, &t.counts); err != nil {
		return nil, err
	}
	if err := t.loadJSON(NotesFile, &t.notes); err != nil {
		return nil, err
	}
	if err := t.loadJSON(LeaveRawFile, &t.leaveRaw); err != nil {
		return nil, err
	}
	t.migrate(doc)
	return t, nil
}

func (t *Tables) loadJSON(name string, target interface{}) error {
	data, err := os.ReadFile(filepath.Join(t.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("usage: read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Log.Error().Err(err).Str("file", name).Msg("malformed side table, starting empty")
	}
	return nil
}

func (t *Tables) saveJSON(name string, source interface{}) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("usage: ensure data directory: %w", err)
	}
	data, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return fmt.Errorf("usage: marshal %s: %w", name, err)
	}
	path := filepath.Join(t.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("usage: write %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}

// migrate rewrites legacy name-based keys to macro ids where a macro
// with that name still exists.
func (t *Tables) migrate(doc *macro.Document) {
	if doc == nil {
		return
	}
	resolve := func(key string) (string, bool) {
		parts := strings.SplitN(key, legacySeparator, 2)
		if len(parts) == 2 {
			if cat := doc.CategoryByName(parts[0]); cat != nil {
				if m := doc.MacroByName(cat.ID, parts[1]); m != nil {
					return m.ID, true
				}
			}
			return "", false
		}
		// Leave-raw legacy files keyed by bare macro name.
		for _, m := range doc.Macros {
			if m.Name == key {
				return m.ID, true
			}
		}
		return "", false
	}
	migrated := false
	for key, count := range t.counts {
		if _, known := doc.Macros[key]; known {
			continue
		}
		if id, ok := resolve(key); ok {
			t.counts[id] += count
			delete(t.counts, key)
			migrated = true
		}
	}
	for key, note := range t.notes {
		if _, known := doc.Macros[key]; known {
			continue
		}
		if id, ok := resolve(key); ok {
			if _, taken := t.notes[id]; !taken {
				t.notes[id] = note
			}
			delete(t.notes, key)
			migrated = true
		}
	}
	for key, tags := range t.leaveRaw {
		if _, known := doc.Macros[key]; known {
			continue
		}
		if id, ok := resolve(key); ok {
			if _, taken := t.leaveRaw[id]; !taken {
				t.leaveRaw[id] = tags
			}
			delete(t.leaveRaw, key)
			migrated = true
		}
	}
	if migrated {
		t.Log.Info().Msg("migrated legacy side-table keys to macro ids")
		if err := t.saveJSON(CountsFile, t.counts); err != nil {
			t.Log.Warn().Err(err).Msg("persist migrated counts")
		}
		if err := t.saveJSON(NotesFile, t.notes); err != nil {
			t.Log.Warn().Err(err).Msg("persist migrated notes")
		}
		if err := t.saveJSON(LeaveRawFile, t.leaveRaw); err != nil {
			t.Log.Warn().Err(err).Msg("persist migrated leave-raw preferences")
		}
	}
}

// Count returns the copy count for a macro.
func (t *Tables) Count(id string) int {
	return t.counts[id]
}

// Increment bumps a macro's copy count and persists.
func (t *Tables) Increment(id string) error {
	t.counts[id]++
	if err := t.saveJSON(CountsFile, t.counts); err != nil {
		t.counts[id]--
		return err
	}
	return nil
}

// ResetCounts clears copy counts. With keepTop > 0 the highest keepTop
// positive counts survive, so the most used macros keep their ranking
// while everything else drops back to alphabetical order.
func (t *Tables) ResetCounts(keepTop int) error {
	old := t.counts
	next := make(map[string]int)
	if keepTop > 0 {
		ids := make([]string, 0, len(old))
		for id, count := range old {
			if count > 0 {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool {
			if old[ids[i]] != old[ids[j]] {
				return old[ids[i]] > old[ids[j]]
			}
			return ids[i] < ids[j]
		})
		if len(ids) > keepTop {
			ids = ids[:keepTop]
		}
		for _, id := range ids {
			next[id] = old[id]
		}
	}
	t.counts = next
	if err := t.saveJSON(CountsFile, t.counts); err != nil {
		t.counts = old
		return err
	}
	return nil
}

// Note returns the note for a macro, if any.
func (t *Tables) Note(id string) (Note, bool) {
	n, ok := t.notes[id]
	return n, ok
}

// NoteRef returns a copy of the note as a pointer, nil when absent.
// History snapshots use the nil form to mean "no note on this side".
func (t *Tables) NoteRef(id string) *Note {
	n, ok := t.notes[id]
	if !ok {
		return nil
	}
	return &n
}

// SetNote stores note text for a macro with a fresh LastUpdated. Empty
// text removes the note.
func (t *Tables) SetNote(id, text string) error {
	if text == "" {
		return t.RestoreNote(id, nil)
	}
	return t.RestoreNote(id, &Note{Notes: text, LastUpdated: macro.Now()})
}

// RestoreNote puts an exact note record in place (nil deletes). Undo
// uses this to reinstate a snapshot with its original LastUpdated.
func (t *Tables) RestoreNote(id string, note *Note) error {
	old, had := t.notes[id]
	if note == nil {
		delete(t.notes, id)
	} else {
		t.notes[id] = *note
	}
	if err := t.saveJSON(NotesFile, t.notes); err != nil {
		if had {
			t.notes[id] = old
		} else {
			delete(t.notes, id)
		}
		return err
	}
	return nil
}

// LeaveRaw returns the leave-raw tag set for a macro. The returned map
// is a copy.
func (t *Tables) LeaveRaw(id string) map[string]bool {
	out := make(map[string]bool, len(t.leaveRaw[id]))
	for tag, raw := range t.leaveRaw[id] {
		out[tag] = raw
	}
	return out
}

// SetLeaveRaw records whether a tag should stay unresolved for a macro.
func (t *Tables) SetLeaveRaw(id, tag string, raw bool) error {
	tags := t.leaveRaw[id]
	prev, had := false, false
	if tags != nil {
		prev, had = tags[tag]
	}
	if raw {
		if tags == nil {
			tags = make(map[string]bool)
			t.leaveRaw[id] = tags
		}
		tags[tag] = true
	} else if tags != nil {
		delete(tags, tag)
		if len(tags) == 0 {
			delete(t.leaveRaw, id)
		}
	}
	if err := t.saveJSON(LeaveRawFile, t.leaveRaw); err != nil {
		if had {
			if t.leaveRaw[id] == nil {
				t.leaveRaw[id] = make(map[string]bool)
			}
			t.leaveRaw[id][tag] = prev
		} else if t.leaveRaw[id] != nil {
			delete(t.leaveRaw[id], tag)
		}
		return err
	}
	return nil
}

// RemoveMacro drops every side-table entry for a deleted macro.
func (t *Tables) RemoveMacro(id string) error {
	count, hadCount := t.counts[id]
	note, hadNote := t.notes[id]
	raw, hadRaw := t.leaveRaw[id]

	delete(t.counts, id)
	delete(t.notes, id)
	delete(t.leaveRaw, id)

	var err error
	if e := t.saveJSON(CountsFile, t.counts); e != nil {
		err = e
	}
	if e := t.saveJSON(NotesFile, t.notes); e != nil && err == nil {
		err = e
	}
	if e := t.saveJSON(LeaveRawFile, t.leaveRaw); e != nil && err == nil {
		err = e
	}
	if err != nil {
		if hadCount {
			t.counts[id] = count
		}
		if hadNote {
			t.notes[id] = note
		}
		if hadRaw {
			t.leaveRaw[id] = raw
		}
		return err
	}
	return nil
}
