// Package store is the in-memory record model for categories and
// macros. Every mutating operation validates first, mutates, and
// persists through the document codec before returning; when the save
// fails the in-memory state is rolled back so memory never diverges
// from disk.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/macromouse/pkg/codec"
	"tableflip.dev/macromouse/pkg/macro"
)

var (
	// ErrDuplicateName rejects a create or rename that would collide
	// with an existing category name or, for macros, a sibling macro.
	ErrDuplicateName = errors.New("store: duplicate name")
	// ErrUnknownCategory rejects macro operations referencing a missing
	// category id.
	ErrUnknownCategory = errors.New("store: unknown category")
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUncategorized guards the pinned category from deletion, hiding
	// and reordering.
	ErrUncategorized = errors.New("store: the Uncategorized category is pinned")
)

// Direction moves a category within the display order.
type Direction int

const (
	Top Direction = iota
	Up
	Down
	Bottom
)

// DeleteStrategy decides what happens to a deleted category's macros.
type DeleteStrategy int

const (
	// DeleteMacros removes the category's macros with it.
	DeleteMacros DeleteStrategy = iota
	// ReassignToUncategorized moves them to the pinned category.
	ReassignToUncategorized
)

// Store owns the document and serializes all access behind one mutex.
type Store struct {
	mu    sync.Mutex
	codec *codec.Codec
	doc   *macro.Document
	log   zerolog.Logger
}

// Open loads the document from the data directory and guarantees the
// Uncategorized category exists at display position 0.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	c := codec.New(filepath.Join(dir, DocumentFile))
	c.Log = log
	s := &Store{codec: c, log: log}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the document from disk, replacing in-memory state.
// Sync runs this after downloading a newer document.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.codec.Load()
	if err != nil {
		return err
	}
	s.doc = doc
	if s.ensureUncategorized() {
		if err := s.codec.Save(s.doc); err != nil {
			return fmt.Errorf("store: persist Uncategorized: %w", err)
		}
	}
	return nil
}

// ensureUncategorized reports whether the document was changed.
func (s *Store) ensureUncategorized() bool {
	changed := false
	cat := s.doc.CategoryByName(macro.Uncategorized)
	if cat == nil {
		now := macro.Now()
		cat = &macro.Category{
			ID:          macro.NewCategoryID(),
			Name:        macro.Uncategorized,
			Description: "Default category for macros",
			Created:     now,
			Modified:    now,
		}
		s.doc.Categories[cat.ID] = cat
		changed = true
	}
	if cat.Hidden {
		cat.Hidden = false
		changed = true
	}
	if pinFirst(&s.doc.CategoryOrder, cat.ID) {
		changed = true
	}
	return changed
}

// pinFirst places id at index 0 of order, adding it if absent. Reports
// whether order changed.
func pinFirst(order *[]string, id string) bool {
	o := *order
	if len(o) > 0 && o[0] == id {
		return false
	}
	out := make([]string, 0, len(o)+1)
	out = append(out, id)
	for _, other := range o {
		if other != id {
			out = append(out, other)
		}
	}
	*order = out
	return true
}

// Lock takes the store's mutation lock. The sync engine holds it while
// replacing local files so no operation can write a document that a
// download is about to overwrite.
func (s *Store) Lock() {
	s.mu.Lock()
}

// Unlock releases the mutation lock.
func (s *Store) Unlock() {
	s.mu.Unlock()
}

// mutate runs fn against the live document, persists, and rolls the
// document back when either step fails.
func (s *Store) mutate(fn func(doc *macro.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.doc.Clone()
	if err := fn(s.doc); err != nil {
		s.doc = snapshot
		return err
	}
	if err := s.codec.Save(s.doc); err != nil {
		s.doc = snapshot
		return fmt.Errorf("store: persist: %w", err)
	}
	return nil
}

// CreateCategory adds a category with a unique, case-sensitive name and
// appends it to the display order.
func (s *Store) CreateCategory(name, description string) (string, error) {
	if name == "" {
		return "", errors.New("store: category name required")
	}
	id := macro.NewCategoryID()
	err := s.mutate(func(doc *macro.Document) error {
		if doc.CategoryByName(name) != nil {
			return fmt.Errorf("%w: category %q", ErrDuplicateName, name)
		}
		now := macro.Now()
		doc.Categories[id] = &macro.Category{
			ID:          id,
			Name:        name,
			Description: description,
			Created:     now,
			Modified:    now,
		}
		doc.CategoryOrder = append(doc.CategoryOrder, id)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.log.Info().Str("category", name).Str("id", id).Msg("category created")
	return id, nil
}

// UpdateCategory renames a category and replaces its description.
func (s *Store) UpdateCategory(id, name, description string) error {
	if name == "" {
		return errors.New("store: category name required")
	}
	return s.mutate(func(doc *macro.Document) error {
		cat, ok := doc.Categories[id]
		if !ok {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		if cat.Name == macro.Uncategorized && name != macro.Uncategorized {
			return ErrUncategorized
		}
		if other := doc.CategoryByName(name); other != nil && other.ID != id {
			return fmt.Errorf("%w: category %q", ErrDuplicateName, name)
		}
		cat.Name = name
		cat.Description = description
		cat.Modified = macro.Now()
		return nil
	})
}

// SetCategoryHidden toggles a category out of active listings without
// touching its macros.
func (s *Store) SetCategoryHidden(id string, hidden bool) error {
	return s.mutate(func(doc *macro.Document) error {
		cat, ok := doc.Categories[id]
		if !ok {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		if cat.Name == macro.Uncategorized && hidden {
			return ErrUncategorized
		}
		cat.Hidden = hidden
		cat.Modified = macro.Now()
		return nil
	})
}

// DeleteCategory removes a category. Its macros are deleted or moved to
// Uncategorized according to strategy; the ids of deleted macros are
// returned so the caller can clean their side-table entries.
func (s *Store) DeleteCategory(id string, strategy DeleteStrategy) ([]string, error) {
	var deleted []string
	err := s.mutate(func(doc *macro.Document) error {
		cat, ok := doc.Categories[id]
		if !ok {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		if cat.Name == macro.Uncategorized {
			return ErrUncategorized
		}
		uncat := doc.CategoryByName(macro.Uncategorized)
		if uncat == nil {
			return errors.New("store: Uncategorized category missing")
		}
		for _, m := range doc.MacrosIn(id) {
			switch strategy {
			case ReassignToUncategorized:
				if doc.MacroByName(uncat.ID, m.Name) != nil {
					return fmt.Errorf("%w: macro %q already exists in %s", ErrDuplicateName, m.Name, macro.Uncategorized)
				}
				m.CategoryID = uncat.ID
				m.Modified = macro.Now()
				m.Version++
			default:
				delete(doc.Macros, m.ID)
				deleted = append(deleted, m.ID)
			}
		}
		delete(doc.Categories, id)
		order := make([]string, 0, len(doc.CategoryOrder))
		for _, other := range doc.CategoryOrder {
			if other != id {
				order = append(order, other)
			}
		}
		doc.CategoryOrder = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("id", id).Int("macrosDeleted", len(deleted)).Msg("category deleted")
	return deleted, nil
}

// ReorderCategory moves a category within the display order. The
// Uncategorized category never moves from position 0 and nothing may be
// placed above it.
func (s *Store) ReorderCategory(id string, dir Direction) error {
	return s.mutate(func(doc *macro.Document) error {
		cat, ok := doc.Categories[id]
		if !ok {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		if cat.Name == macro.Uncategorized {
			return ErrUncategorized
		}
		order := doc.CategoryOrder
		pos := -1
		for i, other := range order {
			if other == id {
				pos = i
				break
			}
		}
		if pos < 0 {
			return fmt.Errorf("%w: category %s not in order", ErrNotFound, id)
		}
		// Index 0 is reserved for Uncategorized.
		target := pos
		switch dir {
		case Top:
			target = 1
		case Up:
			target = pos - 1
		case Down:
			target = pos + 1
		case Bottom:
			target = len(order) - 1
		}
		if target < 1 {
			target = 1
		}
		if target > len(order)-1 {
			target = len(order) - 1
		}
		if target == pos {
			return nil
		}
		order = append(order[:pos], order[pos+1:]...)
		rest := append([]string{}, order[target:]...)
		doc.CategoryOrder = append(append(order[:target:target], id), rest...)
		return nil
	})
}

// SortCategoriesAlphabetically orders every category A to Z, keeping
// Uncategorized pinned first.
func (s *Store) SortCategoriesAlphabetically() error {
	return s.mutate(func(doc *macro.Document) error {
		sortOrderByName(doc)
		return nil
	})
}

// CreateMacro adds a macro to a category. Names are unique within the
// category only.
func (s *Store) CreateMacro(categoryID, name, content string) (string, error) {
	if name == "" {
		return "", errors.New("store: macro name required")
	}
	id := macro.NewMacroID()
	err := s.mutate(func(doc *macro.Document) error {
		if _, ok := doc.Categories[categoryID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
		}
		if doc.MacroByName(categoryID, name) != nil {
			return fmt.Errorf("%w: macro %q", ErrDuplicateName, name)
		}
		now := macro.Now()
		doc.Macros[id] = &macro.Macro{
			ID:         id,
			CategoryID: categoryID,
			Name:       name,
			Content:    content,
			Created:    now,
			Modified:   now,
			Version:    1,
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.log.Info().Str("macro", name).Str("id", id).Msg("macro created")
	return id, nil
}

// UpdateMacro replaces a macro's category, name and content. Each
// successful update advances the version by exactly one.
func (s *Store) UpdateMacro(id, categoryID, name, content string) error {
	if name == "" {
		return errors.New("store: macro name required")
	}
	return s.mutate(func(doc *macro.Document) error {
		m, ok := doc.Macros[id]
		if !ok {
			return fmt.Errorf("%w: macro %s", ErrNotFound, id)
		}
		if _, ok := doc.Categories[categoryID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
		}
		if other := doc.MacroByName(categoryID, name); other != nil && other.ID != id {
			return fmt.Errorf("%w: macro %q", ErrDuplicateName, name)
		}
		m.CategoryID = categoryID
		m.Name = name
		m.Content = content
		m.Modified = macro.Now()
		m.Version++
		return nil
	})
}

// DeleteMacro removes a macro by id.
func (s *Store) DeleteMacro(id string) error {
	return s.mutate(func(doc *macro.Document) error {
		if _, ok := doc.Macros[id]; !ok {
			return fmt.Errorf("%w: macro %s", ErrNotFound, id)
		}
		delete(doc.Macros, id)
		return nil
	})
}

// RestoreMacro upserts an exact macro record, id, timestamps and
// version included. Undo and redo use this to replay snapshots.
func (s *Store) RestoreMacro(m *macro.Macro) error {
	if m == nil || m.ID == "" {
		return errors.New("store: macro snapshot required")
	}
	return s.mutate(func(doc *macro.Document) error {
		if _, ok := doc.Categories[m.CategoryID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, m.CategoryID)
		}
		if other := doc.MacroByName(m.CategoryID, m.Name); other != nil && other.ID != m.ID {
			return fmt.Errorf("%w: macro %q", ErrDuplicateName, m.Name)
		}
		doc.Macros[m.ID] = m.Clone()
		return nil
	})
}

func sortOrderByName(doc *macro.Document) {
	uncat := doc.CategoryByName(macro.Uncategorized)
	rest := make([]string, 0, len(doc.CategoryOrder))
	for _, id := range doc.CategoryOrder {
		if uncat != nil && id == uncat.ID {
			continue
		}
		rest = append(rest, id)
	}
	sortIDsByName(doc, rest)
	order := make([]string, 0, len(doc.CategoryOrder))
	if uncat != nil {
		order = append(order, uncat.ID)
	}
	doc.CategoryOrder = append(order, rest...)
}
