// Package macro defines the category and macro record model.
package macro

import (
	"strings"

	"github.com/google/uuid"
)

// CurrentSchema is the document schema version written on save.
const CurrentSchema = "1.0"

// Uncategorized is the pinned category every document carries. It cannot
// be deleted, hidden, or moved from the first display position.
const Uncategorized = "Uncategorized"

// Category groups macros under a unique display name.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Hidden      bool      `json:"hidden,omitempty"`
	Created     Timestamp `json:"created"`
	Modified    Timestamp `json:"modified"`
}

// Macro is a named reusable block of text. Content may contain
// placeholder tokens resolved at copy time.
type Macro struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Created    Timestamp `json:"created"`
	Modified   Timestamp `json:"modified"`
	Version    int       `json:"version"`
}

// Clone returns a deep copy of the macro.
func (m *Macro) Clone() *Macro {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// Clone returns a deep copy of the category.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	d := *c
	return &d
}

// Document is the complete persisted record set.
type Document struct {
	Schema        string
	Categories    map[string]*Category
	Macros        map[string]*Macro
	CategoryOrder []string
}

// NewDocument returns an empty but valid document.
func NewDocument() *Document {
	return &Document{
		Schema:        CurrentSchema,
		Categories:    make(map[string]*Category),
		Macros:        make(map[string]*Macro),
		CategoryOrder: make([]string, 0),
	}
}

// Clone returns a deep copy of the document. The store uses this to roll
// back in-memory state when a save fails.
func (d *Document) Clone() *Document {
	c := NewDocument()
	c.Schema = d.Schema
	for id, cat := range d.Categories {
		c.Categories[id] = cat.Clone()
	}
	for id, m := range d.Macros {
		c.Macros[id] = m.Clone()
	}
	c.CategoryOrder = append(c.CategoryOrder, d.CategoryOrder...)
	return c
}

// CategoryByName finds a category by its display name, case-sensitive.
func (d *Document) CategoryByName(name string) *Category {
	for _, cat := range d.Categories {
		if cat.Name == name {
			return cat
		}
	}
	return nil
}

// MacroByName finds a macro by name within one category.
func (d *Document) MacroByName(categoryID, name string) *Macro {
	for _, m := range d.Macros {
		if m.CategoryID == categoryID && m.Name == name {
			return m
		}
	}
	return nil
}

// MacrosIn returns the macros belonging to a category.
func (d *Document) MacrosIn(categoryID string) []*Macro {
	out := make([]*Macro, 0)
	for _, m := range d.Macros {
		if m.CategoryID == categoryID {
			out = append(out, m)
		}
	}
	return out
}

// NewCategoryID mints an opaque category id.
func NewCategoryID() string {
	return newID("CAT")
}

// NewMacroID mints an opaque macro id.
func NewMacroID() string {
	return newID("MACRO")
}

func newID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + strings.ToUpper(hex[:8])
}
