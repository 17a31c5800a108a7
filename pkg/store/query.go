package store

import (
	"sort"
	"strings"

	"tableflip.dev/macromouse/pkg/macro"
)

// AllCategoriesFilter selects every visible category in Query.
const AllCategoriesFilter = "All"

// Snapshot returns a deep copy of the current document for read-only
// inspection.
func (s *Store) Snapshot() *macro.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// MacroView is the read model Query returns.
type MacroView struct {
	ID       string
	Category string
	Name     string
	Content  string
	Version  int
	Uses     int
}

// Counter supplies usage counts for ranking. *usage.Tables satisfies it.
type Counter interface {
	Count(id string) int
}

// Query lists macros from visible categories, filtered by category name
// and a case-insensitive search over name and content. Macros that have
// been copied at least once rank first, ordered by descending count;
// ties and never-used macros order alphabetically by name.
func (s *Store) Query(filterCategory, searchTerm string, counts Counter) []MacroView {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(searchTerm))
	views := make([]MacroView, 0)
	for _, m := range s.doc.Macros {
		cat, ok := s.doc.Categories[m.CategoryID]
		if !ok || cat.Hidden {
			continue
		}
		if filterCategory != "" && filterCategory != AllCategoriesFilter && cat.Name != filterCategory {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(m.Name), term) &&
			!strings.Contains(strings.ToLower(m.Content), term) {
			continue
		}
		v := MacroView{
			ID:       m.ID,
			Category: cat.Name,
			Name:     m.Name,
			Content:  m.Content,
			Version:  m.Version,
		}
		if counts != nil {
			v.Uses = counts.Count(m.ID)
		}
		views = append(views, v)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Uses != views[j].Uses {
			return views[i].Uses > views[j].Uses
		}
		li, lj := strings.ToLower(views[i].Name), strings.ToLower(views[j].Name)
		if li != lj {
			return li < lj
		}
		return views[i].Name < views[j].Name
	})
	return views
}

// Categories returns the visible categories in display order.
func (s *Store) Categories() []*macro.Category {
	return s.categories(false)
}

// AllCategories returns every category, hidden included, in display
// order.
func (s *Store) AllCategories() []*macro.Category {
	return s.categories(true)
}

func (s *Store) categories(includeHidden bool) []*macro.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*macro.Category, 0, len(s.doc.Categories))
	for _, id := range s.doc.CategoryOrder {
		cat, ok := s.doc.Categories[id]
		if !ok {
			continue
		}
		if cat.Hidden && !includeHidden {
			continue
		}
		out = append(out, cat.Clone())
	}
	return out
}

// CategoryOrder returns a copy of the display order.
func (s *Store) CategoryOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.doc.CategoryOrder...)
}

// CategoryByID returns a copy of the category, if present.
func (s *Store) CategoryByID(id string) (*macro.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.doc.Categories[id]
	if !ok {
		return nil, false
	}
	return cat.Clone(), true
}

// CategoryNamed finds a category by display name, case-sensitive.
func (s *Store) CategoryNamed(name string) (*macro.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := s.doc.CategoryByName(name)
	if cat == nil {
		return nil, false
	}
	return cat.Clone(), true
}

// Uncategorized returns the pinned category.
func (s *Store) Uncategorized() *macro.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.CategoryByName(macro.Uncategorized).Clone()
}

// MacroByID returns a copy of the macro, if present.
func (s *Store) MacroByID(id string) (*macro.Macro, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.doc.Macros[id]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// MacroByName finds a macro by name inside one category.
func (s *Store) MacroByName(categoryID, name string) (*macro.Macro, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.doc.MacroByName(categoryID, name)
	if m == nil {
		return nil, false
	}
	return m.Clone(), true
}

// MacrosNamed returns every macro with the given name across all
// categories. The CLI uses it to resolve bare names and report
// ambiguity.
func (s *Store) MacrosNamed(name string) []*macro.Macro {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*macro.Macro, 0, 1)
	for _, m := range s.doc.Macros {
		if m.Name == name {
			out = append(out, m.Clone())
		}
	}
	return out
}

func sortIDsByName(doc *macro.Document, ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := doc.Categories[ids[i]], doc.Categories[ids[j]]
		if a == nil || b == nil {
			return a != nil
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}
