// Package category holds the runners for category management: create,
// edit, remove, move, hide and sort.
package category

import (
	"context"
	"fmt"
	"strings"

	"tableflip.dev/macromouse/pkg/macro"
	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
	"tableflip.dev/macromouse/pkg/store"
)

type Create struct {
	Name        string
	Description string

	Session *session.Session
}

func (n *Create) Do(ctx context.Context) error {
	s := n.Session
	id, err := s.Store.CreateCategory(n.Name, n.Description)
	if err != nil {
		return err
	}
	s.Log.Info().Str("category", id).Str("name", n.Name).Msg("category created")
	return listCategories(s)
}

// Edit renames a category or changes its description.
type Edit struct {
	Name string

	NewName        string
	SetName        bool
	Description    string
	SetDescription bool

	Session *session.Session
}

func (n *Edit) Do(ctx context.Context) error {
	s := n.Session
	c, err := resolve(s, n.Name)
	if err != nil {
		return err
	}
	name, description := c.Name, c.Description
	if n.SetName {
		name = n.NewName
	}
	if n.SetDescription {
		description = n.Description
	}
	if err := s.Store.UpdateCategory(c.ID, name, description); err != nil {
		return err
	}
	s.Log.Info().Str("category", c.ID).Str("name", name).Msg("category updated")
	return listCategories(s)
}

// Remove deletes a category. Its macros are moved to Uncategorized
// unless DeleteMacros is set, in which case they go away with it.
type Remove struct {
	Name         string
	DeleteMacros bool

	Session *session.Session
}

func (n *Remove) Do(ctx context.Context) error {
	s := n.Session
	c, err := resolve(s, n.Name)
	if err != nil {
		return err
	}
	strategy := store.ReassignToUncategorized
	if n.DeleteMacros {
		strategy = store.DeleteMacros
	}
	removed, err := s.Store.DeleteCategory(c.ID, strategy)
	if err != nil {
		return err
	}
	for _, id := range removed {
		if err := s.Usage.RemoveMacro(id); err != nil {
			return err
		}
	}
	s.Log.Info().Str("category", c.ID).Int("macrosRemoved", len(removed)).Msg("category deleted")

	fmt.Printf("deleted category %q", c.Name)
	if len(removed) > 0 {
		fmt.Printf(" and %d macro(s)", len(removed))
	}
	fmt.Println("")
	return nil
}

type Move struct {
	Name      string
	Direction string

	Session *session.Session
}

func (n *Move) Do(ctx context.Context) error {
	s := n.Session
	c, err := resolve(s, n.Name)
	if err != nil {
		return err
	}
	dir, err := parseDirection(n.Direction)
	if err != nil {
		return err
	}
	if err := s.Store.ReorderCategory(c.ID, dir); err != nil {
		return err
	}
	return listCategories(s)
}

type Hide struct {
	Name string
	Show bool

	Session *session.Session
}

func (n *Hide) Do(ctx context.Context) error {
	s := n.Session
	c, err := resolve(s, n.Name)
	if err != nil {
		return err
	}
	if err := s.Store.SetCategoryHidden(c.ID, !n.Show); err != nil {
		return err
	}
	return listCategories(s)
}

// Sort orders categories alphabetically, Uncategorized staying first.
type Sort struct {
	Session *session.Session
}

func (n *Sort) Do(ctx context.Context) error {
	if err := n.Session.Store.SortCategoriesAlphabetically(); err != nil {
		return err
	}
	return listCategories(n.Session)
}

func resolve(s *session.Session, name string) (*macro.Category, error) {
	if c, ok := s.Store.CategoryNamed(name); ok {
		return c, nil
	}
	if c, ok := s.Store.CategoryByID(name); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: category %q", store.ErrNotFound, name)
}

func parseDirection(d string) (store.Direction, error) {
	switch strings.ToLower(d) {
	case "top":
		return store.Top, nil
	case "up":
		return store.Up, nil
	case "down":
		return store.Down, nil
	case "bottom":
		return store.Bottom, nil
	}
	return 0, fmt.Errorf("unknown direction %q, want top, up, down or bottom", d)
}

func listCategories(s *session.Session) error {
	pp := printers.PrettyPrint{}
	pp.Title("Categories")
	pp.Categories(s.Store.AllCategories())
	return nil
}
