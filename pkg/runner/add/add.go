package add

import (
	"context"
	"fmt"

	"tableflip.dev/macromouse/pkg/history"
	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
	"tableflip.dev/macromouse/pkg/store"
)

type Add struct {
	Category string
	Name     string
	Content  string

	Session *session.Session
}

func (n *Add) Do(ctx context.Context) error {
	s := n.Session

	category := s.Store.Uncategorized()
	if n.Category != "" {
		c, ok := s.Store.CategoryNamed(n.Category)
		if !ok {
			return fmt.Errorf("%w: %q", store.ErrUnknownCategory, n.Category)
		}
		category = c
	}

	id, err := s.Store.CreateMacro(category.ID, n.Name, n.Content)
	if err != nil {
		return err
	}
	m, _ := s.Store.MacroByID(id)
	if err := s.History.Record(history.AddMacro(m)); err != nil {
		return err
	}
	s.Log.Info().Str("macro", id).Str("category", category.Name).Msg("macro added")

	pp := printers.PrettyPrint{}
	pp.Title(category.Name)
	pp.Macros(s.Store.Query(category.Name, "", s.Usage)...)
	return nil
}
