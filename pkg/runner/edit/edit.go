package edit

import (
	"context"
	"fmt"

	"tableflip.dev/macromouse/pkg/history"
	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
	"tableflip.dev/macromouse/pkg/store"
)

// Edit updates a macro in place. Only the Set* fields that are true are
// applied, so an untouched flag keeps the current value.
type Edit struct {
	Ref string

	Name        string
	SetName     bool
	Content     string
	SetContent  bool
	Category    string
	SetCategory bool

	Session *session.Session
}

func (n *Edit) Do(ctx context.Context) error {
	s := n.Session

	m, err := s.ResolveMacro(n.Ref)
	if err != nil {
		return err
	}
	before := m.Clone()
	note := s.Usage.NoteRef(m.ID)

	name, content, categoryID := m.Name, m.Content, m.CategoryID
	if n.SetName {
		name = n.Name
	}
	if n.SetContent {
		content = n.Content
	}
	if n.SetCategory {
		c, ok := s.Store.CategoryNamed(n.Category)
		if !ok {
			return fmt.Errorf("%w: %q", store.ErrUnknownCategory, n.Category)
		}
		categoryID = c.ID
	}

	if err := s.Store.UpdateMacro(m.ID, categoryID, name, content); err != nil {
		return err
	}
	after, _ := s.Store.MacroByID(m.ID)
	if err := s.History.Record(history.EditMacro(before, after, note, note)); err != nil {
		return err
	}
	s.Log.Info().Str("macro", m.ID).Int("version", after.Version).Msg("macro updated")

	cat, _ := s.Store.CategoryByID(after.CategoryID)
	pp := printers.PrettyPrint{}
	pp.Title(cat.Name)
	pp.Macros(s.Store.Query(cat.Name, "", s.Usage)...)
	return nil
}
