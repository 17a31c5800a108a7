package rm

import (
	"context"
	"fmt"

	"tableflip.dev/macromouse/pkg/history"
	"tableflip.dev/macromouse/pkg/session"
)

type Remove struct {
	Ref string

	Session *session.Session
}

func (n *Remove) Do(ctx context.Context) error {
	s := n.Session

	m, err := s.ResolveMacro(n.Ref)
	if err != nil {
		return err
	}
	note := s.Usage.NoteRef(m.ID)

	if err := s.Store.DeleteMacro(m.ID); err != nil {
		return err
	}
	if err := s.Usage.RemoveMacro(m.ID); err != nil {
		return err
	}
	if err := s.History.Record(history.DeleteMacro(m, note)); err != nil {
		return err
	}
	s.Log.Info().Str("macro", m.ID).Str("name", m.Name).Msg("macro deleted")

	fmt.Printf("deleted %q\n", m.Name)
	return nil
}
