package undo

import (
	"context"
	"fmt"

	"tableflip.dev/macromouse/pkg/session"
)

type Undo struct {
	Session *session.Session
}

func (n *Undo) Do(ctx context.Context) error {
	s := n.Session

	e, ok, err := s.History.Undo(s.Applier())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("nothing to undo")
		return nil
	}
	s.Log.Info().Str("kind", string(e.Kind)).Str("macro", e.MacroID).Msg("undone")
	fmt.Printf("undid %s\n", e.Kind)
	return nil
}
