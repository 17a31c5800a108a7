package redo

import (
	"context"
	"fmt"

	"tableflip.dev/macromouse/pkg/session"
)

type Redo struct {
	Session *session.Session
}

func (n *Redo) Do(ctx context.Context) error {
	s := n.Session

	e, ok, err := s.History.Redo(s.Applier())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("nothing to redo")
		return nil
	}
	s.Log.Info().Str("kind", string(e.Kind)).Str("macro", e.MacroID).Msg("redone")
	fmt.Printf("redid %s\n", e.Kind)
	return nil
}
