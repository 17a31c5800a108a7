package note

import (
	"context"
	"fmt"

	"tableflip.dev/macromouse/pkg/history"
	"tableflip.dev/macromouse/pkg/session"
)

// Note shows or sets the usage note attached to a macro. SetText marks
// the difference between "show me the note" and "set it to empty".
type Note struct {
	Ref     string
	Text    string
	SetText bool

	Session *session.Session
}

func (n *Note) Do(ctx context.Context) error {
	s := n.Session

	m, err := s.ResolveMacro(n.Ref)
	if err != nil {
		return err
	}

	if !n.SetText {
		if note, ok := s.Usage.Note(m.ID); ok {
			fmt.Printf("%s (updated %s)\n", note.Notes, note.LastUpdated)
		} else {
			fmt.Printf("no note for %q\n", m.Name)
		}
		return nil
	}

	before := s.Usage.NoteRef(m.ID)
	if err := s.Usage.SetNote(m.ID, n.Text); err != nil {
		return err
	}
	after := s.Usage.NoteRef(m.ID)
	if err := s.History.Record(history.EditNotes(m, before, after)); err != nil {
		return err
	}
	s.Log.Info().Str("macro", m.ID).Bool("cleared", n.Text == "").Msg("note updated")

	fmt.Printf("note for %q saved\n", m.Name)
	return nil
}
