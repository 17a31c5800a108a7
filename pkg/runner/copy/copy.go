package copy

import (
	"context"

	"github.com/atotto/clipboard"

	"tableflip.dev/macromouse/pkg/placeholder"
	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
)

// Copy substitutes placeholders in a macro and puts the result on the
// system clipboard. User tags resolve from the Values map; tags without
// a value and tags marked leave-raw stay literal.
type Copy struct {
	Ref    string
	Values map[string]string
	Raw    []string

	// Clip overrides the clipboard write, for tests.
	Clip func(string) error

	Session *session.Session
}

func (n *Copy) Do(ctx context.Context) error {
	s := n.Session

	m, err := s.ResolveMacro(n.Ref)
	if err != nil {
		return err
	}

	for _, tag := range n.Raw {
		if err := s.Usage.SetLeaveRaw(m.ID, tag, true); err != nil {
			return err
		}
	}

	engine := placeholder.Engine{}
	text, err := engine.Substitute(m.Content, s.Usage.LeaveRaw(m.ID), n.resolve)
	if err != nil {
		return err
	}

	clip := n.Clip
	if clip == nil {
		clip = clipboard.WriteAll
	}
	if err := clip(text); err != nil {
		return err
	}

	if err := s.Usage.Increment(m.ID); err != nil {
		return err
	}
	s.Log.Info().Str("macro", m.ID).Int("uses", s.Usage.Count(m.ID)).Msg("macro copied")

	pp := printers.PrettyPrint{}
	pp.Copied(m.Name)
	return nil
}

func (n *Copy) resolve(tags []string) (map[string]string, error) {
	values := make(map[string]string, len(tags))
	for _, tag := range tags {
		if v, ok := n.Values[tag]; ok {
			values[tag] = v
		}
	}
	return values, nil
}
