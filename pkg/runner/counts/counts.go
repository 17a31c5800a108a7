package counts

import (
	"context"

	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
	"tableflip.dev/macromouse/pkg/store"
)

// Reset clears copy counts so listings fall back to alphabetical
// order. KeepTop preserves the ranking of the most used macros.
type Reset struct {
	KeepTop int

	Session *session.Session
}

func (n *Reset) Do(ctx context.Context) error {
	s := n.Session

	if err := s.Usage.ResetCounts(n.KeepTop); err != nil {
		return err
	}
	s.Log.Info().Int("keepTop", n.KeepTop).Msg("usage counts reset")

	pp := printers.PrettyPrint{}
	pp.Title(store.AllCategoriesFilter)
	pp.Macros(s.Store.Query(store.AllCategoriesFilter, "", s.Usage)...)
	return nil
}
