package get

import (
	"context"

	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
	"tableflip.dev/macromouse/pkg/store"
)

type Get struct {
	ShowID         bool
	Category       string
	Search         string
	ListCategories bool

	Session *session.Session
}

func (n *Get) Do(ctx context.Context) error {
	s := n.Session
	pp := printers.PrettyPrint{ShowID: n.ShowID}

	if n.ListCategories {
		pp.Title("Categories")
		pp.Categories(s.Store.AllCategories())
		return nil
	}

	filter := n.Category
	if filter == "" {
		filter = store.AllCategoriesFilter
	}

	pp.Title(filter)
	pp.Macros(s.Store.Query(filter, n.Search, s.Usage)...)
	return nil
}
