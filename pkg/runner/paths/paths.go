package paths

import (
	"context"
	"path/filepath"

	"tableflip.dev/macromouse/pkg/history"
	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
)

// Paths prints where every data file lives on this machine.
type Paths struct {
	Session *session.Session
}

func (n *Paths) Do(ctx context.Context) error {
	s := n.Session
	dir := s.Config.BaseDir()

	rows := make([][2]string, 0, len(s.SyncFiles())+3)
	rows = append(rows, [2]string{"data directory", dir})
	for _, f := range s.SyncFiles() {
		rows = append(rows, [2]string{f, filepath.Join(dir, f)})
	}
	rows = append(rows,
		[2]string{"history", filepath.Join(dir, history.Dir)},
		[2]string{"backups", filepath.Join(dir, "backups")},
	)

	pp := printers.PrettyPrint{}
	pp.Title("Paths")
	pp.Paths(rows)
	return nil
}
