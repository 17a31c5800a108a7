package backup

import (
	"context"
	"fmt"

	snapshots "tableflip.dev/macromouse/pkg/backup"
	"tableflip.dev/macromouse/pkg/session"
)

// Backup snapshots the data files, lists existing snapshots, or
// restores a named one.
type Backup struct {
	List    bool
	Restore string

	Session *session.Session
}

func (n *Backup) Do(ctx context.Context) error {
	s := n.Session

	mgr := snapshots.Manager{
		Dir:   s.Config.BaseDir(),
		Files: s.SyncFiles(),
		Log:   s.Log.Logger,
	}

	switch {
	case n.List:
		names, err := mgr.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("no backups yet")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil

	case n.Restore != "":
		if err := mgr.Restore(n.Restore); err != nil {
			return err
		}
		if err := s.Reload(); err != nil {
			return err
		}
		s.Log.Info().Str("backup", n.Restore).Msg("backup restored")
		fmt.Printf("restored %s\n", n.Restore)
		return nil

	default:
		name, err := mgr.Snapshot()
		if err != nil {
			return err
		}
		s.Log.Info().Str("backup", name).Msg("backup created")
		fmt.Printf("backed up to %s\n", name)
		return nil
	}
}
