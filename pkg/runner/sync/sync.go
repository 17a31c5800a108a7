package sync

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/macromouse/pkg/printers"
	"tableflip.dev/macromouse/pkg/session"
	filesync "tableflip.dev/macromouse/pkg/sync"
)

// Sync reconciles the data files against the configured bucket and
// prints the per-file report. Remote can be injected for tests; when
// nil the GCS client is built from config.
type Sync struct {
	DryRun bool
	Remote filesync.Remote

	Session *session.Session
}

func (n *Sync) Do(ctx context.Context) error {
	s := n.Session

	remote := n.Remote
	if remote == nil {
		if s.Config.Bucket() == "" {
			return errors.New("sync: no bucket configured, set bucket in .macromouse.yaml")
		}
		g, err := filesync.NewGCS(ctx, s.Config.Bucket(), s.Config.RemotePrefix(), s.Config.Credentials())
		if err != nil {
			return err
		}
		defer g.Close()
		remote = g
	}

	engine := filesync.Engine{
		Dir:     s.Config.BaseDir(),
		Files:   s.SyncFiles(),
		Remote:  remote,
		Locker:  s.Store,
		Timeout: s.Config.SyncTimeout(),
		DryRun:  n.DryRun,
		Log:     s.Log.Logger,
	}

	// The engine runs off the calling goroutine so a wedged remote
	// still honors ctx cancellation here.
	done := make(chan []filesync.Result, 1)
	go func() {
		done <- engine.Run(ctx)
	}()

	var results []filesync.Result
	select {
	case results = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	pp := printers.PrettyPrint{}
	pp.SyncReport(results)

	if !n.DryRun && downloaded(results) {
		if err := s.Reload(); err != nil {
			return err
		}
	}

	if failures := failed(results); failures > 0 {
		return fmt.Errorf("sync: %d file(s) failed", failures)
	}
	return nil
}

func downloaded(results []filesync.Result) bool {
	for _, r := range results {
		if r.State == filesync.StateDownloaded {
			return true
		}
	}
	return false
}

func failed(results []filesync.Result) int {
	n := 0
	for _, r := range results {
		if r.State == filesync.StateFailed {
			n++
		}
	}
	return n
}
