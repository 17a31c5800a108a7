// Package session assembles the application state — config, store,
// side tables, command log, logger — into one value the runners share.
// Nothing in the application lives in package-level state.
package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"tableflip.dev/macromouse/pkg/history"
	"tableflip.dev/macromouse/pkg/logging"
	"tableflip.dev/macromouse/pkg/macro"
	"tableflip.dev/macromouse/pkg/store"
	"tableflip.dev/macromouse/pkg/usage"
)

// Session is created at startup and torn down at shutdown.
type Session struct {
	Config  store.Config
	Store   *store.Store
	Usage   *usage.Tables
	History *history.Log
	Log     *logging.Logger
}

// Load builds a session from cfg, loading config from disk when nil.
func Load(cfg store.Config) (*Session, error) {
	if cfg == nil {
		var err error
		cfg, err = store.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	dir := cfg.BaseDir()

	logger, err := logging.Open(filepath.Join(dir, store.LogFile))
	if err != nil {
		return nil, fmt.Errorf("session: open log: %w", err)
	}

	// The effective settings are exported next to the data files so
	// the sync set's config.json is real on this machine too.
	if err := store.ExportSettings(cfg); err != nil {
		logger.Warn().Err(err).Msg("settings export failed")
	}

	s, err := store.Open(dir, logger.Logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	tables, err := usage.Open(dir, s.Snapshot(), logger.Logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	log, err := history.Open(filepath.Join(dir, history.Dir))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	return &Session{
		Config:  cfg,
		Store:   s,
		Usage:   tables,
		History: log,
		Log:     logger,
	}, nil
}

// Close releases the session's resources.
func (s *Session) Close() error {
	return s.Log.Close()
}

// Reload re-reads the store and side tables from disk, after a sync
// download or a backup restore replaced them. The logger is reopened
// first: a downloaded log file replaced the inode the old logger held,
// and events written there would be lost.
func (s *Session) Reload() error {
	if err := s.Log.Close(); err != nil {
		return err
	}
	logger, err := logging.Open(filepath.Join(s.Config.BaseDir(), store.LogFile))
	if err != nil {
		return err
	}
	s.Log = logger

	st, err := store.Open(s.Config.BaseDir(), logger.Logger)
	if err != nil {
		return err
	}
	s.Store = st
	tables, err := usage.Open(s.Config.BaseDir(), st.Snapshot(), logger.Logger)
	if err != nil {
		return err
	}
	s.Usage = tables
	return nil
}

// SyncFiles is the fixed set of files the sync engine reconciles.
func (s *Session) SyncFiles() []string {
	return []string{
		store.DocumentFile,
		usage.CountsFile,
		usage.NotesFile,
		usage.LeaveRawFile,
		store.SettingsFile,
		store.LogFile,
	}
}

// applier satisfies history.Applier over the store and side tables.
type applier struct {
	*store.Store
	*usage.Tables
}

// Applier exposes the session to undo/redo replay.
func (s *Session) Applier() history.Applier {
	return applier{s.Store, s.Usage}
}

// ResolveMacro finds one macro by id or by bare name. A bare name that
// matches macros in several categories is an error naming them, so the
// caller can retry with "category/name".
func (s *Session) ResolveMacro(ref string) (*macro.Macro, error) {
	if m, ok := s.Store.MacroByID(ref); ok {
		return m, nil
	}
	if cat, name, ok := splitQualified(ref); ok {
		if c, found := s.Store.CategoryNamed(cat); found {
			if m, found := s.Store.MacroByName(c.ID, name); found {
				return m, nil
			}
		}
	}
	matches := s.Store.MacrosNamed(ref)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: macro %q", store.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		cats := make([]string, 0, len(matches))
		for _, m := range matches {
			if cat, ok := s.Store.CategoryByID(m.CategoryID); ok {
				cats = append(cats, cat.Name)
			}
		}
		return nil, fmt.Errorf("macro %q exists in several categories %v, qualify as category/name", ref, cats)
	}
}

func splitQualified(ref string) (category, name string, ok bool) {
	return strings.Cut(ref, "/")
}
