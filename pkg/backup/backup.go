// Package backup snapshots the data files into timestamped folders and
// restores them on demand.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// FolderPrefix names snapshot folders; the suffix is a sortable
// timestamp.
const FolderPrefix = "macromouse_backup_"

const stampLayout = "20060102_150405"

// Manager snapshots Files from Dir into Dir/backups.
type Manager struct {
	Dir   string
	Files []string
	Log   zerolog.Logger
	// now is the clock, overridable in tests.
	now func() time.Time
}

func (m *Manager) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func (m *Manager) backupsRoot() string {
	return filepath.Join(m.Dir, "backups")
}

// Snapshot copies every existing data file into a fresh timestamped
// folder and returns the folder name. Files that do not exist yet are
// simply not included.
func (m *Manager) Snapshot() (string, error) {
	name := FolderPrefix + m.clock().Format(stampLayout)
	target := filepath.Join(m.backupsRoot(), name)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("backup: create %s: %w", target, err)
	}
	copied := 0
	for _, file := range m.Files {
		src := filepath.Join(m.Dir, file)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := copyFile(src, filepath.Join(target, file)); err != nil {
			return "", fmt.Errorf("backup: copy %s: %w", file, err)
		}
		copied++
	}
	m.Log.Info().Str("backup", name).Int("files", copied).Msg("snapshot created")
	return name, nil
}

// List returns snapshot names, newest first.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.backupsRoot())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("backup: list: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), FolderPrefix) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Restore copies a snapshot's files back over the live data files. Each
// live file is copied to a .bak sibling first.
func (m *Manager) Restore(name string) error {
	source := filepath.Join(m.backupsRoot(), name)
	if fi, err := os.Stat(source); err != nil || !fi.IsDir() {
		return fmt.Errorf("backup: no such snapshot %q", name)
	}
	restored := 0
	for _, file := range m.Files {
		src := filepath.Join(source, file)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}
		live := filepath.Join(m.Dir, file)
		if _, err := os.Stat(live); err == nil {
			if err := copyFile(live, live+".bak"); err != nil {
				m.Log.Warn().Err(err).Str("file", file).Msg("backup of live file before restore failed")
			}
		}
		if err := copyFile(src, live); err != nil {
			return fmt.Errorf("backup: restore %s: %w", file, err)
		}
		restored++
	}
	m.Log.Info().Str("backup", name).Int("files", restored).Msg("snapshot restored")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
