// Package sync reconciles the local data files against a remote object
// store, file by file, resolving conflicts by last-writer-wins on
// modification timestamps.
//
// This is point-in-time, whole-file synchronization for one person
// using several machines. Concurrent edits to the same file from two
// machines are not merged; the newer file wins and the other side's
// edits are discarded.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// State is the per-file outcome of one sync pass.
type State string

const (
	StateUploaded   State = "uploaded"
	StateDownloaded State = "downloaded"
	StateInSync     State = "in-sync"
	StateSkipped    State = "skipped"
	StateFailed     State = "failed"
)

// Info describes a remote object.
type Info struct {
	Exists bool
	// LastModified is epoch seconds of content authorship, read from
	// the uploader-set metadata in preference to the store's own
	// object-updated time (which reflects upload time and mis-orders
	// clock-skewed edits).
	LastModified int64
}

// Meta is the metadata written alongside an upload.
type Meta struct {
	LastModified int64
	UploadedAt   time.Time
	Size         int64
}

// Remote is the blob store the engine talks to.
type Remote interface {
	Stat(ctx context.Context, name string) (Info, error)
	Download(ctx context.Context, name string, w io.Writer) (Info, error)
	Upload(ctx context.Context, name string, r io.Reader, meta Meta) error
}

// Locker serializes local file replacement against store mutation.
// *store.Store satisfies it.
type Locker interface {
	Lock()
	Unlock()
}

// Result reports one file's outcome. A failed file never aborts the
// others; callers get the full list.
type Result struct {
	File   string
	State  State
	Detail string
	Err    error
}

// Engine runs the reconciliation over a fixed set of file names found
// in Dir.
type Engine struct {
	Dir     string
	Files   []string
	Remote  Remote
	Locker  Locker
	Timeout time.Duration
	DryRun  bool
	Log     zerolog.Logger
	// now is the clock, overridable in tests.
	now func() time.Time
}

// Run reconciles every file independently and returns one result per
// file, in input order.
func (e *Engine) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(e.Files))
	for _, name := range e.Files {
		results = append(results, e.syncFile(ctx, name))
	}
	return results
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *Engine) syncFile(ctx context.Context, name string) Result {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	localPath := filepath.Join(e.Dir, name)
	localTS := localTimestamp(localPath)

	remote, err := e.Remote.Stat(ctx, name)
	if err != nil {
		e.Log.Error().Err(err).Str("file", name).Msg("remote stat failed")
		return Result{File: name, State: StateFailed, Detail: "remote unavailable", Err: err}
	}
	remoteTS := int64(0)
	if remote.Exists {
		remoteTS = remote.LastModified
	}

	switch {
	case localTS == 0 && remoteTS == 0:
		return Result{File: name, State: StateSkipped, Detail: "missing on both sides"}
	case localTS == remoteTS:
		return Result{File: name, State: StateInSync}
	case localTS > remoteTS:
		return e.upload(ctx, name, localPath)
	default:
		return e.download(ctx, name, localPath, remoteTS)
	}
}

func localTimestamp(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.ModTime().Unix()
}

func (e *Engine) upload(ctx context.Context, name, localPath string) Result {
	if e.DryRun {
		return Result{File: name, State: StateUploaded, Detail: "dry run, local is newer"}
	}
	f, err := os.Open(localPath)
	if err != nil {
		return Result{File: name, State: StateFailed, Detail: "open local file", Err: err}
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return Result{File: name, State: StateFailed, Detail: "stat local file", Err: err}
	}

	now := e.clock()
	meta := Meta{LastModified: now.Unix(), UploadedAt: now, Size: fi.Size()}
	if err := e.Remote.Upload(ctx, name, f, meta); err != nil {
		e.Log.Error().Err(err).Str("file", name).Msg("upload failed")
		return Result{File: name, State: StateFailed, Detail: "upload", Err: err}
	}
	// Pin the local mtime to the metadata we just wrote so the next
	// pass compares equal instead of re-downloading our own upload.
	when := time.Unix(meta.LastModified, 0)
	if err := os.Chtimes(localPath, when, when); err != nil {
		e.Log.Warn().Err(err).Str("file", name).Msg("set local mtime after upload")
	}
	e.Log.Info().Str("file", name).Int64("lastModified", meta.LastModified).Msg("uploaded")
	return Result{File: name, State: StateUploaded}
}

func (e *Engine) download(ctx context.Context, name, localPath string, remoteTS int64) Result {
	if e.DryRun {
		return Result{File: name, State: StateDownloaded, Detail: "dry run, remote is newer"}
	}
	if e.Locker != nil {
		e.Locker.Lock()
		defer e.Locker.Unlock()
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return Result{File: name, State: StateFailed, Detail: "ensure local directory", Err: err}
	}
	tmp := localPath + ".sync"
	f, err := os.Create(tmp)
	if err != nil {
		return Result{File: name, State: StateFailed, Detail: "create temp file", Err: err}
	}
	info, err := e.Remote.Download(ctx, name, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		e.Log.Error().Err(err).Str("file", name).Msg("download failed")
		return Result{File: name, State: StateFailed, Detail: "download", Err: err}
	}

	if err := backupLocal(localPath); err != nil {
		e.Log.Warn().Err(err).Str("file", name).Msg("backup before replace failed")
	}
	if err := os.Rename(tmp, localPath); err != nil {
		_ = os.Remove(tmp)
		return Result{File: name, State: StateFailed, Detail: "replace local file", Err: err}
	}

	// Stamp the local file with the remote authorship time so repeated
	// runs report in-sync.
	ts := remoteTS
	if info.Exists && info.LastModified > 0 {
		ts = info.LastModified
	}
	when := time.Unix(ts, 0)
	if err := os.Chtimes(localPath, when, when); err != nil {
		e.Log.Warn().Err(err).Str("file", name).Msg("set local mtime after download")
	}
	e.Log.Info().Str("file", name).Int64("lastModified", ts).Msg("downloaded")
	return Result{File: name, State: StateDownloaded}
}

func backupLocal(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer src.Close()
	dst, err := os.Create(path + ".backup")
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// Summarize renders a one-line roll-up for logs and CLI output.
func Summarize(results []Result) string {
	counts := map[State]int{}
	for _, r := range results {
		counts[r.State]++
	}
	return fmt.Sprintf("%d uploaded, %d downloaded, %d in sync, %d skipped, %d failed",
		counts[StateUploaded], counts[StateDownloaded], counts[StateInSync], counts[StateSkipped], counts[StateFailed])
}
