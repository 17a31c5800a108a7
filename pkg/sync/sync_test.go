package sync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeObject struct {
	data         []byte
	lastModified int64
}

type fakeRemote struct {
	objects  map[string]*fakeObject
	statErr  map[string]error
	uploads  int
	statSlow time.Duration
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{objects: map[string]*fakeObject{}, statErr: map[string]error{}}
}

func (f *fakeRemote) Stat(ctx context.Context, name string) (Info, error) {
	if f.statSlow > 0 {
		select {
		case <-time.After(f.statSlow):
		case <-ctx.Done():
			return Info{}, ctx.Err()
		}
	}
	if err := f.statErr[name]; err != nil {
		return Info{}, err
	}
	obj, ok := f.objects[name]
	if !ok {
		return Info{}, nil
	}
	return Info{Exists: true, LastModified: obj.lastModified}, nil
}

func (f *fakeRemote) Download(ctx context.Context, name string, w io.Writer) (Info, error) {
	obj, ok := f.objects[name]
	if !ok {
		return Info{}, errors.New("object gone")
	}
	if _, err := w.Write(obj.data); err != nil {
		return Info{}, err
	}
	return Info{Exists: true, LastModified: obj.lastModified}, nil
}

func (f *fakeRemote) Upload(ctx context.Context, name string, r io.Reader, meta Meta) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.objects[name] = &fakeObject{data: buf.Bytes(), lastModified: meta.LastModified}
	f.uploads++
	return nil
}

type countingLocker struct {
	locks, unlocks int
}

func (c *countingLocker) Lock()   { c.locks++ }
func (c *countingLocker) Unlock() { c.unlocks++ }

func writeLocal(t *testing.T, dir, name, content string, mtime int64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	when := time.Unix(mtime, 0)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func engine(dir string, remote Remote, files ...string) *Engine {
	return &Engine{
		Dir:    dir,
		Files:  files,
		Remote: remote,
		Log:    zerolog.Nop(),
		now:    func() time.Time { return time.Unix(5000, 0) },
	}
}

func TestDownloadWhenRemoteNewer(t *testing.T) {
	dir := t.TempDir()
	remote := newFakeRemote()
	writeLocal(t, dir, "macros.xml", "old local", 100)
	remote.objects["macros.xml"] = &fakeObject{data: []byte("new remote"), lastModified: 200}

	locker := &countingLocker{}
	e := engine(dir, remote, "macros.xml")
	e.Locker = locker

	results := e.Run(context.Background())
	if len(results) != 1 || results[0].State != StateDownloaded {
		t.Fatalf("expected download, got %+v", results)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "macros.xml"))
	if string(data) != "new remote" {
		t.Fatalf("local content not replaced: %q", data)
	}
	fi, _ := os.Stat(filepath.Join(dir, "macros.xml"))
	if fi.ModTime().Unix() != 200 {
		t.Fatalf("local mtime should equal remote last_modified: %d", fi.ModTime().Unix())
	}
	if locker.locks != 1 || locker.unlocks != 1 {
		t.Fatalf("download must hold the mutation lock: %+v", locker)
	}

	// Idempotence: a second run reports in-sync.
	again := e.Run(context.Background())
	if again[0].State != StateInSync {
		t.Fatalf("second run should be in sync, got %+v", again[0])
	}
}

func TestDownloadBacksUpPrevious(t *testing.T) {
	dir := t.TempDir()
	remote := newFakeRemote()
	writeLocal(t, dir, "macros.xml", "precious", 100)
	remote.objects["macros.xml"] = &fakeObject{data: []byte("remote"), lastModified: 200}

	e := engine(dir, remote, "macros.xml")
	if got := e.Run(context.Background()); got[0].State != StateDownloaded {
		t.Fatalf("expected download: %+v", got)
	}
	backup, err := os.ReadFile(filepath.Join(dir, "macros.xml.backup"))
	if err != nil || string(backup) != "precious" {
		t.Fatalf("previous local content should be backed up: %q %v", backup, err)
	}
}

func TestUploadWhenLocalNewer(t *testing.T) {
	dir := t.TempDir()
	remote := newFakeRemote()
	writeLocal(t, dir, "macros.xml", "local wins", 300)
	remote.objects["macros.xml"] = &fakeObject{data: []byte("stale"), lastModified: 200}

	e := engine(dir, remote, "macros.xml")
	results := e.Run(context.Background())
	if results[0].State != StateUploaded {
		t.Fatalf("expected upload, got %+v", results[0])
	}
	if string(remote.objects["macros.xml"].data) != "local wins" {
		t.Fatalf("remote not replaced")
	}
	if remote.objects["macros.xml"].lastModified != 5000 {
		t.Fatalf("upload must stamp fresh last_modified, got %d", remote.objects["macros.xml"].lastModified)
	}

	again := e.Run(context.Background())
	if again[0].State != StateInSync {
		t.Fatalf("second run should be in sync, got %+v", again[0])
	}
}

func TestOneSideMissing(t *testing.T) {
	dir := t.TempDir()
	remote := newFakeRemote()
	writeLocal(t, dir, "only-local.json", "x", 100)
	remote.objects["only-remote.json"] = &fakeObject{data: []byte("y"), lastModified: 100}

	e := engine(dir, remote, "only-local.json", "only-remote.json", "nowhere.json")
	results := e.Run(context.Background())

	if results[0].State != StateUploaded {
		t.Fatalf("local-only file should upload: %+v", results[0])
	}
	if results[1].State != StateDownloaded {
		t.Fatalf("remote-only file should download: %+v", results[1])
	}
	if results[2].State != StateSkipped {
		t.Fatalf("missing-everywhere file should skip: %+v", results[2])
	}
}

func TestFailureDoesNotAbortOthers(t *testing.T) {
	dir := t.TempDir()
	remote := newFakeRemote()
	remote.statErr["broken.json"] = errors.New("auth expired")
	writeLocal(t, dir, "fine.json", "x", 100)

	e := engine(dir, remote, "broken.json", "fine.json")
	results := e.Run(context.Background())
	if results[0].State != StateFailed || results[0].Err == nil {
		t.Fatalf("expected failure for broken file: %+v", results[0])
	}
	if results[1].State != StateUploaded {
		t.Fatalf("remaining files must still process: %+v", results[1])
	}
}

func TestPerFileTimeout(t *testing.T) {
	dir := t.TempDir()
	remote := newFakeRemote()
	remote.statSlow = 200 * time.Millisecond
	writeLocal(t, dir, "slow.json", "x", 100)

	e := engine(dir, remote, "slow.json")
	e.Timeout = 10 * time.Millisecond
	results := e.Run(context.Background())
	if results[0].State != StateFailed {
		t.Fatalf("timeout should mark the file failed: %+v", results[0])
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	remote := newFakeRemote()
	writeLocal(t, dir, "up.json", "local", 300)
	remote.objects["up.json"] = &fakeObject{data: []byte("stale"), lastModified: 100}
	remote.objects["down.json"] = &fakeObject{data: []byte("remote"), lastModified: 100}

	e := engine(dir, remote, "up.json", "down.json")
	e.DryRun = true
	results := e.Run(context.Background())
	if results[0].State != StateUploaded || results[1].State != StateDownloaded {
		t.Fatalf("dry run should report intended actions: %+v", results)
	}
	if remote.uploads != 0 {
		t.Fatalf("dry run must not upload")
	}
	if _, err := os.Stat(filepath.Join(dir, "down.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run must not download")
	}
	if string(remote.objects["up.json"].data) != "stale" {
		t.Fatalf("dry run must not modify remote")
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]Result{
		{State: StateUploaded},
		{State: StateDownloaded},
		{State: StateDownloaded},
		{State: StateInSync},
		{State: StateFailed},
	})
	want := "1 uploaded, 2 downloaded, 1 in sync, 0 skipped, 1 failed"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
