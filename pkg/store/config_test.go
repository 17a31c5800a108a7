package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExportSettingsKeepsMtimeWhenUnchanged(t *testing.T) {
	dir := t.TempDir()
	cfg := &fileConfig{
		Path:           dir,
		BucketName:     "my-bucket",
		Prefix:         "macro-data",
		TimeoutSeconds: 30,
	}

	if err := ExportSettings(cfg); err != nil {
		t.Fatalf("export: %v", err)
	}
	path := filepath.Join(dir, SettingsFile)
	old := time.Unix(1000, 0)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	// Same settings must not rewrite the file; its mtime feeds the
	// sync comparison and a rewrite would force a spurious upload.
	if err := ExportSettings(cfg); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !fi.ModTime().Equal(old) {
		t.Fatalf("unchanged settings rewrote the file: mtime %v", fi.ModTime())
	}

	cfg.BucketName = "other-bucket"
	if err := ExportSettings(cfg); err != nil {
		t.Fatalf("export changed: %v", err)
	}
	fi, err = os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.ModTime().Equal(old) {
		t.Fatalf("changed settings did not rewrite the file")
	}
}

func TestSavedSettingsFillUnsetKeys(t *testing.T) {
	dir := t.TempDir()
	exported := &fileConfig{
		Path:           dir,
		BucketName:     "synced-bucket",
		Prefix:         "team-prefix",
		TimeoutSeconds: 45,
	}
	if err := ExportSettings(exported); err != nil {
		t.Fatalf("export: %v", err)
	}

	// A fresh machine with only a data path configured picks up the
	// downloaded settings.
	cfg := &fileConfig{Path: dir}
	applySavedSettings(cfg)
	if cfg.BucketName != "synced-bucket" {
		t.Fatalf("bucket not filled: %q", cfg.BucketName)
	}
	if cfg.Prefix != "team-prefix" {
		t.Fatalf("prefix not filled: %q", cfg.Prefix)
	}
	if cfg.TimeoutSeconds != 45 {
		t.Fatalf("timeout not filled: %d", cfg.TimeoutSeconds)
	}

	// Locally configured values win over the synced file.
	local := &fileConfig{Path: dir, BucketName: "local-bucket"}
	applySavedSettings(local)
	if local.BucketName != "local-bucket" {
		t.Fatalf("local bucket overridden: %q", local.BucketName)
	}
}

func TestSavedSettingsMissingFile(t *testing.T) {
	cfg := &fileConfig{Path: t.TempDir(), BucketName: "b"}
	applySavedSettings(cfg)
	if cfg.BucketName != "b" {
		t.Fatalf("config mutated without a settings file: %q", cfg.BucketName)
	}
}
