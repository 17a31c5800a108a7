package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"tableflip.dev/macromouse/pkg/macro"
)

func testDoc() *macro.Document {
	doc := macro.NewDocument()
	doc.Categories["CAT_1"] = &macro.Category{ID: "CAT_1", Name: "Work"}
	doc.Macros["MACRO_1"] = &macro.Macro{ID: "MACRO_1", CategoryID: "CAT_1", Name: "Greeting"}
	doc.CategoryOrder = []string{"CAT_1"}
	return doc
}

func open(t *testing.T, dir string, doc *macro.Document) *Tables {
	t.Helper()
	tables, err := Open(dir, doc, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return tables
}

func TestIncrementPersists(t *testing.T) {
	dir := t.TempDir()
	doc := testDoc()

	tables := open(t, dir, doc)
	if err := tables.Increment("MACRO_1"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := tables.Increment("MACRO_1"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	reopened := open(t, dir, doc)
	if got := reopened.Count("MACRO_1"); got != 2 {
		t.Fatalf("count after reopen = %d, want 2", got)
	}
}

func TestResetCounts(t *testing.T) {
	dir := t.TempDir()
	doc := testDoc()

	tables := open(t, dir, doc)
	for id, n := range map[string]int{"MACRO_1": 9, "MACRO_2": 5, "MACRO_3": 1} {
		for i := 0; i < n; i++ {
			if err := tables.Increment(id); err != nil {
				t.Fatalf("increment: %v", err)
			}
		}
	}

	if err := tables.ResetCounts(2); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := tables.Count("MACRO_1"); got != 9 {
		t.Fatalf("top count dropped: %d", got)
	}
	if got := tables.Count("MACRO_2"); got != 5 {
		t.Fatalf("second count dropped: %d", got)
	}
	if got := tables.Count("MACRO_3"); got != 0 {
		t.Fatalf("count beyond keep-top survived: %d", got)
	}

	if err := tables.ResetCounts(0); err != nil {
		t.Fatalf("reset all: %v", err)
	}
	reopened := open(t, dir, doc)
	for _, id := range []string{"MACRO_1", "MACRO_2", "MACRO_3"} {
		if got := reopened.Count(id); got != 0 {
			t.Fatalf("count %s survived full reset: %d", id, got)
		}
	}
}

func TestNotesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := testDoc()

	tables := open(t, dir, doc)
	if err := tables.SetNote("MACRO_1", "send before noon"); err != nil {
		t.Fatalf("set note: %v", err)
	}

	reopened := open(t, dir, doc)
	n, ok := reopened.Note("MACRO_1")
	if !ok || n.Notes != "send before noon" {
		t.Fatalf("note not persisted: %v %v", n, ok)
	}
	if n.LastUpdated.IsZero() {
		t.Fatalf("LastUpdated should be set")
	}

	if err := reopened.SetNote("MACRO_1", ""); err != nil {
		t.Fatalf("clear note: %v", err)
	}
	if _, ok := reopened.Note("MACRO_1"); ok {
		t.Fatalf("empty text should remove the note")
	}
}

func TestRestoreNoteKeepsTimestamp(t *testing.T) {
	dir := t.TempDir()
	doc := testDoc()
	tables := open(t, dir, doc)

	when, _ := macro.ParseTime("2024-01-02T03:04:05Z")
	snap := &Note{Notes: "old", LastUpdated: macro.Timestamp{Time: when}}
	if err := tables.RestoreNote("MACRO_1", snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	n, ok := tables.Note("MACRO_1")
	if !ok || !n.LastUpdated.Equal(when) {
		t.Fatalf("restore must keep the snapshot timestamp: %v", n)
	}
}

func TestLeaveRawRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := testDoc()
	tables := open(t, dir, doc)

	if err := tables.SetLeaveRaw("MACRO_1", "name", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	reopened := open(t, dir, doc)
	if !reopened.LeaveRaw("MACRO_1")["name"] {
		t.Fatalf("leave-raw flag not persisted")
	}
	if err := reopened.SetLeaveRaw("MACRO_1", "name", false); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if reopened.LeaveRaw("MACRO_1")["name"] {
		t.Fatalf("leave-raw flag should be cleared")
	}
}

func TestRemoveMacro(t *testing.T) {
	dir := t.TempDir()
	doc := testDoc()
	tables := open(t, dir, doc)

	_ = tables.Increment("MACRO_1")
	_ = tables.SetNote("MACRO_1", "note")
	_ = tables.SetLeaveRaw("MACRO_1", "name", true)

	if err := tables.RemoveMacro("MACRO_1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	reopened := open(t, dir, doc)
	if reopened.Count("MACRO_1") != 0 {
		t.Fatalf("count survived delete")
	}
	if _, ok := reopened.Note("MACRO_1"); ok {
		t.Fatalf("note survived delete")
	}
	if len(reopened.LeaveRaw("MACRO_1")) != 0 {
		t.Fatalf("leave-raw survived delete")
	}
}

func TestLegacyKeyMigration(t *testing.T) {
	dir := t.TempDir()
	doc := testDoc()

	seed := func(name string, v interface{}) {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal seed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	seed(CountsFile, map[string]int{"Work|||Greeting": 7, "Gone|||Macro": 3})
	seed(NotesFile, map[string]Note{"Work|||Greeting": {Notes: "legacy note"}})
	seed(LeaveRawFile, map[string]map[string]bool{"Greeting": {"name": true}})

	tables := open(t, dir, doc)

	if got := tables.Count("MACRO_1"); got != 7 {
		t.Fatalf("legacy count not migrated: %d", got)
	}
	if got := tables.Count("Gone|||Macro"); got != 3 {
		t.Fatalf("unresolvable legacy key must be kept: %d", got)
	}
	if n, ok := tables.Note("MACRO_1"); !ok || n.Notes != "legacy note" {
		t.Fatalf("legacy note not migrated: %v %v", n, ok)
	}
	if !tables.LeaveRaw("MACRO_1")["name"] {
		t.Fatalf("legacy leave-raw (bare name key) not migrated")
	}

	// Migration is persisted: a reopen without the doc-side rename still
	// finds id keys.
	reopened := open(t, dir, doc)
	if got := reopened.Count("MACRO_1"); got != 7 {
		t.Fatalf("migration not persisted: %d", got)
	}
}

func TestMalformedTableStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, CountsFile), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tables := open(t, dir, testDoc())
	if tables.Count("MACRO_1") != 0 {
		t.Fatalf("malformed table should load empty")
	}
}
