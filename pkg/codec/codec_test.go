package codec

import (
	"os"
	"path/filepath"
	"testing"

	"tableflip.dev/macromouse/pkg/macro"
)

func testDoc() *macro.Document {
	doc := macro.NewDocument()
	now := macro.Now()
	doc.Categories["CAT_1"] = &macro.Category{ID: "CAT_1", Name: macro.Uncategorized, Created: now, Modified: now}
	doc.Categories["CAT_2"] = &macro.Category{ID: "CAT_2", Name: "Work", Description: "day job", Hidden: true, Created: now, Modified: now}
	doc.Macros["MACRO_1"] = &macro.Macro{
		ID:         "MACRO_1",
		CategoryID: "CAT_2",
		Name:       "Greeting",
		Content:    "Hello {{name}},\nRegards <date>",
		Created:    now,
		Modified:   now,
		Version:    3,
	}
	doc.CategoryOrder = []string{"CAT_1", "CAT_2"}
	return doc
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.xml")
	c := New(path)

	if err := c.Save(testDoc()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Schema != macro.CurrentSchema {
		t.Fatalf("schema %q", got.Schema)
	}
	if len(got.Categories) != 2 || len(got.Macros) != 1 {
		t.Fatalf("unexpected counts: %d categories, %d macros", len(got.Categories), len(got.Macros))
	}
	m := got.Macros["MACRO_1"]
	if m == nil || m.Content != "Hello {{name}},\nRegards <date>" {
		t.Fatalf("content not preserved: %#v", m)
	}
	if m.Version != 3 {
		t.Fatalf("version not preserved: %d", m.Version)
	}
	cat := got.Categories["CAT_2"]
	if cat == nil || !cat.Hidden || cat.Description != "day job" {
		t.Fatalf("category fields not preserved: %#v", cat)
	}
	if len(got.CategoryOrder) != 2 || got.CategoryOrder[0] != "CAT_1" || got.CategoryOrder[1] != "CAT_2" {
		t.Fatalf("order not preserved: %v", got.CategoryOrder)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent.xml"))
	doc, err := c.Load()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if doc == nil || len(doc.Categories) != 0 || len(doc.Macros) != 0 || len(doc.CategoryOrder) != 0 {
		t.Fatalf("expected empty document, got %#v", doc)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.xml")
	if err := os.WriteFile(path, []byte("<macro_data><nope"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	doc, err := New(path).Load()
	if err != nil {
		t.Fatalf("malformed file should degrade, not error: %v", err)
	}
	if len(doc.Categories) != 0 || len(doc.Macros) != 0 {
		t.Fatalf("expected empty document")
	}
}

func TestSaveWritesBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.xml")
	c := New(path)

	first := testDoc()
	if err := c.Save(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	second := testDoc()
	second.Macros["MACRO_1"].Content = "changed"
	if err := c.Save(second); err != nil {
		t.Fatalf("save: %v", err)
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("expected .bak sibling: %v", err)
	}
	if string(bak) != string(before) {
		t.Fatalf(".bak should hold the previous document")
	}
}

func TestLoadRepairsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.xml")
	c := New(path)
	doc := testDoc()
	// Order referencing a ghost id and omitting CAT_2.
	doc.CategoryOrder = []string{"CAT_1", "CAT_GONE"}
	if err := c.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.CategoryOrder) != len(got.Categories) {
		t.Fatalf("order should cover loaded categories: %v", got.CategoryOrder)
	}
	seen := map[string]bool{}
	for _, id := range got.CategoryOrder {
		if seen[id] {
			t.Fatalf("duplicate id in order: %v", got.CategoryOrder)
		}
		seen[id] = true
		if _, ok := got.Categories[id]; !ok {
			t.Fatalf("order references unknown id %s", id)
		}
	}
}

func TestLoadRepairsOrderDeterministically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.xml")
	c := New(path)
	doc := testDoc()
	now := macro.Now()
	doc.Categories["CAT_3"] = &macro.Category{ID: "CAT_3", Name: "alpha", Created: now, Modified: now}
	doc.Categories["CAT_4"] = &macro.Category{ID: "CAT_4", Name: "Beta", Created: now, Modified: now}
	doc.Categories["CAT_5"] = &macro.Category{ID: "CAT_5", Name: "gamma", Created: now, Modified: now}
	// Only CAT_1 survives in the persisted order; the rest must come
	// back appended by name, the same way on every load.
	doc.CategoryOrder = []string{"CAT_1"}
	if err := c.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := []string{"CAT_1", "CAT_3", "CAT_4", "CAT_5", "CAT_2"}
	for i := 0; i < 5; i++ {
		got, err := c.Load()
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if len(got.CategoryOrder) != len(want) {
			t.Fatalf("load %d: order %v", i, got.CategoryOrder)
		}
		for j, id := range want {
			if got.CategoryOrder[j] != id {
				t.Fatalf("load %d: order %v, want %v", i, got.CategoryOrder, want)
			}
		}
	}
}
