package store

import (
	"testing"
)

type fakeCounts map[string]int

func (f fakeCounts) Count(id string) int { return f[id] }

func TestQuerySearchAndFilter(t *testing.T) {
	s, _ := openStore(t)
	workID, _ := s.CreateCategory("Work", "")
	playID, _ := s.CreateCategory("Play", "")
	_, _ = s.CreateMacro(workID, "Standup", "daily STATUS update")
	_, _ = s.CreateMacro(workID, "Signature", "regards, me")
	_, _ = s.CreateMacro(playID, "Joke", "status: hilarious")

	all := s.Query(AllCategoriesFilter, "", nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 macros, got %d", len(all))
	}

	work := s.Query("Work", "", nil)
	if len(work) != 2 {
		t.Fatalf("category filter failed: %v", work)
	}

	// Search is case-insensitive over name and content.
	hits := s.Query(AllCategoriesFilter, "status", nil)
	if len(hits) != 2 {
		t.Fatalf("expected 2 search hits, got %d: %v", len(hits), hits)
	}
	byName := s.Query(AllCategoriesFilter, "sigNATure", nil)
	if len(byName) != 1 || byName[0].Name != "Signature" {
		t.Fatalf("name search failed: %v", byName)
	}
}

func TestQueryHiddenCategoryExcluded(t *testing.T) {
	s, _ := openStore(t)
	workID, _ := s.CreateCategory("Work", "")
	if _, err := s.CreateMacro(workID, "Standup", "x"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SetCategoryHidden(workID, true); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if got := s.Query(AllCategoriesFilter, "", nil); len(got) != 0 {
		t.Fatalf("hidden category macros must not list: %v", got)
	}
	// Hiding does not alter the macros themselves.
	if err := s.SetCategoryHidden(workID, false); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	if got := s.Query(AllCategoriesFilter, "", nil); len(got) != 1 {
		t.Fatalf("macro should reappear: %v", got)
	}
}

func TestQueryUsageRanking(t *testing.T) {
	s, _ := openStore(t)
	workID, _ := s.CreateCategory("Work", "")
	a, _ := s.CreateMacro(workID, "Alpha", "")
	b, _ := s.CreateMacro(workID, "Bravo", "")
	c, _ := s.CreateMacro(workID, "Charlie", "")
	d, _ := s.CreateMacro(workID, "delta", "")

	counts := fakeCounts{b: 2, c: 5}
	got := s.Query(AllCategoriesFilter, "", counts)
	names := make([]string, len(got))
	for i, v := range got {
		names[i] = v.Name
	}
	// Used macros first by count, then the never-used alphabetically,
	// case-insensitive.
	want := []string{"Charlie", "Bravo", "Alpha", "delta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v want %v", names, want)
		}
	}
	_ = a
	_ = d
}

func TestQueryScenario(t *testing.T) {
	// Empty store, create a category and a macro, query, delete, query.
	s, _ := openStore(t)
	workID, err := s.CreateCategory("Work", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := s.CreateMacro(workID, "Greeting", "Hello {{name}}"); err != nil {
		t.Fatalf("create macro: %v", err)
	}

	got := s.Query(AllCategoriesFilter, "", nil)
	if len(got) != 1 || got[0].Name != "Greeting" || got[0].Category != "Work" {
		t.Fatalf("unexpected query result: %v", got)
	}

	if _, err := s.DeleteCategory(workID, DeleteMacros); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if got := s.Query(AllCategoriesFilter, "", nil); len(got) != 0 {
		t.Fatalf("query should be empty after delete: %v", got)
	}
	for _, id := range s.CategoryOrder() {
		if id == workID {
			t.Fatalf("deleted category still in order")
		}
	}
	checkOrderInvariant(t, s)
}

func TestCategoriesListing(t *testing.T) {
	s, _ := openStore(t)
	workID, _ := s.CreateCategory("Work", "")
	_, _ = s.CreateCategory("Play", "")
	_ = s.SetCategoryHidden(workID, true)

	visible := s.Categories()
	for _, cat := range visible {
		if cat.Name == "Work" {
			t.Fatalf("hidden category listed as visible")
		}
	}
	if len(s.AllCategories()) != len(visible)+1 {
		t.Fatalf("AllCategories should include the hidden one")
	}
}
