package feed

import (
	"testing"
	"time"

	"camerpulse-feed/internal/domain"
)

func TestAssembleSortsByScoreThenRecency(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	candidates := []domain.FeedItem{
		{ContentID: "old-high", Score: 0.9, CreatedAt: now.Add(-2 * time.Hour)},
		{ContentID: "low", Score: 0.2, CreatedAt: now},
		{ContentID: "new-high", Score: 0.9, CreatedAt: now.Add(-time.Hour)},
	}

	page := AssemblePage(candidates, 3, 0)
	got := []string{page.Items[0].ContentID, page.Items[1].ContentID, page.Items[2].ContentID}
	want := []string{"new-high", "old-high", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestAssembleKeepsFetchOrderOnFullTies(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	candidates := []domain.FeedItem{
		{ContentID: "first", Score: 0.5, CreatedAt: now},
		{ContentID: "second", Score: 0.5, CreatedAt: now},
	}
	page := AssemblePage(candidates, 2, 0)
	if page.Items[0].ContentID != "first" || page.Items[1].ContentID != "second" {
		t.Fatalf("expected fetch order preserved on ties, got %s then %s", page.Items[0].ContentID, page.Items[1].ContentID)
	}
}

func TestAssembleOffsetBeyondEnd(t *testing.T) {
	candidates := []domain.FeedItem{{ContentID: "only", Score: 0.5}}
	page := AssemblePage(candidates, 3, 10)
	if len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(page.Items))
	}
	if page.HasNextPage {
		t.Fatalf("expected no next page past the end")
	}
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	candidates := []domain.FeedItem{
		{ContentID: "a", Score: 0.1},
		{ContentID: "b", Score: 0.9},
	}
	AssemblePage(candidates, 2, 0)
	if candidates[0].ContentID != "a" {
		t.Fatalf("expected input order untouched")
	}
}
