package bm25

import (
	"context"
	"testing"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	ix := New()
	err := ix.IndexDocuments(context.Background(), []domain.Document{
		{ID: "c1", Text: "output impedance is 8 ohm nominal", Source: "amp.pdf"},
		{ID: "c2", Text: "signal to noise ratio 98 db at rated power", Source: "amp.pdf"},
		{ID: "c3", Text: "cleaning instructions for the front panel", Source: "manual.pdf"},
	})
	if err != nil {
		t.Fatalf("IndexDocuments() error = %v", err)
	}
	return ix
}

func TestSearchRanksExactTermMatchFirst(t *testing.T) {
	ix := seedIndex(t)

	list, err := ix.Search(context.Background(), "noise ratio db", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(list) == 0 {
		t.Fatalf("expected matches")
	}
	if list[0].ID != "c2" {
		t.Fatalf("expected c2 first, got %s", list[0].ID)
	}
	if list[0].Score <= 0 {
		t.Fatalf("expected positive bm25 score, got %v", list[0].Score)
	}
}

func TestSearchEmptyQueryAndEmptyIndex(t *testing.T) {
	ix := New()
	if list, err := ix.Search(context.Background(), "anything", 5); err != nil || list != nil {
		t.Fatalf("expected nil result on empty index, got %v, %v", list, err)
	}

	ix = seedIndex(t)
	if list, err := ix.Search(context.Background(), "  ,.  ", 5); err != nil || list != nil {
		t.Fatalf("expected nil result for token-free query, got %v, %v", list, err)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	ix := seedIndex(t)

	list, err := ix.Search(context.Background(), "amp pdf panel power", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected limit 1, got %d", len(list))
	}
}

func TestSearchOmitsNonMatchingDocuments(t *testing.T) {
	ix := seedIndex(t)

	list, err := ix.Search(context.Background(), "impedance", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != "c1" {
		t.Fatalf("expected only c1, got %+v", list)
	}
}
