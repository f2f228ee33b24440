package search

import (
	"errors"
	"sort"
	"testing"

	"github.com/khanglvm/duriancare/internal/ripeness"
	"github.com/khanglvm/duriancare/internal/storage"
)

func record(id int64, result ripeness.Status, date string) storage.Record {
	return storage.Record{
		ID:         id,
		Date:       date,
		Result:     result,
		Confidence: 90,
		Variety:    storage.DefaultVariety,
	}
}

func sampleRecords() []storage.Record {
	return []storage.Record{
		record(1, ripeness.Ripe, "10/13/2026"),
		record(2, ripeness.Unripe, "10/14/2026"),
		record(3, ripeness.Overripe, "10/15/2026"),
	}
}

func sortedIDs(t *testing.T, idx *Index, text string) []int64 {
	t.Helper()

	got, err := idx.Match(text)
	if err != nil {
		t.Fatalf("Match(%q) failed: %v", text, err)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	return got
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewIndex(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	got, err := idx.Match("ripe")
	if err != nil {
		t.Fatalf("Match on empty index failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches on empty index, got %v", got)
	}
}

func TestSyncAndCount(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	if err := idx.Sync(sampleRecords()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 indexed records, got %d", count)
	}

	// Dropping a record removes it from the index
	if err := idx.Sync(sampleRecords()[:2]); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	count, _ = idx.Count()
	if count != 2 {
		t.Errorf("expected 2 indexed records after removal, got %d", count)
	}
	if got := sortedIDs(t, idx, "over"); len(got) != 0 {
		t.Errorf("removed record still matches: %v", got)
	}
}

func TestMatchSubstringCaseInsensitive(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	if err := idx.Sync(sampleRecords()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	tests := []struct {
		name string
		text string
		want []int64
	}{
		{"lowercase result", "ripe", []int64{1, 2, 3}},
		{"uppercase result", "RIPE", []int64{1, 2, 3}},
		{"prefix", "un", []int64{2}},
		{"mixed case", "OverRipe", []int64{3}},
		{"date fragment", "10/15", []int64{3}},
		{"year", "2026", []int64{1, 2, 3}},
		{"variety", "puy", []int64{1, 2, 3}},
		{"no match", "musang", []int64{}},
		{"empty", "", []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sortedIDs(t, idx, tt.text)
			if !equalIDs(got, tt.want) {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatchRejectsWildcards(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	for _, text := range []string{"*", "ri?e"} {
		if _, err := idx.Match(text); !errors.Is(err, ErrUnsupportedQuery) {
			t.Errorf("Match(%q) error = %v, want ErrUnsupportedQuery", text, err)
		}
	}
}
