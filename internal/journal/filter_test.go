package journal

import (
	"testing"

	"github.com/starford/chroniclelens/internal/models"
)

func titles(entries []models.JournalEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestFilter_EmptyQueryNewestFirst(t *testing.T) {
	entries := SampleEntries(testNow)
	got := Filter(entries, "", NewestFirst)

	if len(got) != len(entries) {
		t.Fatalf("expected all %d entries, got %d", len(entries), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Errorf("not descending at %d: %v", i, titles(got))
		}
	}
	if got[0].Title != "Cooking Experiment" {
		t.Errorf("expected newest first, got %v", titles(got))
	}
}

func TestFilter_Query(t *testing.T) {
	entries := SampleEntries(testNow)

	tests := []struct {
		query string
		want  []string
	}{
		{"friends", []string{"Weekend Adventure"}},
		{"FRIENDS", []string{"Weekend Adventure"}},
		{"cook", []string{"Cooking Experiment"}},
		{"milestone", []string{"My First Memory"}},
		{"viewpoint", []string{"Weekend Adventure"}},
		{"nothing matches this", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := titles(Filter(entries, tt.query, NewestFirst))
			if len(got) != len(tt.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Filter(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilter_Orders(t *testing.T) {
	entries := SampleEntries(testNow)

	oldest := titles(Filter(entries, "", OldestFirst))
	if oldest[0] != "My First Memory" || oldest[2] != "Cooking Experiment" {
		t.Errorf("unexpected oldest-first order %v", oldest)
	}

	alpha := titles(Filter(entries, "", Alphabetical))
	want := []string{"Cooking Experiment", "My First Memory", "Weekend Adventure"}
	for i := range want {
		if alpha[i] != want[i] {
			t.Errorf("alphabetical[%d] = %q, want %q", i, alpha[i], want[i])
		}
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	entries := SampleEntries(testNow)
	Filter(entries, "", Alphabetical)
	if entries[0].Title != "My First Memory" {
		t.Error("input slice reordered")
	}
}

func TestFilter_StableTies(t *testing.T) {
	entries := []models.JournalEntry{
		{ID: "1", Title: "same", CreatedAt: testNow},
		{ID: "2", Title: "same", CreatedAt: testNow},
	}
	for _, order := range []SortOrder{NewestFirst, OldestFirst, Alphabetical} {
		got := Filter(entries, "", order)
		if got[0].ID != "1" || got[1].ID != "2" {
			t.Errorf("%s: ties not stable", order)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"", NewestFirst, false},
		{"newest_first", NewestFirst, false},
		{" Oldest_First ", OldestFirst, false},
		{"alphabetical", Alphabetical, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSortOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortOrder(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortOrder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStoreFilter(t *testing.T) {
	s := testStore(t, WithEntries(SampleEntries(testNow)...))
	got := s.Filter("cook", NewestFirst)
	if len(got) != 1 || got[0].Title != "Cooking Experiment" {
		t.Errorf("unexpected result %v", titles(got))
	}
}
