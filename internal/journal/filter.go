package journal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/chroniclelens/internal/models"
)

// SortOrder selects how the visible list is ordered.
type SortOrder string

const (
	NewestFirst  SortOrder = "newest_first"
	OldestFirst  SortOrder = "oldest_first"
	Alphabetical SortOrder = "alphabetical"
)

// ParseSortOrder maps a user-supplied value onto a SortOrder. Empty input
// yields NewestFirst.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", NewestFirst:
		return NewestFirst, nil
	case OldestFirst:
		return OldestFirst, nil
	case Alphabetical:
		return Alphabetical, nil
	default:
		return "", fmt.Errorf("journal: unknown sort order %q", s)
	}
}

// Filter returns the entries matching query in the requested order. The
// input slice is not modified; ties keep their input order.
func Filter(entries []models.JournalEntry, query string, order SortOrder) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.Matches(query) {
			out = append(out, e)
		}
	}

	switch order {
	case OldestFirst:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case Alphabetical:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}
