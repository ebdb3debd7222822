package journal

import (
	"slices"

	"github.com/starford/chroniclelens/internal/models"
)

// State is an immutable snapshot of the store. Every mutation replaces the
// whole value; slices inside a published State are never written again.
type State struct {
	Entries      []models.JournalEntry `json:"entries"`
	IsLoading    bool                  `json:"is_loading"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Selected     []string              `json:"selected"`
	Query        string                `json:"query"`
	Sort         SortOrder             `json:"sort"`
	Count        int                   `json:"count"`
	Mood         string                `json:"mood"`
}

// SelectionMode reports whether multi-select is active.
func (s State) SelectionMode() bool {
	return len(s.Selected) > 0
}

// IsSelected reports whether id is marked for batch deletion.
func (s State) IsSelected(id string) bool {
	_, found := slices.BinarySearch(s.Selected, id)
	return found
}

// Visible returns the entries matching the current query in the current
// sort order.
func (s State) Visible() []models.JournalEntry {
	return Filter(s.Entries, s.Query, s.Sort)
}

func (s State) clone() State {
	c := s
	c.Entries = slices.Clone(s.Entries)
	c.Selected = slices.Clone(s.Selected)
	return c
}

func indexOf(entries []models.JournalEntry, id string) int {
	return slices.IndexFunc(entries, func(e models.JournalEntry) bool { return e.ID == id })
}
