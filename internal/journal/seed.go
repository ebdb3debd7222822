package journal

import (
	"fmt"
	"time"

	"github.com/starford/chroniclelens/internal/models"
)

// Seed names.
const (
	SeedNone   = "none"
	SeedBasic  = "basic"
	SeedSample = "sample"
)

// BasicEntries returns the three title-only entries "001".."003".
func BasicEntries(now time.Time) []models.JournalEntry {
	return []models.JournalEntry{
		{ID: "001", Title: "A sunny day", CreatedAt: now.Add(-3 * time.Minute)},
		{ID: "002", Title: "A day full of challenges", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "003", Title: "A day full of happiness", CreatedAt: now.Add(-time.Minute)},
	}
}

// SampleEntries returns the illustrated sample journal.
func SampleEntries(now time.Time) []models.JournalEntry {
	return []models.JournalEntry{
		{
			ID:        "001",
			Title:     "My First Memory",
			Content:   "Today I started using ChronicleLens to capture my memories...",
			Tags:      []string{"first", "milestone"},
			CreatedAt: now.AddDate(0, 0, -3),
			HasPhoto:  true,
		},
		{
			ID:          "002",
			Title:       "Weekend Adventure",
			Content:     "Went hiking with friends and discovered an amazing viewpoint...",
			Tags:        []string{"travel", "friends"},
			CreatedAt:   now.AddDate(0, 0, -1),
			HasLocation: true,
		},
		{
			ID:        "003",
			Title:     "Cooking Experiment",
			Content:   "Tried making grandma's secret recipe. It turned out better than expected!",
			Tags:      []string{"food", "family"},
			CreatedAt: now.Add(-5 * time.Hour),
			HasPhoto:  true,
			HasAudio:  true,
		},
	}
}

// SeedEntries resolves a seed name.
func SeedEntries(name string, now time.Time) ([]models.JournalEntry, error) {
	switch name {
	case "", SeedBasic:
		return BasicEntries(now), nil
	case SeedSample:
		return SampleEntries(now), nil
	case SeedNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("journal: unknown seed %q", name)
	}
}
