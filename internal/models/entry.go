// Package models defines the domain types for ChronicleLens.
package models

import (
	"strings"
	"time"
)

// JournalEntry is a single journal record. Entries are never mutated after
// creation; the store replaces or removes them whole.
type JournalEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	HasPhoto    bool      `json:"has_photo,omitempty"`
	HasAudio    bool      `json:"has_audio,omitempty"`
	HasLocation bool      `json:"has_location,omitempty"`
}

// Matches reports whether query occurs, case-insensitively, in the title,
// the content or any tag. An empty query matches every entry.
func (e JournalEntry) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Content), q) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
