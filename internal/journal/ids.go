package journal

import (
	"fmt"
	"strconv"

	"github.com/starford/chroniclelens/internal/models"
)

// formatID renders a sequence number as a zero-padded id ("004").
func formatID(seq int) string {
	return fmt.Sprintf("%03d", seq)
}

// firstSequence returns the sequence value for the first id the store will
// mint: one past the larger of the list length and the highest numeric id.
func firstSequence(entries []models.JournalEntry) int {
	next := len(entries) + 1
	for _, e := range entries {
		n, err := strconv.Atoi(e.ID)
		if err != nil {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next
}
