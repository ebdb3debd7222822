// Package testutil provides shared test helpers for setting up journal stores.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/chroniclelens/internal/journal"
)

// Fixed is the reference time used by seeded test stores.
var Fixed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Logger returns a logger that discards everything below error.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Store creates a zero-latency store seeded with the sample entries. It is
// closed automatically when the test finishes.
func Store(t *testing.T, opts ...journal.Option) *journal.Store {
	t.Helper()
	base := []journal.Option{
		journal.WithEntries(journal.SampleEntries(Fixed)...),
		journal.WithLatency(0),
		journal.WithClock(func() time.Time { return Fixed }),
		journal.WithLogger(Logger()),
	}
	s := journal.New(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s
}

// Eventually polls fn until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
