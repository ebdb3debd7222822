package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/chroniclelens/internal/models"
)

// Placement decides where a newly added entry lands in the list.
type Placement string

const (
	// Append puts new entries at the end of the list.
	Append Placement = "append"
	// Prepend puts new entries at the front (most-recent-first list).
	Prepend Placement = "prepend"
)

// ParsePlacement maps a config value onto a Placement. Empty input yields
// Append.
func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case "", Append:
		return Append, nil
	case Prepend:
		return Prepend, nil
	default:
		return "", fmt.Errorf("journal: unknown placement %q", s)
	}
}

// DefaultLatency is the simulated duration of an add.
const DefaultLatency = time.Second

// DefaultMood is the initially selected mood.
const DefaultMood = "😎"

// FailureFunc decides whether a simulated add fails. A nil error means the
// add succeeds.
type FailureFunc func(ctx context.Context) error

// Option is a functional option for configuring a Store.
type Option func(*options)

type options struct {
	entries   []models.JournalEntry
	latency   time.Duration
	placement Placement
	clock     func() time.Time
	failure   FailureFunc
	logger    *slog.Logger
	effectCap int
}

func defaultOptions() *options {
	return &options{
		latency:   DefaultLatency,
		placement: Append,
		clock:     time.Now,
		logger:    slog.Default(),
	}
}

// WithEntries seeds the store.
func WithEntries(entries ...models.JournalEntry) Option {
	return func(o *options) {
		o.entries = append([]models.JournalEntry(nil), entries...)
	}
}

// WithLatency sets the simulated add latency. Zero completes immediately.
func WithLatency(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.latency = d
		}
	}
}

// WithPlacement sets where added entries land.
func WithPlacement(p Placement) Option {
	return func(o *options) {
		o.placement = p
	}
}

// WithClock overrides the time source used for created_at.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithFailure installs a hook that can make simulated adds fail.
func WithFailure(fn FailureFunc) Option {
	return func(o *options) {
		o.failure = fn
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEffectCapacity bounds the number of undelivered effects.
func WithEffectCapacity(n int) Option {
	return func(o *options) {
		o.effectCap = n
	}
}
