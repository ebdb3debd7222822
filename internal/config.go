package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/chroniclelens/internal/effect"
	"github.com/starford/chroniclelens/internal/journal"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Journal JournalConfig     `yaml:"journal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Journal.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// JournalConfig holds journal store configuration.
//
// Placement controls where added entries land:
//   - "append" (default): at the end of the list.
//   - "prepend": at the front, for most-recent-first lists.
type JournalConfig struct {
	AddLatency   time.Duration `yaml:"add_latency"`
	Placement    string        `yaml:"placement"`
	Seed         string        `yaml:"seed"`
	EffectBuffer int           `yaml:"effect_buffer"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	if c.Placement == "" {
		c.Placement = string(journal.Append)
	}
	if c.Seed == "" {
		c.Seed = journal.SeedBasic
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.AddLatency, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
		validation.Field(&c.Placement, validation.In(string(journal.Append), string(journal.Prepend))),
		validation.Field(&c.Seed, validation.In(journal.SeedBasic, journal.SeedSample, journal.SeedNone)),
		validation.Field(&c.EffectBuffer, validation.Min(0), validation.Max(4096)),
	)
}

// StoreOptions translates the configuration into journal store options.
func (c *JournalConfig) StoreOptions(now time.Time) ([]journal.Option, error) {
	placement, err := journal.ParsePlacement(c.Placement)
	if err != nil {
		return nil, err
	}
	entries, err := journal.SeedEntries(c.Seed, now)
	if err != nil {
		return nil, err
	}
	return []journal.Option{
		journal.WithEntries(entries...),
		journal.WithLatency(c.AddLatency),
		journal.WithPlacement(placement),
		journal.WithEffectCapacity(c.EffectBuffer),
	}, nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Journal: JournalConfig{
			AddLatency:   journal.DefaultLatency,
			Placement:    string(journal.Append),
			Seed:         journal.SeedBasic,
			EffectBuffer: effect.DefaultCapacity,
		},
	}
}
