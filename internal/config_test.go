package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/chroniclelens/internal/journal"
	pkgconfig "github.com/starford/chroniclelens/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestJournalConfig_EmptyValuesDefault(t *testing.T) {
	cfg := JournalConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty journal config should pass: %v", err)
	}
	if cfg.Placement != string(journal.Append) {
		t.Errorf("placement = %q, want append", cfg.Placement)
	}
	if cfg.Seed != journal.SeedBasic {
		t.Errorf("seed = %q, want basic", cfg.Seed)
	}
}

func TestJournalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  JournalConfig
	}{
		{"placement", JournalConfig{Placement: "middle"}},
		{"seed", JournalConfig{Seed: "random"}},
		{"negative latency", JournalConfig{AddLatency: -time.Second}},
		{"huge latency", JournalConfig{AddLatency: time.Hour}},
		{"negative buffer", JournalConfig{EffectBuffer: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestHTTPConfig_InvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch port error")
	}
}

func TestJournalConfig_StoreOptions(t *testing.T) {
	cfg := JournalConfig{AddLatency: 0, Placement: "prepend", Seed: journal.SeedSample}
	opts, err := cfg.StoreOptions(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	store := journal.New(opts...)
	defer store.Close()

	if n := len(store.GetAll()); n != 3 {
		t.Fatalf("expected sample seed, got %d entries", n)
	}
	store.Add(t.Context())
	store.Wait()
	if first := store.GetAll()[0]; first.ID != "004" {
		t.Errorf("expected prepended 004, got %q", first.ID)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("JOURNAL_SEED", "none")
	content := `app:
  log_level: debug
  http:
    port: 9090
journal:
  add_latency: 250ms
  placement: prepend
  seed: ${JOURNAL_SEED}
  effect_buffer: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.App.LogLevel)
	}
	if cfg.App.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.Journal.AddLatency != 250*time.Millisecond {
		t.Errorf("latency = %v", cfg.Journal.AddLatency)
	}
	if cfg.Journal.Seed != journal.SeedNone || cfg.Journal.Placement != "prepend" || cfg.Journal.EffectBuffer != 8 {
		t.Errorf("unexpected journal config %+v", cfg.Journal)
	}
}

func TestLoadOptional_DefaultsValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), cfg)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if found {
		t.Error("found = true for a missing file")
	}
	if cfg.App.HTTP.Port != 8080 || cfg.Journal.Seed != journal.SeedBasic {
		t.Errorf("defaults changed: %+v", cfg)
	}
}
