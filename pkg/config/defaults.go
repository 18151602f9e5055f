package config

import (
	"strings"

	"github.com/marmos91/linexfer/pkg/adapter/xfer"
	"github.com/marmos91/linexfer/pkg/journal"
)

// ApplyDefaults fills zero values with defaults. Explicit values are kept.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	cfg.Server.ApplyDefaults()
	cfg.API.ApplyDefaults()
	applyJournalDefaults(&cfg.Journal)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyJournalDefaults(cfg *JournalConfig) {
	if cfg.Type == "" {
		cfg.Type = journal.TypeMemory
	}
	if cfg.Memory.Capacity == 0 {
		cfg.Memory.Capacity = journal.DefaultMemoryCapacity
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "journal.db"
	}
	if cfg.Badger.Dir == "" && !cfg.Badger.InMemory {
		cfg.Badger.Dir = "journal"
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
}

// GetDefaultConfig returns a Config with every default applied. Zero values
// that are meaningful on their own (sample rate, insecure) are set here
// rather than in ApplyDefaults.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{
			Insecure:   true,
			SampleRate: 1.0,
		},
		Server: xfer.DefaultConfig(),
	}
	cfg.API.Port = 8080

	ApplyDefaults(cfg)
	return cfg
}
