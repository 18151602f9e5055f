package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/internal/telemetry"
	"github.com/marmos91/linexfer/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "linexfer",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
}

func profilingConfig(cfg *config.Config) telemetry.ProfilingConfig {
	return telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "linexfer",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
}

// configSource returns the file that Load would read, or "" when only
// defaults and environment apply.
func configSource(flagPath string) string {
	candidates := []string{flagPath}
	if flagPath == "" {
		def := config.GetDefaultConfigPath()
		candidates = []string{def, filepath.Join(filepath.Dir(def), "config.toml")}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
