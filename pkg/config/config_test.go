package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/linexfer/internal/bytesize"
	"github.com/marmos91/linexfer/pkg/journal"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "config.yaml", `
logging:
  level: debug
server:
  port: 9191
  root: "`+yamlSafePath(dir)+`/files"
  buffer_size: 64Ki
  poll_interval: 250ms
  max_connections: 8
journal:
  enabled: true
  type: sqlite
  sqlite:
    path: "`+yamlSafePath(dir)+`/journal.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Expected port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Server.BindAddress != "127.0.0.1" {
		t.Errorf("Expected default bind address, got %q", cfg.Server.BindAddress)
	}
	if cfg.Server.BufferSize != 64*bytesize.KiB {
		t.Errorf("Expected buffer size 64Ki, got %v", cfg.Server.BufferSize)
	}
	if cfg.Server.PollInterval != 250*time.Millisecond {
		t.Errorf("Expected poll interval 250ms, got %v", cfg.Server.PollInterval)
	}
	if cfg.Server.MaxConnections != 8 {
		t.Errorf("Expected max connections 8, got %d", cfg.Server.MaxConnections)
	}
	if !cfg.Server.Console {
		t.Error("Expected console enabled by default")
	}
	if !cfg.Journal.Enabled || cfg.Journal.Type != journal.TypeSQLite {
		t.Errorf("Expected sqlite journal, got enabled=%v type=%q", cfg.Journal.Enabled, cfg.Journal.Type)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.API.Port)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[logging]
format = "json"

[server]
port = 7000
drain_timeout = "5s"
console = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected json format, got %q", cfg.Logging.Format)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Server.DrainTimeout != 5*time.Second {
		t.Errorf("Expected drain timeout 5s, got %v", cfg.Server.DrainTimeout)
	}
	if cfg.Server.Console {
		t.Error("Expected console disabled")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected default port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Root != "data" {
		t.Errorf("Expected default root 'data', got %q", cfg.Server.Root)
	}
	if cfg.Server.DrainTimeout != 0 {
		t.Errorf("Expected no drain by default, got %v", cfg.Server.DrainTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LINEXFER_SERVER_PORT", "9191")
	t.Setenv("LINEXFER_LOGGING_LEVEL", "warn")
	t.Setenv("LINEXFER_SERVER_BUFFER_SIZE", "1Mi")
	t.Setenv("LINEXFER_API_ENABLED", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Expected env port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected env level WARN, got %q", cfg.Logging.Level)
	}
	if cfg.Server.BufferSize != bytesize.MiB {
		t.Errorf("Expected env buffer size 1Mi, got %v", cfg.Server.BufferSize)
	}
	if !cfg.API.Enabled {
		t.Error("Expected env to enable the API")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad level":   "logging:\n  level: loud\n",
		"bad port":    "server:\n  port: 70000\n",
		"tiny buffer": "server:\n  buffer_size: 16\n",
		"bad journal": "journal:\n  type: mongo\n",
		"bad size":    "server:\n  buffer_size: lots\n",
		"bad profile": "telemetry:\n  profiling:\n    profile_types: [heap]\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "config.yaml", content)); err == nil {
				t.Fatal("Expected an error")
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.yaml", "server: [unterminated\n")); err == nil {
		t.Fatal("Expected a parse error")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := GetDefaultConfig()
	cfg.Server.Port = 4242
	cfg.Server.BufferSize = 128 * bytesize.KiB

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Port != 4242 || loaded.Server.BufferSize != 128*bytesize.KiB {
		t.Errorf("Round trip mismatch: port=%d buffer=%v", loaded.Server.Port, loaded.Server.BufferSize)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if got := GetDefaultConfigPath(); got != filepath.Join(dir, "linexfer", "config.yaml") {
		t.Errorf("Unexpected default path %q", got)
	}
	if DefaultConfigExists() {
		t.Error("Expected no config at a fresh XDG dir")
	}
}
