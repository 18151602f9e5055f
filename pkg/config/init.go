package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by InitConfig when the file is already there
// and force is not set.
var ErrConfigExists = errors.New("configuration file already exists")

// Output formats accepted by InitConfig.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

const configHeader = `# linexfer configuration file
#
# Every key can be overridden from the environment with the LINEXFER_ prefix,
# e.g. LINEXFER_SERVER_PORT=9191 or LINEXFER_LOGGING_LEVEL=debug.

`

// InitConfig writes the default configuration to path (the default location
// when empty) and returns the path written.
func InitConfig(path, format string, force bool) (string, error) {
	if path == "" {
		path = GetDefaultConfigPath()
		if format == FormatTOML {
			path = filepath.Join(getConfigDir(), "config.toml")
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := Render(GetDefaultConfig(), format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// Render encodes cfg as YAML or TOML, prefixed with a comment header.
func Render(cfg *Config, format string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want yaml or toml)", format)
	}
	return buf.Bytes(), nil
}
