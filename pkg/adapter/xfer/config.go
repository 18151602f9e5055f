package xfer

import (
	"fmt"
	"time"

	"github.com/marmos91/linexfer/internal/bytesize"
	"github.com/marmos91/linexfer/pkg/adapter"
	"github.com/marmos91/linexfer/pkg/bufpool"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultBindAddress = "127.0.0.1"
	DefaultPort        = 9090
	DefaultRoot        = "data"

	DefaultMaxLineLength = 8 * bytesize.KiB
)

// Config holds the line-protocol server settings.
type Config struct {
	// BindAddress is the IP or host name the listener binds. Empty binds all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address" toml:"bind_address" json:"bind_address,omitempty" validate:"omitempty,ip|hostname"`

	// Port is the TCP port. 0 picks a free port.
	Port int `mapstructure:"port" yaml:"port" toml:"port" json:"port" validate:"min=0,max=65535"`

	// Root is the directory served to clients. Relative paths are taken
	// from the working directory. Created at startup when missing.
	Root string `mapstructure:"root" yaml:"root" toml:"root" json:"root" validate:"required"`

	// PollInterval bounds how quickly the acceptor notices a shutdown
	// request.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" toml:"poll_interval" json:"poll_interval" validate:"gt=0"`

	// MaxConnections caps concurrent sessions. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections" toml:"max_connections" json:"max_connections" validate:"min=0"`

	// BufferSize is the copy buffer used for each get or put payload.
	BufferSize bytesize.ByteSize `mapstructure:"buffer_size" yaml:"buffer_size" toml:"buffer_size" json:"buffer_size" validate:"min=512"`

	// MaxLineLength is the longest request line accepted, terminator
	// included. Longer lines get an error reply and the session is closed.
	MaxLineLength bytesize.ByteSize `mapstructure:"max_line_length" yaml:"max_line_length" toml:"max_line_length" json:"max_line_length" validate:"min=64"`

	// Console enables the "quit" operator console on stdin.
	Console bool `mapstructure:"console" yaml:"console" toml:"console" json:"console"`

	// DrainTimeout is how long start waits for running sessions after the
	// acceptor stops. 0 exits at once.
	DrainTimeout time.Duration `mapstructure:"drain_timeout" yaml:"drain_timeout" toml:"drain_timeout" json:"drain_timeout" validate:"min=0"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	c := Config{Port: DefaultPort, Console: true}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values. Port, Console and DrainTimeout are left
// alone since their zero values are meaningful.
func (c *Config) ApplyDefaults() {
	if c.BindAddress == "" {
		c.BindAddress = DefaultBindAddress
	}
	if c.Root == "" {
		c.Root = DefaultRoot
	}
	if c.PollInterval <= 0 {
		c.PollInterval = adapter.DefaultPollInterval
	}
	if c.BufferSize == 0 {
		c.BufferSize = bufpool.DefaultSize
	}
	if c.MaxLineLength == 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
}

// Address returns host:port.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

func (c Config) baseConfig() adapter.BaseConfig {
	return adapter.BaseConfig{
		BindAddress:    c.BindAddress,
		Port:           c.Port,
		MaxConnections: c.MaxConnections,
		PollInterval:   c.PollInterval,
	}
}
