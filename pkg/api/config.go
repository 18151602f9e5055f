package api

import "time"

// Config configures the HTTP API server.
//
// When Enabled is false no server is started.
type Config struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" toml:"enabled" json:"enabled"`

	// BindAddress is the IP the HTTP server binds. Empty binds all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address" toml:"bind_address" json:"bind_address,omitempty" validate:"omitempty,ip|hostname"`

	// Port is the HTTP port. Default: 8080. 0 picks a free port when set
	// programmatically after defaults have been applied.
	Port int `mapstructure:"port" yaml:"port" toml:"port" json:"port" validate:"min=0,max=65535"`

	// ReadTimeout bounds reading a request. Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" toml:"read_timeout" json:"read_timeout"`

	// WriteTimeout bounds writing a response. Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" toml:"write_timeout" json:"write_timeout"`

	// IdleTimeout bounds keep-alive idle time. Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout" json:"idle_timeout"`
}

// DefaultConfig returns the API disabled, with defaults filled in.
func DefaultConfig() Config {
	c := Config{Port: 8080}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero timeouts.
func (c *Config) ApplyDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
