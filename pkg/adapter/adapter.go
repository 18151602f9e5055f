package adapter

import (
	"context"
)

// Adapter is a protocol server managed by the start command.
//
// Lifecycle:
//  1. Creation with protocol-specific configuration
//  2. Listen binds the socket; a failure here is fatal at startup
//  3. Serve runs the accept loop until the shutdown signal fires
//  4. Stop closes the listener and waits for running sessions
//
// Stop may be called concurrently with Serve and more than once.
type Adapter interface {
	// Listen binds the configured address.
	Listen() error

	// Serve accepts connections until the shutdown signal fires or ctx is
	// cancelled. Sessions already running are not interrupted; they keep
	// going after Serve returns.
	Serve(ctx context.Context) error

	// Stop stops accepting and waits for active sessions until ctx is done.
	// Sessions still running then are left alone.
	Stop(ctx context.Context) error

	// Protocol returns the protocol name used in logs.
	Protocol() string

	// Addr returns the bound address, or "" before Listen.
	Addr() string
}
