// Package xfer provides the TCP adapter for the line protocol: the accept
// loop from pkg/adapter plus one Connection per client.
package xfer

import (
	"context"
	"fmt"
	"net"

	handlers "github.com/marmos91/linexfer/internal/adapter/xfer"
	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/pkg/adapter"
	"github.com/marmos91/linexfer/pkg/metrics"
	"github.com/marmos91/linexfer/pkg/shutdown"
)

// Protocol is the adapter name used in logs.
const Protocol = "XFER"

// Adapter serves the line protocol.
type Adapter struct {
	*adapter.BaseAdapter

	config  Config
	handler *handlers.Handler
	metrics metrics.XferMetrics
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates an adapter serving handler. sig is the process shutdown
// signal; m may be nil.
func New(config Config, handler *handlers.Handler, sig *shutdown.Signal, m metrics.XferMetrics) *Adapter {
	config.ApplyDefaults()

	base := adapter.NewBaseAdapter(config.baseConfig(), Protocol, sig)
	if m != nil {
		base.Metrics = m
	}

	logger.Debug("XFER adapter configured",
		logger.KeyRoot, handler.Root().Path(),
		"poll_interval", config.PollInterval,
		"max_connections", config.MaxConnections,
		"buffer_size", config.BufferSize.String())

	return &Adapter{
		BaseAdapter: base,
		config:      config,
		handler:     handler,
		metrics:     m,
	}
}

// Serve runs the accept loop until the shutdown signal fires.
func (a *Adapter) Serve(ctx context.Context) error {
	return a.ServeWithFactory(ctx, a)
}

// NewConnection implements adapter.ConnectionFactory.
func (a *Adapter) NewConnection(conn net.Conn) adapter.ConnectionHandler {
	return NewConnection(a, conn)
}

// Config returns the effective configuration.
func (a *Adapter) Config() Config {
	return a.config
}

// Ready reports whether new sessions can be served: the listener is bound
// and accepting, and the root directory is reachable.
func (a *Adapter) Ready() error {
	if !a.Accepting() {
		return fmt.Errorf("listener is not accepting connections")
	}
	if err := a.handler.Root().Check(); err != nil {
		return fmt.Errorf("root directory unavailable: %w", err)
	}
	return nil
}
