package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/pkg/shutdown"
)

// DefaultPollInterval bounds how long the accept loop waits before checking
// the shutdown signal again.
const DefaultPollInterval = 100 * time.Millisecond

// ConnectionHandler serves one accepted connection until it ends.
type ConnectionHandler interface {
	Serve(ctx context.Context)
}

// ConnectionFactory creates protocol-specific handlers for accepted
// connections.
type ConnectionFactory interface {
	NewConnection(conn net.Conn) ConnectionHandler
}

// BaseConfig holds settings common to TCP protocol adapters.
type BaseConfig struct {
	// BindAddress is the IP to bind. Empty binds all interfaces.
	BindAddress string

	// Port is the TCP port. 0 picks a free port.
	Port int

	// MaxConnections limits concurrent sessions. 0 means unlimited.
	MaxConnections int

	// PollInterval is the accept deadline per loop iteration.
	PollInterval time.Duration
}

// MetricsRecorder records connection lifecycle events. nil disables it.
type MetricsRecorder interface {
	RecordConnectionAccepted()
	RecordConnectionClosed()
	SetActiveConnections(count int32)
}

// BaseAdapter owns the listener and the accept loop shared by protocol
// adapters.
//
// The loop polls: each iteration arms an accept deadline of PollInterval,
// treats a timeout as "nothing pending", and checks the shutdown signal
// before accepting again. Every accepted connection runs in its own
// goroutine on a context that is never cancelled by the adapter, so
// stopping the loop only stops admission of new sessions.
type BaseAdapter struct {
	Config BaseConfig

	protocolName string

	// Metrics is optional.
	Metrics MetricsRecorder

	// Signal stops the accept loop when triggered.
	Signal *shutdown.Signal

	listenerMu sync.RWMutex
	tcp        *net.TCPListener
	listener   net.Listener

	activeConns sync.WaitGroup
	closeOnce   sync.Once

	// ConnCount is the number of sessions currently running.
	ConnCount atomic.Int32

	// ListenerReady is closed once Listen has bound the socket.
	ListenerReady chan struct{}
}

// NewBaseAdapter creates a stopped adapter. sig may be shared with other
// components; a nil sig gets a private signal that only Stop triggers.
func NewBaseAdapter(config BaseConfig, protocol string, sig *shutdown.Signal) *BaseAdapter {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if sig == nil {
		sig = shutdown.New()
	}
	return &BaseAdapter{
		Config:        config,
		protocolName:  protocol,
		Signal:        sig,
		ListenerReady: make(chan struct{}),
	}
}

// Listen binds the TCP socket. Calling it twice is an error.
func (b *BaseAdapter) Listen() error {
	b.listenerMu.Lock()
	defer b.listenerMu.Unlock()

	if b.tcp != nil {
		return fmt.Errorf("%s listener already bound", b.protocolName)
	}

	addr := net.JoinHostPort(b.Config.BindAddress, fmt.Sprint(b.Config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create %s listener on %s: %w", b.protocolName, addr, err)
	}

	b.tcp = ln.(*net.TCPListener)
	b.listener = ln
	if b.Config.MaxConnections > 0 {
		b.listener = netutil.LimitListener(ln, b.Config.MaxConnections)
		logger.Debug(b.protocolName+" connection limit", "max_connections", b.Config.MaxConnections)
	}
	close(b.ListenerReady)

	logger.Info(b.protocolName+" server listening", logger.KeyAddress, ln.Addr().String())
	return nil
}

// ServeWithFactory runs the accept loop, creating a handler through factory
// for each connection. It binds first if Listen was not called. It returns
// nil once the shutdown signal fires or ctx is cancelled.
func (b *BaseAdapter) ServeWithFactory(ctx context.Context, factory ConnectionFactory) error {
	select {
	case <-b.ListenerReady:
	default:
		if err := b.Listen(); err != nil {
			return err
		}
	}

	// Unblock an Accept parked on the connection limit.
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-b.Signal.Done():
		case <-ctx.Done():
		case <-stopWatch:
			return
		}
		b.closeListener()
	}()

	sessionCtx := context.WithoutCancel(ctx)

	for {
		if b.Signal.Triggered() || ctx.Err() != nil {
			break
		}

		if err := b.tcp.SetDeadline(time.Now().Add(b.Config.PollInterval)); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("Failed to arm accept deadline", logger.KeyError, err)
		}

		conn, err := b.listener.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			logger.Warn("Error accepting "+b.protocolName+" connection", logger.KeyError, err)
			time.Sleep(b.Config.PollInterval)
			continue
		}

		b.track(sessionCtx, conn, factory)
	}

	b.closeListener()
	reason := b.Signal.Reason()
	if reason == "" && ctx.Err() != nil {
		reason = ctx.Err().Error()
	}
	logger.Info(b.protocolName+" server stopped accepting connections",
		"reason", reason, logger.KeyActive, b.ConnCount.Load())
	return nil
}

func (b *BaseAdapter) track(ctx context.Context, conn net.Conn, factory ConnectionFactory) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	addr := conn.RemoteAddr().String()
	b.activeConns.Add(1)
	active := b.ConnCount.Add(1)

	if b.Metrics != nil {
		b.Metrics.RecordConnectionAccepted()
		b.Metrics.SetActiveConnections(active)
	}
	logger.Debug(b.protocolName+" connection accepted", logger.KeyClientAddr, addr, logger.KeyActive, active)

	handler := factory.NewConnection(conn)

	go func() {
		defer func() {
			remaining := b.ConnCount.Add(-1)
			if b.Metrics != nil {
				b.Metrics.RecordConnectionClosed()
				b.Metrics.SetActiveConnections(remaining)
			}
			logger.Debug(b.protocolName+" connection closed", logger.KeyClientAddr, addr, logger.KeyActive, remaining)
			b.activeConns.Done()
		}()
		handler.Serve(ctx)
	}()
}

func (b *BaseAdapter) closeListener() {
	b.closeOnce.Do(func() {
		b.listenerMu.RLock()
		ln := b.listener
		b.listenerMu.RUnlock()
		if ln == nil {
			return
		}
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("Error closing "+b.protocolName+" listener", logger.KeyError, err)
		}
	})
}

// Stop triggers the shutdown signal, closes the listener and waits for
// running sessions until ctx is done. Sessions are never closed by the
// adapter; if ctx expires first its error is returned and they keep running.
func (b *BaseAdapter) Stop(ctx context.Context) error {
	b.Signal.Trigger("stop")
	b.closeListener()

	if err := b.Wait(ctx); err != nil {
		logger.Warn(b.protocolName+" sessions still running after stop",
			logger.KeyActive, b.ConnCount.Load())
		return err
	}
	return nil
}

// Wait blocks until every session has ended or ctx is done.
func (b *BaseAdapter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveSessions returns the number of running sessions.
func (b *BaseAdapter) ActiveSessions() int32 {
	return b.ConnCount.Load()
}

// Addr returns the bound address, or "" before Listen.
func (b *BaseAdapter) Addr() string {
	b.listenerMu.RLock()
	defer b.listenerMu.RUnlock()
	if b.tcp == nil {
		return ""
	}
	return b.tcp.Addr().String()
}

// Accepting reports whether the accept loop can still admit sessions.
func (b *BaseAdapter) Accepting() bool {
	select {
	case <-b.ListenerReady:
		return !b.Signal.Triggered()
	default:
		return false
	}
}

// Protocol returns the protocol name.
func (b *BaseAdapter) Protocol() string {
	return b.protocolName
}
