package xfer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	handlers "github.com/marmos91/linexfer/internal/adapter/xfer"
	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/internal/telemetry"
	"github.com/marmos91/linexfer/pkg/metrics"
)

// ErrSessionClosed is returned by readLine once the client has gone.
var ErrSessionClosed = errors.New("session closed")

// ErrLineTooLong is returned by readLine when a request line exceeds
// Config.MaxLineLength.
var ErrLineTooLong = errors.New("request line too long")

// Connection runs the command loop of one client:
//
//	READING_LINE -> DISPATCH -> RESPONDING/STREAMING -> READING_LINE
//
// until quit, end of stream, or a connection error.
type Connection struct {
	server  *Adapter
	conn    net.Conn
	session *handlers.Session
	maxLine int
}

// NewConnection wraps conn in a new session with a random ID.
func NewConnection(server *Adapter, conn net.Conn) *Connection {
	size := server.config.BufferSize.Int()
	return &Connection{
		server:  server,
		conn:    conn,
		maxLine: server.config.MaxLineLength.Int(),
		session: &handlers.Session{
			ID:         uuid.NewString(),
			ClientAddr: conn.RemoteAddr().String(),
			R:          bufio.NewReaderSize(conn, size),
			W:          bufio.NewWriterSize(conn, size),
		},
	}
}

// SessionID returns the session's identifier.
func (c *Connection) SessionID() string {
	return c.session.ID
}

// Serve processes commands until the session ends. ctx is expected to be
// detached from server shutdown; a session is never cut off between the
// request line and its reply.
func (c *Connection) Serve(ctx context.Context) {
	lc := logger.NewLogContext(c.session.ID, c.session.ClientAddr)
	ctx = logger.WithContext(ctx, lc)
	defer c.handleConnectionClose(ctx)

	logger.InfoCtx(ctx, "Session opened")

	for {
		line, readErr := c.readLine()
		if errors.Is(readErr, ErrLineTooLong) {
			c.rejectLine(ctx)
			return
		}
		if line == "" && readErr != nil {
			c.logEnd(ctx, readErr)
			return
		}

		cmd, ok := handlers.ParseCommand(line)
		if ok {
			res, err := c.handle(ctx, lc, cmd)
			if err != nil {
				logger.DebugCtx(ctx, "Session ended by connection error",
					logger.Command(res.Verb), logger.Err(err))
				return
			}
			if res.Close {
				logger.InfoCtx(ctx, "Session closed by client")
				return
			}
		}

		if readErr != nil {
			c.logEnd(ctx, readErr)
			return
		}
	}
}

// readLine returns the next line without its "\n" or "\r\n". A final line
// with no terminator is returned together with the error that ended it.
// Lines longer than maxLine fail with ErrLineTooLong.
func (c *Connection) readLine() (string, error) {
	var buf []byte
	for {
		chunk, err := c.session.R.ReadSlice('\n')
		if c.maxLine > 0 && len(buf)+len(chunk) > c.maxLine {
			return "", ErrLineTooLong
		}
		buf = append(buf, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		line := strings.TrimSuffix(string(buf), "\n")
		line = strings.TrimSuffix(line, "\r")
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrSessionClosed
			}
			return line, err
		}
		return line, nil
	}
}

func (c *Connection) rejectLine(ctx context.Context) {
	logger.WarnCtx(ctx, "Request line too long, closing session", "limit", c.maxLine)
	_, _ = c.session.W.WriteString(handlers.ReplyLineTooLong + "\n")
	_ = c.session.W.Flush()
}

// handle runs one command inside its own span and flushes the reply.
func (c *Connection) handle(ctx context.Context, lc *logger.LogContext, cmd handlers.Command) (handlers.Result, error) {
	start := time.Now()
	label := cmd.Label()

	ctx, span := telemetry.StartCommandSpan(ctx, label, c.session.ID, c.session.ClientAddr)
	defer span.End()
	ctx = logger.WithContext(ctx, lc.WithCommand(label).WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))

	res, err := c.server.handler.Dispatch(ctx, c.session, cmd)
	if err == nil {
		err = c.session.W.Flush()
	}

	result := metrics.ResultOK
	if err != nil || !res.OK {
		result = metrics.ResultError
	}
	metrics.RecordCommand(c.server.metrics, label, result, time.Since(start))
	telemetry.SetAttributes(ctx, telemetry.Reply(res.Status))

	if err != nil {
		telemetry.RecordError(ctx, err)
		return res, err
	}

	logger.InfoCtx(ctx, "Command handled",
		logger.Path(res.Path),
		logger.Bytes(res.Bytes),
		"ok", res.OK,
		logger.DurationMs(logger.Duration(start)))
	return res, nil
}

func (c *Connection) logEnd(ctx context.Context, err error) {
	var ne net.Error
	switch {
	case errors.Is(err, ErrSessionClosed):
		logger.InfoCtx(ctx, "Session closed by peer")
	case errors.As(err, &ne) && ne.Timeout():
		logger.DebugCtx(ctx, "Session read timed out", logger.Err(err))
	default:
		logger.DebugCtx(ctx, "Session read failed", logger.Err(err))
	}
}

// handleConnectionClose recovers a panicking session so that it takes down
// only its own connection.
func (c *Connection) handleConnectionClose(ctx context.Context) {
	if r := recover(); r != nil {
		logger.ErrorCtx(ctx, "Panic in session handler",
			logger.KeyError, r, "stack", string(debug.Stack()))
	}
	_ = c.conn.Close()
}
