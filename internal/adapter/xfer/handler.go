package xfer

import (
	"bufio"
	"context"

	"github.com/spf13/afero"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/pkg/bufpool"
	"github.com/marmos91/linexfer/pkg/journal"
	"github.com/marmos91/linexfer/pkg/metrics"
	"github.com/marmos91/linexfer/pkg/rootfs"
)

// Session is the per-connection state a command needs: identity for logs
// and the buffered streams shared by request lines and payload bytes.
type Session struct {
	ID         string
	ClientAddr string

	// R carries both command lines and put payloads. It must be the only
	// reader of the connection so that no payload bytes are lost to a
	// second buffer.
	R *bufio.Reader
	W *bufio.Writer
}

// Result describes how a command was answered.
type Result struct {
	// Verb is the command label (see Command.Label).
	Verb string

	// Status is the first reply line without its terminator.
	Status string

	// OK is false when the reply was an error line.
	OK bool

	// Path is the client-supplied path, if any.
	Path string

	// Bytes counts payload bytes moved by get or put.
	Bytes int64

	// Close asks the session loop to end after flushing.
	Close bool
}

// Handler executes commands against one root directory. It is shared by all
// sessions and holds no per-session state.
type Handler struct {
	root    *rootfs.Root
	fs      afero.Fs
	pool    *bufpool.Pool
	metrics metrics.XferMetrics
	journal journal.Store
}

// HandlerOption customises a Handler.
type HandlerOption func(*Handler)

// WithBufferPool sets the pool used for payload copies.
func WithBufferPool(p *bufpool.Pool) HandlerOption {
	return func(h *Handler) { h.pool = p }
}

// WithMetrics records transferred bytes on m. nil disables recording.
func WithMetrics(m metrics.XferMetrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithJournal records every get and put on s. nil disables the journal.
func WithJournal(s journal.Store) HandlerOption {
	return func(h *Handler) { h.journal = s }
}

// NewHandler creates a Handler serving root.
func NewHandler(root *rootfs.Root, opts ...HandlerOption) *Handler {
	h := &Handler{root: root, fs: root.Fs()}
	for _, o := range opts {
		o(h)
	}
	if h.pool == nil {
		h.pool = bufpool.New(bufpool.DefaultSize)
	}
	return h
}

// Root returns the directory the handler serves.
func (h *Handler) Root() *rootfs.Root {
	return h.root
}

// record stores a journal entry. Journal failures never reach the client.
func (h *Handler) record(ctx context.Context, e *journal.Entry) {
	if h.journal == nil {
		return
	}
	if err := h.journal.Record(context.WithoutCancel(ctx), e); err != nil {
		logger.WarnCtx(ctx, "Failed to record transfer", logger.Path(e.Path), logger.Err(err))
	}
}
