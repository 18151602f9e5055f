package xfer

import (
	"context"
	"fmt"
	"io"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/internal/telemetry"
	"github.com/marmos91/linexfer/pkg/journal"
	"github.com/marmos91/linexfer/pkg/metrics"
)

// Get answers "get <path>": an "OK sending" line followed by the raw file
// bytes. No length is sent; clients take the size from a prior list.
//
// A returned error means the payload was cut short and the session must
// end, since the client can no longer find the next reply.
func (h *Handler) Get(ctx context.Context, s *Session, cmd Command) (Result, error) {
	res := Result{Verb: VerbGet}
	rel := cmd.Arg(0)
	if rel == "" {
		return fail(s, res, replyUsageGet), nil
	}
	res.Path = rel
	target := h.root.Resolve(rel)

	info, err := h.fs.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return fail(s, res, replyNoSuchFile(rel)), nil
	}

	f, err := h.fs.Open(target)
	if err != nil {
		logger.DebugCtx(ctx, "Open failed", logger.Path(rel), logger.Err(err))
		return fail(s, res, replyCannotOpen(rel)), nil
	}
	defer func() { _ = f.Close() }()

	entry := journal.NewEntry(s.ID, s.ClientAddr, journal.OpGet, rel)

	res.OK = true
	res.Status = replySending(rel)
	writeLine(s.W, res.Status)

	buf := h.pool.Get()
	defer h.pool.Put(buf)

	n, err := io.CopyBuffer(writerOnly{s.W}, readerOnly{f}, buf)
	res.Bytes = n
	metrics.RecordBytes(h.metrics, metrics.DirectionDownload, n)
	telemetry.SetAttributes(ctx, telemetry.Path(rel), telemetry.Size(info.Size()), telemetry.Bytes(n))

	entry.Finish(n, err)
	h.record(ctx, entry)

	if err != nil {
		telemetry.RecordError(ctx, err)
		return res, fmt.Errorf("stream %s: %w", rel, err)
	}
	return res, nil
}
