package xfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/internal/telemetry"
	"github.com/marmos91/linexfer/pkg/journal"
	"github.com/marmos91/linexfer/pkg/metrics"
)

// Put answers "put <path> <size>". Exactly size bytes following the request
// line are consumed from the session whether or not they can be stored, so
// the next command is always read from the right place. A rejected size
// consumes nothing.
//
// Missing parent directories are created. The destination is truncated
// before writing and is left as is if the upload fails part way. Concurrent
// uploads to one path are not coordinated; the last writer wins.
//
// A returned error means the client closed or broke the connection before
// the frame was complete.
func (h *Handler) Put(ctx context.Context, s *Session, cmd Command) (Result, error) {
	res := Result{Verb: VerbPut}
	rel, sizeArg := cmd.Arg(0), cmd.Arg(1)
	if rel == "" || sizeArg == "" {
		return fail(s, res, replyUsagePut), nil
	}
	res.Path = rel

	size, err := strconv.ParseInt(sizeArg, 10, 64)
	if err != nil || size <= 0 {
		return fail(s, res, replyInvalidSize(sizeArg)), nil
	}
	target := h.root.Resolve(rel)

	entry := journal.NewEntry(s.ID, s.ClientAddr, journal.OpPut, rel)

	dst, openErr := h.create(target)
	var w io.Writer = io.Discard
	if openErr == nil {
		w = dst
	} else {
		logger.DebugCtx(ctx, "Cannot create destination, draining upload",
			logger.Path(rel), logger.Size(size), logger.Err(openErr))
	}

	buf := h.pool.Get()
	written, writeErr, readErr := ReadFrame(s.R, w, size, buf)
	h.pool.Put(buf)

	if dst != nil {
		if cerr := dst.Close(); writeErr == nil {
			writeErr = cerr
		}
	}
	storeErr := errors.Join(openErr, writeErr)

	metrics.RecordBytes(h.metrics, metrics.DirectionUpload, written)
	telemetry.SetAttributes(ctx, telemetry.Path(rel), telemetry.Size(size), telemetry.Bytes(written))

	if readErr != nil {
		entry.Finish(written, readErr)
		h.record(ctx, entry)
		telemetry.RecordError(ctx, readErr)
		return res, fmt.Errorf("upload %s: %w", rel, readErr)
	}

	entry.Finish(written, storeErr)
	h.record(ctx, entry)

	if storeErr != nil {
		logger.WarnCtx(ctx, "Upload not stored", logger.Path(rel), logger.Err(storeErr))
		telemetry.RecordError(ctx, storeErr)
		return fail(s, res, replyCannotWrite(rel)), nil
	}

	res.OK = true
	res.Bytes = written
	res.Status = replyStored(written, rel)
	writeLine(s.W, res.Status)
	return res, nil
}

func (h *Handler) create(target string) (io.WriteCloser, error) {
	if err := h.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}
	f, err := h.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}
