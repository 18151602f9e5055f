package xfer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/internal/telemetry"
)

type listEntry struct {
	name string
	dir  bool
	size int64
}

func (e listEntry) String() string {
	if e.dir {
		return "d 0 " + e.name
	}
	return fmt.Sprintf("f %d %s", e.size, e.name)
}

// List answers "list [path]". The path defaults to ".".
//
// Entries whose metadata cannot be read are left out. Directories always
// report size 0.
func (h *Handler) List(ctx context.Context, s *Session, cmd Command) (Result, error) {
	rel := cmd.Arg(0)
	if rel == "" {
		rel = "."
	}
	res := Result{Verb: VerbList, Path: rel}
	target := h.root.Resolve(rel)

	info, err := h.fs.Stat(target)
	if err != nil || !info.IsDir() {
		return fail(s, res, replyNotDirectory(rel)), nil
	}

	entries, err := h.readDir(ctx, target)
	if err != nil {
		logger.DebugCtx(ctx, "Directory read failed", logger.Path(rel), logger.Err(err))
		return fail(s, res, replyCannotReadDir(rel)), nil
	}

	res.OK = true
	res.Status = replyListHeader(len(entries), rel)
	writeLine(s.W, res.Status)
	for _, e := range entries {
		writeLine(s.W, e.String())
	}

	telemetry.SetAttributes(ctx, telemetry.Path(rel), telemetry.Entries(len(entries)))
	return res, nil
}

func (h *Handler) readDir(ctx context.Context, dir string) ([]listEntry, error) {
	d, err := h.fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()

	names, err := d.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	entries := make([]listEntry, 0, len(names))
	for _, name := range names {
		fi, err := h.fs.Stat(filepath.Join(dir, name))
		if err != nil {
			logger.DebugCtx(ctx, "Skipping unreadable entry", logger.Path(name), logger.Err(err))
			continue
		}
		entries = append(entries, listEntry{name: name, dir: fi.IsDir(), size: fi.Size()})
	}
	return entries, nil
}

// fail writes an error line and returns res marked as failed.
func fail(s *Session, res Result, line string) Result {
	res.OK = false
	res.Status = line
	writeLine(s.W, line)
	return res
}
