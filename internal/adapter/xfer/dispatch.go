package xfer

import (
	"context"
)

// Dispatch runs cmd and buffers its reply on s.W. The caller flushes.
//
// Filesystem and argument problems are answered with an error line and a
// nil error. A non-nil error is session-fatal: the connection failed while
// a payload was in flight.
func (h *Handler) Dispatch(ctx context.Context, s *Session, cmd Command) (Result, error) {
	switch cmd.Verb {
	case VerbList:
		return h.List(ctx, s, cmd)
	case VerbGet:
		return h.Get(ctx, s, cmd)
	case VerbPut:
		return h.Put(ctx, s, cmd)
	case VerbHelp:
		return h.Help(s), nil
	case VerbQuit:
		return h.Quit(s), nil
	default:
		return fail(s, Result{Verb: VerbUnknown}, replyUnknown), nil
	}
}

// Help writes the usage block.
func (h *Handler) Help(s *Session) Result {
	for _, l := range helpLines {
		writeLine(s.W, l)
	}
	return Result{Verb: VerbHelp, Status: helpLines[0], OK: true}
}

// Quit writes the farewell line and asks the session to close.
func (h *Handler) Quit(s *Session) Result {
	writeLine(s.W, replyBye)
	return Result{Verb: VerbQuit, Status: replyBye, OK: true, Close: true}
}
