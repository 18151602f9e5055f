package logger

import (
	"log/slog"
)

// Standard field keys. Use them for every log statement so that records can
// be aggregated across sessions.
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	KeySessionID  = "session_id"
	KeyClientAddr = "client"
	KeyCommand    = "command"
	KeyActive     = "active"

	KeyPath      = "path"
	KeyKind      = "kind"
	KeySize      = "size"
	KeyEntries   = "entries"
	KeyBytes     = "bytes"
	KeyDirection = "direction"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyStoreType  = "store_type"
	KeyAddress    = "address"
	KeyRoot       = "root"
)

// SessionID returns a slog.Attr for a session identifier
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// ClientAddr returns a slog.Attr for the peer address
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// Command returns a slog.Attr for the protocol verb
func Command(verb string) slog.Attr {
	return slog.String(KeyCommand, verb)
}

// Path returns a slog.Attr for a client-visible path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Size returns a slog.Attr for a file size
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// Entries returns a slog.Attr for a directory entry count
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// Bytes returns a slog.Attr for bytes moved over the wire
func Bytes(n int64) slog.Attr {
	return slog.Int64(KeyBytes, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error. A nil error yields an empty Attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// StoreType returns a slog.Attr for a journal backend
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}
