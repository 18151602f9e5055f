package telemetry

import (
	"context"
	"net"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on protocol spans.
const (
	AttrSessionID  = "xfer.session_id"
	AttrClientAddr = "client.address"
	AttrClientIP   = "client.ip"
	AttrCommand    = "xfer.command"
	AttrPath       = "xfer.path"
	AttrSize       = "xfer.size"
	AttrBytes      = "xfer.bytes"
	AttrEntries    = "xfer.entries"
	AttrReply      = "xfer.reply"
)

// StartCommandSpan starts the server span covering one protocol command.
// Span names are "xfer.<verb>".
func StartCommandSpan(ctx context.Context, verb, sessionID, clientAddr string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrCommand, verb),
		attribute.String(AttrSessionID, sessionID),
		attribute.String(AttrClientAddr, clientAddr),
	}
	if host, _, err := net.SplitHostPort(clientAddr); err == nil {
		attrs = append(attrs, attribute.String(AttrClientIP, host))
	}

	return StartSpan(ctx, "xfer."+verb,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// Path returns the attribute for a client-supplied path.
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

// Size returns the attribute for a declared or stat'ed size.
func Size(n int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, n)
}

// Bytes returns the attribute for bytes moved over the connection.
func Bytes(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytes, n)
}

// Entries returns the attribute for a listing's entry count.
func Entries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

// Reply returns the attribute for the status line sent back.
func Reply(line string) attribute.KeyValue {
	return attribute.String(AttrReply, line)
}
