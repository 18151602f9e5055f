package metrics

import "time"

// Command results used as the "result" label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Transfer directions used as the "direction" label.
const (
	DirectionDownload = "download"
	DirectionUpload   = "upload"
)

// XferMetrics records activity of the line-protocol server.
//
// Implementations must be safe for concurrent use. A nil XferMetrics is
// valid at every call site that goes through the helpers below.
type XferMetrics interface {
	RecordConnectionAccepted()
	RecordConnectionClosed()
	SetActiveConnections(count int32)

	// RecordCommand counts one handled command. verb is lower case; unknown
	// verbs are reported as "unknown" to bound label cardinality.
	RecordCommand(verb, result string, duration time.Duration)

	// RecordBytesTransferred adds payload bytes for get (download) or put
	// (upload).
	RecordBytesTransferred(direction string, n int64)
}

var newPrometheusXferMetrics func() XferMetrics

// RegisterXferMetricsConstructor is called from the prometheus subpackage's
// init to provide the implementation without an import cycle.
func RegisterXferMetricsConstructor(fn func() XferMetrics) {
	newPrometheusXferMetrics = fn
}

// NewXferMetrics returns the Prometheus-backed recorder, or nil when metrics
// are disabled or the prometheus subpackage is not linked in.
func NewXferMetrics() XferMetrics {
	if !IsEnabled() || newPrometheusXferMetrics == nil {
		return nil
	}
	return newPrometheusXferMetrics()
}

// RecordCommand is a nil-safe wrapper around XferMetrics.RecordCommand.
func RecordCommand(m XferMetrics, verb, result string, d time.Duration) {
	if m != nil {
		m.RecordCommand(verb, result, d)
	}
}

// RecordBytes is a nil-safe wrapper around XferMetrics.RecordBytesTransferred.
func RecordBytes(m XferMetrics, direction string, n int64) {
	if m != nil && n > 0 {
		m.RecordBytesTransferred(direction, n)
	}
}
