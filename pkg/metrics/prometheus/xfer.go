// Package prometheus implements the metrics interfaces on top of
// client_golang. Import it for side effects to enable metrics.NewXferMetrics.
package prometheus

import (
	"time"

	"github.com/marmos91/linexfer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterXferMetricsConstructor(NewXferMetrics)
}

type xferMetrics struct {
	connectionsAccepted prometheus.Counter
	connectionsClosed   prometheus.Counter
	activeConnections   prometheus.Gauge
	commands            *prometheus.CounterVec
	commandDuration     *prometheus.HistogramVec
	bytes               *prometheus.CounterVec
}

// NewXferMetrics registers the server metrics on the global registry. It
// returns nil when metrics are disabled.
func NewXferMetrics() metrics.XferMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	f := promauto.With(metrics.GetRegistry())

	return &xferMetrics{
		connectionsAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "linexfer_connections_accepted_total",
			Help: "Total number of accepted client connections",
		}),
		connectionsClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "linexfer_connections_closed_total",
			Help: "Total number of client connections that ended",
		}),
		activeConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "linexfer_connections_active",
			Help: "Number of sessions currently being served",
		}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "linexfer_commands_total",
			Help: "Protocol commands handled, by verb and result",
		}, []string{"verb", "result"}),
		commandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "linexfer_command_duration_milliseconds",
			Help: "Time from parsing a command to flushing its reply",
			Buckets: []float64{
				0.1, 0.5, 1, 5, 10, 50, 100, 500, // control commands
				1000, 5000, 30000, // large transfers
			},
		}, []string{"verb"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "linexfer_bytes_transferred_total",
			Help: "File payload bytes moved, by direction",
		}, []string{"direction"}),
	}
}

func (m *xferMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *xferMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}

func (m *xferMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *xferMetrics) RecordCommand(verb, result string, d time.Duration) {
	m.commands.WithLabelValues(verb, result).Inc()
	m.commandDuration.WithLabelValues(verb).Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *xferMetrics) RecordBytesTransferred(direction string, n int64) {
	m.bytes.WithLabelValues(direction).Add(float64(n))
}
