package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marmos91/linexfer/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNewXferMetricsDisabled(t *testing.T) {
	metrics.Reset()
	assert.Nil(t, NewXferMetrics())
	assert.Nil(t, metrics.NewXferMetrics())
}

func TestXferMetricsRecording(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)

	m := metrics.NewXferMetrics()
	require.NotNil(t, m)

	m.RecordConnectionAccepted()
	m.RecordConnectionAccepted()
	m.RecordConnectionClosed()
	m.SetActiveConnections(1)
	m.RecordCommand("put", metrics.ResultOK, 3*time.Millisecond)
	m.RecordCommand("put", metrics.ResultError, time.Millisecond)
	m.RecordCommand("get", metrics.ResultOK, time.Millisecond)
	m.RecordBytesTransferred(metrics.DirectionUpload, 5)
	metrics.RecordBytes(m, metrics.DirectionUpload, 7)
	metrics.RecordBytes(m, metrics.DirectionDownload, 0)

	out := scrape(t)
	assert.Contains(t, out, "linexfer_connections_accepted_total 2")
	assert.Contains(t, out, "linexfer_connections_closed_total 1")
	assert.Contains(t, out, "linexfer_connections_active 1")
	assert.Contains(t, out, `linexfer_commands_total{result="ok",verb="put"} 1`)
	assert.Contains(t, out, `linexfer_commands_total{result="error",verb="put"} 1`)
	assert.Contains(t, out, `linexfer_bytes_transferred_total{direction="upload"} 12`)
	assert.NotContains(t, out, `direction="download"`)
	assert.Contains(t, out, `linexfer_command_duration_milliseconds_count{verb="get"} 1`)
}

func TestNilSafeHelpers(t *testing.T) {
	metrics.RecordCommand(nil, "list", metrics.ResultOK, time.Millisecond)
	metrics.RecordBytes(nil, metrics.DirectionDownload, 10)
}
