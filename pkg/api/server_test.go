package api

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/linexfer/pkg/journal"
	"github.com/marmos91/linexfer/pkg/metrics"
)

type alwaysReady struct{}

func (alwaysReady) Ready() error { return nil }

func startServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BindAddress = "127.0.0.1"
	cfg.Port = 0

	s := NewServer(cfg, alwaysReady{}, journal.NewMemoryStore(4))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("API server did not stop")
		}
	})
	return s
}

func get(t *testing.T, s *Server, path string) (int, string) {
	t.Helper()
	client := &http.Client{
		Timeout: 2 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get("http://" + s.Addr() + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServerRoutes(t *testing.T) {
	s := startServer(t)

	code, body := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"service":"linexfer"`)

	code, body = get(t, s, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"journal":"healthy"`)

	code, body = get(t, s, "/transfers")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"status":"ok"`)

	code, _ = get(t, s, "/")
	assert.Equal(t, http.StatusTemporaryRedirect, code)

	code, _ = get(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServerMetricsEndpoint(t *testing.T) {
	metrics.Reset()
	t.Cleanup(metrics.Reset)

	s := startServer(t)
	code, _ := get(t, s, "/metrics")
	assert.Equal(t, http.StatusNotFound, code)

	metrics.InitRegistry()
	code, body := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestServerStartFailsOnBusyPort(t *testing.T) {
	first := startServer(t)

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BindAddress = "127.0.0.1"
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	err = NewServer(cfg, nil, nil).Start(context.Background())
	assert.Error(t, err)
}
