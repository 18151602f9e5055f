package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/linexfer/pkg/journal"
)

type readyFunc func() error

func (f readyFunc) Ready() error { return f() }

type brokenStore struct {
	*journal.MemoryStore
}

func (brokenStore) Healthcheck(context.Context) error { return errors.New("disk gone") }

func (brokenStore) Recent(context.Context, int) ([]journal.Entry, error) {
	return nil, errors.New("disk gone")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLiveness(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler(nil, nil).Liveness(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, map[string]any{"service": "linexfer"}, resp.Data)
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		ready  ReadinessChecker
		store  journal.Store
		code   int
		status string
		errMsg string
	}{
		{name: "no server", code: http.StatusServiceUnavailable, status: "unhealthy", errMsg: "server not initialized"},
		{
			name:   "not accepting",
			ready:  readyFunc(func() error { return errors.New("listener is not accepting connections") }),
			code:   http.StatusServiceUnavailable,
			status: "unhealthy",
			errMsg: "listener is not accepting connections",
		},
		{name: "ready without journal", ready: readyFunc(func() error { return nil }), code: http.StatusOK, status: "healthy"},
		{
			name:   "ready with journal",
			ready:  readyFunc(func() error { return nil }),
			store:  journal.NewMemoryStore(4),
			code:   http.StatusOK,
			status: "healthy",
		},
		{
			name:   "journal unhealthy",
			ready:  readyFunc(func() error { return nil }),
			store:  brokenStore{journal.NewMemoryStore(4)},
			code:   http.StatusServiceUnavailable,
			status: "unhealthy",
			errMsg: "journal: disk gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.ready, tt.store).Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.code, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.errMsg, resp.Error)
		})
	}
}
