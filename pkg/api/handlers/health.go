package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/linexfer/pkg/journal"
)

// ReadinessChecker reports whether the transfer server can take sessions.
type ReadinessChecker interface {
	Ready() error
}

// HealthHandler serves the health probes.
type HealthHandler struct {
	ready   ReadinessChecker
	journal journal.Store
}

// NewHealthHandler creates a health handler. Both arguments may be nil; a
// nil checker makes the readiness probe fail.
func NewHealthHandler(ready ReadinessChecker, store journal.Store) *HealthHandler {
	return &HealthHandler{ready: ready, journal: store}
}

// Liveness handles GET /health. It succeeds as long as the process serves
// HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "linexfer",
	}))
}

// ReadinessStatus is the data of a successful readiness probe.
type ReadinessStatus struct {
	Journal        string `json:"journal"`
	JournalLatency string `json:"journal_latency,omitempty"`
}

// Readiness handles GET /health/ready.
//
// Returns 503 when the listener is not accepting, the root directory is
// gone, or the journal fails its healthcheck.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("server not initialized"))
		return
	}
	if err := h.ready.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	status := ReadinessStatus{Journal: "disabled"}
	if h.journal != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		err := h.journal.Healthcheck(ctx)
		status.JournalLatency = time.Since(start).String()
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("journal: "+err.Error()))
			return
		}
		status.Journal = "healthy"
	}

	writeJSON(w, http.StatusOK, healthyResponse(status))
}
