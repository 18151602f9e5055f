package handlers

import (
	"net/http"
	"strconv"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/pkg/journal"
)

// Bounds for the limit query parameter.
const (
	DefaultTransfersLimit = 50
	MaxTransfersLimit     = 1000
)

// TransfersHandler exposes the transfer journal.
type TransfersHandler struct {
	store journal.Store
}

// NewTransfersHandler creates a handler over store, which may be nil when
// the journal is disabled.
func NewTransfersHandler(store journal.Store) *TransfersHandler {
	return &TransfersHandler{store: store}
}

// List handles GET /transfers?limit=N, newest first.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse("journal disabled"))
		return
	}

	limit := DefaultTransfersLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse("limit must be a positive integer"))
			return
		}
		limit = min(n, MaxTransfersLimit)
	}

	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		logger.Warn("Failed to read transfer journal", logger.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse("failed to read journal"))
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	writeJSON(w, http.StatusOK, okResponse(entries))
}
