package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/linexfer/pkg/journal"
)

func listTransfers(t *testing.T, store journal.Store, query string) (*httptest.ResponseRecorder, []journal.Entry) {
	t.Helper()
	w := httptest.NewRecorder()
	NewTransfersHandler(store).List(w, httptest.NewRequest(http.MethodGet, "/transfers"+query, nil))

	if w.Code != http.StatusOK {
		return w, nil
	}
	var body struct {
		Status string          `json:"status"`
		Data   []journal.Entry `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	return w, body.Data
}

func TestTransfersNewestFirst(t *testing.T) {
	store := journal.NewMemoryStore(8)
	for _, p := range []string{"a", "b", "c"} {
		e := journal.NewEntry("s1", "127.0.0.1:1", journal.OpPut, p)
		e.Finish(3, nil)
		require.NoError(t, store.Record(context.Background(), e))
	}

	_, entries := listTransfers(t, store, "")
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].Path)
	assert.Equal(t, journal.OpPut, entries[0].Operation)

	_, entries = listTransfers(t, store, "?limit=2")
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[1].Path)
}

func TestTransfersEmptyJournal(t *testing.T) {
	w, entries := listTransfers(t, journal.NewMemoryStore(8), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, entries)
}

func TestTransfersErrors(t *testing.T) {
	w, _ := listTransfers(t, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, q := range []string{"?limit=0", "?limit=-1", "?limit=x"} {
		w, _ = listTransfers(t, journal.NewMemoryStore(1), q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w, _ = listTransfers(t, brokenStore{journal.NewMemoryStore(1)}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
