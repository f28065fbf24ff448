package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matiasleandrokruk/arcana/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/arcana/internal/domain/journal"
)

// JournalStore reads saved readings. *journal.Journal satisfies it.
type JournalStore interface {
	Get(ctx context.Context, id, ownerID string) (*journal.Entry, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]journal.Entry, error)
}

// JournalHandler serves the caller's saved readings.
type JournalHandler struct {
	store JournalStore
}

// NewJournalHandler creates a JournalHandler.
func NewJournalHandler(store JournalStore) *JournalHandler {
	return &JournalHandler{store: store}
}

// Meta describes the page returned by a list endpoint.
type Meta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListReadingsResponse is the body of GET /api/v1/readings.
type ListReadingsResponse struct {
	Data []journal.Entry `json:"data"`
	Meta Meta            `json:"meta"`
}

// ListReadings handles GET /api/v1/readings (auth required), newest first.
func (h *JournalHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := ctxkeys.UserIDFrom(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	page := parsePaginationParams(r)
	entries, err := h.store.ListByOwner(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list readings")
		return
	}

	writeJSON(w, http.StatusOK, ListReadingsResponse{
		Data: entries,
		Meta: Meta{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetReading handles GET /api/v1/readings/{id}.
// Anonymous readings are visible to anyone holding the id; owned ones only to their owner.
func (h *JournalHandler) GetReading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "reading id is required")
		return
	}

	entry, err := h.store.Get(ctx, id, ctxkeys.UserIDFrom(ctx))
	if errors.Is(err, journal.ErrNotFound) {
		writeError(w, http.StatusNotFound, "reading not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reading")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}
