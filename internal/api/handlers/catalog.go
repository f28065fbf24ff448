package handlers

import (
	"net/http"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

// CatalogHandler exposes the static card, spread and style reference data.
type CatalogHandler struct {
	catalog *tarot.Catalog
}

func NewCatalogHandler(catalog *tarot.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListSpreads handles GET /api/v1/catalog/spreads
func (h *CatalogHandler) ListSpreads(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.catalog.Spreads})
}

// ListStyles handles GET /api/v1/catalog/styles
func (h *CatalogHandler) ListStyles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.catalog.Styles})
}

// ListCards handles GET /api/v1/catalog/cards
func (h *CatalogHandler) ListCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.catalog.Cards})
}
