package handlers

import (
	"net/http"

	"github.com/kiezvet/vetdirectory/internal/application/services"
)

// StatsHandler serves corpus statistics and filter vocabularies
type StatsHandler struct {
	listings *services.ListingService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(listings *services.ListingService) *StatsHandler {
	return &StatsHandler{
		listings: listings,
	}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.listings.Stats(r.Context())
	if err != nil {
		respondWithAppError(w, err, "failed to load statistics")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// GetCategories handles GET /api/categories
func (h *StatsHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.listings.Categories(r.Context())
	if err != nil {
		respondWithAppError(w, err, "failed to load categories")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// GetNeighborhoods handles GET /api/neighborhoods
func (h *StatsHandler) GetNeighborhoods(w http.ResponseWriter, r *http.Request) {
	neighborhoods, err := h.listings.Neighborhoods(r.Context())
	if err != nil {
		respondWithAppError(w, err, "failed to load neighborhoods")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"neighborhoods": neighborhoods,
	})
}
