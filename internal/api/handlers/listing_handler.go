package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kiezvet/vetdirectory/internal/application/services"
	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	apperrors "github.com/kiezvet/vetdirectory/pkg/errors"
)

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	listings *services.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{
		listings: listings,
	}
}

// listingDetail is the detail-page payload: the raw listing plus the
// derived open-now badge and 24-hour display schedule
type listingDetail struct {
	*entities.Listing
	IsOpenNow    bool                         `json:"is_open_now"`
	DisplayHours []entities.OpeningHoursEntry `json:"display_hours,omitempty"`
}

// SearchListings handles GET /api/listings
func (h *ListingHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseSearchCriteria(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.listings.Search(r.Context(), criteria)
	if err != nil {
		respondWithAppError(w, err, "failed to search listings")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetListing handles GET /api/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if listingID == "" {
		respondWithError(w, http.StatusBadRequest, "listing ID is required")
		return
	}

	listing, err := h.listings.GetByID(r.Context(), listingID)
	if err != nil {
		respondWithAppError(w, err, "failed to load listing")
		return
	}

	respondWithJSON(w, http.StatusOK, listingDetail{
		Listing:      listing,
		IsOpenNow:    h.listings.IsOpenNow(listing),
		DisplayHours: h.listings.DisplayHours(listing),
	})
}

// parseSearchCriteria reads the filter query parameters. Absent
// parameters leave their criteria fields zero, which means
// "unconstrained"; malformed numbers are rejected rather than guessed.
func parseSearchCriteria(r *http.Request) (entities.SearchCriteria, error) {
	q := r.URL.Query()
	criteria := entities.SearchCriteria{
		Text:         q.Get("text"),
		Category:     q.Get("category"),
		Neighborhood: q.Get("neighborhood"),
	}

	if v := q.Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return criteria, errors.New("min_rating must be a number")
		}
		criteria.MinRating = rating
	}

	lngRaw, latRaw := q.Get("lng"), q.Get("lat")
	if (lngRaw == "") != (latRaw == "") {
		return criteria, errors.New("lng and lat must be supplied together")
	}
	if lngRaw != "" {
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil {
			return criteria, errors.New("lng must be a number")
		}
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return criteria, errors.New("lat must be a number")
		}
		criteria.Longitude = &lng
		criteria.Latitude = &lat
	}

	if v := q.Get("max_distance"); v != "" {
		dist, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return criteria, errors.New("max_distance must be a number")
		}
		criteria.MaxDistanceMeters = dist
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return criteria, errors.New("page must be an integer")
		}
		criteria.Page = page
	}

	if v := q.Get("page_size"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return criteria, errors.New("page_size must be an integer")
		}
		criteria.PageSize = size
	}

	if v := q.Get("open_now"); v != "" {
		criteria.OpenNow = v == "true" || v == "1"
	}

	return criteria, nil
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the typed error taxonomy onto HTTP statuses
func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeUnavailable:
			respondWithError(w, http.StatusServiceUnavailable, "directory temporarily unavailable")
		default:
			respondWithError(w, http.StatusInternalServerError, fallback)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, fallback)
}
