package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kiezvet/vetdirectory/internal/api/handlers"
	"github.com/kiezvet/vetdirectory/internal/application/services"
	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	"github.com/kiezvet/vetdirectory/pkg/config"
	apperrors "github.com/kiezvet/vetdirectory/pkg/errors"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*entities.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Listing), args.Error(1)
}

func (m *MockListingRepository) Find(ctx context.Context, criteria entities.SearchCriteria, skip, limit int64) ([]*entities.Listing, error) {
	args := m.Called(ctx, criteria, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Listing), args.Error(1)
}

func (m *MockListingRepository) Count(ctx context.Context, criteria entities.SearchCriteria) (int64, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockListingRepository) Neighborhoods(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockListingRepository) Stats(ctx context.Context) (*entities.DirectoryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DirectoryStats), args.Error(1)
}

func newHandler(t *testing.T, repo *MockListingRepository) *handlers.ListingHandler {
	t.Helper()
	svc, err := services.NewListingService(repo, config.SearchConfig{
		BusinessTimeZone:   "Europe/Berlin",
		MaxScan:            500,
		DefaultPageSize:    20,
		DefaultMaxDistance: 10000,
	})
	require.NoError(t, err)
	// Pin the clock to a Monday noon in Berlin
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)
	return handlers.NewListingHandler(svc.WithClock(func() time.Time { return now }))
}

func TestSearchListings_ParsesCriteriaAndResponds(t *testing.T) {
	repo := new(MockListingRepository)
	wantCriteria := entities.SearchCriteria{
		Text:         "tierarzt",
		Neighborhood: "Mitte",
		Page:         2,
		PageSize:     5,
	}
	repo.On("Count", mock.Anything, wantCriteria).Return(int64(11), nil)
	repo.On("Find", mock.Anything, wantCriteria, int64(5), int64(5)).Return([]*entities.Listing{
		{GoogleMapsID: "gm-6", Title: "Tierarztpraxis am Kanal", Rating: 4.3},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/listings?text=tierarzt&neighborhood=Mitte&page=2&page_size=5", nil)
	rec := httptest.NewRecorder()

	newHandler(t, repo).SearchListings(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result entities.PagedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, int64(11), result.Total)
	assert.Equal(t, int64(2), result.Page)
	assert.Equal(t, int64(5), result.PageSize)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "gm-6", result.Items[0].GoogleMapsID)

	repo.AssertExpectations(t)
}

func TestSearchListings_RejectsMalformedNumbers(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "bad page", query: "page=two"},
		{name: "bad rating", query: "min_rating=high"},
		{name: "lng without lat", query: "lng=13.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/listings?"+tt.query, nil)
			rec := httptest.NewRecorder()

			newHandler(t, new(MockListingRepository)).SearchListings(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSearchListings_StoreUnavailable(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("Count", mock.Anything, mock.Anything).
		Return(int64(0), apperrors.NewUnavailableError("document store unavailable", assert.AnError))

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()

	newHandler(t, repo).SearchListings(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetListing_IncludesOpenNowAndDisplayHours(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("GetByID", mock.Anything, "gm-1").Return(&entities.Listing{
		GoogleMapsID: "gm-1",
		Title:        "Tierklinik Nord",
		OpeningHours: []entities.OpeningHoursEntry{
			{Day: "Monday", Hours: "9 AM to 6 PM"},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/listings/gm-1", nil)
	req.SetPathValue("id", "gm-1")
	rec := httptest.NewRecorder()

	newHandler(t, repo).GetListing(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		ID           string `json:"id"`
		IsOpenNow    bool   `json:"is_open_now"`
		DisplayHours []struct {
			Day   string `json:"day"`
			Hours string `json:"hours"`
		} `json:"display_hours"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "gm-1", detail.ID)
	assert.True(t, detail.IsOpenNow)
	require.Len(t, detail.DisplayHours, 1)
	assert.Equal(t, "09:00–18:00", detail.DisplayHours[0].Hours)
}

func TestGetListing_NotFound(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("GetByID", mock.Anything, "missing").
		Return(nil, apperrors.NewNotFoundError("listing not found: missing"))

	req := httptest.NewRequest(http.MethodGet, "/api/listings/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	newHandler(t, repo).GetListing(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
