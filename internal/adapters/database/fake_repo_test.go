package database_test

import (
	"context"
	"sort"
	"strings"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	apperrors "github.com/kiezvet/vetdirectory/pkg/errors"
)

// fakeListingRepo is a small in-memory stand-in for the store,
// honoring the rating sort and windowing the real adapter provides
type fakeListingRepo struct {
	listings []*entities.Listing
}

func (r *fakeListingRepo) GetByID(_ context.Context, googleMapsID string) (*entities.Listing, error) {
	for _, l := range r.listings {
		if l.GoogleMapsID == googleMapsID {
			return l, nil
		}
	}
	return nil, apperrors.NewNotFoundError("listing not found: " + googleMapsID)
}

func (r *fakeListingRepo) Find(_ context.Context, criteria entities.SearchCriteria, skip, limit int64) ([]*entities.Listing, error) {
	matched := r.match(criteria)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Rating > matched[j].Rating
	})

	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeListingRepo) Count(_ context.Context, criteria entities.SearchCriteria) (int64, error) {
	return int64(len(r.match(criteria))), nil
}

func (r *fakeListingRepo) Categories(context.Context) ([]string, error) {
	return r.distinct(func(l *entities.Listing) string { return l.CategoryName }), nil
}

func (r *fakeListingRepo) Neighborhoods(context.Context) ([]string, error) {
	return r.distinct(func(l *entities.Listing) string { return l.Neighborhood }), nil
}

func (r *fakeListingRepo) Stats(context.Context) (*entities.DirectoryStats, error) {
	return &entities.DirectoryStats{TotalListings: int64(len(r.listings))}, nil
}

func (r *fakeListingRepo) match(criteria entities.SearchCriteria) []*entities.Listing {
	var matched []*entities.Listing
	for _, l := range r.listings {
		if criteria.Category != "" && !containsFold(l.CategoryName, criteria.Category) {
			continue
		}
		if criteria.Neighborhood != "" && !containsFold(l.Neighborhood, criteria.Neighborhood) {
			continue
		}
		if criteria.Text != "" &&
			!containsFold(l.Title, criteria.Text) &&
			!containsFold(l.CategoryName, criteria.Text) &&
			!containsFold(l.Address, criteria.Text) &&
			!containsFold(l.Neighborhood, criteria.Text) {
			continue
		}
		if criteria.MinRating > 0 && l.Rating < criteria.MinRating {
			continue
		}
		matched = append(matched, l)
	}
	return matched
}

func (r *fakeListingRepo) distinct(field func(*entities.Listing) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, l := range r.listings {
		if v := field(l); v != "" && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
