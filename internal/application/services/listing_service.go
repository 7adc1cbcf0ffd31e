package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	"github.com/kiezvet/vetdirectory/internal/domain/repositories"
	"github.com/kiezvet/vetdirectory/internal/domain/schedule"
	"github.com/kiezvet/vetdirectory/internal/infrastructure/observability"
	"github.com/kiezvet/vetdirectory/pkg/config"
)

// ListingService turns search criteria into pages of listings. Most
// filters push down into the store query; the open-now filter cannot,
// so that path fetches a bounded candidate window and evaluates the
// published hours in memory.
type ListingService struct {
	repo            repositories.ListingRepository
	loc             *time.Location
	maxScan         int64
	defaultPageSize int64
	now             func() time.Time
}

// NewListingService creates a new listing service. The configured
// business timezone must resolve against the host tz database.
func NewListingService(repo repositories.ListingRepository, cfg config.SearchConfig) (*ListingService, error) {
	loc, err := time.LoadLocation(cfg.BusinessTimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", cfg.BusinessTimeZone, err)
	}

	return &ListingService{
		repo:            repo,
		loc:             loc,
		maxScan:         cfg.MaxScan,
		defaultPageSize: cfg.DefaultPageSize,
		now:             time.Now,
	}, nil
}

// WithClock overrides the wall clock; tests use this to pin "now"
func (s *ListingService) WithClock(clock func() time.Time) *ListingService {
	s.now = clock
	return s
}

// Search resolves the criteria into one page of listings plus the
// total match count, sorted by rating descending.
//
// Without the open-now filter this is a count plus a window query, two
// independent round-trips; a write landing between them can skew the
// total against the returned items by the concurrent delta, which is
// accepted. With the open-now filter only the first maxScan candidates
// are fetched and filtered in memory, so the total counts surviving
// candidates rather than the whole corpus and is flagged approximate.
func (s *ListingService) Search(ctx context.Context, criteria entities.SearchCriteria) (*entities.PagedResult, error) {
	pageSize := criteria.EffectivePageSize(s.defaultPageSize)
	page := criteria.EffectivePage()
	skip := (page - 1) * pageSize

	if !criteria.OpenNow {
		total, err := s.repo.Count(ctx, criteria)
		if err != nil {
			return nil, err
		}
		items, err := s.repo.Find(ctx, criteria, skip, pageSize)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*entities.Listing{}
		}
		return &entities.PagedResult{
			Items:    items,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		}, nil
	}

	candidates, err := s.repo.Find(ctx, criteria, 0, s.maxScan)
	if err != nil {
		return nil, err
	}

	now := s.now()
	survivors := make([]*entities.Listing, 0, len(candidates))
	for _, listing := range candidates {
		if schedule.IsOpenAt(listing.OpeningHours, now, s.loc) {
			survivors = append(survivors, listing)
		}
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Debug().
		Int("candidates", len(candidates)).
		Int("open_now", len(survivors)).
		Int64("max_scan", s.maxScan).
		Msg("applied open-now filter in memory")

	items := pageOf(survivors, skip, pageSize)
	return &entities.PagedResult{
		Items:              items,
		Total:              int64(len(survivors)),
		Page:               page,
		PageSize:           pageSize,
		TotalIsApproximate: true,
	}, nil
}

// GetByID retrieves a listing by its external identifier
func (s *ListingService) GetByID(ctx context.Context, googleMapsID string) (*entities.Listing, error) {
	return s.repo.GetByID(ctx, googleMapsID)
}

// IsOpenNow reports whether the listing's published hours cover the
// current instant in the business timezone
func (s *ListingService) IsOpenNow(listing *entities.Listing) bool {
	return schedule.IsOpenAt(listing.OpeningHours, s.now(), s.loc)
}

// DisplayHours returns the listing's weekly hours with each day's raw
// text rendered in 24-hour form where possible
func (s *ListingService) DisplayHours(listing *entities.Listing) []entities.OpeningHoursEntry {
	if len(listing.OpeningHours) == 0 {
		return nil
	}
	display := make([]entities.OpeningHoursEntry, len(listing.OpeningHours))
	for i, entry := range listing.OpeningHours {
		display[i] = entities.OpeningHoursEntry{
			Day:   entry.Day,
			Hours: schedule.ConvertRangeTo24h(entry.Hours),
		}
	}
	return display
}

// Categories returns the distinct category names
func (s *ListingService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Neighborhoods returns the distinct neighborhood names
func (s *ListingService) Neighborhoods(ctx context.Context) ([]string, error) {
	return s.repo.Neighborhoods(ctx)
}

// Stats summarizes the corpus
func (s *ListingService) Stats(ctx context.Context) (*entities.DirectoryStats, error) {
	return s.repo.Stats(ctx)
}

func pageOf(listings []*entities.Listing, skip, pageSize int64) []*entities.Listing {
	if skip >= int64(len(listings)) {
		return []*entities.Listing{}
	}
	end := skip + pageSize
	if end > int64(len(listings)) {
		end = int64(len(listings))
	}
	return listings[skip:end]
}
