package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	"github.com/kiezvet/vetdirectory/internal/domain/repositories"
)

// CacheWarmingService keeps the hot read paths primed. It works through
// the cached repository: reading an entry populates the cache, so
// warming is just issuing the reads visitors make most often.
type CacheWarmingService struct {
	repo repositories.ListingRepository

	firstPages int64
	pageSize   int64
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(repo repositories.ListingRepository, pageSize int64) *CacheWarmingService {
	return &CacheWarmingService{
		repo:       repo,
		firstPages: 3,
		pageSize:   pageSize,
	}
}

// WarmCache primes the filter vocabularies, directory stats, and the
// first unfiltered result pages.
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	log.Debug().Msg("Starting cache warming")

	if _, err := s.repo.Categories(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to warm categories")
	}
	if _, err := s.repo.Neighborhoods(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to warm neighborhoods")
	}
	if _, err := s.repo.Stats(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to warm stats")
	}

	// The empty criteria search is the landing-page query.
	var criteria entities.SearchCriteria
	if _, err := s.repo.Count(ctx, criteria); err != nil {
		log.Warn().Err(err).Msg("Failed to warm result count")
	}
	for page := int64(0); page < s.firstPages; page++ {
		if _, err := s.repo.Find(ctx, criteria, page*s.pageSize, s.pageSize); err != nil {
			log.Warn().Err(err).Int64("page", page).Msg("Failed to warm result page")
		}
	}

	log.Debug().Msg("Cache warming completed")
	return nil
}

// StartPeriodicWarming starts a background goroutine that periodically warms the cache
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	// Initial warming
	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(context.Background()); err != nil {
					log.Warn().Err(err).Msg("Periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic cache warming")
}
