package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	"github.com/kiezvet/vetdirectory/internal/domain/providers"
	"github.com/kiezvet/vetdirectory/internal/domain/repositories"
)

// CachedListingAdapter wraps a ListingRepository with read-through
// Redis caching. Listings are read-only from this service, so short
// TTL expiry is the only invalidation needed.
type CachedListingAdapter struct {
	adapter repositories.ListingRepository
	cache   providers.CacheProvider
}

// NewCachedListingAdapter creates a new cached listing adapter
func NewCachedListingAdapter(adapter repositories.ListingRepository, cache providers.CacheProvider) repositories.ListingRepository {
	return &CachedListingAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs
const (
	listingByIDTTL  = 5 * time.Minute
	findResultsTTL  = 2 * time.Minute
	countResultsTTL = 2 * time.Minute
	vocabularyTTL   = 30 * time.Minute
	statsTTL        = 10 * time.Minute
)

func listingCacheKey(googleMapsID string) string {
	return "listing:" + googleMapsID
}

// criteriaCacheKey hashes the full criteria plus window so every
// distinct query gets its own entry
func criteriaCacheKey(prefix string, criteria entities.SearchCriteria, skip, limit int64) string {
	payload, _ := json.Marshal(criteria)
	sum := sha256.Sum256(fmt.Appendf(payload, ":%d:%d", skip, limit))
	return prefix + hex.EncodeToString(sum[:])
}

// GetByID retrieves a listing by external identifier with caching
func (a *CachedListingAdapter) GetByID(ctx context.Context, googleMapsID string) (*entities.Listing, error) {
	cacheKey := listingCacheKey(googleMapsID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var listing entities.Listing
		if err := json.Unmarshal(cached, &listing); err == nil {
			return &listing, nil
		}
		log.Warn().Str("key", cacheKey).Msg("failed to unmarshal cached listing")
	}

	listing, err := a.adapter.GetByID(ctx, googleMapsID)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, listing, listingByIDTTL)
	return listing, nil
}

// Find returns a window of matching listings with caching
func (a *CachedListingAdapter) Find(ctx context.Context, criteria entities.SearchCriteria, skip, limit int64) ([]*entities.Listing, error) {
	cacheKey := criteriaCacheKey("listings:find:", criteria, skip, limit)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var listings []*entities.Listing
		if err := json.Unmarshal(cached, &listings); err == nil {
			return listings, nil
		}
	}

	listings, err := a.adapter.Find(ctx, criteria, skip, limit)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, listings, findResultsTTL)
	return listings, nil
}

// Count returns the number of matching listings with caching
func (a *CachedListingAdapter) Count(ctx context.Context, criteria entities.SearchCriteria) (int64, error) {
	cacheKey := criteriaCacheKey("listings:count:", criteria, 0, 0)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var total int64
		if err := json.Unmarshal(cached, &total); err == nil {
			return total, nil
		}
	}

	total, err := a.adapter.Count(ctx, criteria)
	if err != nil {
		return 0, err
	}

	a.storeAsync(cacheKey, total, countResultsTTL)
	return total, nil
}

// Categories returns the distinct category names with caching
func (a *CachedListingAdapter) Categories(ctx context.Context) ([]string, error) {
	return a.cachedVocabulary(ctx, "listings:categories", a.adapter.Categories)
}

// Neighborhoods returns the distinct neighborhood names with caching
func (a *CachedListingAdapter) Neighborhoods(ctx context.Context) ([]string, error) {
	return a.cachedVocabulary(ctx, "listings:neighborhoods", a.adapter.Neighborhoods)
}

// Stats summarizes the corpus with caching
func (a *CachedListingAdapter) Stats(ctx context.Context) (*entities.DirectoryStats, error) {
	const cacheKey = "listings:stats"

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var stats entities.DirectoryStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := a.adapter.Stats(ctx)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, stats, statsTTL)
	return stats, nil
}

func (a *CachedListingAdapter) cachedVocabulary(ctx context.Context, cacheKey string, fetch func(context.Context) ([]string, error)) ([]string, error) {
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var values []string
		if err := json.Unmarshal(cached, &values); err == nil {
			return values, nil
		}
	}

	values, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, values, vocabularyTTL)
	return values, nil
}

// storeAsync updates the cache off the request path so a slow or down
// Redis never delays the response
func (a *CachedListingAdapter) storeAsync(cacheKey string, value any, ttl time.Duration) {
	go func() {
		data, err := json.Marshal(value)
		if err != nil {
			return
		}
		if err := a.cache.Set(context.Background(), cacheKey, data, ttl); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache value")
		}
	}()
}
