package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiezvet/vetdirectory/internal/adapters/database"
	"github.com/kiezvet/vetdirectory/internal/domain/entities"
)

// memoryCache is a synchronous map-backed CacheProvider for tests
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, assert.AnError
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// countingRepo tracks how often the underlying store is hit
type countingRepo struct {
	fakeListingRepo
	getByIDCalls int
	findCalls    int
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*entities.Listing, error) {
	r.getByIDCalls++
	return r.fakeListingRepo.GetByID(ctx, id)
}

func (r *countingRepo) Find(ctx context.Context, criteria entities.SearchCriteria, skip, limit int64) ([]*entities.Listing, error) {
	r.findCalls++
	return r.fakeListingRepo.Find(ctx, criteria, skip, limit)
}

func TestCachedListingAdapter_GetByID_MissThenHit(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	repo := &countingRepo{fakeListingRepo: fakeListingRepo{listings: []*entities.Listing{
		{GoogleMapsID: "gm-1", Title: "Tierklinik Nord", Rating: 4.8},
	}}}
	adapter := database.NewCachedListingAdapter(repo, cache)

	first, err := adapter.GetByID(ctx, "gm-1")
	require.NoError(t, err)
	assert.Equal(t, "Tierklinik Nord", first.Title)
	assert.Equal(t, 1, repo.getByIDCalls)

	// The write-back happens off the request path
	require.Eventually(t, func() bool { return cache.len() > 0 }, time.Second, 10*time.Millisecond)

	second, err := adapter.GetByID(ctx, "gm-1")
	require.NoError(t, err)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, 1, repo.getByIDCalls, "second lookup should be served from cache")
}

func TestCachedListingAdapter_GetByID_CorruptEntryFallsThrough(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	require.NoError(t, cache.Set(ctx, "listing:gm-1", []byte("{not json"), time.Minute))

	repo := &countingRepo{fakeListingRepo: fakeListingRepo{listings: []*entities.Listing{
		{GoogleMapsID: "gm-1", Title: "Tierklinik Nord"},
	}}}
	adapter := database.NewCachedListingAdapter(repo, cache)

	listing, err := adapter.GetByID(ctx, "gm-1")
	require.NoError(t, err)
	assert.Equal(t, "Tierklinik Nord", listing.Title)
	assert.Equal(t, 1, repo.getByIDCalls)
}

func TestCachedListingAdapter_Find_DistinctCriteriaDistinctEntries(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	repo := &countingRepo{fakeListingRepo: fakeListingRepo{listings: []*entities.Listing{
		{GoogleMapsID: "gm-1", Title: "Tierklinik Nord", Neighborhood: "Mitte", Rating: 4.8},
		{GoogleMapsID: "gm-2", Title: "Kleintierpraxis Süd", Neighborhood: "Neukölln", Rating: 4.2},
	}}}
	adapter := database.NewCachedListingAdapter(repo, cache)

	_, err := adapter.Find(ctx, entities.SearchCriteria{Neighborhood: "Mitte"}, 0, 20)
	require.NoError(t, err)
	_, err = adapter.Find(ctx, entities.SearchCriteria{Neighborhood: "Neukölln"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findCalls)

	require.Eventually(t, func() bool { return cache.len() == 2 }, time.Second, 10*time.Millisecond)

	// Repeats are served from cache
	_, err = adapter.Find(ctx, entities.SearchCriteria{Neighborhood: "Mitte"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findCalls)
}
