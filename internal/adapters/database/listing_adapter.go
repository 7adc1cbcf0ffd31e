package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	"github.com/kiezvet/vetdirectory/internal/domain/repositories"
	mongoclient "github.com/kiezvet/vetdirectory/internal/infrastructure/clients/mongo"
	"github.com/kiezvet/vetdirectory/internal/infrastructure/observability"
	apperrors "github.com/kiezvet/vetdirectory/pkg/errors"
)

const highRatedThreshold = 4.5

// vocabularyPreviewSize caps how many category/neighborhood names the
// stats payload carries
const vocabularyPreviewSize = 10

// ListingAdapter implements ListingRepository against MongoDB
type ListingAdapter struct {
	client             *mongoclient.Client
	defaultMaxDistance float64
	metrics            *observability.Metrics
}

// NewListingAdapter creates a new MongoDB listing adapter. metrics may
// be nil when observability is disabled.
func NewListingAdapter(client *mongoclient.Client, defaultMaxDistance float64, metrics *observability.Metrics) repositories.ListingRepository {
	return &ListingAdapter{
		client:             client,
		defaultMaxDistance: defaultMaxDistance,
		metrics:            metrics,
	}
}

// GetByID retrieves a listing by its external Google Maps identifier
func (a *ListingAdapter) GetByID(ctx context.Context, googleMapsID string) (*entities.Listing, error) {
	coll, err := a.client.Collection(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailableError("document store unavailable", err)
	}

	defer a.timeOp(ctx, "get_by_id")()

	var listing entities.Listing
	if err := coll.FindOne(ctx, bson.M{"googleMapsId": googleMapsID}).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFoundError("listing not found: " + googleMapsID)
		}
		return nil, a.storeError("get_by_id", err)
	}
	return &listing, nil
}

// Find returns listings matching the criteria sorted by rating
// descending, within the [skip, skip+limit) window. The OpenNow flag
// is not part of the composed query; callers filter for it in memory.
func (a *ListingAdapter) Find(ctx context.Context, criteria entities.SearchCriteria, skip, limit int64) ([]*entities.Listing, error) {
	coll, err := a.client.Collection(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailableError("document store unavailable", err)
	}

	defer a.timeOp(ctx, "find")()

	opts := options.Find().
		SetSort(bson.D{{Key: "googleScore", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := coll.Find(ctx, buildFilter(criteria, a.defaultMaxDistance), opts)
	if err != nil {
		return nil, a.storeError("find", err)
	}
	defer cursor.Close(ctx)

	listings := make([]*entities.Listing, 0, limit)
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, a.storeError("find", err)
	}
	return listings, nil
}

// Count returns the number of listings matching the criteria
func (a *ListingAdapter) Count(ctx context.Context, criteria entities.SearchCriteria) (int64, error) {
	coll, err := a.client.Collection(ctx)
	if err != nil {
		return 0, apperrors.NewUnavailableError("document store unavailable", err)
	}

	defer a.timeOp(ctx, "count")()

	total, err := coll.CountDocuments(ctx, buildCountFilter(criteria, a.defaultMaxDistance))
	if err != nil {
		return 0, a.storeError("count", err)
	}
	return total, nil
}

// Categories returns the distinct category names in the corpus
func (a *ListingAdapter) Categories(ctx context.Context) ([]string, error) {
	return a.distinctStrings(ctx, "categoryName")
}

// Neighborhoods returns the distinct non-empty neighborhood names
func (a *ListingAdapter) Neighborhoods(ctx context.Context) ([]string, error) {
	return a.distinctStrings(ctx, "neighborhood")
}

// Stats summarizes the corpus. Each count is an independent round-trip
// against live data, so the numbers can drift by concurrent writes.
func (a *ListingAdapter) Stats(ctx context.Context) (*entities.DirectoryStats, error) {
	coll, err := a.client.Collection(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailableError("document store unavailable", err)
	}

	defer a.timeOp(ctx, "stats")()

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, a.storeError("stats", err)
	}
	highRated, err := coll.CountDocuments(ctx, bson.M{"googleScore": bson.M{"$gte": highRatedThreshold}})
	if err != nil {
		return nil, a.storeError("stats", err)
	}
	withReviews, err := coll.CountDocuments(ctx, bson.M{"googleReview": bson.M{"$exists": true}})
	if err != nil {
		return nil, a.storeError("stats", err)
	}
	withImages, err := coll.CountDocuments(ctx, bson.M{"imageUrl": bson.M{"$exists": true}})
	if err != nil {
		return nil, a.storeError("stats", err)
	}

	categories, err := a.distinctStrings(ctx, "categoryName")
	if err != nil {
		return nil, err
	}
	neighborhoods, err := a.distinctStrings(ctx, "neighborhood")
	if err != nil {
		return nil, err
	}

	return &entities.DirectoryStats{
		TotalListings:       total,
		HighRatedListings:   highRated,
		ListingsWithReviews: withReviews,
		ListingsWithImages:  withImages,
		UniqueCategories:    len(categories),
		UniqueNeighborhoods: len(neighborhoods),
		Categories:          preview(categories),
		Neighborhoods:       preview(neighborhoods),
	}, nil
}

func (a *ListingAdapter) distinctStrings(ctx context.Context, field string) ([]string, error) {
	coll, err := a.client.Collection(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailableError("document store unavailable", err)
	}

	defer a.timeOp(ctx, "distinct")()

	raw, err := coll.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, a.storeError("distinct", err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	return values, nil
}

// storeError classifies a driver error as the store being unreachable
// or the query itself failing
func (a *ListingAdapter) storeError(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return apperrors.NewUnavailableError("document store unreachable during "+op, err)
	}
	return apperrors.NewQueryFailedError(op+" failed", err)
}

func (a *ListingAdapter) timeOp(ctx context.Context, op string) func() {
	if a.metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		observability.RecordStoreMetric(ctx, a.metrics, op, time.Since(start))
	}
}

func preview(values []string) []string {
	if len(values) > vocabularyPreviewSize {
		return values[:vocabularyPreviewSize]
	}
	return values
}
