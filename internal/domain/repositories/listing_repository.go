package repositories

import (
	"context"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
)

// ListingRepository defines the interface for reading listing documents
// from the store. The store cannot evaluate the OpenNow criterion, so
// Find and Count compose every other filter and ignore that flag; the
// service layer applies the open-now filter in memory.
type ListingRepository interface {
	// GetByID retrieves a listing by its external Google Maps identifier
	GetByID(ctx context.Context, googleMapsID string) (*entities.Listing, error)

	// Find returns listings matching the criteria, sorted by rating
	// descending, within the [skip, skip+limit) window
	Find(ctx context.Context, criteria entities.SearchCriteria, skip, limit int64) ([]*entities.Listing, error)

	// Count returns the number of listings matching the criteria
	Count(ctx context.Context, criteria entities.SearchCriteria) (int64, error)

	// Categories returns the distinct category names in the corpus
	Categories(ctx context.Context) ([]string, error)

	// Neighborhoods returns the distinct non-empty neighborhood names
	Neighborhoods(ctx context.Context) ([]string, error)

	// Stats summarizes the corpus for the landing page
	Stats(ctx context.Context) (*entities.DirectoryStats, error)
}
