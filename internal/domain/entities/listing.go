package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing represents a veterinary clinic in the directory. The store
// owns these documents; this service only reads them, so field names
// mirror the collection as migrated.
type Listing struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	GoogleMapsID string              `bson:"googleMapsId" json:"id"`
	Title        string              `bson:"title" json:"title"`
	CategoryName string              `bson:"categoryName" json:"category_name"`
	Categories   []string            `bson:"categories,omitempty" json:"categories,omitempty"`
	Address      string              `bson:"address,omitempty" json:"address,omitempty"`
	Street       string              `bson:"street,omitempty" json:"street,omitempty"`
	PostalCode   string              `bson:"postalCode,omitempty" json:"postal_code,omitempty"`
	Neighborhood string              `bson:"neighborhood,omitempty" json:"neighborhood,omitempty"`
	Website      string              `bson:"website,omitempty" json:"website,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Location     *GeoPoint           `bson:"location,omitempty" json:"location,omitempty"`
	Rating       float64             `bson:"googleScore" json:"rating"`
	OpeningHours []OpeningHoursEntry `bson:"openingHours,omitempty" json:"opening_hours,omitempty"`
	Review       *Review             `bson:"googleReview,omitempty" json:"review,omitempty"`
	ImageURL     string              `bson:"imageUrl,omitempty" json:"image_url,omitempty"`
	MigratedAt   *time.Time          `bson:"migratedAt,omitempty" json:"-"`
	Source       string              `bson:"source,omitempty" json:"-"`
}

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude]
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// Longitude returns the point's longitude
func (p *GeoPoint) Longitude() float64 {
	return p.Coordinates[0]
}

// Latitude returns the point's latitude
func (p *GeoPoint) Latitude() float64 {
	return p.Coordinates[1]
}

// OpeningHoursEntry pairs a weekday name with the raw published hours
// text for that day. Days without published hours have no entry.
type OpeningHoursEntry struct {
	Day   string `bson:"day" json:"day"`
	Hours string `bson:"hours" json:"hours"`
}

// Review holds the featured Google review attached to a listing
type Review struct {
	Text            string  `bson:"text" json:"text"`
	PublishedAtDate string  `bson:"publishedAtDate" json:"published_at"`
	Stars           float64 `bson:"stars" json:"stars"`
}

// DirectoryStats summarizes the listing corpus
type DirectoryStats struct {
	TotalListings       int64    `json:"total_listings"`
	HighRatedListings   int64    `json:"high_rated_listings"`
	ListingsWithReviews int64    `json:"listings_with_reviews"`
	ListingsWithImages  int64    `json:"listings_with_images"`
	UniqueCategories    int      `json:"unique_categories"`
	UniqueNeighborhoods int      `json:"unique_neighborhoods"`
	Categories          []string `json:"categories"`
	Neighborhoods       []string `json:"neighborhoods"`
}
