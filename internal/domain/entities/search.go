package entities

// SearchCriteria carries the optional listing filters for one search
// request. Zero values mean "no constraint" for every field.
type SearchCriteria struct {
	// Text matches loosely across title, category, address and
	// neighborhood as a single disjunction.
	Text string `json:"text,omitempty"`

	Category     string  `json:"category,omitempty"`
	Neighborhood string  `json:"neighborhood,omitempty"`
	MinRating    float64 `json:"min_rating,omitempty"`

	// Longitude and Latitude are used together or not at all.
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`

	// MaxDistanceMeters bounds the proximity filter; 0 means the
	// configured default.
	MaxDistanceMeters float64 `json:"max_distance_meters,omitempty"`

	Page     int64 `json:"page,omitempty"`
	PageSize int64 `json:"page_size,omitempty"`

	OpenNow bool `json:"open_now,omitempty"`
}

// HasProximity reports whether a proximity filter is requested
func (c SearchCriteria) HasProximity() bool {
	return c.Longitude != nil && c.Latitude != nil
}

// EffectivePage returns the 1-based page, clamped so skip offsets are
// never negative.
func (c SearchCriteria) EffectivePage() int64 {
	if c.Page > 0 {
		return c.Page
	}
	return 1
}

// EffectivePageSize returns the page size, falling back to the given
// default when unset or non-positive.
func (c SearchCriteria) EffectivePageSize(defaultSize int64) int64 {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return defaultSize
}

// PagedResult is one page of listings plus the total match count under
// the criteria that produced it.
type PagedResult struct {
	Items    []*Listing `json:"items"`
	Total    int64      `json:"total"`
	Page     int64      `json:"page"`
	PageSize int64      `json:"page_size"`

	// TotalIsApproximate is set on the open-now path, where the total
	// only counts survivors of the bounded candidate scan.
	TotalIsApproximate bool `json:"total_is_approximate,omitempty"`
}
