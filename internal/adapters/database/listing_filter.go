package database

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
)

// The store query is composed from an explicit list of predicate
// clauses, one per present criteria field. Each clause knows how to
// fold itself into the final filter document, so every predicate can
// be built and inspected on its own.

type filterClause interface {
	apply(query bson.M)
}

// countableClause is implemented by clauses whose find-form operator is
// not accepted by countDocuments and need an equivalent count form.
type countableClause interface {
	applyForCount(query bson.M)
}

// substringMatch filters one field by case-insensitive substring
type substringMatch struct {
	field string
	value string
}

func (c substringMatch) apply(query bson.M) {
	query[c.field] = caseInsensitive(c.value)
}

// disjunctiveMatch filters by case-insensitive substring across
// several fields at once, as a single $or predicate
type disjunctiveMatch struct {
	fields []string
	value  string
}

func (c disjunctiveMatch) apply(query bson.M) {
	or := make([]bson.M, 0, len(c.fields))
	for _, field := range c.fields {
		or = append(or, bson.M{field: caseInsensitive(c.value)})
	}
	query["$or"] = or
}

// rangeMatch filters one numeric field by a lower bound
type rangeMatch struct {
	field string
	min   float64
}

func (c rangeMatch) apply(query bson.M) {
	query[c.field] = bson.M{"$gte": c.min}
}

// proximityMatch restricts to documents within maxMeters of a point
type proximityMatch struct {
	field     string
	longitude float64
	latitude  float64
	maxMeters float64
}

func (c proximityMatch) apply(query bson.M) {
	query[c.field] = bson.M{
		"$near": bson.M{
			"$geometry": bson.M{
				"type":        "Point",
				"coordinates": []float64{c.longitude, c.latitude},
			},
			"$maxDistance": c.maxMeters,
		},
	}
}

// earthRadiusMeters converts a metric distance into the radians that
// $centerSphere expects.
const earthRadiusMeters = 6378100.0

// applyForCount uses $geoWithin/$centerSphere: countDocuments rejects
// $near, and a count has no order to lose.
func (c proximityMatch) applyForCount(query bson.M) {
	query[c.field] = bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": []interface{}{
				[]float64{c.longitude, c.latitude},
				c.maxMeters / earthRadiusMeters,
			},
		},
	}
}

// caseInsensitive builds a case-insensitive substring regex predicate.
// User input is quoted so regex metacharacters match literally.
func caseInsensitive(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

// buildClauses translates the present criteria fields into predicate
// clauses. Absent fields contribute nothing; OpenNow is deliberately
// not represented here because the store has no structured time-window
// index to evaluate it against.
func buildClauses(criteria entities.SearchCriteria, defaultMaxDistance float64) []filterClause {
	var clauses []filterClause

	if criteria.MinRating > 0 {
		clauses = append(clauses, rangeMatch{field: "googleScore", min: criteria.MinRating})
	}
	if criteria.Category != "" {
		clauses = append(clauses, substringMatch{field: "categoryName", value: criteria.Category})
	}
	if criteria.Neighborhood != "" {
		clauses = append(clauses, substringMatch{field: "neighborhood", value: criteria.Neighborhood})
	}
	if criteria.Text != "" {
		clauses = append(clauses, disjunctiveMatch{
			fields: []string{"title", "categoryName", "address", "neighborhood"},
			value:  criteria.Text,
		})
	}
	if criteria.HasProximity() {
		maxMeters := criteria.MaxDistanceMeters
		if maxMeters <= 0 {
			maxMeters = defaultMaxDistance
		}
		clauses = append(clauses, proximityMatch{
			field:     "location",
			longitude: *criteria.Longitude,
			latitude:  *criteria.Latitude,
			maxMeters: maxMeters,
		})
	}

	return clauses
}

// buildFilter folds the criteria's clauses into one store filter
func buildFilter(criteria entities.SearchCriteria, defaultMaxDistance float64) bson.M {
	query := bson.M{}
	for _, clause := range buildClauses(criteria, defaultMaxDistance) {
		clause.apply(query)
	}
	return query
}

// buildCountFilter folds the same clauses into a filter accepted by
// countDocuments, substituting count forms where the find operator
// is not allowed there.
func buildCountFilter(criteria entities.SearchCriteria, defaultMaxDistance float64) bson.M {
	query := bson.M{}
	for _, clause := range buildClauses(criteria, defaultMaxDistance) {
		if countable, ok := clause.(countableClause); ok {
			countable.applyForCount(query)
			continue
		}
		clause.apply(query)
	}
	return query
}
