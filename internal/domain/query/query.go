// Package query translates listing query parameters into the match, sort
// and skip/limit stages shared by the user and coaster list endpoints.
package query

import (
	"net/url"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultPageSize   = 5
	DefaultPageNumber = 1
)

// ListParams are the recognized listing parameters. MaxAge and MinAge are
// day counts relative to now; zero means unset. Role only applies to the
// user listing and stays empty for coasters.
type ListParams struct {
	Keywords   string
	Role       string
	MaxAge     int
	MinAge     int
	SortBy     string
	PageSize   int
	PageNumber int
}

// ParseListParams reads listing parameters from a query string. Absent or
// non-numeric pageSize/pageNumber fall back to the defaults, and both are
// clamped to at least 1. Non-numeric age values are treated as unset.
func ParseListParams(values url.Values) ListParams {
	p := ListParams{
		Keywords: values.Get("keywords"),
		Role:     values.Get("role"),
		SortBy:   values.Get("sortBy"),
	}

	if v, err := strconv.Atoi(values.Get("maxAge")); err == nil && v > 0 {
		p.MaxAge = v
	}
	if v, err := strconv.Atoi(values.Get("minAge")); err == nil && v > 0 {
		p.MinAge = v
	}

	p.PageSize = intOrDefault(values.Get("pageSize"), DefaultPageSize)
	p.PageNumber = intOrDefault(values.Get("pageNumber"), DefaultPageNumber)
	return p
}

func intOrDefault(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		v = fallback
	}
	if v < 1 {
		v = 1
	}
	return v
}

// Match builds the filter predicate. Age bounds form a closed interval on
// createdOn: documents created at most MaxAge days ago and at least MinAge
// days ago.
func (p ListParams) Match(now time.Time) bson.M {
	match := bson.M{}

	if p.Keywords != "" {
		match["$text"] = bson.M{"$search": p.Keywords}
	}
	if p.Role != "" {
		match["role"] = p.Role
	}

	pastMaxDaysOld := now.AddDate(0, 0, -p.MaxAge)
	pastMinDaysOld := now.AddDate(0, 0, -p.MinAge)
	switch {
	case p.MaxAge > 0 && p.MinAge > 0:
		match["createdOn"] = bson.M{"$gte": pastMaxDaysOld, "$lte": pastMinDaysOld}
	case p.MaxAge > 0:
		match["createdOn"] = bson.M{"$gte": pastMaxDaysOld}
	case p.MinAge > 0:
		match["createdOn"] = bson.M{"$lte": pastMinDaysOld}
	}

	return match
}

// UserSort maps a sortBy value to a user sort specification. Unrecognized
// values fall back to full name ascending with creation time as tie-break.
func (p ListParams) UserSort() bson.D {
	switch p.SortBy {
	case "role":
		return bson.D{{Key: "role", Value: 1}, {Key: "fullName", Value: 1}, {Key: "createdOn", Value: 1}}
	case "newest":
		return bson.D{{Key: "createdOn", Value: -1}}
	case "oldest":
		return bson.D{{Key: "createdOn", Value: 1}}
	case "fullName":
		fallthrough
	default:
		return bson.D{{Key: "fullName", Value: 1}, {Key: "createdOn", Value: 1}}
	}
}

// CoasterSort maps a sortBy value to a coaster sort specification.
// Unrecognized values fall back to name ascending.
func (p ListParams) CoasterSort() bson.D {
	switch p.SortBy {
	case "openingYear", "manufacturer", "length", "height", "drop", "speed", "inversions", "gForce":
		return bson.D{{Key: p.SortBy, Value: 1}, {Key: "createdOn", Value: 1}}
	case "name":
		fallthrough
	default:
		return bson.D{{Key: "name", Value: 1}, {Key: "createdOn", Value: 1}}
	}
}

// SkipLimit computes the pagination window.
func (p ListParams) SkipLimit() (skip, limit int64) {
	return int64((p.PageNumber - 1) * p.PageSize), int64(p.PageSize)
}

// Pipeline assembles the four-stage aggregation both listings run.
func Pipeline(match bson.M, sort bson.D, skip, limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}
}
