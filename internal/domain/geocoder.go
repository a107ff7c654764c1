package domain

import "context"

// GeocodingResult is the best match a geocoding provider returned for a query.
// Found is false when the provider answered but had no candidate.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Found       bool
}

// Resolver turns a free-text location into coordinates.
//
// A query with no match returns a zero result with Found=false and a nil
// error. Transport failures (bad status, timeout, malformed body) return an
// error. Implementations must not retry.
type Resolver interface {
	Resolve(ctx context.Context, location string) (GeocodingResult, error)
}
