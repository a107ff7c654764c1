// Package domain models event tables, location lookups, and map features.
//
// # Tables
//
// Events arrive as a flat CSV with a header row. The only column the pipeline
// relies on is "location"; every other column is carried through untouched and
// in its original order. Rows are kept as []string aligned to the header so
// that column order survives a read/write round trip exactly.
//
// # Location keys
//
// A location key is the free-text value of the "location" column. Keys are
// compared byte for byte. [ExtractLocations] trims surrounding whitespace when
// it builds the set of places to geocode; [EnrichEvents] does not, so an event
// whose location carries stray spaces will not match the trimmed lookup key and
// is reported as unresolved. A blank location is not a key: its row gets blank
// coordinates and is left out of the unresolved report.
//
// # Lookup table
//
// The lookup table has exactly the columns location, latitude, longitude, and
// display_name. Coordinates are stored as decimal strings; an empty latitude
// marks a place the geocoder could not resolve. Such rows are still written so
// that "known unresolvable" can be told apart from "never looked up".
//
// # Features
//
// [AggregateFeatures] collapses resolved events into one point per location
// with an event count. GeoJSON orders coordinates as [longitude, latitude];
// the encoder in the geojson adapter is responsible for that ordering.
package domain
