// Package pipeline wires the domain operations into the two runnable stages:
// geocoding distinct locations into a lookup table, and enriching events
// from that table.
package pipeline

import (
	"github.com/couchcryptid/event-location-etl/internal/domain"
)

// TableStore reads and writes the tabular files both stages work with.
type TableStore interface {
	ReadEvents(path string) (domain.EventTable, error)
	WriteEvents(path string, table domain.EventTable) error
	ReadLookup(path string) (domain.Lookup, error)
	WriteLookup(path string, entries []domain.LookupEntry) error
}

// FeatureWriter persists aggregated point features.
type FeatureWriter interface {
	WriteFeatures(path string, features []domain.Feature) error
}
