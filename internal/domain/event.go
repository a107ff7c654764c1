package domain

import (
	"errors"
	"strconv"
)

// Column names shared by the events, lookup, and enriched tables.
const (
	ColumnLocation    = "location"
	ColumnLatitude    = "latitude"
	ColumnLongitude   = "longitude"
	ColumnDisplayName = "display_name"
)

// LookupHeader is the fixed header of the lookup table.
var LookupHeader = []string{ColumnLocation, ColumnLatitude, ColumnLongitude, ColumnDisplayName}

var (
	// ErrMissingColumn is returned when a table lacks a column the operation needs.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyTable is returned when a table has no header row at all.
	ErrEmptyTable = errors.New("table has no header row")
)

// EventTable is a CSV table held in memory. Each row has exactly len(Header)
// fields in header order.
type EventTable struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t EventTable) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// LookupEntry is one row of the lookup table.
type LookupEntry struct {
	Location    string
	Latitude    string
	Longitude   string
	DisplayName string
}

// Resolved reports whether the entry carries coordinates.
func (e LookupEntry) Resolved() bool {
	return e.Latitude != ""
}

// Record returns the entry as a CSV row in LookupHeader order.
func (e LookupEntry) Record() []string {
	return []string{e.Location, e.Latitude, e.Longitude, e.DisplayName}
}

// Lookup maps a location key to its lookup entry.
type Lookup map[string]LookupEntry

// NewLookup builds a Lookup from entries. Later entries replace earlier ones
// with the same location.
func NewLookup(entries []LookupEntry) Lookup {
	l := make(Lookup, len(entries))
	for _, e := range entries {
		l[e.Location] = e
	}
	return l
}

// Feature is one mappable point: a location and how many events happened there.
type Feature struct {
	Location   string
	Lat        float64
	Lon        float64
	EventCount int
}

// formatCoordinate renders a coordinate with the shortest decimal
// representation that round-trips, e.g. -3.7 rather than -3.700000.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
