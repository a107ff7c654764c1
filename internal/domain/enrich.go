package domain

import (
	"fmt"
	"sort"
	"strings"
)

// EnrichEvents left-joins events against the lookup by exact location key.
//
// Every input row appears once in the output, in input order, with latitude
// and longitude columns appended (or overwritten in place when the events
// table already has them). Rows whose location is missing from the lookup, or
// present without coordinates, get blank coordinates and their location is
// reported in the returned unresolved list, deduplicated and sorted. Blank
// locations are never geocoded, so their rows stay blank without a report.
func EnrichEvents(events EventTable, lookup Lookup) (EventTable, []string, error) {
	if len(events.Header) == 0 {
		return EventTable{}, nil, fmt.Errorf("enrich events: %w", ErrEmptyTable)
	}
	locIdx := events.ColumnIndex(ColumnLocation)
	if locIdx < 0 {
		return EventTable{}, nil, fmt.Errorf("enrich events: %w: %q", ErrMissingColumn, ColumnLocation)
	}

	header := append([]string(nil), events.Header...)
	latIdx := events.ColumnIndex(ColumnLatitude)
	if latIdx < 0 {
		latIdx = len(header)
		header = append(header, ColumnLatitude)
	}
	lonIdx := events.ColumnIndex(ColumnLongitude)
	if lonIdx < 0 {
		lonIdx = len(header)
		header = append(header, ColumnLongitude)
	}

	out := EventTable{Header: header, Rows: make([][]string, 0, len(events.Rows))}
	unresolved := make(map[string]struct{})

	for _, row := range events.Rows {
		enriched := make([]string, len(header))
		copy(enriched, row)

		var location string
		if locIdx < len(row) {
			location = row[locIdx]
		}

		if entry, ok := lookup[location]; ok && entry.Resolved() {
			enriched[latIdx] = entry.Latitude
			enriched[lonIdx] = entry.Longitude
		} else {
			enriched[latIdx] = ""
			enriched[lonIdx] = ""
			if strings.TrimSpace(location) != "" {
				unresolved[location] = struct{}{}
			}
		}
		out.Rows = append(out.Rows, enriched)
	}

	missing := make([]string, 0, len(unresolved))
	for loc := range unresolved {
		missing = append(missing, loc)
	}
	sort.Strings(missing)

	return out, missing, nil
}
