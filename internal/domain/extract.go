package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ExtractLocations returns the distinct non-empty locations in the table,
// trimmed of surrounding whitespace and sorted so resolution order is stable
// across runs.
func ExtractLocations(table EventTable) ([]string, error) {
	idx := table.ColumnIndex(ColumnLocation)
	if idx < 0 {
		return nil, fmt.Errorf("extract locations: %w: %q", ErrMissingColumn, ColumnLocation)
	}

	seen := make(map[string]struct{})
	for _, row := range table.Rows {
		if idx >= len(row) {
			continue
		}
		loc := strings.TrimSpace(row[idx])
		if loc == "" {
			continue
		}
		seen[loc] = struct{}{}
	}

	locations := make([]string, 0, len(seen))
	for loc := range seen {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return locations, nil
}
