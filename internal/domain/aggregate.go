package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AggregateFeatures groups resolved rows of an enriched table by location and
// counts events per location. Rows with a blank latitude or longitude are
// skipped. Coordinates come from the first row seen for each location and
// features are returned in first-seen order.
func AggregateFeatures(enriched EventTable) ([]Feature, error) {
	locIdx := enriched.ColumnIndex(ColumnLocation)
	latIdx := enriched.ColumnIndex(ColumnLatitude)
	lonIdx := enriched.ColumnIndex(ColumnLongitude)
	for _, c := range []struct {
		name string
		idx  int
	}{{ColumnLocation, locIdx}, {ColumnLatitude, latIdx}, {ColumnLongitude, lonIdx}} {
		if c.idx < 0 {
			return nil, fmt.Errorf("aggregate features: %w: %q", ErrMissingColumn, c.name)
		}
	}

	var features []Feature
	byLocation := make(map[string]int)

	for i, row := range enriched.Rows {
		lat, lon := field(row, latIdx), field(row, lonIdx)
		if lat == "" || lon == "" {
			continue
		}
		location := field(row, locIdx)

		if pos, ok := byLocation[location]; ok {
			features[pos].EventCount++
			continue
		}

		latV, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
		if err != nil {
			return nil, fmt.Errorf("aggregate features: row %d: parse latitude %q: %w", i+1, lat, err)
		}
		lonV, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
		if err != nil {
			return nil, fmt.Errorf("aggregate features: row %d: parse longitude %q: %w", i+1, lon, err)
		}

		byLocation[location] = len(features)
		features = append(features, Feature{
			Location:   location,
			Lat:        latV,
			Lon:        lonV,
			EventCount: 1,
		})
	}

	return features, nil
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
