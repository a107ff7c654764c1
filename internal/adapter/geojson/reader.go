package geojson

import (
	"fmt"
	"os"

	"github.com/couchcryptid/event-location-etl/internal/domain"
	json "github.com/goccy/go-json"
	geom "github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
)

// ReadFeatures loads a feature collection previously written by WriteFeatures.
func ReadFeatures(path string) ([]domain.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	features, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return features, nil
}

// Decode parses a FeatureCollection of points carrying location and
// events_count properties.
func Decode(data []byte) ([]domain.Feature, error) {
	var fc geomjson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	features := make([]domain.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		point, ok := f.Geometry.(*geom.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry is %T, want point", i, f.Geometry)
		}
		location, ok := f.Properties[PropertyLocation].(string)
		if !ok {
			return nil, fmt.Errorf("feature %d: missing %q property", i, PropertyLocation)
		}
		count, ok := f.Properties[PropertyEventsCount].(float64)
		if !ok {
			return nil, fmt.Errorf("feature %d: missing %q property", i, PropertyEventsCount)
		}
		features = append(features, domain.Feature{
			Location:   location,
			Lat:        point.Y(),
			Lon:        point.X(),
			EventCount: int(count),
		})
	}
	return features, nil
}
