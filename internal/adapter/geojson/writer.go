// Package geojson exports point features as a GeoJSON FeatureCollection.
package geojson

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/event-location-etl/internal/domain"
	json "github.com/goccy/go-json"
	geom "github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
)

// Property keys on each exported feature.
const (
	PropertyLocation    = "location"
	PropertyEventsCount = "events_count"
)

// Writer writes feature collections to disk.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFeatures encodes features and writes them to path, replacing any existing file.
func (w *Writer) WriteFeatures(path string, features []domain.Feature) error {
	data, err := Encode(features)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Encode renders features as an indented GeoJSON FeatureCollection. Point
// coordinates are [longitude, latitude].
func Encode(features []domain.Feature) ([]byte, error) {
	fc := &geomjson.FeatureCollection{
		Features: make([]*geomjson.Feature, 0, len(features)),
	}
	for _, f := range features {
		fc.Features = append(fc.Features, &geomjson.Feature{
			Geometry: geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{f.Lon, f.Lat}),
			Properties: map[string]any{
				PropertyLocation:    f.Location,
				PropertyEventsCount: f.EventCount,
			},
		})
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode feature collection: %w", err)
	}
	return append(data, '\n'), nil
}
