package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/event-location-etl/internal/domain"
	"github.com/couchcryptid/event-location-etl/internal/observability"
)

// EnrichPaths names the files an enrich run reads and writes.
// An empty GeoJSON path skips the feature export.
type EnrichPaths struct {
	Events   string
	Lookup   string
	Enriched string
	GeoJSON  string
}

// EnrichReport describes one enrich run.
type EnrichReport struct {
	Events     int
	Resolved   int
	Unresolved []string // distinct, sorted
	Features   int
}

// EnrichStage joins coordinates onto events and optionally exports features.
type EnrichStage struct {
	store    TableStore
	features FeatureWriter
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewEnrichStage creates an EnrichStage. A nil FeatureWriter disables the
// GeoJSON export regardless of EnrichPaths.GeoJSON.
func NewEnrichStage(store TableStore, features FeatureWriter, logger *slog.Logger, metrics *observability.Metrics) *EnrichStage {
	return &EnrichStage{
		store:    store,
		features: features,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run loads the lookup table and events, writes the enriched table, and,
// when enabled, aggregates the enriched rows into point features.
func (s *EnrichStage) Run(_ context.Context, paths EnrichPaths) (EnrichReport, error) {
	s.metrics.StageRunning.WithLabelValues("enrich").Set(1)
	defer s.metrics.StageRunning.WithLabelValues("enrich").Set(0)

	lookup, err := s.store.ReadLookup(paths.Lookup)
	if err != nil {
		return EnrichReport{}, err
	}
	s.logger.Info("lookup table loaded", "path", paths.Lookup, "locations", len(lookup))

	events, err := s.store.ReadEvents(paths.Events)
	if err != nil {
		return EnrichReport{}, err
	}

	enriched, unresolved, err := domain.EnrichEvents(events, lookup)
	if err != nil {
		return EnrichReport{}, fmt.Errorf("%s: %w", paths.Events, err)
	}

	if err := s.store.WriteEvents(paths.Enriched, enriched); err != nil {
		return EnrichReport{}, err
	}

	report := EnrichReport{
		Events:     len(enriched.Rows),
		Unresolved: unresolved,
	}
	latIdx := enriched.ColumnIndex(domain.ColumnLatitude)
	for _, row := range enriched.Rows {
		if row[latIdx] != "" {
			report.Resolved++
		}
	}

	s.metrics.EventsEnriched.Add(float64(report.Events))
	s.metrics.EventsUnresolved.Add(float64(report.Events - report.Resolved))
	s.metrics.UnresolvedLocations.Set(float64(len(unresolved)))
	s.logger.Info("enriched table written",
		"path", paths.Enriched,
		"events", report.Events,
		"resolved", report.Resolved,
	)
	for _, loc := range unresolved {
		s.logger.Warn("location without coordinates", "location", loc)
	}

	if s.features == nil || paths.GeoJSON == "" {
		return report, nil
	}

	features, err := domain.AggregateFeatures(enriched)
	if err != nil {
		return report, err
	}
	if err := s.features.WriteFeatures(paths.GeoJSON, features); err != nil {
		return report, err
	}
	report.Features = len(features)
	s.metrics.FeaturesWritten.Set(float64(len(features)))
	s.logger.Info("geojson written", "path", paths.GeoJSON, "features", report.Features)

	return report, nil
}
