package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/event-location-etl/internal/domain"
	"github.com/couchcryptid/event-location-etl/internal/observability"
)

// GeocodeStage builds the lookup table from an events table.
type GeocodeStage struct {
	store   TableStore
	loop    *ResolutionLoop
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewGeocodeStage creates a GeocodeStage.
func NewGeocodeStage(store TableStore, loop *ResolutionLoop, logger *slog.Logger, metrics *observability.Metrics) *GeocodeStage {
	return &GeocodeStage{
		store:   store,
		loop:    loop,
		logger:  logger,
		metrics: metrics,
	}
}

// Run extracts distinct locations from eventsPath, resolves each, and writes
// the lookup table to lookupPath, replacing any previous table. Nothing is
// written if the run is cancelled.
func (s *GeocodeStage) Run(ctx context.Context, eventsPath, lookupPath string) (Summary, error) {
	s.metrics.StageRunning.WithLabelValues("geocode").Set(1)
	defer s.metrics.StageRunning.WithLabelValues("geocode").Set(0)

	events, err := s.store.ReadEvents(eventsPath)
	if err != nil {
		return Summary{}, err
	}

	locations, err := domain.ExtractLocations(events)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", eventsPath, err)
	}
	s.logger.Info("unique locations extracted", "count", len(locations), "events", len(events.Rows))

	entries, summary, err := s.loop.ResolveAll(ctx, locations)
	if err != nil {
		return summary, fmt.Errorf("resolve locations: %w", err)
	}

	if err := s.store.WriteLookup(lookupPath, entries); err != nil {
		return summary, err
	}

	s.logger.Info("lookup table written",
		"path", lookupPath,
		"total", summary.Total,
		"resolved", summary.Resolved,
		"failed", summary.Failed(),
		"not_found", summary.NotFound,
		"errors", summary.Errors,
	)
	if summary.Failed() > 0 {
		s.logger.Warn("some locations were not resolved; fill in their coordinates in the lookup file by hand",
			"failed", summary.Failed(),
			"path", lookupPath,
		)
	}

	return summary, nil
}
