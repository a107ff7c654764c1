// Command enrich joins the lookup table onto the events table, writes the
// enriched table, and optionally exports a GeoJSON map of event counts.
//
// Configuration comes from the environment; see internal/config.
//
//	GEOJSON_ENABLED=false go run ./cmd/enrich
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/couchcryptid/event-location-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/event-location-etl/internal/adapter/geojson"
	"github.com/couchcryptid/event-location-etl/internal/config"
	"github.com/couchcryptid/event-location-etl/internal/observability"
	"github.com/couchcryptid/event-location-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		observability.LogRunError(logger, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	paths := pipeline.EnrichPaths{
		Events:   cfg.EventsFile,
		Lookup:   cfg.LookupFile,
		Enriched: cfg.EnrichedFile,
	}

	var features pipeline.FeatureWriter
	if cfg.GeoJSONEnabled {
		features = geojson.NewWriter()
		paths.GeoJSON = cfg.GeoJSONFile
	}

	stage := pipeline.NewEnrichStage(csvfile.NewStore(), features, logger, metrics)
	report, err := stage.Run(context.Background(), paths)
	if err != nil {
		return err
	}

	logger.Info("enrichment complete",
		"events", report.Events,
		"resolved", report.Resolved,
		"unresolved_locations", len(report.Unresolved),
		"features", report.Features,
	)
	return nil
}
