// Command geocode resolves every distinct location in the events table
// through the geocoding service and writes the lookup table.
//
// Configuration comes from the environment; see internal/config.
//
//	EVENTS_FILE=data/event_details.csv LOOKUP_FILE=data/locations_coordinates.csv \
//	  go run ./cmd/geocode
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/event-location-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/event-location-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/event-location-etl/internal/adapter/nominatim"
	"github.com/couchcryptid/event-location-etl/internal/config"
	"github.com/couchcryptid/event-location-etl/internal/observability"
	"github.com/couchcryptid/event-location-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
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
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver := nominatim.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, metrics, logger)
	loop := pipeline.NewResolutionLoop(resolver, clockwork.NewRealClock(), cfg.RequestDelay, logger, metrics)

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, loop, logger)
		srv.Start()
		defer srv.Shutdown(cfg.ShutdownTimeout)
	}

	logger.Info("geocoding locations",
		"events", cfg.EventsFile,
		"lookup", cfg.LookupFile,
		"geocoder", cfg.GeocoderURL,
		"delay", cfg.RequestDelay,
	)

	stage := pipeline.NewGeocodeStage(csvfile.NewStore(), loop, logger, metrics)
	_, err := stage.Run(ctx, cfg.EventsFile, cfg.LookupFile)
	return err
}
