package pipeline_test

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/event-location-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/event-location-etl/internal/adapter/geojson"
	"github.com/couchcryptid/event-location-etl/internal/domain"
	"github.com/couchcryptid/event-location-etl/internal/observability"
	"github.com/couchcryptid/event-location-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsCSV = "event,location,date\n" +
	"UFC Fight Night 1,Fortaleza,2024-01-01\n" +
	"UFC Fight Night 2,Fortaleza,2024-02-01\n" +
	"UFC Fight Night 3,Recife,2024-03-01\n"

type testPaths struct {
	pipeline.EnrichPaths
	dir string
}

func newPaths(t *testing.T) testPaths {
	t.Helper()
	dir := t.TempDir()
	return testPaths{
		dir: dir,
		EnrichPaths: pipeline.EnrichPaths{
			Events:   filepath.Join(dir, "event_details.csv"),
			Lookup:   filepath.Join(dir, "locations_coordinates.csv"),
			Enriched: filepath.Join(dir, "event_details_with_coords.csv"),
			GeoJSON:  filepath.Join(dir, "events_map.geojson"),
		},
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestEndToEnd_GeocodeThenEnrich(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, eventsCSV)
	metrics := observability.NewMetricsForTesting()
	store := csvfile.NewStore()
	clock := &countingClock{}

	loop := pipeline.NewResolutionLoop(fortalezaResolver(), clock, time.Second, discardLogger(), metrics)
	summary, err := pipeline.NewGeocodeStage(store, loop, discardLogger(), metrics).Run(context.Background(), p.Events, p.Lookup)
	require.NoError(t, err)

	assert.Equal(t, pipeline.Summary{Total: 2, Resolved: 1, NotFound: 1}, summary)
	assert.Len(t, clock.waits, 1)
	assert.Equal(t, "location,latitude,longitude,display_name\n"+
		"Fortaleza,-3.7,-38.5,\"Fortaleza, CE\"\n"+
		"Recife,,,\n", read(t, p.Lookup))

	report, err := pipeline.NewEnrichStage(store, geojson.NewWriter(), discardLogger(), metrics).Run(context.Background(), p.EnrichPaths)
	require.NoError(t, err)

	want := pipeline.EnrichReport{Events: 3, Resolved: 2, Unresolved: []string{"Recife"}, Features: 1}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "event,location,date,latitude,longitude\n"+
		"UFC Fight Night 1,Fortaleza,2024-01-01,-3.7,-38.5\n"+
		"UFC Fight Night 2,Fortaleza,2024-02-01,-3.7,-38.5\n"+
		"UFC Fight Night 3,Recife,2024-03-01,,\n", read(t, p.Enriched))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties struct {
				Location    string `json:"location"`
				EventsCount int    `json:"events_count"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(read(t, p.GeoJSON)), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Fortaleza", fc.Features[0].Properties.Location)
	assert.Equal(t, 2, fc.Features[0].Properties.EventsCount)
	assert.Equal(t, []float64{-38.5, -3.7}, fc.Features[0].Geometry.Coordinates)

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.EventsEnriched), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsUnresolved), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeaturesWritten), 0)
}

func TestGeocodeStage_OverwritesPreviousLookup(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, "location\nFortaleza\n")
	write(t, p.Lookup, "location,latitude,longitude,display_name\nStale,1,2,Stale\n")
	metrics := observability.NewMetricsForTesting()

	loop := pipeline.NewResolutionLoop(fortalezaResolver(), &countingClock{}, time.Second, discardLogger(), metrics)
	_, err := pipeline.NewGeocodeStage(csvfile.NewStore(), loop, discardLogger(), metrics).Run(context.Background(), p.Events, p.Lookup)
	require.NoError(t, err)

	assert.NotContains(t, read(t, p.Lookup), "Stale")
}

func TestGeocodeStage_MissingEventsFile(t *testing.T) {
	p := newPaths(t)
	metrics := observability.NewMetricsForTesting()
	resolver := &stubResolver{}

	loop := pipeline.NewResolutionLoop(resolver, &countingClock{}, time.Second, discardLogger(), metrics)
	_, err := pipeline.NewGeocodeStage(csvfile.NewStore(), loop, discardLogger(), metrics).Run(context.Background(), p.Events, p.Lookup)

	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), p.Events)
	assert.Zero(t, resolver.callCount())
	assert.NoFileExists(t, p.Lookup)
}

func TestGeocodeStage_MissingLocationColumn(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, "event,date\nUFC 1,2024-01-01\n")
	metrics := observability.NewMetricsForTesting()

	loop := pipeline.NewResolutionLoop(&stubResolver{}, &countingClock{}, time.Second, discardLogger(), metrics)
	_, err := pipeline.NewGeocodeStage(csvfile.NewStore(), loop, discardLogger(), metrics).Run(context.Background(), p.Events, p.Lookup)

	require.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestGeocodeStage_CancelledRunWritesNothing(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, eventsCSV)
	metrics := observability.NewMetricsForTesting()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := pipeline.NewResolutionLoop(fortalezaResolver(), &countingClock{}, time.Second, discardLogger(), metrics)
	_, err := pipeline.NewGeocodeStage(csvfile.NewStore(), loop, discardLogger(), metrics).Run(ctx, p.Events, p.Lookup)

	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, p.Lookup)
}

func TestGeocodeStage_CancelledDuringLastRequestWritesNothing(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, "location\nFortaleza\n")
	metrics := observability.NewMetricsForTesting()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resolver := &cancellingResolver{stubResolver: &stubResolver{}, cancelOn: "Fortaleza", cancel: cancel}

	loop := pipeline.NewResolutionLoop(resolver, &countingClock{}, time.Second, discardLogger(), metrics)
	_, err := pipeline.NewGeocodeStage(csvfile.NewStore(), loop, discardLogger(), metrics).Run(ctx, p.Events, p.Lookup)

	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, p.Lookup)
}

func TestEnrichStage_MissingLookup(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, eventsCSV)

	_, err := pipeline.NewEnrichStage(csvfile.NewStore(), geojson.NewWriter(), discardLogger(), observability.NewMetricsForTesting()).Run(context.Background(), p.EnrichPaths)

	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), p.Lookup)
	assert.NoFileExists(t, p.Enriched)
}

func TestEnrichStage_MissingEvents(t *testing.T) {
	p := newPaths(t)
	write(t, p.Lookup, "location,latitude,longitude,display_name\n")

	_, err := pipeline.NewEnrichStage(csvfile.NewStore(), geojson.NewWriter(), discardLogger(), observability.NewMetricsForTesting()).Run(context.Background(), p.EnrichPaths)

	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), p.Events)
}

func TestEnrichStage_EmptyEventsFile(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, "")
	write(t, p.Lookup, "location,latitude,longitude,display_name\n")

	_, err := pipeline.NewEnrichStage(csvfile.NewStore(), geojson.NewWriter(), discardLogger(), observability.NewMetricsForTesting()).Run(context.Background(), p.EnrichPaths)

	require.ErrorIs(t, err, domain.ErrEmptyTable)
	assert.NoFileExists(t, p.Enriched)
}

func TestEnrichStage_HeaderOnlyEvents(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, "event,location\n")
	write(t, p.Lookup, "location,latitude,longitude,display_name\nFortaleza,-3.7,-38.5,Fortaleza\n")

	report, err := pipeline.NewEnrichStage(csvfile.NewStore(), geojson.NewWriter(), discardLogger(), observability.NewMetricsForTesting()).Run(context.Background(), p.EnrichPaths)
	require.NoError(t, err)

	assert.Equal(t, "event,location,latitude,longitude\n", read(t, p.Enriched))
	assert.Zero(t, report.Events)
	assert.Zero(t, report.Features)
}

func TestEnrichStage_GeoJSONDisabled(t *testing.T) {
	p := newPaths(t)
	write(t, p.Events, eventsCSV)
	write(t, p.Lookup, "location,latitude,longitude,display_name\nFortaleza,-3.7,-38.5,Fortaleza\n")

	report, err := pipeline.NewEnrichStage(csvfile.NewStore(), nil, discardLogger(), observability.NewMetricsForTesting()).Run(context.Background(), p.EnrichPaths)
	require.NoError(t, err)

	assert.Zero(t, report.Features)
	assert.FileExists(t, p.Enriched)
	assert.NoFileExists(t, p.GeoJSON)
}
