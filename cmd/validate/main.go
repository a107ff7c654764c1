// Command validate checks the outputs of the geocode and enrich stages
// against their inputs: row parity between the events and enriched tables,
// join correctness against the lookup table, lookup coverage of every
// distinct location, and agreement between the enriched table and the
// GeoJSON map.
//
// Paths come from the same environment variables the stages read:
//
//	EVENTS_FILE=data/event_details.csv go run ./cmd/validate
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/couchcryptid/event-location-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/event-location-etl/internal/adapter/geojson"
	"github.com/couchcryptid/event-location-etl/internal/config"
	"github.com/couchcryptid/event-location-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	fmt.Println("=== Event Location Integrity Validation ===")
	fmt.Println()

	store := csvfile.NewStore()

	events, err := store.ReadEvents(cfg.EventsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load events: %v\n", err)
		return 1
	}
	lookup, err := store.ReadLookup(cfg.LookupFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load lookup: %v\n", err)
		return 1
	}
	enriched, err := store.ReadEvents(cfg.EnrichedFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load enriched: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRowParity(events, enriched),
		validateJoin(enriched, lookup),
		validateLookupCoverage(events, lookup),
	}

	if cfg.GeoJSONEnabled {
		features, err := geojson.ReadFeatures(cfg.GeoJSONFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Printf("  Note: %s not found, skipping map checks\n", cfg.GeoJSONFile)
		case err != nil:
			fmt.Fprintf(os.Stderr, "FATAL: load map: %v\n", err)
			return 1
		default:
			phases = append(phases, validateMap(enriched, features))
		}
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d events, %d enriched; %d lookup entries\n",
		len(events.Rows), len(enriched.Rows), len(lookup))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateRowParity checks that enrichment kept every event row, in order,
// with its original fields untouched.
func validateRowParity(events, enriched domain.EventTable) *phase {
	p := &phase{name: "Phase 1: Events ↔ Enriched row parity"}

	if len(events.Rows) != len(enriched.Rows) {
		p.errorf("row count: events=%d enriched=%d", len(events.Rows), len(enriched.Rows))
	}

	for _, col := range []string{domain.ColumnLatitude, domain.ColumnLongitude} {
		if enriched.ColumnIndex(col) < 0 {
			p.errorf("enriched table has no %q column", col)
		}
	}

	for _, col := range events.Header {
		if col == domain.ColumnLatitude || col == domain.ColumnLongitude {
			continue
		}
		src, dst := events.ColumnIndex(col), enriched.ColumnIndex(col)
		if dst < 0 {
			p.errorf("enriched table dropped column %q", col)
			continue
		}
		if dst != src {
			p.errorf("column %q moved from position %d to %d", col, src, dst)
		}
		for i := range min(len(events.Rows), len(enriched.Rows)) {
			if events.Rows[i][src] != enriched.Rows[i][dst] {
				p.errorf("row %d: %s changed from %q to %q", i+1, col, events.Rows[i][src], enriched.Rows[i][dst])
			}
		}
	}
	return p
}

// validateJoin checks each enriched row's coordinates against the lookup
// entry for its exact location.
func validateJoin(enriched domain.EventTable, lookup domain.Lookup) *phase {
	p := &phase{name: "Phase 2: Enriched ↔ Lookup join"}

	locIdx := enriched.ColumnIndex(domain.ColumnLocation)
	latIdx := enriched.ColumnIndex(domain.ColumnLatitude)
	lonIdx := enriched.ColumnIndex(domain.ColumnLongitude)
	if locIdx < 0 || latIdx < 0 || lonIdx < 0 {
		p.errorf("enriched table needs location, latitude and longitude columns")
		return p
	}

	for i, row := range enriched.Rows {
		loc := row[locIdx]
		wantLat, wantLon := "", ""
		if e, ok := lookup[loc]; ok && e.Resolved() {
			wantLat, wantLon = e.Latitude, e.Longitude
		}
		if row[latIdx] != wantLat || row[lonIdx] != wantLon {
			p.errorf("row %d (%q): got (%q, %q), want (%q, %q)",
				i+1, loc, row[latIdx], row[lonIdx], wantLat, wantLon)
		}
	}
	return p
}

// validateLookupCoverage checks that every distinct location in the events
// table has a lookup row, resolved or not.
func validateLookupCoverage(events domain.EventTable, lookup domain.Lookup) *phase {
	p := &phase{name: "Phase 3: Lookup coverage"}

	locations, err := domain.ExtractLocations(events)
	if err != nil {
		p.errorf("extract locations: %v", err)
		return p
	}

	unresolved := 0
	for _, loc := range locations {
		e, ok := lookup[loc]
		switch {
		case !ok:
			p.errorf("location %q has no lookup row; rerun geocode", loc)
		case !e.Resolved():
			unresolved++
		}
	}
	if unresolved > 0 {
		fmt.Printf("  Note: %d of %d location(s) unresolved in lookup\n", unresolved, len(locations))
	}
	return p
}

// validateMap checks that the exported features match an aggregation of the
// enriched table.
func validateMap(enriched domain.EventTable, features []domain.Feature) *phase {
	p := &phase{name: "Phase 4: Enriched ↔ GeoJSON map"}

	want, err := domain.AggregateFeatures(enriched)
	if err != nil {
		p.errorf("aggregate enriched table: %v", err)
		return p
	}

	if len(want) != len(features) {
		p.errorf("feature count: enriched=%d map=%d", len(want), len(features))
	}

	for i := range min(len(want), len(features)) {
		w, g := want[i], features[i]
		if w.Location != g.Location {
			p.errorf("feature %d: location %q, want %q", i, g.Location, w.Location)
			continue
		}
		if w.EventCount != g.EventCount {
			p.errorf("%q: events_count=%d, want %d", w.Location, g.EventCount, w.EventCount)
		}
		if !floatEq(w.Lat, g.Lat) || !floatEq(w.Lon, g.Lon) {
			p.errorf("%q: point [%v, %v], want [%v, %v]", w.Location, g.Lon, g.Lat, w.Lon, w.Lat)
		}
	}

	total := 0
	for _, f := range features {
		if f.EventCount < 1 {
			p.errorf("%q: events_count=%d, must be at least 1", f.Location, f.EventCount)
		}
		total += f.EventCount
	}
	fmt.Printf("  Map: %d feature(s) covering %d event(s)\n", len(features), total)
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
