package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/event-location-etl/internal/domain"
	"github.com/couchcryptid/event-location-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Summary counts the outcomes of one resolution run.
type Summary struct {
	Total    int
	Resolved int
	NotFound int
	Errors   int
}

// Failed is the number of locations left without coordinates.
func (s Summary) Failed() int {
	return s.NotFound + s.Errors
}

// ResolutionLoop geocodes locations one at a time, pausing between requests.
type ResolutionLoop struct {
	resolver domain.Resolver
	clock    clockwork.Clock
	delay    time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	started  atomic.Bool
}

// NewResolutionLoop creates a loop that waits delay between consecutive
// resolver calls. A nil clock uses the real clock.
func NewResolutionLoop(resolver domain.Resolver, clock clockwork.Clock, delay time.Duration, logger *slog.Logger, metrics *observability.Metrics) *ResolutionLoop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ResolutionLoop{
		resolver: resolver,
		clock:    clock,
		delay:    delay,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once the loop has started resolving.
func (l *ResolutionLoop) CheckReadiness(_ context.Context) error {
	if !l.started.Load() {
		return errors.New("resolution loop has not started yet")
	}
	return nil
}

// ResolveAll calls the resolver exactly once per location, in order, and
// returns one lookup entry per location. Failures and misses produce an
// unresolved entry and never stop the loop. The only error returned is the
// context's, when it is cancelled between locations or during a request.
func (l *ResolutionLoop) ResolveAll(ctx context.Context, locations []string) ([]domain.LookupEntry, Summary, error) {
	l.started.Store(true)
	l.metrics.LocationsTotal.Set(float64(len(locations)))

	summary := Summary{Total: len(locations)}
	entries := make([]domain.LookupEntry, 0, len(locations))

	for i, location := range locations {
		if err := ctx.Err(); err != nil {
			return entries, summary, err
		}

		entry, outcome, err := l.resolveOne(ctx, location)
		if err != nil && ctx.Err() != nil {
			// Interrupted mid-request: the location was never answered.
			return entries, summary, ctx.Err()
		}
		entries = append(entries, entry)

		switch outcome {
		case outcomeFound:
			summary.Resolved++
			l.logger.Info("location resolved",
				"index", i+1,
				"total", summary.Total,
				"location", location,
				"lat", entry.Latitude,
				"lon", entry.Longitude,
			)
		case outcomeNotFound:
			summary.NotFound++
			l.logger.Info("location not found",
				"index", i+1,
				"total", summary.Total,
				"location", location,
			)
		case outcomeError:
			summary.Errors++
			l.logger.Warn("geocoding failed",
				"index", i+1,
				"total", summary.Total,
				"location", location,
				"error", err,
			)
		}

		if i < len(locations)-1 {
			if err := l.wait(ctx); err != nil {
				return entries, summary, err
			}
		}
	}

	return entries, summary, nil
}

const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

func (l *ResolutionLoop) resolveOne(ctx context.Context, location string) (domain.LookupEntry, string, error) {
	result, err := l.resolver.Resolve(ctx, location)
	if err != nil {
		return domain.UnresolvedEntry(location), outcomeError, err
	}
	if !result.Found {
		return domain.UnresolvedEntry(location), outcomeNotFound, nil
	}
	return domain.NewLookupEntry(location, result), outcomeFound, nil
}

// wait pauses for the configured delay, returning early if ctx is cancelled.
func (l *ResolutionLoop) wait(ctx context.Context) error {
	if l.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.clock.After(l.delay):
		return nil
	}
}
