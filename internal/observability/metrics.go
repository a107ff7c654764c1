package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "event_geo"

// Metrics holds the Prometheus counters, histograms, and gauges for both stages.
type Metrics struct {
	StageRunning *prometheus.GaugeVec // labels: stage={geocode,enrich}

	// Geocode stage.
	LocationsTotal     prometheus.Gauge
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={found,not_found,error}
	GeocodeAPIDuration prometheus.Histogram

	// Enrich stage.
	EventsEnriched      prometheus.Counter
	EventsUnresolved    prometheus.Counter
	UnresolvedLocations prometheus.Gauge
	FeaturesWritten     prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		StageRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_running",
			Help:      "1 while the named stage is running, 0 otherwise.",
		}, []string{"stage"}),
		LocationsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locations_total",
			Help:      "Distinct locations extracted for geocoding in the current run.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EventsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_enriched_total",
			Help:      "Event rows written to the enriched table.",
		}),
		EventsUnresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_unresolved_total",
			Help:      "Event rows written without coordinates.",
		}),
		UnresolvedLocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unresolved_locations",
			Help:      "Distinct locations without coordinates in the last enrich run.",
		}),
		FeaturesWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "features_written",
			Help:      "Point features in the last GeoJSON export.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StageRunning,
		m.LocationsTotal,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.EventsEnriched,
		m.EventsUnresolved,
		m.UnresolvedLocations,
		m.FeaturesWritten,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
