package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all settings for both stages, populated from environment variables.
type Config struct {
	EventsFile     string
	LookupFile     string
	EnrichedFile   string
	GeoJSONFile    string
	GeoJSONEnabled bool

	// Geocoding service.
	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	RequestDelay      time.Duration

	HTTPAddr        string // empty disables the metrics/health server
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	requestDelay, err := parseRequestDelay()
	if err != nil {
		return nil, err
	}

	geoJSONEnabled := true
	if v := os.Getenv("GEOJSON_ENABLED"); v != "" {
		geoJSONEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid GEOJSON_ENABLED: must be true or false")
		}
	}

	cfg := &Config{
		EventsFile:     sharedcfg.EnvOrDefault("EVENTS_FILE", "data/event_details.csv"),
		LookupFile:     sharedcfg.EnvOrDefault("LOOKUP_FILE", "data/locations_coordinates.csv"),
		EnrichedFile:   sharedcfg.EnvOrDefault("ENRICHED_FILE", "data/event_details_with_coords.csv"),
		GeoJSONFile:    sharedcfg.EnvOrDefault("GEOJSON_FILE", "data/events_map.geojson"),
		GeoJSONEnabled: geoJSONEnabled,

		GeocoderURL:       sharedcfg.EnvOrDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderUserAgent: sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", "event-location-etl/1.0"),
		GeocoderTimeout:   geocoderTimeout,
		RequestDelay:      requestDelay,

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
	}

	if u, err := url.Parse(cfg.GeocoderURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid GEOCODER_URL %q", cfg.GeocoderURL)
	}
	if strings.TrimSpace(cfg.GeocoderUserAgent) == "" {
		return nil, errors.New("GEOCODER_USER_AGENT is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

// parseRequestDelay reads REQUEST_DELAY. Zero is allowed for local stubs;
// the public Nominatim policy asks for at most one request per second.
func parseRequestDelay() (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault("REQUEST_DELAY", "1s"))
	if err != nil || d < 0 {
		return 0, errors.New("invalid REQUEST_DELAY: must be a non-negative duration")
	}
	return d, nil
}
