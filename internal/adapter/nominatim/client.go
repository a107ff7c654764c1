package nominatim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/event-location-etl/internal/domain"
	"github.com/couchcryptid/event-location-etl/internal/observability"
	json "github.com/goccy/go-json"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim search endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// Client implements domain.Resolver using the Nominatim search API.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. userAgent identifies the application
// as the Nominatim usage policy requires.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve looks up a free-text location and returns the first candidate.
func (c *Client) Resolve(ctx context.Context, location string) (domain.GeocodingResult, error) {
	fullURL, err := c.searchURL(location)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodingResult{}, err
	}

	start := time.Now()
	result, err := c.doRequest(ctx, fullURL, location)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case !result.Found:
		c.metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("found").Inc()
	}
	return result, err
}

// searchURL adds the search parameters to the base URL, keeping any query
// parameters it already carries (such as Nominatim's email=).
func (c *Client) searchURL(location string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	params := u.Query()
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, location string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		return domain.GeocodingResult{}, nil
	}

	p := places[0]
	lat, err := strconv.ParseFloat(string(p.Lat), 64)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(string(p.Lon), 64)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}

	name := p.DisplayName
	if name == "" {
		name = location
	}
	c.logger.Debug("nominatim match", "location", location, "display_name", name)

	return domain.GeocodingResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: name,
		Found:       true,
	}, nil
}

// Nominatim API response types.

type place struct {
	Lat         coordinate `json:"lat"`
	Lon         coordinate `json:"lon"`
	DisplayName string     `json:"display_name"`
}

// coordinate accepts both the quoted decimal strings Nominatim sends
// ("-3.7304512") and bare JSON numbers.
type coordinate string

func (c *coordinate) UnmarshalJSON(b []byte) error {
	*c = coordinate(strings.Trim(string(b), `"`))
	return nil
}
