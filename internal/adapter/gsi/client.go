package gsi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
)

const (
	serviceReverse = "reverse_geocode"
	serviceSearch  = "search"
)

// Client implements domain.ReverseGeocoder and domain.AddressSearcher using
// the GSI reverse geocoder and address search APIs.
type Client struct {
	httpClient *http.Client
	reverseURL string
	searchURL  string
	directory  *domain.MunicipalityDirectory
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a GSI client. Every request is bounded by timeout.
func NewClient(reverseURL, searchURL string, timeout time.Duration, directory *domain.MunicipalityDirectory, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		reverseURL: reverseURL,
		searchURL:  searchURL,
		directory:  directory,
		metrics:    metrics,
		logger:     logger,
	}
}

// ReverseGeocode resolves a coordinate to the prefecture and city names of its
// municipality. Non-200 responses, empty results and municipality codes
// missing from the directory are all reported as domain.ErrNotFound.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.Place, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
	}
	fullURL := c.reverseURL + "?" + params.Encode()

	var body reverseResponse
	status, err := c.getJSON(ctx, serviceReverse, fullURL, &body)
	if err != nil {
		if status != 0 {
			return domain.Place{}, fmt.Errorf("%w: reverse geocode status %d", domain.ErrNotFound, status)
		}
		return domain.Place{}, err
	}

	if body.Results == nil || body.Results.MuniCd == "" {
		c.metrics.UpstreamRequests.WithLabelValues(serviceReverse, "empty").Inc()
		return domain.Place{}, fmt.Errorf("%w: no municipality at %v,%v", domain.ErrNotFound, coord.Lat, coord.Lon)
	}

	rec, ok := c.directory.Lookup(body.Results.MuniCd)
	if !ok {
		c.logger.Warn("municipality code not in directory", "muni_cd", body.Results.MuniCd, "lat", coord.Lat, "lon", coord.Lon)
		return domain.Place{}, fmt.Errorf("%w: municipality code %q", domain.ErrNotFound, body.Results.MuniCd)
	}
	return domain.Place{Prefecture: rec.Prefecture, City: rec.City}, nil
}

// Search returns address candidates for query in the order the API lists them.
func (c *Client) Search(ctx context.Context, query string) ([]domain.GeoCandidate, error) {
	fullURL := c.searchURL + "?q=" + url.QueryEscape(query)

	var features []searchFeature
	if _, err := c.getJSON(ctx, serviceSearch, fullURL, &features); err != nil {
		return nil, err
	}

	candidates := make([]domain.GeoCandidate, 0, len(features))
	for i, f := range features {
		if len(f.Geometry.Coordinates) != 2 {
			return nil, fmt.Errorf("%w: search result %d has %d coordinates", domain.ErrUpstream, i, len(f.Geometry.Coordinates))
		}
		candidates = append(candidates, domain.GeoCandidate{
			Title: f.Properties.Title,
			Coordinate: domain.Coordinate{
				Lon: f.Geometry.Coordinates[0],
				Lat: f.Geometry.Coordinates[1],
			},
		})
	}
	if len(candidates) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(serviceSearch, "empty").Inc()
	}
	return candidates, nil
}

// getJSON issues a GET and decodes a 200 response into v. On a non-200
// response the status is returned alongside a domain.ErrUpstream error.
func (c *Client) getJSON(ctx context.Context, service, fullURL string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return 0, fmt.Errorf("%w: %s request: %w", domain.ErrUpstream, service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("gsi API error", "service", service, "url", fullURL, "status", resp.StatusCode, "body", string(body))
		return resp.StatusCode, fmt.Errorf("%w: gsi API error: status %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return 0, fmt.Errorf("%w: read %s response: %w", domain.ErrUpstream, service, err)
	}
	// The reverse geocoder answers points at sea with an empty body.
	if len(data) == 0 {
		return 0, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return 0, fmt.Errorf("%w: decode %s response: %w", domain.ErrUpstream, service, err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(service, "success").Inc()
	return 0, nil
}

// GSI API response types.

type reverseResponse struct {
	Results *reverseResult `json:"results"`
}

type reverseResult struct {
	MuniCd string `json:"muniCd"`
	Lv01Nm string `json:"lv01Nm"`
}

type searchFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Properties struct {
		AddressCode string `json:"addressCode"`
		Title       string `json:"title"`
	} `json:"properties"`
}
