package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
)

const (
	serviceCatalog  = "catalog"
	serviceForecast = "forecast"
)

// Client talks to a livedoor-weather compatible forecast API: the
// primary_area.xml catalog and the forecast endpoint.
type Client struct {
	httpClient  *http.Client
	catalogURL  string
	forecastURL string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a weather API client. Every request is bounded by timeout.
func NewClient(catalogURL, forecastURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		catalogURL:  catalogURL,
		forecastURL: forecastURL,
		metrics:     metrics,
		logger:      logger,
	}
}

// upstreamError is returned for non-200 responses.
type upstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("weather API error: %s status %d: %s", e.Service, e.Status, e.Body)
}

func (e *upstreamError) Unwrap() error { return domain.ErrUpstream }

func (c *Client) get(ctx context.Context, service, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return nil, fmt.Errorf("%w: %s request: %w", domain.ErrUpstream, service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("weather API error", "service", service, "url", fullURL, "status", resp.StatusCode)
		return nil, &upstreamError{Service: service, Status: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return nil, fmt.Errorf("%w: read %s response: %w", domain.ErrUpstream, service, err)
	}
	return data, nil
}
