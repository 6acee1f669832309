package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/couchcryptid/forecast-bot/internal/domain"
)

// FetchForecast retrieves the forecast for an area. Non-200 responses and
// payloads carrying an "error" field (unknown area code) are reported as
// domain.ErrNotFound. An empty forecasts list is returned as-is.
func (c *Client) FetchForecast(ctx context.Context, code domain.AreaCode) (domain.Forecast, error) {
	fullURL := c.forecastURL + "?" + url.Values{"city": {string(code)}}.Encode()

	data, err := c.get(ctx, serviceForecast, fullURL)
	if err != nil {
		var ue *upstreamError
		if errors.As(err, &ue) {
			return domain.Forecast{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		return domain.Forecast{}, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceForecast, "error").Inc()
		return domain.Forecast{}, fmt.Errorf("%w: decode forecast: %w", domain.ErrUpstream, err)
	}
	if resp.Error != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceForecast, "empty").Inc()
		c.logger.Warn("forecast API rejected area code", "area_code", code, "error", *resp.Error)
		return domain.Forecast{}, fmt.Errorf("%w: area code %q: %s", domain.ErrNotFound, code, *resp.Error)
	}
	c.metrics.UpstreamRequests.WithLabelValues(serviceForecast, "success").Inc()

	f := domain.Forecast{
		Title:    resp.Title,
		Headline: resp.Description.HeadlineText,
		Entries:  make([]domain.ForecastEntry, 0, len(resp.Forecasts)),
	}
	for _, day := range resp.Forecasts {
		f.Entries = append(f.Entries, domain.ForecastEntry{Date: day.Date, Summary: day.Telop})
	}
	return f, nil
}

// Forecast API response types.

type forecastResponse struct {
	Title       string `json:"title"`
	Description struct {
		HeadlineText string `json:"headlineText"`
		BodyText     string `json:"bodyText"`
	} `json:"description"`
	Forecasts []forecastDay `json:"forecasts"`
	Error     *string       `json:"error"`
}

type forecastDay struct {
	Date      string `json:"date"`
	DateLabel string `json:"dateLabel"`
	Telop     string `json:"telop"`
}
