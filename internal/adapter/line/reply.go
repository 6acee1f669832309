package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/observability"
)

const serviceReply = "line_reply"

// Client posts replies through the messaging API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a reply client for the API at baseURL.
func NewClient(baseURL, accessToken string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		metrics:     metrics,
		logger:      logger,
	}
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

// Reply sends messages in answer to the event identified by replyToken.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	payload, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: messages})
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/bot/message/reply", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(serviceReply).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceReply, "error").Inc()
		return fmt.Errorf("reply request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(serviceReply, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("reply API error", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("reply API error: status %d: %s", resp.StatusCode, body)
	}

	c.metrics.UpstreamRequests.WithLabelValues(serviceReply, "success").Inc()
	return nil
}
