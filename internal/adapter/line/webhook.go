package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/forecast-bot/internal/domain"
)

const (
	signatureHeader = "X-Line-Signature"
	maxWebhookBody  = 1 << 20
)

// Resolver runs a location-to-forecast resolution.
type Resolver interface {
	ResolveText(ctx context.Context, text string) domain.Outcome
	ResolveCoordinate(ctx context.Context, c domain.Coordinate) domain.Outcome
}

// Replier sends messages in answer to a webhook event.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []Message) error
}

// Handler is the webhook endpoint. It authenticates the request, resolves
// every text and location message event and replies with the outcome.
type Handler struct {
	secret   []byte
	resolver Resolver
	replier  Replier
	logger   *slog.Logger
}

// NewHandler creates a webhook handler that verifies signatures with channelSecret.
func NewHandler(channelSecret string, resolver Resolver, replier Replier, logger *slog.Logger) *Handler {
	return &Handler{
		secret:   []byte(channelSecret),
		resolver: resolver,
		replier:  replier,
		logger:   logger,
	}
}

type webhookRequest struct {
	Destination string  `json:"destination"`
	Events      []event `json:"events"`
}

type event struct {
	Type       string          `json:"type"`
	ReplyToken string          `json:"replyToken"`
	Message    *messageContent `json:"message"`
}

type messageContent struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	Title     string  `json:"title"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if !ValidSignature(h.secret, body, r.Header.Get(signatureHeader)) {
		h.logger.Warn("webhook signature mismatch", "remote_addr", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("webhook body is not valid JSON", "error", err)
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	for _, ev := range req.Events {
		h.handleEvent(r.Context(), ev)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleEvent(ctx context.Context, ev event) {
	if ev.Type != "message" || ev.Message == nil || ev.ReplyToken == "" {
		h.logger.Debug("ignoring webhook event", "type", ev.Type)
		return
	}

	var o domain.Outcome
	switch ev.Message.Type {
	case "text":
		o = h.resolver.ResolveText(ctx, ev.Message.Text)
	case "location":
		o = h.resolver.ResolveCoordinate(ctx, domain.Coordinate{Lat: ev.Message.Latitude, Lon: ev.Message.Longitude})
	default:
		h.logger.Debug("ignoring message type", "message_type", ev.Message.Type)
		return
	}

	if err := h.replier.Reply(ctx, ev.ReplyToken, ReplyMessages(o)); err != nil {
		h.logger.Error("reply failed", "message_id", ev.Message.ID, "outcome", o.Kind, "error", err)
	}
}

// ValidSignature reports whether signature is the base64 HMAC-SHA256 of body
// keyed with secret.
func ValidSignature(secret, body []byte, signature string) bool {
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
