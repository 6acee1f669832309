package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/forecast-bot/internal/domain"
)

const maxResolveBody = 64 << 10

type resolveRequest struct {
	Text      *string  `json:"text"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type resolveResponse struct {
	Outcome    domain.OutcomeKind    `json:"outcome"`
	Message    string                `json:"message"`
	AreaCode   domain.AreaCode       `json:"area_code,omitempty"`
	Candidates []domain.GeoCandidate `json:"candidates,omitempty"`
}

// handleResolve accepts either free text or a coordinate pair and answers
// with the outcome kind and the message a chat user would see. Resolution
// failures are still 200 responses; only malformed requests get a 400.
func handleResolve(resolver Resolver, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResolveBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			logger.Debug("rejecting resolve request", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		coordinate, err := req.coordinate()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		var o domain.Outcome
		if coordinate != nil {
			o = resolver.ResolveCoordinate(r.Context(), *coordinate)
		} else {
			o = resolver.ResolveText(r.Context(), *req.Text)
		}

		writeJSON(w, http.StatusOK, resolveResponse{
			Outcome:    o.Kind,
			Message:    o.Message(),
			AreaCode:   o.AreaCode,
			Candidates: o.Candidates,
		})
	}
}

// coordinate returns the requested coordinate, or nil for a text request.
func (r resolveRequest) coordinate() (*domain.Coordinate, error) {
	hasLat, hasLon := r.Latitude != nil, r.Longitude != nil
	switch {
	case hasLat != hasLon:
		return nil, errors.New("latitude and longitude must be given together")
	case hasLat && r.Text != nil:
		return nil, errors.New("give either text or a coordinate, not both")
	case hasLat:
		return &domain.Coordinate{Lat: *r.Latitude, Lon: *r.Longitude}, nil
	case r.Text == nil:
		return nil, errors.New("text or latitude and longitude is required")
	default:
		return nil, nil
	}
}
