package domain

import "time"

// InputKind distinguishes the two ways a user can ask for a forecast.
type InputKind string

const (
	InputCoordinate InputKind = "coordinate"
	InputText       InputKind = "text"
)

// ResolutionEvent summarizes one finished resolution for downstream consumers.
type ResolutionEvent struct {
	ID         string      `json:"id"`
	Input      InputKind   `json:"input"`
	Outcome    OutcomeKind `json:"outcome"`
	Stage      Stage       `json:"stage,omitempty"`
	ErrorKind  string      `json:"error_kind,omitempty"`
	AreaCode   AreaCode    `json:"area_code,omitempty"`
	Candidates int         `json:"candidates,omitempty"`
	DurationMS int64       `json:"duration_ms"`
	ResolvedAt time.Time   `json:"resolved_at"`
}

// NewResolutionEvent builds the event describing outcome o. ResolvedAt is
// taken from the package clock.
func NewResolutionEvent(id string, input InputKind, o Outcome, elapsed time.Duration) ResolutionEvent {
	ev := ResolutionEvent{
		ID:         id,
		Input:      input,
		Outcome:    o.Kind,
		Stage:      o.Stage(),
		AreaCode:   o.AreaCode,
		Candidates: len(o.Candidates),
		DurationMS: elapsed.Milliseconds(),
		ResolvedAt: clock.Now().UTC(),
	}
	if o.Err != nil {
		ev.ErrorKind = ErrorKind(o.Err)
	}
	return ev
}
