package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a stage completed but had no data for its input.
	ErrNotFound = errors.New("not found")

	// ErrUpstream covers transport, status and decode failures of an upstream call.
	ErrUpstream = errors.New("upstream failure")

	// ErrInvalidInput rejects malformed coordinates and empty text.
	ErrInvalidInput = errors.New("invalid input")
)

// Stage identifies one step of the resolution pipeline.
type Stage string

const (
	StageInput          Stage = "input"
	StageSearch         Stage = "search"
	StageReverseGeocode Stage = "reverse_geocode"
	StageResolveArea    Stage = "resolve_area"
	StageFetchForecast  Stage = "fetch_forecast"
	StageFormat         Stage = "format"

	// StageInternal marks a recovered panic rather than an upstream stage.
	StageInternal Stage = "internal"
)

// StageError records which pipeline stage failed and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ErrorKind classifies err for logs and metrics: "not_found", "invalid_input"
// or "upstream". Unclassified errors count as upstream failures.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "upstream"
	}
}
