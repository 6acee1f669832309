package domain

import "fmt"

// MaxCandidates is the inclusive ceiling on candidates offered to the user for
// disambiguation. Six or more results are reported as too many.
const MaxCandidates = 5

// User-facing messages.
const (
	MessageUnavailable     = "天気予報が取得できませんでした(;><)"
	MessageNoMatch         = "該当する住所が見つかりませんでした。住所をもう少し詳しく入力してください。"
	MessageTooMany         = "候補が多すぎます。住所をもう少し詳しく入力してください。"
	MessageChooseCandidate = "候補が複数見つかりました。地名を選択してください。"
)

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind string

const (
	OutcomeForecast    OutcomeKind = "forecast"
	OutcomeNoMatch     OutcomeKind = "no_match"
	OutcomeTooMany     OutcomeKind = "too_many"
	OutcomeAmbiguous   OutcomeKind = "ambiguous"
	OutcomeUnavailable OutcomeKind = "unavailable"
)

// Outcome is the result of one resolution. Exactly one of the payload fields
// is meaningful, selected by Kind:
//
//	OutcomeForecast    Forecast (at least one entry)
//	OutcomeAmbiguous   Candidates (2..MaxCandidates)
//	OutcomeUnavailable Err (a *StageError)
type Outcome struct {
	Kind       OutcomeKind
	Forecast   Forecast
	Candidates []GeoCandidate
	Err        error

	// AreaCode is set whenever the area stage succeeded, for diagnostics.
	AreaCode AreaCode
}

// ForecastOutcome wraps a forecast ready for rendering.
func ForecastOutcome(f Forecast, code AreaCode) Outcome {
	return Outcome{Kind: OutcomeForecast, Forecast: f, AreaCode: code}
}

// NoMatchOutcome reports a search without results.
func NoMatchOutcome() Outcome { return Outcome{Kind: OutcomeNoMatch} }

// TooManyOutcome reports a search above the ambiguity ceiling.
func TooManyOutcome() Outcome { return Outcome{Kind: OutcomeTooMany} }

// AmbiguousOutcome offers candidates for the user to choose from.
func AmbiguousOutcome(candidates []GeoCandidate) Outcome {
	return Outcome{Kind: OutcomeAmbiguous, Candidates: candidates}
}

// UnavailableOutcome records a failure at stage.
func UnavailableOutcome(stage Stage, err error) Outcome {
	return Outcome{Kind: OutcomeUnavailable, Err: &StageError{Stage: stage, Err: err}}
}

// Stage returns the failing stage of an unavailable outcome, or "".
func (o Outcome) Stage() Stage {
	if se, ok := o.Err.(*StageError); ok {
		return se.Stage
	}
	return ""
}

// Message renders the user-visible text for the outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeForecast:
		return FormatForecast(o.Forecast)
	case OutcomeNoMatch:
		return MessageNoMatch
	case OutcomeTooMany:
		return MessageTooMany
	case OutcomeAmbiguous:
		return MessageChooseCandidate
	default:
		return MessageUnavailable
	}
}

// FormatForecast renders the title, the first day's date and summary, and the
// headline, separated by CRLF. Only the first entry is shown. Callers must
// ensure f has at least one entry.
func FormatForecast(f Forecast) string {
	first := f.Entries[0]
	return fmt.Sprintf("%s\r\n%s : %s\r\n%s", f.Title, first.Date, first.Summary, f.Headline)
}
