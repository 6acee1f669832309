package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Publisher receives a summary of every finished resolution.
type Publisher interface {
	Publish(ctx context.Context, event domain.ResolutionEvent) error
}

// Pipeline resolves coordinates and free text to a forecast outcome. It holds
// no per-request state and is safe for concurrent use.
type Pipeline struct {
	searcher  domain.AddressSearcher
	geocoder  domain.ReverseGeocoder
	areas     domain.AreaResolver
	forecasts domain.ForecastFetcher
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline from its stages. A nil publisher disables outcome events.
func New(s domain.AddressSearcher, g domain.ReverseGeocoder, a domain.AreaResolver, f domain.ForecastFetcher, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		searcher:  s,
		geocoder:  g,
		areas:     a,
		forecasts: f,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
	}
}

// ResolveCoordinate runs reverse geocoding, area resolution and forecast
// retrieval for c. Any stage failure yields an unavailable outcome.
func (p *Pipeline) ResolveCoordinate(ctx context.Context, c domain.Coordinate) domain.Outcome {
	input := strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
	return p.resolve(ctx, domain.InputCoordinate, input, func(ctx context.Context) domain.Outcome {
		return p.coordinateFlow(ctx, c)
	})
}

// ResolveText searches for text and applies the ambiguity policy: no results
// is a no-match, a single result continues with its coordinate, up to
// domain.MaxCandidates results are offered for selection, and anything above
// that is reported as too many.
func (p *Pipeline) ResolveText(ctx context.Context, text string) domain.Outcome {
	query := strings.TrimSpace(text)
	return p.resolve(ctx, domain.InputText, query, func(ctx context.Context) domain.Outcome {
		return p.textFlow(ctx, query)
	})
}

func (p *Pipeline) textFlow(ctx context.Context, query string) domain.Outcome {
	if query == "" {
		return domain.UnavailableOutcome(domain.StageInput, fmt.Errorf("%w: empty text", domain.ErrInvalidInput))
	}

	candidates, err := runStage(ctx, domain.StageSearch, func(ctx context.Context) ([]domain.GeoCandidate, error) {
		return p.searcher.Search(ctx, query)
	})
	if err != nil {
		return domain.UnavailableOutcome(domain.StageSearch, err)
	}

	switch n := len(candidates); {
	case n == 0:
		return domain.NoMatchOutcome()
	case n == 1:
		return p.coordinateFlow(ctx, candidates[0].Coordinate)
	case n <= domain.MaxCandidates:
		return domain.AmbiguousOutcome(candidates)
	default:
		return domain.TooManyOutcome()
	}
}

func (p *Pipeline) coordinateFlow(ctx context.Context, c domain.Coordinate) domain.Outcome {
	if err := c.Validate(); err != nil {
		return domain.UnavailableOutcome(domain.StageInput, err)
	}

	place, err := runStage(ctx, domain.StageReverseGeocode, func(ctx context.Context) (domain.Place, error) {
		return p.geocoder.ReverseGeocode(ctx, c)
	})
	if err != nil {
		return domain.UnavailableOutcome(domain.StageReverseGeocode, err)
	}

	code, err := runStage(ctx, domain.StageResolveArea, func(ctx context.Context) (domain.AreaCode, error) {
		return p.areas.ResolveAreaCode(ctx, place.Prefecture, place.City)
	})
	if err != nil {
		return domain.UnavailableOutcome(domain.StageResolveArea, err)
	}

	forecast, err := runStage(ctx, domain.StageFetchForecast, func(ctx context.Context) (domain.Forecast, error) {
		return p.forecasts.FetchForecast(ctx, code)
	})
	if err != nil {
		o := domain.UnavailableOutcome(domain.StageFetchForecast, err)
		o.AreaCode = code
		return o
	}

	if len(forecast.Entries) == 0 {
		o := domain.UnavailableOutcome(domain.StageFormat, fmt.Errorf("%w: forecast for area %s has no entries", domain.ErrNotFound, code))
		o.AreaCode = code
		return o
	}
	return domain.ForecastOutcome(forecast, code)
}

// resolve wraps one resolution with tracing, panic recovery, logging, metrics
// and outcome publishing.
func (p *Pipeline) resolve(ctx context.Context, kind domain.InputKind, input string, flow func(context.Context) domain.Outcome) (outcome domain.Outcome) {
	id := uuid.NewString()
	start := time.Now()

	ctx, span := observability.StartSpan(ctx, "pipeline.resolve",
		attribute.String("request.id", id),
		attribute.String("input.kind", string(kind)),
	)

	defer func() {
		if r := recover(); r != nil {
			outcome = domain.UnavailableOutcome(domain.StageInternal, fmt.Errorf("panic: %v", r))
		}
		elapsed := time.Since(start)

		span.SetAttributes(attribute.String("outcome", string(outcome.Kind)))
		observability.EndSpan(span, outcome.Err)

		p.record(kind, outcome, elapsed)
		p.log(id, kind, input, outcome, elapsed)
		p.publish(ctx, domain.NewResolutionEvent(id, kind, outcome, elapsed))
	}()

	return flow(ctx)
}

func (p *Pipeline) record(kind domain.InputKind, o domain.Outcome, elapsed time.Duration) {
	p.metrics.Resolutions.WithLabelValues(string(kind), string(o.Kind)).Inc()
	p.metrics.ResolutionDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	if o.Err != nil {
		p.metrics.ResolutionFailures.WithLabelValues(string(o.Stage()), domain.ErrorKind(o.Err)).Inc()
	}
}

func (p *Pipeline) log(id string, kind domain.InputKind, input string, o domain.Outcome, elapsed time.Duration) {
	if o.Err != nil {
		p.logger.Warn("resolution failed",
			"request_id", id,
			"input_kind", kind,
			"input", input,
			"stage", o.Stage(),
			"error_kind", domain.ErrorKind(o.Err),
			"error", o.Err,
			"duration", elapsed,
		)
		return
	}
	p.logger.Info("resolution completed",
		"request_id", id,
		"input_kind", kind,
		"outcome", o.Kind,
		"area_code", o.AreaCode,
		"candidates", len(o.Candidates),
		"duration", elapsed,
	)
}

func (p *Pipeline) publish(ctx context.Context, event domain.ResolutionEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		p.logger.Warn("publish resolution event failed", "request_id", event.ID, "error", err)
	}
}

// runStage runs fn inside a span named after stage. The span is ended even
// when fn panics; the panic is then re-raised for resolve to recover.
func runStage[T any](ctx context.Context, stage domain.Stage, fn func(context.Context) (T, error)) (v T, err error) {
	ctx, span := observability.StartSpan(ctx, "pipeline."+string(stage))
	defer func() {
		if r := recover(); r != nil {
			observability.EndSpan(span, fmt.Errorf("panic: %v", r))
			panic(r)
		}
		observability.EndSpan(span, err)
	}()
	return fn(ctx)
}
