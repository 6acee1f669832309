package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/adapter/gsi"
	"github.com/couchcryptid/forecast-bot/internal/adapter/muni"
	"github.com/couchcryptid/forecast-bot/internal/adapter/weather"
	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
	"github.com/couchcryptid/forecast-bot/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCatalog = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:ldWeather="http://weather.livedoor.com/ns/rss/2.0">
<channel>
<ldWeather:source title="全国の天気予報">
<pref title="道北">
<city title="稚内" id="011000"/>
</pref>
<pref title="道央">
<city title="札幌" id="016010"/>
</pref>
<pref title="東京都">
<city title="東京" id="130010"/>
<city title="大島" id="130020"/>
</pref>
</ldWeather:source>
</channel>
</rss>`

var scenarioForecasts = map[string]string{
	"130010": `{"title":"東京都 東京 の天気","description":{"headlineText":"晴れています。"},"forecasts":[{"date":"2024-04-26","telop":"晴れ"}]}`,
	"016010": `{"title":"北海道 札幌 の天気","description":{"headlineText":"雪が降っています。"},"forecasts":[{"date":"2024-04-26","telop":"雪"}]}`,
}

// upstream fakes the GSI and weather APIs. Coordinates map to municipality
// codes by latitude; search answers by query.
type upstream struct {
	reverse map[string]string
	search  map[string]string
	delay   time.Duration
}

func (u *upstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/reverse", func(w http.ResponseWriter, r *http.Request) {
		u.sleep()
		code, ok := u.reverse[r.URL.Query().Get("lat")]
		if !ok {
			_, _ = io.WriteString(w, `{}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":{"muniCd":"`+code+`","lv01Nm":"-"}}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		u.sleep()
		body, ok := u.search[r.URL.Query().Get("q")]
		if !ok {
			body = `[]`
		}
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("/primary_area.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, scenarioCatalog)
	})
	mux.HandleFunc("/api/forecast", func(w http.ResponseWriter, r *http.Request) {
		u.sleep()
		body, ok := scenarioForecasts[r.URL.Query().Get("city")]
		if !ok {
			_, _ = io.WriteString(w, `{"error":"Invalid area code"}`)
			return
		}
		_, _ = io.WriteString(w, body)
	})
	return mux
}

func (u *upstream) sleep() {
	if u.delay > 0 {
		time.Sleep(u.delay)
	}
}

func newScenarioPipeline(t *testing.T, u *upstream, timeout time.Duration) *pipeline.Pipeline {
	t.Helper()
	srv := httptest.NewServer(u.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	directory, err := muni.Load("")
	require.NoError(t, err)

	geo := gsi.NewClient(srv.URL+"/reverse", srv.URL+"/search", timeout, directory, metrics, logger)
	wc := weather.NewClient(srv.URL+"/primary_area.xml", srv.URL+"/api/forecast", timeout, metrics, logger)
	catalog := weather.NewCachedCatalog(wc, time.Hour, clockwork.NewFakeClock(), metrics, logger)

	return pipeline.New(
		geo,
		gsi.NewCachedReverseGeocoder(geo, 16, metrics),
		weather.NewAreaResolver(catalog, logger),
		wc,
		nil,
		logger,
		metrics,
	)
}

func TestScenario_CentralTokyoCoordinate(t *testing.T) {
	u := &upstream{reverse: map[string]string{"35.68": "13101"}}
	p := newScenarioPipeline(t, u, 2*time.Second)

	o := p.ResolveCoordinate(context.Background(), domain.Coordinate{Lat: 35.68, Lon: 139.76})

	require.Equal(t, domain.OutcomeForecast, o.Kind, "err: %v", o.Err)
	assert.Equal(t, domain.AreaCode("130010"), o.AreaCode)
	assert.Equal(t, "東京都 東京 の天気\r\n2024-04-26 : 晴れ\r\n晴れています。", o.Message())

	again := p.ResolveCoordinate(context.Background(), domain.Coordinate{Lat: 35.68, Lon: 139.76})
	assert.Equal(t, o.Message(), again.Message())
}

func TestScenario_HokkaidoCityMatchesRegion(t *testing.T) {
	u := &upstream{reverse: map[string]string{"43.06": "1101"}}
	p := newScenarioPipeline(t, u, 2*time.Second)

	o := p.ResolveCoordinate(context.Background(), domain.Coordinate{Lat: 43.06, Lon: 141.35})

	require.Equal(t, domain.OutcomeForecast, o.Kind, "err: %v", o.Err)
	assert.Equal(t, domain.AreaCode("016010"), o.AreaCode)
}

func TestScenario_SingleSearchResultCompletesFlow(t *testing.T) {
	u := &upstream{
		reverse: map[string]string{"35.69": "13101"},
		search: map[string]string{
			"東京都千代田区": `[{"geometry":{"coordinates":[139.75,35.69],"type":"Point"},"type":"Feature","properties":{"title":"東京都千代田区"}}]`,
		},
	}
	p := newScenarioPipeline(t, u, 2*time.Second)

	o := p.ResolveText(context.Background(), "東京都千代田区")

	require.Equal(t, domain.OutcomeForecast, o.Kind, "err: %v", o.Err)
	assert.Equal(t, domain.AreaCode("130010"), o.AreaCode)
}

func TestScenario_UnknownText(t *testing.T) {
	p := newScenarioPipeline(t, &upstream{}, 2*time.Second)

	o := p.ResolveText(context.Background(), "Nonexistent Place XYZ123")

	assert.Equal(t, domain.OutcomeNoMatch, o.Kind)
}

func TestScenario_PointAtSea(t *testing.T) {
	p := newScenarioPipeline(t, &upstream{}, 2*time.Second)

	o := p.ResolveCoordinate(context.Background(), domain.Coordinate{Lat: 30, Lon: 150})

	assert.Equal(t, domain.OutcomeUnavailable, o.Kind)
	assert.Equal(t, domain.StageReverseGeocode, o.Stage())
}

func TestScenario_UpstreamTimeout(t *testing.T) {
	u := &upstream{reverse: map[string]string{"35.68": "13101"}, delay: 200 * time.Millisecond}
	p := newScenarioPipeline(t, u, 50*time.Millisecond)

	coord := p.ResolveCoordinate(context.Background(), domain.Coordinate{Lat: 35.68, Lon: 139.76})
	text := p.ResolveText(context.Background(), "東京")

	assert.Equal(t, domain.OutcomeUnavailable, coord.Kind)
	assert.Equal(t, domain.StageReverseGeocode, coord.Stage())
	assert.Equal(t, domain.MessageUnavailable, coord.Message())
	assert.ErrorIs(t, coord.Err, domain.ErrUpstream)

	assert.Equal(t, domain.OutcomeUnavailable, text.Kind)
	assert.Equal(t, domain.StageSearch, text.Stage())
}
