package gsi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testDirectory(t *testing.T) *domain.MunicipalityDirectory {
	t.Helper()
	dir, err := domain.NewMunicipalityDirectory([]domain.MunicipalityRecord{
		{Code: "13101", Prefecture: "東京都", City: "千代田区"},
		{Code: "1101", Prefecture: "北海道", City: "札幌市中央区"},
	})
	require.NoError(t, err)
	return dir
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		reverseURL: baseURL + "/reverse",
		searchURL:  baseURL + "/search",
		directory:  testDirectory(t),
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "35.68", r.URL.Query().Get("lat"))
		assert.Equal(t, "139.76", r.URL.Query().Get("lon"))
		writeJSON(t, w, map[string]any{"results": map[string]string{"muniCd": "13101", "lv01Nm": "丸の内一丁目"}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	place, err := c.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 35.68, Lon: 139.76})
	require.NoError(t, err)
	assert.Equal(t, domain.Place{Prefecture: "東京都", City: "千代田区"}, place)
}

func TestClient_ReverseGeocode_StripsZeroPadding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"results": map[string]string{"muniCd": "01101"}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	place, err := c.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 43.06, Lon: 141.35})
	require.NoError(t, err)
	assert.Equal(t, domain.Place{Prefecture: "北海道", City: "札幌市中央区"}, place)
}

func TestClient_ReverseGeocode_UnknownMunicipality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"results": map[string]string{"muniCd": "99999"}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 35, Lon: 139})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_ReverseGeocode_EmptyResults(t *testing.T) {
	for name, body := range map[string]string{"empty body": "", "empty object": "{}"} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c := testClient(t, srv.URL)
			_, err := c.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 30, Lon: 150})
			require.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestClient_ReverseGeocode_NonOKIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 35, Lon: 139})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_ReverseGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 35, Lon: 139})
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestClient_Search_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "東京都千代田区", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[
			{"geometry":{"coordinates":[139.753,35.694],"type":"Point"},"type":"Feature","properties":{"addressCode":"","title":"東京都千代田区"}},
			{"geometry":{"coordinates":[139.76,35.68],"type":"Point"},"type":"Feature","properties":{"addressCode":"","title":"東京都千代田区丸の内"}}
		]`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Search(context.Background(), "東京都千代田区")
	require.NoError(t, err)

	assert.Equal(t, []domain.GeoCandidate{
		{Title: "東京都千代田区", Coordinate: domain.Coordinate{Lat: 35.694, Lon: 139.753}},
		{Title: "東京都千代田区丸の内", Coordinate: domain.Coordinate{Lat: 35.68, Lon: 139.76}},
	}, got)
}

func TestClient_Search_EscapesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a&b=c d", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Search(context.Background(), "a&b=c d")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Search_Errors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"not":"an array"`))
		},
		"missing coordinates": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"geometry":{"coordinates":[139.7]},"properties":{"title":"x"}}]`))
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			c := testClient(t, srv.URL)
			_, err := c.Search(context.Background(), "query")
			require.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}
