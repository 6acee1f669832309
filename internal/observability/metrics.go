package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forecast_bot"

// Metrics holds the Prometheus collectors for the resolution pipeline.
type Metrics struct {
	// Pipeline outcomes.
	Resolutions        *prometheus.CounterVec   // labels: input={coordinate,text}, outcome={forecast,no_match,too_many,ambiguous,unavailable}
	ResolutionFailures *prometheus.CounterVec   // labels: stage, kind={not_found,upstream,invalid_input}
	ResolutionDuration *prometheus.HistogramVec // labels: input

	// Upstream calls.
	UpstreamRequests *prometheus.CounterVec   // labels: service={reverse_geocode,search,catalog,forecast}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: service

	// Caches.
	ReverseCache     *prometheus.CounterVec // labels: result={hit,miss}
	CatalogCache     *prometheus.CounterVec // labels: result={hit,miss,refresh,error}
	CatalogEntries   prometheus.Gauge
	DirectoryRecords prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Resolutions,
		m.ResolutionFailures,
		m.ResolutionDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.ReverseCache,
		m.CatalogCache,
		m.CatalogEntries,
		m.DirectoryRecords,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Completed resolutions by input kind and outcome.",
		}, []string{"input", "outcome"}),
		ResolutionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Resolutions that ended unavailable, by failing stage and error kind.",
		}, []string{"stage", "kind"}),
		ResolutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "End-to-end resolution duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"input"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by service and outcome.",
		}, []string{"service", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"service"}),
		ReverseCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reverse_geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Area catalog cache lookups and refreshes by result.",
		}, []string{"result"}),
		CatalogEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_entries",
			Help:      "Number of city entries in the cached area catalog.",
		}),
		DirectoryRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "municipality_directory_records",
			Help:      "Number of records in the loaded municipality directory.",
		}),
	}
}
