// Package observability defines the service's Prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/scope"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	ScopeFetches       *prometheus.CounterVec   // labels: scope={list,detail}, status={ready,unavailable}
	ScopeFetchDuration *prometheus.HistogramVec // labels: scope
	StaleFetches       *prometheus.CounterVec   // labels: scope
	RecordsNormalized  prometheus.Counter
	SourceErrors       prometheus.Counter
	ListRecords        prometheus.Gauge
	RefreshRunning     prometheus.Gauge

	// Source cache metrics.
	SourceCache *prometheus.CounterVec // labels: result={hit,miss,shared}

	// Detail lookups.
	DetailLookups *prometheus.CounterVec // labels: outcome={found,not_found,unavailable}
}

func newMetrics() *Metrics {
	return &Metrics{
		ScopeFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coffee",
			Name:      "scope_fetches_total",
			Help:      "Completed record source fetches by scope and resulting status.",
		}, []string{"scope", "status"}),
		ScopeFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coffee",
			Name:      "scope_fetch_duration_seconds",
			Help:      "Duration of a fetch-and-normalize cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"scope"}),
		StaleFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coffee",
			Name:      "stale_fetches_total",
			Help:      "Fetch results dropped because their scope was closed.",
		}, []string{"scope"}),
		RecordsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coffee",
			Name:      "records_normalized_total",
			Help:      "Total raw records normalized.",
		}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coffee",
			Name:      "source_errors_total",
			Help:      "Record source fetch or parse failures.",
		}),
		ListRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coffee",
			Name:      "list_records",
			Help:      "Number of records in the current list collection.",
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coffee",
			Name:      "refresh_running",
			Help:      "1 when the list refresh loop is active, 0 when shut down.",
		}),
		SourceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coffee",
			Name:      "source_cache_total",
			Help:      "Record source cache lookups by result.",
		}, []string{"result"}),
		DetailLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coffee",
			Name:      "detail_lookups_total",
			Help:      "Detail lookups by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ScopeFetches,
		m.ScopeFetchDuration,
		m.StaleFetches,
		m.RecordsNormalized,
		m.SourceErrors,
		m.ListRecords,
		m.RefreshRunning,
		m.SourceCache,
		m.DetailLookups,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// FetchCompleted implements scope.Observer.
func (m *Metrics) FetchCompleted(kind scope.Kind, status scope.Status, size int, elapsed time.Duration) {
	m.ScopeFetches.WithLabelValues(string(kind), status.String()).Inc()
	m.ScopeFetchDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	if kind == scope.KindList {
		m.ListRecords.Set(float64(size))
	}
}

// FetchDiscarded implements scope.Observer.
func (m *Metrics) FetchDiscarded(kind scope.Kind) {
	m.StaleFetches.WithLabelValues(string(kind)).Inc()
}
