// Package metrics provides Prometheus metrics for the training server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	registry *prometheus.Registry

	// Completion provider metrics
	CompletionRequestsTotal   *prometheus.CounterVec
	CompletionRequestDuration *prometheus.HistogramVec

	// Retrieval metrics
	RetrievalQueriesTotal *prometheus.CounterVec
	IndexChunks           prometheus.Gauge

	// Page metrics
	TurnsTotal       *prometheus.CounterVec
	ResolutionsTotal prometheus.Counter
	ResetsTotal      *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

// New creates a registry and registers every metric on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.CompletionRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ajiwai_completion_requests_total",
			Help: "Total number of completion requests",
		},
		[]string{"provider", "status"},
	)

	m.CompletionRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ajiwai_completion_request_duration_seconds",
			Help:    "Duration of completion requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	m.RetrievalQueriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ajiwai_retrieval_queries_total",
			Help: "Total number of manual retrieval queries",
		},
		[]string{"backend", "status"},
	)

	m.IndexChunks = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ajiwai_manual_index_chunks",
			Help: "Number of manual chunks in the retrieval index",
		},
	)

	m.TurnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ajiwai_turns_total",
			Help: "Total number of committed user turns",
		},
		[]string{"page"},
	)

	m.ResolutionsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "ajiwai_simulator_resolutions_total",
			Help: "Number of simulator sessions that satisfied every checklist item",
		},
	)

	m.ResetsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ajiwai_session_resets_total",
			Help: "Number of explicit session resets",
		},
		[]string{"page"},
	)

	m.ActiveSessions = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ajiwai_active_sessions",
			Help: "Number of sessions held in memory",
		},
	)

	return m
}

// RecordCompletion records a completion call.
func (m *Metrics) RecordCompletion(provider string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.CompletionRequestsTotal.WithLabelValues(provider, status(err)).Inc()
	m.CompletionRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordRetrieval records a retrieval query.
func (m *Metrics) RecordRetrieval(backend string, err error) {
	if m == nil {
		return
	}
	m.RetrievalQueriesTotal.WithLabelValues(backend, status(err)).Inc()
}

// RecordTurn records a committed turn for a page.
func (m *Metrics) RecordTurn(page string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(page).Inc()
}

// RecordResolution records a simulator success.
func (m *Metrics) RecordResolution() {
	if m == nil {
		return
	}
	m.ResolutionsTotal.Inc()
}

// RecordReset records an explicit reset.
func (m *Metrics) RecordReset(page string) {
	if m == nil {
		return
	}
	m.ResetsTotal.WithLabelValues(page).Inc()
}

// SetActiveSessions updates the in-memory session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// SetIndexChunks updates the index size gauge.
func (m *Metrics) SetIndexChunks(n int) {
	if m == nil {
		return
	}
	m.IndexChunks.Set(float64(n))
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
