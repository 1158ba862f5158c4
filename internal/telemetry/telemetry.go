// Package telemetry wires the Prometheus counters and histogram a cache
// node exposes on /metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter and histogram observed by a cache node's
// request surface, registered once at process startup.
type Metrics struct {
	Requests         prometheus.Counter
	Errors           prometheus.Counter
	Hits             prometheus.Counter
	Misses           prometheus.Counter
	OperationSeconds prometheus.Histogram

	registry *prometheus.Registry
}

// New creates and registers a fresh set of metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of cache requests handled.",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache requests that failed.",
		}),
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of GET requests served from a populated tier.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of GET requests for which no tier held the key.",
		}),
		OperationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of a single tiered-cache operation.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
		}),
		registry: registry,
	}

	registry.MustRegister(m.Requests, m.Errors, m.Hits, m.Misses, m.OperationSeconds)
	return m
}

// Handler returns the HTTP handler to mount at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Timer starts a duration observer; call Observe when the operation
// completes.
func (m *Metrics) Timer() *OperationTimer {
	return &OperationTimer{start: time.Now(), hist: m.OperationSeconds}
}

// OperationTimer measures one request's duration for the operation
// histogram.
type OperationTimer struct {
	start time.Time
	hist  prometheus.Histogram
}

// Observe records the elapsed time since the timer was created.
func (t *OperationTimer) Observe() {
	t.hist.Observe(time.Since(t.start).Seconds())
}
