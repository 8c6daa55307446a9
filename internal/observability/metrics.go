package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	searchStarted   prometheus.Counter
	searchCompleted *prometheus.CounterVec
	searchFailures  prometheus.Counter
	searchLatency   prometheus.Histogram
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "servicedesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "servicedesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "servicedesk",
			Name:      "http_errors_total",
			Help:      "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		searchStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "servicedesk",
			Name:      "search_tasks_started_total",
			Help:      "Tag searches accepted.",
		}),
		searchCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "servicedesk",
			Name:      "search_tasks_completed_total",
			Help:      "Tag searches completed, by outcome.",
		}, []string{"outcome"}),
		searchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "servicedesk",
			Name:      "search_failures_total",
			Help:      "Deferred searches that failed and completed with an empty result.",
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "servicedesk",
			Name:      "search_task_duration_seconds",
			Help:      "Time from task creation to completion.",
			Buckets:   []float64{0.01, 0.1, 1, 5, 15, 30, 60, 90, 120, 300},
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.searchStarted,
		m.searchCompleted,
		m.searchFailures,
		m.searchLatency,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// SearchStarted counts an accepted search.
func (m *Metrics) SearchStarted() {
	if m == nil {
		return
	}
	m.searchStarted.Inc()
}

// SearchCompleted counts a finished search. failed marks searches that
// fell back to an empty result.
func (m *Metrics) SearchCompleted(elapsed time.Duration, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "failed"
		m.searchFailures.Inc()
	}
	m.searchCompleted.WithLabelValues(outcome).Inc()
	m.searchLatency.Observe(elapsed.Seconds())
}
