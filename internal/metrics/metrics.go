// Package metrics exposes tome's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	tagResolutions  *prometheus.CounterVec
	loadFailures    *prometheus.CounterVec
	loadDuration    prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	mutationResults *prometheus.CounterVec
}

// New registers tome's collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tagResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tome_tag_resolutions_total",
			Help: "Tag code resolutions by answering tier.",
		}, []string{"tier"}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tome_load_failures_total",
			Help: "Per-type listing failures during aggregation.",
		}, []string{"type"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tome_load_duration_seconds",
			Help:    "Time to aggregate every configured entry type.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tome_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		mutationResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tome_mutations_total",
			Help: "Entry and tag mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
	m.registry.MustRegister(
		m.tagResolutions,
		m.loadFailures,
		m.loadDuration,
		m.httpRequests,
		m.mutationResults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTagResolution counts one resolution answered by tier.
func (m *Metrics) ObserveTagResolution(tier string) {
	if m == nil {
		return
	}
	m.tagResolutions.WithLabelValues(tier).Inc()
}

// ObserveLoadFailure counts one failed per-type listing.
func (m *Metrics) ObserveLoadFailure(typ string) {
	if m == nil {
		return
	}
	m.loadFailures.WithLabelValues(typ).Inc()
}

// ObserveLoad records the duration of one aggregation.
func (m *Metrics) ObserveLoad(d time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(d.Seconds())
}

// ObserveRequest counts one HTTP response.
func (m *Metrics) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveMutation counts one mutation outcome ("ok" or "error").
func (m *Metrics) ObserveMutation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutationResults.WithLabelValues(op, outcome).Inc()
}
