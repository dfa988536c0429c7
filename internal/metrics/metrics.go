// Package metrics exposes Prometheus instruments for aggregation, exports,
// duplicate audits and HTTP traffic. A nil *Metrics is a valid no-op.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rehab"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	aggregations        *prometheus.CounterVec
	aggregationDuration *prometheus.HistogramVec
	exports             *prometheus.CounterVec
	exportDuration      *prometheus.HistogramVec
	exportBytes         *prometheus.HistogramVec
	duplicates          *prometheus.GaugeVec
	auditRuns           *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
}

// New registers every instrument on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Category aggregations by record kind and outcome.",
		}, []string{"kind", "outcome"}),
		aggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent loading and tallying one kind for one period.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Rendered workbooks by report and outcome.",
		}, []string{"report", "outcome"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent composing and rendering a workbook.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		exportBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_bytes",
			Help:      "Size of rendered workbooks.",
			Buckets:   prometheus.ExponentialBuckets(4096, 2, 10),
		}, []string{"report"}),
		duplicates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicates",
			Help:      "Repeated identifiers found by the last duplicate audit.",
		}, []string{"group"}),
		auditRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_runs_total",
			Help:      "Duplicate audits by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.aggregations,
		m.aggregationDuration,
		m.exports,
		m.exportDuration,
		m.exportBytes,
		m.duplicates,
		m.auditRuns,
		m.httpRequests,
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// ObserveAggregation records one aggregation of kind.
func (m *Metrics) ObserveAggregation(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(kind, outcome(err)).Inc()
	m.aggregationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveExport records one rendered workbook. size is ignored on error.
func (m *Metrics) ObserveExport(report string, d time.Duration, size int, err error) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(report, outcome(err)).Inc()
	m.exportDuration.WithLabelValues(report).Observe(d.Seconds())
	if err == nil {
		m.exportBytes.WithLabelValues(report).Observe(float64(size))
	}
}

// SetDuplicates publishes the number of repeated identifiers in a group.
func (m *Metrics) SetDuplicates(group string, n int) {
	if m == nil {
		return
	}
	m.duplicates.WithLabelValues(group).Set(float64(n))
}

// ObserveAudit counts one duplicate audit run.
func (m *Metrics) ObserveAudit(err error) {
	if m == nil {
		return
	}
	m.auditRuns.WithLabelValues(outcome(err)).Inc()
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
