// Package metrics exposes the Prometheus collectors for the import pipeline
// and the HTTP layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so it can be created more than once in tests.
type Metrics struct {
	Registry *prometheus.Registry

	importsTotal    *prometheus.CounterVec
	rowsTotal       *prometheus.CounterVec
	importDuration  *prometheus.HistogramVec
	requestDuration *prometheus.HistogramVec
	uploadsSwept    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_imports_total",
				Help: "Import batches by kind, detected format and outcome.",
			},
			[]string{"kind", "format", "status"},
		),
		rowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_import_rows_total",
				Help: "Rows seen by the import pipeline.",
			},
			[]string{"kind", "outcome"},
		),
		importDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finance_import_duration_seconds",
				Help:    "Duration of normalize plus persist per upload.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finance_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		uploadsSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "finance_uploads_swept_total",
				Help: "Stale temporary uploads removed by the sweeper.",
			},
		),
	}
}

// RecordImport records the outcome of one upload.
func (m *Metrics) RecordImport(kind, format, status string, d time.Duration) {
	m.importsTotal.WithLabelValues(kind, format, status).Inc()
	m.importDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordRows adds row counts for an outcome such as "retained", "dropped" or "inserted".
func (m *Metrics) RecordRows(kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(kind, outcome).Add(float64(n))
}

func (m *Metrics) RecordRequest(method, route, status string, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (m *Metrics) IncrUploadsSwept(n int) {
	m.uploadsSwept.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
