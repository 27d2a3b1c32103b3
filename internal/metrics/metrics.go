// Package metrics exposes the Prometheus instruments of the catalog.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	models "chaincatalog/internal/domain/models/catalog"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Export/import
	ImportResultsTotal     *prometheus.CounterVec
	ImportDurationSeconds  prometheus.Histogram
	ExportedTemplatesTotal prometheus.Counter

	// API
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ImportResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_template_import_results_total",
				Help: "Template import results by status",
			},
			[]string{"status"},
		),
		ImportDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_template_import_duration_seconds",
				Help:    "Duration of template archive imports",
				Buckets: prometheus.DefBuckets,
			},
		),
		ExportedTemplatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_templates_exported_total",
				Help: "Total number of templates written to export archives",
			},
		),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.ImportResultsTotal,
		m.ImportDurationSeconds,
		m.ExportedTemplatesTotal,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordImportResults counts each result under its status
func (m *Metrics) RecordImportResults(results []models.ImportResult, seconds float64) {
	if m == nil {
		return
	}
	for _, r := range results {
		m.ImportResultsTotal.WithLabelValues(string(r.Status)).Inc()
	}
	m.ImportDurationSeconds.Observe(seconds)
}

// RecordExport counts exported templates
func (m *Metrics) RecordExport(count int) {
	if m == nil {
		return
	}
	m.ExportedTemplatesTotal.Add(float64(count))
}
