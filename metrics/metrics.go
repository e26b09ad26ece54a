// Package metrics exposes Prometheus metrics for the symptom checker and diagnosis workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal        *prometheus.CounterVec
	analysisDuration     prometheus.Histogram
	diagnosisTransitions *prometheus.CounterVec
	treatmentPlansTotal  *prometheus.CounterVec
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idms_symptom_analyses_total",
			Help: "Total number of symptom analyses by resulting severity",
		},
		[]string{"severity"}, // severity: mild, moderate, severe, critical, none
	)
	m.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "idms_symptom_analysis_duration_seconds",
			Help:    "Time taken to score a session against every disease",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
	m.diagnosisTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idms_diagnosis_transitions_total",
			Help: "Total number of diagnosis status changes",
		},
		[]string{"status"},
	)
	m.treatmentPlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idms_treatment_plan_operations_total",
			Help: "Total number of treatment plan operations",
		},
		[]string{"operation"}, // operation: created, medication_added, procedure_added, completed
	)
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idms_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "idms_http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.registry.MustRegister(
		m.analysesTotal,
		m.analysisDuration,
		m.diagnosisTransitions,
		m.treatmentPlansTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAnalysis(severity string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if severity == "" {
		severity = "none"
	}
	m.analysesTotal.WithLabelValues(severity).Inc()
	m.analysisDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordDiagnosisTransition(status string) {
	if m == nil {
		return
	}
	m.diagnosisTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordTreatmentPlanOperation(operation string) {
	if m == nil {
		return
	}
	m.treatmentPlansTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
