package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Report-API Metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "reports_total",
			Help:      "Reports executed by intent, output format and outcome",
		},
		[]string{"intent", "format", "outcome"},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "report_duration_seconds",
			Help:      "Time spent executing and rendering a report",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"intent"},
	)

	ReportRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "report_rows",
			Help:      "Rows returned per report",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
		[]string{"intent"},
	)

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "classifications_total",
			Help:      "Intent decisions by deciding tier",
		},
		[]string{"source", "intent"},
	)

	ClassifierConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "classifier_confidence",
			Help:      "Probability of the statistical model's top prediction",
			Buckets:   []float64{0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	UsageLogFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "usage_log_failures_total",
			Help:      "Prompt log writes that failed and were dropped",
		},
	)

	ClassifierModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "classifier_model_loaded",
			Help:      "1 when a trained intent model is serving, 0 when rules only",
		},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordReport records one executed report.
func RecordReport(intent, format, outcome string, durationSec float64, rows int) {
	ReportsTotal.WithLabelValues(intent, format, outcome).Inc()
	ReportDuration.WithLabelValues(intent).Observe(durationSec)
	if outcome == "ok" {
		ReportRows.WithLabelValues(intent).Observe(float64(rows))
	}
}

// RecordClassification records which tier decided an intent.
func RecordClassification(source, intent string, confidence *float64) {
	ClassificationsTotal.WithLabelValues(source, intent).Inc()
	if confidence != nil {
		ClassifierConfidence.Observe(*confidence)
	}
}

// RecordUsageLogFailure counts a dropped prompt log write.
func RecordUsageLogFailure(error) {
	UsageLogFailuresTotal.Inc()
}

// SetModelLoaded publishes whether a trained model is active.
func SetModelLoaded(loaded bool) {
	if loaded {
		ClassifierModelLoaded.Set(1)
		return
	}
	ClassifierModelLoaded.Set(0)
}
