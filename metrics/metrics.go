// Package metrics provides Prometheus metrics for the HTTP server and the
// list import pipeline:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - import_lines_total: Counter of scanned list lines
//   - import_records_total: Counter with a result label (accepted/rejected)
//   - import_rejects_total: Counter keyed by rejection reason
//   - import_duration_seconds: Histogram of full import runs
//   - import_last_run_timestamp_seconds: Gauge, unix time of the last run
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	ImportLinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_lines_total",
			Help: "Total list lines scanned across all import runs",
		},
	)

	ImportRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_records_total",
			Help: "Extracted records by validation result",
		},
		[]string{"result"},
	)

	ImportRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rejects_total",
			Help: "Rejected records by reason",
		},
		[]string{"reason"},
	)

	ImportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "import_duration_seconds",
			Help:    "Duration of full import runs",
			Buckets: []float64{.1, .5, 1, 5, 15, 60, 300},
		},
	)

	ImportLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "import_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed import run",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(ImportLinesTotal)
	prometheus.MustRegister(ImportRecordsTotal)
	prometheus.MustRegister(ImportRejectsTotal)
	prometheus.MustRegister(ImportDuration)
	prometheus.MustRegister(ImportLastRun)
}
