// Package metrics defines the Prometheus collectors of cine-insights.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetRows counts decoded CSV rows by outcome
	DatasetRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cine_insights_dataset_rows_total",
			Help: "Dataset rows decoded, by outcome",
		},
		[]string{"outcome"},
	)

	// AnalysisDuration tracks how long each report takes to compute
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cine_insights_analysis_duration_seconds",
			Help:    "Time spent computing a report",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report"},
	)

	// ReportRuns counts scheduled report runs by status
	ReportRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cine_insights_report_runs_total",
			Help: "Scheduled report runs, by status",
		},
		[]string{"job", "status"},
	)

	// APIRequestsTotal counts API requests by route and status code
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cine_insights_api_requests_total",
			Help: "HTTP API requests, by route and status",
		},
		[]string{"route", "method", "status"},
	)

	// APIRequestDuration tracks API latency by route
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cine_insights_api_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RecordLoad records the outcome counts of one dataset decode
func RecordLoad(rows, rejected, badDates, badYears, duplicates int) {
	DatasetRows.WithLabelValues("read").Add(float64(rows))
	DatasetRows.WithLabelValues("rejected").Add(float64(rejected))
	DatasetRows.WithLabelValues("bad_date").Add(float64(badDates))
	DatasetRows.WithLabelValues("bad_year").Add(float64(badYears))
	DatasetRows.WithLabelValues("duplicate").Add(float64(duplicates))
}

// ObserveAnalysis records the time since start under the report name
func ObserveAnalysis(report string, start time.Time) {
	AnalysisDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// RecordAPIRequest records one served request under its route pattern
func RecordAPIRequest(route, method string, status int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
