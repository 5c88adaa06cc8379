package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	syncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sync_runs_total",
			Help: "Total number of lead sync runs by result",
		},
		[]string{"result"},
	)

	syncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_sync_run_duration_seconds",
			Help:    "Duration of lead sync runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	leadOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sync_leads_total",
			Help: "Total number of leads by sync outcome",
		},
		[]string{"outcome"},
	)

	inspectionLeads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sync_inspection_leads_total",
			Help: "Total number of leads flagged for manual inspection",
		},
		[]string{"category"},
	)

	lastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last lead sync run that finished without error",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

// Lead outcome labels.
const (
	OutcomeCreated      = "created"
	OutcomeUpdated      = "updated"
	OutcomeCreateFailed = "create_failed"
	OutcomeUpdateFailed = "update_failed"
	OutcomeRejected     = "rejected"
	OutcomeSwept        = "swept"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordSyncRun counts a finished run. result is "success" or an error code.
func RecordSyncRun(result string, duration time.Duration, finishedAt time.Time) {
	syncRuns.WithLabelValues(result).Inc()
	syncRunDuration.Observe(duration.Seconds())
	if result == "success" {
		lastSuccessfulRun.Set(float64(finishedAt.Unix()))
	}
}

func RecordLeadOutcome(outcome string, n int) {
	if n > 0 {
		leadOutcomes.WithLabelValues(outcome).Add(float64(n))
	}
}

func RecordInspection(category string, n int) {
	if n > 0 {
		inspectionLeads.WithLabelValues(category).Add(float64(n))
	}
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
