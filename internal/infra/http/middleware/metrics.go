package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/agency-funnel/internal/usecase"
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

	statusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_status_changes_total",
			Help: "Total number of applied status changes per funnel stage",
		},
		[]string{"stage", "status"},
	)

	cascadeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_cascade_operations_total",
			Help: "Downstream records created or removed by status changes",
		},
		[]string{"record", "action"},
	)

	reconcileRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_reconcile_repairs_total",
			Help: "Records repaired by the reconcile job",
		},
		[]string{"record", "action"},
	)

	reconcileRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funnel_reconcile_runs_total",
			Help: "Total number of reconcile runs",
		},
	)
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
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of the path label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordStatusChange(stage, status string) {
	statusChanges.WithLabelValues(stage, status).Inc()
}

func RecordCascade(res usecase.CascadeResult) {
	if res.MQLCreated != nil {
		cascadeOps.WithLabelValues("mql", "created").Inc()
	}
	if res.MQLRemoved != nil {
		cascadeOps.WithLabelValues("mql", "removed").Inc()
	}
	if res.SQLCreated != nil {
		cascadeOps.WithLabelValues("sql", "created").Inc()
	}
	if res.SQLRemoved != nil {
		cascadeOps.WithLabelValues("sql", "removed").Inc()
	}
}

func RecordReconcile(report usecase.ReconcileReport) {
	reconcileRuns.Inc()
	reconcileRepairs.WithLabelValues("mql", "created").Add(float64(report.MQLsCreated))
	reconcileRepairs.WithLabelValues("mql", "removed").Add(float64(report.MQLsRemoved))
	reconcileRepairs.WithLabelValues("sql", "created").Add(float64(report.SQLsCreated))
	reconcileRepairs.WithLabelValues("sql", "removed").Add(float64(report.SQLsRemoved))
}
