// Package metrics exposes pipeline and HTTP instrumentation in the Prometheus
// text format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"autosales/salesdash/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salesdash"

// Outcome labels of a pipeline run.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder owns a private registry so that several recorders, one per test,
// never collide on metric names.
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	rows        *prometheus.CounterVec
	reports     *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder registers the salesdash metrics together with the Go runtime and
// process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by time mode and outcome.",
		}, []string{"mode", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "rows_total",
			Help:      "Input rows of successful runs by audit status.",
		}, []string{"status"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "published_total",
			Help:      "Report artifacts published by format.",
		}, []string{"format"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.runs, r.runDuration, r.rows, r.reports,
		r.requests, r.requestDuration,
	)
	return r
}

// ObserveRun records one finished pipeline run. audit and artifacts are only
// counted for successful runs. Unsupported modes share the "invalid" label.
func (r *Recorder) ObserveRun(mode models.TimeMode, audit *models.Audit, artifacts []models.ReportArtifact, err error, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	label := mode.String()
	if !mode.Valid() {
		label = "invalid"
	}
	r.runs.WithLabelValues(label, outcome).Inc()
	r.runDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	if err != nil {
		return
	}

	if audit != nil {
		r.rows.WithLabelValues("resolved").Add(float64(audit.ResolvedRows))
		r.rows.WithLabelValues("unresolved_revenue").Add(float64(audit.UnresolvedRevenue))
		r.rows.WithLabelValues("missing_product").Add(float64(audit.MissingProduct))
		r.rows.WithLabelValues("unknown_bucket").Add(float64(audit.UnknownBucket))
	}
	for _, a := range artifacts {
		r.reports.WithLabelValues(string(a.Format)).Inc()
	}
}

// Middleware counts requests per chi route pattern, so path parameters such as
// history names do not create new series.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.requestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry, ErrorHandling: promhttp.ContinueOnError})
}
