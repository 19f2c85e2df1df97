package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the API.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	authzRejections  *prometheus.CounterVec
	bulkMutations    *prometheus.CounterVec
	bulkRowsAffected *prometheus.CounterVec
}

// NewMetrics initialises the registry and every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumen_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_authz_rejections_total",
		Help: "Requests rejected by the authorization guard, by reason.",
	}, []string{"reason"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_bulk_mutations_total",
		Help: "Bulk mutations by entity, field and outcome.",
	}, []string{"entity", "field", "outcome"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_bulk_rows_affected_total",
		Help: "Rows matched by successful bulk mutations.",
	}, []string{"entity"})
	registry.MustRegister(
		requests, duration, rejections, mutations, rows,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		authzRejections:  rejections,
		bulkMutations:    mutations,
		bulkRowsAffected: rows,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAuthzRejection counts a guard rejection. reason is one of
// "unauthenticated", "inactive", "forbidden" or "session_store".
func (m *Metrics) ObserveAuthzRejection(reason string) {
	if m == nil {
		return
	}
	m.authzRejections.WithLabelValues(reason).Inc()
}

// ObserveBulkMutation counts one executor run.
func (m *Metrics) ObserveBulkMutation(entity, field string, matched int64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.bulkMutations.WithLabelValues(entity, field, outcome).Inc()
	if err == nil {
		m.bulkRowsAffected.WithLabelValues(entity).Add(float64(matched))
	}
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
