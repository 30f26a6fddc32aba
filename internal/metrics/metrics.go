package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemad_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schemad_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemad_refresh_total",
			Help: "Refresh triggers by outcome.",
		},
		[]string{"outcome"},
	)

	refreshDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schemad_refresh_duration_seconds",
			Help:    "Duration of refreshes that reached the upstream fetch.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
	)

	snapshotItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "schemad_snapshot_items",
			Help: "Number of schema items in the active snapshot.",
		},
	)

	snapshotFetchedTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "schemad_snapshot_fetched_timestamp_seconds",
			Help: "Unix time the active snapshot was fetched.",
		},
	)

	docCacheWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schemad_document_cache_write_errors_total",
			Help: "Failed writes of the warm-start document cache.",
		},
	)
)

// Refresh outcome label values.
const (
	OutcomeOK                = "ok"
	OutcomeInProgress        = "in_progress"
	OutcomeRecentlyRefreshed = "recently_refreshed"
	OutcomeFailed            = "failed"
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(refreshTotal)
	prometheus.MustRegister(refreshDurationSeconds)
	prometheus.MustRegister(snapshotItems)
	prometheus.MustRegister(snapshotFetchedTimestamp)
	prometheus.MustRegister(docCacheWriteErrors)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncRefresh counts one trigger with the given outcome.
func IncRefresh(outcome string) {
	refreshTotal.WithLabelValues(outcome).Inc()
}

// ObserveRefreshDuration records how long a fetch/build/install took.
func ObserveRefreshDuration(d time.Duration) {
	refreshDurationSeconds.Observe(d.Seconds())
}

// SetSnapshot publishes the size and fetch time of the active snapshot.
func SetSnapshot(items int, fetchedAt time.Time) {
	snapshotItems.Set(float64(items))
	snapshotFetchedTimestamp.Set(float64(fetchedAt.Unix()))
}

// IncDocumentCacheWriteErrors counts a failed warm-start cache write.
func IncDocumentCacheWriteErrors() {
	docCacheWriteErrors.Inc()
}

// RegisterSnapshotAge exposes the active snapshot age, read at scrape time.
func RegisterSnapshotAge(age func() float64) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "schemad_snapshot_age_seconds",
			Help: "Age of the active snapshot in seconds, -1 before the first load.",
		},
		age,
	))
}

// routeLabel returns the pattern of the route chi matched for r, so path
// parameters and scanner traffic do not create new series. It must run after
// the router has served r.
func routeLabel(r *http.Request) string {
	if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
		return pattern
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request. Mount it
// with chi's Use so the matched route pattern is available as the label.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := routeLabel(r)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
