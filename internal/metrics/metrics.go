package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vidtube_ws_connections",
		Help: "Current number of active websocket connections",
	})
	WsEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_ws_events_total",
		Help: "Total number of engagement events fanned out to watchers",
	}, []string{"type"})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	ViewBuildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_view_build_seconds",
		Help:    "Time spent composing a read view",
		Buckets: prometheus.DefBuckets,
	}, []string{"view", "outcome"})
	MediaTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_media_tasks_total",
		Help: "Media background tasks processed by the worker",
	}, []string{"type", "outcome"})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		WsEventsTotal,
		HttpRequestsTotal,
		HttpRequestDuration,
		ViewBuildDuration,
		MediaTasksTotal,
	)
}

// ObserveViewBuild records how long a view took and whether it succeeded.
// outcome is "ok" or the error kind reported by the composer.
func ObserveViewBuild(view, outcome string, started time.Time) {
	ViewBuildDuration.WithLabelValues(view, outcome).Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware counts requests per chi route pattern so path parameters do not
// explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{"method": r.Method, "path": path, "status": strconv.Itoa(status)}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}
