package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_operations_total",
			Help: "Tracker operations by name and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// PrometheusMiddleware records request duration labelled by the matched chi route pattern.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Observe(time.Since(start).Seconds())
	})
}

// RecordOperation counts one service call; the outcome is "ok" or the error kind.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domerrors.KindOf(err).String()
	}
	operations.WithLabelValues(operation, outcome).Inc()
}
