package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configuration of the metrics middleware
type MetricsConfig struct {
	// SkipFunc requests this function returns true for are not measured
	SkipFunc func(r *http.Request) bool
}

var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gobackup_http_requests_total",
		Help: "Count of http requests processed, by method and status.",
	}, []string{"method", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "gobackup_http_request_duration_seconds",
		Help: "Duration of http requests.",
	}, []string{"method"})
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// MetricsHandler creates a middleware counting requests and durations
func MetricsHandler(cfg MetricsConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.SkipFunc != nil && cfg.SkipFunc(r) {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			requestCount.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
			requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
