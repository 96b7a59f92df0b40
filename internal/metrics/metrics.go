// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes recorded by RecordLogin.
const (
	LoginSucceeded     = "success"
	LoginInvalidToken  = "invalid_token"
	LoginExchangeError = "exchange_failed"
	LoginError         = "error"
)

// MetricsCollector is the recording surface used by the HTTP layer, the
// session store and the cleanup worker.
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordLogin(outcome string)
	RecordSessionIssued()
	RecordSessionExpired()
	RecordSessionsSwept(count int64)
}

// Collector is the Prometheus-backed MetricsCollector.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	sessionsIssued  prometheus.Counter
	sessionsExpired prometheus.Counter
	sessionsSwept   prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dda_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dda_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dda_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dda_sessions_issued_total",
			Help: "Session tokens issued.",
		}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dda_sessions_expired_total",
			Help: "Expired session tokens deleted on read.",
		}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dda_sessions_swept_total",
			Help: "Expired session tokens deleted by the cleanup worker.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.logins,
		c.sessionsIssued,
		c.sessionsExpired,
		c.sessionsSwept,
	)

	return c
}

// RecordHTTPRequest records one completed request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin records a login attempt.
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSessionIssued() {
	c.sessionsIssued.Inc()
}

func (c *Collector) RecordSessionExpired() {
	c.sessionsExpired.Inc()
}

// RecordSessionsSwept adds count swept sessions.
func (c *Collector) RecordSessionsSwept(count int64) {
	c.sessionsSwept.Add(float64(count))
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute serves Handler at /metrics. Used by the worker process,
// which has no API router.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
