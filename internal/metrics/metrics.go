package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is implemented by Metrics and NoopMetrics so services can be
// tested without touching the global Prometheus registry.
type Recorder interface {
	RecordInitiation(result string)
	RecordVerification(result string)
	RecordPoll(status string)
	RecordSessionRevocations(count int)
	RecordHTTPRequest(method, path, status string, duration time.Duration)
}

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// Device authorization flow
	InitiationsTotal   *prometheus.CounterVec
	VerificationsTotal *prometheus.CounterVec
	PollsTotal         *prometheus.CounterVec

	// CLI sessions
	SessionsRevokedTotal prometheus.Counter

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns the Prometheus-backed recorder, or a no-op recorder when
// metrics are disabled. Registration happens at most once per process.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		InitiationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cliauth_initiations_total",
				Help: "Total number of device authorization attempts initiated",
			},
			[]string{"result"}, // success, duplicate_retry, error
		),
		VerificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cliauth_verifications_total",
				Help: "Total number of browser verification attempts",
			},
			[]string{"result"}, // success, already_used, expired, not_found, error
		),
		PollsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cliauth_polls_total",
				Help: "Total number of CLI poll requests",
			},
			[]string{"status"}, // pending, complete, expired, rate_limited, not_found, error
		),
		SessionsRevokedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "cliauth_sessions_revoked_total",
				Help: "Total number of CLI sessions revoked by their owners",
			},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cliauth_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cliauth_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (m *Metrics) RecordInitiation(result string) {
	m.InitiationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordVerification(result string) {
	m.VerificationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordPoll(status string) {
	m.PollsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordSessionRevocations(count int) {
	m.SessionsRevokedTotal.Add(float64(count))
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// HTTPMetricsMiddleware records request counts and latency per route.
func HTTPMetricsMiddleware(recorder Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		recorder.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
