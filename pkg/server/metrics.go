package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics for the API server.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Session metrics
	sessionsTotal prometheus.Counter

	// Compliance metrics
	suppressedTotal *prometheus.CounterVec

	// Recommendation metrics
	recommendationsTotal *prometheus.CounterVec

	// Configuration reload metrics
	configReloads *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archwise_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "archwise_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		sessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "archwise_sessions_total",
				Help: "Total number of wizard sessions created",
			},
		),

		suppressedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archwise_compliance_suppressed_total",
				Help: "Frameworks removed by regional-privacy suppression",
			},
			[]string{"framework"},
		),

		recommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archwise_recommendations_total",
				Help: "Recommendation requests by outcome",
			},
			[]string{"outcome"},
		),

		configReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archwise_config_reloads_total",
				Help: "Configuration snapshots applied by status",
			},
			[]string{"status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.sessionsTotal,
		m.suppressedTotal,
		m.recommendationsTotal,
		m.configReloads,
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSessionCreated records a new wizard session.
func (m *Metrics) RecordSessionCreated() {
	m.sessionsTotal.Inc()
}

// TrackSessions exports the number of stored sessions as reported by count.
// It may be called once per registry.
func (m *Metrics) TrackSessions(count func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "archwise_sessions_active",
			Help: "Number of wizard sessions currently stored",
		},
		func() float64 { return float64(count()) },
	))
}

// RecordSuppressed counts a framework dropped by suppression.
func (m *Metrics) RecordSuppressed(id string) {
	m.suppressedTotal.WithLabelValues(id).Inc()
}

// RecordRecommendation records the outcome of a recommendation request.
func (m *Metrics) RecordRecommendation(outcome string) {
	m.recommendationsTotal.WithLabelValues(outcome).Inc()
}

// RecordConfigReload records a configuration reload attempt
func (m *Metrics) RecordConfigReload(status string) {
	m.configReloads.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency under endpoint, which should
// be the route pattern rather than the raw path to keep cardinality bounded.
func (m *Metrics) Middleware(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(wrapped.statusCode), time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not support http.Hijacker")
}
