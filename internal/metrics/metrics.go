package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Report metrics
	ReportsTotal       *prometheus.CounterVec
	ReportDuration     *prometheus.HistogramVec
	SourceFailures     *prometheus.CounterVec
	ExportsCreated     *prometheus.CounterVec
	SLAClientsByBucket *prometheus.GaugeVec

	// Database metrics
	DBOpenConnections prometheus.Gauge
}

// New creates a new Metrics instance registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		ReportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_generated_total",
				Help: "Total number of report computations by outcome",
			},
			[]string{"report", "outcome"}, // ok, degraded, unauthorized, failed
		),
		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_duration_seconds",
				Help:    "Report computation latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"report"},
		),
		SourceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_source_failures_total",
				Help: "Total number of failed row fetches by source",
			},
			[]string{"report", "source"},
		),
		ExportsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_exports_total",
				Help: "Total number of report workbooks exported",
			},
			[]string{"report"},
		),
		SLAClientsByBucket: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sla_clients",
				Help: "Open clients per response-time bucket at the last SLA scan",
			},
			[]string{"bucket"},
		),

		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Open database connections",
		}),
	}
}

// Middleware records request count, latency and response size per route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// Use the route pattern, not the raw path, to bound label cardinality
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		m.HTTPResponseSize.WithLabelValues(r.Method, path).Observe(float64(ww.BytesWritten()))
	})
}

// RecordReport records one report computation
func (m *Metrics) RecordReport(report, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(report, outcome).Inc()
	m.ReportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// RecordSourceFailure increments the failed fetch counter
func (m *Metrics) RecordSourceFailure(report, source string) {
	if m == nil {
		return
	}
	m.SourceFailures.WithLabelValues(report, source).Inc()
}

// RecordExport increments the export counter
func (m *Metrics) RecordExport(report string) {
	if m == nil {
		return
	}
	m.ExportsCreated.WithLabelValues(report).Inc()
}

// SetSLABucket sets the client count for one response-time bucket
func (m *Metrics) SetSLABucket(bucket string, count int) {
	if m == nil {
		return
	}
	m.SLAClientsByBucket.WithLabelValues(bucket).Set(float64(count))
}

// UpdateDBConnections updates the open connections gauge
func (m *Metrics) UpdateDBConnections(count int) {
	if m == nil {
		return
	}
	m.DBOpenConnections.Set(float64(count))
}
