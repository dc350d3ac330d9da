// Package metrics exports translation and HTTP counters through Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/binscript/pkg/codec"
	"github.com/ssargent/binscript/pkg/langdef"
	"github.com/ssargent/binscript/pkg/stream"
)

const namespace = "binscript"

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// servers and tests do not collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	// translation metrics
	callsTotal      *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	callSize        *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	streamsFinished *prometheus.CounterVec

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// archive metrics
	archiveOperationsTotal *prometheus.CounterVec
}

var _ stream.Observer = (*Metrics)(nil)

// New creates and registers all metrics on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		callsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of function calls translated",
			},
			[]string{"direction", "function"},
		),

		bytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Total number of binary bytes read or written",
			},
			[]string{"direction"},
		),

		callSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_size_bytes",
				Help:      "Size of translated calls in bytes",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"direction"},
		),

		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of translation errors",
			},
			[]string{"direction", "code"},
		),

		streamsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_finished_total",
				Help:      "Total number of streams translated to their end",
			},
			[]string{"direction"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		archiveOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_operations_total",
				Help:      "Total number of capture archive operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// Registry returns the registry the metrics live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WriteToTextfile writes the metrics for the node exporter textfile collector
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Translated records one decoded or encoded call
func (m *Metrics) Translated(dir stream.Direction, call *codec.FunctionCall, size int) {
	d := dir.String()
	m.callsTotal.WithLabelValues(d, call.Def.Name).Inc()
	m.bytesTotal.WithLabelValues(d).Add(float64(size))
	m.callSize.WithLabelValues(d).Observe(float64(size))
}

// Failed records a translation error under its code
func (m *Metrics) Failed(dir stream.Direction, err error) {
	m.errorsTotal.WithLabelValues(dir.String(), ErrorLabel(err)).Inc()
}

// Finished records a stream that reached its end
func (m *Metrics) Finished(dir stream.Direction, calls, bytes int) {
	m.streamsFinished.WithLabelValues(dir.String()).Inc()
}

// RecordArchiveOperation records a capture archive operation
func (m *Metrics) RecordArchiveOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.archiveOperationsTotal.WithLabelValues(operation, status).Inc()
}

// ErrorLabel names err for the code label: the parse error code when there
// is one, otherwise the stream error kind.
func ErrorLabel(err error) string {
	if code := langdef.CodeOf(err); code != langdef.NoError {
		return code.String()
	}
	switch {
	case errors.Is(err, stream.ErrTruncated):
		return "TRUNCATED"
	case errors.Is(err, stream.ErrBudget):
		return "BUDGET"
	}
	return "OTHER"
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
