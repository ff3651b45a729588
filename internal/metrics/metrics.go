package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// LedgerSource is what the ledger collector reads at scrape time.
type LedgerSource interface {
	ListProducts() []models.Product
}

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestsDuration *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	mutationsTotal       *prometheus.CounterVec
	lowStockAlertsTotal  prometheus.Counter
}

// New builds a registry with HTTP, mutation and ledger state metrics.
func New(source LedgerSource) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"code", "method", "path"},
		),
		httpRequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed.",
			},
		),
		mutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_mutations_total",
				Help: "Ledger mutations by operation and outcome.",
			},
			[]string{"operation", "result"},
		),
		lowStockAlertsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_low_stock_alerts_total",
				Help: "Low-stock alerts raised.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.httpRequestsTotal,
		m.httpRequestsDuration,
		m.httpRequestsInFlight,
		m.mutationsTotal,
		m.lowStockAlertsTotal,
	)
	if source != nil {
		m.registry.MustRegister(newLedgerCollector(source))
	}
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveMutation counts a ledger mutation by the class of its outcome.
func (m *Metrics) ObserveMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if appErr, ok := appErrors.IsAppError(err); ok {
			result = appErr.Code
		}
	}
	m.mutationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveAlert() {
	m.lowStockAlertsTotal.Inc()
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, latency and in-flight requests labelled
// by the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		rw := newResponseWriter(w)

		defer func() {
			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			m.httpRequestsTotal.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, path).Inc()
			m.httpRequestsDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			m.httpRequestsInFlight.Dec()
		}()

		next.ServeHTTP(rw, r)
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
