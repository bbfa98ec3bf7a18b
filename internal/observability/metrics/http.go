package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics instruments the question-answering API: generic HTTP
// traffic plus the answering pipeline itself, split by answer source
// (analytics vs rag).
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	askTotal            *prometheus.CounterVec
	askDuration         *prometheus.HistogramVec
	askContextFragments *prometheus.HistogramVec
	askNoContextTotal   *prometheus.CounterVec
	policyFallbackTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "iqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "iqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	askTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iqa",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Total answered questions by answer source.",
		},
		[]string{"service", "source"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "iqa",
			Subsystem: "ask",
			Name:      "duration_seconds",
			Help:      "Question answering duration in seconds by answer source.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "source"},
	)
	askContextFragments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "iqa",
			Subsystem: "ask",
			Name:      "context_records",
			Help:      "Distribution of context records assembled per lookup question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	askNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iqa",
			Subsystem: "ask",
			Name:      "no_context_total",
			Help:      "Total lookup questions answered without any context.",
		},
		[]string{"service"},
	)
	policyFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iqa",
			Subsystem: "ask",
			Name:      "policy_fallback_total",
			Help:      "Total answers rejected by the citation policy and replaced by the deterministic fallback.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		askTotal,
		askDuration,
		askContextFragments,
		askNoContextTotal,
		policyFallbackTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		askTotal:            askTotal,
		askDuration:         askDuration,
		askContextFragments: askContextFragments,
		askNoContextTotal:   askNoContextTotal,
		policyFallbackTotal: policyFallbackTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordAsk(service, source string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	m.askTotal.WithLabelValues(service, source).Inc()
	m.askDuration.WithLabelValues(service, source).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordContextSize(service string, records int) {
	m.askContextFragments.WithLabelValues(service).Observe(float64(records))
	if records == 0 {
		m.askNoContextTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordPolicyFallback(service string) {
	m.policyFallbackTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
