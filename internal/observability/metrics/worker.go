package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics instruments the reindexing worker.
type WorkerMetrics struct {
	registry *prometheus.Registry

	reindexTotal     *prometheus.CounterVec
	reindexDuration  *prometheus.HistogramVec
	reindexInFlight  prometheus.Gauge
	indexedDocuments *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	reindexTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iqa",
			Subsystem: "worker",
			Name:      "reindex_total",
			Help:      "Total reindex runs by status.",
		},
		[]string{"service", "status"},
	)
	reindexDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "iqa",
			Subsystem: "worker",
			Name:      "reindex_duration_seconds",
			Help:      "Reindex run duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	reindexInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "iqa",
			Subsystem: "worker",
			Name:      "reindex_in_flight",
			Help:      "Number of in-flight reindex runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "iqa",
			Subsystem: "worker",
			Name:      "indexed_documents",
			Help:      "Distribution of documents indexed per reindex run.",
			Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"service"},
	)

	registry.MustRegister(reindexTotal, reindexDuration, reindexInFlight, indexedDocuments)

	return &WorkerMetrics{
		registry:         registry,
		reindexTotal:     reindexTotal,
		reindexDuration:  reindexDuration,
		reindexInFlight:  reindexInFlight,
		indexedDocuments: indexedDocuments,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartReindex() {
	m.reindexInFlight.Inc()
}

func (m *WorkerMetrics) FinishReindex(service string, indexed int, duration time.Duration, err error) {
	m.reindexInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.reindexTotal.WithLabelValues(service, status).Inc()
	m.reindexDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.indexedDocuments.WithLabelValues(service).Observe(float64(indexed))
	}
}
