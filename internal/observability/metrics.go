// Package observability groups the Prometheus instruments and the optional
// per-turn trace recorder. Tracing failures must never block answering.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	TurnsTotal       *prometheus.CounterVec
	RetrievalGate    *prometheus.CounterVec
	StageLatency     *prometheus.HistogramVec
	InFlightRequests prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		TurnsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed conversation turns by outcome.",
		}, []string{"outcome"}),
		RetrievalGate: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_gate_total",
			Help:      "Retrieval gate resolutions by outcome.",
		}, []string{"outcome"}),
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_ms",
			Help:      "Pipeline stage latency in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"stage"}),
		InFlightRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight_requests",
			Help:      "Number of chat requests currently being handled.",
		}),
	}
}

// ObserveStage records the latency of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageLatency.WithLabelValues(stage).Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
