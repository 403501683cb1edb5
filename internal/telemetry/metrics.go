package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the screening flow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	screenings *prometheus.CounterVec
	failures   *prometheus.CounterVec
	extraction *prometheus.HistogramVec
	gatherer   prometheus.Gatherer
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers the collectors on reg and exposes gatherer.
func NewMetricsWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		screenings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posture",
			Name:      "screenings_total",
			Help:      "Completed screenings by overall risk level.",
		}, []string{"overall_risk"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posture",
			Name:      "analysis_failures_total",
			Help:      "Rejected analysis requests by reason.",
		}, []string{"reason"}),
		extraction: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "posture",
			Name:      "landmark_extraction_seconds",
			Help:      "Latency of pose estimator calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		gatherer: gatherer,
	}
	reg.MustRegister(m.screenings, m.failures, m.extraction)
	return m
}

func (m *Metrics) ScreeningCompleted(overallRisk string) {
	if m == nil {
		return
	}
	m.screenings.WithLabelValues(overallRisk).Inc()
}

func (m *Metrics) AnalysisFailed(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveExtraction(view string, took time.Duration) {
	if m == nil {
		return
	}
	m.extraction.WithLabelValues(view).Observe(took.Seconds())
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
