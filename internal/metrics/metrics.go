package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	DocumentsProcessed *prometheus.CounterVec
	PIIFindings        *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	ExtractDuration    prometheus.Histogram
	ActiveDashboards   prometheus.Gauge
}

// New registers the instruments with the default registry.
func New(namespace string) *Metrics {
	return NewWith(namespace, prometheus.DefaultRegisterer)
}

// NewWith registers the instruments with a specific registerer. Tests use
// this to avoid duplicate registration across instances.
func NewWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Processed documents by file kind and outcome.",
		}, []string{"kind", "outcome"}),
		PIIFindings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pii_findings_total",
			Help:      "PII findings by entity type.",
		}, []string{"entity"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome.",
		}, []string{"outcome"}),
		ProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_seconds",
			Help:      "End-to-end document processing time in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ExtractDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_seconds",
			Help:      "Text extraction time in seconds, including OCR.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ActiveDashboards: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_dashboard_clients",
			Help:      "Number of connected dashboard WebSocket clients.",
		}),
	}
}

func (m *Metrics) ObserveProcessing(d time.Duration) {
	m.ProcessingDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveExtract(d time.Duration) {
	m.ExtractDuration.Observe(d.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
