// Package metrics holds the Prometheus collectors of the extraction service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Outcome labels for paystub_extractions_total.
const (
	OutcomeSuccess          = "success"
	OutcomeAcquisitionError = "acquisition_error"
	OutcomeValidationError  = "validation_error"
	OutcomeError            = "error"
)

type Metrics struct {
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	AcquisitionTotal   *prometheus.CounterVec
	OCRPagesTotal      prometheus.Counter
	ConfidenceScore    prometheus.Histogram
	ProviderTotal      *prometheus.CounterVec
	QueueDepth         prometheus.Gauge
}

// NewMetrics registers the collectors with the default registry once per
// process and returns the shared instance.
//
// Metrics:
//   - paystub_extractions_total{outcome}
//   - paystub_extraction_duration_seconds
//   - paystub_acquisition_total{method}
//   - paystub_ocr_pages_total
//   - paystub_confidence_score
//   - paystub_provider_total{provider}
//   - paystub_queue_depth
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ExtractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "paystub_extractions_total",
					Help: "Total number of document extractions by outcome",
				},
				[]string{"outcome"},
			),

			ExtractionDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "paystub_extraction_duration_seconds",
					Help:    "End-to-end extraction time per document",
					Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
				},
			),

			AcquisitionTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "paystub_acquisition_total",
					Help: "Text acquisitions by method (native, pdftotext, ocr, text)",
				},
				[]string{"method"},
			),

			OCRPagesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "paystub_ocr_pages_total",
					Help: "Total number of pages sent through OCR",
				},
			),

			ConfidenceScore: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "paystub_confidence_score",
					Help:    "Distribution of extraction confidence scores",
					Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
				},
			),

			ProviderTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "paystub_provider_total",
					Help: "Documents by detected payroll provider",
				},
				[]string{"provider"},
			),

			QueueDepth: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "paystub_queue_depth",
					Help: "Jobs waiting in the processing queue",
				},
			),
		}
	})
	return globalMetrics
}

// All recorders are no-ops on a nil *Metrics.

func (m *Metrics) RecordExtraction(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
	m.ExtractionDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordAcquisition(method string, ocrPages int) {
	if m == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	m.AcquisitionTotal.WithLabelValues(method).Inc()
	if ocrPages > 0 {
		m.OCRPagesTotal.Add(float64(ocrPages))
	}
}

func (m *Metrics) RecordResult(provider string, confidence float64) {
	if m == nil {
		return
	}
	m.ProviderTotal.WithLabelValues(provider).Inc()
	m.ConfidenceScore.Observe(confidence)
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
