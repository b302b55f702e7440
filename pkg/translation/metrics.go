package translation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the translation pipeline.
type Metrics struct {
	TranslationsTotal  *prometheus.CounterVec
	RetriesTotal       prometheus.Counter
	TranslationSeconds prometheus.Histogram
	InFlight           prometheus.Gauge
}

// NewMetrics creates pipeline metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TranslationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lingomeet_translations_total",
				Help: "Translation outcomes per transcript",
			},
			[]string{"status"},
		),
		RetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lingomeet_translation_retries_total",
				Help: "Total translation retry attempts",
			},
		),
		TranslationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lingomeet_translation_seconds",
				Help:    "Translation call latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lingomeet_translations_in_flight",
				Help: "Transcripts currently being translated",
			},
		),
	}
}

// Outcome labels for TranslationsTotal.
const (
	outcomeTranslated = "translated"
	outcomeFailed     = "failed"
	outcomeSkipped    = "skipped"
)
