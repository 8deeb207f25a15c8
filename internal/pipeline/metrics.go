package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textgend",
			Subsystem: "pipeline",
			Name:      "generations_total",
			Help:      "Total number of generation calls by outcome",
		},
		[]string{"backend", "outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textgend",
			Subsystem: "pipeline",
			Name:      "generation_duration_seconds",
			Help:      "Duration of generation calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)

	modelLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "textgend",
			Subsystem: "pipeline",
			Name:      "model_loaded",
			Help:      "1 when the generation model is loaded",
		},
		[]string{"backend", "model"},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, generationDuration, modelLoaded)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalidOptions(err):
		return "invalid"
	default:
		return "error"
	}
}
