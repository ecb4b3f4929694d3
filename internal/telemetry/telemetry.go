package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResourceCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "texteval_resource_cache_hits_total",
		Help: "Backend acquisitions served from the resource cache",
	}, []string{"kind"})

	ResourceLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "texteval_resource_loads_total",
		Help: "Backend constructions by outcome",
	}, []string{"kind", "status"})

	ResourceLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "texteval_resource_load_duration_seconds",
		Help:    "Time spent constructing a backend",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 180},
	}, []string{"kind"})

	MetricSoftFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "texteval_metric_soft_failures_total",
		Help: "Metric computations that degraded to a neutral value",
	}, []string{"metric"})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "texteval_evaluation_duration_seconds",
		Help:    "Duration of a full metric bundle computation",
		Buckets: prometheus.DefBuckets,
	})

	Translations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "texteval_translations_total",
		Help: "Translation requests by target language and outcome",
	}, []string{"language", "status"})
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RecordLoad records the outcome and duration of one backend construction.
func RecordLoad(kind string, d time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	ResourceLoads.WithLabelValues(kind, status).Inc()
	ResourceLoadDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordTranslation counts a translation attempt.
func RecordTranslation(language string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	Translations.WithLabelValues(language, status).Inc()
}
