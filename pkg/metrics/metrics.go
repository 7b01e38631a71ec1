// Package metrics provides Prometheus metrics for quality plan generation
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlansGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qp_plans_generated_total",
			Help: "Total number of quality plans generated",
		},
		[]string{"source"},
	)

	PlanErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qp_plan_errors_total",
			Help: "Total number of plan generation failures",
		},
		[]string{"source"},
	)

	MaterialFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qp_material_fallbacks_total",
			Help: "Plans built against the default material because no grade alias matched",
		},
	)

	ExtractionDefaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qp_extraction_defaults_total",
			Help: "Imported fields that fell back to an empty value or default",
		},
		[]string{"field"},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qp_render_duration_seconds",
			Help:    "Time taken to render a quality plan document",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RenderErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qp_render_errors_total",
			Help: "Total number of failed document renders",
		},
	)

	ArchiveUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qp_archive_uploads_total",
			Help: "Rendered documents uploaded to the archive",
		},
		[]string{"status"},
	)

	StoredPlans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qp_stored_plans",
			Help: "Number of plans held in memory",
		},
	)
)

// RecordPlan records a successfully generated plan
func RecordPlan(source string, materialMatched bool, unmatched []string) {
	PlansGenerated.WithLabelValues(source).Inc()
	if !materialMatched {
		MaterialFallbacks.Inc()
	}
	for _, field := range unmatched {
		ExtractionDefaults.WithLabelValues(field).Inc()
	}
}
