package recommend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageDuration tracks the latency of each pipeline stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ryori_recommend_stage_duration_seconds",
			Help:    "Duration of recommendation pipeline stages in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"stage"},
	)

	// RequestsTotal counts recommendation requests by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ryori_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"},
	)

	// DegradedItemsTotal counts recommendations returned without attributes or chart.
	DegradedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ryori_recommend_degraded_items_total",
			Help: "Total number of degraded recommendation items",
		},
		[]string{"reason"},
	)

	// RendersInFlight is the number of charts being rendered across all requests.
	RendersInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ryori_chart_renders_in_flight",
			Help: "Number of nutrition charts currently being rendered",
		},
	)
)

// Pipeline stages.
const (
	stageValidate = "validate"
	stageEncode   = "encode"
	stageRank     = "rank"
	stageEnrich   = "enrich"
)

// Degraded reasons, also used as metric labels.
const (
	reasonNotFound = "not_found"
	reasonRender   = "render"
	reasonCanceled = "canceled"
)

func observeStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
