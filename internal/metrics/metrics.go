package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Detection service metrics for production monitoring.
var (
	FlowsScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowsentry_flows_scored_total",
			Help: "Total number of flows scored",
		},
		[]string{"source", "verdict"}, // source: model/rules, verdict: normal/anomaly
	)

	TrainingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowsentry_trainings_total",
			Help: "Total number of training runs",
		},
		[]string{"status"}, // status: ok/error
	)

	TrainingSamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowsentry_training_samples",
			Help: "Sample count of the currently active model",
		},
	)

	LastAnomalyScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowsentry_last_anomaly_score",
			Help: "Most recent anomaly score (0-100)",
		},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowsentry_scoring_duration_seconds",
			Help:    "Time spent scoring a single flow",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100us to ~1.6s
		},
		[]string{"source"},
	)

	EventsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowsentry_events_written_total",
			Help: "Detection events written to a storage backend",
		},
		[]string{"writer", "status"},
	)
)

// Verdict returns the metric label for an anomaly decision.
func Verdict(isAnomaly bool) string {
	if isAnomaly {
		return "anomaly"
	}
	return "normal"
}
