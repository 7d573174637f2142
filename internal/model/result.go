package model

import "time"

// DetectionResult is the answer of the always-available detection path.
type DetectionResult struct {
	Score     float64 `json:"score"`
	IsAnomaly bool    `json:"is_anomaly"`
	Reason    string  `json:"reason"`
}

// PredictionResult is the answer of the model-only prediction path. The
// duplicate anomaly/is_anomaly keys and the confidence-instead-of-reason
// field are a compatibility surface for existing consumers; do not unify.
type PredictionResult struct {
	IsAnomaly  bool    `json:"is_anomaly"`
	Anomaly    bool    `json:"anomaly"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// BatchPrediction is one entry of a batch prediction, tagged with the index
// of the flow it was derived from.
type BatchPrediction struct {
	Index      int     `json:"index"`
	IsAnomaly  bool    `json:"is_anomaly"`
	Anomaly    bool    `json:"anomaly"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// BatchResult holds per-flow predictions in input order plus aggregates.
type BatchResult struct {
	Predictions []BatchPrediction `json:"predictions"`
	Total       int               `json:"total"`
	Anomalies   int               `json:"anomalies"`
}

// TrainSummary reports a completed training run.
type TrainSummary struct {
	Status   string `json:"status"`
	Samples  int    `json:"samples"`
	Features int    `json:"features"`
}

// HealthStatus is the always-succeeding liveness answer.
type HealthStatus struct {
	Status       string `json:"status"`
	ModelTrained bool   `json:"model_trained"`
}

// Detection path labels recorded on events and metrics.
const (
	SourceModel = "model"
	SourceRules = "rules"
)

// DetectionEvent is the unit the streaming pipeline persists and the
// anomaly query surface reads back: one scored flow with its verdict.
type DetectionEvent struct {
	ID         string          `json:"id"`
	Flow       FlowRecord      `json:"flow"`
	Result     DetectionResult `json:"result"`
	Source     string          `json:"source"`
	ObservedAt time.Time       `json:"observed_at"`
}
