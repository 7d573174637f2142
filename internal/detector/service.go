// Package detector orchestrates anomaly detection: it owns the trained /
// untrained model state and dispatches single and batch scoring requests to
// either the fitted ensemble or the rule-based fallback.
package detector

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"FlowSentry/internal/anomaly"
	"FlowSentry/internal/config"
	"FlowSentry/internal/feature"
	"FlowSentry/internal/metrics"
	"FlowSentry/internal/model"
	"FlowSentry/internal/rules"
)

const (
	reasonDeviates = "ML-based detection: flow deviates from normal patterns"
	reasonMatches  = "ML-based detection: flow matches normal patterns"
)

// Service owns the process-wide model state. The zero state is untrained;
// Train atomically replaces the entire model, so concurrent readers observe
// either the previous fully-formed model or the new one, never a partial
// fit.
type Service struct {
	cfg    config.DetectorConfig
	logger *zap.Logger

	mu     sync.RWMutex
	model  *anomaly.Model     // nil while untrained
	corpus []model.FlowRecord // flows behind the active model, for snapshots
}

// NewService creates a detection service in the untrained state.
func NewService(cfg config.DetectorConfig, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// Train fits a fresh model on the given flows and swaps it in. A failed fit
// leaves the previous state untouched. Fewer flows than the configured
// minimum is a ValidationError.
func (s *Service) Train(flows []model.FlowRecord) (model.TrainSummary, error) {
	vectors := feature.ExtractAll(flows)

	fitted, err := anomaly.Fit(s.cfg, vectors)
	if err != nil {
		metrics.TrainingsTotal.WithLabelValues("error").Inc()
		return model.TrainSummary{}, err
	}

	corpus := make([]model.FlowRecord, len(flows))
	copy(corpus, flows)

	s.mu.Lock()
	s.model = fitted
	s.corpus = corpus
	s.mu.Unlock()

	metrics.TrainingsTotal.WithLabelValues("ok").Inc()
	metrics.TrainingSamples.Set(float64(len(flows)))
	s.logger.Info("model trained",
		zap.Int("samples", len(flows)),
		zap.Int("features", model.FeatureCount))

	return model.TrainSummary{
		Status:   "trained",
		Samples:  len(flows),
		Features: model.FeatureCount,
	}, nil
}

// Detect scores a flow with whatever is available: the fitted model when
// trained, the rule-based heuristic otherwise. It has no training-state
// error path; its purpose is to always answer.
func (s *Service) Detect(flow model.FlowRecord) (model.DetectionResult, error) {
	start := time.Now()

	active := s.activeModel()
	if active == nil {
		result := rules.Detect(flow)
		s.observe(model.SourceRules, result.Score, result.IsAnomaly, start)
		return result, nil
	}

	isAnomaly, raw, err := active.Score(feature.Extract(flow))
	if err != nil {
		return model.DetectionResult{}, err
	}

	result := model.DetectionResult{
		Score:     normalizeScore(raw),
		IsAnomaly: isAnomaly,
		Reason:    reasonMatches,
	}
	if isAnomaly {
		result.Reason = reasonDeviates
	}
	s.observe(model.SourceModel, result.Score, isAnomaly, start)
	return result, nil
}

// Predict scores a flow against the trained model only. In the untrained
// state it fails with ModelNotTrainedError.
func (s *Service) Predict(flow model.FlowRecord) (model.PredictionResult, error) {
	start := time.Now()

	active := s.activeModel()
	if active == nil {
		return model.PredictionResult{}, &model.ModelNotTrainedError{}
	}

	isAnomaly, raw, err := active.Score(feature.Extract(flow))
	if err != nil {
		return model.PredictionResult{}, err
	}

	score := normalizeScore(raw)
	s.observe(model.SourceModel, score, isAnomaly, start)
	return model.PredictionResult{
		IsAnomaly:  isAnomaly,
		Anomaly:    isAnomaly,
		Score:      score,
		Confidence: abs(raw),
	}, nil
}

// BatchPredict scores a set of flows against the trained model, preserving
// input order and count. An empty input is a ValidationError.
func (s *Service) BatchPredict(flows []model.FlowRecord) (model.BatchResult, error) {
	if len(flows) == 0 {
		return model.BatchResult{}, model.NewValidationError("expected a non-empty list of flows")
	}

	active := s.activeModel()
	if active == nil {
		return model.BatchResult{}, &model.ModelNotTrainedError{}
	}

	start := time.Now()
	anomalies, raws, err := active.ScoreBatch(feature.ExtractAll(flows))
	if err != nil {
		return model.BatchResult{}, err
	}

	result := model.BatchResult{
		Predictions: make([]model.BatchPrediction, len(flows)),
		Total:       len(flows),
	}
	for i := range flows {
		score := normalizeScore(raws[i])
		result.Predictions[i] = model.BatchPrediction{
			Index:      i,
			IsAnomaly:  anomalies[i],
			Anomaly:    anomalies[i],
			Score:      score,
			Confidence: abs(raws[i]),
		}
		if anomalies[i] {
			result.Anomalies++
		}
		metrics.FlowsScoredTotal.WithLabelValues(model.SourceModel, metrics.Verdict(anomalies[i])).Inc()
		metrics.LastAnomalyScore.Set(score)
	}
	metrics.ScoringDuration.WithLabelValues(model.SourceModel).Observe(time.Since(start).Seconds())
	return result, nil
}

// Health reports liveness and the current training state. Always succeeds.
func (s *Service) Health() model.HealthStatus {
	return model.HealthStatus{
		Status:       "healthy",
		ModelTrained: s.activeModel() != nil,
	}
}

// TrainingCorpus returns a copy of the flows the active model was trained
// on, or nil in the untrained state.
func (s *Service) TrainingCorpus() []model.FlowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.corpus == nil {
		return nil
	}
	out := make([]model.FlowRecord, len(s.corpus))
	copy(out, s.corpus)
	return out
}

func (s *Service) activeModel() *anomaly.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *Service) observe(source string, score float64, isAnomaly bool, start time.Time) {
	metrics.FlowsScoredTotal.WithLabelValues(source, metrics.Verdict(isAnomaly)).Inc()
	metrics.ScoringDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	metrics.LastAnomalyScore.Set(score)
}

// normalizeScore rescales a raw decision value onto the bounded 0-100
// anomaly scale; lower decisions (more anomalous) map to higher scores.
func normalizeScore(rawDecision float64) float64 {
	score := (1 - rawDecision) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
