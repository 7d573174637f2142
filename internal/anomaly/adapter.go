// Package anomaly adapts the external isolation-forest ensemble to the
// narrow fit/score contract the detection service needs. The splitting and
// ensembling algorithm itself lives in the collaborator library and is not
// reimplemented here.
package anomaly

import (
	"fmt"

	"github.com/hed1ad/goguardml/pkg/detectors/iforest"

	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
)

// ensemble is the capability surface this adapter consumes from the
// collaborator: fit on a feature matrix, score rows, expose the fitted
// anomaly threshold.
type ensemble interface {
	Fit(data [][]float64) error
	Predict(data [][]float64) ([]float64, error)
	Threshold() float64
}

// Model is a fitted outlier ensemble plus the sample count it was trained
// on. A Model is immutable once returned by Fit.
type Model struct {
	forest    ensemble
	threshold float64
	samples   int
}

// Fit trains a fresh ensemble on the given feature vectors. Fewer than the
// configured minimum is an input error, not a model error. Fit is
// all-or-nothing: on error no Model is returned and nothing is retained.
func Fit(cfg config.DetectorConfig, vectors []model.FeatureVector) (*Model, error) {
	if len(vectors) < cfg.MinTrainSamples {
		return nil, model.NewValidationError(
			"need at least %d flows to train, got %d", cfg.MinTrainSamples, len(vectors))
	}

	forest := iforest.New(
		iforest.WithTrees(cfg.NumTrees),
		iforest.WithSampleSize(cfg.SampleSize),
		iforest.WithContamination(cfg.Contamination),
		iforest.WithSeed(cfg.Seed),
	)

	if err := forest.Fit(model.Matrix(vectors)); err != nil {
		return nil, fmt.Errorf("failed to fit outlier ensemble: %w", err)
	}

	return &Model{
		forest:    forest,
		threshold: forest.Threshold(),
		samples:   len(vectors),
	}, nil
}

// Samples returns the size of the training corpus behind this model.
func (m *Model) Samples() int {
	return m.samples
}

// Score classifies a single vector. rawDecision is the fitted decision
// value: zero at the anomaly threshold, positive for normal-looking flows,
// negative for anomalous ones, in practice within about [-0.5, 0.5].
func (m *Model) Score(v model.FeatureVector) (isAnomaly bool, rawDecision float64, err error) {
	scores, err := m.forest.Predict([][]float64{v.Floats()})
	if err != nil {
		return false, 0, fmt.Errorf("failed to score vector: %w", err)
	}
	if len(scores) != 1 {
		return false, 0, fmt.Errorf("ensemble returned %d scores for a single vector", len(scores))
	}
	isAnomaly, rawDecision = m.decide(scores[0])
	return isAnomaly, rawDecision, nil
}

// ScoreBatch classifies a set of vectors, preserving length and order.
func (m *Model) ScoreBatch(vectors []model.FeatureVector) (anomalies []bool, rawDecisions []float64, err error) {
	scores, err := m.forest.Predict(model.Matrix(vectors))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to score batch: %w", err)
	}
	if len(scores) != len(vectors) {
		return nil, nil, fmt.Errorf("ensemble returned %d scores for %d vectors", len(scores), len(vectors))
	}

	anomalies = make([]bool, len(scores))
	rawDecisions = make([]float64, len(scores))
	for i, s := range scores {
		anomalies[i], rawDecisions[i] = m.decide(s)
	}
	return anomalies, rawDecisions, nil
}

// decide maps the ensemble's raw score (higher = more anomalous) onto the
// threshold-centered decision value (higher = more normal).
func (m *Model) decide(score float64) (bool, float64) {
	return score >= m.threshold, m.threshold - score
}
