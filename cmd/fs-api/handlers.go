package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"FlowSentry/internal/detector"
	"FlowSentry/internal/model"
	"FlowSentry/internal/query"
	"FlowSentry/internal/snapshot"
)

// APIHandler holds the dependencies for API handlers. querier and
// snapshots may be nil when their backends are not configured.
type APIHandler struct {
	svc       *detector.Service
	querier   query.Querier
	snapshots *snapshot.Writer
	logger    *zap.Logger
}

// healthHandler reports liveness and training state. Never errors.
func (h *APIHandler) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

// trainHandler fits a fresh model on the posted flows. The body may be a
// bare list of flows or an object holding one under "flows".
func (h *APIHandler) trainHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	flows, err := model.DecodeFlows(body)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	summary, err := h.svc.Train(flows)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if h.snapshots != nil {
		if err := h.snapshots.WriteCorpus(h.svc.TrainingCorpus()); err != nil {
			h.logger.Error("failed to snapshot training corpus", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

// detectHandler scores a single flow, falling back to the rule-based
// heuristic when no model is trained. It has no training-state error path.
func (h *APIHandler) detectHandler(w http.ResponseWriter, r *http.Request) {
	flow, err := decodeFlow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Detect(flow)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// predictHandler scores a single flow against the trained model.
func (h *APIHandler) predictHandler(w http.ResponseWriter, r *http.Request) {
	flow, err := decodeFlow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Predict(flow)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// batchPredictHandler scores a list of flows against the trained model,
// preserving input order. Accepts the same body shapes as /train.
func (h *APIHandler) batchPredictHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	flows, err := model.DecodeFlows(body)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result, err := h.svc.BatchPredict(flows)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// anomaliesHandler returns recent anomalous detection events from storage.
func (h *APIHandler) anomaliesHandler(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.querier.RecentAnomalies(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to query anomalies", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	total, anomalies, err := h.querier.Totals(r.Context())
	if err != nil {
		h.logger.Error("failed to query detection totals", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"anomalies":       events,
		"total_scored":    total,
		"total_anomalies": anomalies,
	})
}

// writeServiceError maps the detection service's error kinds onto HTTP
// status codes: caller mistakes are 400, everything else 500.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	var notTrainedErr *model.ModelNotTrainedError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &notTrainedErr):
		writeError(w, http.StatusBadRequest, err)
	default:
		h.logger.Error("detection service failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeFlow(r *http.Request) (model.FlowRecord, error) {
	var flow model.FlowRecord
	if err := json.NewDecoder(r.Body).Decode(&flow); err != nil {
		return model.FlowRecord{}, errors.New("expected a flow object")
	}
	return flow, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
