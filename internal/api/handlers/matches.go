package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/matching"
	"github.com/unations/matchengine/internal/metrics"
	"github.com/unations/matchengine/internal/prediction"
	"github.com/unations/matchengine/internal/storage"
	"github.com/unations/matchengine/pkg/logger"
)

// MatchHandler handles match evaluation and win-prediction endpoints.
type MatchHandler struct {
	evaluator     *matching.Evaluator
	predictor     *prediction.Predictor
	matches       contracts.MatchRepository
	opportunities contracts.OpportunityRepository
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(
	evaluator *matching.Evaluator,
	predictor *prediction.Predictor,
	matches contracts.MatchRepository,
	opportunities contracts.OpportunityRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *MatchHandler {
	return &MatchHandler{
		evaluator:     evaluator,
		predictor:     predictor,
		matches:       matches,
		opportunities: opportunities,
		metrics:       m,
		logger:        log,
	}
}

// EvaluateRequest carries one opportunity-candidate pairing to score. A
// non-empty pool asks for team composition around the candidate as lead;
// supersedes_id marks the evaluation as a re-run of an earlier match.
type EvaluateRequest struct {
	Opportunity  *contracts.Opportunity `json:"opportunity"`
	Candidate    *contracts.Candidate   `json:"candidate"`
	Pool         []*contracts.Candidate `json:"pool,omitempty"`
	SupersedesID string                 `json:"supersedes_id,omitempty"`
}

// Evaluate scores a candidate against an opportunity
// POST /api/v1/matches/evaluate
func (h *MatchHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Opportunity == nil || req.Candidate == nil {
		respondError(w, http.StatusBadRequest, "opportunity and candidate are required")
		return
	}

	start := time.Now()
	var match *contracts.Match
	var err error
	switch {
	case len(req.Pool) > 0:
		match, err = h.evaluator.EvaluateWithPool(req.Opportunity, req.Candidate, req.Pool)
	case req.SupersedesID != "":
		match, err = h.evaluator.Reevaluate(req.Opportunity, req.Candidate, req.SupersedesID)
	default:
		match, err = h.evaluator.Evaluate(req.Opportunity, req.Candidate)
	}
	if err != nil {
		if matching.IsValidation(err) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to evaluate match")
		respondError(w, http.StatusInternalServerError, "Failed to evaluate match")
		return
	}

	if err := h.matches.Save(ctx, match); err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"match_id": match.ID,
		}).Error("Failed to save match")
		respondError(w, http.StatusInternalServerError, "Failed to save match")
		return
	}

	h.metrics.Evaluations.Inc()
	h.metrics.EvaluationDuration.Observe(time.Since(start).Seconds())

	respondJSON(w, http.StatusCreated, match)
}

// Get returns a stored match
// GET /api/v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	match, err := h.matches.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Match not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get match")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// Predict estimates the win probability for a stored match
// POST /api/v1/matches/{id}/prediction
func (h *MatchHandler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	match, err := h.matches.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Match not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get match for prediction")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}

	opp, err := h.opportunities.GetByID(ctx, match.OpportunityID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Opportunity behind the match no longer exists")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get opportunity for prediction")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve opportunity")
		return
	}

	pred, err := h.predictor.Predict(ctx, match, opp)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"match_id": id,
		}).Error("Failed to predict win probability")
		respondError(w, http.StatusInternalServerError, "Failed to generate prediction")
		return
	}

	h.metrics.Predictions.Inc()
	if pred.Degraded {
		h.metrics.PredictionsDegraded.Inc()
	}

	respondJSON(w, http.StatusOK, pred)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
