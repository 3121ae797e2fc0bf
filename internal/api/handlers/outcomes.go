package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/metrics"
	"github.com/unations/matchengine/pkg/logger"
)

// OutcomeHandler records bid outcomes reported back by buyers and
// suppliers. Outcomes feed the insights summaries and the win predictor's
// history signal.
type OutcomeHandler struct {
	outcomes contracts.OutcomeRepository
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewOutcomeHandler creates a new outcome handler.
func NewOutcomeHandler(outcomes contracts.OutcomeRepository, m *metrics.Metrics, log *logger.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		outcomes: outcomes,
		metrics:  m,
		logger:   log,
	}
}

// Record appends a bid outcome
// POST /api/v1/outcomes
func (h *OutcomeHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var outcome contracts.Outcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if outcome.MatchID == "" || outcome.CandidateID == "" {
		respondError(w, http.StatusBadRequest, "match_id and candidate_id are required")
		return
	}
	if outcome.Won && !outcome.Submitted {
		respondError(w, http.StatusBadRequest, "a won outcome must also be submitted")
		return
	}

	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = time.Now()
	}

	if err := h.outcomes.Record(ctx, &outcome); err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"match_id": outcome.MatchID,
		}).Error("Failed to record outcome")
		respondError(w, http.StatusInternalServerError, "Failed to record outcome")
		return
	}

	h.metrics.OutcomesRecorded.Inc()

	respondJSON(w, http.StatusCreated, &outcome)
}
