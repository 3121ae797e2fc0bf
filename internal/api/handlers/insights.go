package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/unations/matchengine/internal/insights"
	"github.com/unations/matchengine/pkg/logger"
)

// InsightsHandler serves candidate performance summaries.
type InsightsHandler struct {
	aggregator *insights.Aggregator
	logger     *logger.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(aggregator *insights.Aggregator, log *logger.Logger) *InsightsHandler {
	return &InsightsHandler{
		aggregator: aggregator,
		logger:     log,
	}
}

// Get returns a candidate's performance summary for a period
// GET /api/v1/candidates/{id}/insights?period=3M
func (h *InsightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	candidateID := vars["id"]

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "3M"
	}

	summary, err := h.aggregator.Summarize(ctx, candidateID, period)
	if errors.Is(err, insights.ErrCandidateRequired) {
		respondError(w, http.StatusBadRequest, "candidate id is required")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"candidate_id": candidateID,
			"period":       period,
		}).Error("Failed to summarize insights")
		respondError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
