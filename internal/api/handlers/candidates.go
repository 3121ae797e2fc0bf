package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/logger"
)

// CandidateHandler handles candidate profile endpoints. Profiles are owned
// by the external profile service; these endpoints mirror them into the
// engine's store.
type CandidateHandler struct {
	candidates contracts.CandidateRepository
	logger     *logger.Logger
}

// NewCandidateHandler creates a new candidate handler.
func NewCandidateHandler(candidates contracts.CandidateRepository, log *logger.Logger) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		logger:     log,
	}
}

// Save mirrors a candidate profile
// POST /api/v1/candidates
func (h *CandidateHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cand contracts.Candidate
	if err := json.NewDecoder(r.Body).Decode(&cand); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if cand.ID == "" || cand.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	if err := h.candidates.Save(ctx, &cand); err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"candidate_id": cand.ID,
		}).Error("Failed to save candidate")
		respondError(w, http.StatusInternalServerError, "Failed to save candidate")
		return
	}

	respondJSON(w, http.StatusOK, &cand)
}

// List returns candidate profiles, optionally narrowed to one capability
// GET /api/v1/candidates?capability=concrete-works
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cands []*contracts.Candidate
	var err error
	if capability := r.URL.Query().Get("capability"); capability != "" {
		cands, err = h.candidates.ListByCapability(ctx, capability)
	} else {
		cands, err = h.candidates.ListActive(ctx)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list candidates")
		respondError(w, http.StatusInternalServerError, "Failed to list candidates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(cands),
		"candidates": cands,
	})
}
