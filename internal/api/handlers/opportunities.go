package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/storage"
	"github.com/unations/matchengine/internal/stream"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

// OpportunityHandler handles opportunity intake and lookup endpoints.
// Newly created opportunities are pushed into the stream dispatcher so
// standing subscriptions see them immediately. Intake shares one rate
// limit across all engine instances; a nil limiter disables it.
type OpportunityHandler struct {
	opportunities contracts.OpportunityRepository
	matches       contracts.MatchRepository
	dispatcher    *stream.Dispatcher
	limiter       *redis.RateLimiter
	logger        *logger.Logger
}

// NewOpportunityHandler creates a new opportunity handler.
func NewOpportunityHandler(
	opportunities contracts.OpportunityRepository,
	matches contracts.MatchRepository,
	dispatcher *stream.Dispatcher,
	limiter *redis.RateLimiter,
	log *logger.Logger,
) *OpportunityHandler {
	return &OpportunityHandler{
		opportunities: opportunities,
		matches:       matches,
		dispatcher:    dispatcher,
		limiter:       limiter,
		logger:        log,
	}
}

// Create stores a new opportunity and publishes it to the stream
// POST /api/v1/opportunities
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.limiter != nil {
		allowed, _, err := h.limiter.Allow(ctx, redis.IngestRateLimit)
		if err != nil {
			// A failing limiter does not block intake.
			h.logger.WithError(err).Warn("Ingest rate limit check failed")
		} else if !allowed {
			respondError(w, http.StatusTooManyRequests, "Ingestion rate limit exceeded")
			return
		}
	}

	var opp contracts.Opportunity
	if err := json.NewDecoder(r.Body).Decode(&opp); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if opp.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	if opp.ID == "" {
		opp.ID = uuid.NewString()
	}
	if opp.Status == "" {
		opp.Status = contracts.OpportunityOpen
	}
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = time.Now()
	}

	if err := h.opportunities.Save(ctx, &opp); err != nil {
		h.logger.WithError(err).Error("Failed to save opportunity")
		respondError(w, http.StatusInternalServerError, "Failed to save opportunity")
		return
	}

	// Deliveries outlive this request; publish with a detached context so
	// the client closing the connection cannot cancel them.
	if err := h.dispatcher.Publish(context.WithoutCancel(ctx), &opp); err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"opportunity_id": opp.ID,
		}).Warn("Opportunity saved but not published to stream")
	}

	respondJSON(w, http.StatusCreated, &opp)
}

// ListOpen returns opportunities still accepting submissions
// GET /api/v1/opportunities
func (h *OpportunityHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opps, err := h.opportunities.ListOpen(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list open opportunities")
		respondError(w, http.StatusInternalServerError, "Failed to list opportunities")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":         len(opps),
		"opportunities": opps,
	})
}

// Get returns a single opportunity
// GET /api/v1/opportunities/{id}
func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	opp, err := h.opportunities.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Opportunity not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get opportunity")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opp)
}

// ListMatches returns every match recorded for an opportunity, strongest
// first
// GET /api/v1/opportunities/{id}/matches
func (h *OpportunityHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	matches, err := h.matches.ListByOpportunity(ctx, id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list matches for opportunity")
		respondError(w, http.StatusInternalServerError, "Failed to list matches")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	})
}
