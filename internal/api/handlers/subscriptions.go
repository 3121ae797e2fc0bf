package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/stream"
	"github.com/unations/matchengine/pkg/httputil"
	"github.com/unations/matchengine/pkg/logger"
)

// SubscriptionHandler manages standing opportunity subscriptions over
// REST. Subscriptions created here deliver matches by POSTing the
// opportunity to the caller's webhook; live WebSocket clients register
// their own subscriptions through the feed handler instead.
type SubscriptionHandler struct {
	dispatcher *stream.Dispatcher
	webhooks   *httputil.Client
	logger     *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(dispatcher *stream.Dispatcher, webhooks *httputil.Client, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		dispatcher: dispatcher,
		webhooks:   webhooks,
		logger:     log,
	}
}

// CreateSubscriptionRequest registers a webhook subscription.
type CreateSubscriptionRequest struct {
	Filter     stream.Filter     `json:"filter"`
	WebhookURL string            `json:"webhook_url"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// SubscriptionResponse is the API view of a subscription.
type SubscriptionResponse struct {
	ID        string        `json:"id"`
	Filter    stream.Filter `json:"filter"`
	Status    stream.Status `json:"status"`
	CreatedAt string        `json:"created_at"`
}

// Create registers a webhook subscription
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	target, err := url.Parse(req.WebhookURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		respondError(w, http.StatusBadRequest, "webhook_url must be an absolute http(s) URL")
		return
	}

	sub, err := h.dispatcher.Subscribe(req.Filter, h.webhookCallback(req.WebhookURL, req.Headers))
	if err != nil {
		if errors.Is(err, stream.ErrStreamClosed) {
			respondError(w, http.StatusServiceUnavailable, "Stream is shut down")
			return
		}
		h.logger.WithError(err).Error("Failed to create subscription")
		respondError(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	respondJSON(w, http.StatusCreated, subscriptionView(sub))
}

// webhookCallback builds the delivery callback for a webhook subscription.
func (h *SubscriptionHandler) webhookCallback(webhookURL string, headers map[string]string) stream.Callback {
	return func(ctx context.Context, opp *contracts.Opportunity) error {
		resp, err := h.webhooks.PostJSONWithHeaders(ctx, webhookURL, opp, headers)
		if err != nil {
			return fmt.Errorf("webhook delivery failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil
	}
}

// Get returns a subscription's current state
// GET /api/v1/subscriptions/{id}
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	sub, ok := h.dispatcher.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	respondJSON(w, http.StatusOK, subscriptionView(sub))
}

// Pause suspends delivery for a subscription
// POST /api/v1/subscriptions/{id}/pause
func (h *SubscriptionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, mux.Vars(r)["id"], h.dispatcher.Pause)
}

// Resume reactivates a paused subscription. Opportunities published while
// paused are not replayed
// POST /api/v1/subscriptions/{id}/resume
func (h *SubscriptionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, mux.Vars(r)["id"], h.dispatcher.Resume)
}

func (h *SubscriptionHandler) transition(w http.ResponseWriter, id string, op func(string) error) {
	err := op(id)
	if errors.Is(err, stream.ErrSubscriptionNotFound) {
		respondError(w, http.StatusNotFound, "Subscription not found")
		return
	}
	if errors.Is(err, stream.ErrStreamClosed) {
		respondError(w, http.StatusServiceUnavailable, "Stream is shut down")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to change subscription state")
		respondError(w, http.StatusInternalServerError, "Failed to change subscription state")
		return
	}

	sub, ok := h.dispatcher.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Subscription not found")
		return
	}
	respondJSON(w, http.StatusOK, subscriptionView(sub))
}

// Unsubscribe permanently removes a subscription. Removing an unknown or
// already-removed subscription succeeds
// DELETE /api/v1/subscriptions/{id}
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if err := h.dispatcher.Unsubscribe(id); err != nil {
		if errors.Is(err, stream.ErrStreamClosed) {
			respondError(w, http.StatusServiceUnavailable, "Stream is shut down")
			return
		}
		h.logger.WithError(err).Error("Failed to unsubscribe")
		respondError(w, http.StatusInternalServerError, "Failed to unsubscribe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func subscriptionView(sub *stream.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        sub.ID,
		Filter:    sub.Filter,
		Status:    sub.Status(),
		CreatedAt: sub.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
