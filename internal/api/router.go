package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/unations/matchengine/internal/api/handlers"
	"github.com/unations/matchengine/pkg/logger"
)

// NewRouter creates and configures the HTTP router. All routes are
// registered in this function only.
func NewRouter(
	matchHandler *handlers.MatchHandler,
	opportunityHandler *handlers.OpportunityHandler,
	candidateHandler *handlers.CandidateHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	outcomeHandler *handlers.OutcomeHandler,
	insightsHandler *handlers.InsightsHandler,
	feedHandler *handlers.FeedHandler,
	healthHandler *handlers.HealthHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	// Match evaluation and win prediction
	api.HandleFunc("/matches/evaluate", matchHandler.Evaluate).Methods("POST")
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods("GET")
	api.HandleFunc("/matches/{id}/prediction", matchHandler.Predict).Methods("POST")

	// Opportunities
	api.HandleFunc("/opportunities", opportunityHandler.Create).Methods("POST")
	api.HandleFunc("/opportunities", opportunityHandler.ListOpen).Methods("GET")
	api.HandleFunc("/opportunities/{id}", opportunityHandler.Get).Methods("GET")
	api.HandleFunc("/opportunities/{id}/matches", opportunityHandler.ListMatches).Methods("GET")

	// Candidate profiles and insights
	api.HandleFunc("/candidates", candidateHandler.Save).Methods("POST")
	api.HandleFunc("/candidates", candidateHandler.List).Methods("GET")
	api.HandleFunc("/candidates/{id}/insights", insightsHandler.Get).Methods("GET")

	// Outcome recording
	api.HandleFunc("/outcomes", outcomeHandler.Record).Methods("POST")

	// Stream subscriptions
	api.HandleFunc("/subscriptions", subscriptionHandler.Create).Methods("POST")
	api.HandleFunc("/subscriptions/{id}", subscriptionHandler.Get).Methods("GET")
	api.HandleFunc("/subscriptions/{id}", subscriptionHandler.Unsubscribe).Methods("DELETE")
	api.HandleFunc("/subscriptions/{id}/pause", subscriptionHandler.Pause).Methods("POST")
	api.HandleFunc("/subscriptions/{id}/resume", subscriptionHandler.Resume).Methods("POST")

	// Live opportunity feed over WebSocket
	api.HandleFunc("/feed", feedHandler.Serve).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
