package handlers

import (
	"net/http"

	"github.com/unations/matchengine/internal/stream"
	"github.com/unations/matchengine/pkg/database"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

// HealthHandler reports the health of the engine's dependencies.
type HealthHandler struct {
	db         *database.DB
	cache      *redis.Client
	dispatcher *stream.Dispatcher
	logger     *logger.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *database.DB, cache *redis.Client, dispatcher *stream.Dispatcher, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:         db,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Check reports overall service health. The database is the only hard
// dependency; Redis and the stream are reported but never fail the check.
// Unwired dependencies are skipped
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "ok"
	httpStatus := http.StatusOK

	var dbStatus *database.HealthStatus
	if h.db != nil {
		var err error
		dbStatus, err = h.db.HealthCheck(ctx)
		if err != nil || !dbStatus.Healthy {
			h.logger.WithError(err).Warn("Database health check failed")
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	redisStatus := "disabled"
	if h.cache != nil && h.cache.Enabled() {
		if err := h.cache.Redis().Ping(ctx).Err(); err != nil {
			redisStatus = "unreachable"
		} else {
			redisStatus = "ok"
		}
	}

	respondJSON(w, httpStatus, map[string]interface{}{
		"status":   status,
		"service":  "matchengine-api",
		"database": dbStatus,
		"redis":    redisStatus,
		"stream":   h.dispatcher.Stats(),
	})
}
