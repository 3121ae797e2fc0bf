package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/unations/matchengine/internal/api"
	"github.com/unations/matchengine/internal/api/handlers"
	"github.com/unations/matchengine/internal/competitive"
	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/insights"
	"github.com/unations/matchengine/internal/matching"
	"github.com/unations/matchengine/internal/metrics"
	"github.com/unations/matchengine/internal/prediction"
	"github.com/unations/matchengine/internal/scoring"
	"github.com/unations/matchengine/internal/storage"
	"github.com/unations/matchengine/internal/stream"
	"github.com/unations/matchengine/internal/teaming"
	"github.com/unations/matchengine/pkg/config"
	"github.com/unations/matchengine/pkg/database"
	"github.com/unations/matchengine/pkg/httputil"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST and WebSocket API server.

This command:
- Serves match evaluation and win prediction endpoints
- Serves opportunity, candidate, outcome and insights endpoints
- Dispatches newly published opportunities to webhook subscribers
- Serves the live opportunity feed over WebSocket

Endpoints:
  GET  /health                          - Health check
  POST /api/v1/matches/evaluate         - Evaluate a pairing
  POST /api/v1/matches/{id}/prediction  - Predict win probability
  POST /api/v1/opportunities            - Publish an opportunity
  GET  /api/v1/candidates/{id}/insights - Performance insights
  POST /api/v1/subscriptions            - Subscribe a webhook
  GET  /api/v1/feed                     - WebSocket opportunity feed

Example:
  go run ./cmd/matchengine api
  go run ./cmd/matchengine api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "8080", "API server port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Matchengine API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database and apply migrations
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := storage.ApplyMigrations(cmd.Context(), db.Pool, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("Connected to database")

	// 4. Connect to Redis (optional, no-ops when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	cache := redis.NewCache(rdb, "matchengine")

	// 5. Create HTTP client for webhook deliveries
	httpClient := httputil.New(cfg, log)

	// 6. Create repositories
	opportunityRepo := storage.NewOpportunityRepo(db.Pool)
	candidateRepo := storage.NewCandidateRepo(db.Pool)
	matchRepo := storage.NewMatchRepo(db.Pool)
	outcomeRepo := storage.NewOutcomeRepo(db.Pool)

	// 7. Create opportunity stream dispatcher
	dispatcher := stream.NewDispatcher(log, nil)

	// 8. Create evaluator with team composer
	composer := teaming.NewComposer(teamingConfig(cfg), log)
	evaluator := matching.NewEvaluator(scoring.DefaultRubric(), composer, log)

	// 9. Create win predictor
	estimator := newEstimator(cfg, rdb, cache, log)
	history := insights.NewRepoHistoryProvider(outcomeRepo, opportunityRepo)
	predictor := prediction.NewPredictor(estimator, history, log.Zerolog())

	// 10. Create insights aggregator
	aggregator := insights.NewAggregator(matchRepo, outcomeRepo, opportunityRepo, cache, log)

	// 11. Register metrics and start the metrics server
	engineMetrics := metrics.New()
	metrics.RegisterStream(prometheus.DefaultRegisterer, dispatcher)

	if cfg.MetricsEnabled {
		metrics.StartServer(cfg.MetricsPort, db.Ping, log)
	}

	// 12. Create handlers
	matchHandler := handlers.NewMatchHandler(evaluator, predictor, matchRepo, opportunityRepo, engineMetrics, log)
	opportunityHandler := handlers.NewOpportunityHandler(opportunityRepo, matchRepo, dispatcher, redis.NewRateLimiter(rdb, "matchengine"), log)
	candidateHandler := handlers.NewCandidateHandler(candidateRepo, log)
	subscriptionHandler := handlers.NewSubscriptionHandler(dispatcher, httpClient, log)
	outcomeHandler := handlers.NewOutcomeHandler(outcomeRepo, engineMetrics, log)
	insightsHandler := handlers.NewInsightsHandler(aggregator, log)
	feedHandler := handlers.NewFeedHandler(dispatcher, log)
	healthHandler := handlers.NewHealthHandler(db, rdb, dispatcher, log)

	// 13. Create router
	router := api.NewRouter(
		matchHandler,
		opportunityHandler,
		candidateHandler,
		subscriptionHandler,
		outcomeHandler,
		insightsHandler,
		feedHandler,
		healthHandler,
		log,
	)

	// 14. Create server
	server := api.New(cfg, log, router)

	// 15. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/v1/matches/evaluate")
	fmt.Println("  POST /api/v1/matches/{id}/prediction")
	fmt.Println("  POST /api/v1/opportunities")
	fmt.Println("  GET  /api/v1/candidates/{id}/insights")
	fmt.Println("  POST /api/v1/subscriptions")
	fmt.Println("  GET  /api/v1/feed (WebSocket)")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout. The dispatcher stops after the HTTP
	// server so in-flight publishes still reach their subscribers.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	dispatcher.Stop()

	log.Info("Server stopped")
	return nil
}

// teamingConfig maps the environment-tunable formation coefficients onto
// the composer config, keeping the default compatibility blend.
func teamingConfig(cfg *config.Config) teaming.Config {
	tc := teaming.DefaultConfig()
	tc.MaxPartners = cfg.Engine.MaxPartners
	tc.PrimeLeadShare = cfg.Engine.PrimeLeadShare
	tc.JointVentureLeadShare = cfg.Engine.JointVentureLeadShare
	tc.BondingRatio = cfg.Engine.BondingRatio
	return tc
}

// newEstimator returns the remote competitive estimator when a base URL is
// configured, otherwise the fixed low-competition fallback. The remote
// client carries the collaborator timeout and a Redis-backed sliding
// window limit shared across engine instances.
func newEstimator(cfg *config.Config, rdb *redis.Client, cache *redis.Cache, log *logger.Logger) contracts.CompetitiveEstimator {
	if cfg.Estimator.BaseURL == "" {
		log.Info("No estimator configured, using static competitive estimates")
		return competitive.NewStaticEstimator()
	}

	client := httputil.NewWithTimeout(cfg, log, cfg.Estimator.Timeout).
		WithRateLimiter(redis.NewRateLimiter(rdb, "matchengine"), redis.EstimatorRateLimit)

	log.WithField("base_url", cfg.Estimator.BaseURL).Info("Using remote competitive estimator")
	return competitive.NewRemoteEstimator(cfg.Estimator, client, cache, log)
}
