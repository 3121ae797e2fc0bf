package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unations/matchengine/internal/insights"
	"github.com/unations/matchengine/internal/scheduler"
	"github.com/unations/matchengine/internal/scheduler/jobs"
	"github.com/unations/matchengine/internal/storage"
	"github.com/unations/matchengine/pkg/config"
	"github.com/unations/matchengine/pkg/database"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage scheduled jobs",
	Long: `Starts the scheduler daemon or manages its jobs.

This command:
- Starts the scheduler daemon
- Lists registered jobs
- Shows job execution history

Subcommands:
  start   - Start the scheduler
  list    - List registered jobs
  run     - Run one job immediately
  status  - Show job execution statistics

Example:
  go run ./cmd/matchengine scheduler start
  go run ./cmd/matchengine scheduler list
  go run ./cmd/matchengine scheduler run expiry_sweep`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and schedules all registered jobs.

Registered jobs:
- expiry_sweep: hourly (closes open opportunities past their deadline)
- insights_snapshot: daily at 02:00 (persists per-candidate insights)

Stop the scheduler with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job execution statistics",
		RunE:  showJobStats,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Matchengine Scheduler ===")

	// Initialize dependencies
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	registered := sched.GetAllJobs()

	fmt.Println("Registered jobs:")
	for _, jobName := range registered {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job started (running in background)")
	return nil
}

func showJobStats(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for jobName, stat := range stats {
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

func initScheduler() (*scheduler.Scheduler, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Create repositories
	opportunityRepo := storage.NewOpportunityRepo(db.Pool)
	candidateRepo := storage.NewCandidateRepo(db.Pool)
	matchRepo := storage.NewMatchRepo(db.Pool)
	outcomeRepo := storage.NewOutcomeRepo(db.Pool)
	snapshotRepo := storage.NewInsightsSnapshotRepo(db.Pool)

	// 6. Create insights aggregator
	aggregator := insights.NewAggregator(
		matchRepo,
		outcomeRepo,
		opportunityRepo,
		redis.NewCache(rdb, "matchengine"),
		log,
	)

	// 7. Create scheduler
	sched := scheduler.New(log)

	// 8. Register jobs
	if err := sched.AddJob(jobs.NewExpirySweepJob(opportunityRepo, log)); err != nil {
		return nil, fmt.Errorf("register expiry job: %w", err)
	}
	if err := sched.AddJob(jobs.NewInsightsSnapshotJob(aggregator, candidateRepo, snapshotRepo, log)); err != nil {
		return nil, fmt.Errorf("register insights job: %w", err)
	}

	return sched, nil
}
