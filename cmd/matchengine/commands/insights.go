package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/insights"
	"github.com/unations/matchengine/internal/storage"
	"github.com/unations/matchengine/pkg/config"
	"github.com/unations/matchengine/pkg/database"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show performance insights for a candidate",
	Long: `Aggregates one candidate's match and outcome history into a
performance summary: volumes, rates, period-over-period trends,
recurring strengths and gaps, and tiered recommendations.

Periods: 1M, 3M, 6M, 1Y, YTD

Example:
  go run ./cmd/matchengine insights --candidate cand-123
  go run ./cmd/matchengine insights --candidate cand-123 --period 1Y`,
	RunE: runInsights,
}

var (
	// insights flags
	insightsCandidate string
	insightsPeriod    string
)

func init() {
	rootCmd.AddCommand(insightsCmd)

	insightsCmd.Flags().StringVar(&insightsCandidate, "candidate", "", "candidate ID")
	insightsCmd.Flags().StringVar(&insightsPeriod, "period", "3M", "reporting period")
	_ = insightsCmd.MarkFlagRequired("candidate")
}

func runInsights(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Matchengine: Insights for %s ===\n\n", insightsCandidate)

	ctx := cmd.Context()

	// Initialize dependencies
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	aggregator := insights.NewAggregator(
		storage.NewMatchRepo(db.Pool),
		storage.NewOutcomeRepo(db.Pool),
		storage.NewOpportunityRepo(db.Pool),
		redis.NewCache(rdb, "matchengine"),
		log,
	)

	summary, err := aggregator.Summarize(ctx, insightsCandidate, insightsPeriod)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	printInsights(summary)
	return nil
}

func printInsights(ins *contracts.Insights) {
	fmt.Printf("📅 Period: %s (%s ~ %s)\n\n",
		ins.Period, ins.From.Format("2006-01-02"), ins.To.Format("2006-01-02"))

	fmt.Println("📊 Activity")
	fmt.Printf("   %-20s %6d\n", "Matches:", ins.TotalMatches)
	fmt.Printf("   %-20s %6d\n", "Submissions:", ins.SubmittedOutcomes)
	fmt.Printf("   %-20s %6d\n", "Wins:", ins.Wins)
	fmt.Printf("   %-20s %5.1f%%\n", "Submission Rate:", ins.SubmissionRate*100)
	fmt.Printf("   %-20s %5.1f%%\n", "Win Rate:", ins.WinRate*100)
	fmt.Printf("   %-20s %6.1f\n", "Average Score:", ins.AverageScore)

	fmt.Println("\n📈 Trends")
	printTrend("Match Quality", ins.Trends.MatchQuality)
	printTrend("Win Rate", ins.Trends.WinRate)
	printTrend("Response Time", ins.Trends.ResponseTime)

	if len(ins.TopStrengths) > 0 {
		fmt.Println("\n💪 Recurring Strengths")
		for _, theme := range ins.TopStrengths {
			fmt.Printf("   - %s (x%d)\n", theme.Name, theme.Count)
		}
	}

	if len(ins.TopGaps) > 0 {
		fmt.Println("\n⚠️  Recurring Gaps")
		for _, theme := range ins.TopGaps {
			marker := ""
			if theme.Critical {
				marker = " [critical]"
			}
			fmt.Printf("   - %s (x%d)%s\n", theme.Name, theme.Count, marker)
		}
	}

	printRecommendationTier("Immediate", ins.Recommendations.Immediate)
	printRecommendationTier("Strategic", ins.Recommendations.Strategic)
	printRecommendationTier("Partnership", ins.Recommendations.Partnership)
}

func printTrend(name string, t contracts.Trend) {
	arrow := "→"
	switch t.Direction {
	case contracts.TrendImproving:
		arrow = "↑"
	case contracts.TrendDeclining:
		arrow = "↓"
	}
	fmt.Printf("   %-15s %s %.1f (was %.1f, %+.1f)\n", name+":", arrow, t.Current, t.Previous, t.Delta)
}

func printRecommendationTier(name string, recs []string) {
	if len(recs) == 0 {
		return
	}
	fmt.Printf("\n📌 %s\n", name)
	for _, rec := range recs {
		fmt.Printf("   - %s\n", rec)
	}
}
