package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/insights"
	"github.com/unations/matchengine/internal/matching"
	"github.com/unations/matchengine/internal/prediction"
	"github.com/unations/matchengine/internal/scoring"
	"github.com/unations/matchengine/internal/storage"
	"github.com/unations/matchengine/internal/teaming"
	"github.com/unations/matchengine/pkg/config"
	"github.com/unations/matchengine/pkg/database"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one opportunity-candidate pairing",
	Long: `Scores a pairing from JSON files without persisting the result.

Reads the opportunity and candidate from files, runs the full scoring
rubric, and prints the breakdown with strengths, gaps, and risks. With
--pool, partner candidates are considered for team composition when the
candidate alone cannot cover the requirements. With --predict, the win
predictor runs against the stored outcome history.

Example:
  go run ./cmd/matchengine evaluate --opportunity opp.json --candidate cand.json
  go run ./cmd/matchengine evaluate --opportunity opp.json --candidate cand.json --pool partners.json
  go run ./cmd/matchengine evaluate --opportunity opp.json --candidate cand.json --predict`,
	RunE: runEvaluate,
}

var (
	// evaluate flags
	evalOpportunityFile string
	evalCandidateFile   string
	evalPoolFile        string
	evalPredict         bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalOpportunityFile, "opportunity", "", "opportunity JSON file")
	evaluateCmd.Flags().StringVar(&evalCandidateFile, "candidate", "", "candidate JSON file")
	evaluateCmd.Flags().StringVar(&evalPoolFile, "pool", "", "partner pool JSON file (array of candidates)")
	evaluateCmd.Flags().BoolVar(&evalPredict, "predict", false, "also predict win probability")
	_ = evaluateCmd.MarkFlagRequired("opportunity")
	_ = evaluateCmd.MarkFlagRequired("candidate")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Matchengine: Evaluate Pairing ===")

	ctx := cmd.Context()

	// Load inputs
	var opp contracts.Opportunity
	if err := readJSONFile(evalOpportunityFile, &opp); err != nil {
		return fmt.Errorf("read opportunity: %w", err)
	}

	var cand contracts.Candidate
	if err := readJSONFile(evalCandidateFile, &cand); err != nil {
		return fmt.Errorf("read candidate: %w", err)
	}

	var pool []*contracts.Candidate
	if evalPoolFile != "" {
		if err := readJSONFile(evalPoolFile, &pool); err != nil {
			return fmt.Errorf("read pool: %w", err)
		}
	}

	fmt.Printf("\n📋 Opportunity: %s (%s)\n", opp.Title, opp.ID)
	fmt.Printf("👤 Candidate: %s (%s)\n", cand.Name, cand.ID)
	if len(pool) > 0 {
		fmt.Printf("🤝 Partner pool: %d candidates\n", len(pool))
	}

	// Initialize dependencies
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	composer := teaming.NewComposer(teamingConfig(cfg), log)
	evaluator := matching.NewEvaluator(scoring.DefaultRubric(), composer, log)

	// Evaluate
	var match *contracts.Match
	if len(pool) > 0 {
		match, err = evaluator.EvaluateWithPool(&opp, &cand, pool)
	} else {
		match, err = evaluator.Evaluate(&opp, &cand)
	}
	if err != nil {
		if matching.IsValidation(err) {
			return fmt.Errorf("invalid input: %w", err)
		}
		return fmt.Errorf("evaluate: %w", err)
	}

	printMatch(match)

	// Predict
	if evalPredict {
		pred, err := predictForMatch(ctx, cfg, log, match, &opp)
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}
		printPrediction(pred)
	}

	return nil
}

func printMatch(match *contracts.Match) {
	fmt.Println("\n=== Match Result ===")
	fmt.Printf("Overall Score: %.1f / 100\n", match.OverallScore)
	fmt.Printf("Urgency: %s\n", match.Urgency)

	fmt.Println("\n📊 Dimension breakdown:")
	fmt.Printf("   %-15s %6.1f\n", "Capability:", match.Scores.Capability)
	fmt.Printf("   %-15s %6.1f\n", "Experience:", match.Scores.Experience)
	fmt.Printf("   %-15s %6.1f\n", "Certification:", match.Scores.Certification)
	fmt.Printf("   %-15s %6.1f\n", "Diversity:", match.Scores.Diversity)
	fmt.Printf("   %-15s %6.1f\n", "Geographic:", match.Scores.Geographic)
	fmt.Printf("   %-15s %6.1f\n", "Financial:", match.Scores.Financial)

	if len(match.Strengths) > 0 {
		fmt.Printf("\n💪 Strengths (%d):\n", len(match.Strengths))
		for _, s := range match.Strengths {
			fmt.Printf("   - %s (%.1f): %s\n", s.Area, s.Score, s.Justification)
		}
	}

	if len(match.Gaps) > 0 {
		fmt.Printf("\n⚠️  Gaps (%d):\n", len(match.Gaps))
		for _, g := range match.Gaps {
			marker := ""
			if g.Critical {
				marker = " [critical]"
			}
			fmt.Printf("   - [%s]%s %s: %s -> %s\n", g.Kind, marker, g.Requirement, g.CurrentState, g.NeededState)
			for _, r := range g.Remediation {
				fmt.Printf("     remediation: %s\n", r.Action)
			}
		}
	}

	if len(match.Risks) > 0 {
		fmt.Printf("\n🚨 Risks (%d):\n", len(match.Risks))
		for _, r := range match.Risks {
			fmt.Printf("   - [%s] probability %.0f%%: %s\n", r.Kind, r.Probability*100, r.Impact)
		}
	}

	if match.Team != nil {
		t := match.Team
		fmt.Println("\n🤝 Proposed Team:")
		fmt.Printf("   Structure: %s (lead share %.1f%%)\n", t.Structure.Type, t.Structure.LeadShare)
		fmt.Printf("   Coverage: %.0f%%", t.Coverage.Percentage)
		if len(t.Coverage.Missing) > 0 {
			fmt.Printf(" (missing: %v)", t.Coverage.Missing)
		}
		fmt.Println()
		fmt.Printf("   Diversity content: %.1f%%\n", t.Structure.DiversityContent)
		fmt.Println("   Partners:")
		for _, p := range t.Partners {
			fmt.Printf("     - %s (%s, %.1f%%)\n", p.Candidate.Name, p.Role, p.Contribution)
		}
	}
}

func printPrediction(pred *contracts.WinPrediction) {
	fmt.Println("\n=== Win Prediction ===")
	fmt.Printf("🎯 Probability: %.1f%%\n", pred.Probability)
	if pred.Degraded {
		fmt.Println("⚠️  Degraded: competitive data unavailable, neutral defaults used")
	}

	fmt.Printf("   Estimated competitors: %d (%d stronger)\n",
		pred.Competitive.EstimatedCompetitors, pred.Competitive.StrongerCompetitors)

	for _, f := range pred.Positives {
		fmt.Printf("   + %s (%+.1f): %s\n", f.Name, f.Impact, f.Explanation)
	}
	for _, f := range pred.Negatives {
		fmt.Printf("   - %s (%+.1f): %s\n", f.Name, f.Impact, f.Explanation)
	}

	if len(pred.Recommendations.MustDo) > 0 {
		fmt.Println("\n📌 Must do:")
		for _, rec := range pred.Recommendations.MustDo {
			fmt.Printf("   - %s\n", rec)
		}
	}
	if len(pred.Recommendations.ShouldDo) > 0 {
		fmt.Println("📌 Should do:")
		for _, rec := range pred.Recommendations.ShouldDo {
			fmt.Printf("   - %s\n", rec)
		}
	}
}

// predictForMatch wires the predictor against the stored outcome history.
func predictForMatch(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	match *contracts.Match,
	opp *contracts.Opportunity,
) (*contracts.WinPrediction, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	opportunityRepo := storage.NewOpportunityRepo(db.Pool)
	outcomeRepo := storage.NewOutcomeRepo(db.Pool)

	estimator := newEstimator(cfg, rdb, redis.NewCache(rdb, "matchengine"), log)
	history := insights.NewRepoHistoryProvider(outcomeRepo, opportunityRepo)
	predictor := prediction.NewPredictor(estimator, history, log.Zerolog())

	return predictor.Predict(ctx, match, opp)
}

// readJSONFile decodes one JSON file into dest.
func readJSONFile(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
