package contracts

import "time"

// TrendDirection labels how a metric moved between two periods.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendSteady    TrendDirection = "steady"
)

// Trend compares one metric across the current and the immediately
// preceding period of equal length.
type Trend struct {
	Current   float64        `json:"current"`
	Previous  float64        `json:"previous"`
	Delta     float64        `json:"delta"`
	Direction TrendDirection `json:"direction"`
}

// InsightTrends holds the period-over-period movements the aggregator
// tracks. ResponseTime is measured in days from evaluation to recorded
// outcome; a falling value is improving.
type InsightTrends struct {
	MatchQuality Trend `json:"match_quality"`
	WinRate      Trend `json:"win_rate"`
	ResponseTime Trend `json:"response_time"`
}

// RecurringTheme is a strength area or gap requirement that reappeared
// across a period's matches.
type RecurringTheme struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Critical bool   `json:"critical,omitempty"`
}

// InsightRecommendations tiers strategic advice by time horizon.
type InsightRecommendations struct {
	Immediate   []string `json:"immediate"`
	Strategic   []string `json:"strategic"`
	Partnership []string `json:"partnership"`
}

// Insights is the aggregated performance summary for one candidate over
// one reporting period.
type Insights struct {
	CandidateID string    `json:"candidate_id"`
	Period      string    `json:"period"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`

	TotalMatches      int     `json:"total_matches"`
	SubmittedOutcomes int     `json:"submitted_outcomes"`
	Wins              int     `json:"wins"`
	SubmissionRate    float64 `json:"submission_rate"`
	WinRate           float64 `json:"win_rate"`
	AverageScore      float64 `json:"average_score"`

	Trends InsightTrends `json:"trends"`

	TopStrengths []RecurringTheme `json:"top_strengths"`
	TopGaps      []RecurringTheme `json:"top_gaps"`

	Recommendations InsightRecommendations `json:"recommendations"`

	GeneratedAt time.Time `json:"generated_at"`
}
