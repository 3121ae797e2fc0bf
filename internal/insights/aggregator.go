package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/logger"
	"github.com/unations/matchengine/pkg/redis"
)

// ErrCandidateRequired rejects summaries requested without a candidate.
var ErrCandidateRequired = errors.New("insights require a candidate id")

// Aggregator computes candidate performance summaries: submission and win
// rates, period-over-period trends, recurring strengths and gaps, and
// tiered recommendations.
type Aggregator struct {
	matches       contracts.MatchRepository
	outcomes      contracts.OutcomeRepository
	opportunities contracts.OpportunityRepository
	cache         *redis.Cache
	logger        *logger.Logger
}

// NewAggregator creates an aggregator. The cache may be nil; summaries
// are then recomputed on every call.
func NewAggregator(
	matches contracts.MatchRepository,
	outcomes contracts.OutcomeRepository,
	opportunities contracts.OpportunityRepository,
	cache *redis.Cache,
	log *logger.Logger,
) *Aggregator {
	return &Aggregator{
		matches:       matches,
		outcomes:      outcomes,
		opportunities: opportunities,
		cache:         cache,
		logger:        log,
	}
}

// Summarize aggregates a candidate's match and outcome records for the
// period ("1M", "3M", "6M", "1Y", "YTD"; anything else falls back to one
// month) and compares them against the immediately preceding window of
// equal length.
func (a *Aggregator) Summarize(ctx context.Context, candidateID, period string) (*contracts.Insights, error) {
	if candidateID == "" {
		return nil, ErrCandidateRequired
	}

	cacheKey := redis.InsightsKey(candidateID, period)
	if a.cache != nil {
		var cached contracts.Insights
		if found, err := a.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	now := time.Now()
	from, to := parsePeriod(period, now)
	prevFrom, prevTo := previousWindow(from, to)

	current, err := a.collect(ctx, candidateID, from, to)
	if err != nil {
		return nil, err
	}
	previous, err := a.collect(ctx, candidateID, prevFrom, prevTo)
	if err != nil {
		return nil, err
	}

	ins := &contracts.Insights{
		CandidateID: candidateID,
		Period:      period,
		From:        from,
		To:          to,

		TotalMatches:      len(current.matches),
		SubmittedOutcomes: current.submitted(),
		Wins:              current.wins(),
		SubmissionRate:    current.submissionRate(),
		WinRate:           current.winRate(),
		AverageScore:      current.averageScore(),

		Trends:       buildTrends(current, previous),
		TopStrengths: topStrengths(current.matches),
		TopGaps:      topGaps(current.matches),

		GeneratedAt: now,
	}
	ins.Recommendations = a.buildRecommendations(ctx, current, previous)

	if a.cache != nil {
		if err := a.cache.Set(ctx, cacheKey, ins, redis.TTLLong); err != nil {
			a.logger.WithError(err).Warn("Failed to cache insights summary")
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"candidate_id":  candidateID,
		"period":        period,
		"total_matches": ins.TotalMatches,
		"win_rate":      ins.WinRate,
		"average_score": ins.AverageScore,
	}).Info("Insights summary completed")

	return ins, nil
}

// parsePeriod resolves a period label to a date range ending now.
func parsePeriod(period string, now time.Time) (time.Time, time.Time) {
	switch period {
	case "1M":
		return now.AddDate(0, -1, 0), now
	case "3M":
		return now.AddDate(0, -3, 0), now
	case "6M":
		return now.AddDate(0, -6, 0), now
	case "1Y":
		return now.AddDate(-1, 0, 0), now
	case "YTD":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), now
	default:
		return now.AddDate(0, -1, 0), now
	}
}

// previousWindow returns the window of equal length immediately before
// [from, to).
func previousWindow(from, to time.Time) (time.Time, time.Time) {
	length := to.Sub(from)
	return from.Add(-length), from
}

// collect loads one window's match and outcome records.
func (a *Aggregator) collect(ctx context.Context, candidateID string, from, to time.Time) (*periodWindow, error) {
	matches, err := a.matches.ListByCandidate(ctx, candidateID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	outcomes, err := a.outcomes.ListByCandidate(ctx, candidateID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	return &periodWindow{matches: matches, outcomes: outcomes}, nil
}
