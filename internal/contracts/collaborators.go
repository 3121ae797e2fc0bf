package contracts

import "context"

// CompetitiveEstimator supplies the expected competitive field for an
// opportunity. Implementations may be slow; callers bound them with a
// context deadline and fall back to a neutral default.
type CompetitiveEstimator interface {
	EstimateCompetition(ctx context.Context, opp *Opportunity, candidateScore float64) (*CompetitiveAnalysis, error)
}

// HistoryProvider supplies the candidate's prior relationship with the
// organization behind an opportunity.
type HistoryProvider interface {
	LookupHistory(ctx context.Context, candidateID string, opp *Opportunity) (*HistoricalContext, error)
}

// NotificationSink receives one notification per successful subscription
// match. Implementations must not be assumed fast or reliable; delivery
// failures are logged and never propagated.
type NotificationSink interface {
	NotifyMatch(ctx context.Context, subscriptionID string, opp *Opportunity) error
}
