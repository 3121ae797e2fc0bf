package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here only; implementations live in
// internal/storage.

// OpportunityRepository manages opportunity records.
type OpportunityRepository interface {
	Save(ctx context.Context, opp *Opportunity) error
	GetByID(ctx context.Context, id string) (*Opportunity, error)
	ListOpen(ctx context.Context) ([]*Opportunity, error)
	SetStatus(ctx context.Context, id string, status OpportunityStatus) error
	ListExpiredOpen(ctx context.Context, asOf time.Time) ([]*Opportunity, error)
}

// CandidateRepository manages candidate records. Candidates are written by
// the external profile collaborator; this engine only reads and mirrors them.
type CandidateRepository interface {
	Save(ctx context.Context, cand *Candidate) error
	GetByID(ctx context.Context, id string) (*Candidate, error)
	ListByCapability(ctx context.Context, capability string) ([]*Candidate, error)
	ListActive(ctx context.Context) ([]*Candidate, error)
}

// MatchRepository manages immutable match records. Save is insert-only;
// re-evaluation inserts a new match carrying a supersedes reference.
type MatchRepository interface {
	Save(ctx context.Context, match *Match) error
	GetByID(ctx context.Context, id string) (*Match, error)
	ListByCandidate(ctx context.Context, candidateID string, from, to time.Time) ([]*Match, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]*Match, error)
}

// OutcomeRepository manages append-only outcome records.
type OutcomeRepository interface {
	Record(ctx context.Context, outcome *Outcome) error
	ListByCandidate(ctx context.Context, candidateID string, from, to time.Time) ([]*Outcome, error)
}

// InsightsSnapshotRepository persists period summaries so the external
// report generator can consume them without recomputation.
type InsightsSnapshotRepository interface {
	Save(ctx context.Context, ins *Insights) error
	Latest(ctx context.Context, candidateID, period string) (*Insights, error)
}
