package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unations/matchengine/internal/contracts"
)

// OutcomeRepo stores bid outcomes. The table is append-only; corrections
// are recorded as additional rows rather than updates.
type OutcomeRepo struct {
	pool *pgxpool.Pool
}

// NewOutcomeRepo creates an outcome repository.
func NewOutcomeRepo(pool *pgxpool.Pool) *OutcomeRepo {
	return &OutcomeRepo{pool: pool}
}

// Record appends an outcome row.
func (r *OutcomeRepo) Record(ctx context.Context, outcome *contracts.Outcome) error {
	query := `
		INSERT INTO outcomes (match_id, opportunity_id, candidate_id, submitted, won, final_value, satisfaction, feedback, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		outcome.MatchID,
		outcome.OpportunityID,
		outcome.CandidateID,
		outcome.Submitted,
		outcome.Won,
		outcome.FinalValue,
		outcome.Satisfaction,
		outcome.Feedback,
		outcome.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	return nil
}

// ListByCandidate returns a candidate's outcomes recorded inside the
// window, oldest first.
func (r *OutcomeRepo) ListByCandidate(ctx context.Context, candidateID string, from, to time.Time) ([]*contracts.Outcome, error) {
	query := `
		SELECT match_id, opportunity_id, candidate_id, submitted, won, final_value, satisfaction, feedback, recorded_at
		FROM outcomes
		WHERE candidate_id = $1
		  AND recorded_at >= $2
		  AND recorded_at <= $3
		ORDER BY recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, candidateID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	return collectOutcomes(rows)
}

func collectOutcomes(rows pgx.Rows) ([]*contracts.Outcome, error) {
	var outcomes []*contracts.Outcome
	for rows.Next() {
		var o contracts.Outcome
		err := rows.Scan(
			&o.MatchID,
			&o.OpportunityID,
			&o.CandidateID,
			&o.Submitted,
			&o.Won,
			&o.FinalValue,
			&o.Satisfaction,
			&o.Feedback,
			&o.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}

	return outcomes, nil
}
