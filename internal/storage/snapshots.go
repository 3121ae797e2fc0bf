package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unations/matchengine/internal/contracts"
)

// InsightsSnapshotRepo stores the nightly insight summaries. Rows are
// append-only; readers take the most recent row per candidate and period.
type InsightsSnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewInsightsSnapshotRepo creates a snapshot repository.
func NewInsightsSnapshotRepo(pool *pgxpool.Pool) *InsightsSnapshotRepo {
	return &InsightsSnapshotRepo{pool: pool}
}

// Save appends a snapshot row.
func (r *InsightsSnapshotRepo) Save(ctx context.Context, ins *contracts.Insights) error {
	doc, err := json.Marshal(ins)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	query := `
		INSERT INTO insights_snapshots (candidate_id, period, document, generated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.pool.Exec(ctx, query, ins.CandidateID, ins.Period, doc, ins.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save insights snapshot: %w", err)
	}

	return nil
}

// Latest returns the most recent snapshot for a candidate and period.
func (r *InsightsSnapshotRepo) Latest(ctx context.Context, candidateID, period string) (*contracts.Insights, error) {
	query := `
		SELECT document FROM insights_snapshots
		WHERE candidate_id = $1 AND period = $2
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var doc []byte
	err := r.pool.QueryRow(ctx, query, candidateID, period).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: insights for candidate %s period %s", ErrNotFound, candidateID, period)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insights snapshot: %w", err)
	}

	var ins contracts.Insights
	if err := json.Unmarshal(doc, &ins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal insights: %w", err)
	}

	return &ins, nil
}
