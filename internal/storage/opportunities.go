package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unations/matchengine/internal/contracts"
)

// OpportunityRepo stores opportunity documents in PostgreSQL. The full
// record lives in a JSONB column; the columns alongside it exist for
// filtering and are kept in sync on every write.
type OpportunityRepo struct {
	pool *pgxpool.Pool
}

// NewOpportunityRepo creates an opportunity repository.
func NewOpportunityRepo(pool *pgxpool.Pool) *OpportunityRepo {
	return &OpportunityRepo{pool: pool}
}

// Save inserts or replaces an opportunity.
func (r *OpportunityRepo) Save(ctx context.Context, opp *contracts.Opportunity) error {
	doc, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunity: %w", err)
	}

	query := `
		INSERT INTO opportunities (id, title, status, submission_deadline, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			submission_deadline = EXCLUDED.submission_deadline,
			document = EXCLUDED.document
	`

	_, err = r.pool.Exec(ctx, query,
		opp.ID,
		opp.Title,
		string(opp.Status),
		opp.Deadlines.Submission,
		doc,
		opp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save opportunity: %w", err)
	}

	return nil
}

// GetByID loads a single opportunity.
func (r *OpportunityRepo) GetByID(ctx context.Context, id string) (*contracts.Opportunity, error) {
	query := `SELECT document FROM opportunities WHERE id = $1`

	var doc []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: opportunity %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	var opp contracts.Opportunity
	if err := json.Unmarshal(doc, &opp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opportunity: %w", err)
	}

	return &opp, nil
}

// ListOpen returns opportunities still accepting submissions, newest first.
func (r *OpportunityRepo) ListOpen(ctx context.Context) ([]*contracts.Opportunity, error) {
	query := `
		SELECT document FROM opportunities
		WHERE status = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, string(contracts.OpportunityOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to list open opportunities: %w", err)
	}
	defer rows.Close()

	return collectOpportunities(rows)
}

// SetStatus transitions an opportunity's lifecycle state. The status is
// written to both the filter column and the stored document.
func (r *OpportunityRepo) SetStatus(ctx context.Context, id string, status contracts.OpportunityStatus) error {
	query := `
		UPDATE opportunities
		SET status = $2,
		    document = jsonb_set(document, '{status}', to_jsonb($2::text))
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to set opportunity status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: opportunity %s", ErrNotFound, id)
	}

	return nil
}

// ListExpiredOpen returns open opportunities whose submission deadline has
// passed as of the given instant. Used by the expiry sweep.
func (r *OpportunityRepo) ListExpiredOpen(ctx context.Context, asOf time.Time) ([]*contracts.Opportunity, error) {
	query := `
		SELECT document FROM opportunities
		WHERE status = $1
		  AND submission_deadline < $2
		ORDER BY submission_deadline ASC
	`

	rows, err := r.pool.Query(ctx, query, string(contracts.OpportunityOpen), asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired opportunities: %w", err)
	}
	defer rows.Close()

	return collectOpportunities(rows)
}

func collectOpportunities(rows pgx.Rows) ([]*contracts.Opportunity, error) {
	var opps []*contracts.Opportunity
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}

		var opp contracts.Opportunity
		if err := json.Unmarshal(doc, &opp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal opportunity: %w", err)
		}
		opps = append(opps, &opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate opportunities: %w", err)
	}

	return opps, nil
}
