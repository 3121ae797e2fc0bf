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

// CandidateRepo mirrors supplier profiles into PostgreSQL. Profiles are
// owned by the external profile service; the engine stores the latest copy
// it has seen and reads from that.
type CandidateRepo struct {
	pool *pgxpool.Pool
}

// NewCandidateRepo creates a candidate repository.
func NewCandidateRepo(pool *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{pool: pool}
}

// Save inserts or replaces a candidate profile.
func (r *CandidateRepo) Save(ctx context.Context, cand *contracts.Candidate) error {
	doc, err := json.Marshal(cand)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}

	query := `
		INSERT INTO candidates (id, name, document, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			document = EXCLUDED.document,
			updated_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query, cand.ID, cand.Name, doc)
	if err != nil {
		return fmt.Errorf("failed to save candidate: %w", err)
	}

	return nil
}

// GetByID loads a single candidate profile.
func (r *CandidateRepo) GetByID(ctx context.Context, id string) (*contracts.Candidate, error) {
	query := `SELECT document FROM candidates WHERE id = $1`

	var doc []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	var cand contracts.Candidate
	if err := json.Unmarshal(doc, &cand); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
	}

	return &cand, nil
}

// ListByCapability returns candidates declaring the capability as a primary
// or secondary tag. Matching here is exact tag membership; the scoring
// layer applies fuzzy equivalence on top when it needs it.
func (r *CandidateRepo) ListByCapability(ctx context.Context, capability string) ([]*contracts.Candidate, error) {
	query := `
		SELECT document FROM candidates
		WHERE document -> 'primary_capabilities' ? $1
		   OR document -> 'secondary_capabilities' ? $1
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query, capability)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates by capability: %w", err)
	}
	defer rows.Close()

	return collectCandidates(rows)
}

// ListActive returns every mirrored candidate profile ordered by name.
func (r *CandidateRepo) ListActive(ctx context.Context) ([]*contracts.Candidate, error) {
	query := `SELECT document FROM candidates ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	return collectCandidates(rows)
}

func collectCandidates(rows pgx.Rows) ([]*contracts.Candidate, error) {
	var cands []*contracts.Candidate
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}

		var cand contracts.Candidate
		if err := json.Unmarshal(doc, &cand); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
		}
		cands = append(cands, &cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return cands, nil
}
