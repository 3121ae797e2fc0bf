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

// MatchRepo stores match records. Matches are immutable: Save only ever
// inserts, and a re-evaluation writes a fresh row whose supersedes_id
// points at the row it replaces.
type MatchRepo struct {
	pool *pgxpool.Pool
}

// NewMatchRepo creates a match repository.
func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Save inserts a match record.
func (r *MatchRepo) Save(ctx context.Context, match *contracts.Match) error {
	doc, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	query := `
		INSERT INTO matches (id, opportunity_id, candidate_id, overall_score, supersedes_id, document, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		match.ID,
		match.OpportunityID,
		match.CandidateID,
		match.OverallScore,
		match.SupersedesID,
		doc,
		match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	return nil
}

// GetByID loads a single match.
func (r *MatchRepo) GetByID(ctx context.Context, id string) (*contracts.Match, error) {
	query := `SELECT document FROM matches WHERE id = $1`

	var doc []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	var match contracts.Match
	if err := json.Unmarshal(doc, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &match, nil
}

// ListByCandidate returns a candidate's matches created inside the window,
// oldest first.
func (r *MatchRepo) ListByCandidate(ctx context.Context, candidateID string, from, to time.Time) ([]*contracts.Match, error) {
	query := `
		SELECT document FROM matches
		WHERE candidate_id = $1
		  AND created_at >= $2
		  AND created_at <= $3
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, candidateID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches by candidate: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// ListByOpportunity returns every match recorded for an opportunity,
// strongest first.
func (r *MatchRepo) ListByOpportunity(ctx context.Context, opportunityID string) ([]*contracts.Match, error) {
	query := `
		SELECT document FROM matches
		WHERE opportunity_id = $1
		ORDER BY overall_score DESC, candidate_id ASC
	`

	rows, err := r.pool.Query(ctx, query, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches by opportunity: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func collectMatches(rows pgx.Rows) ([]*contracts.Match, error) {
	var matches []*contracts.Match
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		var match contracts.Match
		if err := json.Unmarshal(doc, &match); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match: %w", err)
		}
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return matches, nil
}
