package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/logger"
)

// These tests run against a real database and are skipped in short mode
// or when DATABASE_URL is unset. Rows are written with fresh UUIDs so
// reruns do not collide.

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := ApplyMigrations(ctx, pool, logger.NewNop()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	return pool
}

func TestOpportunityRepo_SaveAndGet(t *testing.T) {
	pool := testPool(t)
	repo := NewOpportunityRepo(pool)
	ctx := context.Background()

	opp := &contracts.Opportunity{
		ID:         uuid.NewString(),
		Title:      "Roadway resurfacing, phase two",
		Industries: []string{"construction"},
		Value:      contracts.ValueRange{Min: 200000, Max: 600000, Currency: "CAD"},
		Location:   contracts.Location{City: "Winnipeg", Region: "Manitoba"},
		Status:     contracts.OpportunityOpen,
		CreatedAt:  time.Now().UTC(),
	}
	opp.Deadlines.Submission = time.Now().Add(30 * 24 * time.Hour).UTC()

	if err := repo.Save(ctx, opp); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByID(ctx, opp.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != opp.Title {
		t.Errorf("Title = %q, want %q", got.Title, opp.Title)
	}
	if got.Status != contracts.OpportunityOpen {
		t.Errorf("Status = %q, want %q", got.Status, contracts.OpportunityOpen)
	}
	if got.Value.Max != opp.Value.Max {
		t.Errorf("Value.Max = %v, want %v", got.Value.Max, opp.Value.Max)
	}

	// Saving again must replace, not duplicate.
	opp.Title = "Roadway resurfacing, phase two (amended)"
	if err := repo.Save(ctx, opp); err != nil {
		t.Fatalf("Save() on existing row error = %v", err)
	}
	got, err = repo.GetByID(ctx, opp.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if got.Title != opp.Title {
		t.Errorf("Title after update = %q, want %q", got.Title, opp.Title)
	}

	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() on missing row error = %v, want ErrNotFound", err)
	}
}

func TestOpportunityRepo_StatusLifecycle(t *testing.T) {
	pool := testPool(t)
	repo := NewOpportunityRepo(pool)
	ctx := context.Background()

	opp := &contracts.Opportunity{
		ID:        uuid.NewString(),
		Title:     "Snow clearing standing offer",
		Status:    contracts.OpportunityOpen,
		CreatedAt: time.Now().UTC(),
	}
	opp.Deadlines.Submission = time.Now().Add(-48 * time.Hour).UTC()

	if err := repo.Save(ctx, opp); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	expired, err := repo.ListExpiredOpen(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("ListExpiredOpen() error = %v", err)
	}
	if !containsOpportunity(expired, opp.ID) {
		t.Errorf("ListExpiredOpen() missing opportunity %s", opp.ID)
	}

	if err := repo.SetStatus(ctx, opp.ID, contracts.OpportunityExpired); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	got, err := repo.GetByID(ctx, opp.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != contracts.OpportunityExpired {
		t.Errorf("Status after SetStatus = %q, want %q", got.Status, contracts.OpportunityExpired)
	}

	expired, err = repo.ListExpiredOpen(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("ListExpiredOpen() after expiry error = %v", err)
	}
	if containsOpportunity(expired, opp.ID) {
		t.Errorf("ListExpiredOpen() still returns expired opportunity %s", opp.ID)
	}

	if err := repo.SetStatus(ctx, uuid.NewString(), contracts.OpportunityExpired); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetStatus() on missing row error = %v, want ErrNotFound", err)
	}
}

func TestCandidateRepo_ListByCapability(t *testing.T) {
	pool := testPool(t)
	repo := NewCandidateRepo(pool)
	ctx := context.Background()

	capability := "capability-" + uuid.NewString()
	primary := &contracts.Candidate{
		ID:                  uuid.NewString(),
		Name:                "Prairie Civil Works",
		PrimaryCapabilities: []string{capability, "excavation"},
	}
	secondary := &contracts.Candidate{
		ID:                    uuid.NewString(),
		Name:                  "Aurora Trades Ltd",
		SecondaryCapabilities: []string{capability},
	}
	unrelated := &contracts.Candidate{
		ID:                  uuid.NewString(),
		Name:                "Harbourline Logistics",
		PrimaryCapabilities: []string{"freight"},
	}

	for _, cand := range []*contracts.Candidate{primary, secondary, unrelated} {
		if err := repo.Save(ctx, cand); err != nil {
			t.Fatalf("Save(%s) error = %v", cand.Name, err)
		}
	}

	got, err := repo.ListByCapability(ctx, capability)
	if err != nil {
		t.Fatalf("ListByCapability() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByCapability() returned %d candidates, want 2", len(got))
	}
	// Ordered by name: Aurora before Prairie.
	if got[0].ID != secondary.ID || got[1].ID != primary.ID {
		t.Errorf("ListByCapability() order = [%s, %s], want [%s, %s]",
			got[0].ID, got[1].ID, secondary.ID, primary.ID)
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	found := 0
	for _, cand := range active {
		if cand.ID == primary.ID || cand.ID == secondary.ID || cand.ID == unrelated.ID {
			found++
		}
	}
	if found != 3 {
		t.Errorf("ListActive() found %d of the saved candidates, want 3", found)
	}
}

func TestMatchRepo_WindowsAndOrdering(t *testing.T) {
	pool := testPool(t)
	repo := NewMatchRepo(pool)
	ctx := context.Background()

	candidateID := uuid.NewString()
	opportunityID := uuid.NewString()
	now := time.Now().UTC()

	inWindow := &contracts.Match{
		ID:            uuid.NewString(),
		OpportunityID: opportunityID,
		CandidateID:   candidateID,
		OverallScore:  72.5,
		CreatedAt:     now.Add(-24 * time.Hour),
	}
	outOfWindow := &contracts.Match{
		ID:            uuid.NewString(),
		OpportunityID: opportunityID,
		CandidateID:   candidateID,
		OverallScore:  88.0,
		SupersedesID:  inWindow.ID,
		CreatedAt:     now.Add(-40 * 24 * time.Hour),
	}

	for _, match := range []*contracts.Match{inWindow, outOfWindow} {
		if err := repo.Save(ctx, match); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := repo.ListByCandidate(ctx, candidateID, now.Add(-7*24*time.Hour), now)
	if err != nil {
		t.Fatalf("ListByCandidate() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != inWindow.ID {
		t.Fatalf("ListByCandidate() = %d matches, want only %s", len(got), inWindow.ID)
	}

	byOpp, err := repo.ListByOpportunity(ctx, opportunityID)
	if err != nil {
		t.Fatalf("ListByOpportunity() error = %v", err)
	}
	if len(byOpp) != 2 {
		t.Fatalf("ListByOpportunity() returned %d matches, want 2", len(byOpp))
	}
	if byOpp[0].ID != outOfWindow.ID {
		t.Errorf("ListByOpportunity() first = %s (score %v), want highest score first",
			byOpp[0].ID, byOpp[0].OverallScore)
	}
	if byOpp[1].SupersedesID != "" {
		t.Errorf("SupersedesID = %q, want empty after round trip", byOpp[1].SupersedesID)
	}

	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() on missing row error = %v, want ErrNotFound", err)
	}
}

func TestOutcomeRepo_RoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := NewOutcomeRepo(pool)
	ctx := context.Background()

	candidateID := uuid.NewString()
	now := time.Now().UTC()

	outcome := &contracts.Outcome{
		MatchID:       uuid.NewString(),
		OpportunityID: uuid.NewString(),
		CandidateID:   candidateID,
		Submitted:     true,
		Won:           true,
		FinalValue:    415000,
		Satisfaction:  4.5,
		Feedback:      "Strong technical submission",
		RecordedAt:    now.Add(-time.Hour),
	}
	if err := repo.Record(ctx, outcome); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := repo.ListByCandidate(ctx, candidateID, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("ListByCandidate() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListByCandidate() returned %d outcomes, want 1", len(got))
	}
	if got[0].FinalValue != outcome.FinalValue {
		t.Errorf("FinalValue = %v, want %v", got[0].FinalValue, outcome.FinalValue)
	}
	if got[0].Satisfaction != outcome.Satisfaction {
		t.Errorf("Satisfaction = %v, want %v", got[0].Satisfaction, outcome.Satisfaction)
	}
	if !got[0].Won {
		t.Error("Won = false, want true")
	}

	empty, err := repo.ListByCandidate(ctx, candidateID, now.Add(-30*time.Minute), now)
	if err != nil {
		t.Fatalf("ListByCandidate() narrow window error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListByCandidate() narrow window returned %d outcomes, want 0", len(empty))
	}
}

func TestInsightsSnapshotRepo_Latest(t *testing.T) {
	pool := testPool(t)
	repo := NewInsightsSnapshotRepo(pool)
	ctx := context.Background()

	candidateID := uuid.NewString()
	now := time.Now().UTC()

	older := &contracts.Insights{
		CandidateID:  candidateID,
		Period:       "3M",
		TotalMatches: 4,
		GeneratedAt:  now.Add(-24 * time.Hour),
	}
	newer := &contracts.Insights{
		CandidateID:  candidateID,
		Period:       "3M",
		TotalMatches: 7,
		GeneratedAt:  now,
	}

	for _, ins := range []*contracts.Insights{older, newer} {
		if err := repo.Save(ctx, ins); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := repo.Latest(ctx, candidateID, "3M")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.TotalMatches != 7 {
		t.Errorf("Latest().TotalMatches = %d, want 7 (the newer snapshot)", got.TotalMatches)
	}

	if _, err := repo.Latest(ctx, candidateID, "1Y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() for unseen period error = %v, want ErrNotFound", err)
	}
}

func containsOpportunity(opps []*contracts.Opportunity, id string) bool {
	for _, opp := range opps {
		if opp.ID == id {
			return true
		}
	}
	return false
}
