package matching

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
	"github.com/unations/matchengine/pkg/logger"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(scoring.DefaultRubric(), nil, logger.NewNop())
}

func baseOpportunity() *contracts.Opportunity {
	return &contracts.Opportunity{
		ID:                     "opp-1",
		Title:                  "Facility engineering retainer",
		RequiredCapabilities:   []string{"engineering", "design"},
		RequiredCertifications: []string{"ISO 9001"},
		Diversity:              contracts.DiversityRequirement{MinimumPercentage: 25},
		Weights: contracts.EvaluationWeights{
			Technical: 40, Price: 30, Experience: 10, Diversity: 20,
		},
		Deadlines: contracts.DeadlineSet{
			Submission: time.Now().Add(60 * 24 * time.Hour),
		},
	}
}

func baseCandidate() *contracts.Candidate {
	return &contracts.Candidate{
		ID:                  "cand-1",
		Name:                "Northwind Engineering",
		Type:                contracts.CandidateIndependent,
		PrimaryCapabilities: []string{"engineering"},
		Ownership:           contracts.OwnershipProfile{DiversityPercentage: 60},
	}
}

func TestEvaluate_RejectsInvalidWeights(t *testing.T) {
	e := newTestEvaluator()

	opp := baseOpportunity()
	opp.Weights = contracts.EvaluationWeights{Technical: 40, Price: 30, Experience: 10, Diversity: 10}

	_, err := e.Evaluate(opp, baseCandidate())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWeights))
	assert.True(t, IsValidation(err))
}

func TestEvaluate_RejectsMissingRequirements(t *testing.T) {
	e := newTestEvaluator()

	opp := baseOpportunity()
	opp.RequiredCapabilities = nil
	opp.RequiredCertifications = nil

	_, err := e.Evaluate(opp, baseCandidate())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequirements))
	assert.True(t, IsValidation(err))
}

func TestEvaluate_Scenario(t *testing.T) {
	// Opportunity requiring {engineering, design}, ISO 9001, 25% diversity
	// minimum, weights 40/30/10/20 against an independent 60%-owned
	// candidate offering engineering only.
	e := newTestEvaluator()

	match, err := e.Evaluate(baseOpportunity(), baseCandidate())
	require.NoError(t, err)

	assert.InDelta(t, 50, match.Scores.Capability, 0.001)
	assert.InDelta(t, 0, match.Scores.Certification, 0.001)
	assert.InDelta(t, 75, match.Scores.Diversity, 0.001)

	assert.Greater(t, match.OverallScore, 30.0)
	assert.Less(t, match.OverallScore, 60.0)

	// The missing certification must surface as a critical gap.
	var certGap *contracts.Gap
	for i := range match.Gaps {
		if match.Gaps[i].Kind == contracts.GapCertification {
			certGap = &match.Gaps[i]
		}
	}
	require.NotNil(t, certGap, "expected a certification gap")
	assert.Equal(t, "ISO 9001", certGap.Requirement)
	assert.True(t, certGap.Critical)
	assert.NotEmpty(t, certGap.Remediation)

	// The uncovered capability surfaces as a non-critical gap.
	var capGap *contracts.Gap
	for i := range match.Gaps {
		if match.Gaps[i].Kind == contracts.GapCapability {
			capGap = &match.Gaps[i]
		}
	}
	require.NotNil(t, capGap, "expected a capability gap")
	assert.Equal(t, "design", capGap.Requirement)
	assert.False(t, capGap.Critical)
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newTestEvaluator()
	opp := baseOpportunity()
	cand := baseCandidate()

	first, err := e.Evaluate(opp, cand)
	require.NoError(t, err)
	second, err := e.Evaluate(opp, cand)
	require.NoError(t, err)

	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.NotEqual(t, first.ID, second.ID, "every evaluation is a distinct match record")
}

func TestEvaluate_Strengths(t *testing.T) {
	e := newTestEvaluator()

	opp := baseOpportunity()
	opp.RequiredCertifications = nil

	cand := baseCandidate()
	cand.PrimaryCapabilities = []string{"engineering", "design"}
	cand.Ownership = contracts.OwnershipProfile{DiversityPercentage: 100, AffiliatedGroup: "first-nations"}
	cand.Financial = contracts.FinancialProfile{AnnualRevenue: 50_000_000}

	match, err := e.Evaluate(opp, cand)
	require.NoError(t, err)

	areas := make(map[string]bool)
	for _, s := range match.Strengths {
		areas[s.Area] = true
		assert.GreaterOrEqual(t, s.Score, 80.0)
		assert.NotEmpty(t, s.Justification)
	}
	assert.True(t, areas["capability"], "full coverage should be a strength")
	assert.True(t, areas["diversity"], "full ownership should be a strength")
	assert.True(t, areas["certification"], "no required certifications scores 100")
	assert.True(t, areas["financial"])
}

func TestEvaluate_OverextensionRisk(t *testing.T) {
	e := newTestEvaluator()

	opp := baseOpportunity()
	opp.Value = contracts.ValueRange{Min: 900_000, Max: 1_100_000}

	cand := baseCandidate()
	cand.Financial = contracts.FinancialProfile{AnnualRevenue: 1_200_000}

	match, err := e.Evaluate(opp, cand)
	require.NoError(t, err)

	require.Len(t, match.Risks, 1)
	assert.Equal(t, contracts.RiskOverextension, match.Risks[0].Kind)
	assert.NotEmpty(t, match.Risks[0].Mitigations)
}

func TestEvaluate_TimelineRisk(t *testing.T) {
	e := newTestEvaluator()

	opp := baseOpportunity()
	opp.Deadlines.Submission = time.Now().Add(3 * 24 * time.Hour)
	// Keep financial comfortable so only the timeline risk fires.
	opp.Value = contracts.ValueRange{Min: 50_000, Max: 100_000}

	cand := baseCandidate()
	cand.Financial = contracts.FinancialProfile{AnnualRevenue: 10_000_000}

	match, err := e.Evaluate(opp, cand)
	require.NoError(t, err)

	assert.Equal(t, contracts.UrgencyCritical, match.Urgency)

	var timeline bool
	for _, r := range match.Risks {
		if r.Kind == contracts.RiskTimeline {
			timeline = true
		}
	}
	assert.True(t, timeline, "critical gaps under a critical deadline carry timeline risk")
}

func TestEvaluate_DiversityGap(t *testing.T) {
	e := newTestEvaluator()

	opp := baseOpportunity()

	cand := baseCandidate()
	cand.Ownership.DiversityPercentage = 10

	match, err := e.Evaluate(opp, cand)
	require.NoError(t, err)

	var divGap *contracts.Gap
	for i := range match.Gaps {
		if match.Gaps[i].Kind == contracts.GapDiversity {
			divGap = &match.Gaps[i]
		}
	}
	require.NotNil(t, divGap)
	assert.True(t, divGap.Critical)
	assert.Equal(t, "10%", divGap.CurrentState)
}

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		days int
		want contracts.UrgencyTier
	}{
		{3, contracts.UrgencyCritical},
		{7, contracts.UrgencyCritical},
		{10, contracts.UrgencyHigh},
		{14, contracts.UrgencyHigh},
		{21, contracts.UrgencyMedium},
		{30, contracts.UrgencyMedium},
		{90, contracts.UrgencyLow},
		{-1, contracts.UrgencyCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, urgencyFor(tt.days), "days=%d", tt.days)
	}
}

func TestOverallScore_ZeroWeights(t *testing.T) {
	scores := contracts.ScoreBreakdown{Capability: 90, Financial: 80}
	assert.Equal(t, 0.0, overallScore(scores, contracts.EvaluationWeights{}))
}

type stubComposer struct {
	team *contracts.ProposedTeam
}

func (s *stubComposer) ComposeTeam(opp *contracts.Opportunity, lead *contracts.Candidate, pool []*contracts.Candidate) *contracts.ProposedTeam {
	return s.team
}

func TestEvaluateWithPool_AttachesTeam(t *testing.T) {
	team := &contracts.ProposedTeam{WinProbability: 80}
	e := NewEvaluator(scoring.DefaultRubric(), &stubComposer{team: team}, logger.NewNop())

	pool := []*contracts.Candidate{{ID: "partner-1"}}
	match, err := e.EvaluateWithPool(baseOpportunity(), baseCandidate(), pool)
	require.NoError(t, err)

	require.NotNil(t, match.Team)
	assert.Equal(t, 80.0, match.Team.WinProbability)
}

func TestEvaluateWithPool_NoGapsNoTeam(t *testing.T) {
	e := NewEvaluator(scoring.DefaultRubric(), &stubComposer{team: &contracts.ProposedTeam{}}, logger.NewNop())

	opp := baseOpportunity()
	opp.RequiredCertifications = nil
	opp.Diversity = contracts.DiversityRequirement{}

	lead := baseCandidate()
	lead.PrimaryCapabilities = []string{"engineering", "design"}

	match, err := e.EvaluateWithPool(opp, lead, []*contracts.Candidate{{ID: "partner-1"}})
	require.NoError(t, err)
	assert.Nil(t, match.Team, "no gaps means no team formation")
}

func TestReevaluate_Supersedes(t *testing.T) {
	e := newTestEvaluator()

	match, err := e.Reevaluate(baseOpportunity(), baseCandidate(), "match-prior")
	require.NoError(t, err)
	assert.Equal(t, "match-prior", match.SupersedesID)
}
