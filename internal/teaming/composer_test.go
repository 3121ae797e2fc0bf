package teaming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/logger"
)

func newTestComposer() *Composer {
	return NewComposer(DefaultConfig(), logger.NewNop())
}

func teamOpportunity() *contracts.Opportunity {
	return &contracts.Opportunity{
		ID:                   "opp-team",
		RequiredCapabilities: []string{"engineering", "design", "logistics"},
		Diversity:            contracts.DiversityRequirement{MinimumPercentage: 25},
		Value:                contracts.ValueRange{Min: 600_000, Max: 1_000_000},
		Location:             contracts.Location{City: "Winnipeg", Region: "Manitoba"},
	}
}

func teamLead() *contracts.Candidate {
	return &contracts.Candidate{
		ID:                  "lead",
		Name:                "Prairie Build",
		Type:                contracts.CandidateIndependent,
		PrimaryCapabilities: []string{"engineering"},
		Ownership:           contracts.OwnershipProfile{DiversityPercentage: 60},
		Locations:           []contracts.Location{{City: "Winnipeg", Region: "Manitoba"}},
		Financial:           contracts.FinancialProfile{AnnualRevenue: 5_000_000, EmployeeCount: 40},
	}
}

func partner(id string, caps []string, revenue float64) *contracts.Candidate {
	return &contracts.Candidate{
		ID:                  id,
		Type:                contracts.CandidateIndependent,
		PrimaryCapabilities: caps,
		Locations:           []contracts.Location{{City: "Winnipeg", Region: "Manitoba"}},
		Financial:           contracts.FinancialProfile{AnnualRevenue: revenue, EmployeeCount: 20},
	}
}

func TestComposeTeam_ClosesGapSet(t *testing.T) {
	c := newTestComposer()

	pool := []*contracts.Candidate{
		partner("p-design", []string{"design"}, 4_000_000),
		partner("p-logistics", []string{"logistics"}, 3_000_000),
	}

	team := c.ComposeTeam(teamOpportunity(), teamLead(), pool)
	require.NotNil(t, team)

	assert.True(t, team.FullCoverage())
	assert.Equal(t, 100.0, team.Coverage.Percentage)
	require.Len(t, team.Partners, 2)

	// Prime-sub at 70/15/15 already satisfies the 25% diversity minimum
	// through the lead's own ownership.
	assert.Equal(t, contracts.StructurePrimeSub, team.Structure.Type)
	assert.Equal(t, 70.0, team.Structure.LeadShare)
	assert.InDelta(t, 42.0, team.Structure.DiversityContent, 0.001)
	for _, p := range team.Partners {
		assert.InDelta(t, 15.0, p.Contribution, 0.001)
	}

	// Base 60, diversity margin +10, full coverage +20, bonding covers the
	// 800k midpoint +10: capped at 95.
	assert.InDelta(t, 1_200_000, team.Financial.BondingCapacity, 0.001)
	assert.True(t, team.Financial.RequirementMet)
	assert.Equal(t, 95.0, team.WinProbability)
}

func TestComposeTeam_PartialCoverageIsValid(t *testing.T) {
	c := newTestComposer()

	pool := []*contracts.Candidate{partner("p-design", []string{"design"}, 4_000_000)}

	team := c.ComposeTeam(teamOpportunity(), teamLead(), pool)
	require.NotNil(t, team)

	assert.False(t, team.FullCoverage())
	assert.Equal(t, []string{"logistics"}, team.Coverage.Missing)
	assert.InDelta(t, 66.67, team.Coverage.Percentage, 0.01)
	require.NotEmpty(t, team.Notes)
	assert.Contains(t, team.Notes[0], "logistics")
	assert.Less(t, team.WinProbability, 95.0)
}

func TestComposeTeam_EmptyPool(t *testing.T) {
	c := newTestComposer()

	team := c.ComposeTeam(teamOpportunity(), teamLead(), nil)
	require.NotNil(t, team)

	assert.Empty(t, team.Partners)
	assert.Equal(t, 100.0, team.Structure.LeadShare)
	assert.False(t, team.FullCoverage())
}

func TestComposeTeam_PartnerCap(t *testing.T) {
	c := newTestComposer()

	opp := teamOpportunity()
	opp.RequiredCapabilities = []string{"engineering", "design", "logistics", "security", "catering", "training"}

	pool := []*contracts.Candidate{
		partner("p1", []string{"design"}, 4_000_000),
		partner("p2", []string{"logistics"}, 4_000_000),
		partner("p3", []string{"security"}, 4_000_000),
		partner("p4", []string{"catering"}, 4_000_000),
		partner("p5", []string{"training"}, 4_000_000),
	}

	team := c.ComposeTeam(opp, teamLead(), pool)
	require.NotNil(t, team)

	assert.Len(t, team.Partners, 4)
	assert.Len(t, team.Coverage.Missing, 1)
}

func TestComposeTeam_TieBrokenByWinRate(t *testing.T) {
	c := newTestComposer()

	opp := teamOpportunity()
	opp.RequiredCapabilities = []string{"engineering", "design"}

	low := partner("p-low", []string{"design"}, 4_000_000)
	low.History.WinRate = 0.30
	high := partner("p-high", []string{"design"}, 4_000_000)
	high.History.WinRate = 0.80

	team := c.ComposeTeam(opp, teamLead(), []*contracts.Candidate{low, high})
	require.Len(t, team.Partners, 1)
	assert.Equal(t, "p-high", team.Partners[0].Candidate.ID)
}

func TestComposeTeam_SupersetPartnerKeepsCoverage(t *testing.T) {
	c := newTestComposer()
	opp := teamOpportunity()

	narrow := partner("p-narrow", []string{"design"}, 4_000_000)

	before := c.ComposeTeam(opp, teamLead(), []*contracts.Candidate{narrow})
	wide := partner("p-wide", []string{"design", "logistics"}, 4_000_000)
	after := c.ComposeTeam(opp, teamLead(), []*contracts.Candidate{narrow, wide})

	assert.GreaterOrEqual(t, after.Coverage.Percentage, before.Coverage.Percentage)
	assert.True(t, after.FullCoverage())
}

func TestComposeTeam_StructureEscalatesToJointVenture(t *testing.T) {
	c := newTestComposer()

	opp := teamOpportunity()
	opp.RequiredCapabilities = []string{"engineering", "design"}
	opp.Diversity = contracts.DiversityRequirement{MinimumPercentage: 40}

	lead := teamLead()
	lead.Ownership.DiversityPercentage = 0

	diverse := partner("p-diverse", []string{"design"}, 4_000_000)
	diverse.Ownership.DiversityPercentage = 100

	team := c.ComposeTeam(opp, lead, []*contracts.Candidate{diverse})
	require.Len(t, team.Partners, 1)

	// Prime-sub yields 30% content, short of 40; joint-venture at 51/49
	// reaches 49%.
	assert.Equal(t, contracts.StructureJointVenture, team.Structure.Type)
	assert.Equal(t, 51.0, team.Structure.LeadShare)
	assert.InDelta(t, 49.0, team.Structure.DiversityContent, 0.001)
}

func TestComposeTeam_StructureEscalatesToConsortium(t *testing.T) {
	c := newTestComposer()

	opp := teamOpportunity()
	opp.RequiredCapabilities = []string{"engineering", "design"}
	opp.Diversity = contracts.DiversityRequirement{MinimumPercentage: 50}

	lead := teamLead()
	lead.Ownership.DiversityPercentage = 0

	diverse := partner("p-diverse", []string{"design"}, 4_000_000)
	diverse.Ownership.DiversityPercentage = 100

	team := c.ComposeTeam(opp, lead, []*contracts.Candidate{diverse})
	require.Len(t, team.Partners, 1)

	// Equal shares put 50% of the work with the fully diverse partner.
	assert.Equal(t, contracts.StructureConsortium, team.Structure.Type)
	assert.Equal(t, 50.0, team.Structure.LeadShare)
	assert.InDelta(t, 50.0, team.Structure.DiversityContent, 0.001)
}

func TestComposeTeam_ScrutinyNote(t *testing.T) {
	c := newTestComposer()

	opp := teamOpportunity()
	opp.RequiredCapabilities = []string{"engineering", "design"}
	opp.Diversity = contracts.DiversityRequirement{MinimumPercentage: 26}

	lead := teamLead()
	lead.Ownership.DiversityPercentage = 0

	diverse := partner("p-diverse", []string{"design"}, 4_000_000)
	diverse.Ownership.DiversityPercentage = 87

	team := c.ComposeTeam(opp, lead, []*contracts.Candidate{diverse})

	// Prime-sub content is 26.1%, inside the scrutiny band above 26%.
	assert.InDelta(t, 26.1, team.Structure.DiversityContent, 0.001)
	found := false
	for _, note := range team.Notes {
		if strings.Contains(note, "scrutiny") {
			found = true
		}
	}
	assert.True(t, found, "expected an ownership scrutiny note, got %v", team.Notes)
}

func TestComposeTeam_NoComplementaryPartners(t *testing.T) {
	c := newTestComposer()

	// Pool members duplicate the lead's capability instead of closing gaps.
	pool := []*contracts.Candidate{
		partner("p-same", []string{"engineering"}, 4_000_000),
	}

	team := c.ComposeTeam(teamOpportunity(), teamLead(), pool)
	assert.Empty(t, team.Partners)
	assert.False(t, team.FullCoverage())
}

func TestComposeTeam_Composition(t *testing.T) {
	c := newTestComposer()

	pool := []*contracts.Candidate{
		partner("p-design", []string{"design"}, 4_000_000),
		partner("p-logistics", []string{"logistics"}, 3_000_000),
	}

	team := c.ComposeTeam(teamOpportunity(), teamLead(), pool)

	assert.Equal(t, 80, team.Composition.TotalHeadcount)
	// Only the lead's 40 heads carry 60% diversity content.
	assert.InDelta(t, 24.0, team.Composition.DiversityHeadcount, 0.001)
	assert.InDelta(t, 30.0, team.Composition.DiversityPercentage, 0.001)
	// All members share one location after dedup.
	assert.Len(t, team.Composition.Locations, 1)
	assert.InDelta(t, 12_000_000, team.Financial.CombinedRevenue, 0.001)
}

func TestFinancialBalance(t *testing.T) {
	tests := []struct {
		name    string
		lead    float64
		partner float64
		want    float64
	}{
		{"comparable sizes", 5_000_000, 4_000_000, balanceEven},
		{"quarter ratio boundary", 4_000_000, 1_000_000, balanceEven},
		{"skewed", 10_000_000, 1_500_000, balanceSkewed},
		{"dwarfed", 50_000_000, 1_000_000, balanceLopsided},
		{"unknown revenue", 5_000_000, 0, balanceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, financialBalance(tt.lead, tt.partner))
		})
	}
}

func TestMemberAffinity_SymmetricInputs(t *testing.T) {
	blend := DefaultConfig().Blend
	a := partner("a", []string{"design"}, 4_000_000)
	b := partner("b", []string{"logistics"}, 4_000_000)

	assert.Equal(t, memberAffinity(a, b, blend), memberAffinity(b, a, blend))
}
