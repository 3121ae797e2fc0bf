package teaming

import (
	"fmt"
	"strings"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
)

// Win-probability coefficients.
const (
	winBase            = 60
	winDiversityBonus  = 10
	winDiversityMargin = 10
	winCoverageSpan    = 20
	winFinancialBonus  = 10
	winCap             = 95
)

// scrutinyMargin is the band above the diversity minimum, in percentage
// points, inside which a structure is likely to draw ownership verification.
const scrutinyMargin = 2

// buildStructure picks the partnership structure as a constraint-satisfaction
// step: prime-sub unless its share split cannot meet the opportunity's
// diversity minimum, then joint-venture, then an equal-share consortium.
// If no structure satisfies the minimum, the one with the highest diversity
// content is kept.
func buildStructure(opp *contracts.Opportunity, lead *contracts.Candidate, partners []contracts.Partner, cfg Config) contracts.PartnershipStructure {
	if len(partners) == 0 {
		return contracts.PartnershipStructure{
			Type:             contracts.StructurePrimeSub,
			LeadShare:        100,
			PartnerShares:    map[string]float64{},
			DiversityContent: lead.QualifyingDiversityContent(),
		}
	}

	options := []contracts.PartnershipStructure{
		sharesFor(contracts.StructurePrimeSub, cfg.PrimeLeadShare, lead, partners),
		sharesFor(contracts.StructureJointVenture, cfg.JointVentureLeadShare, lead, partners),
		sharesFor(contracts.StructureConsortium, 100/float64(len(partners)+1), lead, partners),
	}

	if !opp.Diversity.Required() {
		return options[0]
	}
	for _, opt := range options {
		if opt.DiversityContent >= opp.Diversity.MinimumPercentage {
			return opt
		}
	}

	best := options[0]
	for _, opt := range options[1:] {
		if opt.DiversityContent > best.DiversityContent {
			best = opt
		}
	}
	return best
}

// sharesFor splits the work share for a given lead share, partners taking
// equal parts of the remainder, and computes the share-weighted diversity
// content of the split.
func sharesFor(typ contracts.StructureType, leadShare float64, lead *contracts.Candidate, partners []contracts.Partner) contracts.PartnershipStructure {
	perPartner := (100 - leadShare) / float64(len(partners))

	shares := make(map[string]float64, len(partners))
	content := leadShare / 100 * lead.QualifyingDiversityContent()
	for _, p := range partners {
		shares[p.Candidate.ID] = perPartner
		content += perPartner / 100 * p.Candidate.QualifyingDiversityContent()
	}

	return contracts.PartnershipStructure{
		Type:             typ,
		LeadShare:        leadShare,
		PartnerShares:    shares,
		DiversityContent: content,
	}
}

// buildCoverage reports which required capabilities the member union covers.
func buildCoverage(required []string, members []*contracts.Candidate) contracts.CapabilityCoverage {
	combined := make([]string, 0)
	for _, m := range members {
		combined = append(combined, m.AllCapabilities()...)
	}

	covered := make([]string, 0, len(required))
	for _, req := range required {
		if scoring.Satisfies(req, combined) {
			covered = append(covered, req)
		}
	}

	pct := 100.0
	if len(required) > 0 {
		pct = float64(len(covered)) / float64(len(required)) * 100
	}

	return contracts.CapabilityCoverage{
		Required:   required,
		Covered:    covered,
		Missing:    scoring.GapSet(required, combined),
		Percentage: pct,
	}
}

// buildComposition aggregates headcount, headcount-weighted diversity, and
// the team's location footprint.
func buildComposition(members []*contracts.Candidate) contracts.TeamComposition {
	comp := contracts.TeamComposition{Locations: make([]contracts.Location, 0)}

	seen := make(map[string]bool)
	for _, m := range members {
		comp.TotalHeadcount += m.Financial.EmployeeCount
		comp.DiversityHeadcount += float64(m.Financial.EmployeeCount) * m.QualifyingDiversityContent() / 100

		for _, loc := range m.Locations {
			key := strings.ToLower(loc.City) + "|" + strings.ToLower(loc.Region) + "|" + fmt.Sprint(loc.Remote)
			if !seen[key] {
				seen[key] = true
				comp.Locations = append(comp.Locations, loc)
			}
		}
	}

	if comp.TotalHeadcount > 0 {
		comp.DiversityPercentage = comp.DiversityHeadcount / float64(comp.TotalHeadcount) * 100
	}
	return comp
}

// buildFinancial aggregates revenue and derives bonding capacity. The
// requirement is met when bonding capacity covers the contract midpoint.
func buildFinancial(opp *contracts.Opportunity, members []*contracts.Candidate, bondingRatio float64) contracts.FinancialCapacity {
	var combined float64
	for _, m := range members {
		combined += m.Financial.AnnualRevenue
	}
	bonding := bondingRatio * combined

	return contracts.FinancialCapacity{
		CombinedRevenue: combined,
		BondingCapacity: bonding,
		RequirementMet:  bonding >= opp.Value.Midpoint(),
	}
}

// winProbability estimates the team's chance from the documented policy:
// base 60, +10 when diversity content clears the minimum by ten points or
// more, up to +20 proportional to coverage, +10 when financial capacity is
// met, capped at 95.
func winProbability(opp *contracts.Opportunity, team *contracts.ProposedTeam) float64 {
	p := float64(winBase)
	if team.Structure.DiversityContent >= opp.Diversity.MinimumPercentage+winDiversityMargin {
		p += winDiversityBonus
	}
	p += winCoverageSpan * team.Coverage.Percentage / 100
	if team.Financial.RequirementMet {
		p += winFinancialBonus
	}
	if p > winCap {
		p = winCap
	}
	return p
}

// buildNotes surfaces conditions a reviewer must see before submission.
func buildNotes(opp *contracts.Opportunity, team *contracts.ProposedTeam) []string {
	var notes []string

	if !team.FullCoverage() {
		notes = append(notes, fmt.Sprintf(
			"Capability coverage is partial: %s remain uncovered",
			strings.Join(team.Coverage.Missing, ", ")))
	}

	if opp.Diversity.Required() {
		content := team.Structure.DiversityContent
		minimum := opp.Diversity.MinimumPercentage
		switch {
		case content < minimum:
			notes = append(notes, fmt.Sprintf(
				"Diversity content of %.1f%% does not reach the %.0f%% minimum under any structure",
				content, minimum))
		case content < minimum+scrutinyMargin:
			notes = append(notes, fmt.Sprintf(
				"Diversity content of %.1f%% clears the %.0f%% minimum by under %.0f points; expect ownership verification scrutiny",
				content, minimum, float64(scrutinyMargin)))
		}
	}

	if !team.Financial.RequirementMet {
		notes = append(notes, "Combined bonding capacity does not cover the contract value")
	}

	return notes
}
