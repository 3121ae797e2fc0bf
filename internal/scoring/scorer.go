package scoring

import "github.com/unations/matchengine/internal/contracts"

// Breakdown computes all six dimension scores for one (opportunity,
// candidate) pair. Pure and deterministic: identical inputs always produce
// identical scores, so pairs can be evaluated in parallel freely.
func Breakdown(opp *contracts.Opportunity, cand *contracts.Candidate, r Rubric) contracts.ScoreBreakdown {
	return contracts.ScoreBreakdown{
		Capability:    CapabilityScore(opp.RequiredCapabilities, cand.AllCapabilities()),
		Experience:    ExperienceScore(opp.Industries, cand, r),
		Certification: CertificationScore(opp.RequiredCertifications, cand),
		Diversity:     DiversityScore(opp.Diversity, cand, r),
		Geographic:    GeographicScore(opp.Location, cand.Locations),
		Financial:     FinancialScore(opp.Value, cand.Financial, r),
	}
}
