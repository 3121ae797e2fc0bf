package scoring

import "github.com/unations/matchengine/internal/contracts"

const (
	independentBase    = 50
	majorityBonus      = 25
	eligibleGroupBonus = 25

	jointVentureBase          = 30
	jointVentureOwnershipSpan = 50
)

// DiversityScore applies the tiered ownership rubric. Opportunities without
// a minimum requirement score 0 on this dimension; the weight mapping keeps
// that neutral.
//
// Independent diversity-owned candidates start at 50, gain 25 for majority
// ownership, and 25 more when their affiliated group clears the eligible
// list. Joint ventures scale with their ownership percentage. Subsidiaries
// score 0: ownership content held through a parent does not qualify.
func DiversityScore(req contracts.DiversityRequirement, cand *contracts.Candidate, r Rubric) float64 {
	if !req.Required() {
		return 0
	}

	switch cand.Type {
	case contracts.CandidateIndependent:
		if cand.Ownership.DiversityPercentage <= 0 {
			return 0
		}
		score := float64(independentBase)
		if cand.Ownership.DiversityPercentage >= r.MajorityOwnership {
			score += majorityBonus
		}
		if cand.Ownership.AffiliatedGroup != "" && req.GroupEligible(cand.Ownership.AffiliatedGroup) {
			score += eligibleGroupBonus
		}
		return score

	case contracts.CandidateJointVenture:
		return jointVentureBase + clampRatio(cand.Ownership.DiversityPercentage/100)*jointVentureOwnershipSpan

	default:
		return 0
	}
}
