package teaming

import (
	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
)

// Financial-balance tiers. A partner whose revenue dominates or is dwarfed
// by the lead's creates a control imbalance, so lopsided pairs score low.
const (
	balanceEven      = 100
	balanceSkewed    = 70
	balanceLopsided  = 40
	balanceUnknown   = 50
	balancedRatio    = 0.25
	tolerableRatio   = 0.10
	proximityUnknown = 40
)

// scoredPartner is a pool candidate that passed the complementary filter,
// with its compatibility blend components.
type scoredPartner struct {
	cand        *contracts.Candidate
	contributes []string

	fit           float64
	proximity     float64
	balance       float64
	compatibility float64
}

// scorePartners filters the pool to complementary partners and scores each
// one. A partner is complementary when its capability set intersects the
// gap set.
func scorePartners(gapSet []string, lead *contracts.Candidate, pool []*contracts.Candidate, blend BlendConfig) []scoredPartner {
	scored := make([]scoredPartner, 0, len(pool))
	for _, cand := range pool {
		if cand == nil || cand.ID == lead.ID {
			continue
		}
		contributes := coveredGaps(gapSet, cand)
		if len(contributes) == 0 {
			continue
		}

		sp := scoredPartner{
			cand:        cand,
			contributes: contributes,
			fit:         float64(len(contributes)) / float64(len(gapSet)) * 100,
			proximity:   bestProximity(lead.Locations, cand.Locations),
			balance:     financialBalance(lead.Financial.AnnualRevenue, cand.Financial.AnnualRevenue),
		}
		sp.compatibility = blend.CapabilityFit*sp.fit + blend.Proximity*sp.proximity + blend.FinancialBalance*sp.balance
		scored = append(scored, sp)
	}
	return scored
}

// coveredGaps returns the subset of the gap set the candidate can satisfy,
// preserving gap order.
func coveredGaps(gapSet []string, cand *contracts.Candidate) []string {
	caps := cand.AllCapabilities()
	covered := make([]string, 0, len(gapSet))
	for _, gap := range gapSet {
		if scoring.Satisfies(gap, caps) {
			covered = append(covered, gap)
		}
	}
	return covered
}

// bestProximity returns the strongest location affinity between any pair of
// lead and partner locations.
func bestProximity(leadLocs, partnerLocs []contracts.Location) float64 {
	best := float64(proximityUnknown)
	for _, a := range leadLocs {
		for _, b := range partnerLocs {
			if tier := scoring.LocationAffinity(a, b); tier > best {
				best = tier
			}
		}
	}
	return best
}

// financialBalance scores the revenue ratio between lead and partner.
func financialBalance(leadRevenue, partnerRevenue float64) float64 {
	if leadRevenue <= 0 || partnerRevenue <= 0 {
		return balanceUnknown
	}
	smaller, larger := leadRevenue, partnerRevenue
	if smaller > larger {
		smaller, larger = larger, smaller
	}
	switch ratio := smaller / larger; {
	case ratio >= balancedRatio:
		return balanceEven
	case ratio >= tolerableRatio:
		return balanceSkewed
	default:
		return balanceLopsided
	}
}

// memberAffinity scores how well two team members sit together, using the
// proximity and balance components of the blend.
func memberAffinity(a, b *contracts.Candidate, blend BlendConfig) float64 {
	denom := blend.Proximity + blend.FinancialBalance
	if denom == 0 {
		return 0
	}
	prox := bestProximity(a.Locations, b.Locations)
	bal := financialBalance(a.Financial.AnnualRevenue, b.Financial.AnnualRevenue)
	return (blend.Proximity*prox + blend.FinancialBalance*bal) / denom
}
