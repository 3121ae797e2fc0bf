package competitive

import (
	"context"

	"github.com/unations/matchengine/internal/contracts"
)

// Bidder-field tiers by contract midpoint. Small contracts draw crowded
// fields; very large ones thin out to a handful of qualified bidders.
const (
	smallContract  = 100_000
	midContract    = 1_000_000
	largeContract  = 10_000_000
	crowdedField   = 8
	typicalField   = 5
	selectiveField = 3
	thinField      = 2
)

// StaticEstimator derives a competition estimate from the opportunity's
// value band and the candidate's score alone. It is the default when no
// remote estimator is configured, and doubles as the reproducible
// estimator in tests: same inputs, same estimate, no I/O.
type StaticEstimator struct{}

// NewStaticEstimator creates the deterministic estimator.
func NewStaticEstimator() *StaticEstimator {
	return &StaticEstimator{}
}

// EstimateCompetition never fails and ignores the context.
func (StaticEstimator) EstimateCompetition(_ context.Context, opp *contracts.Opportunity, candidateScore float64) (*contracts.CompetitiveAnalysis, error) {
	analysis := &contracts.CompetitiveAnalysis{
		EstimatedCompetitors: fieldSize(opp.Value.Midpoint()),
		StrongerCompetitors:  strongerCount(candidateScore),
	}

	switch {
	case candidateScore >= 85:
		analysis.Advantages = append(analysis.Advantages,
			"Capability coverage few competitors can match")
	case candidateScore >= 70:
		analysis.Advantages = append(analysis.Advantages,
			"Competitive positioning on the core requirements")
	default:
		analysis.Weaknesses = append(analysis.Weaknesses,
			"Stronger bidders likely cover more of the requirement set")
	}

	return analysis, nil
}

func fieldSize(midpoint float64) int {
	switch {
	case midpoint < smallContract:
		return crowdedField
	case midpoint < midContract:
		return typicalField
	case midpoint < largeContract:
		return selectiveField
	default:
		return thinField
	}
}

func strongerCount(score float64) int {
	switch {
	case score >= 85:
		return 0
	case score >= 70:
		return 1
	case score >= 50:
		return 2
	default:
		return 3
	}
}
