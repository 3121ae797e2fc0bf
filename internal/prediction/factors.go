package prediction

import (
	"fmt"

	"github.com/unations/matchengine/internal/contracts"
)

// buildPositives derives positive factors from high sub-scores.
func buildPositives(match *contracts.Match, cfg Config) []contracts.Factor {
	positives := make([]contracts.Factor, 0, 2)

	if match.OverallScore >= cfg.StrongOverallThreshold {
		positives = append(positives, contracts.Factor{
			Kind:        contracts.FactorPositive,
			Name:        "overall match strength",
			Impact:      cfg.StrongOverallImpact,
			Confidence:  cfg.StrongOverallConfidence,
			Explanation: fmt.Sprintf("Overall match score of %.0f against this opportunity", match.OverallScore),
		})
	}

	if match.Scores.Diversity >= cfg.StrongDiversityThreshold {
		positives = append(positives, contracts.Factor{
			Kind:        contracts.FactorPositive,
			Name:        "diversity positioning",
			Impact:      cfg.DiversityImpact,
			Confidence:  cfg.DiversityConfidence,
			Explanation: fmt.Sprintf("Diversity score of %.0f on a set-aside requirement", match.Scores.Diversity),
		})
	}

	return positives
}

// buildNegatives derives one negative factor per critical gap.
func buildNegatives(match *contracts.Match, cfg Config) []contracts.Factor {
	negatives := make([]contracts.Factor, 0, len(match.Gaps))
	for _, gap := range match.Gaps {
		if !gap.Critical {
			continue
		}
		negatives = append(negatives, contracts.Factor{
			Kind:        contracts.FactorNegative,
			Name:        fmt.Sprintf("unresolved %s gap", gap.Kind),
			Impact:      cfg.CriticalGapImpact,
			Confidence:  cfg.CriticalGapConfidence,
			Explanation: fmt.Sprintf("%s: currently %s, needs %s", gap.Requirement, gap.CurrentState, gap.NeededState),
		})
	}
	return negatives
}

// degradedFactor records a collaborator that could not be reached, so the
// caller can see which part of the estimate ran on defaults.
func degradedFactor(name, explanation string) contracts.Factor {
	return contracts.Factor{
		Kind:        contracts.FactorNeutral,
		Name:        name,
		Impact:      0,
		Confidence:  0,
		Explanation: explanation,
	}
}
