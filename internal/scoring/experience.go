package scoring

import "github.com/unations/matchengine/internal/contracts"

const (
	industryOverlapBonus = 30
	solidTrackBonus      = 20
	extensiveTrackBonus  = 10
	satisfactionBonusMax = 20
	onTimeBonusMax       = 20
)

// ExperienceScore applies the additive track-record rubric: industry
// overlap, project volume, client satisfaction, and on-time delivery,
// capped at 100.
func ExperienceScore(industries []string, cand *contracts.Candidate, r Rubric) float64 {
	score := 0.0

	if len(industries) > 0 && AnyOverlap(cand.AllCapabilities(), industries) {
		score += industryOverlapBonus
	}

	if cand.History.CompletedProjects >= r.ProjectsSolid {
		score += solidTrackBonus
	}
	if cand.History.CompletedProjects >= r.ProjectsExtensive {
		score += extensiveTrackBonus
	}

	score += clampRatio(cand.History.ClientSatisfaction/5) * satisfactionBonusMax
	score += clampRatio(cand.History.OnTimeDelivery/100) * onTimeBonusMax

	if score > 100 {
		score = 100
	}
	return score
}

// clampRatio bounds a ratio to [0, 1] so malformed history values cannot
// push a bonus outside its band.
func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
