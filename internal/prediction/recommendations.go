package prediction

import (
	"fmt"

	"github.com/unations/matchengine/internal/contracts"
)

// buildRecommendations tiers actions by necessity. Critical gaps are
// must-do, partnering and risk mitigations are should-do, positioning
// improvements are could-do. Known failure patterns are always surfaced
// under avoid, whatever the match score.
func buildRecommendations(match *contracts.Match, competitive contracts.CompetitiveAnalysis) contracts.RecommendationSet {
	rec := contracts.RecommendationSet{}

	for _, gap := range match.Gaps {
		if !gap.Critical {
			continue
		}
		action := fmt.Sprintf("Close the %s gap before submission", gap.Requirement)
		if len(gap.Remediation) > 0 {
			action = fmt.Sprintf("%s: %s", action, gap.Remediation[0].Action)
		}
		rec.MustDo = append(rec.MustDo, action)
	}
	if match.Urgency == contracts.UrgencyCritical {
		rec.MustDo = append(rec.MustDo, "Start the submission now; the deadline is inside the critical window")
	}

	for _, gap := range match.Gaps {
		if gap.Critical {
			continue
		}
		rec.ShouldDo = append(rec.ShouldDo, fmt.Sprintf("Bring in a partner covering %s", gap.Requirement))
	}
	for _, risk := range match.Risks {
		if len(risk.Mitigations) > 0 {
			rec.ShouldDo = append(rec.ShouldDo, risk.Mitigations[0])
		}
	}

	if match.Scores.Geographic < 80 {
		rec.CouldDo = append(rec.CouldDo, "Establish a presence closer to the place of performance")
	}
	if match.Scores.Experience < 50 {
		rec.CouldDo = append(rec.CouldDo, "Reference transferable past performance from adjacent industries")
	}

	rec.Avoid = append(rec.Avoid, "Underpricing to win; recovery margins on lowball bids rarely materialize")
	if competitive.StrongerCompetitors > 0 {
		rec.Avoid = append(rec.Avoid, fmt.Sprintf(
			"A pricing war against %d stronger competitors", competitive.StrongerCompetitors))
	}

	return rec
}
