package teaming

import (
	"sort"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
	"github.com/unations/matchengine/pkg/logger"
)

// Composer assembles partner teams that close a lead candidate's capability
// gaps on an opportunity.
type Composer struct {
	cfg Config
	log *logger.Logger
}

// NewComposer creates a composer with the given formation policy.
func NewComposer(cfg Config, log *logger.Logger) *Composer {
	return &Composer{cfg: cfg, log: log}
}

// ComposeTeam selects complementary partners for the lead in descending
// compatibility order until the gap set is covered or the partner cap is
// reached. Partial coverage is a valid outcome: the residual gap is listed
// on the team instead of being returned as an error.
func (c *Composer) ComposeTeam(opp *contracts.Opportunity, lead *contracts.Candidate, pool []*contracts.Candidate) *contracts.ProposedTeam {
	gapSet := scoring.GapSet(opp.RequiredCapabilities, lead.AllCapabilities())

	var partners []contracts.Partner
	if len(gapSet) > 0 {
		partners = c.selectPartners(gapSet, lead, pool)
	}

	members := make([]*contracts.Candidate, 0, len(partners)+1)
	members = append(members, lead)
	for _, p := range partners {
		members = append(members, p.Candidate)
	}

	team := &contracts.ProposedTeam{Lead: lead, Partners: partners}
	team.Coverage = buildCoverage(opp.RequiredCapabilities, members)
	team.Composition = buildComposition(members)
	team.Financial = buildFinancial(opp, members, c.cfg.BondingRatio)
	team.Structure = buildStructure(opp, lead, partners, c.cfg)

	for i := range team.Partners {
		team.Partners[i].Contribution = team.Structure.PartnerShares[team.Partners[i].Candidate.ID]
	}
	c.fillTeamCompatibility(lead, team.Partners)

	team.WinProbability = winProbability(opp, team)
	team.Notes = buildNotes(opp, team)

	c.log.WithFields(map[string]interface{}{
		"opportunity_id":  opp.ID,
		"lead_id":         lead.ID,
		"partners":        len(team.Partners),
		"coverage_pct":    team.Coverage.Percentage,
		"structure":       string(team.Structure.Type),
		"win_probability": team.WinProbability,
	}).Debug("Team composed")

	return team
}

// selectPartners greedily picks scored partners that still add coverage,
// ties broken by historical win rate, then candidate ID for determinism.
func (c *Composer) selectPartners(gapSet []string, lead *contracts.Candidate, pool []*contracts.Candidate) []contracts.Partner {
	scored := scorePartners(gapSet, lead, pool, c.cfg.Blend)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].compatibility != scored[j].compatibility {
			return scored[i].compatibility > scored[j].compatibility
		}
		if scored[i].cand.History.WinRate != scored[j].cand.History.WinRate {
			return scored[i].cand.History.WinRate > scored[j].cand.History.WinRate
		}
		return scored[i].cand.ID < scored[j].cand.ID
	})

	remaining := gapSet
	partners := make([]contracts.Partner, 0, c.cfg.MaxPartners)
	for _, sp := range scored {
		if len(remaining) == 0 || len(partners) == c.cfg.MaxPartners {
			break
		}
		if len(coveredGaps(remaining, sp.cand)) == 0 {
			continue
		}
		remaining = scoring.GapSet(remaining, sp.cand.AllCapabilities())
		partners = append(partners, contracts.Partner{
			Candidate:             sp.cand,
			Role:                  contracts.RoleSub,
			Capabilities:          sp.contributes,
			CompatibilityWithLead: sp.compatibility,
		})
	}
	return partners
}

// fillTeamCompatibility scores each partner against the rest of the final
// membership, not just the lead.
func (c *Composer) fillTeamCompatibility(lead *contracts.Candidate, partners []contracts.Partner) {
	for i := range partners {
		total := memberAffinity(partners[i].Candidate, lead, c.cfg.Blend)
		n := 1
		for j := range partners {
			if j == i {
				continue
			}
			total += memberAffinity(partners[i].Candidate, partners[j].Candidate, c.cfg.Blend)
			n++
		}
		partners[i].CompatibilityWithTeam = total / float64(n)
	}
}
