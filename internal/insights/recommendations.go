package insights

import (
	"context"
	"fmt"
	"sort"

	"github.com/unations/matchengine/internal/contracts"
)

const (
	// topThemeCount caps the recurring strength and gap lists.
	topThemeCount = 3

	// recurrenceFloor is the minimum occurrences before a theme drives a
	// recommendation.
	recurrenceFloor = 2

	// allianceAffinity is the minimum lead compatibility for a partner to
	// count toward a standing-alliance proposal.
	allianceAffinity = 75.0
)

func topStrengths(matches []*contracts.Match) []contracts.RecurringTheme {
	counts := make(map[string]int)
	for _, m := range matches {
		for _, s := range m.Strengths {
			counts[s.Area]++
		}
	}

	themes := make([]contracts.RecurringTheme, 0, len(counts))
	for name, count := range counts {
		themes = append(themes, contracts.RecurringTheme{Name: name, Count: count})
	}
	sortThemes(themes)

	if len(themes) > topThemeCount {
		themes = themes[:topThemeCount]
	}
	return themes
}

func topGaps(matches []*contracts.Match) []contracts.RecurringTheme {
	themes := gapThemes(matches)
	if len(themes) > topThemeCount {
		themes = themes[:topThemeCount]
	}
	return themes
}

// gapThemes tallies gaps by requirement across a window's matches. A
// theme is critical when any occurrence was.
func gapThemes(matches []*contracts.Match) []contracts.RecurringTheme {
	type tally struct {
		count    int
		critical bool
	}
	counts := make(map[string]*tally)
	for _, m := range matches {
		for _, g := range m.Gaps {
			t := counts[g.Requirement]
			if t == nil {
				t = &tally{}
				counts[g.Requirement] = t
			}
			t.count++
			if g.Critical {
				t.critical = true
			}
		}
	}

	themes := make([]contracts.RecurringTheme, 0, len(counts))
	for name, t := range counts {
		themes = append(themes, contracts.RecurringTheme{Name: name, Count: t.count, Critical: t.critical})
	}
	sortThemes(themes)
	return themes
}

func sortThemes(themes []contracts.RecurringTheme) {
	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Count != themes[j].Count {
			return themes[i].Count > themes[j].Count
		}
		return themes[i].Name < themes[j].Name
	})
}

func (a *Aggregator) buildRecommendations(ctx context.Context, current, previous *periodWindow) contracts.InsightRecommendations {
	return contracts.InsightRecommendations{
		Immediate:   immediateActions(current),
		Strategic:   a.strategicMoves(ctx, current, previous),
		Partnership: standingAlliances(current),
	}
}

// immediateActions targets critical gaps that kept reappearing.
func immediateActions(current *periodWindow) []string {
	var actions []string
	for _, theme := range gapThemes(current.matches) {
		if !theme.Critical || theme.Count < recurrenceFloor {
			continue
		}
		actions = append(actions, fmt.Sprintf(
			"Close the recurring %s gap; it held back %d matches this period", theme.Name, theme.Count))
	}
	return actions
}

// strategicMoves points at industries whose match volume rose against the
// previous period.
func (a *Aggregator) strategicMoves(ctx context.Context, current, previous *periodWindow) []string {
	currentVolume := a.industryVolume(ctx, current.matches)
	previousVolume := a.industryVolume(ctx, previous.matches)

	type rise struct {
		industry string
		from, to int
	}
	var rising []rise
	for industry, count := range currentVolume {
		if count > previousVolume[industry] {
			rising = append(rising, rise{industry: industry, from: previousVolume[industry], to: count})
		}
	}

	sort.Slice(rising, func(i, j int) bool {
		if rising[i].to != rising[j].to {
			return rising[i].to > rising[j].to
		}
		return rising[i].industry < rising[j].industry
	})
	if len(rising) > topThemeCount {
		rising = rising[:topThemeCount]
	}

	moves := make([]string, 0, len(rising))
	for _, r := range rising {
		moves = append(moves, fmt.Sprintf(
			"Expand %s capacity; match volume rose from %d to %d period over period", r.industry, r.from, r.to))
	}
	return moves
}

// industryVolume counts a window's matches per opportunity industry.
// Opportunities that can no longer be loaded are skipped.
func (a *Aggregator) industryVolume(ctx context.Context, matches []*contracts.Match) map[string]int {
	counts := make(map[string]int)
	loaded := make(map[string]*contracts.Opportunity)

	for _, m := range matches {
		opp, ok := loaded[m.OpportunityID]
		if !ok {
			var err error
			opp, err = a.opportunities.GetByID(ctx, m.OpportunityID)
			if err != nil {
				a.logger.WithError(err).WithField("opportunity_id", m.OpportunityID).Debug("Skipping opportunity in industry rollup")
				opp = nil
			}
			loaded[m.OpportunityID] = opp
		}
		if opp == nil {
			continue
		}
		for _, industry := range opp.Industries {
			counts[industry]++
		}
	}
	return counts
}

// standingAlliances proposes recurring high-compatibility partners as
// standing alliances.
func standingAlliances(current *periodWindow) []string {
	type ally struct {
		name  string
		count int
	}
	tallies := make(map[string]*ally)

	for _, m := range current.matches {
		if m.Team == nil {
			continue
		}
		for _, p := range m.Team.Partners {
			if p.Candidate == nil || p.CompatibilityWithLead < allianceAffinity {
				continue
			}
			t := tallies[p.Candidate.ID]
			if t == nil {
				t = &ally{name: p.Candidate.Name}
				tallies[p.Candidate.ID] = t
			}
			t.count++
		}
	}

	allies := make([]ally, 0, len(tallies))
	for _, t := range tallies {
		if t.count >= recurrenceFloor {
			allies = append(allies, *t)
		}
	}
	sort.Slice(allies, func(i, j int) bool {
		if allies[i].count != allies[j].count {
			return allies[i].count > allies[j].count
		}
		return allies[i].name < allies[j].name
	})

	proposals := make([]string, 0, len(allies))
	for _, t := range allies {
		proposals = append(proposals, fmt.Sprintf(
			"Propose a standing alliance with %s after %d high-compatibility teamings this period", t.name, t.count))
	}
	return proposals
}
