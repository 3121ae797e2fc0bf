package insights

import "github.com/unations/matchengine/internal/contracts"

// periodWindow bundles one reporting window's records.
type periodWindow struct {
	matches  []*contracts.Match
	outcomes []*contracts.Outcome
}

func (w *periodWindow) submitted() int {
	n := 0
	for _, o := range w.outcomes {
		if o.Submitted {
			n++
		}
	}
	return n
}

func (w *periodWindow) wins() int {
	n := 0
	for _, o := range w.outcomes {
		if o.Won {
			n++
		}
	}
	return n
}

// submissionRate is submitted outcomes over total matches.
func (w *periodWindow) submissionRate() float64 {
	if len(w.matches) == 0 {
		return 0
	}
	return float64(w.submitted()) / float64(len(w.matches))
}

// winRate is wins over submitted outcomes.
func (w *periodWindow) winRate() float64 {
	submitted := w.submitted()
	if submitted == 0 {
		return 0
	}
	return float64(w.wins()) / float64(submitted)
}

func (w *periodWindow) averageScore() float64 {
	if len(w.matches) == 0 {
		return 0
	}
	var total float64
	for _, m := range w.matches {
		total += m.OverallScore
	}
	return total / float64(len(w.matches))
}

// responseDays is the mean number of days between evaluation and the
// recorded outcome, over submitted outcomes joined to this window's
// matches.
func (w *periodWindow) responseDays() float64 {
	byID := make(map[string]*contracts.Match, len(w.matches))
	for _, m := range w.matches {
		byID[m.ID] = m
	}

	var total float64
	n := 0
	for _, o := range w.outcomes {
		if !o.Submitted {
			continue
		}
		m, ok := byID[o.MatchID]
		if !ok {
			continue
		}
		total += o.RecordedAt.Sub(m.CreatedAt).Hours() / 24
		n++
	}

	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// buildTrends compares the tracked metrics across the two windows.
func buildTrends(current, previous *periodWindow) contracts.InsightTrends {
	return contracts.InsightTrends{
		MatchQuality: trendOf(current.averageScore(), previous.averageScore(), true),
		WinRate:      trendOf(current.winRate(), previous.winRate(), true),
		ResponseTime: trendOf(current.responseDays(), previous.responseDays(), false),
	}
}

// trendOf labels the movement of one metric. higherIsBetter flips the
// label for metrics where a fall is an improvement.
func trendOf(current, previous float64, higherIsBetter bool) contracts.Trend {
	t := contracts.Trend{
		Current:   current,
		Previous:  previous,
		Delta:     current - previous,
		Direction: contracts.TrendSteady,
	}

	switch {
	case t.Delta == 0:
	case (t.Delta > 0) == higherIsBetter:
		t.Direction = contracts.TrendImproving
	default:
		t.Direction = contracts.TrendDeclining
	}

	return t
}
