package matching

import (
	"sort"
	"sync"

	"github.com/unations/matchengine/internal/contracts"
)

// EvaluateBatch scores a set of candidates against one opportunity
// concurrently. Scoring is pure, so candidates are evaluated in parallel
// with no shared state; the result is sorted by descending overall score,
// ties broken by candidate ID for determinism.
//
// The opportunity is validated once up front; a validation failure rejects
// the whole batch.
func (e *Evaluator) EvaluateBatch(opp *contracts.Opportunity, cands []*contracts.Candidate) ([]*contracts.Match, error) {
	if err := validate(opp); err != nil {
		return nil, err
	}

	matches := make([]*contracts.Match, len(cands))

	var wg sync.WaitGroup
	for i, cand := range cands {
		wg.Add(1)
		go func(i int, cand *contracts.Candidate) {
			defer wg.Done()
			// validate already passed for the opportunity, so Evaluate
			// cannot fail here.
			match, _ := e.Evaluate(opp, cand)
			matches[i] = match
		}(i, cand)
	}
	wg.Wait()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].OverallScore != matches[j].OverallScore {
			return matches[i].OverallScore > matches[j].OverallScore
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})

	e.logger.WithFields(map[string]interface{}{
		"opportunity_id": opp.ID,
		"candidates":     len(cands),
	}).Debug("Batch evaluation completed")

	return matches, nil
}
