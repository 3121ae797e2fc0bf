package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
)

const (
	// historyLookback bounds, in years, how far back prior contracts count
	// toward the historical context.
	historyLookback = 3

	// incumbencyMonths is how recent a similar win must be for the
	// candidate to be treated as the incumbent.
	incumbencyMonths = 12
)

// RepoHistoryProvider derives a candidate's historical context from the
// engine's own outcome records. It satisfies contracts.HistoryProvider
// for deployments without an external performance registry.
type RepoHistoryProvider struct {
	outcomes      contracts.OutcomeRepository
	opportunities contracts.OpportunityRepository
}

// NewRepoHistoryProvider creates a repository-backed history provider.
func NewRepoHistoryProvider(outcomes contracts.OutcomeRepository, opportunities contracts.OpportunityRepository) *RepoHistoryProvider {
	return &RepoHistoryProvider{
		outcomes:      outcomes,
		opportunities: opportunities,
	}
}

// LookupHistory counts the candidate's won contracts in industries
// overlapping the opportunity's. Incumbency means such a win recorded
// inside the last twelve months. Satisfaction averages only rated wins.
func (p *RepoHistoryProvider) LookupHistory(ctx context.Context, candidateID string, opp *contracts.Opportunity) (*contracts.HistoricalContext, error) {
	now := time.Now()
	outcomes, err := p.outcomes.ListByCandidate(ctx, candidateID, now.AddDate(-historyLookback, 0, 0), now)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}

	hc := &contracts.HistoricalContext{}
	recent := now.AddDate(0, -incumbencyMonths, 0)

	var satisfactionTotal float64
	rated := 0

	loaded := make(map[string]*contracts.Opportunity)
	for _, o := range outcomes {
		if !o.Won {
			continue
		}

		prior, ok := loaded[o.OpportunityID]
		if !ok {
			prior, err = p.opportunities.GetByID(ctx, o.OpportunityID)
			if err != nil {
				prior = nil
			}
			loaded[o.OpportunityID] = prior
		}
		if prior == nil || !scoring.AnyOverlap(prior.Industries, opp.Industries) {
			continue
		}

		hc.PriorContracts++
		hc.PriorContractValue += o.FinalValue
		if o.Satisfaction > 0 {
			satisfactionTotal += o.Satisfaction
			rated++
		}
		if o.RecordedAt.After(recent) {
			hc.Incumbent = true
		}
	}

	if rated > 0 {
		hc.AverageSatisfaction = satisfactionTotal / float64(rated)
	}

	return hc, nil
}
