package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/pkg/logger"
)

// ExpirySweepJob closes open opportunities whose submission deadline has
// passed. Expiry is lazy: nothing reacts at the deadline instant, the
// sweep reconciles on the next run.
type ExpirySweepJob struct {
	opportunities contracts.OpportunityRepository
	logger        *logger.Logger
}

// NewExpirySweepJob creates a new expiry sweep job.
func NewExpirySweepJob(opportunities contracts.OpportunityRepository, log *logger.Logger) *ExpirySweepJob {
	return &ExpirySweepJob{
		opportunities: opportunities,
		logger:        log,
	}
}

// Name returns the job name
func (j *ExpirySweepJob) Name() string {
	return "expiry_sweep"
}

// Schedule returns the cron schedule (top of every hour)
func (j *ExpirySweepJob) Schedule() string {
	return "0 0 * * * *"
}

// Run expires every overdue open opportunity.
func (j *ExpirySweepJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled expiry sweep")

	overdue, err := j.opportunities.ListExpiredOpen(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("list overdue opportunities: %w", err)
	}

	expired := 0
	for _, opp := range overdue {
		if err := j.opportunities.SetStatus(ctx, opp.ID, contracts.OpportunityExpired); err != nil {
			j.logger.WithError(err).WithFields(map[string]interface{}{
				"opportunity_id": opp.ID,
			}).Warn("Failed to expire opportunity")
			continue
		}
		expired++
	}

	if expired > 0 {
		j.logger.WithField("expired", expired).Info("Expiry sweep completed")
	}

	if expired < len(overdue) {
		return fmt.Errorf("expired %d of %d overdue opportunities", expired, len(overdue))
	}
	return nil
}
