package jobs

import (
	"context"
	"fmt"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/insights"
	"github.com/unations/matchengine/pkg/logger"
)

// snapshotPeriods are the windows summarized for every candidate each
// night. The external report generator reads whichever it needs.
var snapshotPeriods = []string{"1M", "3M", "1Y"}

// InsightsSnapshotJob summarizes every mirrored candidate nightly and
// persists the summaries for the report generator.
type InsightsSnapshotJob struct {
	aggregator *insights.Aggregator
	candidates contracts.CandidateRepository
	snapshots  contracts.InsightsSnapshotRepository
	logger     *logger.Logger
}

// NewInsightsSnapshotJob creates a new insights snapshot job.
func NewInsightsSnapshotJob(
	aggregator *insights.Aggregator,
	candidates contracts.CandidateRepository,
	snapshots contracts.InsightsSnapshotRepository,
	log *logger.Logger,
) *InsightsSnapshotJob {
	return &InsightsSnapshotJob{
		aggregator: aggregator,
		candidates: candidates,
		snapshots:  snapshots,
		logger:     log,
	}
}

// Name returns the job name
func (j *InsightsSnapshotJob) Name() string {
	return "insights_snapshot"
}

// Schedule returns the cron schedule (02:00 daily)
func (j *InsightsSnapshotJob) Schedule() string {
	return "0 0 2 * * *"
}

// Run summarizes each candidate over every snapshot period. A failing
// candidate is logged and skipped so one bad profile cannot starve the
// rest; the job reports failure when any candidate failed.
func (j *InsightsSnapshotJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled insights snapshot")

	candidates, err := j.candidates.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}

	saved, failed := 0, 0
	for _, cand := range candidates {
		for _, period := range snapshotPeriods {
			summary, err := j.aggregator.Summarize(ctx, cand.ID, period)
			if err != nil {
				failed++
				j.logger.WithError(err).WithFields(map[string]interface{}{
					"candidate_id": cand.ID,
					"period":       period,
				}).Warn("Failed to summarize candidate")
				continue
			}

			if err := j.snapshots.Save(ctx, summary); err != nil {
				failed++
				j.logger.WithError(err).WithFields(map[string]interface{}{
					"candidate_id": cand.ID,
					"period":       period,
				}).Warn("Failed to save insights snapshot")
				continue
			}
			saved++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"saved":      saved,
		"failed":     failed,
	}).Info("Insights snapshot completed")

	if failed > 0 {
		return fmt.Errorf("insights snapshot failed for %d of %d summaries", failed, saved+failed)
	}
	return nil
}
