package scheduler

import (
	"context"

	analyticsapp "github.com/swas/backend/internal/application/analytics"
	"go.uber.org/zap"
)

// RollupJobName names the daily analytics rebuild
const RollupJobName = "analytics-rollup"

// RollupRefresher rebuilds the analytics tables
type RollupRefresher interface {
	RefreshRollups(ctx context.Context) (*analyticsapp.RefreshResult, error)
}

// NewRollupExecutor runs the analytics rebuild for rollup jobs
func NewRollupExecutor(refresher RollupRefresher, logger *zap.Logger) JobExecutor {
	return JobExecutorFunc(func(ctx context.Context, job *Job) error {
		result, err := refresher.RefreshRollups(ctx)
		if err != nil {
			return err
		}
		logger.Debug("Rollup job finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("days", result.Days),
		)
		return nil
	})
}
