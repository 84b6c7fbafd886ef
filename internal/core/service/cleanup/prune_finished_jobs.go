package cleanup

import (
	"context"
	"time"
)

// PruneFinishedJobs forgets completed and cancelled jobs older than the retention.
// Failed and pending commit jobs are kept so they can still be retried.
func (c *cleanupService) PruneFinishedJobs(ctx context.Context, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pruned := c.uploads.Prune(now.Add(-c.cfg.JobRetention))
	if pruned > 0 {
		c.logger.Info().Int("pruned", pruned).Msg("finished jobs pruned")
	}
	return nil
}
