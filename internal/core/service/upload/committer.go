package upload

import (
	"context"
	"errors"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/metrics"
	"time"

	"github.com/rs/zerolog"
)

// committer writes the media asset row
type committer struct {
	assets  port.AssetRepository
	policy  RetryPolicy
	metrics *metrics.PipelineMetrics
}

// Commit inserts the payload with backoff. An existing row with the same asset
// id means an earlier attempt landed, so it counts as success.
func (c *committer) Commit(ctx context.Context, payload domain.CommitPayload, log zerolog.Logger) error {
	err := retry(ctx, c.policy, func() error {
		err := c.assets.Insert(ctx, payload)
		if errors.Is(err, domain.ErrAssetExists) {
			log.Info().Str("asset_id", payload.AssetID.String()).Msg("asset already committed")
			return nil
		}
		return err
	}, func(attempt int, err error, wait time.Duration) {
		c.metrics.IncRetry("committing")
		log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("commit failed, retrying")
	})
	if err != nil {
		return &domain.CommitError{AssetID: payload.AssetID.String(), Err: err}
	}
	return nil
}
