package upload

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// Retry restarts a failed job from the beginning with a fresh asset id and object path.
// Jobs waiting on a metadata commit must use RetryCommit instead.
func (s *uploadService) Retry(ctx context.Context, id uuid.UUID) error {
	j, err := s.lookup(id)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.stage != domain.StageFailed {
		return domain.ErrRetryNotAllowed
	}

	now := s.now()
	j.attempt++
	j.assetID = uuid.New()
	j.objectPath = ""
	j.mediaURL = ""
	j.thumbnailURL = nil
	j.payload = nil
	j.lastErr = nil
	j.userMessage = ""
	j.progress = 0
	j.stage = domain.StageIdle
	j.stageStartedAt = now
	j.notifyLocked(now)

	j.logger.Info().Int("attempt", j.attempt).Msg("retrying upload")
	s.launchLocked(j, s.run)
	return nil
}
