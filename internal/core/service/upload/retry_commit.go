package upload

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// RetryCommit re-attempts only the metadata commit with the preserved payload.
// It is rejected without side effects unless the job is pending commit.
func (s *uploadService) RetryCommit(ctx context.Context, id uuid.UUID) error {
	j, err := s.lookup(id)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.stage != domain.StagePendingCommit || j.payload == nil {
		return domain.ErrCommitRetryNotAllowed
	}

	payload := *j.payload
	now := s.now()
	j.stage = domain.StageCommitting
	j.stageStartedAt = now
	j.lastErr = nil
	j.userMessage = ""
	j.notifyLocked(now)

	j.logger.Info().Str("asset_id", payload.AssetID.String()).Msg("retrying metadata commit")
	s.launchLocked(j, func(ctx context.Context, j *job) {
		s.commit(ctx, j, payload)
	})
	return nil
}
