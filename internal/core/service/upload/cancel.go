package upload

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// Cancel stops a running job at its next stage boundary, or abandons a failed one.
// The remote object of an interrupted upload is left in place.
func (s *uploadService) Cancel(ctx context.Context, id uuid.UUID) error {
	j, err := s.lookup(id)
	if err != nil {
		return err
	}

	j.mu.Lock()
	switch {
	case j.stage.IsTerminal():
		j.mu.Unlock()
		return domain.ErrJobTerminal
	case j.stage.IsRunning():
		cancel := j.cancel
		j.mu.Unlock()
		j.logger.Info().Msg("cancellation requested")
		if cancel != nil {
			cancel()
		}
		return nil
	default:
		prev, _ := s.cancelLocked(j)
		j.mu.Unlock()
		s.cancelled(j, prev)
		j.removeTempFiles()
		return nil
	}
}
