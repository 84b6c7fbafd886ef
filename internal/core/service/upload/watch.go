package upload

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// Watch streams snapshots of a job, starting with the current one.
// The channel is closed when ctx ends, the job terminates or the job is pruned.
func (s *uploadService) Watch(ctx context.Context, id uuid.UUID) (<-chan domain.JobSnapshot, error) {
	j, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	ch, unsubscribe := j.subscribe()
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return ch, nil
}

// Wait blocks until the in-flight run of a job ends and returns the resulting snapshot
func (s *uploadService) Wait(ctx context.Context, id uuid.UUID) (domain.JobSnapshot, error) {
	j, err := s.lookup(id)
	if err != nil {
		return domain.JobSnapshot{}, err
	}

	j.mu.RLock()
	done := j.done
	j.mu.RUnlock()

	select {
	case <-done:
		return j.snapshot(), nil
	case <-ctx.Done():
		return j.snapshot(), ctx.Err()
	}
}
