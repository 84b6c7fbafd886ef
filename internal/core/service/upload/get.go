package upload

import (
	"context"
	"media-pipeline/internal/core/domain"
	"sort"

	"github.com/google/uuid"
)

// Get returns the current snapshot of a job
func (s *uploadService) Get(ctx context.Context, id uuid.UUID) (domain.JobSnapshot, error) {
	j, err := s.lookup(id)
	if err != nil {
		return domain.JobSnapshot{}, err
	}
	return j.snapshot(), nil
}

// List returns every known job, newest first
func (s *uploadService) List(ctx context.Context) []domain.JobSnapshot {
	s.mu.RLock()
	snapshots := make([]domain.JobSnapshot, 0, len(s.jobs))
	for _, j := range s.jobs {
		snapshots = append(snapshots, j.snapshot())
	}
	s.mu.RUnlock()

	sort.Slice(snapshots, func(a, b int) bool {
		return snapshots[a].CreatedAt.After(snapshots[b].CreatedAt)
	})
	return snapshots
}
