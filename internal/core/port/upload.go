package port

import (
	"context"
	"media-pipeline/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// UploadService is an interface to define the upload orchestrator
type UploadService interface {
	Start(ctx context.Context, req domain.UploadRequest) (uuid.UUID, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Retry(ctx context.Context, id uuid.UUID) error
	RetryCommit(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.JobSnapshot, error)
	List(ctx context.Context) []domain.JobSnapshot
	Watch(ctx context.Context, id uuid.UUID) (<-chan domain.JobSnapshot, error)
	Wait(ctx context.Context, id uuid.UUID) (domain.JobSnapshot, error)
	Prune(before time.Time) int
	Shutdown(ctx context.Context) error
}
