package port

import (
	"context"
	"time"
)

// CleanupService is service that handles cleanup
type CleanupService interface {
	PruneFinishedJobs(ctx context.Context, now time.Time) error
	CleanupWorkDir(ctx context.Context, now time.Time) error
}
