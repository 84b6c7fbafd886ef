package port

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// AssetRepository is an interface to define media asset persistence
type AssetRepository interface {
	Insert(ctx context.Context, payload domain.CommitPayload) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.MediaAsset, error)
}

// ProfileRepository is an interface to read user profiles
type ProfileRepository interface {
	FindUsername(ctx context.Context, ownerID uuid.UUID) (string, error)
}
