package domain

import (
	"time"

	"github.com/google/uuid"
)

// MediaAsset is the published media row
type MediaAsset struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Username     string
	Caption      *string
	MediaURL     string
	ThumbnailURL *string
	Likes        int64
	Comments     int64
	Shares       int64
	Views        int64
	CreatedAt    time.Time
}

// CommitPayload holds everything the metadata commit needs, so it can be retried without re-uploading
type CommitPayload struct {
	AssetID      uuid.UUID `json:"asset_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Username     string    `json:"username"`
	Caption      *string   `json:"caption,omitempty"`
	MediaURL     string    `json:"media_url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	ObjectPath   string    `json:"object_path"`
}

// StoredObject is an entry of a storage listing
type StoredObject struct {
	Name         string
	Size         int64
	LastModified time.Time
}

// DefaultUsername is used when the owner has no profile
const DefaultUsername = "user"
