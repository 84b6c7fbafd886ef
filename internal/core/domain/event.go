package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType is a type that represents the type of an event
type EventType string

const (
	EventTypeAssetPublished     EventType = "asset.published"
	EventTypeAssetCommitPending EventType = "asset.commit_pending"
	EventTypeTokenRenewed       EventType = "token.renewed"
)

// Event is published on the broker when the pipeline reaches a notable point
type Event struct {
	Type       EventType      `json:"type"`
	JobID      uuid.UUID      `json:"job_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    *CommitPayload `json:"payload,omitempty"`
}

// UploadRequestMessage is an upload request received from the broker
type UploadRequestMessage struct {
	FilePath string `json:"file_path" validate:"required"`
	Caption  string `json:"caption" validate:"max=2200"`
	OwnerID  string `json:"owner_id" validate:"required,uuid"`
	Quality  string `json:"quality" validate:"omitempty,oneof=1080p 4k none"`
}
