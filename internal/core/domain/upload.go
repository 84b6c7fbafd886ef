package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QualityProfile is a target encoding profile, empty for none
type QualityProfile string

const (
	QualityNone  QualityProfile = ""
	Quality1080p QualityProfile = "1080p"
	Quality4K    QualityProfile = "4k"
)

// ParseQualityProfile parses a profile name, case-insensitive
func ParseQualityProfile(value string) (QualityProfile, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return QualityNone, nil
	case "1080p":
		return Quality1080p, nil
	case "4k", "2160p":
		return Quality4K, nil
	default:
		return QualityNone, fmt.Errorf("%w: %s", ErrInvalidQuality, value)
	}
}

// Bounds returns the bounding box of the profile in landscape orientation
func (q QualityProfile) Bounds() (width, height int) {
	switch q {
	case Quality1080p:
		return 1920, 1080
	case Quality4K:
		return 3840, 2160
	default:
		return 0, 0
	}
}

// UploadRequest is the caller input to start a job
type UploadRequest struct {
	SourcePath string
	Caption    string
	OwnerID    uuid.UUID
	Quality    QualityProfile
}

// JobSnapshot is an immutable view of an upload job
type JobSnapshot struct {
	ID           uuid.UUID      `json:"id"`
	Stage        Stage          `json:"stage"`
	Progress     float64        `json:"progress"`
	Attempt      int            `json:"attempt"`
	AssetID      uuid.UUID      `json:"asset_id"`
	ObjectPath   string         `json:"object_path"`
	MediaURL     string         `json:"media_url,omitempty"`
	ThumbnailURL *string        `json:"thumbnail_url,omitempty"`
	LastError    string         `json:"last_error,omitempty"`
	ErrorKind    ErrorKind      `json:"error_kind,omitempty"`
	UserMessage  string         `json:"user_message,omitempty"`
	Actions      []Action       `json:"actions"`
	Payload      *CommitPayload `json:"payload,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}
