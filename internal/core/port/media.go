package port

import (
	"context"
	"media-pipeline/internal/core/domain"
	"time"
)

// Transcoder re-encodes a source file to a quality profile and returns the new file path
type Transcoder interface {
	Transcode(ctx context.Context, sourcePath string, profile domain.QualityProfile) (string, error)
}

// ThumbnailExtractor samples a frame and returns it as a compressed image
type ThumbnailExtractor interface {
	ExtractThumbnail(ctx context.Context, path string, at time.Duration) ([]byte, error)
}
