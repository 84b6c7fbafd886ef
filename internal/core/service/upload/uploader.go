package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/metrics"
	"os"
)

// uploader streams a local file to object storage
type uploader struct {
	storage port.ObjectStorage
	metrics *metrics.PipelineMetrics
}

// Upload streams localPath to bucket/destination, reporting progress in [0, 1].
// It returns a *domain.TransportError when the storage write fails or stops short.
func (u *uploader) Upload(ctx context.Context, localPath, bucket, destination, contentType string, cred domain.Credential, onProgress func(float64)) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open upload source: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat upload source: %w", err)
	}

	body := newProgressReader(f, info.Size(), onProgress)
	if err := u.storage.Put(ctx, bucket, destination, body, info.Size(), contentType, cred.AccessToken); err != nil {
		var transportErr *domain.TransportError
		if errors.As(err, &transportErr) {
			return err
		}
		return &domain.TransportError{Op: "upload", Err: err}
	}
	u.metrics.AddUploadedBytes(body.read)

	if body.read < info.Size() {
		return &domain.TransportError{Op: "upload", Err: io.ErrUnexpectedEOF}
	}
	if onProgress != nil {
		onProgress(1)
	}
	return nil
}
