package upload

import (
	"context"
	"fmt"
	"media-pipeline/internal/core/domain"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Start validates the request, registers a job and runs it in the background
func (s *uploadService) Start(ctx context.Context, req domain.UploadRequest) (uuid.UUID, error) {
	if req.OwnerID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidRequest)
	}
	quality, err := domain.ParseQualityProfile(string(req.Quality))
	if err != nil {
		return uuid.Nil, err
	}
	req.Quality = quality

	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return uuid.Nil, fmt.Errorf("%w: %s is not a non-empty file", domain.ErrInvalidRequest, req.SourcePath)
	}

	mt, err := mimetype.DetectFile(req.SourcePath)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if !strings.HasPrefix(mt.String(), "video/") {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, mt.String())
	}

	j := newJob(req, mt.String(), extensionOf(req.SourcePath, mt.Extension()), s.now(), s.logger)

	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()

	j.mu.Lock()
	s.launchLocked(j, s.run)
	j.mu.Unlock()

	j.logger.Info().
		Str("owner_id", req.OwnerID.String()).
		Str("content_type", mt.String()).
		Str("quality", string(req.Quality)).
		Int64("size", info.Size()).
		Msg("upload job started")
	return j.id, nil
}
