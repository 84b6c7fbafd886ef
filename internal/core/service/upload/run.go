package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"media-pipeline/internal/core/domain"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// progress checkpoints of a run
const (
	progressUploadStart = 0.2
	progressUploadSpan  = 0.5
	progressVerified    = 0.75
	progressResolved    = 0.85
	progressPending     = 0.9
	progressCompleted   = 1.0
)

// run executes one full attempt: prepare, upload, verify, resolve, then commit
func (s *uploadService) run(ctx context.Context, j *job) {
	defer j.removeTempFiles()
	s.metrics.JobStarted()

	payload, err := s.deliver(ctx, j)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, domain.ErrCancelled) {
			s.markCancelled(j)
			return
		}
		s.markFailed(j, err)
		return
	}
	s.commit(ctx, j, payload)
}

// deliver puts the media in storage and builds the commit payload
func (s *uploadService) deliver(ctx context.Context, j *job) (domain.CommitPayload, error) {
	j.mu.RLock()
	req, contentType, ext, assetID, log := j.req, j.contentType, j.extension, j.assetID, j.logger
	j.mu.RUnlock()

	source := req.SourcePath
	if req.Quality != domain.QualityNone && s.deps.Transcoder != nil {
		if err := checkpoint(ctx); err != nil {
			return domain.CommitPayload{}, err
		}
		s.enter(j, domain.StagePreparing)

		out, err := s.deps.Transcoder.Transcode(ctx, source, req.Quality)
		if err := checkpoint(ctx); err != nil {
			return domain.CommitPayload{}, err
		}
		if err != nil {
			log.Warn().Err(err).Str("quality", string(req.Quality)).Msg("transcoding failed, uploading original")
		} else {
			j.addTempFile(out)
			source, contentType, ext = out, "video/mp4", ".mp4"
		}
	}

	if err := checkpoint(ctx); err != nil {
		return domain.CommitPayload{}, err
	}
	objectPath := fmt.Sprintf("%s/%s%s", req.OwnerID, assetID, ext)
	j.setObjectPath(objectPath)
	s.enter(j, domain.StageUploading)
	j.advance(progressUploadStart, s.now())

	cred, err := s.deps.Credentials.EnsureFresh(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no fresh credential, uploading with current one")
	}
	if err := checkpoint(ctx); err != nil {
		return domain.CommitPayload{}, err
	}

	bucket := s.storageCfg.VideoBucket
	err = s.uploader.Upload(ctx, source, bucket, objectPath, contentType, cred, func(p float64) {
		j.advance(progressUploadStart+p*progressUploadSpan, s.now())
	})
	if err != nil {
		return domain.CommitPayload{}, err
	}

	if err := checkpoint(ctx); err != nil {
		return domain.CommitPayload{}, err
	}
	s.enter(j, domain.StageVerifying)
	if err := sleepCtx(ctx, s.cfg.SettleDelay); err != nil {
		return domain.CommitPayload{}, domain.ErrCancelled
	}
	s.prober.Probe(ctx, bucket, objectPath, log)
	if err := checkpoint(ctx); err != nil {
		return domain.CommitPayload{}, err
	}
	j.advance(progressVerified, s.now())

	s.enter(j, domain.StageResolving)
	mediaURL, err := s.resolver.Resolve(ctx, bucket, objectPath, log)
	if cpErr := checkpoint(ctx); cpErr != nil {
		return domain.CommitPayload{}, cpErr
	}
	if err != nil {
		return domain.CommitPayload{}, err
	}
	j.setMediaURL(mediaURL, s.now())
	j.advance(progressResolved, s.now())

	thumbnailURL := s.publishThumbnail(ctx, j, source, cred)
	if err := checkpoint(ctx); err != nil {
		return domain.CommitPayload{}, err
	}

	payload := domain.CommitPayload{
		AssetID:      assetID,
		OwnerID:      req.OwnerID,
		Username:     s.username(ctx, req.OwnerID, j),
		Caption:      normalizeCaption(req.Caption),
		MediaURL:     mediaURL,
		ThumbnailURL: thumbnailURL,
		ObjectPath:   objectPath,
	}
	j.setPayload(payload)
	return payload, nil
}

// commit runs the metadata commit phase, inline or from a commit retry
func (s *uploadService) commit(ctx context.Context, j *job, payload domain.CommitPayload) {
	if ctx.Err() != nil {
		s.markCancelled(j)
		return
	}
	s.enter(j, domain.StageCommitting)

	err := s.committer.Commit(ctx, payload, j.logger)
	switch {
	case err == nil:
		s.markCompleted(j, payload)
	case ctx.Err() != nil:
		s.markCancelled(j)
	default:
		s.markPendingCommit(j, payload, err)
	}
}

// publishThumbnail extracts and uploads a thumbnail. Any failure yields nil.
func (s *uploadService) publishThumbnail(ctx context.Context, j *job, source string, cred domain.Credential) *string {
	if s.deps.Thumbnails == nil {
		return nil
	}
	log := j.logger

	image, err := s.deps.Thumbnails.ExtractThumbnail(ctx, source, s.cfg.ThumbnailOffset)
	if err != nil || len(image) == 0 {
		log.Warn().Err(err).Msg("thumbnail extraction failed, continuing without thumbnail")
		return nil
	}

	j.mu.RLock()
	owner := j.req.OwnerID
	j.mu.RUnlock()

	bucket := s.storageCfg.ThumbnailBucket
	thumbPath := fmt.Sprintf("%s/thumb_%s.jpg", owner, uuid.New())
	if err := s.deps.Storage.Put(ctx, bucket, thumbPath, bytes.NewReader(image), int64(len(image)), "image/jpeg", cred.AccessToken); err != nil {
		log.Warn().Err(err).Msg("thumbnail upload failed, continuing without thumbnail")
		return nil
	}
	url, err := s.deps.Storage.PublicURL(ctx, bucket, thumbPath)
	if err != nil || url == "" {
		log.Warn().Err(err).Msg("thumbnail url unavailable, continuing without thumbnail")
		return nil
	}
	return &url
}

func (s *uploadService) username(ctx context.Context, ownerID uuid.UUID, j *job) string {
	name, err := s.deps.Profiles.FindUsername(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			j.logger.Warn().Err(err).Msg("profile lookup failed, using default username")
		}
		return domain.DefaultUsername
	}
	if strings.TrimSpace(name) == "" {
		return domain.DefaultUsername
	}
	return name
}

// enter moves the job to stage and records the duration of the stage it left
func (s *uploadService) enter(j *job, stage domain.Stage) {
	prev, elapsed := j.setStage(stage, s.now())
	if prev != stage {
		s.metrics.ObserveStage(string(prev), elapsed)
	}
	j.logger.Debug().Str("stage", string(stage)).Msg("stage entered")
}

func (s *uploadService) markFailed(j *job, err error) {
	now := s.now()
	j.mu.Lock()
	prev, elapsed := j.stage, now.Sub(j.stageStartedAt)
	j.stage = domain.StageFailed
	j.stageStartedAt = now
	j.lastErr = err
	j.userMessage = userMessage(err)
	j.payload = nil
	j.notifyLocked(now)
	j.mu.Unlock()

	s.metrics.ObserveStage(string(prev), elapsed)
	s.metrics.JobFinished(string(domain.StageFailed))
	j.logger.Error().Err(err).Str("failed_stage", string(prev)).Msg("upload failed")
}

func (s *uploadService) markPendingCommit(j *job, payload domain.CommitPayload, err error) {
	now := s.now()
	j.mu.Lock()
	prev, elapsed := j.stage, now.Sub(j.stageStartedAt)
	j.stage = domain.StagePendingCommit
	j.stageStartedAt = now
	j.lastErr = err
	j.userMessage = userMessage(err)
	j.payload = &payload
	if j.progress < progressPending {
		j.progress = progressPending
	}
	id := j.id
	j.notifyLocked(now)
	j.mu.Unlock()

	s.metrics.ObserveStage(string(prev), elapsed)
	s.metrics.JobFinished(string(domain.StagePendingCommit))
	j.logger.Error().Err(err).Str("asset_id", payload.AssetID.String()).Msg("upload stored, metadata commit pending")
	s.publish(j, domain.Event{Type: domain.EventTypeAssetCommitPending, JobID: id, OccurredAt: now, Payload: &payload})
}

func (s *uploadService) markCompleted(j *job, payload domain.CommitPayload) {
	now := s.now()
	j.mu.Lock()
	prev, elapsed := j.stage, now.Sub(j.stageStartedAt)
	j.stage = domain.StageCompleted
	j.stageStartedAt = now
	j.lastErr = nil
	j.userMessage = ""
	j.payload = nil
	j.mediaURL = payload.MediaURL
	j.thumbnailURL = payload.ThumbnailURL
	j.progress = progressCompleted
	j.finishedAt = &now
	id := j.id
	j.notifyLocked(now)
	j.mu.Unlock()

	s.metrics.ObserveStage(string(prev), elapsed)
	s.metrics.JobFinished(string(domain.StageCompleted))
	j.logger.Info().Str("asset_id", payload.AssetID.String()).Str("media_url", payload.MediaURL).Msg("upload completed")
	s.publish(j, domain.Event{Type: domain.EventTypeAssetPublished, JobID: id, OccurredAt: now, Payload: &payload})
}

func (s *uploadService) markCancelled(j *job) {
	j.mu.Lock()
	prev, ok := s.cancelLocked(j)
	j.mu.Unlock()
	if ok {
		s.cancelled(j, prev)
	}
}

// cancelLocked moves the job to cancelled and drops its payload. j.mu must be held.
func (s *uploadService) cancelLocked(j *job) (domain.Stage, bool) {
	if j.stage.IsTerminal() {
		return j.stage, false
	}
	now := s.now()
	prev := j.stage
	j.stage = domain.StageCancelled
	j.stageStartedAt = now
	j.lastErr = domain.ErrCancelled
	j.userMessage = userMessage(domain.ErrCancelled)
	j.payload = nil
	j.finishedAt = &now
	j.notifyLocked(now)
	return prev, true
}

func (s *uploadService) cancelled(j *job, prev domain.Stage) {
	s.metrics.JobFinished(string(domain.StageCancelled))
	j.logger.Info().Str("cancelled_stage", string(prev)).Msg("upload cancelled")
}

func (s *uploadService) publish(j *job, event domain.Event) {
	if s.deps.Publisher == nil {
		return
	}
	// the job context may already be cancelled once the run ends
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.deps.Publisher.Publish(ctx, event); err != nil {
		j.logger.Warn().Err(err).Str("event", string(event.Type)).Msg("failed to publish event")
	}
}

func checkpoint(ctx context.Context) error {
	if ctx.Err() != nil {
		return domain.ErrCancelled
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func normalizeCaption(caption string) *string {
	trimmed := strings.TrimSpace(caption)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func extensionOf(path, detected string) string {
	if detected != "" {
		return detected
	}
	if ext := filepath.Ext(path); ext != "" {
		return strings.ToLower(ext)
	}
	return ".mp4"
}
