package uploadrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// HandleMessage runs one upload to its end. A nil return acks the message:
// malformed requests and jobs parked in pending commit are not redelivered,
// a failed upload is, and the redelivery starts over with a new asset.
func (s *uploadRequestService) HandleMessage(ctx context.Context, data []byte) error {
	var msg domain.UploadRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Error().Err(err).Msg("dropping undecodable upload request")
		return nil
	}
	if err := s.validate.Struct(msg); err != nil {
		s.logger.Error().Err(err).Str("file_path", msg.FilePath).Msg("dropping invalid upload request")
		return nil
	}

	ownerID, err := uuid.Parse(msg.OwnerID)
	if err != nil {
		s.logger.Error().Err(err).Msg("dropping upload request with invalid owner")
		return nil
	}

	jobID, err := s.uploads.Start(ctx, domain.UploadRequest{
		SourcePath: msg.FilePath,
		Caption:    msg.Caption,
		OwnerID:    ownerID,
		Quality:    domain.QualityProfile(msg.Quality),
	})
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnsupportedMedia),
		errors.Is(err, domain.ErrInvalidQuality):
		s.logger.Error().Err(err).Str("file_path", msg.FilePath).Msg("dropping rejected upload request")
		return nil
	case err != nil:
		return fmt.Errorf("could not start upload: %w", err)
	}

	snapshot, err := s.uploads.Wait(ctx, jobID)
	if err != nil {
		if cancelErr := s.uploads.Cancel(context.WithoutCancel(ctx), jobID); cancelErr != nil {
			s.logger.Warn().Err(cancelErr).Str("job_id", jobID.String()).Msg("could not cancel interrupted upload")
		}
		return fmt.Errorf("upload %s interrupted: %w", jobID, err)
	}

	log := s.logger.With().
		Str("job_id", jobID.String()).
		Str("stage", string(snapshot.Stage)).
		Logger()

	switch snapshot.Stage {
	case domain.StageCompleted:
		log.Info().Str("asset_id", snapshot.AssetID.String()).Msg("upload request completed")
		return nil
	case domain.StagePendingCommit:
		log.Error().
			Str("asset_id", snapshot.AssetID.String()).
			Str("media_url", snapshot.MediaURL).
			Msg("upload stored but not committed")
		return nil
	case domain.StageCancelled:
		log.Warn().Msg("upload request cancelled")
		return nil
	default:
		return fmt.Errorf("upload %s failed: %s", jobID, snapshot.LastError)
	}
}
