package eventlog

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher writes events to the log, used when no broker is configured
type Publisher struct {
	logger zerolog.Logger
}

// NewPublisher returns Publisher
func NewPublisher(logger zerolog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish logs the event and never fails
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	e := p.logger.Info().
		Str("event", string(event.Type)).
		Time("occurred_at", event.OccurredAt)
	if event.JobID != uuid.Nil {
		e = e.Str("job_id", event.JobID.String())
	}
	if event.Payload != nil {
		e = e.Str("asset_id", event.Payload.AssetID.String()).Str("media_url", event.Payload.MediaURL)
	}
	e.Msg("pipeline event")
	return nil
}
