package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// Publisher publishes pipeline events on JetStream under <prefix>.<event type>
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	prefix string
	logger zerolog.Logger
}

// NewPublisher connects to NATS and makes sure the stream exists
func NewPublisher(ctx context.Context, cfg config.NATSConfig, logger zerolog.Logger) (*Publisher, error) {
	conn, js, err := Connect(cfg, cfg.ConsumerName+"-publisher", logger)
	if err != nil {
		return nil, err
	}
	if err := EnsureStream(ctx, js, cfg); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, js: js, prefix: cfg.EventSubjectPrefix, logger: logger}, nil
}

// Publish sends the event. The message id makes a republished event a duplicate for the stream.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	subject := p.prefix + "." + string(event.Type)
	msgID := fmt.Sprintf("%s:%s:%d", event.Type, event.JobID, event.OccurredAt.UnixNano())
	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.Debug().Str("subject", subject).Str("job_id", event.JobID.String()).Msg("event published")
	return nil
}

// Close drains the connection
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
