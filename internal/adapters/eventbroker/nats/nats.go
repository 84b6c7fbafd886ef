package nats

import (
	"context"
	"errors"
	"fmt"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/port"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// Connect opens a connection that reconnects forever and a JetStream handle on it
func Connect(cfg config.NATSConfig, name string, logger zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}
	return conn, js, nil
}

// EnsureStream creates the stream carrying upload requests and pipeline events if it is missing
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg config.NATSConfig) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.Subject, cfg.EventSubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// Consumer is a struct to interact with nats
type Consumer struct {
	logger zerolog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	iter   jetstream.MessagesContext
	stop   func() bool
	wg     sync.WaitGroup
}

// NewNATSConsumer creates a new consumer
func NewNATSConsumer(cfg config.NATSConfig, logger zerolog.Logger) (*Consumer, error) {
	conn, js, err := Connect(cfg, cfg.ConsumerName, logger)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

// Subscribe subscribes to stream and handles messages one at a time.
// A handler error naks the message so it is redelivered.
func (n *Consumer) Subscribe(ctx context.Context, handler port.MessageService) error {
	ackWait := n.config.AckWait
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}
	maxDeliver := n.config.MaxDeliver
	if maxDeliver == 0 {
		maxDeliver = 5
	}

	consumerCfg := jetstream.ConsumerConfig{
		Durable:       n.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: n.config.Subject,
		AckWait:       ackWait,
		MaxDeliver:    maxDeliver,
	}

	cons, err := n.js.CreateOrUpdateConsumer(ctx, n.config.StreamName, consumerCfg)
	if err != nil {
		return err
	}

	iter, err := cons.Messages()
	if err != nil {
		return err
	}
	n.iter = iter
	n.stop = context.AfterFunc(ctx, iter.Stop)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.logger.Info().Str("subject", n.config.Subject).Msg("NATS subscription started")
		for {
			msg, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					n.logger.Info().Msg("NATS subscription stopped")
					return
				}
				n.logger.Error().Err(err).Msg("failed to receive message")
				return
			}
			n.handle(ctx, msg, handler, ackWait)
		}
	}()
	return nil
}

// handle runs the handler while keeping the message in progress, an upload can outlive AckWait
func (n *Consumer) handle(ctx context.Context, msg jetstream.Msg, handler port.MessageService, ackWait time.Duration) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(ackWait / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := msg.InProgress(); err != nil {
					n.logger.Warn().Err(err).Msg("failed to extend ack deadline")
				}
			}
		}
	}()

	handleErr := handler.HandleMessage(ctx, msg.Data())
	close(done)

	if handleErr != nil {
		if errNak := msg.Nak(); errNak != nil {
			n.logger.Error().Err(errNak).Msg("failed to nak message")
		}
		n.logger.Warn().Err(handleErr).Msg("failed to handle message")
		return
	}
	if ackErr := msg.Ack(); ackErr != nil {
		n.logger.Error().Err(ackErr).Msg("failed to ack message")
	}
}

// Close graceful shutdown
func (n *Consumer) Close() error {
	if n.stop != nil {
		n.stop()
	}
	if n.iter != nil {
		n.iter.Stop()
	}

	n.wg.Wait()

	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
