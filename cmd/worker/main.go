package main

import (
	"context"
	"fmt"
	natsbroker "media-pipeline/internal/adapters/eventbroker/nats"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/service/uploadrequest"
	"media-pipeline/internal/logger"
	"media-pipeline/internal/pipeline"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "media-pipeline-worker",
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})

	if !cfg.NATS.Enabled {
		log.Fatal().Msg("the worker consumes upload requests from NATS, set NATS_ENABLED=true")
	}

	p, err := pipeline.Build(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}

	requestService := uploadrequest.NewUploadRequestService(p.Uploads, log)

	// Initialize NATS consumer
	natsConsumer, err := natsbroker.NewNATSConsumer(cfg.NATS, logger.Component(log, "nats"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create NATS consumer")
	}
	log.Info().Msg("NATS consumer initialized")

	// Subscribe to NATS
	if err := natsConsumer.Subscribe(ctx, requestService); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to NATS")
	}
	log.Info().Str("subject", cfg.NATS.Subject).Msg("NATS subscription active")

	// Wait for termination signal
	<-ctx.Done()
	log.Info().Msg("gracefully shutting down upload worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// in-flight messages see ctx cancelled, cancel their job and are redelivered later
	if err := natsConsumer.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close NATS consumer during shutdown")
	}
	if err := p.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close pipeline")
	}

	log.Info().Msg("upload worker shutdown complete")
}
