package main

import (
	"context"
	"errors"
	"fmt"
	"media-pipeline/internal/adapters/handlers/http/chi"
	"media-pipeline/internal/adapters/handlers/http/chi/v1/session"
	"media-pipeline/internal/adapters/handlers/http/chi/v1/upload"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/logger"
	"media-pipeline/internal/pipeline"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "media-pipeline-api",
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p, err := pipeline.Build(ctx, cfg, log, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}

	//http
	uploadHandler := upload.NewUploadHandlerV1(p.Uploads, logger.Component(log, "http"))
	sessionHandler := session.NewSessionHandlerV1(p.Credentials, logger.Component(log, "http"))
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})

	router := chi.NewRouter(log, uploadHandler, sessionHandler, metricsHandler, cfg.Env.Env)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("host", cfg.Server.Host).Str("port", cfg.Server.Port).Msg("starting server")
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			log.Error().Err(servErr).Msg("failed to start server")
			stop()
		}
	}()

	// init cleanup task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initCleanupTask(ctx, p.Cleanup, cfg.Cleanup.Every, log)
	}()

	//wait for context cancel
	<-ctx.Done()
	log.Info().Msg("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server")
	} else {
		log.Info().Msg("server gracefully shutdown complete")
	}

	if err := p.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close pipeline")
	}

	wg.Wait()
	log.Info().Msg("app shutdown complete")
}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	log.Info().Dur("interval", every).Msg("cleanup task initialized")

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			if err := service.PruneFinishedJobs(ctx, now); err != nil {
				log.Error().Err(err).Msg("failed to prune finished jobs")
			}
			if err := service.CleanupWorkDir(ctx, now); err != nil {
				log.Error().Err(err).Msg("failed to cleanup work dir")
			}
		case <-ctx.Done():
			log.Info().Msg("cleanup task stopped")
			return
		}
	}
}
