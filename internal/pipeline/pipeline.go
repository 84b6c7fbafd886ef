package pipeline

import (
	"context"
	"errors"
	"fmt"
	"media-pipeline/internal/adapters/auth/gotrue"
	"media-pipeline/internal/adapters/eventbroker/eventlog"
	natsbroker "media-pipeline/internal/adapters/eventbroker/nats"
	"media-pipeline/internal/adapters/media/ffmpeg"
	"media-pipeline/internal/adapters/repository/postgres"
	"media-pipeline/internal/adapters/storage/minio"
	"media-pipeline/internal/adapters/storage/supabase"
	filestore "media-pipeline/internal/adapters/tokenstore/file"
	redisstore "media-pipeline/internal/adapters/tokenstore/redis"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/core/service/cleanup"
	"media-pipeline/internal/core/service/credential"
	"media-pipeline/internal/core/service/upload"
	"media-pipeline/internal/logger"
	"media-pipeline/internal/metrics"
	"os"
	"os/exec"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Pipeline holds the wired upload pipeline shared by the binaries
type Pipeline struct {
	Uploads     port.UploadService
	Credentials *credential.Manager
	Cleanup     port.CleanupService

	logger  zerolog.Logger
	closers []func() error
}

// Build connects every collaborator of the upload service. reg may be nil.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{logger: log}
	m := metrics.NewPipelineMetrics(reg)

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	p.closers = append(p.closers, db.Close)
	log.Info().Msg("db connection established")

	publisher, err := p.providePublisher(ctx, cfg, log)
	if err != nil {
		p.closeAll()
		return nil, err
	}

	store, err := p.provideTokenStore(ctx, cfg)
	if err != nil {
		p.closeAll()
		return nil, err
	}

	credentials := credential.NewCredentialManager(gotrue.NewRefresher(cfg), store, publisher, cfg.Auth, m, log)
	if err := credentials.Load(ctx); err != nil {
		p.closeAll()
		return nil, err
	}
	credentials.OnRenew(func(c domain.Credential) {
		log.Debug().Time("expires_at", c.ExpiresAt).Msg("credential renewed")
	})

	storage, err := provideStorage(ctx, cfg, credentials, log)
	if err != nil {
		p.closeAll()
		return nil, err
	}

	deps := upload.Dependencies{
		Storage:     storage,
		Assets:      postgres.NewSqlAssetRepository(db),
		Profiles:    postgres.NewSqlProfileRepository(db),
		Credentials: credentials,
		Publisher:   publisher,
	}
	if err := provideMedia(cfg.Pipeline, &deps, log); err != nil {
		p.closeAll()
		return nil, err
	}

	p.Uploads = upload.NewUploadService(deps, cfg.Pipeline, cfg.Storage, m, log)
	p.Credentials = credentials
	p.Cleanup = cleanup.NewCleanupService(p.Uploads, cfg.Cleanup, cfg.Pipeline.WorkDir, log)
	return p, nil
}

// Close stops running jobs then releases connections
func (p *Pipeline) Close(ctx context.Context) error {
	var errs []error
	if p.Uploads != nil {
		if err := p.Uploads.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop uploads: %w", err))
		}
	}
	if err := p.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p *Pipeline) closeAll() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

func (p *Pipeline) providePublisher(ctx context.Context, cfg *config.Config, log zerolog.Logger) (port.EventPublisher, error) {
	if !cfg.NATS.Enabled {
		return eventlog.NewPublisher(logger.Component(log, "events")), nil
	}
	publisher, err := natsbroker.NewPublisher(ctx, cfg.NATS, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init event publisher: %w", err)
	}
	p.closers = append(p.closers, publisher.Close)
	return publisher, nil
}

func (p *Pipeline) provideTokenStore(ctx context.Context, cfg *config.Config) (port.TokenStore, error) {
	switch cfg.TokenStore.Backend {
	case "", "file":
		return filestore.NewStore(cfg.TokenStore.FilePath), nil
	case "redis":
		client, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		p.closers = append(p.closers, client.Close)
		return redisstore.NewStore(client, cfg.TokenStore.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown token store backend %q", cfg.TokenStore.Backend)
	}
}

func provideStorage(ctx context.Context, cfg *config.Config, tokens port.TokenSource, log zerolog.Logger) (port.ObjectStorage, error) {
	switch cfg.Storage.Backend {
	case "", "minio":
		adapter, err := minio.NewAdapter(ctx, cfg.Minio, []string{cfg.Storage.VideoBucket, cfg.Storage.ThumbnailBucket}, logger.Component(log, "minio"))
		if err != nil {
			return nil, fmt.Errorf("failed to init minio: %w", err)
		}
		return adapter, nil
	case "supabase":
		if cfg.Supabase.URL == "" {
			return nil, errors.New("SUPABASE_URL is required for the supabase storage backend")
		}
		return supabase.NewAdapter(cfg.Supabase, tokens, logger.Component(log, "supabase")), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// provideMedia wires ffmpeg when the binary is available, uploads run without
// transcoding and thumbnails otherwise
func provideMedia(cfg config.PipelineConfig, deps *upload.Dependencies, log zerolog.Logger) error {
	if err := os.MkdirAll(cfg.WorkDir, 0o700); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		log.Warn().Err(err).Str("ffmpeg", cfg.FFmpegPath).Msg("ffmpeg not found, transcoding and thumbnails disabled")
		return nil
	}
	deps.Transcoder = ffmpeg.NewTranscoder(cfg, logger.Component(log, "transcoder"))
	deps.Thumbnails = ffmpeg.NewThumbnailExtractor(cfg)
	return nil
}
