package upload

import (
	"context"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/logger"
	"media-pipeline/internal/metrics"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dependencies groups the collaborators of the upload service.
// Transcoder and Thumbnails are optional.
type Dependencies struct {
	Storage     port.ObjectStorage
	Assets      port.AssetRepository
	Profiles    port.ProfileRepository
	Credentials port.CredentialManager
	Transcoder  port.Transcoder
	Thumbnails  port.ThumbnailExtractor
	Publisher   port.EventPublisher
}

type uploadService struct {
	deps       Dependencies
	cfg        config.PipelineConfig
	storageCfg config.StorageConfig

	uploader  *uploader
	prober    *prober
	resolver  *resolver
	committer *committer

	metrics *metrics.PipelineMetrics
	logger  zerolog.Logger
	now     func() time.Time

	mu   sync.RWMutex
	jobs map[uuid.UUID]*job
	wg   sync.WaitGroup
}

// NewUploadService creates the upload orchestrator
func NewUploadService(deps Dependencies, cfg config.PipelineConfig, storageCfg config.StorageConfig, m *metrics.PipelineMetrics, log zerolog.Logger) port.UploadService {
	policy := func(attempts int) RetryPolicy {
		return RetryPolicy{
			InitialInterval: cfg.BackoffInitial,
			MaxInterval:     cfg.BackoffMax,
			MaxAttempts:     attempts,
		}
	}
	return &uploadService{
		deps:       deps,
		cfg:        cfg,
		storageCfg: storageCfg,
		uploader:   &uploader{storage: deps.Storage, metrics: m},
		prober:     &prober{storage: deps.Storage, policy: policy(cfg.ProbeAttempts), metrics: m},
		resolver:   &resolver{storage: deps.Storage, policy: policy(cfg.ResolveAttempts), ttl: storageCfg.SignedURLTTL, metrics: m},
		committer:  &committer{assets: deps.Assets, policy: policy(cfg.CommitAttempts), metrics: m},
		metrics:    m,
		logger:     logger.Component(log, "upload"),
		now:        time.Now,
		jobs:       make(map[uuid.UUID]*job),
	}
}

func (s *uploadService) lookup(id uuid.UUID) (*job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return j, nil
}

// launchLocked starts fn on its own goroutine. j.mu must be held.
func (s *uploadService) launchLocked(j *job, fn func(ctx context.Context, j *job)) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	j.cancel = cancel
	j.done = done

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		defer cancel()
		fn(ctx, j)
	}()
}

// Shutdown cancels running jobs and waits for them to stop
func (s *uploadService) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	for _, j := range s.jobs {
		j.mu.RLock()
		if j.stage.IsRunning() && j.cancel != nil {
			j.cancel()
		}
		j.mu.RUnlock()
	}
	s.mu.RUnlock()

	stopped := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
