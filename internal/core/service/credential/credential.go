package credential

import (
	"context"
	"errors"
	"fmt"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/logger"
	"media-pipeline/internal/metrics"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Manager holds the process-wide credential and renews it before expiry.
// Concurrent renewals collapse into a single call to the refresher.
type Manager struct {
	mu   sync.RWMutex
	cred domain.Credential

	refresher port.TokenRefresher
	store     port.TokenStore
	publisher port.EventPublisher
	metrics   *metrics.PipelineMetrics
	window    time.Duration
	now       func() time.Time
	group     singleflight.Group
	logger    zerolog.Logger

	listeners []func(domain.Credential)
}

// Option customizes a Manager
type Option func(*Manager)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewCredentialManager creates a credential manager
func NewCredentialManager(refresher port.TokenRefresher, store port.TokenStore, publisher port.EventPublisher, cfg config.AuthConfig, m *metrics.PipelineMetrics, log zerolog.Logger, opts ...Option) *Manager {
	mgr := &Manager{
		refresher: refresher,
		store:     store,
		publisher: publisher,
		metrics:   m,
		window:    cfg.RefreshWindow,
		now:       time.Now,
		logger:    logger.Component(log, "credential"),
	}
	for _, opt := range opts {
		opt(mgr)
	}
	return mgr
}

// Load restores the persisted credential. A missing credential is not an error.
func (m *Manager) Load(ctx context.Context) error {
	cred, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			m.logger.Info().Msg("no persisted credential")
			return nil
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()

	m.logger.Info().Str("access_token", logger.MaskToken(cred.AccessToken)).Msg("credential loaded")
	return nil
}

// OnRenew registers fn to be called with every refreshed credential
func (m *Manager) OnRenew(fn func(domain.Credential)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// CurrentToken returns the credential currently held
func (m *Manager) CurrentToken() domain.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred
}

// Adopt replaces the credential, e.g. after a sign-in
func (m *Manager) Adopt(ctx context.Context, cred domain.Credential) error {
	if cred.IsZero() {
		return domain.ErrNotAuthenticated
	}
	if exp, err := ParseExpiry(cred.AccessToken); err == nil {
		cred.ExpiresAt = exp
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()

	if err := m.store.Save(ctx, cred); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	return nil
}
