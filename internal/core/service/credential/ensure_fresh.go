package credential

import (
	"context"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/logger"
)

// EnsureFresh returns a credential that is not about to expire.
// Renewal is fail-open: when the claim cannot be read, no refresh token is held
// or the refresh call fails, the current credential is returned unchanged.
func (m *Manager) EnsureFresh(ctx context.Context) (domain.Credential, error) {
	current := m.CurrentToken()
	if current.IsZero() {
		return current, domain.ErrNotAuthenticated
	}
	if !m.needsRefresh(current) {
		return current, nil
	}

	// detached so a cancelled caller does not fail the refresh for the others waiting on it
	refreshCtx := context.WithoutCancel(ctx)
	v, _, _ := m.group.Do(refreshKey, func() (any, error) {
		latest := m.CurrentToken()
		if !m.needsRefresh(latest) {
			return latest, nil
		}
		return m.refresh(refreshCtx, latest), nil
	})
	return v.(domain.Credential), nil
}

func (m *Manager) needsRefresh(cred domain.Credential) bool {
	exp, err := ParseExpiry(cred.AccessToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("cannot read token expiry, using token as is")
		return false
	}
	if cred.RefreshToken == "" {
		return false
	}
	return exp.Sub(m.now()) <= m.window
}

func (m *Manager) refresh(ctx context.Context, current domain.Credential) domain.Credential {
	renewed, err := m.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		m.metrics.TokenRefresh("failure")
		m.logger.Warn().Err(err).Msg("token refresh failed, keeping current token")
		return current
	}
	if renewed.RefreshToken == "" {
		renewed.RefreshToken = current.RefreshToken
	}
	if exp, parseErr := ParseExpiry(renewed.AccessToken); parseErr == nil {
		renewed.ExpiresAt = exp
	}

	m.mu.Lock()
	m.cred = renewed
	listeners := append([]func(domain.Credential){}, m.listeners...)
	m.mu.Unlock()
	m.metrics.TokenRefresh("success")

	for _, fn := range listeners {
		fn(renewed)
	}

	if err := m.store.Save(ctx, renewed); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist refreshed credential")
	}
	if err := m.publisher.Publish(ctx, domain.Event{Type: domain.EventTypeTokenRenewed, OccurredAt: m.now()}); err != nil {
		m.logger.Warn().Err(err).Msg("failed to publish token renewal")
	}

	m.logger.Info().
		Str("access_token", logger.MaskToken(renewed.AccessToken)).
		Time("expires_at", renewed.ExpiresAt).
		Msg("token refreshed")
	return renewed
}
