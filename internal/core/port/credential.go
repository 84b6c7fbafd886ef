package port

import (
	"context"
	"media-pipeline/internal/core/domain"
)

// TokenRefresher exchanges a refresh token for a new credential
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (domain.Credential, error)
}

// TokenStore persists the credential between runs
type TokenStore interface {
	Load(ctx context.Context) (domain.Credential, error)
	Save(ctx context.Context, cred domain.Credential) error
}

// CredentialManager owns the process-wide credential
type CredentialManager interface {
	TokenSource
	EnsureFresh(ctx context.Context) (domain.Credential, error)
	Adopt(ctx context.Context, cred domain.Credential) error
}
