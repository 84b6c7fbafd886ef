package port

import (
	"context"
	"io"
	"media-pipeline/internal/core/domain"
	"time"
)

// ObjectStorage is an interface to define object storage interactions
type ObjectStorage interface {
	// Put streams body to bucket/path. accessToken is the user credential, ignored by key-based backends.
	Put(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType, accessToken string) error
	List(ctx context.Context, bucket, dir string) ([]domain.StoredObject, error)
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	PublicURL(ctx context.Context, bucket, path string) (string, error)
}

// TokenSource gives adapters the current access token
type TokenSource interface {
	CurrentToken() domain.Credential
}
