package minio

import (
	"context"
	"fmt"
	"io"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Adapter is an adapter for minio
type Adapter struct {
	client     *minio.Client
	config     config.MinioConfig
	publicBase string
	logger     zerolog.Logger
}

// NewAdapter returns Adapter and makes sure every bucket exists
func NewAdapter(ctx context.Context, cfg config.MinioConfig, buckets []string, logger zerolog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	for _, bucket := range buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			logger.Info().Str("bucket", bucket).Msg("bucket created")
		}
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = scheme + "://" + cfg.Endpoint
	}

	return &Adapter{client: client, config: cfg, publicBase: publicBase, logger: logger}, nil
}

// Put streams body to bucket/path. minio authenticates with its own keys so accessToken is unused.
func (a *Adapter) Put(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType, accessToken string) error {
	info, err := a.client.PutObject(ctx, bucket, path, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return &domain.TransportError{
			Op:         "put",
			StatusCode: minio.ToErrorResponse(err).StatusCode,
			Err:        err,
		}
	}

	a.logger.Debug().
		Str("bucket", bucket).
		Str("path", path).
		Int64("size", info.Size).
		Msg("object stored")
	return nil
}

// List returns the objects directly under dir with names relative to dir
func (a *Adapter) List(ctx context.Context, bucket, dir string) ([]domain.StoredObject, error) {
	prefix := strings.Trim(dir, "/")
	if prefix != "" {
		prefix += "/"
	}

	var objects []domain.StoredObject
	for obj := range a.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		objects = append(objects, domain.StoredObject{
			Name:         name,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

// SignedURL presigns a GET on an existing object
func (a *Adapter) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	if _, err := a.client.StatObject(ctx, bucket, path, minio.StatObjectOptions{}); err != nil {
		return "", fmt.Errorf("failed to get object info: %w", err)
	}

	presignedURL, err := a.client.PresignedGetObject(ctx, bucket, path, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return presignedURL.String(), nil
}

// PublicURL builds the anonymous url of an object, it does not check the object exists
func (a *Adapter) PublicURL(ctx context.Context, bucket, path string) (string, error) {
	u, err := url.JoinPath(a.publicBase, bucket, path)
	if err != nil {
		return "", fmt.Errorf("failed to build public url: %w", err)
	}
	return u, nil
}
