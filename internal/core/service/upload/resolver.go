package upload

import (
	"context"
	"errors"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/metrics"
	"time"

	"github.com/rs/zerolog"
)

var errEmptyURL = errors.New("storage returned an empty url")

// resolver obtains a retrievable url for an uploaded object
type resolver struct {
	storage port.ObjectStorage
	policy  RetryPolicy
	ttl     time.Duration
	metrics *metrics.PipelineMetrics
}

// Resolve asks for a signed url with backoff and falls back to the public url.
// It returns a *domain.LocatorError when neither is available.
func (r *resolver) Resolve(ctx context.Context, bucket, objectPath string, log zerolog.Logger) (string, error) {
	var signed string
	err := retry(ctx, r.policy, func() error {
		u, err := r.storage.SignedURL(ctx, bucket, objectPath, r.ttl)
		if err != nil {
			return err
		}
		if u == "" {
			return errEmptyURL
		}
		signed = u
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		r.metrics.IncRetry("resolving")
		log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("signed url not available yet")
	})
	if err == nil {
		return signed, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	log.Warn().Err(err).Msg("signed url unavailable, falling back to public url")
	public, pubErr := r.storage.PublicURL(ctx, bucket, objectPath)
	if pubErr == nil && public != "" {
		return public, nil
	}
	if pubErr == nil {
		pubErr = errEmptyURL
	}
	return "", &domain.LocatorError{Path: objectPath, Err: errors.Join(err, pubErr)}
}
