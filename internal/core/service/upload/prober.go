package upload

import (
	"context"
	"errors"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/metrics"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var errNotListed = errors.New("object not listed yet")

// prober waits for an uploaded object to show up in the bucket listing
type prober struct {
	storage port.ObjectStorage
	policy  RetryPolicy
	metrics *metrics.PipelineMetrics
}

// Probe reports whether objectPath became visible. A false result is informational only.
func (p *prober) Probe(ctx context.Context, bucket, objectPath string, log zerolog.Logger) bool {
	dir, name := path.Split(objectPath)
	dir = strings.TrimSuffix(dir, "/")

	err := retry(ctx, p.policy, func() error {
		objects, err := p.storage.List(ctx, bucket, dir)
		if err != nil {
			return err
		}
		for _, o := range objects {
			if o.Name == name {
				return nil
			}
		}
		return errNotListed
	}, func(attempt int, err error, wait time.Duration) {
		p.metrics.IncRetry("verifying")
		log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("object not visible yet")
	})
	if err != nil {
		log.Warn().Err(err).Str("path", objectPath).Msg("object not visible in listing, resolving anyway")
		return false
	}
	return true
}
