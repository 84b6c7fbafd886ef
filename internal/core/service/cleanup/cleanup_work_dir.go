package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const workFilePrefix = "transcode_"

// CleanupWorkDir removes transcoder leftovers older than the configured age,
// typically files of a process that died mid-run
func (c *cleanupService) CleanupWorkDir(ctx context.Context, now time.Time) error {
	entries, err := os.ReadDir(c.workDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	cutoff := now.Add(-c.cfg.WorkFileMaxAge)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), workFilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(c.workDir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn().Err(err).Str("path", path).Msg("could not remove work file")
			continue
		}
		removed++
	}

	c.logger.Info().Int("removed", removed).Msg("work dir cleanup completed")
	return nil
}
