package ffmpeg

import (
	"context"
	"fmt"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transcoder re-encodes videos to H.264 mp4 with the ffmpeg binary
type Transcoder struct {
	cfg    config.PipelineConfig
	logger zerolog.Logger
}

// NewTranscoder returns a Transcoder writing its outputs to cfg.WorkDir
func NewTranscoder(cfg config.PipelineConfig, logger zerolog.Logger) *Transcoder {
	return &Transcoder{cfg: cfg, logger: logger}
}

// Transcode fits sourcePath into the profile bounds, never upscaling, and returns the output path.
// The caller owns the output file.
func (t *Transcoder) Transcode(ctx context.Context, sourcePath string, profile domain.QualityProfile) (string, error) {
	width, height := profile.Bounds()
	if width == 0 {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidQuality, profile)
	}

	if err := os.MkdirAll(t.cfg.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create work dir: %w", err)
	}
	out := filepath.Join(t.cfg.WorkDir, fmt.Sprintf("transcode_%s.mp4", uuid.New()))

	if t.cfg.TranscodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.TranscodeTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.cfg.FFmpegPath,
		"-y",
		"-i", sourcePath,
		"-vf", scaleFilter(width, height),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		out,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(out)
		return "", fmt.Errorf("ffmpeg transcode failed: %w: %s", err, tail(output))
	}

	t.logger.Debug().
		Str("source", sourcePath).
		Str("output", out).
		Str("quality", string(profile)).
		Msg("video transcoded")
	return out, nil
}

// scaleFilter fits the frame in a width x height box, swapping the box for portrait input
func scaleFilter(width, height int) string {
	return fmt.Sprintf(
		"scale='min(iw,if(gte(iw,ih),%d,%d))':'min(ih,if(gte(iw,ih),%d,%d))':force_original_aspect_ratio=decrease:force_divisible_by=2",
		width, height, height, width,
	)
}

// tail keeps the end of the ffmpeg output where the error is printed
func tail(output []byte) string {
	s := strings.TrimSpace(string(output))
	const limit = 512
	if len(s) > limit {
		return s[len(s)-limit:]
	}
	return s
}
