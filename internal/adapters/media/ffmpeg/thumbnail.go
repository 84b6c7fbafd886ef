package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"media-pipeline/internal/config"
	"os/exec"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
)

// ThumbnailExtractor grabs a frame with ffmpeg and encodes it as a bounded jpeg
type ThumbnailExtractor struct {
	cfg config.PipelineConfig
}

// NewThumbnailExtractor returns a ThumbnailExtractor
func NewThumbnailExtractor(cfg config.PipelineConfig) *ThumbnailExtractor {
	return &ThumbnailExtractor{cfg: cfg}
}

// ExtractThumbnail returns a jpeg of the frame at offset at
func (e *ThumbnailExtractor) ExtractThumbnail(ctx context.Context, path string, at time.Duration) ([]byte, error) {
	if e.cfg.ThumbnailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ThumbnailTimeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.cfg.FFmpegPath,
		"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame grab failed: %w: %s", err, tail(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg returned no frame at %s", at)
	}

	frame, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return encodeThumbnail(frame, e.cfg.ThumbnailMaxWidth, e.cfg.ThumbnailMaxHeight, e.cfg.ThumbnailQuality)
}

// encodeThumbnail shrinks img to fit maxWidth x maxHeight and encodes it as jpeg
func encodeThumbnail(img image.Image, maxWidth, maxHeight, quality int) ([]byte, error) {
	b := img.Bounds()
	if maxWidth > 0 && maxHeight > 0 && (b.Dx() > maxWidth || b.Dy() > maxHeight) {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
