package media

import (
	"context"
	"media-pipeline/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockTranscoder struct {
	mock.Mock
}

func NewMockTranscoder() *MockTranscoder {
	return &MockTranscoder{}
}

func (m *MockTranscoder) Transcode(ctx context.Context, sourcePath string, profile domain.QualityProfile) (string, error) {
	args := m.Called(ctx, sourcePath, profile)
	return args.String(0), args.Error(1)
}

type MockThumbnailExtractor struct {
	mock.Mock
}

func NewMockThumbnailExtractor() *MockThumbnailExtractor {
	return &MockThumbnailExtractor{}
}

func (m *MockThumbnailExtractor) ExtractThumbnail(ctx context.Context, path string, at time.Duration) ([]byte, error) {
	args := m.Called(ctx, path, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
