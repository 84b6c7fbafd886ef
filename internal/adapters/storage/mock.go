package storage

import (
	"context"
	"io"
	"media-pipeline/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

// Put drains body before recording the call so progress callbacks fire as with a real backend
func (m *MockStorage) Put(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType, accessToken string) error {
	_, _ = io.Copy(io.Discard, body)
	args := m.Called(ctx, bucket, path, size, contentType, accessToken)
	return args.Error(0)
}

func (m *MockStorage) List(ctx context.Context, bucket, dir string) ([]domain.StoredObject, error) {
	args := m.Called(ctx, bucket, dir)
	if fn, ok := args.Get(0).(func(context.Context, string, string) []domain.StoredObject); ok {
		return fn(ctx, bucket, dir), args.Error(1)
	}
	return args.Get(0).([]domain.StoredObject), args.Error(1)
}

func (m *MockStorage) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, path, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) PublicURL(ctx context.Context, bucket, path string) (string, error) {
	args := m.Called(ctx, bucket, path)
	return args.String(0), args.Error(1)
}
