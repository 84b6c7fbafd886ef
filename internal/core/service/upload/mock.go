package upload

import (
	"context"
	"media-pipeline/internal/core/domain"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUploadService struct {
	mock.Mock
}

func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) Start(ctx context.Context, req domain.UploadRequest) (uuid.UUID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUploadService) Cancel(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUploadService) Retry(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUploadService) RetryCommit(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUploadService) Get(ctx context.Context, id uuid.UUID) (domain.JobSnapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.JobSnapshot), args.Error(1)
}

func (m *MockUploadService) List(ctx context.Context) []domain.JobSnapshot {
	args := m.Called(ctx)
	return args.Get(0).([]domain.JobSnapshot)
}

func (m *MockUploadService) Watch(ctx context.Context, id uuid.UUID) (<-chan domain.JobSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.JobSnapshot), args.Error(1)
}

func (m *MockUploadService) Wait(ctx context.Context, id uuid.UUID) (domain.JobSnapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.JobSnapshot), args.Error(1)
}

func (m *MockUploadService) Prune(before time.Time) int {
	args := m.Called(before)
	return args.Int(0)
}

func (m *MockUploadService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
