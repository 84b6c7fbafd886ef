package repository

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAssetRepository struct {
	mock.Mock
}

func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{}
}

func (m *MockAssetRepository) Insert(ctx context.Context, payload domain.CommitPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MediaAsset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.MediaAsset), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{}
}

func (m *MockProfileRepository) FindUsername(ctx context.Context, ownerID uuid.UUID) (string, error) {
	args := m.Called(ctx, ownerID)
	return args.String(0), args.Error(1)
}
