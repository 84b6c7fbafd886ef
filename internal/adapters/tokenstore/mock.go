package tokenstore

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockTokenStore struct {
	mock.Mock
}

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{}
}

func (m *MockTokenStore) Load(ctx context.Context) (domain.Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Credential), args.Error(1)
}

func (m *MockTokenStore) Save(ctx context.Context, cred domain.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}
