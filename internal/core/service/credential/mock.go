package credential

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockCredentialManager struct {
	mock.Mock
}

func NewMockCredentialManager() *MockCredentialManager {
	return &MockCredentialManager{}
}

func (m *MockCredentialManager) CurrentToken() domain.Credential {
	args := m.Called()
	return args.Get(0).(domain.Credential)
}

func (m *MockCredentialManager) EnsureFresh(ctx context.Context) (domain.Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Credential), args.Error(1)
}

func (m *MockCredentialManager) Adopt(ctx context.Context, cred domain.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}
