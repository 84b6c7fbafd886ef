package auth

import (
	"context"
	"media-pipeline/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockTokenRefresher struct {
	mock.Mock
}

func NewMockTokenRefresher() *MockTokenRefresher {
	return &MockTokenRefresher{}
}

func (m *MockTokenRefresher) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(domain.Credential), args.Error(1)
}
