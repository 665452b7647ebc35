package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regintel/internal/domain"
)

// MockStateRepo is a mock implementation of port.StateRepository.
type MockStateRepo struct {
	mock.Mock
}

func (m *MockStateRepo) Create(ctx context.Context, state *domain.SFDRState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SFDRState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SFDRState), args.Error(1)
}

func (m *MockStateRepo) ListByISIN(ctx context.Context, isin string) ([]domain.SFDRState, error) {
	args := m.Called(ctx, isin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SFDRState), args.Error(1)
}
