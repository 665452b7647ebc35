package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regintel/internal/domain"
)

// MockSectionRepo is a mock implementation of port.SectionRepository.
type MockSectionRepo struct {
	mock.Mock
}

func (m *MockSectionRepo) Create(ctx context.Context, section *domain.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSectionRepo) CreateBatch(ctx context.Context, sections []domain.Section) error {
	args := m.Called(ctx, sections)
	return args.Error(0)
}

func (m *MockSectionRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Section, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Section), args.Error(1)
}
