package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regintel/internal/domain"
)

// MockSpanRepo is a mock implementation of port.SpanRepository.
type MockSpanRepo struct {
	mock.Mock
}

func (m *MockSpanRepo) Create(ctx context.Context, span *domain.Span) error {
	args := m.Called(ctx, span)
	return args.Error(0)
}

func (m *MockSpanRepo) CreateBatch(ctx context.Context, spans []domain.Span) error {
	args := m.Called(ctx, spans)
	return args.Error(0)
}

func (m *MockSpanRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Span, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Span), args.Error(1)
}
