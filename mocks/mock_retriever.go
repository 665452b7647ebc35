package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regintel/internal/domain"
	"regintel/internal/port"
)

// MockRetriever is a mock implementation of port.Retriever.
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Build(documentID uuid.UUID, sections []domain.Section) {
	m.Called(documentID, sections)
}

func (m *MockRetriever) Query(ctx context.Context, documentID uuid.UUID, query string, topK int) ([]port.RetrievalResult, error) {
	args := m.Called(ctx, documentID, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.RetrievalResult), args.Error(1)
}

func (m *MockRetriever) QueryKeywords(ctx context.Context, documentID uuid.UUID, keywords []string, topK int) ([]port.RetrievalResult, error) {
	args := m.Called(ctx, documentID, keywords, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.RetrievalResult), args.Error(1)
}
