package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"regintel/internal/port"
)

// MockLLMWorker is a mock implementation of port.LLMWorker.
type MockLLMWorker struct {
	mock.Mock
}

func (m *MockLLMWorker) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockLLMWorker) GenerateJSON(ctx context.Context, input port.GenerateInput) (map[string]any, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockLLMWorker) Name() string {
	args := m.Called()
	return args.String(0)
}
