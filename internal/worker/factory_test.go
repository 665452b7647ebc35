package worker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"regintel/internal/config"
	"regintel/internal/port"
	"regintel/internal/worker"
)

type stubWorker struct {
	model string
}

func (s *stubWorker) Generate(context.Context, port.GenerateInput) (string, error) {
	return "", nil
}

func (s *stubWorker) GenerateJSON(context.Context, port.GenerateInput) (map[string]any, error) {
	return map[string]any{}, nil
}

func (s *stubWorker) Name() string { return s.model }

func TestFactory_RegisterAndCreate(t *testing.T) {
	worker.RegisterProvider("test-provider", func(cfg *config.WorkerProviderConfig) (port.LLMWorker, error) {
		return &stubWorker{model: cfg.Model}, nil
	})

	w, err := worker.NewWorker(&config.WorkerProviderConfig{
		Provider: "test-provider",
		Model:    "test-model",
	})

	assert.NoError(t, err)
	assert.NotNil(t, w)
	assert.Equal(t, "test-model", w.Name())
}

func TestFactory_UnknownProvider(t *testing.T) {
	w, err := worker.NewWorker(&config.WorkerProviderConfig{
		Provider: "nonexistent-provider-xyz",
	})

	assert.Nil(t, w)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown worker provider")
}
