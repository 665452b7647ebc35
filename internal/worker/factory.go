package worker

import (
	"fmt"

	"regintel/internal/config"
	"regintel/internal/port"
)

// ProviderFactory is a function that creates an LLMWorker from a provider config.
type ProviderFactory func(cfg *config.WorkerProviderConfig) (port.LLMWorker, error)

// registry of worker provider factories, populated explicitly via
// RegisterProvider at composition time.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a worker provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewWorker creates an LLMWorker from a provider config using the registered factory.
func NewWorker(cfg *config.WorkerProviderConfig) (port.LLMWorker, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown worker provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
