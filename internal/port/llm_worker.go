package port

import "context"

// GenerateInput carries a single synchronous model invocation.
type GenerateInput struct {
	Prompt       string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
	// JSONMode asks the backend to force machine-parseable output.
	JSONMode bool
}

// LLMWorker abstracts a language model backend. Implementations differ only
// in wire format and endpoint. Transport failures (network, timeout,
// non-2xx) and structured-output parse failures surface as errors; callers
// apply their own catch-and-default policy.
type LLMWorker interface {
	Generate(ctx context.Context, input GenerateInput) (string, error)
	GenerateJSON(ctx context.Context, input GenerateInput) (map[string]any, error)
	// Name identifies the backend for logging and export metadata.
	Name() string
}
