// Package openai implements the LLM worker port against any
// OpenAI-compatible chat completions endpoint (hosted vLLM deployments,
// OpenAI itself).
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"regintel/internal/config"
	"regintel/internal/port"
	"regintel/internal/worker"
)

// Worker implements port.LLMWorker using the OpenAI chat completions API.
type Worker struct {
	client *goopenai.Client
	model  string
	name   string
}

// New creates an OpenAI-compatible worker from a provider config.
func New(cfg *config.WorkerProviderConfig) (port.LLMWorker, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("openai worker: api_url is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.APIURL, "/") + "/v1"

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Worker{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		name:   "openai",
	}, nil
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	var messages []goopenai.ChatCompletionMessage
	if input.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: input.SystemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: input.Prompt,
	})

	req := goopenai.ChatCompletionRequest{
		Model:       w.model,
		Messages:    messages,
		Temperature: input.Temperature,
		MaxTokens:   input.MaxTokens,
	}
	if input.JSONMode {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := w.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", worker.NewRateLimitError(w.name, err, 0)
		}
		return "", fmt.Errorf("calling chat completions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", w.name)
	}
	return resp.Choices[0].Message.Content, nil
}

func (w *Worker) GenerateJSON(ctx context.Context, input port.GenerateInput) (map[string]any, error) {
	input.JSONMode = true
	text, err := w.Generate(ctx, input)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parsing model JSON output: %w", err)
	}
	return out, nil
}
