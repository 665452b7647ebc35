// Package ollama implements the LLM worker port against a local Ollama
// server's native chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"regintel/internal/config"
	"regintel/internal/port"
	"regintel/internal/worker"
)

// Worker implements port.LLMWorker using Ollama's /api/chat endpoint.
type Worker struct {
	apiURL string
	model  string
	client *http.Client
}

// New creates an Ollama worker from a provider config.
func New(cfg *config.WorkerProviderConfig) (port.LLMWorker, error) {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "http://localhost:11434"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Worker{
		apiURL: strings.TrimRight(apiURL, "/"),
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (w *Worker) Name() string {
	return "ollama"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

func (w *Worker) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	var messages []chatMessage
	if input.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: input.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: input.Prompt})

	reqBody := chatRequest{
		Model:    w.model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": input.Temperature,
			"num_predict": input.MaxTokens,
		},
	}
	if input.JSONMode {
		reqBody.Format = "json"
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.apiURL+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := worker.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", worker.NewRateLimitError("ollama", baseErr, retryAfter)
		}
		return "", baseErr
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	return parsed.Message.Content, nil
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
