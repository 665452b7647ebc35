package worker

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"regintel/internal/port"
)

// circuitState tracks rate-limit backoff for a single worker.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackWorker tries workers in order, skipping those with open rate-limit
// circuits. It implements port.LLMWorker.
type FallbackWorker struct {
	workers  []port.LLMWorker
	circuits []*circuitState
}

// NewFallbackWorker creates a FallbackWorker from an ordered list of workers.
func NewFallbackWorker(workers []port.LLMWorker) *FallbackWorker {
	circuits := make([]*circuitState, len(workers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackWorker{
		workers:  workers,
		circuits: circuits,
	}
}

// Name lists the chained backend names.
func (f *FallbackWorker) Name() string {
	names := make([]string, len(f.workers))
	for i, w := range f.workers {
		names[i] = w.Name()
	}
	return strings.Join(names, "+")
}

func (f *FallbackWorker) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	var out string
	err := f.try(ctx, func(w port.LLMWorker) error {
		var err error
		out, err = w.Generate(ctx, input)
		return err
	})
	return out, err
}

func (f *FallbackWorker) GenerateJSON(ctx context.Context, input port.GenerateInput) (map[string]any, error) {
	var out map[string]any
	err := f.try(ctx, func(w port.LLMWorker) error {
		var err error
		out, err = w.GenerateJSON(ctx, input)
		return err
	})
	return out, err
}

func (f *FallbackWorker) try(ctx context.Context, call func(port.LLMWorker) error) error {
	now := time.Now()
	var lastErr error

	for i, w := range f.workers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("worker.FallbackWorker: skipping %s (circuit open until %s)", w.Name(), resetAt.Format(time.RFC3339))
			continue
		}

		err := call(w)
		if err == nil {
			return nil
		}

		log.Printf("worker.FallbackWorker: %s failed: %v", w.Name(), err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			f.circuits[i].open(now.Add(rlErr.RetryAfter))
		}

		if ctx.Err() != nil {
			return lastErr
		}
	}

	if lastErr == nil {
		lastErr = errors.New("all workers rate limited")
	}
	return lastErr
}
