package completion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"shipstream/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
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

// FallbackClient tries providers in order, skipping those with open rate-limit
// circuits. It implements port.CompletionClient.
type FallbackClient struct {
	clients  []port.CompletionClient
	circuits []*circuitState
	names    []string
}

// NewFallbackClient creates a FallbackClient from an ordered list of clients and their names.
func NewFallbackClient(clients []port.CompletionClient, names []string) *FallbackClient {
	circuits := make([]*circuitState, len(clients))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackClient{
		clients:  clients,
		circuits: circuits,
		names:    names,
	}
}

func (f *FallbackClient) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, c := range f.clients {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("completion.FallbackClient: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := c.Complete(ctx, req)
		if err == nil {
			return out, nil
		}

		log.Printf("completion.FallbackClient: %s failed: %v", f.names[i], err)
		lastErr = err

		var provErr *ProviderError
		if errors.As(err, &provErr) && provErr.Code == CodeRateLimited {
			resetAt := now.Add(provErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Every provider was rate limited or skipped on an open circuit
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all completion providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all completion providers failed: %w", lastErr)
}
