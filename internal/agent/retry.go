package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/fixloop/internal/llm"
)

// RetryPolicy bounds repeated generation attempts against a flaky provider.
// Attempts beyond the first wait Backoff between tries and stop early when
// the context is done.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetry allows one retry after a short pause.
var DefaultRetry = RetryPolicy{MaxAttempts: 2, Backoff: 2 * time.Second}

// Generate calls the provider, retrying on error up to MaxAttempts total
// attempts. Context cancellation is never retried.
func (p RetryPolicy) Generate(ctx context.Context, provider llm.Provider, prompt string, settings llm.Settings) (string, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && p.Backoff > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.Backoff):
			}
		}
		out, err := provider.Generate(ctx, prompt, settings)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("agent: %s generate failed after %d attempts: %w", provider.Name(), attempts, lastErr)
}
