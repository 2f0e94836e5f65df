package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttled wraps a provider with a token-bucket limiter so agent phases do
// not exceed the provider's request rate. This replaces fixed sleeps before
// each call with an explicit, configurable policy.
type Throttled struct {
	inner   Provider
	limiter *rate.Limiter
}

// Throttle returns a provider that waits for limiter capacity before each
// request. interval is the minimum time between requests; zero or negative
// returns the provider unchanged.
func Throttle(p Provider, interval time.Duration) Provider {
	if interval <= 0 {
		return p
	}
	return &Throttled{
		inner:   p,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (t *Throttled) Name() string { return t.inner.Name() }

func (t *Throttled) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.inner.Generate(ctx, prompt, s)
}
