package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dshills/fixloop/internal/llm"
)

// flakyProvider fails a scripted number of times before succeeding.
type flakyProvider struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Generate(_ context.Context, _ string, _ llm.Settings) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("transient")
	}
	return "ok", nil
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	p := &flakyProvider{failures: 1}
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}

	out, err := policy.Generate(context.Background(), p, "prompt", llm.Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" || p.calls != 2 {
		t.Errorf("out = %q, calls = %d", out, p.calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	p := &flakyProvider{failures: 10}
	policy := RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}

	_, err := policy.Generate(context.Background(), p, "prompt", llm.Settings{})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestRetryZeroPolicyMeansSingleAttempt(t *testing.T) {
	p := &flakyProvider{failures: 1}
	var policy RetryPolicy

	if _, err := policy.Generate(context.Background(), p, "prompt", llm.Settings{}); err == nil {
		t.Fatal("expected single-attempt failure")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyProvider{failures: 10}
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Hour}

	start := time.Now()
	_, err := policy.Generate(ctx, p, "prompt", llm.Settings{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("retry waited on backoff despite cancelled context")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 before cancellation is noticed", p.calls)
	}
}
