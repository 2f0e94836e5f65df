package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ResolveProvider selects a provider based on the model selector and available
// API keys. Selectors may carry an explicit provider prefix ("mistral:large")
// or a recognizable model family name ("gemini-1.5-flash", "gpt-4o").
func ResolveProvider(ctx context.Context, modelFlag string) (Provider, error) {
	if modelFlag != "" {
		lower := strings.ToLower(modelFlag)
		switch {
		case strings.HasPrefix(lower, "gemini:"):
			return override(NewGemini(ctx))(strings.TrimPrefix(modelFlag, "gemini:"))
		case strings.HasPrefix(lower, "gemini"):
			return override(NewGemini(ctx))(modelFlag)
		case strings.HasPrefix(lower, "mistral:"):
			return override(NewMistral())(strings.TrimPrefix(modelFlag, "mistral:"))
		case strings.HasPrefix(lower, "mistral"):
			return override(NewMistral())(modelFlag)
		case strings.HasPrefix(lower, "openai:"):
			return override(NewOpenAI())(strings.TrimPrefix(modelFlag, "openai:"))
		case strings.HasPrefix(lower, "gpt"):
			return override(NewOpenAI())(modelFlag)
		}
	}

	// Auto-detect from environment.
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		return NewGemini(ctx)
	}
	if os.Getenv("MISTRAL_API_KEY") != "" {
		return NewMistral()
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return NewOpenAI()
	}

	return nil, fmt.Errorf("no LLM provider configured: set GEMINI_API_KEY, MISTRAL_API_KEY, or OPENAI_API_KEY")
}

// override wraps a provider constructor so the resolved model name is pinned
// into every request's settings.
func override(p Provider, err error) func(model string) (Provider, error) {
	return func(model string) (Provider, error) {
		if err != nil {
			return nil, err
		}
		return &modelOverride{Provider: p, model: model}, nil
	}
}

type modelOverride struct {
	Provider
	model string
}

func (m *modelOverride) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	s.Model = m.model
	return m.Provider.Generate(ctx, prompt, s)
}
