// Package llm defines the provider interface and implementations for model
// interaction.
package llm

import "context"

// Settings configures a single generation request.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider generates text from a prompt using a language model.
type Provider interface {
	Generate(ctx context.Context, prompt string, settings Settings) (string, error)
	Name() string
}
