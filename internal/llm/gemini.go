package llm

import (
	"context"
	"fmt"
	"os"

	genai "google.golang.org/genai"
)

const geminiDefaultModel = "gemini-1.5-flash"

// GeminiProvider implements Provider using the official genai client.
type GeminiProvider struct {
	client *genai.Client
}

// NewGemini creates a Gemini provider. The genai client reads GEMINI_API_KEY
// (or GOOGLE_API_KEY) from the environment.
func NewGemini(ctx context.Context) (*GeminiProvider, error) {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return nil, fmt.Errorf("gemini: GEMINI_API_KEY or GOOGLE_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	model := s.Model
	if model == "" {
		model = geminiDefaultModel
	}

	cfg := &genai.GenerateContentConfig{}
	if s.Temperature > 0 {
		temp := float32(s.Temperature)
		cfg.Temperature = &temp
	}
	if s.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(s.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no content in response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
