package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openaiDefaultModel  = "gpt-4o-mini"
	mistralBaseURL      = "https://api.mistral.ai/v1"
	mistralDefaultModel = "mistral-large-latest"
)

// OpenAIProvider implements Provider for any OpenAI-compatible chat endpoint.
// Mistral's API is OpenAI-compatible, so both share this implementation with
// different base URLs.
type OpenAIProvider struct {
	client       *openai.Client
	name         string
	defaultModel string
}

// NewOpenAI creates a provider for the OpenAI API using OPENAI_API_KEY.
func NewOpenAI() (*OpenAIProvider, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY not set")
	}
	return &OpenAIProvider{
		client:       openai.NewClient(key),
		name:         "openai",
		defaultModel: openaiDefaultModel,
	}, nil
}

// NewMistral creates a provider for the Mistral API using MISTRAL_API_KEY.
func NewMistral() (*OpenAIProvider, error) {
	key := os.Getenv("MISTRAL_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("mistral: MISTRAL_API_KEY not set")
	}
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = mistralBaseURL
	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(cfg),
		name:         "mistral",
		defaultModel: mistralDefaultModel,
	}, nil
}

func (o *OpenAIProvider) Name() string { return o.name }

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	model := s.Model
	if model == "" {
		model = o.defaultModel
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(s.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if s.MaxTokens > 0 {
		req.MaxTokens = s.MaxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: chat completion: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", o.name)
	}
	return resp.Choices[0].Message.Content, nil
}
