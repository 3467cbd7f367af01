package fetcher

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"
)

// AnyLLMBackend translates through any provider supported by
// github.com/mozilla-ai/any-llm-go. It lets a deployment pair the OpenAI
// backend with a second, differently hosted model (Gemini, a local Ollama,
// Anthropic) without new code.
type AnyLLMBackend struct {
	name    string
	backend anyllmlib.Provider
	model   string
}

var _ Backend = (*AnyLLMBackend)(nil)

// NewAnyLLMBackend creates an [AnyLLMBackend] for the named provider: one of
// "openai", "anthropic", "gemini", or "ollama". Without an API key option the
// underlying provider reads its usual environment variable.
func NewAnyLLMBackend(providerName, model string, opts ...anyllmlib.Option) (*AnyLLMBackend, error) {
	if model == "" {
		return nil, fmt.Errorf("fetcher: anyllm model must not be empty")
	}

	var (
		backend anyllmlib.Provider
		err     error
	)
	switch strings.ToLower(providerName) {
	case "openai":
		backend, err = anyllmoai.New(opts...)
	case "anthropic":
		backend, err = anthropic.New(opts...)
	case "gemini":
		backend, err = gemini.New(opts...)
	case "ollama":
		backend, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("fetcher: unsupported anyllm provider %q", providerName)
	}
	if err != nil {
		return nil, fmt.Errorf("fetcher: create %q backend: %w", providerName, err)
	}

	return &AnyLLMBackend{
		name:    "anyllm-" + strings.ToLower(providerName),
		backend: backend,
		model:   model,
	}, nil
}

// Name implements [Backend].
func (b *AnyLLMBackend) Name() string { return b.name }

// Translate implements [Backend].
func (b *AnyLLMBackend) Translate(ctx context.Context, text string) (string, error) {
	temp := 0.2
	maxTokens := 120
	params := anyllmlib.CompletionParams{
		Model: b.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: translateSystemPrompt},
			{Role: anyllmlib.RoleUser, Content: text},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}

	resp, err := b.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("fetcher: %s completion: %w", b.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("fetcher: %s returned no choices", b.name)
	}
	return resp.Choices[0].Message.ContentString(), nil
}
