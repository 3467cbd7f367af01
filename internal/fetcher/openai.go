package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// translateSystemPrompt constrains the model to bare romanized output.
// Anything conversational fails validation downstream, so the prompt does
// the heavy lifting here.
const translateSystemPrompt = "You are a translator for the Tulu language " +
	"(Tulu Nadu region, India). Translate the user's English text into Tulu " +
	"written in Roman (Latin) script only. Never use Kannada script. Reply " +
	"with the translation alone: no quotes, no explanation, no punctuation " +
	"beyond what the translation needs."

// OpenAIBackend translates through the OpenAI chat completions API.
type OpenAIBackend struct {
	client oai.Client
	model  string
}

var _ Backend = (*OpenAIBackend)(nil)

// OpenAIOption configures an [OpenAIBackend].
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	baseURL string
	timeout time.Duration
}

// WithOpenAIBaseURL overrides the API base URL, for OpenAI-compatible
// gateways.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openaiConfig) { c.baseURL = url }
}

// WithOpenAITimeout sets a per-request HTTP timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(c *openaiConfig) { c.timeout = d }
}

// NewOpenAIBackend creates an [OpenAIBackend].
func NewOpenAIBackend(apiKey, model string, opts ...OpenAIOption) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("fetcher: openai api key must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("fetcher: openai model must not be empty")
	}

	cfg := &openaiConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &OpenAIBackend{
		client: oai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

// Name implements [Backend].
func (b *OpenAIBackend) Name() string { return "openai" }

// Translate implements [Backend].
func (b *OpenAIBackend) Translate(ctx context.Context, text string) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(b.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(translateSystemPrompt),
			oai.UserMessage(text),
		},
		Temperature:         param.NewOpt(0.2),
		MaxCompletionTokens: param.NewOpt(int64(120)),
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("fetcher: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("fetcher: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
