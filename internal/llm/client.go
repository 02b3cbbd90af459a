// Package llm provides the text-completion client used for extraction, composition
// and small talk. Any OpenAI-compatible endpoint works; DeepSeek is the default.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/config"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/metrics"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
)

var (
	// ErrNotConfigured is returned when no API key was supplied.
	ErrNotConfigured = errors.New("llm: completion service not configured")
	// ErrNoChoices is returned when the provider answers without any content.
	ErrNoChoices = errors.New("llm: completion returned no choices")
)

// Completer turns a conversation into a single reply.
type Completer interface {
	Complete(ctx context.Context, messages []dialog.Message, maxTokens int) (string, error)
}

// Client calls an OpenAI-compatible chat completion endpoint with bounded retries.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	retry       RetryConfig
	configured  bool
	base        []option.RequestOption
	logger      *observability.Logger
	metrics     *metrics.Metrics
}

// Option customises a Client.
type Option func(*Client)

// WithMetrics records every completion in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRequestOptions passes extra options to the underlying SDK client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *Client) {
		all := append(append([]option.RequestOption{}, c.base...), opts...)
		c.api = openai.NewClient(all...)
	}
}

// NewClient builds a client from configuration. A missing API key yields a client whose
// calls fail fast with ErrNotConfigured, so the engine degrades to templates.
func NewClient(cfg config.LLMConfig, logger *observability.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = observability.NopLogger()
	}
	c := &Client{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		configured:  strings.TrimSpace(cfg.APIKey) != "",
		logger:      logger.WithOperation("llm"),
		retry: RetryConfig{
			MaxRetries:        cfg.MaxRetries,
			Backoff:           cfg.RetryBackoff,
			PerAttemptTimeout: cfg.Timeout,
		},
	}
	c.base = []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		c.base = append(c.base, option.WithBaseURL(cfg.BaseURL))
	}
	c.api = openai.NewClient(c.base...)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends messages and returns the first choice's content. Timeouts and
// retryable HTTP statuses are retried per the client's RetryConfig.
func (c *Client) Complete(ctx context.Context, messages []dialog.Message, maxTokens int) (string, error) {
	op := operationFromContext(ctx)
	start := time.Now()

	if !c.configured {
		c.metrics.RecordLLMRequest(op, "not_configured", 0)
		return "", ErrNotConfigured
	}

	params := openai.ChatCompletionNewParams{
		Messages: toParams(messages),
		Model:    shared.ChatModel(c.model),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}

	var content string
	err := retryWithBackoff(ctx, c.retry, c.logger.WithContext(ctx), func(attemptCtx context.Context) error {
		completion, err := c.api.Chat.Completions.New(attemptCtx, params)
		if err != nil {
			return err
		}
		if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
			return ErrNoChoices
		}
		content = strings.TrimSpace(completion.Choices[0].Message.Content)
		return nil
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordLLMRequest(op, status, time.Since(start))

	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return content, nil
}

func toParams(messages []dialog.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case dialog.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case dialog.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

type operationKey struct{}

// WithOperation labels completions made with ctx, for logs and metrics.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

func operationFromContext(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "completion"
}
