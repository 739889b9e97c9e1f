package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain"
)

// Chat streams completions from an OpenAI-compatible API (DeepSeek, DashScope/Qwen).
type Chat struct {
	client   *openai.Client
	provider string
	logger   *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Provider string
	Logger   *zap.Logger
}

// NewChat creates an OpenAI-compatible chat provider.
func NewChat(cfg *Config) *Chat {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Chat{
		client:   openai.NewClientWithConfig(clientCfg),
		provider: cfg.Provider,
		logger:   logger,
	}
}

// Stream sends the completion request and calls emit for every non-empty content delta.
// It returns nil once the provider closes the stream. An emit error stops the stream.
func (c *Chat) Stream(ctx context.Context, req domain.ChatCompletion, emit func(delta string) error) error {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return parseAPIError(err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			c.logger.Warn("Chat stream interrupted",
				zap.String("provider", c.provider),
				zap.String("model", req.Model),
				zap.Error(err),
			)
			return parseAPIError(err)
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := emit(choice.Delta.Content); err != nil {
				return fmt.Errorf("emit delta: %w", err)
			}
		}
	}
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Chat) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func toMessages(msgs []domain.ChatMessage) []openai.ChatCompletionMessage {
	return lo.Map(msgs, func(m domain.ChatMessage, _ int) openai.ChatCompletionMessage {
		return openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	})
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAssistantProvider for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrAssistantProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("chat request aborted: %w", err)
	}

	return fmt.Errorf("chat request failed: %w: %w", wrap, err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
