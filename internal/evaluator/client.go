package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/respool"
)

// LLMClient is the one operation an evaluator needs from a model provider:
// a prompt in, a JSON document out. Tests substitute a scripted client.
type LLMClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient is the production LLMClient backed by the OpenAI chat
// completions API with JSON response format.
type OpenAIClient struct {
	client      *openai.Client
	pool        *respool.Pool
	model       string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// NewOpenAIClient creates a client for one evaluator using the given model.
// The two evaluators get separate client instances so neither shares request
// state with the other.
func NewOpenAIClient(pool *respool.Pool, model string) (*OpenAIClient, error) {
	key := pool.Credential("openai")
	if key == "" {
		return nil, fmt.Errorf("openai api key not configured")
	}
	cfg := pool.Config()
	return &OpenAIClient{
		client:      openai.NewClient(key),
		pool:        pool,
		model:       model,
		maxTokens:   cfg.Evaluator.MaxTokens,
		temperature: cfg.Evaluator.Temperature,
		logger:      logging.Component("evaluator.llm"),
	}, nil
}

// CompleteJSON sends a prompt and returns the raw JSON response text.
// Low temperature keeps scoring consistent across runs.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.pool.Wait(ctx, "openai"); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("completion",
		"model", c.model,
		"prompt_length", len(userPrompt),
		"response_length", len(content),
		"tokens_used", resp.Usage.TotalTokens,
	)
	return content, nil
}
