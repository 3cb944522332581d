// Package llm wraps an OpenAI-compatible endpoint (OpenAI, LM Studio, vLLM)
// for chat completions and embeddings.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Config holds connection settings for the model endpoint
type Config struct {
	BaseURL    string // empty = api.openai.com
	APIKey     string
	ChatModel  string
	EmbedModel string
}

// Client talks to an OpenAI-compatible API
type Client struct {
	client     *openai.Client
	chatModel  string
	embedModel string
}

// NewClient creates a client for the configured endpoint
func NewClient(cfg Config) *Client {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "not-needed" // local endpoints ignore the key
	}

	oaiCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		oaiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:     openai.NewClientWithConfig(oaiCfg),
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
	}
}

// Complete sends a single-prompt chat completion and returns the text
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed returns one embedding vector per input text, in input order
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}

	return vectors, nil
}
