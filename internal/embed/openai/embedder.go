// Package openai adapts the OpenAI embeddings API to the similarity
// package's Embedder capability. Any OpenAI-compatible endpoint works via
// the base URL override.
package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = goopenai.SmallEmbedding3

// embeddingAPI is the slice of the SDK client this package needs.
type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, req goopenai.EmbeddingRequestConverter) (goopenai.EmbeddingResponse, error)
}

// Client embeds texts through an OpenAI-compatible endpoint.
type Client struct {
	api   embeddingAPI
	model goopenai.EmbeddingModel
}

// New builds an embedding client. The API key is required; baseURL and model
// are optional overrides for compatible self-hosted endpoints.
func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: embedding backend requires an API key")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	m := DefaultEmbeddingModel
	if model != "" {
		m = goopenai.EmbeddingModel(model)
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: m}, nil
}

// Embed encodes all texts in one request. Vectors come back in input order
// regardless of how the endpoint orders its response items.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding endpoint returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding endpoint returned out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
