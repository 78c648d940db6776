// Package llm provides clients for the text-generation and embedding
// collaborators used on the retrieval-fallback and follow-up paths. The
// structural query engine never calls a model.
package llm

import (
	"context"
)

// LLMClient defines the interface for LLM operations. Use this interface for
// dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse generates a chat completion for a single prompt.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// CreateEmbedding generates an embedding vector for the input text.
	CreateEmbedding(ctx context.Context, input string, model string) ([]float32, error)

	// CreateEmbeddings generates embeddings for multiple inputs.
	CreateEmbeddings(ctx context.Context, inputs []string, model string) ([][]float32, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure implementations satisfy LLMClient at compile time.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
	_ LLMClient = (*MockLLMClient)(nil)
)
