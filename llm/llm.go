// Package llm is the generation and embedding gateway. Every call is
// stateless: one request, one provider call, no retries.
package llm

import (
	"context"
	"errors"
)

var (
	ErrGeneration = errors.New("generation failed")
	ErrEmbedding  = errors.New("embedding failed")
)

// Request is a single text generation call
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Generator produces text for a composed prompt
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// EmbedderFunc adapts a function to Embedder
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
