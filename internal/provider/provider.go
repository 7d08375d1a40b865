package provider

import (
	"context"
	"errors"
)

// ErrNoEmbeddings is returned by providers that cannot compute embedding
// vectors. Callers treat it as "metric unavailable", not as a failure.
var ErrNoEmbeddings = errors.New("provider: embeddings not supported")

// CompletionRequest holds parameters for a single text completion call.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider is the abstraction over LLM APIs.
type Provider interface {
	// Complete returns the generated text for a prompt. An empty result with
	// a nil error means the model produced nothing usable.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Embed returns one embedding vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Name() string
}
