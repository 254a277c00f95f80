package embedding

import (
	"context"
)

const defaultModel = "infly/inf-retriever-v1-1.5b"

type Request struct {
	Model string `json:"model"`

	// Prompt is the textual prompt to embed.
	Prompt string `json:"prompt"`

	// Options lists model-specific options.
	Options map[string]any `json:"options"`
}

type Response struct {
	Embedding []float32 `json:"embedding"`
}

type BatchRequest struct {
	Model   string         `json:"model"`
	Prompts []string       `json:"prompts"`
	Options map[string]any `json:"options,omitempty"`
}

// BatchResponse holds one embedding per prompt, in prompt order.
type BatchResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Client maps prompts to fixed-length vectors.
// Errors wrapping apperr.ErrEmbeddingUnavailable mean no request can succeed.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
}
