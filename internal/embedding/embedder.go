package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
)

// SearchTask is the retrieval instruction prepended to every query.
const SearchTask = "Given a search query, retrieve relevant news articles"

type Embedder struct {
	maxLength *int
	model     string

	client Client
}

type Vec struct {
	Embedding []float32
	Model     string
}

type EmbedderOption func(executor *Embedder)

func NewEmbedder(client Client, opts ...EmbedderOption) *Embedder {
	base := &Embedder{
		model:  defaultModel,
		client: client,
	}

	for _, opt := range opts {
		opt(base)
	}

	return base
}

func WithExecutorModel(model string) EmbedderOption {
	return func(executor *Embedder) {
		executor.model = model
	}
}

func WithExecutorMaxLength(length int) EmbedderOption {
	return func(executor *Embedder) {
		executor.maxLength = &length
	}
}

// EmbedDocument embeds article body text as is. Documents are never instructed.
func (e *Embedder) EmbedDocument(ctx context.Context, text string) (*Vec, error) {
	slog.Debug("Embedding document", "content_length", len(text))

	return e.generate(ctx, text)
}

// EmbedDocuments embeds many article texts with one backend call.
// Vectors are returned in text order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([]*Vec, error) {
	slog.Debug("Embedding documents", "count", len(texts))

	resp, err := e.client.GenerateBatch(ctx, BatchRequest{
		Model:   e.model,
		Prompts: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrEmbedding, err)
	}

	vecs := make([]*Vec, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		if len(embedding) == 0 {
			return nil, fmt.Errorf("%w: model %s returned an empty vector for text %d", apperr.ErrEmbedding, e.model, i)
		}
		vecs[i] = e.vec(embedding)
	}
	return vecs, nil
}

// EmbedQuery embeds a user query wrapped with the retrieval instruction.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) (*Vec, error) {
	instruct := wrapWithInstruct(SearchTask, strings.TrimSpace(query))

	slog.Debug("embedding query with instruct", "task", SearchTask, "query", query)

	return e.generate(ctx, instruct)
}

func (e *Embedder) generate(ctx context.Context, prompt string) (*Vec, error) {
	embed, err := e.client.Generate(ctx, Request{
		Model:  e.model,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrEmbedding, err)
	}
	if len(embed.Embedding) == 0 {
		return nil, fmt.Errorf("%w: model %s returned an empty vector", apperr.ErrEmbedding, e.model)
	}

	vec := e.vec(embed.Embedding)
	slog.Debug("Generated embedding", "embedding_length", len(vec.Embedding), "model", e.model)
	return vec, nil
}

func (e *Embedder) vec(vector []float32) *Vec {
	if e.maxLength != nil && len(vector) > *e.maxLength {
		vector = vector[:*e.maxLength]
	}
	return &Vec{
		Embedding: vector,
		Model:     e.model,
	}
}

func wrapWithInstruct(task, query string) string {
	return fmt.Sprintf("Instruct: %s\nQuery: %s", task, query)
}
