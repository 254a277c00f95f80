package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient talks to any OpenAI-compatible embeddings endpoint
// (text-embeddings-inference, vLLM, LM Studio, OpenAI itself).
// The model is fixed when the client is built; Request.Model is only logged.
type OpenAIClient struct {
	embedder embeddings.Embedder
	model    string
}

func NewOpenAIClient(baseURL, model, token string) (*OpenAIClient, error) {
	if token == "" {
		// local servers usually ignore the token but langchaingo requires one
		token = "none"
	}

	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	// instruct prompts rely on the newline between task and query
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OpenAIClient{embedder: embedder, model: model}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, apperr.NewValidation("missing text to embed")
	}
	c.logModel(req.Model)

	vectors, err := c.embedder.EmbedDocuments(ctx, []string{req.Prompt})
	if err != nil {
		return nil, classify(ctx, err)
	}
	if len(vectors) == 0 {
		return &Response{}, nil
	}

	return &Response{Embedding: vectors[0]}, nil
}

func (c *OpenAIClient) GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	if len(req.Prompts) == 0 {
		return nil, apperr.NewValidation("missing prompts to embed")
	}
	c.logModel(req.Model)

	vectors, err := c.embedder.EmbedDocuments(ctx, req.Prompts)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if len(vectors) != len(req.Prompts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(req.Prompts), len(vectors))
	}

	return &BatchResponse{Embeddings: vectors}, nil
}

func (c *OpenAIClient) logModel(requested string) {
	if requested != "" && requested != c.model {
		slog.Debug("openai client ignores request model", "requested", requested, "model", c.model)
	}
}

var statusCodePattern = regexp.MustCompile(`status code: (\d{3})`)

// classify marks langchaingo errors that mean the endpoint cannot serve any
// request. langchaingo flattens transport errors into plain messages, so the
// message is the only signal.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	msg := err.Error()
	if m := statusCodePattern.FindStringSubmatch(msg); m != nil {
		status, _ := strconv.Atoi(m[1])
		if backendDown(status) {
			return fmt.Errorf("%w: %w", apperr.ErrEmbeddingUnavailable, err)
		}
		return err
	}
	if strings.Contains(msg, "network error") || strings.Contains(msg, "request timeout") {
		return fmt.Errorf("%w: %w", apperr.ErrEmbeddingUnavailable, err)
	}
	return err
}
