package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	prompts []string
	models  []string
	batches [][]string
	vector  []float32
	err     error
}

func (c *recordingClient) Generate(_ context.Context, req Request) (*Response, error) {
	c.prompts = append(c.prompts, req.Prompt)
	c.models = append(c.models, req.Model)
	if c.err != nil {
		return nil, c.err
	}
	return &Response{Embedding: c.vector}, nil
}

func (c *recordingClient) GenerateBatch(_ context.Context, req BatchRequest) (*BatchResponse, error) {
	c.batches = append(c.batches, req.Prompts)
	c.models = append(c.models, req.Model)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(req.Prompts))
	for i := range req.Prompts {
		out[i] = append([]float32{float32(i)}, c.vector...)
	}
	return &BatchResponse{Embeddings: out}, nil
}

func TestEmbedder_EmbedDocument_SendsRawText(t *testing.T) {
	client := &recordingClient{vector: []float32{0.1, 0.2, 0.3}}
	e := NewEmbedder(client, WithExecutorModel("test-model"))

	vec, err := e.EmbedDocument(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, []string{"hello world"}, client.prompts)
	assert.Equal(t, []string{"test-model"}, client.models)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec.Embedding)
	assert.Equal(t, "test-model", vec.Model)
}

func TestEmbedder_EmbedQuery_WrapsWithInstruct(t *testing.T) {
	client := &recordingClient{vector: []float32{1}}
	e := NewEmbedder(client)

	_, err := e.EmbedQuery(context.Background(), "  Ukraine war ")
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.Equal(t,
		"Instruct: Given a search query, retrieve relevant news articles\nQuery: Ukraine war",
		client.prompts[0])
	assert.Equal(t, defaultModel, client.models[0])
}

func TestEmbedder_MaxLengthTruncates(t *testing.T) {
	client := &recordingClient{vector: []float32{1, 2, 3, 4}}
	e := NewEmbedder(client, WithExecutorMaxLength(2))

	vec, err := e.EmbedDocument(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec.Embedding)
}

func TestEmbedder_Errors(t *testing.T) {
	t.Run("client failure is an embedding error", func(t *testing.T) {
		cause := errors.New("model unavailable")
		e := NewEmbedder(&recordingClient{err: cause})

		_, err := e.EmbedDocument(context.Background(), "text")
		assert.ErrorIs(t, err, apperr.ErrEmbedding)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty vector is an embedding error", func(t *testing.T) {
		e := NewEmbedder(&recordingClient{})

		_, err := e.EmbedQuery(context.Background(), "text")
		assert.ErrorIs(t, err, apperr.ErrEmbedding)
	})
}

func TestEmbedder_EmbedDocuments(t *testing.T) {
	client := &recordingClient{vector: []float32{7, 8}}
	e := NewEmbedder(client, WithExecutorModel("test-model"), WithExecutorMaxLength(2))

	vecs, err := e.EmbedDocuments(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"first", "second"}}, client.batches)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0, 7}, vecs[0].Embedding)
	assert.Equal(t, []float32{1, 7}, vecs[1].Embedding)
	assert.Equal(t, "test-model", vecs[1].Model)
}

func TestEmbedder_BackendUnavailable(t *testing.T) {
	cause := fmt.Errorf("%w: connection refused", apperr.ErrEmbeddingUnavailable)
	e := NewEmbedder(&recordingClient{err: cause})

	_, err := e.EmbedDocument(context.Background(), "text")
	assert.ErrorIs(t, err, apperr.ErrEmbedding)
	assert.ErrorIs(t, err, apperr.ErrEmbeddingUnavailable)

	_, err = e.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, apperr.ErrEmbeddingUnavailable)
}
