package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Generate(t *testing.T) {
	var got OllamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embedding":[0.5,-0.25]}`))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(srv.URL)
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), Request{Model: "m", Prompt: "hello"})
	require.NoError(t, err)

	assert.Equal(t, []float32{0.5, -0.25}, resp.Embedding)
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, "hello", got.Prompt)
}

func TestOllamaClient_Generate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewOllamaClient(srv.URL, WithHttpClient(srv.Client()))
	require.NoError(t, err)

	t.Run("non 200 status", func(t *testing.T) {
		_, err := client.Generate(context.Background(), Request{Model: "m", Prompt: "hello"})
		assert.ErrorContains(t, err, "unexpected status code: 404")
	})

	t.Run("missing prompt", func(t *testing.T) {
		_, err := client.Generate(context.Background(), Request{Model: "m"})
		var ve *apperr.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := client.Generate(context.Background(), Request{Prompt: "hello"})
		var ve *apperr.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func TestOllamaClient_GenerateBatch(t *testing.T) {
	var got OllamaBatchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"m","embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(srv.URL)
	require.NoError(t, err)

	resp, err := client.GenerateBatch(context.Background(), BatchRequest{Model: "m", Prompts: []string{"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, "m", got.Model)
	assert.Equal(t, []string{"a", "b"}, got.Input)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, resp.Embeddings)

	_, err = client.GenerateBatch(context.Background(), BatchRequest{Model: "m", Prompts: []string{"a"}})
	assert.ErrorContains(t, err, "expected 1 embeddings, got 2")
}

func TestOllamaClient_BackendUnavailable(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		client, err := NewOllamaClient("http://127.0.0.1:1")
		require.NoError(t, err)

		_, err = client.Generate(context.Background(), Request{Model: "m", Prompt: "hello"})
		assert.ErrorIs(t, err, apperr.ErrEmbeddingUnavailable)
	})

	tests := []struct {
		name        string
		status      int
		unavailable bool
	}{
		{name: "server error", status: http.StatusInternalServerError, unavailable: true},
		{name: "bad gateway", status: http.StatusBadGateway, unavailable: true},
		{name: "model not found", status: http.StatusNotFound, unavailable: true},
		{name: "unauthorized", status: http.StatusUnauthorized, unavailable: true},
		{name: "bad input", status: http.StatusBadRequest, unavailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			client, err := NewOllamaClient(srv.URL)
			require.NoError(t, err)

			_, err = client.GenerateBatch(context.Background(), BatchRequest{Model: "m", Prompts: []string{"a"}})
			require.Error(t, err)
			assert.Equal(t, tt.unavailable, errors.Is(err, apperr.ErrEmbeddingUnavailable))
		})
	}

	t.Run("cancelled context is not an outage", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client, err := NewOllamaClient("http://127.0.0.1:1")
		require.NoError(t, err)

		_, err = client.Generate(ctx, Request{Model: "m", Prompt: "hello"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, apperr.ErrEmbeddingUnavailable)
	})
}
