package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("EMBEDDING_BASE_URL", "http://localhost:11434")
		t.Setenv("EMBEDDING_PROVIDER", "")
		t.Setenv("EMBEDDING_MODEL", "")
		t.Setenv("EMBEDDING_MAX_LENGTH", "")

		cfg, err := LoadConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, cfg.Provider)
		assert.Equal(t, defaultModel, cfg.Model)
		assert.Nil(t, cfg.MaxLength)
	})

	t.Run("explicit values", func(t *testing.T) {
		t.Setenv("EMBEDDING_BASE_URL", "http://tei:8080/v1")
		t.Setenv("EMBEDDING_PROVIDER", "openai")
		t.Setenv("EMBEDDING_MODEL", "bge")
		t.Setenv("EMBEDDING_MAX_LENGTH", "768")

		cfg, err := LoadConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "bge", cfg.Model)
		require.NotNil(t, cfg.MaxLength)
		assert.Equal(t, 768, *cfg.MaxLength)
	})

	t.Run("missing base url", func(t *testing.T) {
		t.Setenv("EMBEDDING_BASE_URL", "")
		_, err := LoadConfigFromEnv()
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("EMBEDDING_BASE_URL", "http://localhost:11434")
		t.Setenv("EMBEDDING_PROVIDER", "sentence-transformers")
		_, err := LoadConfigFromEnv()
		assert.ErrorContains(t, err, "sentence-transformers")
	})
}

func TestNewEmbedderFromConfig(t *testing.T) {
	maxLen := 10
	e, err := NewEmbedderFromConfig(&Config{
		Provider:  ProviderOllama,
		Model:     "m",
		BaseURL:   "http://localhost:11434",
		MaxLength: &maxLen,
	})
	require.NoError(t, err)
	assert.Equal(t, "m", e.model)
	require.NotNil(t, e.maxLength)
	assert.Equal(t, 10, *e.maxLength)
	assert.IsType(t, &OllamaClient{}, e.client)
}
