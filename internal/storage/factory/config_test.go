package factory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_key":"k"}`), 0o600))
	return path
}

func TestLoadEnv_ES(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "es")
	t.Setenv("ES_ADDRESSES", "https://a:9200, https://b:9200")
	t.Setenv("ES_API_KEY_PATH", keyFile(t))
	t.Setenv("ES_INDEX_PREFIX", "")
	t.Setenv("ES_INSECURE_SKIP_VERIFY", "")
	t.Setenv("EMBEDDING_DIMS", "384")
	t.Setenv("PG_CONNECTION_STRING", "")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, storage.ES, cfg.Type)
	assert.Equal(t, "news-please", cfg.IndexPrefix)
	require.NotNil(t, cfg.Es)
	assert.Equal(t, []string{"https://a:9200", "https://b:9200"}, cfg.Es.Addresses)
	assert.Equal(t, "k", cfg.Es.APIKey)
	assert.True(t, cfg.Es.InsecureSkipVerify)
	assert.Equal(t, 384, cfg.Es.EmbeddingDims)
	assert.Nil(t, cfg.Pg)
}

func TestLoadEnv_InMemWithLedger(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "in_mem")
	t.Setenv("ES_INDEX_PREFIX", "news")
	t.Setenv("PG_CONNECTION_STRING", "postgres://u:p@localhost:5432/db")

	cfg, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, storage.InMem, cfg.Type)
	assert.Equal(t, "news", cfg.IndexPrefix)
	assert.Nil(t, cfg.Es)
	require.NotNil(t, cfg.Pg)
}

func TestLoadEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE_TYPE": "solr"}},
		{"no addresses", map[string]string{"STORAGE_TYPE": "es", "ES_ADDRESSES": " "}},
		{"missing key file", map[string]string{
			"STORAGE_TYPE": "es", "ES_ADDRESSES": "http://a:9200", "ES_API_KEY_PATH": "/nonexistent/key.json",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadEnv()
			require.Error(t, err)

			var cfgErr *apperr.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}
