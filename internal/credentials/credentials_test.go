package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ES_API_KEY.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAPIKey(t *testing.T) {
	key, err := LoadAPIKey(writeFile(t, `{"api_key": "c2VjcmV0"}`))
	require.NoError(t, err)
	assert.Equal(t, "c2VjcmV0", key)
}

func TestLoadAPIKey_Failures(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{"invalid json", func(t *testing.T) string { return writeFile(t, `{"api_key":`) }},
		{"empty key", func(t *testing.T) string { return writeFile(t, `{"api_key": "  "}`) }},
		{"no key", func(t *testing.T) string { return writeFile(t, `{}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAPIKey(tt.path(t))
			require.Error(t, err)

			var cfgErr *apperr.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}
