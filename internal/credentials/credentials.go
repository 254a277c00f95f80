// Package credentials loads secrets kept in local files.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/pkg/config/env"
)

type apiKeyFile struct {
	APIKey string `json:"api_key"`
}

// LoadAPIKey reads {"api_key": "..."} from path. A leading "~/" is expanded
// to the user's home directory. Every failure is an *apperr.ConfigError.
func LoadAPIKey(path string) (string, error) {
	resolved, err := env.ExpandHome(path)
	if err != nil {
		return "", apperr.NewConfig(path, err)
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return "", apperr.NewConfig(resolved, fmt.Errorf("failed to read credential file: %w", err))
	}

	var f apiKeyFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", apperr.NewConfig(resolved, fmt.Errorf("invalid credential file: %w", err))
	}
	if strings.TrimSpace(f.APIKey) == "" {
		return "", apperr.NewConfig(resolved, errors.New("api_key is empty"))
	}

	return f.APIKey, nil
}
