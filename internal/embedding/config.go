package embedding

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

type Config struct {
	Provider  Provider
	Model     string
	MaxLength *int
	BaseURL   string
	APIKey    string
}

func LoadConfigFromEnv() (*Config, error) {
	provider := Provider(os.Getenv("EMBEDDING_PROVIDER"))
	model := os.Getenv("EMBEDDING_MODEL")
	maxLen := os.Getenv("EMBEDDING_MAX_LENGTH")
	baseUrl := os.Getenv("EMBEDDING_BASE_URL")

	if baseUrl == "" {
		return nil, errors.New("EMBEDDING_BASE_URL environment variable not set")
	}

	if provider == "" {
		provider = ProviderOllama
	}
	if provider != ProviderOllama && provider != ProviderOpenAI {
		return nil, fmt.Errorf("invalid EMBEDDING_PROVIDER value: %s, expected one of %v",
			provider, []Provider{ProviderOllama, ProviderOpenAI})
	}

	if model == "" {
		model = defaultModel
	}

	return &Config{
		Provider: provider,
		Model:    model,
		MaxLength: func() *int {
			if maxLen == "" {
				return nil
			}
			val, err := strconv.Atoi(maxLen)
			if err != nil {
				return nil
			}
			return &val
		}(),
		BaseURL: baseUrl,
		APIKey:  os.Getenv("EMBEDDING_API_KEY"),
	}, nil
}

// NewClient builds the Client selected by cfg.Provider.
func NewClient(cfg *Config) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.BaseURL, cfg.Model, cfg.APIKey)
	case ProviderOllama, "":
		return NewOllamaClient(cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// NewEmbedderFromConfig wires a Client and an Embedder in one step.
func NewEmbedderFromConfig(cfg *Config) (*Embedder, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	opts := []EmbedderOption{WithExecutorModel(cfg.Model)}
	if cfg.MaxLength != nil {
		opts = append(opts, WithExecutorMaxLength(*cfg.MaxLength))
	}

	return NewEmbedder(client, opts...), nil
}
