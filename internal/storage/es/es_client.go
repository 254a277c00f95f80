package es

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/elastic/go-elasticsearch/v8"
)

type ClientConfig struct {
	Addresses []string
	APIKey    string
	Username  string
	Password  string
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	IndexPrefix   string
	EmbeddingDims int
}

const DefaultEmbeddingDims = 1536

func (c ClientConfig) prefix() string {
	if c.IndexPrefix == "" {
		return document.DefaultPartitionPrefix
	}
	return c.IndexPrefix
}

func (c ClientConfig) dims() int {
	if c.EmbeddingDims <= 0 {
		return DefaultEmbeddingDims
	}
	return c.EmbeddingDims
}

func newClient(config ClientConfig) (*elasticsearch.TypedClient, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		APIKey:    config.APIKey,
	}

	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	if config.InsecureSkipVerify {
		cfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return elasticsearch.NewTypedClient(cfg)
}

// Store is the Elasticsearch document store. Partitions are daily indices
// sharing one index template.
type Store struct {
	client *elasticsearch.TypedClient
	config ClientConfig
}

func NewStore(ctx context.Context, config ClientConfig) (*Store, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	s := &Store{
		client: client,
		config: config,
	}

	if err := s.EnsureTemplate(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index template: %w", err)
	}

	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.Ping().Do(ctx)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("elasticsearch ping failed: cluster not reachable")
	}
	return nil
}

// Healthy adapts Ping to the health endpoint.
func (s *Store) Healthy(ctx context.Context) bool {
	if err := s.Ping(ctx); err != nil {
		slog.Warn("Elasticsearch is unhealthy", "error", err)
		return false
	}
	return true
}
