package ingest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/reader"
	"github.com/DjordjeVuckovic/news-spool/pkg/config/env"
)

const (
	DefaultSpoolRoot = "~/news-please-repo/data"
	DefaultWorkers   = 4
)

// CleanupPolicy decides whether the spool is removed after indexing.
type CleanupPolicy string

const (
	// CleanupAlways removes the spool even when partitions failed to index.
	// Articles of a failed partition are lost.
	CleanupAlways CleanupPolicy = "always"
	// CleanupOnSuccess keeps the spool when any partition request failed.
	CleanupOnSuccess CleanupPolicy = "on_success"
)

func ParseCleanupPolicy(s string) (CleanupPolicy, error) {
	switch p := CleanupPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CleanupAlways, CleanupOnSuccess:
		return p, nil
	case "":
		return CleanupAlways, nil
	default:
		return "", fmt.Errorf("invalid cleanup policy %q, expected %q or %q", s, CleanupAlways, CleanupOnSuccess)
	}
}

func (c CleanupPolicy) ShouldClean(r *Report) bool {
	if c == CleanupOnSuccess {
		return len(r.FailedPartitions()) == 0
	}
	return true
}

type Config struct {
	SpoolRoot      string        `yaml:"spool_root"`
	Workers        int           `yaml:"workers"`
	EmbedBatchSize int           `yaml:"embed_batch_size"`
	CleanupPolicy  CleanupPolicy `yaml:"cleanup_policy"`
	FileExt        string        `yaml:"file_ext"`
}

func (c *Config) Validate() error {
	if c.SpoolRoot == "" {
		return fmt.Errorf("spool_root is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("embed_batch_size must be at least 1, got %d", c.EmbedBatchSize)
	}
	if _, err := ParseCleanupPolicy(string(c.CleanupPolicy)); err != nil {
		return err
	}
	if !strings.HasPrefix(c.FileExt, ".") {
		return fmt.Errorf("file_ext must start with a dot, got %q", c.FileExt)
	}
	return nil
}

func DefaultConfig() Config {
	return Config{
		SpoolRoot:      DefaultSpoolRoot,
		Workers:        DefaultWorkers,
		EmbedBatchSize: DefaultEmbedBatchSize,
		CleanupPolicy:  CleanupAlways,
		FileExt:        reader.DefaultArticleExt,
	}
}

// LoadConfig layers defaults, the optional YAML file and environment
// variables, in that order. The spool root has "~" expanded.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := reader.LoadYAMLFile(path, &cfg); err != nil {
			return nil, apperr.NewConfig(path, err)
		}
	}

	if v := os.Getenv("SPOOL_ROOT"); v != "" {
		cfg.SpoolRoot = v
	}
	if v := os.Getenv("INGEST_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperr.NewConfig("INGEST_WORKERS", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("INGEST_EMBED_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperr.NewConfig("INGEST_EMBED_BATCH_SIZE", err)
		}
		cfg.EmbedBatchSize = n
	}
	if v := os.Getenv("INGEST_CLEANUP_POLICY"); v != "" {
		cfg.CleanupPolicy = CleanupPolicy(v)
	}
	if v := os.Getenv("INGEST_FILE_EXT"); v != "" {
		cfg.FileExt = v
	}

	return cfg.Resolve()
}

// Resolve validates c and normalizes its paths and policy.
func (c Config) Resolve() (*Config, error) {
	if err := c.Validate(); err != nil {
		return nil, apperr.NewConfig("ingest", err)
	}

	root, err := env.ExpandHome(c.SpoolRoot)
	if err != nil {
		return nil, apperr.NewConfig("spool_root", err)
	}
	c.SpoolRoot = root

	policy, _ := ParseCleanupPolicy(string(c.CleanupPolicy))
	c.CleanupPolicy = policy

	return &c, nil
}
