package main

import (
	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/ingest"
	"github.com/urfave/cli/v2"
)

// loadIngestConfig layers command line flags over ingest.LoadConfig.
func loadIngestConfig(c *cli.Context) (*ingest.Config, error) {
	cfg, err := ingest.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if !c.IsSet("spool-root") && !c.IsSet("workers") && !c.IsSet("cleanup-policy") {
		return cfg, nil
	}

	if c.IsSet("spool-root") {
		cfg.SpoolRoot = c.String("spool-root")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("cleanup-policy") {
		policy, err := ingest.ParseCleanupPolicy(c.String("cleanup-policy"))
		if err != nil {
			return nil, apperr.NewConfig("cleanup-policy", err)
		}
		cfg.CleanupPolicy = policy
	}

	return cfg.Resolve()
}
