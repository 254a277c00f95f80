package main

import (
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/embedding"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/factory"
	"github.com/DjordjeVuckovic/news-spool/pkg/config/env"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type NewsAPIConfig struct {
	StorageConfig   *factory.StorageConfig
	EmbeddingConfig *embedding.Config
}

func (as *AppConfig) Load() (*NewsAPIConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/news_api/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		return nil, err
	}

	embeddingCfg, err := embedding.LoadConfigFromEnv()
	if err != nil {
		return nil, apperr.NewConfig("embedding", err)
	}

	return &NewsAPIConfig{
		StorageConfig:   storageCfg,
		EmbeddingConfig: embeddingCfg,
	}, nil
}
