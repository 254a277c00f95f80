// Package main News Spool API
// @title News Spool API
// @version 1.0
// @description Hybrid lexical and semantic search over crawled news articles
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/api/router"
	"github.com/DjordjeVuckovic/news-spool/internal/api/server"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/query"
	"github.com/DjordjeVuckovic/news-spool/internal/embedding"
	"github.com/DjordjeVuckovic/news-spool/internal/search"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/factory"
	"github.com/DjordjeVuckovic/news-spool/pkg/config/env"
	pkgserver "github.com/DjordjeVuckovic/news-spool/pkg/server"
	"github.com/labstack/echo/v4"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := NewAppConfig().Load()
	env.SetupLogger()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	store, err := factory.NewStore(ctx, cfg.StorageConfig)
	cancel()
	if err != nil {
		slog.Error("Failed to create document store", "error", err)
		os.Exit(1)
	}

	embedder, err := embedding.NewEmbedderFromConfig(cfg.EmbeddingConfig)
	if err != nil {
		slog.Error("Failed to create embedder", "error", err)
		os.Exit(1)
	}

	healthChecker := pkgserver.NewCompositeHealthChecker(
		pkgserver.NewOkHealthChecker(),
		pkgserver.PingHealthChecker(store.Ping),
	)

	s := server.New(sCfg, healthChecker).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "News Spool API is running")
	})

	builder := query.NewBuilder(embedder)
	service := search.NewService(builder, store, cfg.StorageConfig.IndexPrefix)
	router.NewSearchRouter(s.Echo, service).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
