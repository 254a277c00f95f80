package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/collector"
	"github.com/DjordjeVuckovic/news-spool/internal/embedding"
	"github.com/DjordjeVuckovic/news-spool/internal/ingest"
	"github.com/DjordjeVuckovic/news-spool/internal/reader"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/factory"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/pg"
	"github.com/DjordjeVuckovic/news-spool/pkg/config/env"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("news_ingest failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "news_ingest",
		Usage: "Index today's spooled news articles and clean the spool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an ingest YAML config file",
				EnvVars: []string{"INGEST_CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:  "spool-root",
				Usage: "Root directory of the crawler spool",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of partitions indexed concurrently",
			},
			&cli.StringFlag{
				Name:  "cleanup-policy",
				Usage: "When to remove the spool after indexing (always, on_success)",
			},
		},
		Before: func(_ *cli.Context) error {
			if err := env.LoadDotEnv(os.Getenv("ENV"), "cmd/news_ingest/.env"); err != nil {
				slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
			}
			env.SetupLogger()
			return nil
		},
		Action: runCommand,
		Commands: []*cli.Command{
			{
				Name:   "runs",
				Usage:  "List recent ingestion runs from the run ledger",
				Action: runsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs to show",
						Value: 10,
					},
				},
			},
		},
	}
}

func runCommand(c *cli.Context) error {
	cfg, err := loadIngestConfig(c)
	if err != nil {
		return err
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		return err
	}

	embeddingCfg, err := embedding.LoadConfigFromEnv()
	if err != nil {
		return apperr.NewConfig("embedding", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := factory.NewStore(ctx, storageCfg)
	if err != nil {
		return fmt.Errorf("failed to create document store: %w", err)
	}

	ledger, closeLedger, err := factory.NewRunLedger(ctx, storageCfg)
	if err != nil {
		return fmt.Errorf("failed to create run ledger: %w", err)
	}
	defer closeLedger()

	embedder, err := embedding.NewEmbedderFromConfig(embeddingCfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	opts := []ingest.PipelineOption{
		ingest.WithWorkers(cfg.Workers),
		ingest.WithEmbedBatchSize(cfg.EmbedBatchSize),
		ingest.WithCleanupPolicy(cfg.CleanupPolicy),
		ingest.WithIndexPrefix(storageCfg.IndexPrefix),
	}
	if ledger != nil {
		opts = append(opts, ingest.WithLedger(ledger))
	}

	coll := collector.NewSpoolCollector(reader.NewSpoolReader(cfg.FileExt))
	pipeline := ingest.NewPipeline(coll, embedder, store, cfg.SpoolRoot, opts...)

	slog.Info("Starting ingestion run",
		"spool_root", cfg.SpoolRoot,
		"workers", cfg.Workers,
		"cleanup_policy", cfg.CleanupPolicy,
		"storage", storageCfg.Type)

	report, err := pipeline.Run(ctx)
	if report != nil {
		printReport(c.App.Writer, report)
	}
	return err
}

func runsCommand(c *cli.Context) error {
	storageCfg, err := factory.LoadEnv()
	if err != nil {
		return err
	}
	if storageCfg.Pg == nil {
		return fmt.Errorf("run ledger is not configured, set PG_CONNECTION_STRING")
	}

	pool, err := pg.NewConnectionPool(c.Context, *storageCfg.Pg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ledger, err := pg.NewRunLedger(c.Context, pool)
	if err != nil {
		return err
	}

	runs, err := ledger.Recent(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	for _, r := range runs {
		fmt.Fprintf(c.App.Writer, "%s  %s  files=%d indexed=%d failed=%d cleaned=%t %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.ID, r.FilesSeen, r.Indexed, r.Failed, r.CleanedUp, r.SpoolDir)
	}
	return nil
}

func printReport(w io.Writer, r *ingest.Report) {
	if r.NoNewData {
		fmt.Fprintf(w, "no new data in %s\n", r.SpoolDir)
		return
	}

	fmt.Fprintf(w, "run %s: %d files, %d indexed, %d failed\n", r.RunID, r.FilesSeen, r.Indexed(), r.Failed())
	fmt.Fprintf(w, "  skipped: parse=%d filtered=%d missing_url=%d embedding=%d\n",
		r.ParseErrors, r.Filtered, r.MissingURL, r.EmbeddingErrors)
	for _, p := range r.Partitions {
		status := "ok"
		if p.Err != nil {
			status = p.Err.Error()
		}
		fmt.Fprintf(w, "  %-40s %d/%d %s\n", p.Partition, p.Successful, p.Attempted, status)
	}
	fmt.Fprintf(w, "  cleaned up: %t\n", r.CleanedUp)
}
