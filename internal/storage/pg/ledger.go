package pg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id               UUID PRIMARY KEY,
		started_at       TIMESTAMPTZ NOT NULL,
		finished_at      TIMESTAMPTZ NOT NULL,
		spool_dir        TEXT NOT NULL,
		no_new_data      BOOLEAN NOT NULL DEFAULT FALSE,
		files_seen       INTEGER NOT NULL DEFAULT 0,
		parse_errors     INTEGER NOT NULL DEFAULT 0,
		filtered         INTEGER NOT NULL DEFAULT 0,
		missing_url      INTEGER NOT NULL DEFAULT 0,
		embedding_errors INTEGER NOT NULL DEFAULT 0,
		indexed          INTEGER NOT NULL DEFAULT 0,
		failed           INTEGER NOT NULL DEFAULT 0,
		partitions       TEXT[] NOT NULL DEFAULT '{}',
		cleanup_policy   TEXT NOT NULL,
		cleaned_up       BOOLEAN NOT NULL DEFAULT FALSE,
		abort_error      TEXT NOT NULL DEFAULT ''
	);
`

const addAbortError = `ALTER TABLE ingest_runs ADD COLUMN IF NOT EXISTS abort_error TEXT NOT NULL DEFAULT '';`

// RunLedger persists ingestion run summaries in Postgres.
type RunLedger struct {
	db *pgxpool.Pool
}

func NewRunLedger(ctx context.Context, pool *ConnectionPool) (*RunLedger, error) {
	l := &RunLedger{db: pool.GetConn()}
	if err := l.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *RunLedger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("failed to create ingest_runs table: %w", err)
	}
	if _, err := l.db.Exec(ctx, addAbortError); err != nil {
		return fmt.Errorf("failed to migrate ingest_runs table: %w", err)
	}
	return nil
}

func (l *RunLedger) Record(ctx context.Context, run storage.RunRecord) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	partitions := run.Partitions
	if partitions == nil {
		partitions = []string{}
	}

	cmd := `
		INSERT INTO ingest_runs (id, started_at, finished_at, spool_dir, no_new_data, files_seen, parse_errors,
		                         filtered, missing_url, embedding_errors, indexed, failed, partitions,
		                         cleanup_policy, cleaned_up, abort_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := l.db.Exec(ctx, cmd,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.SpoolDir,
		run.NoNewData,
		run.FilesSeen,
		run.ParseErrors,
		run.Filtered,
		run.MissingURL,
		run.EmbeddingErrors,
		run.Indexed,
		run.Failed,
		partitions,
		run.CleanupPolicy,
		run.CleanedUp,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ingest run: %w", err)
	}

	slog.Debug("Ingest run recorded", "run_id", run.ID)
	return nil
}

// Recent returns the latest runs, newest first.
func (l *RunLedger) Recent(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, started_at, finished_at, spool_dir, no_new_data, files_seen, parse_errors, filtered,
		       missing_url, embedding_errors, indexed, failed, partitions, cleanup_policy, cleaned_up,
		       abort_error
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingest runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.RunRecord, error) {
		var r storage.RunRecord
		var started, finished time.Time
		err := row.Scan(
			&r.ID, &started, &finished, &r.SpoolDir, &r.NoNewData, &r.FilesSeen, &r.ParseErrors, &r.Filtered,
			&r.MissingURL, &r.EmbeddingErrors, &r.Indexed, &r.Failed, &r.Partitions, &r.CleanupPolicy, &r.CleanedUp,
			&r.Error,
		)
		r.StartedAt, r.FinishedAt = started.UTC(), finished.UTC()
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan ingest runs: %w", err)
	}
	return runs, nil
}
