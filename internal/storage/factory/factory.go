package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/es"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/pg"
)

// NewStore creates the document store selected by cfg.Type.
func NewStore(ctx context.Context, cfg *StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case storage.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("missing Elasticsearch configuration")
		}
		return es.NewStore(ctx, *cfg.Es)

	case storage.InMem:
		return in_mem.NewStore(), nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}
}

// NewRunLedger connects the Postgres run ledger. It returns a nil ledger and
// a no-op close when no connection string is configured.
func NewRunLedger(ctx context.Context, cfg *StorageConfig) (storage.RunLedger, func(), error) {
	if cfg.Pg == nil {
		return nil, func() {}, nil
	}

	pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}

	ledger, err := pg.NewRunLedger(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return ledger, pool.Close, nil
}
