//go:build integration

package pg

import (
	"context"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	testutil "github.com/DjordjeVuckovic/news-spool/pkg/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLedger_Integration(t *testing.T) {
	ctx := context.Background()
	container := testutil.NewPGContainerWithCleanup(ctx, t)

	pool, err := NewConnectionPool(ctx, PoolConfig{ConnStr: container.ConnString})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))

	ledger, err := NewRunLedger(ctx, pool)
	require.NoError(t, err)

	started := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	older := storage.RunRecord{
		ID: uuid.New(), StartedAt: started.Add(-time.Hour), FinishedAt: started.Add(-time.Hour),
		SpoolDir: "/spool/2025/01/05", NoNewData: true, CleanupPolicy: "always",
		Error: "embedding backend unavailable",
	}
	newer := storage.RunRecord{
		ID: uuid.New(), StartedAt: started, FinishedAt: started.Add(time.Minute),
		SpoolDir: "/spool/2025/01/05", FilesSeen: 3, Indexed: 2, Failed: 1,
		Partitions: []string{"news-please-2025-01-05"}, CleanupPolicy: "always", CleanedUp: true,
	}
	require.NoError(t, ledger.Record(ctx, older))
	require.NoError(t, ledger.Record(ctx, newer))

	runs, err := ledger.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, newer.Partitions, runs[0].Partitions)
	assert.Equal(t, 2, runs[0].Indexed)
	assert.True(t, runs[1].NoNewData)
	assert.Equal(t, "embedding backend unavailable", runs[1].Error)
	assert.Empty(t, runs[0].Error)
	assert.Empty(t, runs[1].Partitions)
}
