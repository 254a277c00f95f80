package es

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

const actionCreate = "create"

// BulkCreate writes docs into partition with the create action, so an id that
// already exists is rejected by Elasticsearch and reported as a failure.
func (s *Store) BulkCreate(ctx context.Context, partition string, docs []storage.Document) (*storage.BulkResult, error) {
	result := &storage.BulkResult{Partition: partition}
	if len(docs) == 0 {
		return result, nil
	}

	var (
		mu          sync.Mutex
		flushErrs   []error
		itemsFailed uint64
	)

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         partition,
		Client:        s.client,
		NumWorkers:    2,
		FlushBytes:    5e+6, // 5MB
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			slog.Error("bulk request error", "partition", partition, "error", err)
			mu.Lock()
			flushErrs = append(flushErrs, err)
			mu.Unlock()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create bulk indexer: %w", apperr.ErrStoreWrite, err)
	}

	for _, doc := range docs {
		err = bi.Add(
			ctx,
			esutil.BulkIndexerItem{
				Action:     actionCreate,
				DocumentID: doc.ID,
				Body:       bytes.NewReader(doc.Body),
				OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
					mu.Lock()
					result.Successful++
					mu.Unlock()
				},
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					f := storage.Failure{ID: item.DocumentID, Status: res.Status}
					if err != nil {
						f.Reason = err.Error()
					} else {
						f.Type = res.Error.Type
						f.Reason = res.Error.Reason
					}
					slog.Error("bulk create error",
						"partition", partition,
						"id", f.ID,
						"status", f.Status,
						"type", f.Type,
						"reason", f.Reason)

					mu.Lock()
					result.Failures = append(result.Failures, f)
					itemsFailed++
					mu.Unlock()
				},
			},
		)
		if err != nil {
			slog.Error("failed to add document to bulk indexer", "error", err, "id", doc.ID)
			mu.Lock()
			result.Failures = append(result.Failures, storage.Failure{ID: doc.ID, Reason: err.Error()})
			mu.Unlock()
		}
	}

	if err := bi.Close(ctx); err != nil {
		return result, fmt.Errorf("%w: failed to close bulk indexer: %w", apperr.ErrStoreWrite, err)
	}

	stats := bi.Stats()
	if len(flushErrs) > 0 {
		return result, fmt.Errorf("%w: partition %s: %w", apperr.ErrStoreWrite, partition, errors.Join(flushErrs...))
	}
	// Request-level failures are counted in the stats without item callbacks.
	if stats.NumFailed > itemsFailed {
		return result, fmt.Errorf("%w: partition %s: %d documents not written",
			apperr.ErrStoreWrite, partition, stats.NumFailed-itemsFailed)
	}
	if acked := result.Successful + len(result.Failures); acked < len(docs) {
		return result, fmt.Errorf("%w: partition %s: %d documents not acknowledged",
			apperr.ErrStoreWrite, partition, len(docs)-acked)
	}

	slog.Info("Bulk create completed",
		"partition", partition,
		"successful", result.Successful,
		"failed", result.Failed(),
		"total", len(docs),
		"flushed_bytes", stats.FlushedBytes)

	return result, nil
}
