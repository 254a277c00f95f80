package storage

import (
	"context"
	"encoding/json"

	"github.com/DjordjeVuckovic/news-spool/internal/domain/query"
)

// Hit is a raw search hit. Source holds whatever fields the store returned.
type Hit struct {
	Index  string
	ID     string
	Source json.RawMessage
	Score  float64
}

// HybridSearcher executes a built query over every partition matching pattern.
// Hits come back in store order: descending blended score, or publish date
// descending when the query carries a sort.
type HybridSearcher interface {
	Search(ctx context.Context, pattern string, q *query.Hybrid) ([]Hit, error)
}

// Store is a document store usable for both ingestion and search.
type Store interface {
	BulkCreator
	HybridSearcher
	Ping(ctx context.Context) error
}
