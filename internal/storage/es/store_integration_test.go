//go:build integration

package es

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/query"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	testutil "github.com/DjordjeVuckovic/news-spool/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()
	container := testutil.NewESContainer(ctx, t)

	s, err := NewStore(ctx, ClientConfig{
		Addresses:     []string{container.Address},
		IndexPrefix:   "news-it",
		EmbeddingDims: 3,
	})
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	article := document.IndexedArticle{
		Article: document.Article{
			URL:          "http://x/1",
			Title:        "hello world",
			Maintext:     "hello world",
			Authors:      []string{"A"},
			Language:     "en",
			SourceDomain: "a.com",
			DatePublish:  "2025-01-05 10:00:00",
		},
		MaintextVector: []float32{1, 0, 0},
	}
	body, err := json.Marshal(article)
	require.NoError(t, err)
	docs := []storage.Document{{ID: article.URL, Body: body}}

	res, err := s.BulkCreate(ctx, "news-it-2025-01-05", docs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Successful)

	t.Run("duplicate id is a per-document failure", func(t *testing.T) {
		res, err := s.BulkCreate(ctx, "news-it-2025-01-05", docs)
		require.NoError(t, err)
		assert.Zero(t, res.Successful)
		require.Len(t, res.Failures, 1)
		assert.Equal(t, storage.StatusConflict, res.Failures[0].Status)
	})

	_, err = s.client.Indices.Refresh().Index("news-it-*").Do(ctx)
	require.NoError(t, err)

	now := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	q := &query.Hybrid{
		Text:    "hello",
		Lexical: &query.Lexical{Field: query.FieldTitle, Query: "hello", Boost: query.LexicalBoost},
		Knn: &query.Knn{
			Field: query.FieldVector, Vector: []float32{1, 0, 0},
			K: query.KnnK, NumCandidates: query.KnnNumCandidates, Boost: query.VectorBoost,
		},
		Filters: query.Filters{Date: query.DateWeek, Sources: []string{"a.com", "b.com"}}.Translate(now),
		Size:    query.SearchSize,
	}

	hits, err := s.Search(ctx, document.PartitionPattern("news-it"), q)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "http://x/1", hits[0].ID)
	assert.Equal(t, "news-it-2025-01-05", hits[0].Index)
	assert.Positive(t, hits[0].Score)
}
