package query

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/embedding"
)

// Ranking constants for the lexical and semantic branches.
const (
	LexicalBoost     float32 = 0.9
	VectorBoost      float32 = 0.1
	KnnK                     = 5
	KnnNumCandidates         = 200

	SearchSize = 10
	LatestSize = 20
)

// Hybrid is a combined lexical + kNN query. Filters restrict both branches.
// Lexical and Knn are nil in latest mode, where Sort is set instead.
type Hybrid struct {
	Text    string
	Lexical *Lexical
	Knn     *Knn
	Filters []Filter
	Size    int
	Sort    *Sort
}

type Lexical struct {
	Field string
	Query string
	Boost float32
}

type Knn struct {
	Field         string
	Vector        []float32
	K             int
	NumCandidates int
	Boost         float32
}

type Sort struct {
	Field string
	Desc  bool
}

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) (*embedding.Vec, error)
}

type Builder struct {
	embedder QueryEmbedder
	now      func() time.Time
}

type BuilderOption func(b *Builder)

func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

func NewBuilder(embedder QueryEmbedder, opts ...BuilderOption) *Builder {
	b := &Builder{
		embedder: embedder,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build embeds the instructed query text and assembles the hybrid query.
func (b *Builder) Build(ctx context.Context, text string, filters Filters) (*Hybrid, error) {
	if text == "" {
		return nil, apperr.NewValidation("query parameter is required")
	}
	if _, err := ParseDateRange(string(filters.Date)); err != nil {
		return nil, err
	}

	vec, err := b.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return &Hybrid{
		Text: text,
		Lexical: &Lexical{
			Field: FieldTitle,
			Query: text,
			Boost: LexicalBoost,
		},
		Knn: &Knn{
			Field:         FieldVector,
			Vector:        vec.Embedding,
			K:             KnnK,
			NumCandidates: KnnNumCandidates,
			Boost:         VectorBoost,
		},
		Filters: filters.Translate(b.now()),
		Size:    SearchSize,
	}, nil
}

// Latest lists the newest articles. No text and no embedding call.
func (b *Builder) Latest() *Hybrid {
	return &Hybrid{
		Size: LatestSize,
		Sort: &Sort{Field: FieldDatePublish, Desc: true},
	}
}
