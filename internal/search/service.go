package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/query"
	"github.com/DjordjeVuckovic/news-spool/internal/dto"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
)

type Request struct {
	Query   string
	Date    string
	Authors string
	// Sources may hold repeated values and comma separated lists.
	Sources []string
}

// Service runs hybrid searches over every daily partition.
type Service struct {
	builder  *query.Builder
	searcher storage.HybridSearcher
	pattern  string
}

func NewService(builder *query.Builder, searcher storage.HybridSearcher, indexPrefix string) *Service {
	if indexPrefix == "" {
		indexPrefix = document.DefaultPartitionPrefix
	}
	return &Service{
		builder:  builder,
		searcher: searcher,
		pattern:  document.PartitionPattern(indexPrefix),
	}
}

// Search validates the request before any embedding or store call.
func (s *Service) Search(ctx context.Context, req Request) (*dto.SearchResponse, error) {
	filters, err := query.ParseFilters(req.Date, req.Authors, req.Sources)
	if err != nil {
		return nil, err
	}

	q, err := s.builder.Build(ctx, req.Query, filters)
	if err != nil {
		return nil, err
	}

	return s.execute(ctx, q)
}

// Latest lists the newest articles without a text query.
func (s *Service) Latest(ctx context.Context) (*dto.SearchResponse, error) {
	return s.execute(ctx, s.builder.Latest())
}

func (s *Service) execute(ctx context.Context, q *query.Hybrid) (*dto.SearchResponse, error) {
	hits, err := s.searcher.Search(ctx, s.pattern, q)
	if err != nil {
		if !errors.Is(err, apperr.ErrStoreQuery) {
			err = fmt.Errorf("%w: %w", apperr.ErrStoreQuery, err)
		}
		return nil, err
	}

	results := make([]dto.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, Project(h))
	}

	slog.Debug("Search executed", "pattern", s.pattern, "query", q.Text, "results", len(results))
	return &dto.SearchResponse{Results: results}, nil
}

// hitSource tolerates missing, null and mistyped optional fields.
type hitSource struct {
	Title        any `json:"title"`
	URL          any `json:"url"`
	Description  any `json:"description"`
	SourceDomain any `json:"source_domain"`
	DatePublish  any `json:"date_publish"`
	ImageURL     any `json:"image_url"`
}

// Project maps a raw hit to a SearchResult. It never fails: fields that are
// absent or not strings become "".
func Project(h storage.Hit) dto.SearchResult {
	var src hitSource
	if err := json.Unmarshal(h.Source, &src); err != nil {
		slog.Warn("Hit source is not an object", "index", h.Index, "id", h.ID, "error", err)
	}

	url := str(src.URL)
	if url == "" {
		url = h.ID
	}

	return dto.SearchResult{
		Title:         str(src.Title),
		URL:           url,
		Description:   str(src.Description),
		Source:        str(src.SourceDomain),
		DatePublished: str(src.DatePublish),
		Image:         str(src.ImageURL),
		Score:         h.Score,
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
