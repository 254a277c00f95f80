package es

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/query"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

// Search runs q over every index matching pattern in a single request.
func (s *Store) Search(ctx context.Context, pattern string, q *query.Hybrid) ([]storage.Hit, error) {
	req := buildRequest(q)

	slog.Info("Executing es hybrid search",
		"pattern", pattern,
		"query", q.Text,
		"filters", len(q.Filters),
		"knn", q.Knn != nil,
		"size", q.Size)

	res, err := s.client.Search().
		Index(pattern).
		Request(req).
		Do(ctx)
	if err != nil {
		slog.Error("Elasticsearch query failed", "error", err, "pattern", pattern, "query", q.Text)
		return nil, fmt.Errorf("%w: %w", apperr.ErrStoreQuery, err)
	}

	hits := mapHits(res.Hits.Hits)

	slog.Info("Es search results fetched",
		"total_matches", totalMatches(res.Hits.Total),
		"returned_count", len(hits))

	return hits, nil
}

// buildRequest translates the store-neutral query into the search body.
// The lexical match and the knn clause are both restricted by the same
// filter clauses; Elasticsearch sums their boosted scores.
func buildRequest(q *query.Hybrid) *search.Request {
	size := q.Size
	filters := buildFilters(q.Filters)

	req := &search.Request{Size: &size}

	switch {
	case q.Lexical != nil:
		boost := q.Lexical.Boost
		req.Query = &types.Query{
			Bool: &types.BoolQuery{
				Must: []types.Query{{
					Match: map[string]types.MatchQuery{
						q.Lexical.Field: {Query: q.Lexical.Query, Boost: &boost},
					},
				}},
				Filter: filters,
			},
		}
	case len(filters) > 0:
		req.Query = &types.Query{Bool: &types.BoolQuery{Filter: filters}}
	default:
		req.Query = &types.Query{MatchAll: types.NewMatchAllQuery()}
	}

	if q.Knn != nil {
		k := q.Knn.K
		candidates := q.Knn.NumCandidates
		boost := q.Knn.Boost
		req.Knn = []types.KnnSearch{{
			Field:         q.Knn.Field,
			QueryVector:   q.Knn.Vector,
			K:             &k,
			NumCandidates: &candidates,
			Boost:         &boost,
			Filter:        filters,
		}}
	}

	if q.Sort != nil {
		order := sortorder.Asc
		if q.Sort.Desc {
			order = sortorder.Desc
		}
		req.Sort = []types.SortCombinations{
			&types.SortOptions{
				SortOptions: map[string]types.FieldSort{
					q.Sort.Field: {Order: &order},
				},
			},
		}
	}

	return req
}

func buildFilters(filters []query.Filter) []types.Query {
	out := make([]types.Query, 0, len(filters))

	for _, f := range filters {
		switch f := f.(type) {
		case query.DateFilter:
			gte := f.Since.UTC().Format(document.PublishLayout)
			format := rangeDateFormat
			out = append(out, types.Query{
				Range: map[string]types.RangeQuery{
					f.Field: types.DateRangeQuery{Gte: &gte, Format: &format},
				},
			})
		case query.TermFilter:
			out = append(out, types.Query{
				Term: map[string]types.TermQuery{
					f.Field: {Value: f.Value},
				},
			})
		case query.TermsFilter:
			values := make([]types.FieldValue, 0, len(f.Values))
			for _, v := range f.Values {
				values = append(values, v)
			}
			out = append(out, types.Query{
				Terms: &types.TermsQuery{
					TermsQuery: map[string]types.TermsQueryField{f.Field: values},
				},
			})
		default:
			slog.Warn("Unsupported filter type, skipping", "filter", fmt.Sprintf("%T", f))
		}
	}

	return out
}

func mapHits(hits []types.Hit) []storage.Hit {
	out := make([]storage.Hit, 0, len(hits))

	for _, hit := range hits {
		h := storage.Hit{
			Index:  hit.Index_,
			Source: hit.Source_,
		}
		if hit.Id_ != nil {
			h.ID = *hit.Id_
		}
		// Sorted requests come back without a score.
		if hit.Score_ != nil {
			h.Score = float64(*hit.Score_)
		}
		out = append(out, h)
	}

	return out
}

func totalMatches(total *types.TotalHits) int64 {
	if total == nil {
		return 0
	}
	return total.Value
}
