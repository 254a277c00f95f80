package in_mem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"path"
	"sort"
	"sync"

	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/query"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/DjordjeVuckovic/news-spool/internal/token"
)

type entry struct {
	id      string
	body    json.RawMessage
	article document.IndexedArticle
}

// Store keeps partitions in memory with the same create-only and hybrid
// scoring behavior as the Elasticsearch store.
type Store struct {
	storageLock sync.RWMutex
	partitions  map[string]map[string]entry
}

func NewStore() *Store {
	return &Store{
		partitions: make(map[string]map[string]entry),
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) BulkCreate(ctx context.Context, partition string, docs []storage.Document) (*storage.BulkResult, error) {
	result := &storage.BulkResult{Partition: partition}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		p = make(map[string]entry)
		s.partitions[partition] = p
	}

	for _, doc := range docs {
		if _, exists := p[doc.ID]; exists {
			result.Failures = append(result.Failures, storage.Failure{
				ID:     doc.ID,
				Status: storage.StatusConflict,
				Type:   storage.ConflictType,
				Reason: fmt.Sprintf("[%s]: version conflict, document already exists", doc.ID),
			})
			continue
		}

		var article document.IndexedArticle
		if err := json.Unmarshal(doc.Body, &article); err != nil {
			result.Failures = append(result.Failures, storage.Failure{
				ID:     doc.ID,
				Status: 400,
				Type:   "document_parsing_exception",
				Reason: err.Error(),
			})
			continue
		}

		p[doc.ID] = entry{id: doc.ID, body: doc.Body, article: article}
		result.Successful++
	}

	slog.Info("Bulk create completed",
		"partition", partition,
		"successful", result.Successful,
		"failed", result.Failed(),
		"total", len(docs))

	return result, nil
}

type scored struct {
	index string
	entry entry
	score float64
}

func (s *Store) Search(ctx context.Context, pattern string, q *query.Hybrid) ([]storage.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := s.filtered(pattern, q.Filters)

	var hits []scored
	if q.Lexical == nil && q.Knn == nil {
		hits = candidates
	} else {
		hits = blend(candidates, q)
	}

	if q.Sort != nil {
		sortByField(hits, q.Sort)
	} else {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	}

	if q.Size > 0 && len(hits) > q.Size {
		hits = hits[:q.Size]
	}

	out := make([]storage.Hit, 0, len(hits))
	for _, h := range hits {
		out = append(out, storage.Hit{
			Index:  h.index,
			ID:     h.entry.id,
			Source: h.entry.body,
			Score:  h.score,
		})
	}
	return out, nil
}

func (s *Store) filtered(pattern string, filters []query.Filter) []scored {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	var out []scored
	for name, p := range s.partitions {
		if ok, _ := path.Match(pattern, name); !ok {
			continue
		}
		for _, e := range p {
			if query.MatchesAll(filters, e.article.Article) {
				out = append(out, scored{index: name, entry: e})
			}
		}
	}
	// Stable order for equal scores.
	sort.Slice(out, func(i, j int) bool {
		if out[i].index != out[j].index {
			return out[i].index < out[j].index
		}
		return out[i].entry.id < out[j].entry.id
	})
	return out
}

// blend sums the boosted lexical score and the boosted similarity of the
// kNN top k. A candidate matching neither branch is not a hit.
func blend(candidates []scored, q *query.Hybrid) []scored {
	scores := make(map[int]float64)

	if q.Lexical != nil {
		terms := tokenize(q.Lexical.Query)
		for i, c := range candidates {
			if ls := lexicalScore(terms, tokenize(c.entry.article.Title)); ls > 0 {
				scores[i] += float64(q.Lexical.Boost) * ls
			}
		}
	}

	if q.Knn != nil {
		type nn struct {
			i   int
			sim float64
		}
		var neighbours []nn
		for i, c := range candidates {
			if len(c.entry.article.MaintextVector) != len(q.Knn.Vector) {
				continue
			}
			neighbours = append(neighbours, nn{i: i, sim: cosineScore(q.Knn.Vector, c.entry.article.MaintextVector)})
		}
		sort.SliceStable(neighbours, func(a, b int) bool { return neighbours[a].sim > neighbours[b].sim })
		if len(neighbours) > q.Knn.K {
			neighbours = neighbours[:q.Knn.K]
		}
		for _, n := range neighbours {
			scores[n.i] += float64(q.Knn.Boost) * n.sim
		}
	}

	out := make([]scored, 0, len(scores))
	for i, c := range candidates {
		if sc, ok := scores[i]; ok {
			c.score = sc
			out = append(out, c)
		}
	}
	return out
}

func tokenize(s string) []string {
	return token.Terms(token.NewWordTokenizer(), s)
}

// lexicalScore is the share of query terms found in the title.
func lexicalScore(queryTerms, titleTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	present := make(map[string]struct{}, len(titleTerms))
	for _, t := range titleTerms {
		present[t] = struct{}{}
	}
	var matched int
	for _, t := range queryTerms {
		if _, ok := present[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

// cosineScore maps cosine similarity into [0, 1] like Elasticsearch does.
func cosineScore(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return (1 + dot/(math.Sqrt(na)*math.Sqrt(nb))) / 2
}

func sortByField(hits []scored, s *query.Sort) {
	key := func(h scored) string {
		if s.Field == query.FieldDatePublish {
			return h.entry.article.DatePublish
		}
		return h.entry.article.URL
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if s.Desc {
			return key(hits[i]) > key(hits[j])
		}
		return key(hits[i]) < key(hits[j])
	})
}
