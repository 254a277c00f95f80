package ingest

import "github.com/DjordjeVuckovic/news-spool/internal/domain/query"

func latestQuery() *query.Hybrid {
	return &query.Hybrid{Size: 100, Sort: &query.Sort{Field: query.FieldDatePublish, Desc: true}}
}
