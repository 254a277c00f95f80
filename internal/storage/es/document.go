package es

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/query"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/densevectorsimilarity"
)

const (
	// publishDateFormat accepts the crawler layout and ISO timestamps.
	publishDateFormat = "yyyy-MM-dd HH:mm:ss||strict_date_optional_time"
	rangeDateFormat   = "yyyy-MM-dd HH:mm:ss"
)

// EnsureTemplate installs the template every daily partition is created from.
// Bulk create then creates partitions implicitly.
func (s *Store) EnsureTemplate(ctx context.Context) error {
	name := s.config.prefix() + "-template"
	pattern := document.PartitionPattern(s.config.prefix())

	mappings := buildMapping(s.config.dims())

	res, err := s.client.Indices.PutIndexTemplate(name).
		IndexPatterns(pattern).
		Template(&types.IndexTemplateMapping{
			Mappings: &mappings,
		}).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to put index template %s: %w", name, err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("index template %s was not acknowledged", name)
	}

	slog.Info("Index template ensured", "template", name, "pattern", pattern, "dims", s.config.dims())
	return nil
}

func buildMapping(dims int) types.TypeMapping {
	return types.TypeMapping{
		Properties: map[string]types.Property{
			"url":                   types.NewKeywordProperty(),
			query.FieldTitle:        createTextPropertyWithKeyword(),
			"title_page":            types.NewTextProperty(),
			"title_rss":             types.NewTextProperty(),
			"maintext":              types.NewTextProperty(),
			"description":           types.NewTextProperty(),
			query.FieldAuthors:      types.NewKeywordProperty(),
			"language":              types.NewKeywordProperty(),
			query.FieldSourceDomain: types.NewKeywordProperty(),
			"image_url":             types.NewKeywordProperty(),
			query.FieldDatePublish:  createDateProperty(),
			"date_download":         createDateProperty(),
			"date_modify":           createDateProperty(),
			query.FieldVector:       createVectorProperty(dims),
		},
	}
}

func createTextPropertyWithKeyword() types.Property {
	textProp := types.NewTextProperty()
	textProp.Fields = map[string]types.Property{
		"keyword": types.NewKeywordProperty(),
	}
	return textProp
}

func createDateProperty() types.Property {
	format := publishDateFormat
	dateProp := types.NewDateProperty()
	dateProp.Format = &format
	return dateProp
}

func createVectorProperty(dims int) types.Property {
	index := true
	vecProp := types.NewDenseVectorProperty()
	vecProp.Dims = &dims
	vecProp.Index = &index
	vecProp.Similarity = &densevectorsimilarity.Cosine
	return vecProp
}
