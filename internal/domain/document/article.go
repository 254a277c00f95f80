package document

import (
	"fmt"
	"strings"
	"time"
)

const (
	// EnglishLanguage is the only language accepted for indexing.
	EnglishLanguage = "en"

	// PublishLayout is the crawler's date_publish format.
	PublishLayout = "2006-01-02 15:04:05"
	// PartitionLayout is the day suffix used in partition names.
	PartitionLayout = "2006-01-02"

	DefaultPartitionPrefix = "news-please"
)

// Article is a single crawled page as written by the crawler into the spool.
// Only url, maintext, authors and language are required for indexing;
// everything else is passed through to the store.
type Article struct {
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	TitlePage    string   `json:"title_page,omitempty"`
	TitleRSS     string   `json:"title_rss,omitempty"`
	Maintext     string   `json:"maintext"`
	Authors      []string `json:"authors"`
	Language     string   `json:"language"`
	Description  string   `json:"description,omitempty"`
	SourceDomain string   `json:"source_domain,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	DatePublish  string   `json:"date_publish,omitempty"`
	DateDownload string   `json:"date_download,omitempty"`
	DateModify   string   `json:"date_modify,omitempty"`
	Filename     string   `json:"filename,omitempty"`
	Localpath    string   `json:"localpath,omitempty"`
}

// IndexedArticle is an Article enriched with the embedding of its maintext.
type IndexedArticle struct {
	Article
	MaintextVector []float32 `json:"maintext_vector"`
}

// Eligible reports whether the article passes the inclusion filter.
// A rejected article is an expected drop, not an error.
func (a Article) Eligible() bool {
	return strings.TrimSpace(a.Maintext) != "" &&
		len(a.Authors) > 0 &&
		a.Language == EnglishLanguage
}

// PublishedAt parses date_publish. ok is false when it is absent.
func (a Article) PublishedAt() (t time.Time, ok bool, err error) {
	if a.DatePublish == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(PublishLayout, a.DatePublish)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date_publish %q: %w", a.DatePublish, err)
	}
	return t, true, nil
}

// PartitionName returns "<prefix>-<YYYY-MM-DD>" for the article's publish day,
// falling back to the day of now when date_publish is missing.
// A malformed date_publish is an error, the article cannot be routed.
func (a Article) PartitionName(prefix string, now time.Time) (string, error) {
	published, ok, err := a.PublishedAt()
	if err != nil {
		return "", err
	}
	if !ok {
		published = now
	}
	return PartitionFor(prefix, published), nil
}

func PartitionFor(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, day.Format(PartitionLayout))
}

// PartitionPattern matches every partition created under prefix.
func PartitionPattern(prefix string) string {
	return prefix + "-*"
}
