package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/pkg/stringsutil"
)

// Indexed field names shared by every store implementation.
const (
	FieldTitle        = "title"
	FieldVector       = "maintext_vector"
	FieldDatePublish  = "date_publish"
	FieldAuthors      = "authors"
	FieldSourceDomain = "source_domain"
)

// DateRange is the relative publish-date window a user may ask for.
type DateRange string

const (
	DateAny     DateRange = ""
	DateToday   DateRange = "today"
	Date24h     DateRange = "24h"
	DateWeek    DateRange = "week"
	DateMonth   DateRange = "month"
	Date3Months DateRange = "3months"
)

var SupportedDateRanges = []DateRange{DateToday, Date24h, DateWeek, DateMonth, Date3Months}

func ParseDateRange(raw string) (DateRange, error) {
	r := DateRange(strings.TrimSpace(raw))
	if r == DateAny || slices.Contains(SupportedDateRanges, r) {
		return r, nil
	}
	return "", apperr.NewValidation(fmt.Sprintf(
		"invalid date filter %q: expected one of today, 24h, week, month, 3months", raw))
}

// Since returns the lower bound of the window relative to now.
// ok is false for DateAny.
func (r DateRange) Since(now time.Time) (since time.Time, ok bool) {
	switch r {
	case DateToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case Date24h:
		return now.Add(-24 * time.Hour), true
	case DateWeek:
		return now.AddDate(0, 0, -7), true
	case DateMonth:
		return now.AddDate(0, 0, -30), true
	case Date3Months:
		return now.AddDate(0, 0, -90), true
	default:
		return time.Time{}, false
	}
}

// NormalizeSources flattens repeated and comma separated values into trimmed,
// non-empty source domains.
func NormalizeSources(values ...string) []string {
	var out []string
	for _, v := range values {
		out = append(out, stringsutil.SplitTrimmed(v, ",")...)
	}
	return out
}

// Filters are the optional structured constraints of a search request.
// All of them are AND-combined.
type Filters struct {
	Date    DateRange
	Authors string
	Sources []string
}

func ParseFilters(date, authors string, sources []string) (Filters, error) {
	dr, err := ParseDateRange(date)
	if err != nil {
		return Filters{}, err
	}
	return Filters{
		Date:    dr,
		Authors: authors,
		Sources: NormalizeSources(sources...),
	}, nil
}

// Translate resolves the filters into store-neutral clauses.
func (f Filters) Translate(now time.Time) []Filter {
	var out []Filter
	if since, ok := f.Date.Since(now); ok {
		out = append(out, DateFilter{Field: FieldDatePublish, Since: since})
	}
	if f.Authors != "" {
		out = append(out, TermFilter{Field: FieldAuthors, Value: f.Authors})
	}
	if len(f.Sources) > 0 {
		out = append(out, TermsFilter{Field: FieldSourceDomain, Values: f.Sources})
	}
	return out
}

// Filter is one structured clause. Matches evaluates it against an article
// so stores without a native query language can apply it.
type Filter interface {
	Matches(a document.Article) bool
}

// DateFilter admits articles published at or after Since.
type DateFilter struct {
	Field string
	Since time.Time
}

func (f DateFilter) Matches(a document.Article) bool {
	published, ok, err := a.PublishedAt()
	if err != nil || !ok {
		return false
	}
	return !published.Before(f.Since)
}

// TermFilter requires exact, non-analyzed equality on a field.
type TermFilter struct {
	Field string
	Value string
}

func (f TermFilter) Matches(a document.Article) bool {
	return slices.Contains(fieldValues(a, f.Field), f.Value)
}

// TermsFilter requires the field to equal at least one of Values.
type TermsFilter struct {
	Field  string
	Values []string
}

func (f TermsFilter) Matches(a document.Article) bool {
	for _, v := range fieldValues(a, f.Field) {
		if slices.Contains(f.Values, v) {
			return true
		}
	}
	return false
}

func MatchesAll(filters []Filter, a document.Article) bool {
	for _, f := range filters {
		if !f.Matches(a) {
			return false
		}
	}
	return true
}

func fieldValues(a document.Article, field string) []string {
	switch field {
	case FieldAuthors:
		return a.Authors
	case FieldSourceDomain:
		return []string{a.SourceDomain}
	case FieldTitle:
		return []string{a.Title}
	case FieldDatePublish:
		return []string{a.DatePublish}
	case "url":
		return []string{a.URL}
	case "language":
		return []string{a.Language}
	default:
		return nil
	}
}
