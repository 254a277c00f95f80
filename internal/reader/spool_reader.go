package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
)

const DefaultArticleExt = ".json"

// ErrNoSpool is returned when the day directory does not exist yet.
var ErrNoSpool = errors.New("spool directory does not exist")

// DayDir returns <root>/<YYYY>/<MM>/<DD> for day.
func DayDir(root string, day time.Time) string {
	return filepath.Join(root, day.Format("2006"), day.Format("01"), day.Format("02"))
}

type FileResult struct {
	Path    string
	Article document.Article
	// Err is an *apperr.ParseError for unreadable or malformed files.
	Err error
}

// SpoolReader walks a spool directory tree and decodes every article file.
type SpoolReader struct {
	ext string
}

func NewSpoolReader(ext string) *SpoolReader {
	if ext == "" {
		ext = DefaultArticleExt
	}
	return &SpoolReader{ext: ext}
}

// Read streams decoded articles found under dir in lexical path order.
// The channel is closed once the walk completes or ctx is cancelled.
func (r *SpoolReader) Read(ctx context.Context, dir string) (<-chan FileResult, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSpool, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat spool directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spool path %s is not a directory", dir)
	}

	out := make(chan FileResult)
	go func() {
		defer close(out)

		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				return r.send(ctx, out, FileResult{Path: path, Err: &apperr.ParseError{Path: path, Err: walkErr}})
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), r.ext) {
				return nil
			}

			article, err := ReadArticleFile(path)
			return r.send(ctx, out, FileResult{Path: path, Article: article, Err: err})
		})
	}()

	return out, nil
}

func (r *SpoolReader) send(ctx context.Context, out chan<- FileResult, res FileResult) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- res:
		return nil
	}
}

func ReadArticleFile(path string) (document.Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return document.Article{}, &apperr.ParseError{Path: path, Err: err}
	}
	article, err := DecodeArticle(bytes.NewReader(raw))
	if err != nil {
		return document.Article{}, &apperr.ParseError{Path: path, Err: err}
	}
	return article, nil
}

// DecodeArticle decodes exactly one JSON object into an Article. Field types
// are enforced: a string where authors expects a list is an error.
// Unknown crawler fields are ignored.
func DecodeArticle(r io.Reader) (document.Article, error) {
	dec := json.NewDecoder(r)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return document.Article{}, fmt.Errorf("invalid article json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return document.Article{}, errors.New("invalid article json: trailing data after object")
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return document.Article{}, errors.New("invalid article json: expected an object")
	}

	var article document.Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return document.Article{}, fmt.Errorf("invalid article json: %w", err)
	}

	if _, _, err := article.PublishedAt(); err != nil {
		return document.Article{}, err
	}

	return article, nil
}
