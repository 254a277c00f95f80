package collector

import (
	"context"
	"log/slog"

	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/reader"
)

// SpoolCollector collects articles from one spool day directory.
type SpoolCollector struct {
	Reader *reader.SpoolReader
}

func NewSpoolCollector(r *reader.SpoolReader) *SpoolCollector {
	return &SpoolCollector{
		Reader: r,
	}
}

// Collect returns reader.ErrNoSpool when dir does not exist.
func (c *SpoolCollector) Collect(ctx context.Context, dir string) (<-chan Result[document.Article], error) {
	files, err := c.Reader.Read(ctx, dir)
	if err != nil {
		return nil, err
	}

	out := make(chan Result[document.Article])
	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case res, ok := <-files:
				if !ok {
					slog.Debug("Spool reader channel closed, stopping collection", "dir", dir)
					return
				}

				item := Result[document.Article]{Source: res.Path, Value: res.Article, Err: res.Err}
				select {
				case <-ctx.Done():
					return
				case out <- item:
				}
			}
		}
	}()

	return out, nil
}

var _ Collector[document.Article] = (*SpoolCollector)(nil)
