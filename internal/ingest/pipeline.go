package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/collector"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/embedding"
	"github.com/DjordjeVuckovic/news-spool/internal/reader"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const (
	DefaultEmbedBatchSize = 16
	ledgerTimeout         = 10 * time.Second
)

type DocumentEmbedder interface {
	EmbedDocument(ctx context.Context, text string) (*embedding.Vec, error)
	EmbedDocuments(ctx context.Context, texts []string) ([]*embedding.Vec, error)
}

// Pipeline moves today's spool into the document store: it walks the day
// directory, filters and embeds articles, groups them per daily partition,
// bulk creates every partition and finally cleans the spool.
type Pipeline struct {
	collector collector.Collector[document.Article]
	embedder  DocumentEmbedder
	store     storage.BulkCreator
	ledger    storage.RunLedger

	spoolRoot string
	prefix    string
	workers   int
	batchSize int
	cleanup   CleanupPolicy
	now       func() time.Time

	state atomic.Int32
}

type PipelineOption func(p *Pipeline)

func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithEmbedBatchSize sets how many articles are embedded per backend call.
func WithEmbedBatchSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.batchSize = n
	}
}

func WithCleanupPolicy(policy CleanupPolicy) PipelineOption {
	return func(p *Pipeline) {
		p.cleanup = policy
	}
}

func WithIndexPrefix(prefix string) PipelineOption {
	return func(p *Pipeline) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

// WithLedger records a summary of every run.
func WithLedger(l storage.RunLedger) PipelineOption {
	return func(p *Pipeline) {
		p.ledger = l
	}
}

func NewPipeline(
	c collector.Collector[document.Article],
	embedder DocumentEmbedder,
	store storage.BulkCreator,
	spoolRoot string,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		collector: c,
		embedder:  embedder,
		store:     store,
		spoolRoot: spoolRoot,
		prefix:    document.DefaultPartitionPrefix,
		workers:   DefaultWorkers,
		batchSize: DefaultEmbedBatchSize,
		cleanup:   CleanupAlways,
		now:       func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline) State() State {
	return State(p.state.Load())
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
	slog.Debug("Ingest state changed", "state", s)
}

// Run executes one ingestion pass over today's spool directory.
// Per-article and per-partition failures are counted in the report and never
// returned. A returned error means the run itself could not proceed, for
// example cancellation or an unreachable embedding backend. The spool is then
// left in place and the report holds whatever was done until that point.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	now := p.now()
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: now,
		SpoolDir:  reader.DayDir(p.spoolRoot, now),
	}
	defer p.setState(StateIdle)

	slog.Info("Starting ingestion run",
		"run_id", report.RunID,
		"spool_dir", report.SpoolDir,
		"cleanup_policy", p.cleanup,
		"workers", p.workers)

	p.setState(StateScanning)
	results, err := p.collector.Collect(ctx, report.SpoolDir)
	if errors.Is(err, reader.ErrNoSpool) {
		slog.Info("No new data found for today", "spool_dir", report.SpoolDir)
		report.NoNewData = true
		p.finish(ctx, report)
		return report, nil
	}
	if err != nil {
		return p.abort(ctx, report, fmt.Errorf("failed to scan spool: %w", err))
	}

	groups, err := p.group(ctx, results, report, now)
	if err != nil {
		return p.abort(ctx, report, err)
	}

	p.setState(StateIndexing)
	if err := p.index(ctx, groups, report); err != nil {
		return p.abort(ctx, report, err)
	}

	p.setState(StateCleanup)
	if p.cleanup.ShouldClean(report) {
		report.RemovedDirs = p.cleanSpool()
		report.CleanedUp = true
	} else {
		slog.Warn("Keeping spool after failed partitions",
			"cleanup_policy", p.cleanup,
			"failed_partitions", report.FailedPartitions())
	}

	p.finish(ctx, report)
	return report, nil
}

type pendingArticle struct {
	source    string
	article   document.Article
	partition string
}

func (p *Pipeline) group(
	ctx context.Context,
	results <-chan collector.Result[document.Article],
	report *Report,
	now time.Time,
) (map[string][]storage.Document, error) {
	groups := make(map[string][]storage.Document)
	batch := make([]pendingArticle, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		p.setState(StateEmbedding)
		err := p.embed(ctx, batch, groups, report)
		batch = batch[:0]
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res, ok := <-results:
			if !ok {
				// The collector also closes the channel on cancellation.
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if err := flush(); err != nil {
					return nil, err
				}
				return groups, nil
			}
			report.FilesSeen++

			p.setState(StateParsing)
			if res.Err != nil {
				slog.Error("Failed to read article", "path", res.Source, "error", res.Err)
				report.ParseErrors++
				continue
			}
			article := res.Value

			p.setState(StateFiltering)
			if !article.Eligible() {
				report.Filtered++
				continue
			}
			partition, err := article.PartitionName(p.prefix, now)
			if err != nil {
				slog.Error("Failed to route article", "path", res.Source, "error", err)
				report.ParseErrors++
				continue
			}
			if article.URL == "" {
				report.MissingURL++
				continue
			}

			batch = append(batch, pendingArticle{source: res.Source, article: article, partition: partition})
			if len(batch) >= p.batchSize {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}
}

// embed embeds batch with one backend call and groups the results. When the
// batch call fails for a reason other than an outage, every article is retried
// alone so a single bad text only skips itself.
func (p *Pipeline) embed(ctx context.Context, batch []pendingArticle, groups map[string][]storage.Document, report *Report) error {
	texts := make([]string, len(batch))
	for i, item := range batch {
		texts[i] = item.article.Maintext
	}

	vecs, err := p.embedder.EmbedDocuments(ctx, texts)
	if err == nil && len(vecs) != len(batch) {
		err = fmt.Errorf("%w: expected %d vectors, got %d", apperr.ErrEmbedding, len(batch), len(vecs))
	}
	if err == nil {
		p.setState(StateGrouping)
		for i, item := range batch {
			p.add(groups, report, item, vecs[i])
		}
		return nil
	}
	if fatal := embeddingFatal(ctx, err); fatal != nil {
		return fatal
	}

	slog.Warn("Batch embedding failed, embedding articles one by one", "count", len(batch), "error", err)
	for _, item := range batch {
		vec, err := p.embedder.EmbedDocument(ctx, item.article.Maintext)
		if err != nil {
			if fatal := embeddingFatal(ctx, err); fatal != nil {
				return fatal
			}
			slog.Error("Embedding generation failed", "path", item.source, "error", err)
			report.EmbeddingErrors++
			continue
		}
		p.add(groups, report, item, vec)
	}
	return nil
}

func (p *Pipeline) add(groups map[string][]storage.Document, report *Report, item pendingArticle, vec *embedding.Vec) {
	body, err := json.Marshal(document.IndexedArticle{Article: item.article, MaintextVector: vec.Embedding})
	if err != nil {
		slog.Error("Failed to encode article", "path", item.source, "error", err)
		report.EmbeddingErrors++
		return
	}
	groups[item.partition] = append(groups[item.partition], storage.Document{ID: item.article.URL, Body: body})
}

// embeddingFatal returns the error that must abort the run, or nil when err
// only concerns the texts it was raised for.
func embeddingFatal(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, apperr.ErrEmbeddingUnavailable) {
		return fmt.Errorf("aborting run: %w", err)
	}
	return nil
}

func (p *Pipeline) index(ctx context.Context, groups map[string][]storage.Document, report *Report) error {
	partitions := make([]string, 0, len(groups))
	for name := range groups {
		partitions = append(partitions, name)
	}
	sort.Strings(partitions)

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return fmt.Errorf("failed to create bulk worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	reports := make([]PartitionReport, len(partitions))

	for i, name := range partitions {
		docs := groups[name]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			pr := p.indexPartition(ctx, name, docs)
			mu.Lock()
			reports[i] = pr
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			reports[i] = PartitionReport{Partition: name, Attempted: len(docs), Err: submitErr}
		}
	}
	wg.Wait()

	report.Partitions = reports
	return nil
}

func (p *Pipeline) indexPartition(ctx context.Context, name string, docs []storage.Document) PartitionReport {
	pr := PartitionReport{Partition: name, Attempted: len(docs)}

	res, err := p.store.BulkCreate(ctx, name, docs)
	if res != nil {
		pr.Successful = res.Successful
		pr.Failures = res.Failures
	}
	if err != nil {
		slog.Error("Bulk indexing failed", "partition", name, "error", err)
		pr.Err = err
		return pr
	}

	slog.Info("Partition indexed",
		"partition", name,
		"successful", pr.Successful,
		"failed", len(pr.Failures),
		"total", pr.Attempted)
	return pr
}

// cleanSpool removes every immediate subdirectory of the spool root, not only
// today's directory.
func (p *Pipeline) cleanSpool() []string {
	entries, err := os.ReadDir(p.spoolRoot)
	if err != nil {
		slog.Error("Failed to list spool root", "root", p.spoolRoot, "error", err)
		return nil
	}

	var removed []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(p.spoolRoot, e.Name())
		if err := os.RemoveAll(path); err != nil {
			slog.Error("Failed to remove spool directory", "path", path, "error", err)
			continue
		}
		slog.Info("Removed spool directory", "path", path)
		removed = append(removed, path)
	}
	return removed
}

// abort ends the run without cleanup. The run is still recorded.
func (p *Pipeline) abort(ctx context.Context, report *Report, err error) (*Report, error) {
	report.FinishedAt = p.now()
	report.Err = err
	slog.Error("Ingestion run aborted", "run_id", report.RunID, "error", err)

	p.record(context.WithoutCancel(ctx), report)
	return report, err
}

func (p *Pipeline) finish(ctx context.Context, report *Report) {
	report.FinishedAt = p.now()

	slog.Info("Ingestion run completed",
		"run_id", report.RunID,
		"no_new_data", report.NoNewData,
		"files", report.FilesSeen,
		"parse_errors", report.ParseErrors,
		"filtered", report.Filtered,
		"missing_url", report.MissingURL,
		"embedding_errors", report.EmbeddingErrors,
		"indexed", report.Indexed(),
		"failed", report.Failed(),
		"partitions", len(report.Partitions),
		"cleaned_up", report.CleanedUp,
		"duration", report.FinishedAt.Sub(report.StartedAt))

	p.record(ctx, report)
}

func (p *Pipeline) record(ctx context.Context, report *Report) {
	if p.ledger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, ledgerTimeout)
	defer cancel()
	if err := p.ledger.Record(ctx, report.Record(p.cleanup)); err != nil {
		slog.Error("Failed to record ingestion run", "run_id", report.RunID, "error", err)
	}
}
