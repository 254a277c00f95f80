package ingest

import (
	"time"

	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/google/uuid"
)

type State int32

const (
	StateIdle State = iota
	StateScanning
	StateParsing
	StateFiltering
	StateEmbedding
	StateGrouping
	StateIndexing
	StateCleanup
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateParsing:
		return "parsing"
	case StateFiltering:
		return "filtering"
	case StateEmbedding:
		return "embedding"
	case StateGrouping:
		return "grouping"
	case StateIndexing:
		return "indexing"
	case StateCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// PartitionReport is the outcome of one partition's bulk create.
// Err is set when the whole request failed; Failures holds rejected documents.
type PartitionReport struct {
	Partition  string
	Attempted  int
	Successful int
	Failures   []storage.Failure
	Err        error
}

type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	SpoolDir   string
	NoNewData  bool

	FilesSeen       int
	ParseErrors     int
	Filtered        int
	MissingURL      int
	EmbeddingErrors int

	Partitions  []PartitionReport
	CleanedUp   bool
	RemovedDirs []string

	// Err is the reason the run was aborted, nil for a completed run.
	Err error
}

func (r *Report) Indexed() int {
	var n int
	for _, p := range r.Partitions {
		n += p.Successful
	}
	return n
}

// Failed counts documents that were not written, including those of
// partitions whose request failed outright.
func (r *Report) Failed() int {
	var n int
	for _, p := range r.Partitions {
		if p.Err != nil {
			n += p.Attempted - p.Successful
			continue
		}
		n += len(p.Failures)
	}
	return n
}

func (r *Report) FailedPartitions() []string {
	var out []string
	for _, p := range r.Partitions {
		if p.Err != nil {
			out = append(out, p.Partition)
		}
	}
	return out
}

func (r *Report) Partition(name string) (PartitionReport, bool) {
	for _, p := range r.Partitions {
		if p.Partition == name {
			return p, true
		}
	}
	return PartitionReport{}, false
}

func (r *Report) Record(policy CleanupPolicy) storage.RunRecord {
	names := make([]string, 0, len(r.Partitions))
	for _, p := range r.Partitions {
		names = append(names, p.Partition)
	}
	var abortErr string
	if r.Err != nil {
		abortErr = r.Err.Error()
	}
	return storage.RunRecord{
		ID:              r.RunID,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		SpoolDir:        r.SpoolDir,
		NoNewData:       r.NoNewData,
		FilesSeen:       r.FilesSeen,
		ParseErrors:     r.ParseErrors,
		Filtered:        r.Filtered,
		MissingURL:      r.MissingURL,
		EmbeddingErrors: r.EmbeddingErrors,
		Indexed:         r.Indexed(),
		Failed:          r.Failed(),
		Partitions:      names,
		CleanupPolicy:   string(policy),
		CleanedUp:       r.CleanedUp,
		Error:           abortErr,
	}
}
