package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BulkCreator writes documents into a single partition with create-only
// semantics. A document whose id already exists in the partition is reported
// as a Failure and does not stop the rest of the batch.
type BulkCreator interface {
	BulkCreate(ctx context.Context, partition string, docs []Document) (*BulkResult, error)
}

type Document struct {
	ID   string
	Body json.RawMessage
}

type BulkResult struct {
	Partition  string
	Successful int
	Failures   []Failure
}

func (r *BulkResult) Failed() int {
	return len(r.Failures)
}

type Failure struct {
	ID     string
	Status int
	Type   string
	Reason string
}

const (
	StatusConflict = 409
	ConflictType   = "version_conflict_engine_exception"
)

type Type string

const (
	ES    Type = "es"
	InMem Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}

// RunRecord summarises one ingestion run for the run ledger.
type RunRecord struct {
	ID              uuid.UUID
	StartedAt       time.Time
	FinishedAt      time.Time
	SpoolDir        string
	NoNewData       bool
	FilesSeen       int
	ParseErrors     int
	Filtered        int
	MissingURL      int
	EmbeddingErrors int
	Indexed         int
	Failed          int
	Partitions      []string
	CleanupPolicy   string
	CleanedUp       bool
	// Error is set when the run was aborted.
	Error string
}

type RunLedger interface {
	Record(ctx context.Context, run RunRecord) error
}
