// Package state records the history of corpus runs in SQLite.
//
// Each migrate or validate run gets a row in runs and one row per processed
// document in run_documents. The ledger is advisory: callers log recording
// failures rather than failing the batch.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotOpened is returned when a store is used before Open.
var ErrNotOpened = errors.New("database not opened")

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunKind identifies the command that produced a run.
type RunKind string

// Run kinds.
const (
	RunKindMigrate  RunKind = "migrate"
	RunKindValidate RunKind = "validate"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// DocumentStatus is the outcome of one document within a run.
type DocumentStatus string

// Document statuses.
const (
	DocumentOK      DocumentStatus = "ok"
	DocumentWarn    DocumentStatus = "warn"
	DocumentFailed  DocumentStatus = "failed"
	DocumentErrored DocumentStatus = "error"
)

// Run is one recorded batch.
type Run struct {
	ID          string     `json:"id"`
	Kind        RunKind    `json:"kind"`
	FromVersion string     `json:"from_version,omitempty"`
	ToVersion   string     `json:"to_version,omitempty"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Documents   int        `json:"documents"`
	Failed      int        `json:"failed"`
	Changed     int        `json:"changed"`
}

// RunTotals are the counters stored when a run completes.
type RunTotals struct {
	Documents int
	Failed    int
	Changed   int
}

// DocumentRecord is the outcome of one document in a run.
type DocumentRecord struct {
	RunID   string         `json:"run_id"`
	Path    string         `json:"path"`
	Status  DocumentStatus `json:"status"`
	Changed bool           `json:"changed"`
	Issues  int            `json:"issues"`
	Flags   int            `json:"flags"`
	Error   string         `json:"error,omitempty"`
}

// Store persists run history.
type Store interface {
	CreateRun(ctx context.Context, kind RunKind, from, to string) (*Run, error)
	RecordDocument(ctx context.Context, rec DocumentRecord) error
	CompleteRun(ctx context.Context, id string, status RunStatus, totals RunTotals) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	GetRunDocuments(ctx context.Context, id string) ([]DocumentRecord, error)
	Close() error
}
