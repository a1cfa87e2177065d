// Package batch runs migration and validation over a corpus of documents.
//
// Documents are independent: each is processed on its own goroutine, and a
// failure on one document is recorded in its Outcome without stopping the
// others.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zohar-ui/ParserZamaActive/internal/corpus"
	"github.com/zohar-ui/ParserZamaActive/internal/state"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
	"github.com/zohar-ui/ParserZamaActive/pkg/validate"
)

// ErrCommentsWouldBeLost is returned for a YAML document that needs rewriting
// but carries comments the encoder cannot keep.
var ErrCommentsWouldBeLost = errors.New("YAML comments would be lost")

// Outcome is the result of processing one document.
type Outcome struct {
	Path string `json:"path"`
	// Err is set when the document could not be read, parsed, migrated or
	// written. Validation failures are not errors.
	Err        error            `json:"-"`
	Error      string           `json:"error,omitempty"`
	Changed    bool             `json:"changed"`
	Written    bool             `json:"written"`
	Migration  *migrate.Report  `json:"migration,omitempty"`
	Validation *validate.Report `json:"validation,omitempty"`
}

// Status maps the outcome onto a ledger document status.
func (o Outcome) Status() state.DocumentStatus {
	switch {
	case o.Err != nil:
		return state.DocumentErrored
	case o.Validation != nil && !o.Validation.OK():
		return state.DocumentFailed
	case o.Validation != nil && o.Validation.Warnings > 0:
		return state.DocumentWarn
	default:
		return state.DocumentOK
	}
}

func (o Outcome) record(runID string) state.DocumentRecord {
	rec := state.DocumentRecord{
		RunID:   runID,
		Path:    o.Path,
		Status:  o.Status(),
		Changed: o.Changed,
		Error:   o.Error,
	}
	if o.Validation != nil {
		rec.Issues = len(o.Validation.Issues)
	}
	if o.Migration != nil {
		rec.Flags = len(o.Migration.Flags)
	}
	return rec
}

// Runner processes documents concurrently.
type Runner struct {
	// Concurrency bounds the number of documents in flight. Zero means
	// GOMAXPROCS.
	Concurrency int
	IO          corpus.IO
	// Ledger records runs when set. Recording failures are logged only.
	Ledger state.Store
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r *Runner) limit() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// MigrateOptions configures a migration batch.
type MigrateOptions struct {
	From   migrate.Version
	To     migrate.Version
	DryRun bool
	// Normalize also rewrites documents whose content is already current
	// but whose encoding differs from the canonical one.
	Normalize bool
	// Validator, when set, validates each migrated document.
	Validator *validate.Validator
}

// Migrate migrates every entry from opts.From to opts.To. A document is
// written back only when a migration step changed it, or, with
// opts.Normalize, when its encoding is not canonical. YAML documents with
// comments are never rewritten; they fail with ErrCommentsWouldBeLost.
func (r *Runner) Migrate(ctx context.Context, engine *migrate.Engine, entries []corpus.Entry, opts MigrateOptions) (*Summary, error) {
	if _, err := engine.Path(opts.From, opts.To); err != nil {
		return nil, err
	}
	log := r.logger().With("from", string(opts.From), "to", string(opts.To))

	return r.run(ctx, state.RunKindMigrate, string(opts.From), string(opts.To), entries, func(ctx context.Context, e corpus.Entry) Outcome {
		out := Outcome{Path: e.Path}

		doc, raw, err := r.IO.Load(ctx, e)
		if err != nil {
			return out.fail(err)
		}
		doc, report, err := engine.Migrate(doc, opts.From, opts.To)
		if err != nil {
			return out.fail(fmt.Errorf("migrate %s: %w", e.Path, err))
		}
		out.Migration = report

		data, err := corpus.Encode(e, doc)
		if err != nil {
			return out.fail(fmt.Errorf("encode %s: %w", e.Path, err))
		}
		out.Changed = report.Changed() || (opts.Normalize && !bytes.Equal(raw, data))

		if opts.Validator != nil {
			out.Validation = opts.Validator.Validate(doc)
		}

		if out.Changed && e.Format == tree.FormatYAML && tree.HasYAMLComments(raw) {
			return out.fail(fmt.Errorf("refusing to rewrite %s: %w", e.Path, ErrCommentsWouldBeLost))
		}

		if out.Changed && !opts.DryRun {
			if err := r.IO.WriteFile(ctx, e.Path, data); err != nil {
				return out.fail(err)
			}
			out.Written = true
		}

		log.Debug("migrated document", "path", e.Path, "changes", report.Total(), "flags", len(report.Flags), "written", out.Written)
		return out
	})
}

// Validate validates every entry.
func (r *Runner) Validate(ctx context.Context, v *validate.Validator, entries []corpus.Entry) (*Summary, error) {
	log := r.logger()

	return r.run(ctx, state.RunKindValidate, "", "", entries, func(ctx context.Context, e corpus.Entry) Outcome {
		out := Outcome{Path: e.Path}

		doc, _, err := r.IO.Load(ctx, e)
		if err != nil {
			return out.fail(err)
		}
		out.Validation = v.Validate(doc)

		log.Debug("validated document", "path", e.Path, "status", string(out.Validation.Status()))
		return out
	})
}

func (o Outcome) fail(err error) Outcome {
	o.Err = err
	o.Error = err.Error()
	return o
}

type processFunc func(ctx context.Context, e corpus.Entry) Outcome

func (r *Runner) run(ctx context.Context, kind state.RunKind, from, to string, entries []corpus.Entry, process processFunc) (*Summary, error) {
	log := r.logger()
	start := time.Now()
	log.Info("starting batch", "kind", string(kind), "documents", len(entries), "concurrency", r.limit())

	runID := r.startRun(ctx, kind, from, to)

	outcomes := make([]Outcome, len(entries))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit())
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := process(gctx, e)
			outcomes[i] = out
			if out.Err != nil {
				log.Warn("document failed", "path", e.Path, "error", out.Err)
			}
			if runID != "" {
				mu.Lock()
				defer mu.Unlock()
				if err := r.Ledger.RecordDocument(gctx, out.record(runID)); err != nil {
					log.Warn("failed to record document", "path", e.Path, "error", err)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	summary := Summarize(kind, outcomes)
	summary.RunID = runID
	summary.Duration = time.Since(start)

	status := state.RunStatusCompleted
	if err != nil {
		status = state.RunStatusFailed
	}
	r.completeRun(runID, status, summary)

	if err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}

	log.Info("batch complete", "kind", string(kind), "documents", summary.Documents,
		"errors", summary.Errors, "changed", summary.Changed, "duration", summary.Duration)
	return summary, nil
}

func (r *Runner) startRun(ctx context.Context, kind state.RunKind, from, to string) string {
	if r.Ledger == nil {
		return ""
	}
	run, err := r.Ledger.CreateRun(ctx, kind, from, to)
	if err != nil {
		r.logger().Warn("failed to create run record", "error", err)
		return ""
	}
	return run.ID
}

func (r *Runner) completeRun(runID string, status state.RunStatus, s *Summary) {
	if runID == "" {
		return
	}
	// The batch context may already be cancelled; the final record still
	// needs to land.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	totals := state.RunTotals{Documents: s.Documents, Failed: s.Errors + s.Failed, Changed: s.Changed}
	if err := r.Ledger.CompleteRun(ctx, runID, status, totals); err != nil {
		r.logger().Warn("failed to complete run record", "run_id", runID, "error", err)
	}
}
