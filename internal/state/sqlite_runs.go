package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CreateRun starts a new run.
func (s *SQLiteStore) CreateRun(ctx context.Context, kind RunKind, from, to string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	run := &Run{
		ID:          generateID(),
		Kind:        kind,
		FromVersion: from,
		ToVersion:   to,
		Status:      RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("kind", string(kind)))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, from_version, to_version, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.FromVersion, run.ToVersion, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// RecordDocument stores the outcome of one document. Recording the same
// path twice for a run replaces the earlier record.
func (s *SQLiteStore) RecordDocument(ctx context.Context, rec DocumentRecord) error {
	if s.db == nil {
		return ErrNotOpened
	}

	var errMsg *string
	if rec.Error != "" {
		errMsg = &rec.Error
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_documents (run_id, path, status, changed, issues, flags, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Path, string(rec.Status), rec.Changed, rec.Issues, rec.Flags, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record document %s: %w", rec.Path, err)
	}
	return nil
}

// CompleteRun marks a run as finished and stores its totals.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, status RunStatus, totals RunTotals) error {
	if s.db == nil {
		return ErrNotOpened
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, documents = ?, failed = ?, changed = ? WHERE id = ?`,
		string(status), time.Now().UTC(), totals.Documents, totals.Failed, totals.Changed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return nil
}

const runColumns = `id, kind, from_version, to_version, status, started_at, completed_at, documents, failed, changed`

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs up to the given limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunDocuments returns the document records of a run ordered by path.
func (s *SQLiteStore) GetRunDocuments(ctx context.Context, id string) ([]DocumentRecord, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, status, changed, issues, flags, error
		 FROM run_documents WHERE run_id = ? ORDER BY path`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []DocumentRecord
	for rows.Next() {
		var (
			rec    DocumentRecord
			status string
			errMsg sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Path, &status, &rec.Changed, &rec.Issues, &rec.Flags, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan run document: %w", err)
		}
		rec.Status = DocumentStatus(status)
		rec.Error = errMsg.String
		docs = append(docs, rec)
	}
	return docs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run         Run
		kind        string
		status      string
		completedAt sql.NullTime
	)
	err := row.Scan(&run.ID, &kind, &run.FromVersion, &run.ToVersion, &status,
		&run.StartedAt, &completedAt, &run.Documents, &run.Failed, &run.Changed)
	if err != nil {
		return nil, err
	}
	run.Kind = RunKind(kind)
	run.Status = RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
