package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohar-ui/ParserZamaActive/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(context.Background(), ":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(ctx, path))
	assert.Equal(t, path, store.Path())

	version, err := store.GetMigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "closing twice is harmless")

	// Reopening applies no further migrations and keeps data.
	require.NoError(t, store.Open(ctx, path))
	defer func() { _ = store.Close() }()
	_, err = store.ListRuns(ctx, 10)
	require.NoError(t, err)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(nil)

	_, err := store.CreateRun(ctx, RunKindMigrate, "", "")
	assert.ErrorIs(t, err, ErrNotOpened)
	assert.ErrorIs(t, store.RecordDocument(ctx, DocumentRecord{}), ErrNotOpened)
	assert.ErrorIs(t, store.CompleteRun(ctx, "x", RunStatusCompleted, RunTotals{}), ErrNotOpened)
	_, err = store.ListRuns(ctx, 1)
	assert.ErrorIs(t, err, ErrNotOpened)
	_, err = store.GetRunDocuments(ctx, "x")
	assert.ErrorIs(t, err, ErrNotOpened)
	assert.ErrorIs(t, store.Migrate(ctx), ErrNotOpened)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	run, err := store.CreateRun(ctx, RunKindMigrate, "2.0", "3.2")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunKindMigrate, got.Kind)
	assert.Equal(t, "2.0", got.FromVersion)
	assert.Equal(t, "3.2", got.ToVersion)
	assert.Nil(t, got.CompletedAt)

	records := []DocumentRecord{
		{RunID: run.ID, Path: "b.json", Status: DocumentOK, Changed: true, Flags: 2},
		{RunID: run.ID, Path: "a.json", Status: DocumentErrored, Error: "parse document: unexpected EOF"},
	}
	for _, rec := range records {
		require.NoError(t, store.RecordDocument(ctx, rec))
	}

	require.NoError(t, store.CompleteRun(ctx, run.ID, RunStatusCompleted, RunTotals{Documents: 2, Failed: 1, Changed: 1}))

	got, err = store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, 2, got.Documents)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Changed)

	docs, err := store.GetRunDocuments(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.json", docs[0].Path)
	assert.Equal(t, DocumentErrored, docs[0].Status)
	assert.Equal(t, "parse document: unexpected EOF", docs[0].Error)
	assert.Equal(t, "b.json", docs[1].Path)
	assert.True(t, docs[1].Changed)
	assert.Equal(t, 2, docs[1].Flags)
	assert.Empty(t, docs[1].Error)
}

func TestSQLiteStore_RecordDocumentReplaces(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	run, err := store.CreateRun(ctx, RunKindValidate, "", "")
	require.NoError(t, err)

	require.NoError(t, store.RecordDocument(ctx, DocumentRecord{RunID: run.ID, Path: "a.json", Status: DocumentFailed, Issues: 3}))
	require.NoError(t, store.RecordDocument(ctx, DocumentRecord{RunID: run.ID, Path: "a.json", Status: DocumentOK}))

	docs, err := store.GetRunDocuments(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, DocumentOK, docs[0].Status)
	assert.Zero(t, docs[0].Issues)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	var ids []string
	for range 3 {
		run, err := store.CreateRun(ctx, RunKindValidate, "", "")
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestSQLiteStore_UnknownRun(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = store.CompleteRun(ctx, "missing", RunStatusFailed, RunTotals{})
	assert.ErrorIs(t, err, ErrRunNotFound)

	docs, err := store.GetRunDocuments(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSQLiteStore_DriverErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "create run",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO runs").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.CreateRun(context.Background(), RunKindMigrate, "2.0", "3.2")
				return err
			},
			errMsg: "failed to create run",
		},
		{
			name: "record document",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT OR REPLACE INTO run_documents").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				return s.RecordDocument(context.Background(), DocumentRecord{RunID: "r", Path: "a.json"})
			},
			errMsg: "failed to record document a.json",
		},
		{
			name: "complete run",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE runs").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				return s.CompleteRun(context.Background(), "r", RunStatusCompleted, RunTotals{})
			},
			errMsg: "failed to complete run",
		},
		{
			name: "list runs",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM runs").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.ListRuns(context.Background(), 5)
				return err
			},
			errMsg: "failed to list runs",
		},
		{
			name: "run documents",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM run_documents").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetRunDocuments(context.Background(), "r")
				return err
			},
			errMsg: "failed to get run documents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			store := &SQLiteStore{db: db, logger: testutil.NewTestLogger(t)}

			err = tt.call(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.ErrorIs(t, err, assert.AnError)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
