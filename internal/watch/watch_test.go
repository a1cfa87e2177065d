package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohar-ui/ParserZamaActive/internal/corpus"
	"github.com/zohar-ui/ParserZamaActive/internal/testutil"
)

// touchUntil rewrites the given files until done is closed, so the test does
// not depend on when the watcher finishes registering directories.
func touchUntil(t *testing.T, done <-chan struct{}, paths ...string) {
	t.Helper()
	go func() {
		ticker := time.NewTicker(30 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				for _, p := range paths {
					_ = os.WriteFile(p, []byte(`{"workout_date": "d"}`), 0o644)
				}
			}
		}
	}()
}

func TestWatcher_ReportsMatchingDocuments(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "week1")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []corpus.Entry, 16)
	w := &Watcher{
		Dir:      dir,
		Exclude:  corpus.DefaultExclude,
		Debounce: 20 * time.Millisecond,
		Logger:   testutil.NewTestLogger(t),
	}
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []corpus.Entry) { got <- changed })
	}()

	stop := make(chan struct{})
	defer close(stop)
	touchUntil(t, stop,
		filepath.Join(sub, "w1.json"),
		filepath.Join(dir, "AUDIT_w1.json"),
		filepath.Join(dir, "notes.txt"),
	)

	select {
	case changed := <-got:
		require.NotEmpty(t, changed)
		for _, e := range changed {
			assert.Equal(t, filepath.Join(sub, "w1.json"), e.Path, "only matching documents are reported")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := &Watcher{Dir: filepath.Join(t.TempDir(), "missing")}
	err := w.Run(context.Background(), func(context.Context, []corpus.Entry) {})
	assert.ErrorContains(t, err, "failed to watch")
}
