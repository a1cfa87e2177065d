// Package corpus finds workout documents on disk and reads and writes them
// with the codec matching their extension.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// DefaultPatterns match every document format the codecs understand.
var DefaultPatterns = []string{"*.json", "*.yaml", "*.yml"}

// DefaultExclude drops audit, review and manual working files.
var DefaultExclude = []string{"AUDIT", "REVIEW", "MANUAL"}

// ErrUnsupportedFormat is returned for files without a known extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Entry is one discovered document.
type Entry struct {
	Path   string
	Format tree.Format
}

// FormatFor returns the codec for a file name.
func FormatFor(path string) (tree.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return tree.FormatJSON, nil
	case ".yaml", ".yml":
		return tree.FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Discover walks dir and returns documents whose base name matches one of
// patterns and contains none of the exclude substrings. Hidden directories
// are skipped. Results are sorted by path.
func Discover(dir string, patterns, exclude []string) ([]Entry, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}

	var entries []Entry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchAny(patterns, name) || excluded(exclude, name) {
			return nil
		}
		format, err := FormatFor(name)
		if err != nil {
			return nil
		}
		entries = append(entries, Entry{Path: path, Format: format})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return entries, nil
}

// Resolve expands explicit arguments: directories are discovered, files are
// taken as given.
func Resolve(args, patterns, exclude []string) ([]Entry, error) {
	var entries []Entry
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := Discover(arg, patterns, exclude)
			if err != nil {
				return nil, err
			}
			entries = append(entries, found...)
			continue
		}
		format, err := FormatFor(arg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Path: arg, Format: format})
	}
	return entries, nil
}

// Match reports whether a file would be picked up by Discover with the same
// patterns and exclusions.
func Match(path string, patterns, exclude []string) (Entry, bool) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	name := filepath.Base(path)
	if !matchAny(patterns, name) || excluded(exclude, name) {
		return Entry{}, false
	}
	format, err := FormatFor(name)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Path: path, Format: format}, true
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func excluded(exclude []string, name string) bool {
	for _, ex := range exclude {
		if ex != "" && strings.Contains(name, ex) {
			return true
		}
	}
	return false
}

// Retry bounds retries of storage I/O.
type Retry struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetry is used when a zero Retry is given.
var DefaultRetry = Retry{Attempts: 3, BaseDelay: 50 * time.Millisecond}

func (r Retry) backoff() retry.Backoff {
	if r.Attempts <= 0 {
		r = DefaultRetry
	}
	if r.BaseDelay <= 0 {
		r.BaseDelay = DefaultRetry.BaseDelay
	}
	b := retry.NewExponential(r.BaseDelay)
	b = retry.WithJitterPercent(10, b)
	return retry.WithMaxRetries(uint64(r.Attempts-1), b)
}

// IO reads and writes documents, retrying transient storage errors.
type IO struct {
	Retry Retry
}

// ReadFile returns the raw bytes of path. Missing files are not retried.
func (c IO) ReadFile(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, c.Retry.backoff(), func(ctx context.Context) error {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				return err
			}
			return retry.RetryableError(err)
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Load reads and decodes a document.
func (c IO) Load(ctx context.Context, e Entry) (tree.Value, []byte, error) {
	data, err := c.ReadFile(ctx, e.Path)
	if err != nil {
		return nil, nil, err
	}
	v, err := tree.Decode(e.Format, data)
	if err != nil {
		return nil, data, fmt.Errorf("parse %s: %w", e.Path, err)
	}
	return v, data, nil
}

// WriteFile replaces path atomically: the data goes to a temporary file in
// the same directory which is then renamed over the target.
func (c IO) WriteFile(ctx context.Context, path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	err := retry.Do(ctx, c.Retry.backoff(), func(ctx context.Context) error {
		if err := writeAtomic(path, data, mode); err != nil {
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		return err
	}
	return os.Rename(name, path)
}

// Encode marshals v in the entry's format.
func Encode(e Entry, v tree.Value) ([]byte, error) {
	return tree.Marshal(e.Format, v)
}
