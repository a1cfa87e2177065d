package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohar-ui/ParserZamaActive/internal/corpus"
	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "zamm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func rootFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("corpus-dir", "", "")
	flags.String("state", "", "")
	flags.Int("concurrency", 0, "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("log-level", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "")
	root := filepath.Dir(path)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, DefaultCorpusDir), cfg.CorpusDir)
	assert.Equal(t, filepath.Join(root, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, corpus.DefaultPatterns, cfg.Patterns)
	assert.Equal(t, corpus.DefaultExclude, cfg.Exclude)
	assert.True(t, cfg.Ledger)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultFromVersion, cfg.FromVersion)
	assert.Equal(t, DefaultAttempts, cfg.Retry.Attempts)
	assert.Equal(t, DefaultBaseDelay, cfg.Retry.BaseDelay)
	assert.Equal(t, DefaultServeAddr, cfg.Serve.Addr)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `corpus_dir: workouts
state_path: /tmp/zamm-ledger.db
ledger: false
concurrency: 4
patterns: ["*.json"]
retry:
  attempts: 5
  base_delay: 250ms
equipment:
  overrides:
    "Sled Push": sled
serve:
  addr: ":9000"
`)
	root := filepath.Dir(path)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "workouts"), cfg.CorpusDir)
	assert.Equal(t, "/tmp/zamm-ledger.db", cfg.StatePath, "absolute paths kept")
	assert.False(t, cfg.Ledger)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, []string{"*.json"}, cfg.Patterns)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, ":9000", cfg.Serve.Addr)

	overrides, err := cfg.EquipmentOverrides()
	require.NoError(t, err)
	assert.Equal(t, map[string]equipment.Category{"Sled Push": equipment.Sled}, overrides)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "corpus_dir: from_file\n")
	t.Setenv("ZAMM_CORPUS_DIR", "from_env")

	flags := rootFlags()
	require.NoError(t, flags.Set("corpus-dir", "from_flag"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	want, err := filepath.Abs("from_flag")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.CorpusDir, "flag value should override config file and env var")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "corpus_dir: from_file\nretry:\n  attempts: 2\n")
	t.Setenv("ZAMM_CORPUS_DIR", "from_env")
	t.Setenv("ZAMM_RETRY__ATTEMPTS", "7")
	t.Setenv("ZAMM_PATTERNS", "*.json,*.yaml")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "from_env"), cfg.CorpusDir)
	assert.Equal(t, 7, cfg.Retry.Attempts)
	assert.Equal(t, []string{"*.json", "*.yaml"}, cfg.Patterns)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "concurrency: 2\n")
	t.Setenv("ZAMM_CONCURRENCY", "6")

	cfg, err := LoadConfig(path, rootFlags())
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Concurrency, "env var should be used when flag is not set")
}

func TestLoadConfig_StateFlagMapsToStatePath(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "")

	flags := rootFlags()
	require.NoError(t, flags.Set("state", ":memory:"))
	require.NoError(t, flags.Set("output", "json"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "bad output", content: "output: xml\n", errSubstr: "invalid output mode"},
		{name: "bad log level", content: "log_level: loud\n", errSubstr: "invalid log_level"},
		{name: "negative concurrency", content: "concurrency: -1\n", errSubstr: "concurrency"},
		{name: "zero attempts", content: "retry:\n  attempts: 0\n", errSubstr: "retry.attempts"},
		{name: "bad duration", content: "retry:\n  base_delay: soon\n", errSubstr: "decode"},
		{name: "bad category", content: "equipment:\n  overrides:\n    foo: spaceship\n", errSubstr: "unknown equipment category"},
		{name: "malformed yaml", content: "corpus_dir: [\n", errSubstr: "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestFindProjectRootUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "zamm.yml"), nil, 0600))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Equal(t, root, findProjectRootUpward(nested))
	assert.Empty(t, findProjectRootUpward(t.TempDir()))
}

func TestResolvePathRelativeTo(t *testing.T) {
	assert.Equal(t, filepath.Join("/base", "x"), resolvePathRelativeTo("x", "/base"))
	assert.Equal(t, "/abs", resolvePathRelativeTo("/abs", "/base"))
	assert.Equal(t, ":memory:", resolvePathRelativeTo(":memory:", "/base"))
	assert.Empty(t, resolvePathRelativeTo("", "/base"))
}

func TestValidateCorpusDir(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	cfg.CorpusDir = dir
	assert.NoError(t, cfg.ValidateCorpusDir())

	cfg.CorpusDir = filepath.Join(dir, "missing")
	assert.ErrorContains(t, cfg.ValidateCorpusDir(), "does not exist")

	file := filepath.Join(dir, "f.json")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	cfg.CorpusDir = file
	assert.ErrorContains(t, cfg.ValidateCorpusDir(), "not a directory")
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "discard fallback")

	l := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), l)
	assert.Same(t, l, GetLogger(ctx))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()

	NewLogger(&buf, cfg).Info("hidden")
	assert.Empty(t, buf.String(), "default level is warn")

	cfg.Verbose = true
	NewLogger(&buf, cfg).Debug("shown", "k", 1)
	assert.Contains(t, buf.String(), "msg=shown k=1")
}
