// Package config provides configuration management for the zamm CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	CorpusDir    string   `koanf:"corpus_dir"`
	Patterns     []string `koanf:"patterns"`
	Exclude      []string `koanf:"exclude"`
	StatePath    string   `koanf:"state_path"`
	Ledger       bool     `koanf:"ledger"`
	Concurrency  int      `koanf:"concurrency"`
	OutputFormat string   `koanf:"output"`
	Verbose      bool     `koanf:"verbose"`
	LogLevel     string   `koanf:"log_level"`
	FromVersion  string   `koanf:"from_version"`
	ToVersion    string   `koanf:"to_version"`

	Retry     RetryConfig     `koanf:"retry"`
	Equipment EquipmentConfig `koanf:"equipment"`
	Serve     ServeConfig     `koanf:"serve"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// RetryConfig bounds retries of transient file system errors.
type RetryConfig struct {
	Attempts  int           `koanf:"attempts"`
	BaseDelay time.Duration `koanf:"base_delay"`
}

// EquipmentConfig customises the equipment classifier.
type EquipmentConfig struct {
	// Overrides maps a normalized exercise name to a category, checked
	// before the rule table.
	Overrides map[string]string `koanf:"overrides"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// Default configuration values.
const (
	DefaultCorpusDir   = "data/golden_set"
	DefaultStateFile   = ".zamm/ledger.db"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel    = "warn"
	DefaultFromVersion = "2.0"
	DefaultServeAddr   = "127.0.0.1:8787"
	DefaultAttempts    = 3
	DefaultBaseDelay   = 50 * time.Millisecond
)

