package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.CorpusDir == "" {
		return fmt.Errorf("corpus_dir is required")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	if c.Retry.BaseDelay < 0 {
		return fmt.Errorf("retry.base_delay must not be negative, got %s", c.Retry.BaseDelay)
	}
	if c.FromVersion != "" {
		if _, err := migrate.ParseVersion(c.FromVersion); err != nil {
			return fmt.Errorf("from_version: %w", err)
		}
	}
	if c.ToVersion != "" {
		if _, err := migrate.ParseVersion(c.ToVersion); err != nil {
			return fmt.Errorf("to_version: %w", err)
		}
	}
	if _, err := c.EquipmentOverrides(); err != nil {
		return err
	}
	return nil
}

// ValidateCorpusDir checks that the corpus directory exists.
func (c *Config) ValidateCorpusDir() error {
	info, err := os.Stat(c.CorpusDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("corpus directory does not exist: %s\nHint: Create the directory or use --corpus-dir to specify a different path", c.CorpusDir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat corpus directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus path is not a directory: %s", c.CorpusDir)
	}
	return nil
}

// EquipmentOverrides converts the configured overrides into classifier
// categories.
func (c *Config) EquipmentOverrides() (map[string]equipment.Category, error) {
	if len(c.Equipment.Overrides) == 0 {
		return nil, nil
	}
	out := make(map[string]equipment.Category, len(c.Equipment.Overrides))
	for name, raw := range c.Equipment.Overrides {
		cat, err := equipment.ParseCategory(raw)
		if err != nil {
			return nil, fmt.Errorf("equipment.overrides[%q]: %w", name, err)
		}
		out[name] = cat
	}
	return out, nil
}

// ParseLogLevel converts a log_level value to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", s)
	}
}
