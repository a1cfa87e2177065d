// Package commands implements the zamm subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/batch"
	"github.com/zohar-ui/ParserZamaActive/internal/cli/config"
	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/internal/corpus"
	"github.com/zohar-ui/ParserZamaActive/internal/state"
	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
	"github.com/zohar-ui/ParserZamaActive/pkg/validate"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg        *config.Config
	Logger     *slog.Logger
	Renderer   *output.Renderer
	Classifier *equipment.Classifier
	Engine     *migrate.Engine
}

// NewCommandContext creates a CommandContext with the classifier, migration
// engine and renderer built from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	overrides, err := cfg.EquipmentOverrides()
	if err != nil {
		return nil, err
	}
	classifier := equipment.Default()
	if len(overrides) > 0 {
		classifier = equipment.New(overrides)
	}

	engine, err := migrate.New(migrate.Config{Classifier: classifier, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration engine: %w", err)
	}

	return &CommandContext{
		Cfg:        cfg,
		Logger:     logger,
		Renderer:   newRenderer(cmd, cfg),
		Classifier: classifier,
		Engine:     engine,
	}, nil
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		mode = output.ModeAuto
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
}

// getConfig returns the loaded configuration, or defaults when the command
// runs without the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// OpenLedger opens the run ledger. It returns a nil store when the ledger
// is disabled, and the returned cleanup is always safe to call.
func (c *CommandContext) OpenLedger(ctx context.Context) (state.Store, func(), error) {
	if !c.Cfg.Ledger {
		return nil, func() {}, nil
	}
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(ctx, c.Cfg.StatePath); err != nil {
		return nil, nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// Runner builds a batch runner using the configured concurrency and retry
// policy.
func (c *CommandContext) Runner(ledger state.Store) *batch.Runner {
	return &batch.Runner{
		Concurrency: c.Cfg.Concurrency,
		IO: corpus.IO{Retry: corpus.Retry{
			Attempts:  c.Cfg.Retry.Attempts,
			BaseDelay: c.Cfg.Retry.BaseDelay,
		}},
		Ledger: ledger,
		Logger: c.Logger,
	}
}

// Entries resolves positional arguments to documents, defaulting to the
// corpus directory.
func (c *CommandContext) Entries(args []string) ([]corpus.Entry, error) {
	if len(args) == 0 {
		if err := c.Cfg.ValidateCorpusDir(); err != nil {
			return nil, err
		}
		args = []string{c.Cfg.CorpusDir}
	}
	entries, err := corpus.Resolve(args, c.Cfg.Patterns, c.Cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve documents: %w", err)
	}
	return entries, nil
}

// Validator returns a validator with the given checks disabled.
func (c *CommandContext) Validator(disable []string) (*validate.Validator, error) {
	v := validate.New()
	if len(disable) == 0 {
		return v, nil
	}
	known := make(map[string]bool)
	for _, check := range v.Checks() {
		known[check.ID] = true
	}
	for _, id := range disable {
		if !known[id] {
			return nil, fmt.Errorf("unknown check %q", id)
		}
	}
	return v.Disable(disable...), nil
}

// versions resolves --from/--to, falling back to configuration and then to
// the engine's oldest and latest versions.
func (c *CommandContext) versions(from, to string) (migrate.Version, migrate.Version, error) {
	if from == "" {
		from = c.Cfg.FromVersion
	}
	if to == "" {
		to = c.Cfg.ToVersion
	}

	fromV := c.Engine.Versions()[0]
	if from != "" {
		v, err := migrate.ParseVersion(from)
		if err != nil {
			return "", "", err
		}
		fromV = v
	}
	toV := c.Engine.Latest()
	if to != "" {
		v, err := migrate.ParseVersion(to)
		if err != nil {
			return "", "", err
		}
		toV = v
	}
	if _, err := c.Engine.Path(fromV, toV); err != nil {
		return "", "", err
	}
	return fromV, toV, nil
}
