package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/internal/corpus"
	"github.com/zohar-ui/ParserZamaActive/internal/watch"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
	Initial  bool
	Disable  []string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate documents as they change",
		Long: `Watch the corpus directory and validate documents whenever they are
written or created. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-validating")
	cmd.Flags().BoolVar(&opts.Initial, "initial", false, "Validate the whole corpus before watching")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Check IDs to skip (e.g. EQ01,SP01)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := cc.Cfg.ValidateCorpusDir(); err != nil {
		return err
	}
	v, err := cc.Validator(opts.Disable)
	if err != nil {
		return err
	}

	// Watch runs are not recorded in the ledger.
	runner := cc.Runner(nil)
	r := cc.Renderer
	base := cc.Cfg.CorpusDir

	check := func(ctx context.Context, entries []corpus.Entry) {
		summary, err := runner.Validate(ctx, v, entries)
		if err != nil {
			if ctx.Err() == nil {
				r.Warning(err.Error())
			}
			return
		}
		if r.EffectiveMode() == output.ModeJSON {
			_ = r.JSON(summary.Outcomes)
			return
		}
		renderValidateOutcomes(r, base, summary, true)
	}

	if opts.Initial {
		entries, err := cc.Entries(nil)
		if err != nil {
			return err
		}
		check(ctx, entries)
	}

	if r.EffectiveMode() != output.ModeJSON {
		r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", base))
	}

	w := &watch.Watcher{
		Dir:      base,
		Patterns: cc.Cfg.Patterns,
		Exclude:  cc.Cfg.Exclude,
		Debounce: opts.Debounce,
		Logger:   cc.Logger,
	}
	return w.Run(ctx, check)
}
