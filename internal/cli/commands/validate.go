package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Strict  bool
	Disable []string
	Quiet   bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Validate workout documents against the current schema",
		Long: `Validate workout documents against the current schema.

Each document is checked for structure, numeric types, block codes,
equipment coverage and prescription/performance separation. The command
fails when any document fails a blocking check, or, with --strict, when
any document has warnings.`,
		Example: `  # Validate the corpus
  zamm validate

  # Validate two files, ignoring equipment coverage
  zamm validate --disable EQ01 a.json b.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Treat warnings as failures")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Check IDs to skip (e.g. EQ01,SP01)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Only print the summary")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	ctx := cmd.Context()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	v, err := cc.Validator(opts.Disable)
	if err != nil {
		return err
	}
	entries, err := cc.Entries(args)
	if err != nil {
		return err
	}

	ledger, cleanup, err := cc.OpenLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := cc.Runner(ledger).Validate(ctx, v, entries)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(summary); err != nil {
			return err
		}
	} else {
		r.Header(1, fmt.Sprintf("Validation (%d documents)", summary.Documents))
		if !opts.Quiet {
			renderValidateOutcomes(r, cc.Cfg.CorpusDir, summary, true)
		}
		if rows := categoryTotals(summary); len(rows) > 0 {
			r.Header(2, "Checks")
			r.Table([]string{"Category", "Pass", "Warn", "Fail"}, rows)
		}
		renderValidateSummary(r, summary)
	}

	switch {
	case summary.Errors > 0 || summary.Failed > 0:
		return fmt.Errorf("validation failed: %d failed, %d could not be read", summary.Failed, summary.Errors)
	case opts.Strict && summary.Warned > 0:
		return fmt.Errorf("validation failed: %d documents have warnings (--strict)", summary.Warned)
	}
	return nil
}
