package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

type runDetail struct {
	*state.Run
	Records []state.DocumentRecord `json:"records"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded migrate and validate runs",
		Long: `Show runs recorded in the run ledger, newest first.

With a run ID, show the per-document outcomes of that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	ctx := cmd.Context()

	if opts.Limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", opts.Limit)
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if !cc.Cfg.Ledger {
		return fmt.Errorf("run ledger is disabled (set ledger: true)")
	}
	ledger, cleanup, err := cc.OpenLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	if len(args) == 1 {
		run, err := ledger.GetRun(ctx, args[0])
		if errors.Is(err, state.ErrRunNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err != nil {
			return err
		}
		docs, err := ledger.GetRunDocuments(ctx, run.ID)
		if err != nil {
			return err
		}
		if r.EffectiveMode() == output.ModeJSON {
			if docs == nil {
				docs = []state.DocumentRecord{}
			}
			return r.JSON(runDetail{Run: run, Records: docs})
		}
		renderRun(r, cc.Cfg.CorpusDir, run, docs)
		return nil
	}

	runs, err := ledger.ListRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	if len(runs) == 0 {
		r.Muted("No runs recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			string(run.Kind),
			versionSpan(run),
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(run.Documents),
			strconv.Itoa(run.Changed),
			strconv.Itoa(run.Failed),
		})
	}
	r.Table([]string{"ID", "Kind", "Versions", "Status", "Started", "Docs", "Changed", "Failed"}, rows)
	return nil
}

func versionSpan(run *state.Run) string {
	if run.FromVersion == "" && run.ToVersion == "" {
		return "-"
	}
	return run.FromVersion + " → " + run.ToVersion
}

func renderRun(r *output.Renderer, base string, run *state.Run, docs []state.DocumentRecord) {
	r.Header(1, fmt.Sprintf("Run %s", run.ID))
	rows := [][]string{
		{"Kind", string(run.Kind)},
		{"Versions", versionSpan(run)},
		{"Status", string(run.Status)},
		{"Started", run.StartedAt.Local().Format(time.DateTime)},
	}
	if run.CompletedAt != nil {
		rows = append(rows, []string{"Duration", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()})
	}
	r.Table([]string{"Field", "Value"}, rows)

	r.Header(2, fmt.Sprintf("Documents (%d)", len(docs)))
	for _, d := range docs {
		var status, detail string
		switch d.Status {
		case state.DocumentErrored:
			status, detail = "error", d.Error
		case state.DocumentFailed:
			status, detail = "error", fmt.Sprintf("%d issues", d.Issues)
		case state.DocumentWarn:
			status, detail = "warning", fmt.Sprintf("%d issues", d.Issues)
		default:
			status = "success"
		}
		if d.Changed {
			if detail != "" {
				detail += ", "
			}
			detail += "changed"
		}
		r.StatusLine(displayPath(base, d.Path), status, detail)
	}
}
