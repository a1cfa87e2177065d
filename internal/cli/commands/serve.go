package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/api"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr    string
	Version string
}

// NewServeCommand creates the serve command.
func NewServeCommand(version string) *cobra.Command {
	opts := &ServeOptions{Version: version}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the migration and validation API over HTTP",
		Long: `Start an HTTP server exposing validation, migration and equipment
classification. Runs recorded by the CLI are browsable under /v1/runs when
the ledger is enabled.`,
		Example: `  zamm serve --addr :8787
  curl -X POST --data @w1.json localhost:8787/v1/validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default: serve.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	v, err := cc.Validator(nil)
	if err != nil {
		return err
	}
	ledger, cleanup, err := cc.OpenLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := opts.Addr
	if addr == "" {
		addr = cc.Cfg.Serve.Addr
	}

	srv := api.NewServer(api.Config{
		Engine:     cc.Engine,
		Validator:  v,
		Classifier: cc.Classifier,
		Ledger:     ledger,
		Logger:     cc.Logger,
		Version:    opts.Version,
	})
	cc.Renderer.Muted("Listening on http://" + addr)
	return srv.Serve(ctx, addr)
}
