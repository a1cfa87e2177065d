package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display zamm version and the workout schema version it migrates to.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "zamm v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Workout schema %s\n", migrate.Current)
		},
	}
}
