package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
)

type stepInfo struct {
	From        migrate.Version `json:"from"`
	To          migrate.Version `json:"to"`
	Description string          `json:"description"`
	Rules       []string        `json:"rules"`
}

// NewStepsCommand creates the steps command.
func NewStepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List migration steps",
		Long:  `List the schema versions and the migration steps between them, oldest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSteps(cmd)
		},
	}
}

func runSteps(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cc.Renderer

	steps := cc.Engine.Steps()
	infos := make([]stepInfo, 0, len(steps))
	for _, st := range steps {
		rules := make([]string, 0, len(st.Rules))
		for _, rule := range st.Rules {
			rules = append(rules, rule.Name())
		}
		infos = append(infos, stepInfo{From: st.From, To: st.To, Description: st.Description, Rules: rules})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	r.Header(1, "Migration Steps")
	rows := make([][]string, 0, len(infos))
	for _, s := range infos {
		rows = append(rows, []string{string(s.From), string(s.To), s.Description, strings.Join(s.Rules, ", ")})
	}
	r.Table([]string{"From", "To", "Description", "Rules"}, rows)
	r.Muted("Latest version: " + string(cc.Engine.Latest()))
	return nil
}
