package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
)

// ClassifyOptions holds options for the classify command.
type ClassifyOptions struct {
	Table bool
}

type classification struct {
	Name       string `json:"name"`
	Normalized string `json:"normalized"`
	Category   string `json:"category"`
	Matched    bool   `json:"matched"`
}

type ruleRow struct {
	Priority int    `json:"priority"`
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand() *cobra.Command {
	opts := &ClassifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify [names...]",
		Short: "Show the equipment category for exercise names",
		Long: `Show the equipment category the classifier assigns to each exercise name.

Names no rule matches fall back to bodyweight. Use --table to print the
rule table in priority order; the first matching rule wins.`,
		Example: `  zamm classify "DB Bench Press" "KB Swing" "Air Squat"
  zamm classify --table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !opts.Table {
				return fmt.Errorf("provide at least one exercise name, or --table")
			}
			return runClassify(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Table, "table", false, "Print the classification rule table")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string, opts *ClassifyOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cc.Renderer

	if opts.Table {
		rules := cc.Classifier.Rules()
		rows := make([]ruleRow, 0, len(rules))
		for i, rule := range rules {
			rows = append(rows, ruleRow{Priority: i + 1, Pattern: rule.Expr, Category: rule.Category.String()})
		}
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(rows)
		}
		r.Header(1, fmt.Sprintf("Equipment Rules (%d)", len(rows)))
		table := make([][]string, 0, len(rows))
		for _, row := range rows {
			table = append(table, []string{strconv.Itoa(row.Priority), row.Pattern, row.Category})
		}
		r.Table([]string{"#", "Pattern", "Category"}, table)
		return nil
	}

	results := make([]classification, 0, len(args))
	for _, name := range args {
		cat, matched := cc.Classifier.Match(name)
		results = append(results, classification{
			Name:       name,
			Normalized: equipment.Normalize(name),
			Category:   cat.String(),
			Matched:    matched,
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(results)
	}
	table := make([][]string, 0, len(results))
	for _, c := range results {
		category := c.Category
		if !c.Matched {
			category += " (fallback)"
		}
		table = append(table, []string{c.Name, category})
	}
	r.Table([]string{"Exercise", "Equipment"}, table)
	return nil
}
