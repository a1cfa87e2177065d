package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new workout corpus",
		Long: `Initialize a new workout corpus with a default layout and configuration.

This creates:
  - data/golden_set/ directory for workout documents
  - zamm.yaml configuration file
  - .gitignore excluding the local run ledger

Use --example to also add two sample workouts: a legacy 2.0 JSON document
and a YAML document, ready for 'zamm migrate'.`,
		Example: `  # Initialize in current directory
  zamm init

  # Initialize with sample workouts
  zamm init --example

  # Initialize in a new directory
  zamm init my-corpus --example

  # Force overwrite existing config
  zamm init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode, err := output.ParseMode(cfg.OutputFormat)
			if err != nil {
				mode = output.ModeAuto
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Add sample workout documents")

	return cmd
}

func prepareInitDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "zamm.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("zamm.yaml already exists. Use --force to overwrite")
	}
	return nil
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize corpus: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("Workout corpus initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Add workout documents to data/golden_set/")
	r.Println("  2. Run 'zamm doctor' to check corpus health")
	r.Println("  3. Run 'zamm migrate --dry-run' to preview the upgrade")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize corpus: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Workouts")
	for _, f := range groups["corpus"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("Workout corpus initialized with sample documents!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  zamm validate          Check documents against the schema")
	r.Println("  zamm migrate --dry-run Preview changes to the latest version")
	r.Println("  zamm migrate           Upgrade documents in place")
	r.Println("  zamm doctor            Summarize corpus health")

	return nil
}
