package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"

	"github.com/zohar-ui/ParserZamaActive/internal/batch"
	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/internal/corpus"
	"github.com/zohar-ui/ParserZamaActive/pkg/core"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
	"github.com/zohar-ui/ParserZamaActive/pkg/validate"
)

// maxDetails bounds the per-check details kept in the report.
const maxDetails = 10

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [paths...]",
		Short: "Run a corpus health check",
		Long: `Analyze the workout corpus without changing it.

The doctor command validates every document, previews a migration to the
latest schema version and reports:
- Corpus summary (documents, formats, pending migrations)
- Health checks grouped by category
- Health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  zamm doctor

  # Output as JSON
  zamm doctor -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, args)
		},
	}
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         CorpusSummary `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Verdict         string        `json:"verdict"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// CorpusSummary contains corpus-level statistics.
type CorpusSummary struct {
	Documents        int             `json:"documents"`
	JSON             int             `json:"json"`
	YAML             int             `json:"yaml"`
	Unreadable       int             `json:"unreadable"`
	PendingMigration int             `json:"pending_migration"`
	From             migrate.Version `json:"from"`
	To               migrate.Version `json:"to"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	CheckID    string   `json:"check_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	Documents  int      `json:"documents"`
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cc.Renderer

	entries, err := cc.Entries(args)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		r.Warning("No documents found in corpus")
		return nil
	}

	from, to, err := cc.versions("", "")
	if err != nil {
		return err
	}
	v, err := cc.Validator(nil)
	if err != nil {
		return err
	}

	// The doctor only reads; nothing is written or recorded.
	runner := cc.Runner(nil)
	validation, err := runner.Validate(ctx, v, entries)
	if err != nil {
		return err
	}
	preview, err := runner.Migrate(ctx, cc.Engine, entries, batch.MigrateOptions{From: from, To: to, DryRun: true})
	if err != nil {
		return err
	}

	out := buildDoctorOutput(cc.Cfg.CorpusDir, v, validation, preview, to)
	out.Summary.From = from

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, out)
	default:
		return renderDoctorText(r, out)
	}
}

func buildDoctorOutput(base string, v *validate.Validator, validation, preview *batch.Summary, to migrate.Version) *DoctorOutput {
	summary := CorpusSummary{
		Documents:        validation.Documents,
		Unreadable:       validation.Errors,
		PendingMigration: preview.Changed,
		To:               to,
	}
	for _, o := range validation.Outcomes {
		if f, err := corpus.FormatFor(o.Path); err == nil && f == tree.FormatYAML {
			summary.YAML++
		} else {
			summary.JSON++
		}
	}

	checks := v.Checks()
	healthChecks := make([]HealthCheck, 0, len(checks))
	index := make(map[string]int, len(checks))
	for _, c := range checks {
		index[c.ID] = len(healthChecks)
		healthChecks = append(healthChecks, HealthCheck{
			CheckID: c.ID,
			Name:    c.Name,
			Group:   string(c.Category),
			Status:  "pass",
		})
	}

	issueCount := 0
	for _, o := range validation.Outcomes {
		if o.Validation == nil {
			continue
		}
		for _, res := range o.Validation.Categories {
			i, ok := index[res.Check]
			if !ok || res.Status == core.StatusPass {
				continue
			}
			hc := &healthChecks[i]
			hc.Documents++
			switch {
			case res.Status == core.StatusFail:
				hc.Status = "error"
			case hc.Status != "error":
				hc.Status = "warn"
			}
		}
		for _, is := range o.Validation.Issues {
			i, ok := index[is.Check]
			if !ok || is.Severity == core.SeverityInfo {
				continue
			}
			issueCount++
			hc := &healthChecks[i]
			hc.IssueCount++
			if len(hc.Details) < maxDetails {
				hc.Details = append(hc.Details, fmt.Sprintf("%s %s: %s", displayPath(base, o.Path), is.Path, is.Message))
			}
		}
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(validation),
		Verdict:         validation.Verdict(),
		Recommendations: generateRecommendations(healthChecks, summary),
		IssueCount:      issueCount,
	}
}

// calculateHealthScore computes a score from 0-100: the share of documents
// that pass, with documents passing only with warnings counted at half.
func calculateHealthScore(s *batch.Summary) int {
	total := s.Checked + s.Errors
	if total == 0 {
		return 100
	}
	score := (float64(s.Passed) + float64(s.Warned)/2) / float64(total) * 100
	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck, summary CorpusSummary) []string {
	var recommendations []string
	if summary.PendingMigration > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Run `zamm migrate` to bring %d documents to schema %s", summary.PendingMigration, summary.To))
	}
	if summary.Unreadable > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Fix %d documents that could not be parsed", summary.Unreadable))
	}
	for _, check := range checks {
		if check.Documents == 0 {
			continue
		}
		if rec := getRecommendation(check.CheckID); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}

	// Limit to top 5 recommendations
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(checkID string) string {
	switch checkID {
	case "ST01":
		return "Give every document a workout_date and at least one session"
	case "TY01":
		return "Replace string quantities with numbers or {value, unit} pairs"
	case "EN01":
		return "Replace unrecognised block_code values with one of the 17 block codes"
	case "EQ01":
		return "Assign equipment_key to every item; `zamm migrate` classifies them from exercise names"
	case "SP01":
		return "Move raw reps, sets, weight and duration under prescription or performed"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("Workout Corpus Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Corpus Summary
	r.Println(styles.Header2.Render("Corpus Summary"))
	r.Printf("   Documents: %d | JSON: %d | YAML: %d | Unreadable: %d\n",
		out.Summary.Documents, out.Summary.JSON, out.Summary.YAML, out.Summary.Unreadable)
	r.Printf("   Pending migration %s → %s: %d\n", out.Summary.From, out.Summary.To, out.Summary.PendingMigration)
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		r.Println(styles.Bold.Render("   " + titleCaser.String(strings.ReplaceAll(check.Group, "_", " "))))

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.String()
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.CheckID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues in %d documents)", check.IssueCount, check.Documents)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", check.IssueCount-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 90 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s  %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)), styles.Bold.Render(out.Verdict))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# Workout Corpus Health Report")
	r.Println("")

	// Corpus Summary
	r.Println("## Corpus Summary")
	r.Println("")
	r.Printf("- **Documents**: %d\n", out.Summary.Documents)
	r.Printf("- **JSON**: %d\n", out.Summary.JSON)
	r.Printf("- **YAML**: %d\n", out.Summary.YAML)
	r.Printf("- **Unreadable**: %d\n", out.Summary.Unreadable)
	r.Printf("- **Pending migration %s → %s**: %d\n", out.Summary.From, out.Summary.To, out.Summary.PendingMigration)
	r.Println("")

	// Health Checks
	r.Println("## Health Checks")
	r.Println("")

	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		r.Println("### " + titleCaser.String(strings.ReplaceAll(check.Group, "_", " ")))
		r.Println("")

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s: %s", status, check.CheckID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues in %d documents)", check.IssueCount, check.Documents)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
		r.Println("")
	}

	// Health Score
	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100** (%s)\n", out.Score, out.Verdict)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
