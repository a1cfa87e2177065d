package commands

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zohar-ui/ParserZamaActive/internal/batch"
	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/pkg/core"
	"github.com/zohar-ui/ParserZamaActive/pkg/validate"
)

// displayPath shortens paths under base for display.
func displayPath(base, path string) string {
	if base == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// statusOf maps a document outcome onto a renderer status.
func statusOf(o batch.Outcome) string {
	switch {
	case o.Err != nil:
		return "error"
	case o.Validation != nil && !o.Validation.OK():
		return "error"
	case o.Validation != nil && o.Validation.Warnings > 0:
		return "warning"
	default:
		return "success"
	}
}

func renderMigrateOutcomes(r *output.Renderer, base string, s *batch.Summary, dryRun bool) {
	for _, o := range s.Outcomes {
		name := displayPath(base, o.Path)
		switch {
		case o.Err != nil:
			r.StatusLine(name, "error", o.Error)
		case !o.Changed:
			r.StatusLine(name, "skipped", "no changes")
		default:
			verb := "updated"
			if dryRun {
				verb = "would update"
			}
			detail := fmt.Sprintf("%s (%d changes", verb, o.Migration.Total())
			if n := len(o.Migration.Flags); n > 0 {
				detail += fmt.Sprintf(", %d flagged", n)
			}
			r.StatusLine(name, statusOf(o), detail+")")
		}
	}
	r.Println("")
}

func renderMigrateSummary(r *output.Renderer, s *batch.Summary, dryRun bool) {
	r.Header(2, "Summary")
	updated := "Updated"
	if dryRun {
		updated = "Would update"
	}
	rows := [][]string{
		{"Documents", strconv.Itoa(s.Documents)},
		{updated, strconv.Itoa(s.Changed)},
		{"Unchanged", strconv.Itoa(s.Documents - s.Changed - s.Errors)},
		{"Errors", strconv.Itoa(s.Errors)},
		{"Flagged values", strconv.Itoa(s.Flags)},
	}
	for _, k := range s.ChangeKinds() {
		rows = append(rows, []string{"Changes: " + string(k), strconv.Itoa(s.Changes[k])})
	}
	if s.Checked > 0 {
		rows = append(rows, []string{"Validation", fmt.Sprintf("%d passed, %d warned, %d failed", s.Passed, s.Warned, s.Failed)})
	}
	if s.RunID != "" {
		rows = append(rows, []string{"Run", s.RunID})
	}
	r.Table([]string{"Metric", "Value"}, rows)

	if len(s.Equipment) > 0 {
		renderEquipmentUsage(r, s)
	}
}

// renderEquipmentUsage prints how many items were assigned each category.
func renderEquipmentUsage(r *output.Renderer, s *batch.Summary) {
	r.Header(2, "Equipment Assigned")
	total := 0
	for _, n := range s.Equipment {
		total += n
	}
	rows := make([][]string, 0, len(s.Equipment))
	for _, cat := range s.EquipmentCategories() {
		n := s.Equipment[cat]
		rows = append(rows, []string{cat, strconv.Itoa(n), fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))})
	}
	r.Table([]string{"Category", "Items", "Share"}, rows)
	if s.Fallbacks > 0 {
		r.Muted(fmt.Sprintf("%d items fell back to bodyweight", s.Fallbacks))
	}
}

func renderValidateOutcomes(r *output.Renderer, base string, s *batch.Summary, showIssues bool) {
	for _, o := range s.Outcomes {
		name := displayPath(base, o.Path)
		if o.Err != nil {
			r.StatusLine(name, "error", o.Error)
			continue
		}
		v := o.Validation
		var detail string
		switch {
		case !v.OK():
			detail = fmt.Sprintf("%d failed checks", v.Failed)
		case v.Warnings > 0:
			detail = fmt.Sprintf("%d warnings", v.Warnings)
		}
		r.StatusLine(name, statusOf(o), detail)
		if showIssues {
			renderIssues(r, v.Issues)
		}
	}
	r.Println("")
}

func renderIssues(r *output.Renderer, issues []validate.Issue) {
	styles := r.Styles()
	text := r.EffectiveMode() == output.ModeText
	for _, is := range issues {
		if is.Severity == core.SeverityInfo {
			continue
		}
		if !text {
			r.Printf("  - `%s` %s %s: %s\n", is.Check, is.Severity, is.Path, is.Message)
			continue
		}
		style := styles.Warning
		if is.Severity == core.SeverityError {
			style = styles.Error
		}
		r.Printf("      %s %s %s\n", style.Render(is.Check), styles.Muted.Render(is.Path), is.Message)
	}
}

func renderValidateSummary(r *output.Renderer, s *batch.Summary) {
	r.Header(2, "Summary")
	rows := [][]string{
		{"Documents", strconv.Itoa(s.Documents)},
		{"Passed", strconv.Itoa(s.Passed)},
		{"Passed with warnings", strconv.Itoa(s.Warned)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Errors", strconv.Itoa(s.Errors)},
	}
	if s.RunID != "" {
		rows = append(rows, []string{"Run", s.RunID})
	}
	r.Table([]string{"Metric", "Value"}, rows)

	verdict := s.Verdict()
	switch {
	case s.Failed == 0 && s.Errors == 0:
		r.Success(verdict)
	default:
		r.Warning(verdict)
	}
}

// categoryTotals counts documents per check category and status.
func categoryTotals(s *batch.Summary) [][]string {
	type counts struct{ pass, warn, fail int }
	totals := make(map[validate.Category]*counts)
	var order []validate.Category
	for _, o := range s.Outcomes {
		if o.Validation == nil {
			continue
		}
		for _, c := range o.Validation.Categories {
			t, ok := totals[c.Category]
			if !ok {
				t = &counts{}
				totals[c.Category] = t
				order = append(order, c.Category)
			}
			switch c.Status {
			case core.StatusFail:
				t.fail++
			case core.StatusWarn:
				t.warn++
			default:
				t.pass++
			}
		}
	}
	rows := make([][]string, 0, len(order))
	for _, c := range order {
		t := totals[c]
		rows = append(rows, []string{string(c), strconv.Itoa(t.pass), strconv.Itoa(t.warn), strconv.Itoa(t.fail)})
	}
	return rows
}
