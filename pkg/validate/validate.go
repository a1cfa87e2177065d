// Package validate checks documents against the current schema.
//
// Checks are independent and read-only. A document accumulates issues from
// every enabled check even when an earlier one failed, and the input is
// never modified.
package validate

import (
	"fmt"
	"slices"

	"github.com/zohar-ui/ParserZamaActive/pkg/core"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// Category groups related checks in a report.
type Category string

// Check categories, in report order.
const (
	CategoryStructural  Category = "structural"
	CategoryTypeSafety  Category = "type_safety"
	CategoryEnumeration Category = "enumeration"
	CategoryEquipment   Category = "equipment_coverage"
	CategorySeparation  Category = "separation"
)

// Issue is one problem found in a document.
type Issue struct {
	Check    string        `json:"check"`
	Category Category      `json:"category"`
	Severity core.Severity `json:"severity"`
	Path     string        `json:"path"`
	Message  string        `json:"message"`
}

// CategoryResult is the outcome of one check.
type CategoryResult struct {
	Check    string      `json:"check"`
	Category Category    `json:"category"`
	Status   core.Status `json:"status"`
	Errors   int         `json:"errors"`
	Warnings int         `json:"warnings"`
	Detail   string      `json:"detail,omitempty"`
}

// Report is the validation outcome for one document.
type Report struct {
	Categories []CategoryResult `json:"categories"`
	Issues     []Issue          `json:"issues"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	Warnings   int              `json:"warnings"`
}

// OK reports whether no check failed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Status returns the worst category status.
func (r *Report) Status() core.Status {
	s := core.StatusPass
	for _, c := range r.Categories {
		s = s.Worse(c.Status)
	}
	return s
}

// Result returns the result for a category.
func (r *Report) Result(c Category) (CategoryResult, bool) {
	for _, res := range r.Categories {
		if res.Category == c {
			return res, true
		}
	}
	return CategoryResult{}, false
}

// IssuesIn returns the issues of one category.
func (r *Report) IssuesIn(c Category) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Category == c {
			out = append(out, is)
		}
	}
	return out
}

// Emitter collects the issues raised by one check run.
type Emitter struct {
	check    Check
	issues   []Issue
	errors   int
	warnings int
	detail   string
}

func (e *Emitter) emit(sev core.Severity, path tree.Path, format string, args ...any) {
	e.issues = append(e.issues, Issue{
		Check:    e.check.ID,
		Category: e.check.Category,
		Severity: sev,
		Path:     path.String(),
		Message:  fmt.Sprintf(format, args...),
	})
	switch sev {
	case core.SeverityError:
		e.errors++
	case core.SeverityWarning:
		e.warnings++
	}
}

// Error records a blocking issue.
func (e *Emitter) Error(path tree.Path, format string, args ...any) {
	e.emit(core.SeverityError, path, format, args...)
}

// Warn records an advisory issue.
func (e *Emitter) Warn(path tree.Path, format string, args ...any) {
	e.emit(core.SeverityWarning, path, format, args...)
}

// Info records an informational note that does not affect status.
func (e *Emitter) Info(path tree.Path, format string, args ...any) {
	e.emit(core.SeverityInfo, path, format, args...)
}

// Detail sets a one-line summary for the category result.
func (e *Emitter) Detail(format string, args ...any) {
	e.detail = fmt.Sprintf(format, args...)
}

func (e *Emitter) result() CategoryResult {
	status := core.StatusPass
	switch {
	case e.errors > 0:
		status = core.StatusFail
	case e.warnings > 0:
		status = core.StatusWarn
	}
	return CategoryResult{
		Check:    e.check.ID,
		Category: e.check.Category,
		Status:   status,
		Errors:   e.errors,
		Warnings: e.warnings,
		Detail:   e.detail,
	}
}

// Check is one validation rule.
type Check struct {
	ID          string
	Name        string
	Category    Category
	Description string
	// Blocking checks can fail a document; advisory checks only warn.
	Blocking bool
	Run      func(doc tree.Value, e *Emitter)
}

// Info returns the check's metadata.
func (c Check) Info() core.CheckInfo {
	return core.CheckInfo{
		ID:          c.ID,
		Name:        c.Name,
		Category:    string(c.Category),
		Description: c.Description,
		Blocking:    c.Blocking,
	}
}

// Validator runs a set of checks.
type Validator struct {
	checks   []Check
	disabled map[string]bool
}

// New returns a validator running the built-in checks.
func New() *Validator {
	return &Validator{checks: Checks(), disabled: make(map[string]bool)}
}

// NewWithChecks returns a validator running the given checks in order.
func NewWithChecks(checks ...Check) *Validator {
	return &Validator{checks: slices.Clone(checks), disabled: make(map[string]bool)}
}

// Disable turns off checks by ID.
func (v *Validator) Disable(ids ...string) *Validator {
	for _, id := range ids {
		v.disabled[id] = true
	}
	return v
}

// Checks returns the enabled checks.
func (v *Validator) Checks() []Check {
	var out []Check
	for _, c := range v.checks {
		if !v.disabled[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// Validate runs every enabled check against doc.
func (v *Validator) Validate(doc tree.Value) *Report {
	report := &Report{Categories: []CategoryResult{}, Issues: []Issue{}}
	for _, c := range v.Checks() {
		e := &Emitter{check: c}
		c.Run(doc, e)

		res := e.result()
		report.Categories = append(report.Categories, res)
		report.Issues = append(report.Issues, e.issues...)
		switch res.Status {
		case core.StatusFail:
			report.Failed++
		case core.StatusWarn:
			report.Warnings++
		default:
			report.Passed++
		}
	}
	return report
}

// Verdict grades a corpus pass rate.
func Verdict(passed, total int) string {
	if total == 0 {
		return "NO DOCUMENTS"
	}
	rate := float64(passed) / float64(total)
	switch {
	case rate >= 0.95:
		return "PRODUCTION READY"
	case rate >= 0.90:
		return "GOOD, MINOR ISSUES"
	default:
		return "NEEDS WORK"
	}
}
