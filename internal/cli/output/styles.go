package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	// DocPath renders document paths.
	DocPath lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// newStyles builds styles bound to a lipgloss renderer so that the colour
// profile follows the output stream rather than the process stdout.
func newStyles(lr *lipgloss.Renderer) *Styles {
	success := lr.NewStyle().Foreground(lipgloss.Color("10"))
	failure := lr.NewStyle().Foreground(lipgloss.Color("9"))
	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lr.NewStyle().Bold(true),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success: success,
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   failure,
		Info:    lr.NewStyle().Foreground(lipgloss.Color("14")),
		DocPath: lr.NewStyle().Foreground(lipgloss.Color("13")),

		StatusSuccess: success.SetString("✓"),
		StatusFailed:  failure.SetString("✗"),
	}
}

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return fmt.Sprintf("%s %s\n", strings.Repeat("#", level), text)
}

// FormatKeyValue returns a markdown list item with a bold key.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}

// FormatCode wraps s in backticks.
func FormatCode(s string) string {
	return "`" + s + "`"
}
