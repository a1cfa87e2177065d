package output

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTest(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewRendererWithTTY(&out, &errOut, isTTY, mode), &out, &errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputMode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "TEXT", want: ModeText},
		{in: "md", want: ModeMarkdown},
		{in: "json", want: ModeJSON},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{name: "auto tty", mode: ModeAuto, isTTY: true, want: ModeText},
		{name: "auto pipe", mode: ModeAuto, isTTY: false, want: ModeMarkdown},
		{name: "empty is auto", mode: "", isTTY: false, want: ModeMarkdown},
		{name: "explicit text on pipe", mode: ModeText, isTTY: false, want: ModeText},
		{name: "json", mode: ModeJSON, isTTY: true, want: ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_MarkdownHasNoANSI(t *testing.T) {
	r, out, errOut := newTest(ModeAuto, false)

	r.Header(1, "Validation")
	r.StatusLine("a.json", "success", "")
	r.StatusLine("b.json", "error", "2 issues")
	r.Success("done")
	r.Muted("quiet")
	r.Warning("careful")
	r.Table([]string{"Category", "Status"}, [][]string{{"structural", "pass"}})

	s := out.String()
	assert.False(t, ansi.MatchString(s+errOut.String()))
	assert.Contains(t, s, "# Validation")
	assert.Contains(t, s, "- **ok** `a.json`")
	assert.Contains(t, s, "- **fail** `b.json`: 2 issues")
	assert.Contains(t, s, "| Category | Status |")
	assert.Contains(t, errOut.String(), "**Warning:** careful")
}

func TestRenderer_TextNonTTYIsPlain(t *testing.T) {
	r, out, _ := newTest(ModeText, false)
	r.Header(1, "Steps")
	r.StatusLine("a.json", "success", "")
	r.Table([]string{"From", "To"}, [][]string{{"2.0", "3.0"}})

	s := out.String()
	assert.False(t, ansi.MatchString(s))
	assert.Contains(t, s, "Steps")
	assert.Contains(t, s, "✓ a.json")
	assert.Contains(t, s, "┌")
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"passed": 3}))
	assert.Equal(t, "{\n  \"passed\": 3\n}\n", out.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Summary\n", FormatHeader(2, "Summary"))
	assert.Equal(t, "# X\n", FormatHeader(0, "X"))
	assert.Equal(t, "- **Documents:** 4", FormatKeyValue("Documents", "4"))
}
