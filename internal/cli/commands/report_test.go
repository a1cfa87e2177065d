package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohar-ui/ParserZamaActive/internal/batch"
	"github.com/zohar-ui/ParserZamaActive/internal/cli/output"
	"github.com/zohar-ui/ParserZamaActive/internal/cli/testutil"
	"github.com/zohar-ui/ParserZamaActive/internal/state"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
)

func migrateSummary() *batch.Summary {
	refused := errors.New("refusing to rewrite: YAML comments would be lost")
	return batch.Summarize(state.RunKindMigrate, []batch.Outcome{
		{Path: "/c/a.json", Changed: true, Written: true, Migration: &migrate.Report{}},
		{Path: "/c/b.json", Migration: &migrate.Report{}},
		{Path: "/c/w.yaml", Err: refused, Error: refused.Error()},
	})
}

func TestRenderMigrateOutcomes(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	s := migrateSummary()

	renderMigrateOutcomes(tr.Renderer, "/c", s, true)
	testutil.AssertOutputMode(t, tr, output.ModeMarkdown)
	testutil.AssertValidMarkdown(t, tr.Output())
	testutil.AssertContains(t, tr.Output(), "`a.json`: would update")
	testutil.AssertContains(t, tr.Output(), "`b.json`: no changes")
	testutil.AssertContains(t, tr.Output(), "**fail** `w.yaml`: refusing to rewrite")
	testutil.AssertNotContains(t, tr.Output(), "/c/")

	tr.Reset()
	assert.Empty(t, tr.Output())

	renderMigrateOutcomes(tr.Renderer, "/c", s, false)
	testutil.AssertContains(t, tr.Output(), "`a.json`: updated")
	testutil.AssertNotContains(t, tr.Output(), "would update")
}

func TestRenderMigrateSummary(t *testing.T) {
	tr := testutil.NewTestRendererText()
	renderMigrateSummary(tr.Renderer, migrateSummary(), false)

	testutil.AssertOutputMode(t, tr, output.ModeText)
	testutil.AssertContains(t, tr.Output(), "Summary")
	testutil.AssertContains(t, tr.Output(), "Updated")
	testutil.AssertContains(t, tr.Output(), "Unchanged")
	testutil.AssertNotContains(t, tr.Output(), "Would update")
	assert.Empty(t, tr.ErrorOutput())
}

func TestRenderValidateSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary batch.Summary
		out     string
		errOut  string
	}{
		{
			name:    "all passed",
			summary: batch.Summary{Documents: 2, Passed: 2, Checked: 2},
			out:     "**PRODUCTION READY**",
		},
		{
			name:    "failures warn on stderr",
			summary: batch.Summary{Documents: 2, Passed: 1, Failed: 1, Checked: 2},
			errOut:  "> **Warning:** NEEDS WORK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testutil.NewTestRendererAuto()
			require.Equal(t, output.ModeMarkdown, tr.EffectiveMode(), "non-TTY auto renders markdown")

			renderValidateSummary(tr.Renderer, &tt.summary)
			testutil.AssertOutputMode(t, tr, output.ModeMarkdown)
			testutil.AssertContains(t, tr.Output(), "## Summary")
			if tt.out != "" {
				testutil.AssertContains(t, tr.Output(), tt.out)
				assert.Empty(t, tr.ErrorOutput())
			}
			if tt.errOut != "" {
				testutil.AssertContains(t, tr.ErrorOutput(), tt.errOut)
			}
		})
	}
}

func TestRenderSummaryJSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()
	require.NoError(t, tr.JSON(migrateSummary()))

	testutil.AssertOutputMode(t, tr, output.ModeJSON)
	testutil.AssertContains(t, tr.Output(), `"changed": 1`)
	testutil.AssertContains(t, tr.Output(), `"errors": 1`)
	testutil.AssertNotContains(t, tr.Output(), "**")
}
