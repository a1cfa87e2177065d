package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohar-ui/ParserZamaActive/pkg/core"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

const validDoc = `{
  "workout_date": "2025-11-02",
  "sessions": [
    {
      "blocks": [
        {
          "block_code": "STR",
          "items": [
            {
              "item_sequence": 1,
              "exercise_name": "Back Squat",
              "equipment_key": "barbell",
              "prescription": {"target_sets": 5, "target_reps": 5, "target_weight": {"value": 100, "unit": "kg"}},
              "performed": {"actual_reps": [5, 5, 5, 5, 4], "actual_weight": {"value_min": 95, "value_max": 100, "unit": "kg"}}
            }
          ]
        },
        {
          "block_code": "",
          "circuit_config": {"rest_between_rounds": {"value": 90, "unit": "sec"}},
          "items": [
            {
              "item_sequence": 1,
              "exercise_name": "Row",
              "equipment_key": "rowing_machine",
              "prescription": {"target_distance": {"value": 500, "unit": "m"}, "rpe": null}
            }
          ]
        }
      ]
    }
  ]
}`

func decode(t *testing.T, s string) tree.Value {
	t.Helper()
	v, err := tree.DecodeJSON([]byte(s))
	require.NoError(t, err)
	return v
}

func statusOf(t *testing.T, r *Report, c Category) core.Status {
	t.Helper()
	res, ok := r.Result(c)
	require.True(t, ok, "no result for %s", c)
	return res.Status
}

func TestValidate_ValidDocument(t *testing.T) {
	r := New().Validate(decode(t, validDoc))

	assert.True(t, r.OK())
	assert.Equal(t, 5, r.Passed, "issues: %+v", r.Issues)
	assert.Empty(t, r.Issues)
	assert.Equal(t, core.StatusPass, r.Status())
}

func TestValidate_DoesNotMutate(t *testing.T) {
	doc := decode(t, `{"sessions": "x", "items": [{"exercise_name": "DB Row", "reps": "10"}]}`)
	before := tree.Clone(doc)
	New().Validate(doc)
	assert.True(t, tree.Equal(before, doc))
}

func TestValidate_UnknownBlockCode(t *testing.T) {
	doc := decode(t, `{
		"workout_date": "2025-11-02",
		"sessions": [{"blocks": [{"block_code": "WU"}, {"block_code": "XYZ"}]}]
	}`)
	r := New().Validate(doc)

	issues := r.IssuesIn(CategoryEnumeration)
	require.Len(t, issues, 1)
	assert.Equal(t, "sessions[0].blocks[1].block_code", issues[0].Path)
	assert.Contains(t, issues[0].Message, `"XYZ"`)
	assert.Equal(t, core.StatusFail, statusOf(t, r, CategoryEnumeration))
}

func TestValidate_IndependentCategories(t *testing.T) {
	// Structurally broken (no workout_date, sessions not an array) yet every
	// other category still reports.
	doc := decode(t, `{
		"sessions": {"blocks": [{"block_code": "NOPE", "items": [
			{"exercise_name": "DB Row", "target_reps": "10", "reps": 10}
		]}]}
	}`)
	r := New().Validate(doc)

	require.Len(t, r.Categories, 5)
	assert.Equal(t, core.StatusFail, statusOf(t, r, CategoryStructural))
	assert.Equal(t, core.StatusFail, statusOf(t, r, CategoryTypeSafety))
	assert.Equal(t, core.StatusFail, statusOf(t, r, CategoryEnumeration))
	assert.Equal(t, core.StatusWarn, statusOf(t, r, CategoryEquipment))
	assert.Equal(t, core.StatusWarn, statusOf(t, r, CategorySeparation))
	assert.Equal(t, 3, r.Failed)
	assert.Equal(t, 2, r.Warnings)
	assert.False(t, r.OK())
}

func TestStructure(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantPaths []string
	}{
		{name: "root not object", doc: `[1]`, wantPaths: []string{"$"}},
		{name: "missing fields", doc: `{}`, wantPaths: []string{"workout_date", "sessions"}},
		{name: "date not string", doc: `{"workout_date": 20251102, "sessions": [{}]}`, wantPaths: []string{"workout_date"}},
		{name: "empty sessions", doc: `{"workout_date": "d", "sessions": []}`, wantPaths: []string{"sessions"}},
		{name: "sessions not array", doc: `{"workout_date": "d", "sessions": {}}`, wantPaths: []string{"sessions"}},
		{name: "session not object", doc: `{"workout_date": "d", "sessions": [1]}`, wantPaths: []string{"sessions[0]"}},
		{name: "items not array", doc: `{"workout_date": "d", "sessions": [{"blocks": [{"items": "x"}]}]}`, wantPaths: []string{"sessions[0].blocks[0].items"}},
		{name: "ok", doc: `{"workout_date": "d", "sessions": [{"blocks": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewWithChecks(Checks()[0]).Validate(decode(t, tt.doc))
			var paths []string
			for _, is := range r.Issues {
				paths = append(paths, is.Path)
			}
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}

func TestTypeSafety(t *testing.T) {
	tests := []struct {
		name      string
		item      string
		wantPaths []string
	}{
		{name: "numbers", item: `{"target_reps": 5, "rpe": 7.5, "rir": null}`},
		{name: "numeric string rejected", item: `{"target_reps": "5"}`, wantPaths: []string{"x.target_reps"}},
		{name: "array element", item: `{"actual_reps": [5, "4"]}`, wantPaths: []string{"x.actual_reps[1]"}},
		{name: "measurement ok", item: `{"target_weight": {"value": 60, "unit": "kg"}}`},
		{name: "measurement string value", item: `{"target_load": {"value": "60", "unit": "kg"}}`, wantPaths: []string{"x.target_load.value"}},
		{name: "range measurement", item: `{"target_weight": {"value_min": 60, "value_max": "70", "unit": "kg"}}`, wantPaths: []string{"x.target_weight.value_max"}},
		{name: "object without value", item: `{"target_distance": {"unit": "m"}}`, wantPaths: []string{"x.target_distance"}},
		{name: "bool", item: `{"item_sequence": true}`, wantPaths: []string{"x.item_sequence"}},
		{name: "unlisted fields ignored", item: `{"target_weight_kg": "60-70", "tempo": "3-0-2-0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewWithChecks(Checks()[1]).Validate(decode(t, `{"x": `+tt.item+`}`))
			var paths []string
			for _, is := range r.Issues {
				paths = append(paths, is.Path)
				assert.Equal(t, core.SeverityError, is.Severity)
			}
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}

func TestEquipmentCoverage(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantStatus core.Status
		wantDetail string
	}{
		{
			name:       "full",
			doc:        `{"items": [{"exercise_name": "A", "equipment_key": "box"}]}`,
			wantStatus: core.StatusPass,
			wantDetail: "1/1 items carry equipment_key",
		},
		{
			name:       "partial",
			doc:        `{"items": [{"exercise_name": "A", "equipment_key": "box"}, {"exercise_name": "B", "equipment_key": ""}]}`,
			wantStatus: core.StatusWarn,
			wantDetail: "1/2 items carry equipment_key",
		},
		{
			name:       "zero",
			doc:        `{"items": [{"exercise_name": "A"}]}`,
			wantStatus: core.StatusWarn,
			wantDetail: "0/1 items carry equipment_key",
		},
		{
			name:       "no items",
			doc:        `{"items": []}`,
			wantStatus: core.StatusWarn,
			wantDetail: "0/0 items carry equipment_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewWithChecks(Checks()[3]).Validate(decode(t, tt.doc))
			res, ok := r.Result(CategoryEquipment)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantDetail, res.Detail)
			assert.Zero(t, res.Errors, "coverage never fails a document")
		})
	}
}

func TestSeparation(t *testing.T) {
	doc := decode(t, `{"items": [
		{"exercise_name": "A", "reps": 10, "weight": 20},
		{"exercise_name": "B", "prescription": {"reps": 10}, "performed": [{"reps": 9}]},
		{"exercise_name": "C", "sets": 3, "performed": {}}
	]}`)
	r := NewWithChecks(Checks()[4]).Validate(doc)

	require.Len(t, r.Issues, 1)
	assert.Equal(t, "items[0]", r.Issues[0].Path)
	assert.Equal(t, "raw reps, weight outside prescription/performed", r.Issues[0].Message)
	assert.Equal(t, core.SeverityWarning, r.Issues[0].Severity)
	assert.True(t, r.OK(), "separation is advisory")
}

func TestValidator_Disable(t *testing.T) {
	v := New().Disable("SP01", "EQ01")
	assert.Len(t, v.Checks(), 3)

	r := v.Validate(decode(t, `{"workout_date": "d", "sessions": [{"reps": 1}]}`))
	assert.Len(t, r.Categories, 3)
	_, ok := r.Result(CategorySeparation)
	assert.False(t, ok)
}

func TestBlockCodes(t *testing.T) {
	n := 0
	for _, codes := range BlockCodes {
		n += len(codes)
	}
	assert.Equal(t, 17, n)
	assert.Len(t, BlockCodes, 6)
	assert.True(t, IsBlockCode("HYROX"))
	assert.False(t, IsBlockCode("hyrox"))
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "PRODUCTION READY", Verdict(19, 20))
	assert.Equal(t, "GOOD, MINOR ISSUES", Verdict(18, 20))
	assert.Equal(t, "NEEDS WORK", Verdict(1, 20))
	assert.Equal(t, "NO DOCUMENTS", Verdict(0, 0))
}
