package transform

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

func parse(t *testing.T, s string) tree.Value {
	t.Helper()
	v, err := tree.DecodeJSON([]byte(s))
	require.NoError(t, err)
	return v
}

func render(t *testing.T, v tree.Value) string {
	t.Helper()
	out, err := tree.MarshalJSON(v)
	require.NoError(t, err)
	return string(out)
}

func TestRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []Rule
		input     string
		want      string
		wantKinds map[ChangeKind]int
		wantFlags []string
	}{
		{
			name:      "rename keeps position",
			rules:     []Rule{RenameField{From: "old", To: "new"}},
			input:     `{"a": 1, "old": 2, "b": 3}`,
			want:      `{"a": 1, "new": 2, "b": 3}`,
			wantKinds: map[ChangeKind]int{ChangeRename: 1},
		},
		{
			name:      "rename conflict is flagged",
			rules:     []Rule{RenameField{From: "old", To: "new"}},
			input:     `{"old": 2, "new": 3}`,
			want:      `{"old": 2, "new": 3}`,
			wantFlags: []string{ReasonTargetExists},
		},
		{
			name:      "rest between rounds",
			rules:     []Rule{WrapMeasurement{From: "rest_between_rounds_sec", To: "rest_between_rounds", Unit: "sec"}},
			input:     `{"circuit_config": {"rounds": 3, "rest_between_rounds_sec": 90}}`,
			want:      `{"circuit_config": {"rounds": 3, "rest_between_rounds": {"value": 90, "unit": "sec"}}}`,
			wantKinds: map[ChangeKind]int{ChangeRename: 1, ChangeWrap: 1},
		},
		{
			name:      "wrap numeric string",
			rules:     []Rule{WrapMeasurement{From: "target_weight_kg", To: "target_weight", Unit: "kg"}},
			input:     `{"target_weight_kg": " 22.50 "}`,
			want:      `{"target_weight": {"value": 22.5, "unit": "kg"}}`,
			wantKinds: map[ChangeKind]int{ChangeRename: 1, ChangeWrap: 1},
		},
		{
			name:      "wrap in place",
			rules:     []Rule{WrapMeasurement{From: "target_load", Unit: "kg"}},
			input:     `{"target_load": 60}`,
			want:      `{"target_load": {"value": 60, "unit": "kg"}}`,
			wantKinds: map[ChangeKind]int{ChangeWrap: 1},
		},
		{
			name:      "wrap array",
			rules:     []Rule{WrapMeasurement{From: "target_load", Unit: "kg"}},
			input:     `{"target_load": [60, "62.5", {"value": 65, "unit": "kg"}]}`,
			want:      `{"target_load": [{"value": 60, "unit": "kg"}, {"value": 62.5, "unit": "kg"}, {"value": 65, "unit": "kg"}]}`,
			wantKinds: map[ChangeKind]int{ChangeWrap: 1},
		},
		{
			name:      "array with bad element is flagged",
			rules:     []Rule{WrapMeasurement{From: "target_load", Unit: "kg"}},
			input:     `{"target_load": [60, "heavy"]}`,
			want:      `{"target_load": [60, "heavy"]}`,
			wantFlags: []string{ReasonBadElement},
		},
		{
			name:      "range string is flagged and untouched",
			rules:     []Rule{WrapMeasurement{From: "target_weight_kg", To: "target_weight", Unit: "kg"}},
			input:     `{"target_weight_kg": "20-30"}`,
			want:      `{"target_weight_kg": "20-30"}`,
			wantFlags: []string{ReasonRange},
		},
		{
			name:      "non-numeric string is left for validation",
			rules:     []Rule{WrapMeasurement{From: "target_weight_kg", To: "target_weight", Unit: "kg"}},
			input:     `{"target_weight_kg": "bodyweight"}`,
			want:      `{"target_weight_kg": "bodyweight"}`,
			wantFlags: []string{ReasonNonNumeric},
		},
		{
			name:      "null is renamed not wrapped",
			rules:     []Rule{WrapMeasurement{From: "actual_weight_kg", To: "actual_weight", Unit: "kg"}},
			input:     `{"actual_weight_kg": null}`,
			want:      `{"actual_weight": null}`,
			wantKinds: map[ChangeKind]int{ChangeRename: 1},
		},
		{
			name:      "merge range",
			rules:     []Rule{MergeRange{Min: "target_weight_kg_min", Max: "target_weight_kg_max", To: "target_weight", Unit: "kg"}},
			input:     `{"a": 1, "target_weight_kg_min": 40, "b": 2, "target_weight_kg_max": "45"}`,
			want:      `{"a": 1, "target_weight": {"value_min": 40, "value_max": 45, "unit": "kg"}, "b": 2}`,
			wantKinds: map[ChangeKind]int{ChangeMerge: 1},
		},
		{
			name:  "merge range needs both",
			rules: []Rule{MergeRange{Min: "target_weight_kg_min", Max: "target_weight_kg_max", To: "target_weight", Unit: "kg"}},
			input: `{"target_weight_kg_min": 40}`,
			want:  `{"target_weight_kg_min": 40}`,
		},
		{
			name:      "merge unit field",
			rules:     []Rule{MergeUnit{Values: []string{"target_distance", "actual_distance"}, UnitKey: "distance_unit"}},
			input:     `{"target_distance": 400, "distance_unit": "m", "actual_distance": "380"}`,
			want:      `{"target_distance": {"value": 400, "unit": "m"}, "actual_distance": {"value": 380, "unit": "m"}}`,
			wantKinds: map[ChangeKind]int{ChangeMerge: 2},
		},
		{
			name:      "merge unit keeps unit when a value is blocked",
			rules:     []Rule{MergeUnit{Values: []string{"target_distance", "actual_distance"}, UnitKey: "distance_unit"}},
			input:     `{"target_distance": 400, "distance_unit": "m", "actual_distance": "300-400"}`,
			want:      `{"target_distance": {"value": 400, "unit": "m"}, "distance_unit": "m", "actual_distance": "300-400"}`,
			wantKinds: map[ChangeKind]int{ChangeMerge: 1},
			wantFlags: []string{ReasonRange},
		},
		{
			name:      "reorder item",
			rules:     []Rule{ReorderItem{}},
			input:     `{"notes": "x", "performed": {}, "exercise_name": "Row", "item_sequence": 1}`,
			want:      `{"item_sequence": 1, "exercise_name": "Row", "performed": {}, "notes": "x"}`,
			wantKinds: map[ChangeKind]int{ChangeReorder: 1},
		},
		{
			name:  "reorder ignores non-items",
			rules: []Rule{ReorderItem{}},
			input: `{"notes": "x", "item_sequence": 1}`,
			want:  `{"notes": "x", "item_sequence": 1}`,
		},
		{
			name:      "classify fills empty key",
			rules:     []Rule{ClassifyEquipment{}},
			input:     `{"exercise_name": "KB Swing", "equipment_key": ""}`,
			want:      `{"exercise_name": "KB Swing", "equipment_key": "kettlebell"}`,
			wantKinds: map[ChangeKind]int{ChangeClassify: 1},
		},
		{
			name:  "classify keeps existing key",
			rules: []Rule{ClassifyEquipment{}},
			input: `{"exercise_name": "KB Swing", "equipment_key": "dumbbell"}`,
			want:  `{"exercise_name": "KB Swing", "equipment_key": "dumbbell"}`,
		},
		{
			name:      "classify non-string name falls back",
			rules:     []Rule{ClassifyEquipment{}},
			input:     `{"exercise_name": 42}`,
			want:      `{"exercise_name": 42, "equipment_key": "bodyweight"}`,
			wantKinds: map[ChangeKind]int{ChangeClassify: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.input)
			rec := NewRecorder()
			Apply(doc, tt.rules, rec)

			assert.Equal(t, render(t, parse(t, tt.want)), render(t, doc), spew.Sdump(rec))

			for kind, n := range tt.wantKinds {
				assert.Equal(t, n, rec.Counts[kind], "count for %s", kind)
			}
			if tt.wantKinds == nil {
				assert.Zero(t, rec.Total())
			}

			var reasons []string
			for _, f := range rec.Flags {
				reasons = append(reasons, f.Reason)
			}
			assert.Equal(t, tt.wantFlags, reasons)

			// Every rule is idempotent.
			before := tree.Clone(doc)
			again := NewRecorder()
			Apply(doc, tt.rules, again)
			assert.True(t, tree.Equal(before, doc), "second application changed the document")
			assert.Zero(t, again.Total(), "second application recorded changes: %v", again.Counts)
		})
	}
}

func TestClassifyThenReorder(t *testing.T) {
	doc := parse(t, `{"exercise_name": "Thruster", "item_sequence": 2, "reps": 10}`)
	rec := NewRecorder()
	Apply(doc, []Rule{ClassifyEquipment{}, ReorderItem{}}, rec)

	obj := doc.(*tree.Object)
	assert.Equal(t, []string{"item_sequence", "exercise_name", "equipment_key", "reps"}, obj.Keys())
	key, _ := obj.Get("equipment_key")
	assert.Equal(t, tree.String("barbell"), key)
	assert.Equal(t, 1, rec.Equipment[equipment.Barbell])
	assert.Zero(t, rec.Fallbacks)
}

func TestWrapRoundTripPreservesValue(t *testing.T) {
	for _, literal := range []string{"0", "90", "102.5", "0.1", "12345678901234567890", "-7.25"} {
		t.Run(literal, func(t *testing.T) {
			doc := parse(t, `{"target_load": `+literal+`}`)
			Apply(doc, []Rule{WrapMeasurement{From: "target_load", Unit: "kg"}}, NewRecorder())

			pair, _ := doc.(*tree.Object).Get("target_load")
			value, _ := pair.(*tree.Object).Get(KeyValue)
			unit, _ := pair.(*tree.Object).Get(KeyUnit)
			assert.Equal(t, tree.Number(literal), value)
			assert.Equal(t, tree.String("kg"), unit)
		})
	}
}

func TestFlagPath(t *testing.T) {
	doc := parse(t, `{"sessions": [{"blocks": [{"items": [{"target_weight_kg": "60-70"}]}]}]}`)
	rec := NewRecorder()
	Apply(doc, []Rule{WrapMeasurement{From: "target_weight_kg", To: "target_weight", Unit: "kg"}}, rec)

	require.Len(t, rec.Flags, 1)
	assert.Equal(t, Flag{
		Path:   "sessions[0].blocks[0].items[0].target_weight_kg",
		Field:  "target_weight_kg",
		Value:  "60-70",
		Reason: ReasonRange,
	}, rec.Flags[0])
}

func TestIsRangeString(t *testing.T) {
	tests := map[string]bool{
		"20-30":   true,
		"5 to 6":  true,
		"7.5–8.5": true,
		"-5":      false,
		"3-0-2-0": false,
		"heavy":   false,
		"20":      false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsRangeString(in), in)
	}
}
