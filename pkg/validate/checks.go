package validate

import (
	"strings"

	"github.com/zohar-ui/ParserZamaActive/pkg/transform"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// Checks returns the built-in checks in report order.
func Checks() []Check {
	return []Check{
		{
			ID:          "ST01",
			Name:        "structure",
			Category:    CategoryStructural,
			Description: "workout_date is a string and sessions is a non-empty array of objects; blocks and items are arrays of objects",
			Blocking:    true,
			Run:         checkStructure,
		},
		{
			ID:          "TY01",
			Name:        "numeric-fields",
			Category:    CategoryTypeSafety,
			Description: "known numeric fields hold numbers or measurement pairs with numeric values, never strings",
			Blocking:    true,
			Run:         checkTypes,
		},
		{
			ID:          "EN01",
			Name:        "block-codes",
			Category:    CategoryEnumeration,
			Description: "block_code is one of the 17 recognised block codes",
			Blocking:    true,
			Run:         checkBlockCodes,
		},
		{
			ID:          "EQ01",
			Name:        "equipment-coverage",
			Category:    CategoryEquipment,
			Description: "every exercise item carries a non-empty equipment_key",
			Run:         checkEquipmentCoverage,
		},
		{
			ID:          "SP01",
			Name:        "prescription-separation",
			Category:    CategorySeparation,
			Description: "raw reps, sets, weight and duration live under prescription or performed",
			Run:         checkSeparation,
		},
	}
}

// containerKeys must hold arrays of objects wherever they appear.
var containerKeys = []string{"sessions", "blocks", "items"}

func checkStructure(doc tree.Value, e *Emitter) {
	root, ok := doc.(*tree.Object)
	if !ok {
		e.Error(nil, "document root must be an object, got %s", kindOf(doc))
		return
	}

	switch v, ok := root.Get("workout_date"); {
	case !ok:
		e.Error(tree.Path{}.Key("workout_date"), "missing required field workout_date")
	case v.Kind() != tree.KindString:
		e.Error(tree.Path{}.Key("workout_date"), "workout_date must be a string, got %s", kindOf(v))
	}

	sessions, ok := root.Get("sessions")
	switch {
	case !ok:
		e.Error(tree.Path{}.Key("sessions"), "missing required field sessions")
	case sessions.Kind() == tree.KindArray && sessions.(*tree.Array).Len() == 0:
		e.Error(tree.Path{}.Key("sessions"), "sessions must not be empty")
	}

	tree.Walk(doc, func(path tree.Path, obj *tree.Object) tree.Action {
		for _, key := range containerKeys {
			v, ok := obj.Get(key)
			if !ok {
				continue
			}
			arr, isArray := v.(*tree.Array)
			if !isArray {
				e.Error(path.Key(key), "%s must be an array, got %s", key, kindOf(v))
				continue
			}
			for i, item := range arr.Items {
				if item.Kind() != tree.KindObject {
					e.Error(path.Key(key).Index(i), "%s entries must be objects, got %s", key, kindOf(item))
				}
			}
		}
		return tree.Continue
	})
}

// numericFields must hold numbers. Measurement pairs are accepted for the
// weight fields, which migration wraps.
var numericFields = []string{
	"target_reps", "target_sets", "actual_reps", "actual_sets",
	"target_duration_sec", "actual_duration_sec",
	"target_weight", "actual_weight",
	"rpe", "rir", "item_sequence",
}

// measurementFields hold measurement pairs once migrated.
var measurementFields = []string{
	"target_load", "actual_load",
	"target_duration", "target_rest",
	"target_amrap_duration", "target_fortime_cap",
	"actual_duration", "actual_time",
	"target_distance", "actual_distance",
	"rest_between_rounds",
}

// pairValueKeys are the numeric members of a measurement or range object.
var pairValueKeys = []string{transform.KeyValue, transform.KeyValueMin, transform.KeyValueMax, "min", "max"}

func checkTypes(doc tree.Value, e *Emitter) {
	checked := 0
	tree.Walk(doc, func(path tree.Path, obj *tree.Object) tree.Action {
		for _, field := range numericFields {
			if v, ok := obj.Get(field); ok {
				checked++
				checkNumeric(e, path.Key(field), field, v)
			}
		}
		for _, field := range measurementFields {
			if v, ok := obj.Get(field); ok {
				checked++
				checkNumeric(e, path.Key(field), field, v)
			}
		}
		return tree.Continue
	})
	e.Detail("%d numeric fields checked", checked)
}

func checkNumeric(e *Emitter, path tree.Path, field string, v tree.Value) {
	switch x := v.(type) {
	case tree.Null, tree.Number:
		return
	case tree.String:
		e.Error(path, "%s holds the string %q; expected a number", field, string(x))
	case *tree.Array:
		for i, item := range x.Items {
			checkNumeric(e, path.Index(i), field, item)
		}
	case *tree.Object:
		found := false
		for _, key := range pairValueKeys {
			member, ok := x.Get(key)
			if !ok {
				continue
			}
			found = true
			switch m := member.(type) {
			case tree.Number, tree.Null:
			case tree.String:
				e.Error(path.Key(key), "%s.%s holds the string %q; expected a number", field, key, string(m))
			default:
				e.Error(path.Key(key), "%s.%s must be a number, got %s", field, key, kindOf(member))
			}
		}
		if !found {
			e.Error(path, "%s is an object without a numeric value", field)
		}
	default:
		e.Error(path, "%s must be a number, got %s", field, kindOf(v))
	}
}

// BlockCodes is the closed set of block codes, grouped by purpose.
var BlockCodes = map[string][]string{
	"preparation":  {"WU", "ACT", "MOB"},
	"strength":     {"STR", "ACC", "HYP"},
	"power":        {"PWR", "WL"},
	"skill":        {"SKILL", "GYM"},
	"conditioning": {"METCON", "INTV", "SS", "HYROX"},
	"recovery":     {"CD", "STRETCH", "BREATH"},
}

var validBlockCodes = func() map[string]bool {
	set := make(map[string]bool)
	for _, codes := range BlockCodes {
		for _, c := range codes {
			set[c] = true
		}
	}
	return set
}()

// IsBlockCode reports whether code is a recognised block code.
func IsBlockCode(code string) bool {
	return validBlockCodes[code]
}

func checkBlockCodes(doc tree.Value, e *Emitter) {
	seen := 0
	tree.Walk(doc, func(path tree.Path, obj *tree.Object) tree.Action {
		v, ok := obj.Get("block_code")
		if !ok {
			return tree.Continue
		}
		switch code := v.(type) {
		case tree.Null:
		case tree.String:
			if strings.TrimSpace(string(code)) == "" {
				break
			}
			seen++
			if !IsBlockCode(string(code)) {
				e.Error(path.Key("block_code"), "block_code %q is not a recognised block code", string(code))
			}
		default:
			seen++
			e.Error(path.Key("block_code"), "block_code must be a string, got %s", kindOf(v))
		}
		return tree.Continue
	})
	e.Detail("%d block codes checked", seen)
}

func checkEquipmentCoverage(doc tree.Value, e *Emitter) {
	var missing []tree.Path
	items := 0
	tree.Walk(doc, func(path tree.Path, obj *tree.Object) tree.Action {
		if !obj.Has("exercise_name") {
			return tree.Continue
		}
		items++
		if !transform.HasEquipment(obj) {
			missing = append(missing, path)
		}
		return tree.Continue
	})

	covered := items - len(missing)
	e.Detail("%d/%d items carry equipment_key", covered, items)
	switch {
	case items == 0:
		e.Warn(nil, "no exercise items found")
	case covered == 0:
		e.Warn(nil, "no exercise items carry equipment_key (0/%d)", items)
	case len(missing) > 0:
		e.Warn(nil, "%d of %d exercise items lack equipment_key", len(missing), items)
		for _, p := range missing {
			e.Info(p, "missing equipment_key")
		}
	}
}

var rawFields = []string{"reps", "sets", "weight", "duration"}

func checkSeparation(doc tree.Value, e *Emitter) {
	tree.Walk(doc, func(path tree.Path, obj *tree.Object) tree.Action {
		if underWrapper(path) {
			return tree.SkipChildren
		}
		if obj.Has("prescription") || obj.Has("performed") {
			return tree.Continue
		}
		var bare []string
		for _, f := range rawFields {
			if obj.Has(f) {
				bare = append(bare, f)
			}
		}
		if len(bare) > 0 {
			e.Warn(path, "raw %s outside prescription/performed", strings.Join(bare, ", "))
		}
		return tree.Continue
	})
}

func underWrapper(path tree.Path) bool {
	for _, seg := range path {
		if !seg.IsIndex && (seg.Key == "prescription" || seg.Key == "performed") {
			return true
		}
	}
	return false
}

func kindOf(v tree.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}
