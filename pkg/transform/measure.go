package transform

import (
	"regexp"

	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// Measurement pair keys.
const (
	KeyValue    = "value"
	KeyValueMin = "value_min"
	KeyValueMax = "value_max"
	KeyUnit     = "unit"
)

// Pair returns the measurement {value, unit}.
func Pair(value tree.Number, unit string) *tree.Object {
	return tree.NewObject().
		Set(KeyValue, value).
		Set(KeyUnit, tree.String(unit))
}

// RangePair returns the measurement {value_min, value_max, unit}.
func RangePair(lo, hi tree.Number, unit string) *tree.Object {
	return tree.NewObject().
		Set(KeyValueMin, lo).
		Set(KeyValueMax, hi).
		Set(KeyUnit, tree.String(unit))
}

// IsMeasurement reports whether v already has the measurement pair shape.
func IsMeasurement(v tree.Value) bool {
	obj, ok := v.(*tree.Object)
	if !ok || !obj.Has(KeyUnit) {
		return false
	}
	return obj.Has(KeyValue) || obj.Has(KeyValueMin) || obj.Has(KeyValueMax)
}

var rangeString = regexp.MustCompile(`^\s*-?\d+(?:\.\d+)?\s*(?:-|–|—|to)\s*-?\d+(?:\.\d+)?\s*$`)

// IsRangeString reports whether s is a single string holding a numeric range
// such as "20-30" or "5 to 6".
func IsRangeString(s string) bool {
	return rangeString.MatchString(s)
}

// numeric returns v as a Number when it is a number or a numeric string.
// Otherwise it returns the reason it is not.
func numeric(v tree.Value) (tree.Number, string) {
	switch x := v.(type) {
	case tree.Number:
		return x, ""
	case tree.String:
		if n, ok := tree.ParseNumber(string(x)); ok {
			return n, ""
		}
		if IsRangeString(string(x)) {
			return "", ReasonRange
		}
		return "", ReasonNonNumeric
	case *tree.Object:
		return "", ReasonUnknownShape
	default:
		return "", ReasonNonNumeric
	}
}

type wrapResult int

const (
	wrapNoop wrapResult = iota
	wrapDone
	wrapFlag
)

// wrap converts v into its measurement form. Null and values already in
// measurement form are left alone.
func wrap(v tree.Value, unit string) (tree.Value, wrapResult, string) {
	switch x := v.(type) {
	case tree.Null:
		return v, wrapNoop, ""
	case *tree.Array:
		return wrapArray(x, unit)
	}
	if IsMeasurement(v) {
		return v, wrapNoop, ""
	}
	n, reason := numeric(v)
	if reason != "" {
		return v, wrapFlag, reason
	}
	return Pair(n, unit), wrapDone, ""
}

func wrapArray(arr *tree.Array, unit string) (tree.Value, wrapResult, string) {
	items := make([]tree.Value, len(arr.Items))
	changed := false
	for i, item := range arr.Items {
		if IsMeasurement(item) {
			items[i] = item
			continue
		}
		n, reason := numeric(item)
		if reason != "" {
			if reason == ReasonRange {
				return arr, wrapFlag, ReasonRange
			}
			return arr, wrapFlag, ReasonBadElement
		}
		items[i] = Pair(n, unit)
		changed = true
	}
	if !changed {
		return arr, wrapNoop, ""
	}
	return tree.NewArray(items...), wrapDone, ""
}
