// Package tree provides the ordered document model shared by the migration
// and validation engines.
//
// A document is a tree of Values. Objects keep their keys in insertion order
// so that re-serialized documents stay diffable and key reordering is
// observable on write-back.
package tree

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is any node of a document tree: *Object, *Array, String, Number,
// Bool or Null.
type Value interface {
	Kind() Kind
}

// Null is the JSON null literal.
type Null struct{}

// Kind implements Value.
func (Null) Kind() Kind { return KindNull }

// Bool is a boolean scalar.
type Bool bool

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

// String is a string scalar.
type String string

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// Number is a numeric scalar stored as its exact literal text, so decoding
// and re-encoding never changes precision or formatting.
type Number string

// Kind implements Value.
func (Number) Kind() Kind { return KindNumber }

// Float64 returns the numeric value of the literal.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int returns a Number for an integer.
func Int(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// Float returns the shortest literal that round-trips f.
func Float(f float64) Number {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

var numericString = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// ParseNumber converts a numeric string such as "90", " 22.5 ", "5." or ".5"
// into a Number. The digits are kept exactly as written; only redundant
// leading zeros, a bare trailing point and a missing leading zero are
// normalised, so "007" becomes "7", "5." becomes "5" and ".5" becomes "0.5".
// It reports false for anything that is not a plain decimal literal.
func ParseNumber(s string) (Number, bool) {
	s = strings.TrimSpace(s)
	if !numericString.MatchString(s) {
		return "", false
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	lit := whole
	if frac != "" {
		lit += "." + frac
	}
	if neg && strings.Trim(lit, "0.") != "" {
		lit = "-" + lit
	}
	return Number(lit), true
}

// Array is an ordered sequence of values.
type Array struct {
	Items []Value
}

// NewArray returns an array holding items.
func NewArray(items ...Value) *Array {
	return &Array{Items: items}
}

// Kind implements Value.
func (*Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Items) }
