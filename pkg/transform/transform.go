// Package transform holds the atomic, idempotent field rules that the
// migration engine applies to document objects.
//
// Every rule checks its own precondition and does nothing when it does not
// hold, so running a rule set over an already-migrated document changes
// nothing. Values a rule declines to transform automatically are recorded as
// manual-review flags and left in place.
package transform

import (
	"sort"

	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// ChangeKind classifies a change made by a rule.
type ChangeKind string

// Change kinds.
const (
	ChangeRename   ChangeKind = "rename"
	ChangeWrap     ChangeKind = "wrap"
	ChangeMerge    ChangeKind = "merge"
	ChangeReorder  ChangeKind = "reorder"
	ChangeClassify ChangeKind = "classify"
)

// Flag marks a value a rule deliberately left untouched.
type Flag struct {
	Path   string `json:"path"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Flag reasons.
const (
	ReasonRange        = "range value"
	ReasonNonNumeric   = "non-numeric value"
	ReasonTargetExists = "target field already present"
	ReasonBadElement   = "array holds a non-numeric element"
	ReasonUnknownShape = "unrecognized object shape"
	ReasonBadUnit      = "unit is not a non-empty string"
)

// Recorder accumulates the changes and flags of one rule run.
type Recorder struct {
	Counts map[ChangeKind]int
	Flags  []Flag
	// Equipment counts assigned equipment keys by category.
	Equipment map[equipment.Category]int
	// Fallbacks counts assignments where no classifier rule matched.
	Fallbacks int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Counts:    make(map[ChangeKind]int),
		Equipment: make(map[equipment.Category]int),
	}
}

// Count records one change of the given kind.
func (r *Recorder) Count(kind ChangeKind) {
	r.Counts[kind]++
}

// Flag records a value left for manual review.
func (r *Recorder) Flag(path tree.Path, field string, v tree.Value, reason string) {
	r.Flags = append(r.Flags, Flag{
		Path:   path.Key(field).String(),
		Field:  field,
		Value:  tree.Compact(v),
		Reason: reason,
	})
}

// Total returns the number of changes across all kinds.
func (r *Recorder) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Kinds returns the change kinds with a non-zero count, sorted.
func (r *Recorder) Kinds() []ChangeKind {
	kinds := make([]ChangeKind, 0, len(r.Counts))
	for k, c := range r.Counts {
		if c > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Context is passed to a rule for each object it is applied to.
type Context struct {
	Path     tree.Path
	Recorder *Recorder
}

// Rule is one atomic object transformation.
type Rule interface {
	Name() string
	Apply(ctx *Context, obj *tree.Object)
}

// Apply walks root and applies rules, in order, to every object.
func Apply(root tree.Value, rules []Rule, rec *Recorder) {
	tree.Walk(root, func(path tree.Path, obj *tree.Object) tree.Action {
		ctx := &Context{Path: path, Recorder: rec}
		for _, r := range rules {
			r.Apply(ctx, obj)
		}
		return tree.Continue
	})
}
