package transform

import (
	"fmt"
	"strings"

	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// RenameField moves From to To, keeping the key's position.
type RenameField struct {
	From, To string
}

// Name implements Rule.
func (r RenameField) Name() string {
	return fmt.Sprintf("rename %s -> %s", r.From, r.To)
}

// Apply implements Rule.
func (r RenameField) Apply(ctx *Context, obj *tree.Object) {
	v, ok := obj.Get(r.From)
	if !ok {
		return
	}
	if obj.Has(r.To) {
		ctx.Recorder.Flag(ctx.Path, r.From, v, ReasonTargetExists)
		return
	}
	obj.Rename(r.From, r.To)
	ctx.Recorder.Count(ChangeRename)
}

// WrapMeasurement replaces a bare number, numeric string or array of numbers
// under From with its {value, unit} form. When To is set and differs from
// From the field is renamed as well. Null values are renamed but not wrapped.
type WrapMeasurement struct {
	From string
	To   string
	Unit string
}

func (r WrapMeasurement) target() string {
	if r.To == "" {
		return r.From
	}
	return r.To
}

// Name implements Rule.
func (r WrapMeasurement) Name() string {
	if r.target() == r.From {
		return fmt.Sprintf("wrap %s [%s]", r.From, r.Unit)
	}
	return fmt.Sprintf("wrap %s -> %s [%s]", r.From, r.target(), r.Unit)
}

// Apply implements Rule.
func (r WrapMeasurement) Apply(ctx *Context, obj *tree.Object) {
	v, ok := obj.Get(r.From)
	if !ok {
		return
	}
	to := r.target()
	rename := to != r.From
	if rename && obj.Has(to) {
		ctx.Recorder.Flag(ctx.Path, r.From, v, ReasonTargetExists)
		return
	}

	wrapped, res, reason := wrap(v, r.Unit)
	if res == wrapFlag {
		ctx.Recorder.Flag(ctx.Path, r.From, v, reason)
		return
	}
	if rename {
		obj.Rename(r.From, to)
		ctx.Recorder.Count(ChangeRename)
	}
	if res == wrapDone {
		obj.Set(to, wrapped)
		ctx.Recorder.Count(ChangeWrap)
	}
}

// MergeRange folds a Min/Max field pair into one {value_min, value_max, unit}
// field stored at To, in the position Min held.
type MergeRange struct {
	Min, Max string
	To       string
	Unit     string
}

// Name implements Rule.
func (r MergeRange) Name() string {
	return fmt.Sprintf("merge %s + %s -> %s [%s]", r.Min, r.Max, r.To, r.Unit)
}

// Apply implements Rule.
func (r MergeRange) Apply(ctx *Context, obj *tree.Object) {
	minV, hasMin := obj.Get(r.Min)
	maxV, hasMax := obj.Get(r.Max)
	if !hasMin || !hasMax {
		return
	}
	if obj.Has(r.To) && r.To != r.Min && r.To != r.Max {
		ctx.Recorder.Flag(ctx.Path, r.Min, minV, ReasonTargetExists)
		return
	}

	lo, reason := numeric(minV)
	if reason != "" {
		ctx.Recorder.Flag(ctx.Path, r.Min, minV, reason)
		return
	}
	hi, reason := numeric(maxV)
	if reason != "" {
		ctx.Recorder.Flag(ctx.Path, r.Max, maxV, reason)
		return
	}

	obj.Delete(r.Max)
	if r.To != r.Min {
		obj.Rename(r.Min, r.To)
	}
	obj.Set(r.To, RangePair(lo, hi, r.Unit))
	ctx.Recorder.Count(ChangeMerge)
}

// MergeUnit folds a separate unit field into the value fields that share it.
// Each bare value in Values becomes {value, unit}. The unit field is dropped
// once every present value is in measurement form.
type MergeUnit struct {
	Values  []string
	UnitKey string
}

// Name implements Rule.
func (r MergeUnit) Name() string {
	return fmt.Sprintf("merge %s + %s", strings.Join(r.Values, ", "), r.UnitKey)
}

// Apply implements Rule.
func (r MergeUnit) Apply(ctx *Context, obj *tree.Object) {
	uv, ok := obj.Get(r.UnitKey)
	if !ok {
		return
	}
	us, ok := uv.(tree.String)
	unit := strings.TrimSpace(string(us))
	if !ok || unit == "" {
		ctx.Recorder.Flag(ctx.Path, r.UnitKey, uv, ReasonBadUnit)
		return
	}

	merged, blocked := 0, 0
	for _, field := range r.Values {
		v, ok := obj.Get(field)
		if !ok {
			continue
		}
		wrapped, res, reason := wrap(v, unit)
		switch res {
		case wrapDone:
			obj.Set(field, wrapped)
			merged++
		case wrapFlag:
			ctx.Recorder.Flag(ctx.Path, field, v, reason)
			blocked++
		}
	}
	for range merged {
		ctx.Recorder.Count(ChangeMerge)
	}
	if merged > 0 && blocked == 0 {
		obj.Delete(r.UnitKey)
	}
}

// DefaultItemPrefix is the canonical leading key order of an exercise item.
var DefaultItemPrefix = []string{"item_sequence", "exercise_name", "equipment_key", "prescription", "performed"}

// itemMarkers identify objects that represent an exercise item.
var itemMarkers = []string{"exercise_name", "exercises", "exercise_options"}

// IsItem reports whether obj plausibly represents an exercise item.
func IsItem(obj *tree.Object) bool {
	for _, k := range itemMarkers {
		if obj.Has(k) {
			return true
		}
	}
	return false
}

// ReorderItem rebuilds item objects with Prefix first and every other key
// after it in original relative order. A nil Prefix uses DefaultItemPrefix.
type ReorderItem struct {
	Prefix []string
}

// Name implements Rule.
func (r ReorderItem) Name() string {
	return "reorder item keys"
}

// Apply implements Rule.
func (r ReorderItem) Apply(ctx *Context, obj *tree.Object) {
	if !IsItem(obj) {
		return
	}
	prefix := r.Prefix
	if prefix == nil {
		prefix = DefaultItemPrefix
	}
	if obj.Reorder(prefix) {
		ctx.Recorder.Count(ChangeReorder)
	}
}

// ClassifyEquipment assigns equipment_key from exercise_name on objects that
// lack one. A null or empty equipment_key counts as missing.
type ClassifyEquipment struct {
	Classifier *equipment.Classifier
}

// Name implements Rule.
func (r ClassifyEquipment) Name() string {
	return "classify equipment"
}

// Apply implements Rule.
func (r ClassifyEquipment) Apply(ctx *Context, obj *tree.Object) {
	nameV, ok := obj.Get("exercise_name")
	if !ok || HasEquipment(obj) {
		return
	}
	name, _ := nameV.(tree.String)

	c := r.Classifier
	if c == nil {
		c = equipment.Default()
	}
	cat, matched := c.Match(string(name))
	obj.Set("equipment_key", tree.String(cat.String()))

	ctx.Recorder.Count(ChangeClassify)
	ctx.Recorder.Equipment[cat]++
	if !matched {
		ctx.Recorder.Fallbacks++
	}
}

// HasEquipment reports whether obj carries a non-empty equipment_key.
func HasEquipment(obj *tree.Object) bool {
	v, ok := obj.Get("equipment_key")
	if !ok {
		return false
	}
	switch x := v.(type) {
	case tree.Null:
		return false
	case tree.String:
		return strings.TrimSpace(string(x)) != ""
	default:
		return true
	}
}
