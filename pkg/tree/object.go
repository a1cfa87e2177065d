package tree

import "iter"

// Object is an ordered mapping from string keys to values.
// The zero value is not usable; create objects with NewObject.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Kind implements Value.
func (*Object) Kind() Kind { return KindObject }

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns a copy of the keys in order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Set stores v under key. An existing key keeps its position; a new key is
// appended.
func (o *Object) Set(key string, v Value) *Object {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
	return o
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.vals[key]; !ok {
		return false
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Rename moves the value under from to to, keeping its position.
// It does nothing and returns false if from is absent or to already exists.
func (o *Object) Rename(from, to string) bool {
	v, ok := o.vals[from]
	if !ok || from == to {
		return false
	}
	if _, exists := o.vals[to]; exists {
		return false
	}
	for i, k := range o.keys {
		if k == from {
			o.keys[i] = to
			break
		}
	}
	delete(o.vals, from)
	o.vals[to] = v
	return true
}

// Reorder moves the keys listed in prefix (those present) to the front, in
// prefix order, followed by the remaining keys in their original relative
// order. It reports whether the key order changed.
func (o *Object) Reorder(prefix []string) bool {
	next := make([]string, 0, len(o.keys))
	placed := make(map[string]bool, len(prefix))
	for _, k := range prefix {
		if _, ok := o.vals[k]; ok && !placed[k] {
			next = append(next, k)
			placed[k] = true
		}
	}
	for _, k := range o.keys {
		if !placed[k] {
			next = append(next, k)
		}
	}

	changed := false
	for i := range next {
		if next[i] != o.keys[i] {
			changed = true
			break
		}
	}
	o.keys = next
	return changed
}

// All iterates over the entries in order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range o.keys {
			if !yield(k, o.vals[k]) {
				return
			}
		}
	}
}
