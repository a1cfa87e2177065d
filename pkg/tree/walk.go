package tree

// Action tells Walk how to proceed after visiting an object.
type Action int

const (
	// Continue descends into the object's current children.
	Continue Action = iota
	// SkipChildren leaves the object's children unvisited.
	SkipChildren
)

// VisitFunc is called once for every object in the tree. It may mutate obj;
// Walk reads obj's children only after the visitor returns, so keys added by
// the visitor are traversed and keys it removed are not.
type VisitFunc func(path Path, obj *Object) Action

// Walk traverses root depth-first. Arrays are transparent: only their
// elements are traversed, in index order. Scalars end the recursion.
//
// The tree must be acyclic. A visitor that links a node into one of its own
// descendants makes Walk run forever.
func Walk(root Value, visit VisitFunc) {
	walk(root, nil, visit)
}

func walk(v Value, path Path, visit VisitFunc) {
	switch node := v.(type) {
	case *Object:
		if visit(path, node) == SkipChildren {
			return
		}
		for _, key := range node.Keys() {
			child, ok := node.Get(key)
			if !ok {
				continue
			}
			walk(child, path.Key(key), visit)
		}
	case *Array:
		for i, item := range node.Items {
			walk(item, path.Index(i), visit)
		}
	}
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch node := v.(type) {
	case *Object:
		out := NewObject()
		for k, child := range node.All() {
			out.Set(k, Clone(child))
		}
		return out
	case *Array:
		items := make([]Value, len(node.Items))
		for i, item := range node.Items {
			items[i] = Clone(item)
		}
		return &Array{Items: items}
	default:
		return v
	}
}

// Equal reports whether a and b are deeply equal, including object key
// order. Numbers compare by literal.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		xk, yk := x.Keys(), y.Keys()
		for i := range xk {
			if xk[i] != yk[i] {
				return false
			}
			xv, _ := x.Get(xk[i])
			yv, _ := y.Get(yk[i])
			if !Equal(xv, yv) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
