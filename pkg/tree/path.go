package tree

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a node from the document root.
type Path []Segment

// Key returns a new path extended by an object key.
func (p Path) Key(key string) Path {
	return append(p[:len(p):len(p)], Segment{Key: key})
}

// Index returns a new path extended by an array index.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], Segment{Index: i, IsIndex: true})
}

// Last returns the final key of the path, or "" when the path is empty or
// ends in an index.
func (p Path) Last() string {
	if len(p) == 0 || p[len(p)-1].IsIndex {
		return ""
	}
	return p[len(p)-1].Key
}

// String renders the path as sessions[0].blocks[2].items[1].exercise_name.
// The root path renders as "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}
