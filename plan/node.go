package plan

import (
	"strings"

	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

// Node is a query plan node.
type Node interface {
	// String renders the subtree rooted at the node.
	String() string

	render(b *strings.Builder, depth int)
}

// ScanFilter evaluates Predicate against every object of the collection.
type ScanFilter struct {
	Predicate predicate.Predicate
}

// Filter evaluates Predicate against the objects produced by Child.
type Filter struct {
	Predicate predicate.Predicate
	Child     Node
}

// Intersect returns the objects produced by every child.
type Intersect struct {
	Children []Node
}

// Union returns the objects produced by any child.
type Union struct {
	Children []Node
}

// IndexLookup returns the posting of Value in Index. With Membership set it
// is a collection-containment lookup.
type IndexLookup struct {
	Index      index.Index
	Value      value.Value
	Membership bool
}

// IndexRange returns the objects whose indexed value lies within Range.
type IndexRange struct {
	Index index.Index
	Range index.Range
}

// Empty produces nothing.
type Empty struct{}

func (n ScanFilter) String() string  { return toString(n) }
func (n Filter) String() string      { return toString(n) }
func (n Intersect) String() string   { return toString(n) }
func (n Union) String() string       { return toString(n) }
func (n IndexLookup) String() string { return toString(n) }
func (n IndexRange) String() string  { return toString(n) }
func (n Empty) String() string       { return toString(n) }

func toString(n Node) string {
	var b strings.Builder
	n.render(&b, 0)
	return b.String()
}

func (n ScanFilter) render(b *strings.Builder, _ int) {
	b.WriteString("ScanFilter: ")
	b.WriteString(predicateString(n.Predicate))
}

func (n Filter) render(b *strings.Builder, depth int) {
	b.WriteString("Filter: ")
	b.WriteString(predicateString(n.Predicate))
	writeChild(b, n.Child, depth)
}

func (n Intersect) render(b *strings.Builder, depth int) {
	b.WriteString("Intersect")
	for _, c := range n.Children {
		writeChild(b, c, depth)
	}
}

func (n Union) render(b *strings.Builder, depth int) {
	b.WriteString("Union")
	for _, c := range n.Children {
		writeChild(b, c, depth)
	}
}

func (n IndexLookup) render(b *strings.Builder, _ int) {
	b.WriteString("IndexLookup: ")
	if n.Membership {
		b.WriteString(n.Value.String())
		b.WriteString(" IN ")
		b.WriteString(n.Index.String())
		return
	}
	b.WriteString(n.Index.String())
	b.WriteString(" = ")
	b.WriteString(n.Value.String())
}

func (n IndexRange) render(b *strings.Builder, _ int) {
	b.WriteString("IndexRange: ")
	b.WriteString(n.Range.Format(n.Index.String()))
}

func (Empty) render(b *strings.Builder, _ int) {
	b.WriteString("Empty")
}

func writeChild(b *strings.Builder, child Node, depth int) {
	b.WriteString("\n")
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("  - ")
	if child == nil {
		b.WriteString("<nil>")
		return
	}
	child.render(b, depth+1)
}

func predicateString(p predicate.Predicate) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}

// Children returns the direct inputs of n.
func Children(n Node) []Node {
	switch n := n.(type) {
	case Intersect:
		return n.Children
	case Union:
		return n.Children
	case Filter:
		return []Node{n.Child}
	default:
		return nil
	}
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
