package plan

import (
	"fmt"

	"github.com/hupe1980/idxset/predicate"
)

// Build translates a predicate into a logical plan.
//
// And becomes Intersect and Or becomes Union, each flattened across nested
// nodes of the same kind. Leaves become ScanFilters. InSet expands to a Union
// of equality ScanFilters; an empty InSet becomes ScanFilter(FALSE).
// Unsupported shapes fail with *predicate.UnsupportedExpressionError.
func Build(p predicate.Predicate) (Node, error) {
	switch n := p.(type) {
	case nil:
		return nil, &predicate.UnsupportedExpressionError{Reason: "nil predicate"}
	case predicate.Constant:
		return ScanFilter{Predicate: n}, nil
	case predicate.Comparison:
		if err := predicate.Validate(n); err != nil {
			return nil, err
		}
		return ScanFilter{Predicate: n}, nil
	case predicate.Membership:
		if err := predicate.Validate(n); err != nil {
			return nil, err
		}
		return ScanFilter{Predicate: n}, nil
	case predicate.InSet:
		return buildInSet(n)
	case predicate.And:
		children, err := buildOperands(n.Left, n.Right, isIntersect)
		if err != nil {
			return nil, err
		}
		return Intersect{Children: children}, nil
	case predicate.Or:
		children, err := buildOperands(n.Left, n.Right, isUnion)
		if err != nil {
			return nil, err
		}
		return Union{Children: children}, nil
	default:
		return nil, &predicate.UnsupportedExpressionError{Expr: p, Reason: fmt.Sprintf("node type %T", p)}
	}
}

func buildInSet(s predicate.InSet) (Node, error) {
	if err := predicate.Validate(s); err != nil {
		return nil, err
	}
	if len(s.Values) == 0 {
		return ScanFilter{Predicate: predicate.False()}, nil
	}
	children := make([]Node, len(s.Values))
	for i, v := range s.Values {
		children[i] = ScanFilter{Predicate: predicate.Comparison{Attr: s.Attr, Op: predicate.OpEq, Value: v}}
	}
	return Union{Children: children}, nil
}

func buildOperands(left, right predicate.Predicate, same func(Node) ([]Node, bool)) ([]Node, error) {
	var children []Node
	for _, operand := range []predicate.Predicate{left, right} {
		n, err := Build(operand)
		if err != nil {
			return nil, err
		}
		if nested, ok := same(n); ok {
			children = append(children, nested...)
			continue
		}
		children = append(children, n)
	}
	return children, nil
}

func isIntersect(n Node) ([]Node, bool) {
	i, ok := n.(Intersect)
	return i.Children, ok
}

func isUnion(n Node) ([]Node, bool) {
	u, ok := n.(Union)
	return u.Children, ok
}
