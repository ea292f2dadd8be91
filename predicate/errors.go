package predicate

import (
	"errors"
	"fmt"

	"github.com/hupe1980/idxset/value"
)

// ErrUnsupportedExpression is returned for predicate shapes outside the
// supported comparison/membership/boolean set.
var ErrUnsupportedExpression = errors.New("unsupported expression")

var errNotCollection = fmt.Errorf("%w: attribute is not a collection", value.ErrIncomparable)

// UnsupportedExpressionError describes a predicate node that cannot be
// planned or evaluated.
//
// errors.Is(err, ErrUnsupportedExpression) reports true.
type UnsupportedExpressionError struct {
	Expr   Predicate
	Reason string
}

func (e *UnsupportedExpressionError) Error() string {
	if e.Expr == nil {
		return fmt.Sprintf("unsupported expression: %s", e.Reason)
	}
	return fmt.Sprintf("unsupported expression %q: %s", e.Expr.String(), e.Reason)
}

func (e *UnsupportedExpressionError) Unwrap() error { return ErrUnsupportedExpression }

// ComparisonError reports a literal that cannot be compared with an
// object's attribute value, e.g. a string against a numeric attribute.
//
// The original underlying error can be accessed via errors.Unwrap and
// matches value.ErrIncomparable.
type ComparisonError struct {
	Attr    string
	Op      string
	Actual  value.Value
	Literal value.Value
	cause   error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("cannot compare %s (%s) %s %s (%s)",
		e.Attr, e.Actual.Kind, e.Op, e.Literal, e.Literal.Kind)
}

func (e *ComparisonError) Unwrap() error { return e.cause }

// Validate checks that p only uses supported node shapes.
func Validate(p Predicate) error {
	switch n := p.(type) {
	case nil:
		return &UnsupportedExpressionError{Reason: "nil predicate"}
	case Comparison:
		if !n.Op.Valid() {
			return &UnsupportedExpressionError{Expr: n, Reason: fmt.Sprintf("operator %q", n.Op)}
		}
		if n.Attr == "" {
			return &UnsupportedExpressionError{Expr: n, Reason: "empty attribute name"}
		}
		return nil
	case Membership:
		if n.Attr == "" {
			return &UnsupportedExpressionError{Expr: n, Reason: "empty attribute name"}
		}
		return nil
	case InSet:
		if n.Attr == "" {
			return &UnsupportedExpressionError{Expr: n, Reason: "empty attribute name"}
		}
		return nil
	case And:
		if err := Validate(n.Left); err != nil {
			return err
		}
		return Validate(n.Right)
	case Or:
		if err := Validate(n.Left); err != nil {
			return err
		}
		return Validate(n.Right)
	case Constant:
		return nil
	default:
		return &UnsupportedExpressionError{Expr: p, Reason: fmt.Sprintf("node type %T", p)}
	}
}
