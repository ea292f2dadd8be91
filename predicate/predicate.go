package predicate

import (
	"strings"

	"github.com/hupe1980/idxset/value"
)

// Op represents a comparison operator.
type Op string

const (
	// OpEq represents the equality operator.
	OpEq Op = "="
	// OpLt represents the less than operator.
	OpLt Op = "<"
	// OpLe represents the less than or equal operator.
	OpLe Op = "<="
	// OpGt represents the greater than operator.
	OpGt Op = ">"
	// OpGe represents the greater than or equal operator.
	OpGe Op = ">="
)

// Valid reports whether op is a supported comparison operator.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// IsRange reports whether op is an ordering operator.
func (op Op) IsRange() bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// Flip returns the operator with swapped operands, so that
// `lit op attr` can be written as `attr op.Flip() lit`.
func (op Op) Flip() Op {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}

// Predicate is a node of the boolean query AST.
type Predicate interface {
	// String renders the predicate in the textual query grammar.
	String() string

	predicate()
}

// Comparison compares an attribute against a literal: `Attr Op Value`.
type Comparison struct {
	Attr  string
	Op    Op
	Value value.Value
}

// Membership tests collection containment: `Value IN Attr`.
type Membership struct {
	Value value.Value
	Attr  string
}

// InSet tests whether an attribute equals any literal: `Attr IN (Values...)`.
type InSet struct {
	Attr   string
	Values []value.Value
}

// And is the logical conjunction of two predicates.
type And struct {
	Left  Predicate
	Right Predicate
}

// Or is the logical disjunction of two predicates.
type Or struct {
	Left  Predicate
	Right Predicate
}

// Constant is a literal TRUE or FALSE.
type Constant struct {
	Value bool
}

func (Comparison) predicate() {}
func (Membership) predicate() {}
func (InSet) predicate()      {}
func (And) predicate()        {}
func (Or) predicate()         {}
func (Constant) predicate()   {}

func (c Comparison) String() string {
	return c.Attr + " " + string(c.Op) + " " + c.Value.String()
}

func (m Membership) String() string {
	return m.Value.String() + " IN " + m.Attr
}

func (s InSet) String() string {
	return s.Attr + " IN " + value.Array(s.Values).String()
}

func (a And) String() string {
	return binaryString(a.Left, a.Right, "AND", isAnd)
}

func (o Or) String() string {
	return binaryString(o.Left, o.Right, "OR", isOr)
}

func (c Constant) String() string {
	if c.Value {
		return "TRUE"
	}
	return "FALSE"
}

func isAnd(p Predicate) bool { _, ok := p.(And); return ok }
func isOr(p Predicate) bool  { _, ok := p.(Or); return ok }

// binaryString renders a left-associative chain. A right operand of the same
// kind and any OR nested under AND keep their parentheses so the text parses
// back to an identical tree (AND binds tighter than OR).
func binaryString(left, right Predicate, keyword string, same func(Predicate) bool) string {
	var b strings.Builder
	b.WriteString(operandString(left, keyword, false, same))
	b.WriteString(" ")
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(operandString(right, keyword, true, same))
	return b.String()
}

func operandString(p Predicate, keyword string, right bool, same func(Predicate) bool) string {
	if p == nil {
		return "<nil>"
	}
	wrap := false
	switch {
	case same(p):
		wrap = right
	case keyword == "AND" && isOr(p):
		wrap = true
	}
	if wrap {
		return "(" + p.String() + ")"
	}
	return p.String()
}
