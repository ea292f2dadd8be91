package predicate

import (
	"github.com/hupe1980/idxset/value"
)

// AttrRef names an attribute in the fluent builder.
type AttrRef string

// Attr starts a fluent predicate on the named attribute.
//
// Literals are converted with value.MustFromAny; unsupported literal types
// panic.
func Attr(name string) AttrRef { return AttrRef(name) }

// Eq builds `attr = v`.
func (a AttrRef) Eq(v any) Comparison { return a.cmp(OpEq, v) }

// Lt builds `attr < v`.
func (a AttrRef) Lt(v any) Comparison { return a.cmp(OpLt, v) }

// Le builds `attr <= v`.
func (a AttrRef) Le(v any) Comparison { return a.cmp(OpLe, v) }

// Gt builds `attr > v`.
func (a AttrRef) Gt(v any) Comparison { return a.cmp(OpGt, v) }

// Ge builds `attr >= v`.
func (a AttrRef) Ge(v any) Comparison { return a.cmp(OpGe, v) }

// In builds `attr IN (vs...)`.
func (a AttrRef) In(vs ...any) InSet {
	values := make([]value.Value, len(vs))
	for i, v := range vs {
		values[i] = value.MustFromAny(v)
	}
	return InSet{Attr: string(a), Values: values}
}

// Contains builds the membership test `v IN attr`.
func (a AttrRef) Contains(v any) Membership {
	return Membership{Value: value.MustFromAny(v), Attr: string(a)}
}

func (a AttrRef) cmp(op Op, v any) Comparison {
	return Comparison{Attr: string(a), Op: op, Value: value.MustFromAny(v)}
}

// True returns the constant TRUE predicate.
func True() Constant { return Constant{Value: true} }

// False returns the constant FALSE predicate.
func False() Constant { return Constant{Value: false} }

// AllOf left-folds ps into binary And nodes. AllOf() is TRUE.
func AllOf(ps ...Predicate) Predicate {
	if len(ps) == 0 {
		return True()
	}
	out := ps[0]
	for _, p := range ps[1:] {
		out = And{Left: out, Right: p}
	}
	return out
}

// AnyOf left-folds ps into binary Or nodes. AnyOf() is FALSE.
func AnyOf(ps ...Predicate) Predicate {
	if len(ps) == 0 {
		return False()
	}
	out := ps[0]
	for _, p := range ps[1:] {
		out = Or{Left: out, Right: p}
	}
	return out
}

func (c Comparison) And(other Predicate) And { return And{Left: c, Right: other} }
func (c Comparison) Or(other Predicate) Or   { return Or{Left: c, Right: other} }
func (m Membership) And(other Predicate) And { return And{Left: m, Right: other} }
func (m Membership) Or(other Predicate) Or   { return Or{Left: m, Right: other} }
func (s InSet) And(other Predicate) And      { return And{Left: s, Right: other} }
func (s InSet) Or(other Predicate) Or        { return Or{Left: s, Right: other} }
func (a And) And(other Predicate) And        { return And{Left: a, Right: other} }
func (a And) Or(other Predicate) Or          { return Or{Left: a, Right: other} }
func (o Or) And(other Predicate) And         { return And{Left: o, Right: other} }
func (o Or) Or(other Predicate) Or           { return Or{Left: o, Right: other} }
