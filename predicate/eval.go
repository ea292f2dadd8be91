package predicate

import (
	"github.com/hupe1980/idxset/value"
)

// AttributeReader extracts a named attribute value from an object.
// found is false when the object has no such attribute.
type AttributeReader interface {
	Read(obj any, attr string) (v value.Value, found bool, err error)
}

// Evaluator is the reference scan evaluator.
//
// With Strict unset, a type-incomparable leaf evaluates to false for that
// object. With Strict set, the *ComparisonError is returned and aborts the
// evaluation.
type Evaluator struct {
	Reader AttributeReader
	Strict bool
}

// Eval reports whether obj satisfies p.
//
// Missing attributes and null attribute values never satisfy a leaf and are
// not errors.
func (e Evaluator) Eval(p Predicate, obj any) (bool, error) {
	switch n := p.(type) {
	case Constant:
		return n.Value, nil
	case And:
		ok, err := e.Eval(n.Left, obj)
		if err != nil || !ok {
			return false, err
		}
		return e.Eval(n.Right, obj)
	case Or:
		ok, err := e.Eval(n.Left, obj)
		if err != nil || ok {
			return ok, err
		}
		return e.Eval(n.Right, obj)
	case Comparison:
		return e.evalComparison(n, obj)
	case Membership:
		return e.evalMembership(n, obj)
	case InSet:
		return e.evalInSet(n, obj)
	default:
		return false, Validate(p)
	}
}

func (e Evaluator) evalComparison(c Comparison, obj any) (bool, error) {
	if !c.Op.Valid() {
		return false, Validate(c)
	}

	actual, ok, err := e.read(obj, c.Attr)
	if err != nil || !ok {
		return false, err
	}

	if c.Op == OpEq {
		return value.Equal(actual, c.Value), nil
	}

	cmp, err := value.Compare(actual, c.Value)
	if err != nil {
		return false, e.mismatch(&ComparisonError{
			Attr: c.Attr, Op: string(c.Op), Actual: actual, Literal: c.Value, cause: err,
		})
	}

	switch c.Op {
	case OpLt:
		return cmp < 0, nil
	case OpLe:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	default: // OpGe
		return cmp >= 0, nil
	}
}

func (e Evaluator) evalMembership(m Membership, obj any) (bool, error) {
	actual, ok, err := e.read(obj, m.Attr)
	if err != nil || !ok {
		return false, err
	}

	items, isArray := actual.AsArray()
	if !isArray {
		return false, e.mismatch(&ComparisonError{
			Attr: m.Attr, Op: "CONTAINS", Actual: actual, Literal: m.Value, cause: errNotCollection,
		})
	}

	for _, item := range items {
		if value.Equal(item, m.Value) {
			return true, nil
		}
	}
	return false, nil
}

func (e Evaluator) evalInSet(s InSet, obj any) (bool, error) {
	actual, ok, err := e.read(obj, s.Attr)
	if err != nil || !ok {
		return false, err
	}
	for _, v := range s.Values {
		if value.Equal(actual, v) {
			return true, nil
		}
	}
	return false, nil
}

// read returns found=false for missing and null attributes.
func (e Evaluator) read(obj any, attr string) (value.Value, bool, error) {
	v, ok, err := e.Reader.Read(obj, attr)
	if err != nil || !ok || v.IsNull() {
		return value.Value{}, false, err
	}
	return v, true, nil
}

func (e Evaluator) mismatch(err *ComparisonError) error {
	if e.Strict {
		return err
	}
	return nil
}
