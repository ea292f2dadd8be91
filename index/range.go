package index

import (
	"strings"

	"github.com/hupe1980/idxset/value"
)

// Bound is one end of a Range.
type Bound struct {
	Value     value.Value
	Inclusive bool
}

func (b Bound) symbol() string {
	if b.Inclusive {
		return "<="
	}
	return "<"
}

// Range is an interval over one order class. A nil bound is unbounded.
type Range struct {
	Lower *Bound
	Upper *Bound
}

// Above returns the range `v < x` (or `v <= x` when inclusive).
func Above(v value.Value, inclusive bool) Range {
	return Range{Lower: &Bound{Value: v, Inclusive: inclusive}}
}

// Below returns the range `x < v` (or `x <= v` when inclusive).
func Below(v value.Value, inclusive bool) Range {
	return Range{Upper: &Bound{Value: v, Inclusive: inclusive}}
}

// Point returns the range `v <= x <= v`.
func Point(v value.Value) Range {
	return Range{
		Lower: &Bound{Value: v, Inclusive: true},
		Upper: &Bound{Value: v, Inclusive: true},
	}
}

// Intersect narrows r by other. ok is false when the result is empty.
// An error is returned when bounds belong to different order classes.
func (r Range) Intersect(other Range) (out Range, ok bool, err error) {
	out.Lower, err = tighter(r.Lower, other.Lower, 1)
	if err != nil {
		return Range{}, false, err
	}
	out.Upper, err = tighter(r.Upper, other.Upper, -1)
	if err != nil {
		return Range{}, false, err
	}

	if out.Lower == nil || out.Upper == nil {
		return out, true, nil
	}

	c, err := value.Compare(out.Lower.Value, out.Upper.Value)
	if err != nil {
		return Range{}, false, err
	}
	if c > 0 || (c == 0 && !(out.Lower.Inclusive && out.Upper.Inclusive)) {
		return Range{}, false, nil
	}
	return out, true, nil
}

// tighter keeps the more restrictive bound. dir is 1 for lower bounds
// (larger wins) and -1 for upper bounds (smaller wins). On equal values an
// exclusive bound wins.
func tighter(a, b *Bound, dir int) (*Bound, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	}
	c, err := value.Compare(a.Value, b.Value)
	if err != nil {
		return nil, err
	}
	switch {
	case c*dir > 0:
		return a, nil
	case c*dir < 0:
		return b, nil
	default:
		return &Bound{Value: a.Value, Inclusive: a.Inclusive && b.Inclusive}, nil
	}
}

// IsPoint returns the single value admitted by r, if any.
func (r Range) IsPoint() (value.Value, bool) {
	if r.Lower == nil || r.Upper == nil || !r.Lower.Inclusive || !r.Upper.Inclusive {
		return value.Value{}, false
	}
	c, err := value.Compare(r.Lower.Value, r.Upper.Value)
	if err != nil || c != 0 {
		return value.Value{}, false
	}
	return r.Lower.Value, true
}

// Contains reports whether v lies within r.
func (r Range) Contains(v value.Value) (bool, error) {
	if r.Lower != nil {
		c, err := value.Compare(r.Lower.Value, v)
		if err != nil {
			return false, err
		}
		if c > 0 || (c == 0 && !r.Lower.Inclusive) {
			return false, nil
		}
	}
	if r.Upper != nil {
		c, err := value.Compare(v, r.Upper.Value)
		if err != nil {
			return false, err
		}
		if c > 0 || (c == 0 && !r.Upper.Inclusive) {
			return false, nil
		}
	}
	return true, nil
}

// Format renders r around subject: `1 < subject <= 3`, `subject < 3` or
// `1 <= subject`.
func (r Range) Format(subject string) string {
	var b strings.Builder
	if r.Lower != nil {
		b.WriteString(r.Lower.Value.String())
		b.WriteString(" ")
		b.WriteString(r.Lower.symbol())
		b.WriteString(" ")
	}
	b.WriteString(subject)
	if r.Upper != nil {
		b.WriteString(" ")
		b.WriteString(r.Upper.symbol())
		b.WriteString(" ")
		b.WriteString(r.Upper.Value.String())
	}
	return b.String()
}

// String renders r around `x`.
func (r Range) String() string { return r.Format("x") }
