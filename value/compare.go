package value

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrIncomparable is returned when two values have no common ordering.
var ErrIncomparable = errors.New("values are not comparable")

// Class groups kinds that share a total order.
type Class uint8

const (
	// ClassNone marks values without an ordering (null, NaN, arrays).
	ClassNone Class = iota
	// ClassNumeric covers ints and floats.
	ClassNumeric
	// ClassString covers strings.
	ClassString
	// ClassBool covers booleans (false < true).
	ClassBool
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassNumeric:
		return "numeric"
	case ClassString:
		return "string"
	case ClassBool:
		return "bool"
	default:
		return "unordered"
	}
}

// ClassOf returns the order class of v.
func ClassOf(v Value) Class {
	switch v.Kind {
	case KindInt:
		return ClassNumeric
	case KindFloat:
		if v.IsNaN() {
			return ClassNone
		}
		return ClassNumeric
	case KindString:
		return ClassString
	case KindBool:
		return ClassBool
	default:
		return ClassNone
	}
}

// Equal compares two values for equality.
//
// Ints and floats compare numerically. Arrays compare element-wise.
// Values of different kinds are never equal, which is not an error.
func Equal(a, b Value) bool {
	if a.Kind == KindNull && b.Kind == KindNull {
		return true
	}
	if a.Kind == KindNull || b.Kind == KindNull {
		return false
	}

	if isNumber(a) && isNumber(b) {
		return compareNumbers(a, b) == 0 && !a.IsNaN() && !b.IsNaN()
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.s == b.s
	case KindBool:
		return a.B == b.B
	case KindArray:
		if len(a.A) != len(b.A) {
			return false
		}
		for i := range a.A {
			if !Equal(a.A[i], b.A[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare returns -1, 0 or +1 ordering a against b.
//
// Both values must belong to the same order class; otherwise an error
// wrapping ErrIncomparable is returned.
func Compare(a, b Value) (int, error) {
	ca, cb := ClassOf(a), ClassOf(b)
	if ca == ClassNone || ca != cb {
		return 0, fmt.Errorf("%w: %s and %s", ErrIncomparable, a.Kind, b.Kind)
	}

	switch ca {
	case ClassNumeric:
		return compareNumbers(a, b), nil
	case ClassString:
		return strings.Compare(a.s.Value(), b.s.Value()), nil
	case ClassBool:
		switch {
		case a.B == b.B:
			return 0, nil
		case !a.B:
			return -1, nil
		default:
			return 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s and %s", ErrIncomparable, a.Kind, b.Kind)
}

// MustCompare is Compare for values already known to share a class.
// It panics otherwise.
func MustCompare(a, b Value) int {
	c, err := Compare(a, b)
	if err != nil {
		panic(err)
	}
	return c
}

func isNumber(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// compareNumbers orders two numeric values. Int/float pairs compare
// exactly, never through a lossy float64(int) conversion, so Key-equal
// values always compare equal.
func compareNumbers(a, b Value) int {
	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return cmpInt(a.I64, b.I64)
	case a.Kind == KindInt:
		return cmpIntFloat(a.I64, b.F64)
	case b.Kind == KindInt:
		return -cmpIntFloat(b.I64, a.F64)
	}
	switch {
	case a.F64 < b.F64:
		return -1
	case a.F64 > b.F64:
		return 1
	default:
		return 0
	}
}

// cmpIntFloat orders i against f. NaN compares as 0; callers rule it out.
func cmpIntFloat(i int64, f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	if fi, ok := floatAsInt(f); ok {
		return cmpInt(i, fi)
	}
	switch {
	case f >= 1<<63:
		return -1
	case f < -(1 << 63):
		return 1
	}
	// f is within int64 range but not integral.
	if i <= int64(math.Floor(f)) {
		return -1
	}
	return 1
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
