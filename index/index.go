package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/value"
)

var (
	// ErrCapability is returned when an index is asked for a lookup it does not support.
	ErrCapability = errors.New("index does not support lookup")
	// ErrDuplicateIndex is returned when a second index is registered for an attribute.
	ErrDuplicateIndex = errors.New("attribute already indexed")
	// ErrUnknownKind is returned for an invalid index kind.
	ErrUnknownKind = errors.New("unknown index kind")
)

// ErrUnorderedValue is returned when a SortedIndex receives a value outside
// its order class, or a value without an order (NaN, arrays).
type ErrUnorderedValue struct {
	Attr  string
	Value value.Value
	Class value.Class
}

// Error implements error.
func (e *ErrUnorderedValue) Error() string {
	return fmt.Sprintf("sorted index on %q holds %s values, got %s %s", e.Attr, e.Class, e.Value.Kind, e.Value)
}

// Unwrap returns value.ErrIncomparable.
func (e *ErrUnorderedValue) Unwrap() error { return value.ErrIncomparable }

// Kind selects an index variant.
type Kind uint8

const (
	// KindAuto infers the variant from sample values.
	KindAuto Kind = iota
	// KindHash selects a HashIndex.
	KindHash
	// KindSorted selects a SortedIndex.
	KindSorted
	// KindInverted selects an InvertedIndex.
	KindInverted
)

// String returns the variant's type name as used in plan output.
func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "AutoIndex"
	case KindHash:
		return "HashIndex"
	case KindSorted:
		return "SortedIndex"
	case KindInverted:
		return "InvertedIndex"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Capability is a set of lookup kinds an index can answer.
type Capability uint8

const (
	// ExactLookup answers `attr = v`.
	ExactLookup Capability = 1 << iota
	// RangeLookup answers `<, <=, >, >=` and their conjunctions.
	RangeLookup
	// MembershipLookup answers `v IN attr`.
	MembershipLookup
)

// Has reports whether c includes all of other.
func (c Capability) Has(other Capability) bool { return c&other == other }

// Index maps attribute values to the identities of the objects holding them.
//
// Implementations are not safe for concurrent mutation; the owning
// collection serializes writers.
type Index interface {
	// Attribute returns the indexed attribute name.
	Attribute() string
	// Kind returns the variant.
	Kind() Kind
	// Capabilities returns the lookups the index can answer.
	Capabilities() Capability

	// Accepts reports whether Insert would accept v, without mutating.
	Accepts(v value.Value) error
	// Insert posts id under v.
	Insert(id model.ID, v value.Value) error
	// Remove withdraws id from the posting of v. Unknown pairs are ignored.
	Remove(id model.ID, v value.Value)

	// LookupEq returns the identities whose value equals v.
	LookupEq(v value.Value) *model.IDSet
	// LookupRange returns the identities whose value lies within r.
	LookupRange(r Range) (*model.IDSet, error)
	// LookupMembership returns the identities whose collection contains v.
	LookupMembership(v value.Value) *model.IDSet

	// Estimate returns the expected result size of an exact or membership lookup.
	Estimate(v value.Value) int
	// EstimateRange returns the expected result size of a range lookup.
	EstimateRange(r Range) int
	// SupportsRange reports whether a range over lit can be answered.
	SupportsRange(lit value.Value) bool

	// Len returns the number of indexed identities.
	Len() int
	// Cardinality returns the number of distinct posting keys.
	Cardinality() int

	// String renders the index as `Kind(attr)`.
	String() string
}

// New creates an empty index of the given kind.
func New(kind Kind, attr string) (Index, error) {
	switch kind {
	case KindHash:
		return NewHashIndex(attr), nil
	case KindSorted:
		return NewSortedIndex(attr), nil
	case KindInverted:
		return NewInvertedIndex(attr), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// Infer picks the variant for an attribute from sample values.
//
// Any collection sample selects an InvertedIndex. Non-null samples sharing
// one order class select a SortedIndex. Everything else, including no
// usable samples, selects a HashIndex.
func Infer(samples []value.Value) Kind {
	class := value.ClassNone
	uniform := true
	seen := false

	for _, v := range samples {
		if v.IsArray() {
			return KindInverted
		}
		if v.IsNull() {
			continue
		}
		c := value.ClassOf(v)
		switch {
		case c == value.ClassNone:
			uniform = false
		case !seen:
			class = c
		case c != class:
			uniform = false
		}
		seen = true
	}

	if seen && uniform && class != value.ClassNone {
		return KindSorted
	}
	return KindHash
}

// unordered reports whether v can never equal anything a lookup could match.
func unordered(v value.Value) bool {
	if v.IsNaN() {
		return true
	}
	for _, item := range v.A {
		if unordered(item) {
			return true
		}
	}
	return false
}
