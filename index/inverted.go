package index

import (
	"fmt"

	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/value"
)

// InvertedIndex answers membership lookups over collection attributes.
// Each element of a collection gets its own posting; non-collection values
// are not indexed.
type InvertedIndex struct {
	attr     string
	postings postings
}

// NewInvertedIndex creates an empty InvertedIndex on attr.
func NewInvertedIndex(attr string) *InvertedIndex {
	return &InvertedIndex{attr: attr, postings: newPostings()}
}

func (ix *InvertedIndex) Attribute() string              { return ix.attr }
func (ix *InvertedIndex) Kind() Kind                     { return KindInverted }
func (ix *InvertedIndex) Capabilities() Capability       { return MembershipLookup }
func (ix *InvertedIndex) Accepts(value.Value) error      { return nil }
func (ix *InvertedIndex) SupportsRange(value.Value) bool { return false }
func (ix *InvertedIndex) Len() int                       { return int(ix.postings.ids.Cardinality()) }
func (ix *InvertedIndex) Cardinality() int               { return len(ix.postings.byKey) }
func (ix *InvertedIndex) String() string                 { return fmt.Sprintf("%s(%s)", ix.Kind(), ix.attr) }

// Insert posts id once per distinct element of v.
func (ix *InvertedIndex) Insert(id model.ID, v value.Value) error {
	items, ok := v.AsArray()
	if !ok {
		return nil
	}
	for _, item := range items {
		if unordered(item) {
			continue
		}
		ix.postings.add(item.Key(), id)
	}
	return nil
}

// Remove withdraws id from the posting of every element of v.
func (ix *InvertedIndex) Remove(id model.ID, v value.Value) {
	items, ok := v.AsArray()
	if !ok {
		return
	}
	for _, item := range items {
		if unordered(item) {
			continue
		}
		ix.postings.remove(item.Key(), id)
	}
}

// LookupEq is not supported and returns an empty set.
func (ix *InvertedIndex) LookupEq(value.Value) *model.IDSet { return model.NewIDSet() }

// LookupRange is not supported.
func (ix *InvertedIndex) LookupRange(Range) (*model.IDSet, error) {
	return nil, fmt.Errorf("%w: range on %s", ErrCapability, ix)
}

// LookupMembership returns the identities whose collection contains v.
func (ix *InvertedIndex) LookupMembership(v value.Value) *model.IDSet {
	if unordered(v) {
		return model.NewIDSet()
	}
	return ix.postings.get(v.Key())
}

// Estimate returns the posting size of element v.
func (ix *InvertedIndex) Estimate(v value.Value) int {
	if unordered(v) {
		return 0
	}
	return ix.postings.count(v.Key())
}

// EstimateRange returns Len.
func (ix *InvertedIndex) EstimateRange(Range) int { return ix.Len() }
