package index

import (
	"fmt"

	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/value"
)

// HashIndex answers exact lookups. Values of any kind may be mixed; ints and
// integral floats share a posting.
type HashIndex struct {
	attr     string
	postings postings
}

// NewHashIndex creates an empty HashIndex on attr.
func NewHashIndex(attr string) *HashIndex {
	return &HashIndex{attr: attr, postings: newPostings()}
}

func (h *HashIndex) Attribute() string              { return h.attr }
func (h *HashIndex) Kind() Kind                     { return KindHash }
func (h *HashIndex) Capabilities() Capability       { return ExactLookup }
func (h *HashIndex) Accepts(value.Value) error      { return nil }
func (h *HashIndex) SupportsRange(value.Value) bool { return false }
func (h *HashIndex) Len() int                       { return int(h.postings.ids.Cardinality()) }
func (h *HashIndex) Cardinality() int               { return len(h.postings.byKey) }
func (h *HashIndex) String() string                 { return fmt.Sprintf("%s(%s)", h.Kind(), h.attr) }

// Insert posts id under v. Null and NaN values are skipped.
func (h *HashIndex) Insert(id model.ID, v value.Value) error {
	if v.IsNull() || unordered(v) {
		return nil
	}
	h.postings.add(v.Key(), id)
	return nil
}

// Remove withdraws id from the posting of v.
func (h *HashIndex) Remove(id model.ID, v value.Value) {
	if v.IsNull() || unordered(v) {
		return
	}
	h.postings.remove(v.Key(), id)
}

// LookupEq returns the identities whose value equals v.
func (h *HashIndex) LookupEq(v value.Value) *model.IDSet {
	if v.IsNull() || unordered(v) {
		return model.NewIDSet()
	}
	return h.postings.get(v.Key())
}

// LookupRange is not supported.
func (h *HashIndex) LookupRange(Range) (*model.IDSet, error) {
	return nil, fmt.Errorf("%w: range on %s", ErrCapability, h)
}

// LookupMembership is not supported and returns an empty set.
func (h *HashIndex) LookupMembership(value.Value) *model.IDSet { return model.NewIDSet() }

// Estimate returns the posting size of v.
func (h *HashIndex) Estimate(v value.Value) int {
	if v.IsNull() || unordered(v) {
		return 0
	}
	return h.postings.count(v.Key())
}

// EstimateRange returns Len, as a hash index cannot narrow ranges.
func (h *HashIndex) EstimateRange(Range) int { return h.Len() }
