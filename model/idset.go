package model

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// IDSet is a set of object identities.
// It wraps a 32-bit Roaring Bitmap.
type IDSet struct {
	rb *roaring.Bitmap
}

// NewIDSet creates a new empty identity set.
func NewIDSet() *IDSet {
	return &IDSet{
		rb: roaring.New(),
	}
}

// IDSetOf creates an identity set holding ids.
func IDSetOf(ids ...ID) *IDSet {
	s := NewIDSet()
	for _, id := range ids {
		s.rb.Add(uint32(id))
	}
	return s
}

// Add adds an ID to the set.
func (s *IDSet) Add(id ID) {
	s.rb.Add(uint32(id))
}

// AddRange adds all IDs in [lo, hi) to the set.
func (s *IDSet) AddRange(lo, hi ID) {
	if hi <= lo {
		return
	}
	s.rb.AddRange(uint64(lo), uint64(hi))
}

// Remove removes an ID from the set.
func (s *IDSet) Remove(id ID) {
	s.rb.Remove(uint32(id))
}

// Contains checks if an ID is in the set.
func (s *IDSet) Contains(id ID) bool {
	return s.rb.Contains(uint32(id))
}

// IsEmpty returns true if the set is empty.
func (s *IDSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of elements in the set.
func (s *IDSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Clone returns a deep copy of the set.
func (s *IDSet) Clone() *IDSet {
	return &IDSet{
		rb: s.rb.Clone(),
	}
}

// Iterator returns an iterator over the set in ascending ID order.
func (s *IDSet) Iterator() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(ID(it.Next())) {
				return
			}
		}
	}
}

// ToSlice returns the IDs in ascending order.
func (s *IDSet) ToSlice() []ID {
	raw := s.rb.ToArray()
	ids := make([]ID, len(raw))
	for i, v := range raw {
		ids[i] = ID(v)
	}
	return ids
}

// And computes the intersection of two sets in place.
func (s *IDSet) And(other *IDSet) {
	s.rb.And(other.rb)
}

// Or computes the union of two sets in place.
func (s *IDSet) Or(other *IDSet) {
	s.rb.Or(other.rb)
}

// AndNot removes all IDs of other from the set.
func (s *IDSet) AndNot(other *IDSet) {
	s.rb.AndNot(other.rb)
}

// Equals reports whether both sets hold the same IDs.
func (s *IDSet) Equals(other *IDSet) bool {
	return s.rb.Equals(other.rb)
}

// String returns a human-readable form, e.g. "{0,1,2}".
func (s *IDSet) String() string {
	return s.rb.String()
}
