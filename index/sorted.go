package index

import (
	"fmt"
	"slices"

	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/value"
)

// sortedEntry is one distinct key with its posting.
type sortedEntry struct {
	key value.Value
	ids *model.IDSet
}

// SortedIndex answers exact and range lookups over one order class.
//
// Entries are kept sorted by key and located by binary search. Inserting a
// new key shifts the tail of the entry slice, so bulk loads pay an ordered
// update per distinct key.
//
// The order class is fixed by the first non-null value inserted. Later
// values of another class, NaN and collections are rejected with
// *ErrUnorderedValue.
type SortedIndex struct {
	attr    string
	class   value.Class
	entries []sortedEntry
	ids     *model.IDSet
}

// NewSortedIndex creates an empty SortedIndex on attr.
func NewSortedIndex(attr string) *SortedIndex {
	return &SortedIndex{attr: attr, ids: model.NewIDSet()}
}

func (s *SortedIndex) Attribute() string        { return s.attr }
func (s *SortedIndex) Kind() Kind               { return KindSorted }
func (s *SortedIndex) Capabilities() Capability { return ExactLookup | RangeLookup }
func (s *SortedIndex) Len() int                 { return int(s.ids.Cardinality()) }
func (s *SortedIndex) Cardinality() int         { return len(s.entries) }
func (s *SortedIndex) String() string           { return fmt.Sprintf("%s(%s)", s.Kind(), s.attr) }

// Class returns the order class of the indexed values, ClassNone while empty.
func (s *SortedIndex) Class() value.Class { return s.class }

// Accepts reports whether v belongs to the index's order class.
func (s *SortedIndex) Accepts(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	c := value.ClassOf(v)
	if c == value.ClassNone || (s.class != value.ClassNone && c != s.class) {
		return &ErrUnorderedValue{Attr: s.attr, Value: v, Class: s.class}
	}
	return nil
}

// SupportsRange reports whether lit shares the index's order class.
func (s *SortedIndex) SupportsRange(lit value.Value) bool {
	c := value.ClassOf(lit)
	if c == value.ClassNone {
		return false
	}
	return s.class == value.ClassNone || s.class == c
}

// Insert posts id under v. Null values are skipped.
func (s *SortedIndex) Insert(id model.ID, v value.Value) error {
	if err := s.Accepts(v); err != nil {
		return err
	}
	if v.IsNull() {
		return nil
	}
	if s.class == value.ClassNone {
		s.class = value.ClassOf(v)
	}

	pos, found := s.search(v)
	if !found {
		s.entries = slices.Insert(s.entries, pos, sortedEntry{key: v, ids: model.NewIDSet()})
	}
	s.entries[pos].ids.Add(id)
	s.ids.Add(id)
	return nil
}

// Remove withdraws id from the posting of v.
func (s *SortedIndex) Remove(id model.ID, v value.Value) {
	if v.IsNull() || value.ClassOf(v) != s.class || s.class == value.ClassNone {
		return
	}
	pos, found := s.search(v)
	if !found || !s.entries[pos].ids.Contains(id) {
		return
	}
	s.entries[pos].ids.Remove(id)
	if s.entries[pos].ids.IsEmpty() {
		s.entries = slices.Delete(s.entries, pos, pos+1)
	}
	s.ids.Remove(id)
}

// LookupEq returns the identities whose value equals v.
func (s *SortedIndex) LookupEq(v value.Value) *model.IDSet {
	if pos, ok := s.find(v); ok {
		return s.entries[pos].ids.Clone()
	}
	return model.NewIDSet()
}

// LookupRange returns the union of all postings whose key lies within r.
func (s *SortedIndex) LookupRange(r Range) (*model.IDSet, error) {
	lo, hi, err := s.span(r)
	if err != nil {
		return nil, err
	}
	out := model.NewIDSet()
	if s.outside(r) {
		return out, nil
	}
	for _, e := range s.entries[lo:hi] {
		out.Or(e.ids)
	}
	return out, nil
}

// LookupMembership is not supported and returns an empty set.
func (s *SortedIndex) LookupMembership(value.Value) *model.IDSet { return model.NewIDSet() }

// Estimate returns the posting size of v.
func (s *SortedIndex) Estimate(v value.Value) int {
	if pos, ok := s.find(v); ok {
		return int(s.entries[pos].ids.Cardinality())
	}
	return 0
}

// EstimateRange returns the number of identities within r.
func (s *SortedIndex) EstimateRange(r Range) int {
	lo, hi, err := s.span(r)
	if err != nil {
		return s.Len()
	}
	if s.outside(r) {
		return 0
	}
	n := 0
	for _, e := range s.entries[lo:hi] {
		n += int(e.ids.Cardinality())
	}
	return n
}

// Min returns the smallest indexed key.
func (s *SortedIndex) Min() (value.Value, bool) {
	if len(s.entries) == 0 {
		return value.Value{}, false
	}
	return s.entries[0].key, true
}

// Max returns the largest indexed key.
func (s *SortedIndex) Max() (value.Value, bool) {
	if len(s.entries) == 0 {
		return value.Value{}, false
	}
	return s.entries[len(s.entries)-1].key, true
}

// outside reports whether r lies entirely below Min or above Max.
// r must share the index's class.
func (s *SortedIndex) outside(r Range) bool {
	low, ok := s.Min()
	if !ok {
		return true
	}
	high, _ := s.Max()
	if r.Upper != nil {
		c := value.MustCompare(r.Upper.Value, low)
		if c < 0 || (c == 0 && !r.Upper.Inclusive) {
			return true
		}
	}
	if r.Lower != nil {
		c := value.MustCompare(r.Lower.Value, high)
		if c > 0 || (c == 0 && !r.Lower.Inclusive) {
			return true
		}
	}
	return false
}

// find locates v when it belongs to the index's class.
func (s *SortedIndex) find(v value.Value) (int, bool) {
	if s.class == value.ClassNone || value.ClassOf(v) != s.class {
		return 0, false
	}
	return s.search(v)
}

// search requires v to share the index's class.
func (s *SortedIndex) search(v value.Value) (int, bool) {
	return slices.BinarySearchFunc(s.entries, v, func(e sortedEntry, target value.Value) int {
		return value.MustCompare(e.key, target)
	})
}

// span returns the half-open entry interval covered by r.
func (s *SortedIndex) span(r Range) (lo, hi int, err error) {
	if s.class == value.ClassNone {
		return 0, 0, nil
	}
	for _, b := range []*Bound{r.Lower, r.Upper} {
		if b != nil && value.ClassOf(b.Value) != s.class {
			return 0, 0, &ErrUnorderedValue{Attr: s.attr, Value: b.Value, Class: s.class}
		}
	}

	lo, hi = 0, len(s.entries)
	if r.Lower != nil {
		pos, found := s.search(r.Lower.Value)
		if found && !r.Lower.Inclusive {
			pos++
		}
		lo = pos
	}
	if r.Upper != nil {
		pos, found := s.search(r.Upper.Value)
		if found && r.Upper.Inclusive {
			pos++
		}
		hi = pos
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi, nil
}
