package index

import (
	"fmt"
)

// Registry holds at most one index per attribute, in registration order.
type Registry struct {
	byAttr map[string]Index
	order  []Index
}

// NewRegistry returns a registry holding indexes.
func NewRegistry(indexes ...Index) (*Registry, error) {
	r := &Registry{byAttr: make(map[string]Index, len(indexes))}
	for _, ix := range indexes {
		if err := r.Register(ix); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds ix. A second index on the same attribute is rejected.
func (r *Registry) Register(ix Index) error {
	if r.byAttr == nil {
		r.byAttr = make(map[string]Index)
	}
	attr := ix.Attribute()
	if existing, ok := r.byAttr[attr]; ok {
		return fmt.Errorf("%w: %q has %s", ErrDuplicateIndex, attr, existing)
	}
	r.byAttr[attr] = ix
	r.order = append(r.order, ix)
	return nil
}

// Get returns the index on attr.
func (r *Registry) Get(attr string) (Index, bool) {
	if r == nil {
		return nil, false
	}
	ix, ok := r.byAttr[attr]
	return ix, ok
}

// Contains reports whether ix itself is registered.
func (r *Registry) Contains(ix Index) bool {
	if r == nil || ix == nil {
		return false
	}
	got, ok := r.byAttr[ix.Attribute()]
	return ok && got == ix
}

// All returns the registered indexes in registration order.
func (r *Registry) All() []Index {
	if r == nil {
		return nil
	}
	return append([]Index(nil), r.order...)
}

// Len returns the number of registered indexes.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
