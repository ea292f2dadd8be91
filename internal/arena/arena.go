package arena

import (
	"errors"

	"github.com/hupe1980/idxset/model"
)

var (
	// ErrArenaFull is returned when no identity is left to assign.
	ErrArenaFull = errors.New("arena is full")
	// ErrNotFound is returned for identities that were never assigned or were removed.
	ErrNotFound = errors.New("object not found")
)

// Arena holds objects by identity.
//
// It is not safe for concurrent mutation.
type Arena[T any] struct {
	slots []T
	live  *model.IDSet
}

// New returns an arena holding objs at identities 0..len(objs)-1.
func New[T any](objs []T) (*Arena[T], error) {
	if uint64(len(objs)) > uint64(model.MaxID) {
		return nil, ErrArenaFull
	}
	a := &Arena[T]{
		slots: append(make([]T, 0, len(objs)), objs...),
		live:  model.NewIDSet(),
	}
	a.live.AddRange(0, model.ID(len(objs)))
	return a, nil
}

// Append stores obj in a new slot and returns its identity.
func (a *Arena[T]) Append(obj T) (model.ID, error) {
	if uint64(len(a.slots)) >= uint64(model.MaxID) {
		return 0, ErrArenaFull
	}
	id := model.ID(len(a.slots))
	a.slots = append(a.slots, obj)
	a.live.Add(id)
	return id, nil
}

// Remove tombstones the slot of id and returns the object it held.
func (a *Arena[T]) Remove(id model.ID) (T, error) {
	var zero T
	if !a.live.Contains(id) {
		return zero, ErrNotFound
	}
	obj := a.slots[id]
	a.slots[id] = zero
	a.live.Remove(id)
	return obj, nil
}

// Get returns the live object at id.
func (a *Arena[T]) Get(id model.ID) (T, bool) {
	if !a.live.Contains(id) {
		var zero T
		return zero, false
	}
	return a.slots[id], true
}

// Object returns the live object at id as any.
func (a *Arena[T]) Object(id model.ID) (any, bool) {
	obj, ok := a.Get(id)
	if !ok {
		return nil, false
	}
	return obj, true
}

// All returns a copy of the set of live identities.
func (a *Arena[T]) All() *model.IDSet {
	return a.live.Clone()
}

// Len returns the number of live objects.
func (a *Arena[T]) Len() int {
	return int(a.live.Cardinality())
}

// Cap returns the number of slots ever assigned, tombstones included.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}

// Materialize returns the live objects of ids in ascending identity order.
func (a *Arena[T]) Materialize(ids *model.IDSet) []T {
	out := make([]T, 0, ids.Cardinality())
	for id := range ids.Iterator() {
		if obj, ok := a.Get(id); ok {
			out = append(out, obj)
		}
	}
	return out
}
