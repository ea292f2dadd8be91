package executor

import (
	"errors"
	"fmt"

	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/plan"
	"github.com/hupe1980/idxset/predicate"
)

// ErrInvalidPlan marks plans the optimizer can never produce, such as a
// lookup on an index that is not registered. Execute panics with it.
var ErrInvalidPlan = errors.New("invalid plan")

// Store gives the executor access to the objects of a collection.
type Store interface {
	// All returns the identities of all live objects. The caller owns the set.
	All() *model.IDSet
	// Object returns the live object with the given identity.
	Object(id model.ID) (any, bool)
}

// Stats counts the work done by one Executor.
type Stats struct {
	// Lookups is the number of index lookups performed.
	Lookups int
	// Evaluated is the number of objects checked against a predicate.
	Evaluated int
}

// Executor evaluates plans against a store and its indexes.
//
// An Executor is meant for a single query and is not safe for concurrent use.
type Executor struct {
	store Store
	reg   *index.Registry
	eval  predicate.Evaluator
	stats Stats
}

// New creates an Executor. When reg is non-nil every index referenced by a
// plan must be registered in it.
func New(store Store, reg *index.Registry, eval predicate.Evaluator) *Executor {
	return &Executor{store: store, reg: reg, eval: eval}
}

// Stats returns the work done so far.
func (e *Executor) Stats() Stats { return e.stats }

// Execute evaluates n and returns the matching identities.
func (e *Executor) Execute(n plan.Node) (*model.IDSet, error) {
	switch t := n.(type) {
	case plan.Empty:
		return model.NewIDSet(), nil
	case plan.ScanFilter:
		return e.filter(e.store.All(), t.Predicate)
	case plan.Filter:
		candidates, err := e.Execute(t.Child)
		if err != nil {
			return nil, err
		}
		return e.filter(candidates, t.Predicate)
	case plan.IndexLookup:
		e.checkIndex(t.Index)
		e.stats.Lookups++
		if t.Membership {
			return t.Index.LookupMembership(t.Value), nil
		}
		return t.Index.LookupEq(t.Value), nil
	case plan.IndexRange:
		e.checkIndex(t.Index)
		e.stats.Lookups++
		return t.Index.LookupRange(t.Range)
	case plan.Intersect:
		return e.intersect(t.Children)
	case plan.Union:
		out := model.NewIDSet()
		for _, c := range t.Children {
			set, err := e.Execute(c)
			if err != nil {
				return nil, err
			}
			out.Or(set)
		}
		return out, nil
	default:
		panic(fmt.Errorf("%w: node type %T", ErrInvalidPlan, n))
	}
}

// intersect evaluates children in plan order. A ScanFilter child only checks
// the running set, and evaluation stops once the running set is empty.
func (e *Executor) intersect(children []plan.Node) (*model.IDSet, error) {
	if len(children) == 0 {
		return e.store.All(), nil
	}

	var running *model.IDSet
	for _, c := range children {
		if running != nil && running.IsEmpty() {
			break
		}

		if scan, ok := c.(plan.ScanFilter); ok && running != nil {
			filtered, err := e.filter(running, scan.Predicate)
			if err != nil {
				return nil, err
			}
			running = filtered
			continue
		}

		set, err := e.Execute(c)
		if err != nil {
			return nil, err
		}
		if running == nil {
			running = set
			continue
		}
		running.And(set)
	}
	return running, nil
}

// filter returns the candidates whose object satisfies p.
func (e *Executor) filter(candidates *model.IDSet, p predicate.Predicate) (*model.IDSet, error) {
	if c, ok := p.(predicate.Constant); ok {
		if c.Value {
			return candidates, nil
		}
		return model.NewIDSet(), nil
	}

	out := model.NewIDSet()
	for id := range candidates.Iterator() {
		obj, ok := e.store.Object(id)
		if !ok {
			continue
		}
		e.stats.Evaluated++
		match, err := e.eval.Eval(p, obj)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s on object %d: %w", p, id, err)
		}
		if match {
			out.Add(id)
		}
	}
	return out, nil
}

func (e *Executor) checkIndex(ix index.Index) {
	if ix == nil {
		panic(fmt.Errorf("%w: nil index", ErrInvalidPlan))
	}
	if e.reg != nil && !e.reg.Contains(ix) {
		panic(fmt.Errorf("%w: %s is not registered", ErrInvalidPlan, ix))
	}
}
