package idxset

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/idxset/accessor"
	"github.com/hupe1980/idxset/executor"
	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/internal/arena"
	"github.com/hupe1980/idxset/internal/cache"
	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/optimizer"
	"github.com/hupe1980/idxset/parse"
	"github.com/hupe1980/idxset/plan"
	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

// IndexSpec requests an index on one attribute.
type IndexSpec struct {
	Attr string
	// Kind is the index variant. index.KindAuto infers it from the objects.
	Kind index.Kind
}

// Index requests an index on attr whose variant is inferred from the
// initial objects.
func Index(attr string) IndexSpec {
	return IndexSpec{Attr: attr, Kind: index.KindAuto}
}

// IndexAs requests an index of the given variant on attr.
func IndexAs(kind index.Kind, attr string) IndexSpec {
	return IndexSpec{Attr: attr, Kind: kind}
}

// Collection is an indexed, in-memory collection of objects of type T.
//
// Objects are addressed by the identity assigned when they were added.
// Identities are never reused. Duplicate objects are distinct members.
type Collection[T any] struct {
	mu sync.RWMutex

	arena     *arena.Arena[T]
	registry  *index.Registry
	columns   map[string][]value.Value // indexed values by identity, zero Value when missing
	reader    accessor.Reader
	optimizer *optimizer.Optimizer
	strict    bool

	expressions *cache.LRU[expression, predicate.Predicate]

	metrics MetricsCollector
	logger  *Logger
}

// New builds a collection holding objs, with one index per spec.
//
// Indexes are built concurrently, one goroutine per spec. An inferred
// SortedIndex that meets a value outside its order class falls back to a
// HashIndex; an explicitly requested one fails with *index.ErrUnorderedValue.
func New[T any](objs []T, specs []IndexSpec, optFns ...Option) (*Collection[T], error) {
	start := time.Now()
	opts := applyOptions(optFns)

	c, err := newCollection(objs, specs, opts)
	opts.logger.LogBuild(len(objs), len(specs), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newCollection[T any](objs []T, specs []IndexSpec, opts options) (*Collection[T], error) {
	reader := opts.reader
	if reader == nil {
		reader = accessor.For[T]()
	}
	reader = accessor.WithFuncs(reader, opts.attributes)

	a, err := arena.New(objs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Attr == "" {
			return nil, fmt.Errorf("%w: empty attribute name", ErrInvalidIndexSpec)
		}
		if _, dup := seen[spec.Attr]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIndex, spec.Attr)
		}
		seen[spec.Attr] = struct{}{}
	}

	c := &Collection[T]{
		arena:     a,
		columns:   make(map[string][]value.Value, len(specs)),
		reader:    reader,
		optimizer: optimizer.New(optimizer.WithRules(opts.rules...)),
		strict:    opts.strict,
		metrics:   opts.metricsCollector,
		logger:    opts.logger,

		expressions: cache.NewLRU[expression, predicate.Predicate](opts.expressionCacheSize),
	}

	built := make([]builtIndex, len(specs))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, spec := range specs {
		g.Go(func() error {
			b, err := buildIndex(objs, spec, reader, opts.sampleSize)
			if err != nil {
				return err
			}
			built[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.registry, err = index.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, b := range built {
		if err := c.registry.Register(b.index); err != nil {
			return nil, err
		}
		c.columns[b.index.Attribute()] = b.column
		opts.logger.LogIndex(b.index, b.inferred, b.duration)
	}

	return c, nil
}

type builtIndex struct {
	index    index.Index
	column   []value.Value
	inferred bool
	duration time.Duration
}

func buildIndex[T any](objs []T, spec IndexSpec, reader accessor.Reader, sampleSize int) (builtIndex, error) {
	start := time.Now()

	column := make([]value.Value, len(objs))
	for i := range objs {
		v, found, err := reader.Read(objs[i], spec.Attr)
		if err != nil {
			return builtIndex{}, &ErrAttribute{Attr: spec.Attr, ID: model.ID(i), cause: err}
		}
		if found {
			column[i] = v
		}
	}

	kind := spec.Kind
	inferred := kind == index.KindAuto
	if inferred {
		kind = index.Infer(sample(column, sampleSize))
	}

	ix, err := fill(kind, spec.Attr, column)
	if err != nil && inferred && kind == index.KindSorted {
		var uerr *index.ErrUnorderedValue
		if errors.As(err, &uerr) {
			ix, err = fill(index.KindHash, spec.Attr, column)
		}
	}
	if err != nil {
		return builtIndex{}, err
	}

	return builtIndex{index: ix, column: column, inferred: inferred, duration: time.Since(start)}, nil
}

func fill(kind index.Kind, attr string, column []value.Value) (index.Index, error) {
	ix, err := index.New(kind, attr)
	if err != nil {
		return nil, err
	}
	for i, v := range column {
		if v.Kind == value.KindInvalid {
			continue
		}
		if err := ix.Insert(model.ID(i), v); err != nil {
			return nil, &ErrAttribute{Attr: attr, ID: model.ID(i), cause: err}
		}
	}
	return ix, nil
}

// sample returns up to size present values, evenly spread over column.
func sample(column []value.Value, size int) []value.Value {
	step := 1
	if size > 0 && len(column) > size {
		step = len(column) / size
	}

	out := make([]value.Value, 0, min(len(column), max(size, 0)))
	for i := 0; i < len(column); i += step {
		if column[i].Kind == value.KindInvalid {
			continue
		}
		out = append(out, column[i])
	}
	return out
}

// Len returns the number of live objects.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arena.Len()
}

// Get returns the object with the given identity.
func (c *Collection[T]) Get(id model.ID) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	obj, ok := c.arena.Get(id)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: object %d", ErrNotFound, id)
	}
	return obj, nil
}

// Indexes returns the registered indexes in registration order.
func (c *Collection[T]) Indexes() []index.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.All()
}

// Insert adds obj and returns its identity.
//
// Every indexed attribute is read and validated before anything is
// mutated, so a rejected object leaves the collection unchanged.
func (c *Collection[T]) Insert(obj T) (model.ID, error) {
	start := time.Now()

	c.mu.Lock()
	id, err := c.insert(obj)
	c.mu.Unlock()

	c.metrics.RecordInsert(time.Since(start), err)
	c.logger.LogInsert(id, err)
	return id, err
}

func (c *Collection[T]) insert(obj T) (model.ID, error) {
	indexes := c.registry.All()
	values := make([]value.Value, len(indexes))

	for i, ix := range indexes {
		v, found, err := c.reader.Read(obj, ix.Attribute())
		if err != nil {
			return 0, &ErrAttribute{Attr: ix.Attribute(), ID: model.ID(c.arena.Cap()), cause: err}
		}
		if !found {
			continue
		}
		if err := ix.Accepts(v); err != nil {
			return 0, &ErrAttribute{Attr: ix.Attribute(), ID: model.ID(c.arena.Cap()), cause: err}
		}
		values[i] = v
	}

	id, err := c.arena.Append(obj)
	if err != nil {
		return 0, err
	}

	for i, ix := range indexes {
		v := values[i]
		c.columns[ix.Attribute()] = append(c.columns[ix.Attribute()], v)
		if v.Kind == value.KindInvalid {
			continue
		}
		if err := ix.Insert(id, v); err != nil {
			// Accepts passed, so this is a broken index implementation.
			panic(fmt.Errorf("insert into %s after Accepts: %w", ix, err))
		}
	}

	return id, nil
}

// Remove deletes the object with the given identity. Its identity is not reused.
func (c *Collection[T]) Remove(id model.ID) error {
	start := time.Now()

	c.mu.Lock()
	err := c.remove(id)
	c.mu.Unlock()

	c.metrics.RecordRemove(time.Since(start), err)
	c.logger.LogRemove(id, err)
	return err
}

func (c *Collection[T]) remove(id model.ID) error {
	if _, err := c.arena.Remove(id); err != nil {
		return translateError(fmt.Errorf("remove %d: %w", id, err))
	}

	for _, ix := range c.registry.All() {
		column := c.columns[ix.Attribute()]
		v := column[id]
		if v.Kind == value.KindInvalid {
			continue
		}
		ix.Remove(id, v)
		column[id] = value.Value{}
	}
	return nil
}

// Filter returns the objects satisfying p in identity order.
func (c *Collection[T]) Filter(p predicate.Predicate) ([]T, error) {
	start := time.Now()

	c.mu.RLock()
	ids, stats, err := c.query(p)
	var out []T
	if err == nil {
		out = c.arena.Materialize(ids)
	}
	c.mu.RUnlock()

	c.metrics.RecordFilter(time.Since(start), len(out), err)
	c.logger.LogFilter(p, len(out), stats, err)
	return out, err
}

// FilterIDs returns the identities of the objects satisfying p.
func (c *Collection[T]) FilterIDs(p predicate.Predicate) (*model.IDSet, error) {
	start := time.Now()

	c.mu.RLock()
	ids, stats, err := c.query(p)
	c.mu.RUnlock()

	results := 0
	if err == nil {
		results = int(ids.Cardinality())
	}
	c.metrics.RecordFilter(time.Since(start), results, err)
	c.logger.LogFilter(p, results, stats, err)
	return ids, err
}

// FilterText parses a textual expression such as `a = 2 AND b IN (1, 2)`
// and filters with it.
func (c *Collection[T]) FilterText(expr string) ([]T, error) {
	p, err := c.parse(dialectText, expr)
	if err != nil {
		return nil, err
	}
	return c.Filter(p)
}

// FilterCEL parses a CEL expression such as `a == 2 && 3 in tags` and
// filters with it.
func (c *Collection[T]) FilterCEL(expr string) ([]T, error) {
	p, err := c.parse(dialectCEL, expr)
	if err != nil {
		return nil, err
	}
	return c.Filter(p)
}

type dialect uint8

const (
	dialectText dialect = iota
	dialectCEL
)

type expression struct {
	dialect dialect
	text    string
}

// parse returns the predicate for expr, consulting the expression cache.
// Predicates are immutable, so cached ones are shared between queries.
func (c *Collection[T]) parse(d dialect, expr string) (predicate.Predicate, error) {
	key := expression{dialect: d, text: expr}
	if p, ok := c.expressions.Get(key); ok {
		return p, nil
	}

	var (
		p   predicate.Predicate
		err error
	)
	switch d {
	case dialectCEL:
		p, err = parse.ParseCEL(expr)
	default:
		p, err = parse.Parse(expr)
	}
	if err != nil {
		return nil, err
	}

	c.expressions.Set(key, p)
	return p, nil
}

func (c *Collection[T]) query(p predicate.Predicate) (*model.IDSet, executor.Stats, error) {
	logical, err := plan.Build(p)
	if err != nil {
		return nil, executor.Stats{}, err
	}
	physical := c.optimizer.Optimize(logical, c.registry)

	exec := c.executor()
	ids, err := exec.Execute(physical)
	if err != nil {
		return nil, exec.Stats(), err
	}
	return ids, exec.Stats(), nil
}

func (c *Collection[T]) executor() *executor.Executor {
	eval := predicate.Evaluator{Reader: c.reader, Strict: c.strict}
	return executor.New(c.arena, c.registry, eval)
}

// Execute evaluates a plan, optimized or not, against the collection.
// Index nodes must reference indexes of this collection; anything else
// panics with executor.ErrInvalidPlan.
func (c *Collection[T]) Execute(n plan.Node) (*model.IDSet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.executor().Execute(n)
}

// Materialize returns the live objects of ids in identity order.
func (c *Collection[T]) Materialize(ids *model.IDSet) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arena.Materialize(ids)
}

// Explanation holds the plans produced for a predicate.
type Explanation struct {
	Logical  plan.Node
	Physical plan.Node
}

// String renders both plans as indented trees.
func (e *Explanation) String() string {
	var b strings.Builder
	b.WriteString("Logical:\n")
	b.WriteString(e.Logical.String())
	b.WriteString("\nPhysical:\n")
	b.WriteString(e.Physical.String())
	return b.String()
}

// Explain returns the logical and the optimized plan for p without
// executing either.
func (c *Collection[T]) Explain(p predicate.Predicate) (*Explanation, error) {
	logical, err := plan.Build(p)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Explanation{
		Logical:  logical,
		Physical: c.optimizer.Optimize(logical, c.registry),
	}, nil
}
