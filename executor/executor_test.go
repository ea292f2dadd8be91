package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/idxset/accessor"
	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/internal/arena"
	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/plan"
	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

var attr = predicate.Attr

type fixture struct {
	store *arena.Arena[map[string]any]
	reg   *index.Registry
	a     index.Index
	tags  index.Index
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	objs := []map[string]any{
		{"a": 1, "b": 1, "tags": []any{1, 2}},
		{"a": 2, "b": 2, "tags": []any{2, 3}},
		{"a": 3, "b": 3, "tags": []any{3, 4}},
		{"a": 3, "b": "x", "tags": []any{}},
	}
	store, err := arena.New(objs)
	require.NoError(t, err)

	a := index.NewSortedIndex("a")
	tags := index.NewInvertedIndex("tags")
	for id, obj := range objs {
		require.NoError(t, a.Insert(model.ID(id), value.MustFromAny(obj["a"])))
		require.NoError(t, tags.Insert(model.ID(id), value.MustFromAny(obj["tags"])))
	}
	reg, err := index.NewRegistry(a, tags)
	require.NoError(t, err)

	return fixture{store: store, reg: reg, a: a, tags: tags}
}

func (f fixture) executor(strict bool) *Executor {
	return New(f.store, f.reg, predicate.Evaluator{Reader: accessor.MapReader{}, Strict: strict})
}

func TestExecute(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		n    plan.Node
		want []model.ID
	}{
		{"empty", plan.Empty{}, []model.ID{}},
		{"scan", plan.ScanFilter{Predicate: attr("b").Ge(2)}, []model.ID{1, 2}},
		{"scan true", plan.ScanFilter{Predicate: predicate.True()}, []model.ID{0, 1, 2, 3}},
		{"lookup", plan.IndexLookup{Index: f.a, Value: value.Int(3)}, []model.ID{2, 3}},
		{"membership", plan.IndexLookup{Index: f.tags, Value: value.Int(2), Membership: true}, []model.ID{0, 1}},
		{"range", plan.IndexRange{Index: f.a, Range: index.Range{
			Lower: &index.Bound{Value: value.Int(1)},
			Upper: &index.Bound{Value: value.Int(3), Inclusive: true},
		}}, []model.ID{1, 2, 3}},
		{"filter", plan.Filter{
			Predicate: attr("b").Eq(3),
			Child:     plan.IndexLookup{Index: f.a, Value: value.Int(3)},
		}, []model.ID{2}},
		{"intersect", plan.Intersect{Children: []plan.Node{
			plan.IndexLookup{Index: f.a, Value: value.Int(3)},
			plan.IndexLookup{Index: f.tags, Value: value.Int(4), Membership: true},
		}}, []model.ID{2}},
		{"intersect with scan sibling", plan.Intersect{Children: []plan.Node{
			plan.IndexLookup{Index: f.a, Value: value.Int(3)},
			plan.IndexLookup{Index: f.tags, Value: value.Int(3), Membership: true},
			plan.ScanFilter{Predicate: attr("b").Eq(3)},
		}}, []model.ID{2}},
		{"conflicting lookups", plan.Intersect{Children: []plan.Node{
			plan.IndexLookup{Index: f.a, Value: value.Int(1)},
			plan.IndexLookup{Index: f.a, Value: value.Int(2)},
		}}, []model.ID{}},
		{"union deduplicates", plan.Union{Children: []plan.Node{
			plan.IndexLookup{Index: f.tags, Value: value.Int(2), Membership: true},
			plan.IndexLookup{Index: f.tags, Value: value.Int(3), Membership: true},
		}}, []model.ID{0, 1, 2}},
		{"empty intersect selects all", plan.Intersect{}, []model.ID{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.executor(false).Execute(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ToSlice())
		})
	}
}

func TestExecuteSkipsRemovedObjects(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Remove(1)
	require.NoError(t, err)

	got, err := f.executor(false).Execute(plan.ScanFilter{Predicate: attr("a").Ge(1)})
	require.NoError(t, err)
	assert.Equal(t, []model.ID{0, 2, 3}, got.ToSlice())
}

func TestExecuteFilterEvaluatesCandidatesOnly(t *testing.T) {
	f := newFixture(t)
	e := f.executor(false)

	_, err := e.Execute(plan.Filter{
		Predicate: attr("b").Eq(3),
		Child:     plan.IndexLookup{Index: f.a, Value: value.Int(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Lookups: 1, Evaluated: 2}, e.Stats())
}

func TestExecuteIntersectShortCircuits(t *testing.T) {
	f := newFixture(t)
	e := f.executor(false)

	got, err := e.Execute(plan.Intersect{Children: []plan.Node{
		plan.IndexLookup{Index: f.a, Value: value.Int(9)},
		plan.IndexLookup{Index: f.tags, Value: value.Int(2), Membership: true},
		plan.ScanFilter{Predicate: attr("b").Eq(1)},
	}})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, Stats{Lookups: 1}, e.Stats())
}

func TestExecuteStrictComparison(t *testing.T) {
	f := newFixture(t)
	n := plan.ScanFilter{Predicate: attr("b").Lt(5)}

	got, err := f.executor(false).Execute(n)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{0, 1, 2}, got.ToSlice())

	_, err = f.executor(true).Execute(n)
	require.Error(t, err)
	assert.ErrorIs(t, err, value.ErrIncomparable)

	var cmpErr *predicate.ComparisonError
	assert.ErrorAs(t, err, &cmpErr)
}

func TestExecuteRangeOnHashIndex(t *testing.T) {
	f := newFixture(t)
	h := index.NewHashIndex("b")
	require.NoError(t, f.reg.Register(h))

	_, err := f.executor(false).Execute(plan.IndexRange{Index: h, Range: index.Below(value.Int(2), false)})
	assert.ErrorIs(t, err, index.ErrCapability)
}

func TestExecuteInvalidPlan(t *testing.T) {
	f := newFixture(t)
	foreign := index.NewSortedIndex("a")

	assert.PanicsWithError(t, "invalid plan: SortedIndex(a) is not registered", func() {
		_, _ = f.executor(false).Execute(plan.IndexLookup{Index: foreign, Value: value.Int(1)})
	})
}
