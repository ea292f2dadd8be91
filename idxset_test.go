package idxset

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/parse"
	"github.com/hupe1980/idxset/plan"
	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/testutil"
)

var attr = predicate.Attr

type scenario struct {
	Name    string           `yaml:"name"`
	Objects []map[string]any `yaml:"objects"`
	Indexes []struct {
		Attr string `yaml:"attr"`
		Kind string `yaml:"kind"`
	} `yaml:"indexes"`
	Query  string     `yaml:"query"`
	Plan   string     `yaml:"plan"`
	Result []model.ID `yaml:"result"`
}

var kinds = map[string]index.Kind{
	"":         index.KindAuto,
	"hash":     index.KindHash,
	"sorted":   index.KindSorted,
	"inverted": index.KindInverted,
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()

	data, err := os.ReadFile("testdata/scenarios.yaml")
	require.NoError(t, err)

	var scenarios []scenario
	require.NoError(t, yaml.Unmarshal(data, &scenarios))
	require.NotEmpty(t, scenarios)
	return scenarios
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			specs := make([]IndexSpec, len(sc.Indexes))
			for i, ix := range sc.Indexes {
				kind, ok := kinds[ix.Kind]
				require.True(t, ok, "unknown kind %q", ix.Kind)
				specs[i] = IndexAs(kind, ix.Attr)
			}

			c, err := New(sc.Objects, specs)
			require.NoError(t, err)

			p := mustParse(t, sc.Query)
			ex, err := c.Explain(p)
			require.NoError(t, err)
			assert.Equal(t, sc.Plan, ex.Physical.String())

			ids, err := c.FilterIDs(p)
			require.NoError(t, err)
			assert.Equal(t, sc.Result, ids.ToSlice())

			// The unoptimized plan agrees.
			unoptimized, err := c.Execute(ex.Logical)
			require.NoError(t, err)
			assert.Equal(t, sc.Result, unoptimized.ToSlice())
		})
	}
}

func mustParse(t *testing.T, expr string) predicate.Predicate {
	t.Helper()
	p, err := parse.Parse(expr)
	require.NoError(t, err)
	return p
}

func TestFilterAgreesWithScan(t *testing.T) {
	rng := testutil.NewRNG(4711)
	records := rng.Records(300)

	choices := map[string][]index.Kind{
		"a":     {index.KindAuto, index.KindHash, index.KindSorted},
		"b":     {index.KindAuto, index.KindHash, index.KindSorted},
		"name":  {index.KindAuto, index.KindHash, index.KindSorted},
		"score": {index.KindAuto, index.KindHash},
		"tags":  {index.KindAuto, index.KindHash},
	}
	attrs := []string{"a", "b", "name", "score", "tags"}

	for round := range 20 {
		var specs []IndexSpec
		for _, name := range attrs {
			if rng.Intn(3) == 0 {
				continue
			}
			options := choices[name]
			specs = append(specs, IndexAs(options[rng.Intn(len(options))], name))
		}

		c, err := New(records, specs)
		require.NoError(t, err, "round %d", round)

		for range 25 {
			p := rng.Predicate(3)

			want, err := testutil.BruteForceFilter(records, p, false)
			require.NoError(t, err)

			got, err := c.FilterIDs(p)
			require.NoError(t, err, p.String())
			require.Equal(t, want, got.ToSlice(), "predicate %s with %v", p, specs)

			ex, err := c.Explain(p)
			require.NoError(t, err)
			unoptimized, err := c.Execute(ex.Logical)
			require.NoError(t, err)
			require.Equal(t, want, unoptimized.ToSlice(), "unoptimized %s", p)
		}
	}
}

func TestEqualityBeyondInt64(t *testing.T) {
	objs := []map[string]any{
		{"a": int64(math.MaxInt64)},
		{"a": int64(math.MaxInt64 - 100)},
		{"a": int64(math.MinInt64)},
	}

	tests := []struct {
		name string
		p    predicate.Predicate
		want []model.ID
	}{
		{"eq 2^63", attr("a").Eq(math.Ldexp(1, 63)), []model.ID{}},
		{"eq -2^63", attr("a").Eq(-math.Ldexp(1, 63)), []model.ID{2}},
		{"lt 2^63", attr("a").Lt(math.Ldexp(1, 63)), []model.ID{0, 1, 2}},
		{"ge 2^63", attr("a").Ge(math.Ldexp(1, 63)), []model.ID{}},
	}

	for _, kind := range []index.Kind{index.KindHash, index.KindSorted} {
		c, err := New(objs, []IndexSpec{IndexAs(kind, "a")})
		require.NoError(t, err)
		scan, err := New(objs, nil)
		require.NoError(t, err)

		for _, tt := range tests {
			t.Run(kind.String()+"/"+tt.name, func(t *testing.T) {
				got, err := c.FilterIDs(tt.p)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got.ToSlice())

				want, err := scan.FilterIDs(tt.p)
				require.NoError(t, err)
				assert.Equal(t, tt.want, want.ToSlice())
			})
		}
	}
}

func TestIdentityPreservation(t *testing.T) {
	type item struct {
		A int
		B string
	}
	objs := []item{{1, "x"}, {2, "y"}, {1, "x"}, {1, "x"}}

	c, err := New(objs, []IndexSpec{Index("A")})
	require.NoError(t, err)

	ids, err := c.FilterIDs(attr("A").Eq(1))
	require.NoError(t, err)
	assert.Equal(t, []model.ID{0, 2, 3}, ids.ToSlice())

	res, err := c.Filter(attr("B").Eq("x"))
	require.NoError(t, err)
	assert.Equal(t, []item{{1, "x"}, {1, "x"}, {1, "x"}}, res)
}

func TestComparisonPolicy(t *testing.T) {
	objs := []map[string]any{
		{"name": "alice", "n": 1},
		{"name": 7, "n": 2},
	}
	p := attr("name").Lt("b")

	lenient, err := New(objs, []IndexSpec{IndexAs(index.KindHash, "n")})
	require.NoError(t, err)

	res, err := lenient.Filter(p)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{objs[0]}, res)

	strict, err := New(objs, []IndexSpec{IndexAs(index.KindHash, "n")}, WithStrictComparisons())
	require.NoError(t, err)

	_, err = strict.Filter(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomparable)

	var cerr *predicate.ComparisonError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "name", cerr.Attr)

	// The index narrows the candidates first, so the mismatching object is
	// never compared.
	res, err = strict.Filter(attr("n").Eq(1).And(p))
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{objs[0]}, res)
}

func TestNew(t *testing.T) {
	t.Run("empty attribute", func(t *testing.T) {
		_, err := New([]int{1}, []IndexSpec{Index("")})
		assert.ErrorIs(t, err, ErrInvalidIndexSpec)
	})

	t.Run("duplicate attribute", func(t *testing.T) {
		_, err := New([]map[string]any{{"a": 1}}, []IndexSpec{Index("a"), IndexAs(index.KindHash, "a")})
		assert.ErrorIs(t, err, ErrDuplicateIndex)
	})

	t.Run("explicit sorted index over mixed values", func(t *testing.T) {
		objs := []map[string]any{{"a": 1}, {"a": "x"}}
		_, err := New(objs, []IndexSpec{IndexAs(index.KindSorted, "a")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIncomparable)

		var aerr *ErrAttribute
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, model.ID(1), aerr.ID)
	})

	t.Run("inference falls back to hash", func(t *testing.T) {
		objs := make([]map[string]any, 300)
		for i := range objs {
			objs[i] = map[string]any{"a": i}
		}
		objs[299] = map[string]any{"a": "x"}

		c, err := New(objs, []IndexSpec{Index("a")}, WithInferenceSampleSize(10))
		require.NoError(t, err)
		require.Len(t, c.Indexes(), 1)
		assert.Equal(t, index.KindHash, c.Indexes()[0].Kind())

		res, err := c.FilterText(`a = 'x'`)
		require.NoError(t, err)
		assert.Len(t, res, 1)
	})

	t.Run("inferred kinds", func(t *testing.T) {
		objs := []map[string]any{
			{"n": 1, "s": "x", "tags": []string{"a"}, "mixed": 1},
			{"n": 2.5, "s": "y", "tags": []string{}, "mixed": "y"},
		}
		c, err := New(objs, []IndexSpec{Index("n"), Index("s"), Index("tags"), Index("mixed"), Index("absent")})
		require.NoError(t, err)

		got := map[string]index.Kind{}
		for _, ix := range c.Indexes() {
			got[ix.Attribute()] = ix.Kind()
		}
		assert.Equal(t, map[string]index.Kind{
			"n":      index.KindSorted,
			"s":      index.KindSorted,
			"tags":   index.KindInverted,
			"mixed":  index.KindHash,
			"absent": index.KindHash,
		}, got)
	})
}

func TestInsertRemove(t *testing.T) {
	type item struct {
		A    int      `idx:"a"`
		Tags []string `idx:"tags"`
	}
	c, err := New([]item{{1, []string{"x"}}, {2, []string{"y"}}}, []IndexSpec{Index("a"), Index("tags")})
	require.NoError(t, err)

	id, err := c.Insert(item{2, []string{"x", "z"}})
	require.NoError(t, err)
	assert.Equal(t, model.ID(2), id)
	assert.Equal(t, 3, c.Len())

	ids, err := c.FilterIDs(attr("a").Eq(2).And(attr("tags").Contains("x")))
	require.NoError(t, err)
	assert.Equal(t, []model.ID{2}, ids.ToSlice())

	require.NoError(t, c.Remove(0))
	assert.Equal(t, 2, c.Len())

	ids, err = c.FilterIDs(attr("tags").Contains("x"))
	require.NoError(t, err)
	assert.Equal(t, []model.ID{2}, ids.ToSlice())

	_, err = c.Get(0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Remove(0), ErrNotFound)
	assert.ErrorIs(t, c.Remove(42), ErrNotFound)

	got, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, item{2, []string{"y"}}, got)

	// Identities are never reused.
	id, err = c.Insert(item{1, nil})
	require.NoError(t, err)
	assert.Equal(t, model.ID(3), id)
}

func TestInsertRejectedLeavesCollectionUnchanged(t *testing.T) {
	objs := []map[string]any{{"a": 1, "h": "x"}, {"a": 2, "h": "y"}}
	c, err := New(objs, []IndexSpec{IndexAs(index.KindHash, "h"), IndexAs(index.KindSorted, "a")})
	require.NoError(t, err)

	_, err = c.Insert(map[string]any{"a": "three", "h": "z"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomparable)
	assert.Equal(t, 2, c.Len())

	ids, err := c.FilterIDs(attr("h").Eq("z"))
	require.NoError(t, err)
	assert.True(t, ids.IsEmpty())

	id, err := c.Insert(map[string]any{"a": 3, "h": "z"})
	require.NoError(t, err)
	assert.Equal(t, model.ID(2), id)
}

func TestMutationsAgreeWithScan(t *testing.T) {
	rng := testutil.NewRNG(99)
	records := rng.Records(100)

	specs := []IndexSpec{Index("a"), Index("b"), Index("name"), Index("tags"), IndexAs(index.KindHash, "score")}
	c, err := New(records[:50], specs)
	require.NoError(t, err)

	live := make([]bool, len(records))
	for i := range 50 {
		live[i] = true
	}
	for i := 50; i < 100; i++ {
		id, err := c.Insert(records[i])
		require.NoError(t, err)
		require.Equal(t, model.ID(i), id)
		live[i] = true

		if victim := rng.Intn(i + 1); live[victim] {
			require.NoError(t, c.Remove(model.ID(victim)))
			live[victim] = false
		}
	}

	for range 100 {
		p := rng.Predicate(2)
		all, err := testutil.BruteForceFilter(records, p, false)
		require.NoError(t, err)

		want := []model.ID{}
		for _, id := range all {
			if live[id] {
				want = append(want, id)
			}
		}

		got, err := c.FilterIDs(p)
		require.NoError(t, err)
		require.Equal(t, want, got.ToSlice(), p.String())
	}
}

func TestFilterTextAndCEL(t *testing.T) {
	objs := []map[string]any{
		{"a": 1, "b": 1, "tags": []any{1, 2}},
		{"a": 2, "b": 2, "tags": []any{2, 3}},
		{"a": 2, "b": 5, "tags": []any{4}},
	}
	c, err := New(objs, []IndexSpec{Index("a"), Index("tags")})
	require.NoError(t, err)

	builder, err := c.Filter(attr("a").Eq(2).And(attr("b").Lt(3).Or(attr("tags").Contains(2))))
	require.NoError(t, err)

	text, err := c.FilterText("a = 2 AND (b < 3 OR 2 IN tags)")
	require.NoError(t, err)

	cel, err := c.FilterCEL("a == 2 && (b < 3 || 2 in tags)")
	require.NoError(t, err)

	assert.Equal(t, []map[string]any{objs[1]}, builder)
	assert.Equal(t, builder, text)
	assert.Equal(t, builder, cel)

	_, err = c.FilterText("a = ")
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = c.FilterCEL("a ==")
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = c.FilterText("a != 1")
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
}

func TestExplain(t *testing.T) {
	objs := []map[string]any{{"a": 1, "b": 1}, {"a": 2, "b": 2}, {"a": 3, "b": 3}}
	c, err := New(objs, []IndexSpec{Index("a")})
	require.NoError(t, err)

	ex, err := c.Explain(attr("a").Gt(1).And(attr("a").Le(3)))
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Logical:",
		"Intersect",
		"  - ScanFilter: a > 1",
		"  - ScanFilter: a <= 3",
		"Physical:",
		"IndexRange: 1 < SortedIndex(a) <= 3",
	}, "\n"), ex.String())

	_, err = c.Explain(nil)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
}

func TestWithOptimizerRules(t *testing.T) {
	objs := []map[string]any{{"a": 1}, {"a": 2}}
	c, err := New(objs, []IndexSpec{Index("a")}, WithOptimizerRules())
	require.NoError(t, err)

	ex, err := c.Explain(attr("a").Eq(2))
	require.NoError(t, err)
	assert.Equal(t, plan.ScanFilter{Predicate: attr("a").Eq(2)}, ex.Physical)

	ids, err := c.FilterIDs(attr("a").Eq(2))
	require.NoError(t, err)
	assert.Equal(t, []model.ID{1}, ids.ToSlice())
}

func TestWithAttribute(t *testing.T) {
	type item struct {
		Tags []string
	}
	objs := []item{{[]string{"x"}}, {[]string{"x", "y"}}, {nil}}

	c, err := New(objs, []IndexSpec{Index("tag_count")},
		WithAttribute("tag_count", func(obj any) any { return len(obj.(item).Tags) }))
	require.NoError(t, err)
	assert.Equal(t, index.KindSorted, c.Indexes()[0].Kind())

	ex, err := c.Explain(attr("tag_count").Ge(1))
	require.NoError(t, err)
	assert.Equal(t, "IndexRange: 1 <= SortedIndex(tag_count)", ex.Physical.String())

	res, err := c.Filter(attr("tag_count").Ge(1))
	require.NoError(t, err)
	assert.Equal(t, objs[:2], res)
}

func TestWithTupleFields(t *testing.T) {
	objs := [][]any{{1, "x"}, {2, "y"}, {3, "x"}}

	c, err := New(objs, []IndexSpec{Index("name")}, WithTupleFields("id", "name"))
	require.NoError(t, err)

	res, err := c.FilterText(`name = "x" AND id > 1`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{3, "x"}}, res)
}

func TestMetricsAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}

	c, err := New([]map[string]any{{"a": 1}}, []IndexSpec{Index("a")},
		WithLogger(logger), WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = c.Filter(attr("a").Eq(1))
	require.NoError(t, err)
	_, err = c.Filter(nil)
	require.Error(t, err)
	_, err = c.Insert(map[string]any{"a": 2})
	require.NoError(t, err)
	require.Error(t, c.Remove(7))

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.FilterCount)
	assert.Equal(t, int64(1), stats.FilterErrors)
	assert.Equal(t, int64(1), stats.FilterResults)
	assert.Equal(t, int64(1), stats.InsertCount)
	assert.Equal(t, int64(1), stats.RemoveCount)
	assert.Equal(t, int64(1), stats.RemoveErrors)

	out := buf.String()
	assert.Contains(t, out, "collection built")
	assert.Contains(t, out, "index built")
	assert.Contains(t, out, "attribute=a")
	assert.Contains(t, out, "filter completed")
	assert.Contains(t, out, "filter failed")
	assert.Contains(t, out, "remove failed")
}

func TestConcurrentFilters(t *testing.T) {
	rng := testutil.NewRNG(3)
	records := rng.Records(200)
	c, err := New(records, []IndexSpec{Index("a"), Index("tags")})
	require.NoError(t, err)

	p := attr("a").Le(2).And(attr("tags").Contains("bob"))
	want, err := testutil.BruteForceFilter(records, p, false)
	require.NoError(t, err)

	done := make(chan []model.ID, 8)
	for range 8 {
		go func() {
			ids, err := c.FilterIDs(p)
			if err != nil {
				done <- nil
				return
			}
			done <- ids.ToSlice()
		}()
	}
	for range 8 {
		assert.Equal(t, want, <-done)
	}
}

func TestExpressionCache(t *testing.T) {
	objs := []map[string]any{{"a": 1}, {"a": 2}}
	c, err := New(objs, []IndexSpec{Index("a")})
	require.NoError(t, err)

	for range 3 {
		res, err := c.FilterText("a = 2")
		require.NoError(t, err)
		assert.Len(t, res, 1)
	}
	_, err = c.FilterCEL("a == 2")
	require.NoError(t, err)

	hits, misses := c.expressions.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(2), misses)
	assert.Equal(t, 2, c.expressions.Len())

	// Malformed expressions are not cached.
	_, err = c.FilterText("a =")
	require.Error(t, err)
	assert.Equal(t, 2, c.expressions.Len())

	disabled, err := New(objs, []IndexSpec{Index("a")}, WithExpressionCacheSize(0))
	require.NoError(t, err)
	_, err = disabled.FilterText("a = 2")
	require.NoError(t, err)
	assert.Equal(t, 0, disabled.expressions.Len())
}
