package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/predicate"
)

func TestRecords(t *testing.T) {
	rng := NewRNG(4711)

	records := rng.Records(500)
	require.Len(t, records, 500)

	missing := 0
	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.A, 0)
		assert.Less(t, rec.A, 10)
		assert.GreaterOrEqual(t, rec.B, 0.0)
		assert.Less(t, rec.B, 10.0)
		assert.Contains(t, Names, rec.Name)
		assert.LessOrEqual(t, len(rec.Tags), 3)
		if rec.Score == nil {
			missing++
		}
	}
	assert.InDelta(t, 100, missing, 40)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	r1 := rng.Records(10)
	p1 := rng.Predicate(3)

	rng.Reset()
	r2 := rng.Records(10)
	p2 := rng.Predicate(3)

	assert.Equal(t, r1, r2)
	assert.Equal(t, p1.String(), p2.String())
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestZipf(t *testing.T) {
	rng := NewRNG(42)

	counts := make([]int, 10)
	for range 10000 {
		counts[rng.Zipf(10, 1.5)]++
	}

	// The head dominates the tail.
	assert.Greater(t, counts[0], counts[9]*5)
	assert.Equal(t, 0, rng.Zipf(1, 1.5))
}

func TestPredicate(t *testing.T) {
	rng := NewRNG(7)

	for range 200 {
		p := rng.Predicate(3)
		require.NoError(t, predicate.Validate(p))
	}
}

func TestBruteForceFilter(t *testing.T) {
	score := 3
	records := []Record{
		{A: 1, Name: "alice", Tags: []string{"bob"}},
		{A: 2, Name: "bob", Score: &score},
		{A: 1, Name: "carol", Tags: []string{"alice", "bob"}},
	}

	got, err := BruteForceFilter(records, predicate.Attr("a").Eq(1), false)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{0, 2}, got)

	got, err = BruteForceFilter(records, predicate.Attr("tags").Contains("bob").And(predicate.Attr("name").Gt("b")), false)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{2}, got)

	got, err = BruteForceFilter(records, predicate.Attr("score").Ge(0), false)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{1}, got)

	got, err = BruteForceFilter(records, predicate.Attr("name").Lt(1), false)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{}, got)

	_, err = BruteForceFilter(records, predicate.Attr("name").Lt(1), true)
	require.Error(t, err)
}
