package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/idxset/accessor"
	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

// Record is the object type produced by the generators.
//
// Score is nil for a configurable share of records so that missing and
// null attributes are exercised.
type Record struct {
	A     int      `idx:"a"`
	B     float64  `idx:"b"`
	Name  string   `idx:"name"`
	Tags  []string `idx:"tags"`
	Score *int     `idx:"score"`
}

// Names is the vocabulary for Record.Name and Record.Tags.
var Names = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi"}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, s=1.5 gives a heavy tail.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// Present returns n flags where each flag is false with probability missingRate.
func (r *RNG) Present(n int, missingRate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	present := make([]bool, n)
	for i := range n {
		present[i] = r.rand.Float64() >= missingRate
	}

	return present
}

// Records generates n records.
//
// A is Zipf-distributed over [0, 10) so a few values dominate. B is a float
// in [0, 10) with one decimal. A fifth of the records have no Score.
func (r *RNG) Records(n int) []Record {
	present := r.Present(n, 0.2)

	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]Record, n)
	for i := range n {
		rec := Record{
			A:    r.zipfLocked(10, 1.2),
			B:    float64(r.rand.Intn(100)) / 10,
			Name: Names[r.rand.Intn(len(Names))],
		}

		tags := make([]string, r.rand.Intn(4))
		for j := range tags {
			tags[j] = Names[r.rand.Intn(len(Names))]
		}
		rec.Tags = tags

		if present[i] {
			score := r.rand.Intn(5)
			rec.Score = &score
		}
		records[i] = rec
	}

	return records
}

var comparisonOps = []predicate.Op{predicate.OpEq, predicate.OpLt, predicate.OpLe, predicate.OpGt, predicate.OpGe}

// Predicate generates a random predicate over Record attributes.
// depth bounds the height of the And/Or tree; depth 0 yields a leaf.
func (r *RNG) Predicate(depth int) predicate.Predicate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.predicateLocked(depth)
}

func (r *RNG) predicateLocked(depth int) predicate.Predicate {
	if depth > 0 && r.rand.Intn(3) > 0 {
		left := r.predicateLocked(depth - 1)
		right := r.predicateLocked(depth - 1)
		if r.rand.Intn(2) == 0 {
			return predicate.And{Left: left, Right: right}
		}
		return predicate.Or{Left: left, Right: right}
	}
	return r.leafLocked()
}

func (r *RNG) leafLocked() predicate.Predicate {
	op := comparisonOps[r.rand.Intn(len(comparisonOps))]

	switch r.rand.Intn(9) {
	case 0:
		return compare("a", op, r.rand.Intn(12)-1)
	case 1:
		return compare("b", op, float64(r.rand.Intn(100))/10)
	case 2:
		return compare("name", op, Names[r.rand.Intn(len(Names))])
	case 3:
		return compare("score", op, r.rand.Intn(6))
	case 4:
		return predicate.Attr("tags").Contains(Names[r.rand.Intn(len(Names))])
	case 5:
		vs := make([]any, r.rand.Intn(4))
		for i := range vs {
			vs[i] = r.rand.Intn(10)
		}
		return predicate.Attr("a").In(vs...)
	case 6:
		return predicate.Attr("name").In(Names[r.rand.Intn(len(Names))], Names[r.rand.Intn(len(Names))])
	case 7:
		// Type mismatch: only false under the lenient policy.
		return compare("name", op, r.rand.Intn(10))
	default:
		if r.rand.Intn(4) == 0 {
			return predicate.Constant{Value: r.rand.Intn(2) == 0}
		}
		return compare("a", predicate.OpEq, r.rand.Intn(10))
	}
}

func compare(attr string, op predicate.Op, v any) predicate.Comparison {
	return predicate.Comparison{Attr: attr, Op: op, Value: value.MustFromAny(v)}
}

// BruteForceFilter evaluates p against every record and returns the ids
// of the matches in ascending order. It is the ground truth for filters.
func BruteForceFilter(records []Record, p predicate.Predicate, strict bool) ([]model.ID, error) {
	eval := predicate.Evaluator{Reader: accessor.For[Record](), Strict: strict}

	out := []model.ID{}
	for i := range records {
		ok, err := eval.Eval(p, records[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, model.ID(i))
		}
	}
	return out, nil
}
