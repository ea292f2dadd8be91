// Package idxset provides declarative, indexed retrieval over in-memory
// collections of arbitrary Go objects.
//
// A Collection holds objects by stable identity and maintains one index per
// registered attribute. A query is a boolean predicate over attributes; it
// is compiled into a logical plan, optimized against the available indexes
// and executed with Roaring bitmap set operations, falling back to a scan
// wherever no index applies.
//
// # Quick Start
//
//	type Item struct {
//	    A    int      `idx:"a"`
//	    Tags []string `idx:"tags"`
//	}
//
//	c, err := idxset.New(items,
//	    []idxset.IndexSpec{idxset.Index("a"), idxset.Index("tags")})
//	if err != nil {
//	    panic(err)
//	}
//
//	// Builder API
//	res, _ := c.Filter(predicate.Attr("a").Gt(1).And(predicate.Attr("a").Le(3)))
//
//	// Text
//	res, _ = c.FilterText(`1 < a AND 3 >= a`)
//
//	// CEL
//	res, _ = c.FilterCEL(`a == 2 && "x" in tags`)
//
// # Index Selection
//
// Index(attr) infers the variant from a sample of the initial objects:
//   - collection values: InvertedIndex (membership `v IN attr`)
//   - values of one order class: SortedIndex (equality and ranges)
//   - anything else: HashIndex (equality)
//
// IndexAs(kind, attr) requests a variant explicitly, for example a HashIndex
// to trade range capability for cheaper updates.
//
// # Explain
//
//	ex, _ := c.Explain(predicate.Attr("a").Eq(2))
//	fmt.Println(ex)
//	// Logical:
//	// ScanFilter: a = 2
//	// Physical:
//	// IndexLookup: SortedIndex(a) = 2
//
// # Comparison Policy
//
// Comparing values without a common ordering (a string attribute against a
// numeric literal) makes the leaf false for that object. With
// WithStrictComparisons the query fails with a *predicate.ComparisonError
// instead.
//
// # Concurrency
//
// Queries take a read lock and may run in parallel. Insert and Remove take
// the write lock.
package idxset
