// Package plan defines query plan nodes and the logical plan builder.
//
// A logical plan (ScanFilter, Intersect, Union) mirrors the predicate tree.
// The optimizer rewrites it into a physical plan that may also hold
// IndexLookup, IndexRange, Filter and Empty nodes. Every node renders as an
// indented tree:
//
//	Intersect
//	  - IndexLookup: SortedIndex(a) = 2
//	  - ScanFilter: b < 3
package plan
