// Package parse turns textual query expressions into predicates.
//
// Parse accepts a small SQL-like grammar:
//
//	a = 2 AND (b < 3 OR 2 IN tags)
//	name IN ("ann", "bob")
//	1 < a AND 3 >= a
//
// Keywords are case-insensitive. `literal op attr` is normalized to
// `attr op' literal`. `!=` and `<>` parse, but the plan builder rejects them.
//
// ParseCEL accepts the equivalent subset of CEL (==, <, <=, >, >=, &&, ||,
// `in`) and produces the same predicate trees.
package parse
