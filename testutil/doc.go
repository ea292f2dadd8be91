// Package testutil provides testing utilities for idxset.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random records and predicates and
// for computing the ground-truth result of a filter by brute force.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	records := rng.Records(1000)
//	pred := rng.Predicate(3)
//
// # Ground Truth
//
//	want, err := testutil.BruteForceFilter(records, pred, false)
package testutil
