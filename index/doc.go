// Package index implements the per-attribute secondary indexes.
//
// Three variants are provided, each advertising what it can answer:
//
//   - HashIndex: exact lookups (`a = 1`).
//   - SortedIndex: exact and range lookups (`a = 1`, `1 < a <= 3`) over a
//     single orderable class (numeric, string or bool).
//   - InvertedIndex: membership lookups (`1 IN a`) over collection
//     attributes, one posting per element.
//
// Every index maps values to identity sets (Roaring bitmaps). Lookups always
// return a fresh set owned by the caller.
//
// Null attribute values and NaN never satisfy a comparison, so neither is
// posted in a HashIndex or SortedIndex.
package index
