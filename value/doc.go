// Package value provides the typed values that flow through predicates,
// attribute accessors and indexes.
//
// # Value Types
//
//   - Null: value.Null()
//   - Int: value.Int(2024)
//   - Float: value.Float(3.14)
//   - String: value.String("tech")
//   - Bool: value.Bool(true)
//   - Array: value.Array([]value.Value{value.Int(1), value.Int(2)})
//
// Arbitrary Go values are converted with FromAny.
//
// # Equality and Ordering
//
// Equal never fails: values of unrelated kinds are simply not equal.
// Compare orders values inside one Class (numeric, string, bool) and fails
// with ErrIncomparable across classes.
//
// Key returns a stable posting key; numerically equal ints and floats share
// a key so hash lookups agree with Equal.
package value
