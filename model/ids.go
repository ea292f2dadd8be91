package model

// ID is the stable identity of an object inside a collection.
// It is the slot position in the arena and is strictly 32-bit, allowing for
// max 4 Billion objects per collection.
type ID uint32

// MaxID is the maximum possible value for an ID.
const MaxID = ^ID(0)
