// Package arena stores the objects of a collection in append-only slots.
//
// The slot position is the object's identity. Removing an object leaves a
// tombstone; identities are never reused or reordered.
package arena
