// Package model defines the identity types shared by every stage of the
// query pipeline.
//
// # Identity Types
//
//   - ID: stable, arena-assigned identity of a stored object (uint32)
//   - IDSet: compressed set of identities backed by a Roaring Bitmap
//
// Identities are assigned once at insertion and never reused, so two objects
// with equal attribute values are still distinct members of a collection.
//
// Index postings, executor intermediate results and final query results are
// all IDSets:
//
//	s := model.NewIDSet()
//	s.Add(3)
//	s.And(other)
//	for id := range s.Iterator() {
//	    ...
//	}
package model
