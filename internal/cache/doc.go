// Package cache provides a small LRU cache.
//
// The collection uses it to keep parsed query expressions, so repeated
// textual or CEL queries skip the parser.
package cache
