// Package executor evaluates physical plans to identity sets.
package executor
