package idxset

import (
	"errors"
	"fmt"

	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/internal/arena"
	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/parse"
	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

var (
	// ErrNotFound is returned when an identity does not refer to a live object.
	ErrNotFound = errors.New("not found")

	// ErrInvalidIndexSpec is returned for index specifications without an attribute.
	ErrInvalidIndexSpec = errors.New("invalid index spec")

	// ErrUnsupportedExpression is returned for predicates the planner cannot handle.
	ErrUnsupportedExpression = predicate.ErrUnsupportedExpression

	// ErrIncomparable is returned when values without a common ordering are compared.
	ErrIncomparable = value.ErrIncomparable

	// ErrSyntax is returned for malformed textual or CEL expressions.
	ErrSyntax = parse.ErrSyntax

	// ErrDuplicateIndex is returned when two indexes are requested for one attribute.
	ErrDuplicateIndex = index.ErrDuplicateIndex
)

// ErrAttribute reports a failure to index one attribute of one object.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrAttribute struct {
	Attr  string
	ID    model.ID
	cause error
}

func (e *ErrAttribute) Error() string {
	return fmt.Sprintf("attribute %q of object %d: %v", e.Attr, e.ID, e.cause)
}

func (e *ErrAttribute) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, arena.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
