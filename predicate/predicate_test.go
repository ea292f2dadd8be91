package predicate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/idxset/value"
)

func TestOp(t *testing.T) {
	assert.True(t, OpEq.Valid())
	assert.False(t, Op("!=").Valid())
	assert.False(t, OpEq.IsRange())
	assert.True(t, OpGe.IsRange())

	assert.Equal(t, OpGt, OpLt.Flip())
	assert.Equal(t, OpGe, OpLe.Flip())
	assert.Equal(t, OpLt, OpGt.Flip())
	assert.Equal(t, OpLe, OpGe.Flip())
	assert.Equal(t, OpEq, OpEq.Flip())
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		p    Predicate
		want string
	}{
		{"comparison", Attr("a").Eq(2), "a = 2"},
		{"string literal", Attr("name").Lt("bob"), `name < "bob"`},
		{"membership", Attr("tags").Contains(2), "2 IN tags"},
		{"in set", Attr("a").In(1, 2), "a IN (1, 2)"},
		{"constant", True(), "TRUE"},
		{"and chain", AllOf(Attr("a").Eq(1), Attr("b").Eq(2), Attr("c").Eq(3)), "a = 1 AND b = 2 AND c = 3"},
		{"right nested and", And{Left: Attr("a").Eq(1), Right: Attr("b").Eq(2).And(Attr("c").Eq(3))}, "a = 1 AND (b = 2 AND c = 3)"},
		{"or under and", Attr("a").Eq(1).And(Attr("b").Eq(2).Or(Attr("c").Eq(3))), "a = 1 AND (b = 2 OR c = 3)"},
		{"and under or", Attr("a").Eq(1).Or(Attr("b").Eq(2).And(Attr("c").Eq(3))), "a = 1 OR b = 2 AND c = 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.String())
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Attr("a").Eq(1).And(Attr("b").In(1))))

	err := Validate(Comparison{Attr: "a", Op: "!=", Value: value.Int(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedExpression))

	var unsupported *UnsupportedExpressionError
	require.ErrorAs(t, Validate(And{Left: True(), Right: nil}), &unsupported)
	assert.Equal(t, "nil predicate", unsupported.Reason)

	assert.ErrorIs(t, Validate(Comparison{Op: OpEq, Value: value.Int(1)}), ErrUnsupportedExpression)
}

func TestBuilderFolds(t *testing.T) {
	assert.Equal(t, True(), AllOf())
	assert.Equal(t, False(), AnyOf())
	assert.Equal(t, Attr("a").Eq(1), AllOf(Attr("a").Eq(1)))

	p := AnyOf(Attr("a").Eq(1), Attr("b").Eq(2), Attr("c").Eq(3))
	or, ok := p.(Or)
	require.True(t, ok)
	_, leftIsOr := or.Left.(Or)
	assert.True(t, leftIsOr)
	assert.Equal(t, Attr("c").Eq(3), or.Right)
}

func TestBuilderPanicsOnUnsupportedLiteral(t *testing.T) {
	assert.Panics(t, func() { Attr("a").Eq(struct{}{}) })
}
