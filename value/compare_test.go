package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int int", Int(1), Int(1), true},
		{"int float", Int(2), Float(2.0), true},
		{"int float fraction", Int(2), Float(2.5), false},
		{"string", String("a"), String("a"), true},
		{"string int", String("1"), Int(1), false},
		{"null null", Null(), Null(), true},
		{"null int", Null(), Int(0), false},
		{"nan", Float(math.NaN()), Float(math.NaN()), false},
		{"array", Array([]Value{Int(1)}), Array([]Value{Float(1)}), true},
		{"array len", Array([]Value{Int(1)}), Array(nil), false},
		{"bool", Bool(true), Bool(false), false},
		{"large int vs float", Int(1<<53 + 1), Float(1 << 53), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"int lt", Int(1), Int(2), -1},
		{"int float gt", Int(3), Float(2.5), 1},
		{"float int eq", Float(3), Int(3), 0},
		{"string", String("a"), String("b"), -1},
		{"bool", Bool(false), Bool(true), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_IntFloatBeyondInt64(t *testing.T) {
	two63 := math.Ldexp(1, 63)

	tests := []struct {
		name string
		i    int64
		f    float64
		want int
	}{
		{"max int below 2^63", math.MaxInt64, two63, -1},
		{"max int minus 100 below 2^63", math.MaxInt64 - 100, two63, -1},
		{"min int equals -2^63", math.MinInt64, -two63, 0},
		{"min int above value below -2^63", math.MinInt64, math.Nextafter(-two63, math.Inf(-1)), 1},
		{"positive infinity", math.MaxInt64, math.Inf(1), -1},
		{"negative infinity", math.MinInt64, math.Inf(-1), 1},
		{"fraction above", 2, 2.5, -1},
		{"fraction below", 3, 2.5, 1},
		{"negative fraction", -3, -2.5, -1},
		{"negative fraction below", -2, -2.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(Int(tt.i), Float(tt.f))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			got, err = Compare(Float(tt.f), Int(tt.i))
			require.NoError(t, err)
			assert.Equal(t, -tt.want, got)

			assert.Equal(t, tt.want == 0, Equal(Int(tt.i), Float(tt.f)))
			assert.Equal(t, tt.want == 0, Int(tt.i).Key() == Float(tt.f).Key())
		})
	}
}

func TestCompare_Incomparable(t *testing.T) {
	pairs := [][2]Value{
		{String("a"), Int(1)},
		{Null(), Int(1)},
		{Float(math.NaN()), Int(1)},
		{Array(nil), Array(nil)},
		{Bool(true), Int(1)},
	}
	for _, p := range pairs {
		_, err := Compare(p[0], p[1])
		assert.ErrorIs(t, err, ErrIncomparable)
	}

	assert.Panics(t, func() { MustCompare(String("a"), Int(1)) })
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassNumeric, ClassOf(Int(1)))
	assert.Equal(t, ClassNumeric, ClassOf(Float(1)))
	assert.Equal(t, ClassString, ClassOf(String("")))
	assert.Equal(t, ClassBool, ClassOf(Bool(true)))
	assert.Equal(t, ClassNone, ClassOf(Null()))
	assert.Equal(t, ClassNone, ClassOf(Float(math.NaN())))
	assert.Equal(t, ClassNone, ClassOf(Array(nil)))
}
