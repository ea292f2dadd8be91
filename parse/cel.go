package parse

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

// celEnv is shared; parsing does not depend on declarations.
var celEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv()
})

var celComparators = map[string]predicate.Op{
	operators.Equals:        predicate.OpEq,
	operators.NotEquals:     "!=",
	operators.Less:          predicate.OpLt,
	operators.LessEquals:    predicate.OpLe,
	operators.Greater:       predicate.OpGt,
	operators.GreaterEquals: predicate.OpGe,
}

// ParseCEL parses a CEL expression into a predicate.
//
// Supported are identifiers, scalar literals, list literals on the right of
// `in`, the comparison operators, `&&` and `||`. Anything else fails with
// *Error.
func ParseCEL(input string) (predicate.Predicate, error) {
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, iss := env.Parse(input)
	if iss != nil && iss.Err() != nil {
		pos := -1
		if errs := iss.Errors(); len(errs) > 0 && errs[0].Location != nil {
			pos = errs[0].Location.Column()
		}
		return nil, &Error{Input: input, Pos: pos, Msg: iss.Err().Error()}
	}

	c := celConverter{input: input}
	return c.convert(ast.NativeRep().Expr())
}

type celConverter struct {
	input string
}

func (c celConverter) errorf(format string, args ...any) error {
	return &Error{Input: c.input, Pos: -1, Msg: fmt.Sprintf(format, args...)}
}

func (c celConverter) convert(e celast.Expr) (predicate.Predicate, error) {
	switch e.Kind() {
	case celast.LiteralKind:
		if b, ok := e.AsLiteral().(types.Bool); ok {
			return predicate.Constant{Value: bool(b)}, nil
		}
		return nil, c.errorf("literal %v is not a condition", e.AsLiteral().Value())
	case celast.CallKind:
		return c.convertCall(e.AsCall())
	default:
		return nil, c.errorf("unsupported CEL expression kind %v", e.Kind())
	}
}

func (c celConverter) convertCall(call celast.CallExpr) (predicate.Predicate, error) {
	if call.IsMemberFunction() {
		return nil, c.errorf("unsupported CEL function %s", call.FunctionName())
	}
	args := call.Args()
	fn := call.FunctionName()

	switch fn {
	case operators.LogicalAnd, operators.LogicalOr:
		if len(args) != 2 {
			return nil, c.errorf("%s expects two operands", fn)
		}
		left, err := c.convert(args[0])
		if err != nil {
			return nil, err
		}
		right, err := c.convert(args[1])
		if err != nil {
			return nil, err
		}
		if fn == operators.LogicalAnd {
			return predicate.And{Left: left, Right: right}, nil
		}
		return predicate.Or{Left: left, Right: right}, nil
	case operators.LogicalNot:
		return nil, c.errorf("negation is not supported")
	case operators.In:
		return c.convertIn(args)
	}

	op, ok := celComparators[fn]
	if !ok || len(args) != 2 {
		return nil, c.errorf("unsupported CEL function %s", fn)
	}

	left, right := args[0], args[1]
	switch {
	case left.Kind() == celast.IdentKind && right.Kind() == celast.LiteralKind:
		v, err := c.literal(right.AsLiteral())
		if err != nil {
			return nil, err
		}
		return predicate.Comparison{Attr: left.AsIdent(), Op: op, Value: v}, nil
	case left.Kind() == celast.LiteralKind && right.Kind() == celast.IdentKind:
		v, err := c.literal(left.AsLiteral())
		if err != nil {
			return nil, err
		}
		return predicate.Comparison{Attr: right.AsIdent(), Op: op.Flip(), Value: v}, nil
	default:
		return nil, c.errorf("comparison needs one attribute and one literal")
	}
}

func (c celConverter) convertIn(args []celast.Expr) (predicate.Predicate, error) {
	if len(args) != 2 {
		return nil, c.errorf("in expects two operands")
	}
	left, right := args[0], args[1]

	switch {
	case left.Kind() == celast.IdentKind && right.Kind() == celast.ListKind:
		elems := right.AsList().Elements()
		values := make([]value.Value, 0, len(elems))
		for _, el := range elems {
			if el.Kind() != celast.LiteralKind {
				return nil, c.errorf("list elements must be literals")
			}
			v, err := c.literal(el.AsLiteral())
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return predicate.InSet{Attr: left.AsIdent(), Values: values}, nil
	case left.Kind() == celast.LiteralKind && right.Kind() == celast.IdentKind:
		v, err := c.literal(left.AsLiteral())
		if err != nil {
			return nil, err
		}
		return predicate.Membership{Value: v, Attr: right.AsIdent()}, nil
	default:
		return nil, c.errorf("in needs an attribute and a list, or a literal and an attribute")
	}
}

func (c celConverter) literal(v ref.Val) (value.Value, error) {
	switch x := v.(type) {
	case types.Null:
		return value.Null(), nil
	case types.Bytes:
		return value.Value{}, c.errorf("bytes literals are not supported")
	case types.Bool:
		return value.Bool(bool(x)), nil
	case types.Int:
		return value.Int(int64(x)), nil
	case types.Uint:
		return value.FromAny(uint64(x))
	case types.Double:
		return value.Float(float64(x)), nil
	case types.String:
		return value.String(string(x)), nil
	default:
		return value.Value{}, c.errorf("unsupported literal %v", v)
	}
}
