package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

// ErrSyntax is returned for malformed expressions.
var ErrSyntax = errors.New("syntax error")

// Error describes a malformed expression.
//
// errors.Is(err, ErrSyntax) reports true.
type Error struct {
	Input string
	Pos   int // byte offset, -1 when unknown
	Msg   string
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("syntax error: %s", e.Msg)
	}
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

func (e *Error) Unwrap() error { return ErrSyntax }

// Parse parses a textual expression into a predicate.
func Parse(input string) (predicate.Predicate, error) {
	p := newParser(input)
	if p.curTok.Type == EOF {
		return nil, p.errorf(p.curTok, "empty expression")
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != EOF {
		return nil, p.errorf(p.curTok, "unexpected %s after expression", describe(p.curTok))
	}
	return expr, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) predicate.Predicate {
	p, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	input   string
	lexer   *Lexer
	curTok  Token
	peekTok Token
}

func newParser(input string) *parser {
	p := &parser{input: input, lexer: NewLexer(input)}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lexer.NextToken()
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &Error{Input: p.input, Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

// parseOr parses `and (OR and)*`.
func (p *parser) parseOr() (predicate.Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curTok.Type == OR {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = predicate.Or{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd parses `unary (AND unary)*`.
func (p *parser) parseAnd() (predicate.Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curTok.Type == AND {
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = predicate.And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (predicate.Predicate, error) {
	switch p.curTok.Type {
	case NOT:
		return nil, p.errorf(p.curTok, "NOT is not supported")
	case PAREN_OPEN:
		p.nextToken()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != PAREN_CLOSE {
			return nil, p.errorf(p.curTok, "expected ), got %s", describe(p.curTok))
		}
		p.nextToken()
		return expr, nil
	case TRUE, FALSE:
		if !isComparator(p.peekTok.Type) && p.peekTok.Type != IN {
			c := predicate.Constant{Value: p.curTok.Type == TRUE}
			p.nextToken()
			return c, nil
		}
	}
	return p.parseComparison()
}

// operand is one side of a comparison: an attribute or a literal.
type operand struct {
	tok   Token
	attr  string
	value value.Value
}

func (o operand) isAttr() bool { return o.attr != "" }

func (p *parser) parseOperand() (operand, error) {
	tok := p.curTok
	if tok.Type == IDENTIFIER {
		p.nextToken()
		return operand{tok: tok, attr: tok.Literal}, nil
	}
	v, err := p.parseLiteral()
	if err != nil {
		return operand{}, err
	}
	return operand{tok: tok, value: v}, nil
}

func (p *parser) parseLiteral() (value.Value, error) {
	tok := p.curTok
	var v value.Value
	switch tok.Type {
	case NUMBER:
		n, err := parseNumber(tok.Literal)
		if err != nil {
			return value.Value{}, p.errorf(tok, "invalid number %q", tok.Literal)
		}
		v = n
	case STRING:
		v = value.String(tok.Literal)
	case TRUE:
		v = value.Bool(true)
	case FALSE:
		v = value.Bool(false)
	case NULL:
		v = value.Null()
	default:
		return value.Value{}, p.errorf(tok, "expected attribute or literal, got %s", describe(tok))
	}
	p.nextToken()
	return v, nil
}

func parseNumber(lit string) (value.Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return value.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return value.Value{}, err
	}
	return value.Float(f), nil
}

func (p *parser) parseComparison() (predicate.Predicate, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	opTok := p.curTok
	switch {
	case opTok.Type == IN:
		p.nextToken()
		return p.parseIn(left)
	case isComparator(opTok.Type):
		p.nextToken()
	default:
		return nil, p.errorf(opTok, "expected comparison operator after %s, got %s", describe(left.tok), describe(opTok))
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	op := comparators[opTok.Type]
	switch {
	case left.isAttr() && !right.isAttr():
		return predicate.Comparison{Attr: left.attr, Op: op, Value: right.value}, nil
	case !left.isAttr() && right.isAttr():
		return predicate.Comparison{Attr: right.attr, Op: op.Flip(), Value: left.value}, nil
	case left.isAttr():
		return nil, p.errorf(opTok, "comparing attributes %s and %s is not supported", left.attr, right.attr)
	default:
		return nil, p.errorf(opTok, "comparison between two literals")
	}
}

// parseIn parses the right side of `attr IN (v, ...)` or `v IN attr`.
func (p *parser) parseIn(left operand) (predicate.Predicate, error) {
	if !left.isAttr() {
		if p.curTok.Type != IDENTIFIER {
			return nil, p.errorf(p.curTok, "expected attribute after IN, got %s", describe(p.curTok))
		}
		attr := p.curTok.Literal
		p.nextToken()
		return predicate.Membership{Value: left.value, Attr: attr}, nil
	}

	if p.curTok.Type != PAREN_OPEN {
		return nil, p.errorf(p.curTok, "expected ( after IN, got %s", describe(p.curTok))
	}
	p.nextToken()

	values := []value.Value{}
	for p.curTok.Type != PAREN_CLOSE {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		switch p.curTok.Type {
		case COMMA:
			p.nextToken()
		case PAREN_CLOSE:
		default:
			return nil, p.errorf(p.curTok, "expected , or ), got %s", describe(p.curTok))
		}
	}
	p.nextToken()
	return predicate.InSet{Attr: left.attr, Values: values}, nil
}

var comparators = map[TokenType]predicate.Op{
	EQ: predicate.OpEq,
	NE: "!=",
	LT: predicate.OpLt,
	LE: predicate.OpLe,
	GT: predicate.OpGt,
	GE: predicate.OpGe,
}

func isComparator(t TokenType) bool {
	_, ok := comparators[t]
	return ok
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case IDENTIFIER, NUMBER, ILLEGAL:
		return strconv.Quote(tok.Literal)
	case STRING:
		return "string " + strconv.Quote(tok.Literal)
	default:
		return tok.Type.String()
	}
}
