package parse

import (
	"fmt"
	"strings"
)

// TokenType identifies a lexical token.
type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER // a, user_id
	STRING     // 'value', "value"
	NUMBER     // 12, -1.5, 2e3

	// Keywords
	AND
	OR
	NOT
	IN
	TRUE
	FALSE
	NULL

	// Operators & Punctuation
	EQ          // = ==
	NE          // != <>
	LT          // <
	LE          // <=
	GT          // >
	GE          // >=
	COMMA       // ,
	PAREN_OPEN  // (
	PAREN_CLOSE // )
)

var keywords = map[string]TokenType{
	"AND":   AND,
	"OR":    OR,
	"NOT":   NOT,
	"IN":    IN,
	"TRUE":  TRUE,
	"FALSE": FALSE,
	"NULL":  NULL,
}

var tokenNames = map[TokenType]string{
	ILLEGAL:     "ILLEGAL",
	EOF:         "end of input",
	IDENTIFIER:  "identifier",
	STRING:      "string",
	NUMBER:      "number",
	AND:         "AND",
	OR:          "OR",
	NOT:         "NOT",
	IN:          "IN",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	NULL:        "NULL",
	EQ:          "=",
	NE:          "!=",
	LT:          "<",
	LE:          "<=",
	GT:          ">",
	GE:          ">=",
	COMMA:       ",",
	PAREN_OPEN:  "(",
	PAREN_CLOSE: ")",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token. Pos is the byte offset of its first character.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

// Lexer splits an expression into tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

// NewLexer returns a Lexer over input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token. At the end of input it keeps returning EOF.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position
	switch l.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}
	case ',':
		l.readChar()
		return Token{Type: COMMA, Literal: ",", Pos: pos}
	case '(':
		l.readChar()
		return Token{Type: PAREN_OPEN, Literal: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: PAREN_CLOSE, Literal: ")", Pos: pos}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
		}
		l.readChar()
		return Token{Type: EQ, Literal: l.input[pos:l.position], Pos: pos}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: NE, Literal: "!=", Pos: pos}
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			l.readChar()
			return Token{Type: LE, Literal: "<=", Pos: pos}
		case '>':
			l.readChar()
			l.readChar()
			return Token{Type: NE, Literal: "<>", Pos: pos}
		}
		l.readChar()
		return Token{Type: LT, Literal: "<", Pos: pos}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: GE, Literal: ">=", Pos: pos}
		}
		l.readChar()
		return Token{Type: GT, Literal: ">", Pos: pos}
	case '\'', '"':
		lit, ok := l.readString()
		if !ok {
			return Token{Type: ILLEGAL, Literal: l.input[pos:], Pos: pos}
		}
		return Token{Type: STRING, Literal: lit, Pos: pos}
	case '-':
		if isDigit(l.peekChar()) {
			return Token{Type: NUMBER, Literal: l.readNumber(), Pos: pos}
		}
	default:
		if isLetter(l.ch) {
			lit := l.readIdentifier()
			return Token{Type: LookupIdent(lit), Literal: lit, Pos: pos}
		}
		if isDigit(l.ch) {
			return Token{Type: NUMBER, Literal: l.readNumber(), Pos: pos}
		}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: ILLEGAL, Literal: string(ch), Pos: pos}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '-' || next == '+' {
			l.readChar()
			if l.ch == '-' || l.ch == '+' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[position:l.position]
}

// readString reads a quoted string. A backslash escapes the next character.
// ok is false when the closing quote is missing.
func (l *Lexer) readString() (string, bool) {
	quote := l.ch
	var b strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return "", false
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return "", false
			}
			b.WriteByte(l.ch)
		case quote:
			l.readChar()
			return b.String(), true
		default:
			b.WriteByte(l.ch)
		}
	}
}

// LookupIdent returns the keyword type of ident, or IDENTIFIER.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize returns all tokens of input up to and including EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
