package expr

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF      TokenType = iota
	TokenIdent              // identifiers like "file", "status", "hasTag"
	TokenNumber             // numeric literals
	TokenString             // quoted string literals
	TokenEq                 // ==
	TokenNeq                // !=
	TokenLt                 // <
	TokenLte                // <=
	TokenGt                 // >
	TokenGte                // >=
	TokenAnd                // &&
	TokenOr                 // ||
	TokenBang               // !
	TokenPlus               // +
	TokenMinus              // -
	TokenStar               // *
	TokenSlash              // /
	TokenPercent            // %
	TokenDot                // .
	TokenComma              // ,
	TokenLParen             // (
	TokenRParen             // )
	TokenLBracket           // [
	TokenRBracket           // ]
	TokenError              // error token
)

// Token represents a lexer token.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer tokenizes an expression string.
type Lexer struct {
	input string
	pos   int
	start int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	l.start = l.pos
	ch := l.input[l.pos]

	switch ch {
	case '=':
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Type: TokenEq, Value: "==", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenError, Value: "=", Pos: l.start}
	case '!':
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Type: TokenNeq, Value: "!=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenBang, Value: "!", Pos: l.start}
	case '<':
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Type: TokenLte, Value: "<=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenLt, Value: "<", Pos: l.start}
	case '>':
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Type: TokenGte, Value: ">=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenGt, Value: ">", Pos: l.start}
	case '&':
		if l.peek(1) == '&' {
			l.pos += 2
			return Token{Type: TokenAnd, Value: "&&", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenError, Value: "&", Pos: l.start}
	case '|':
		if l.peek(1) == '|' {
			l.pos += 2
			return Token{Type: TokenOr, Value: "||", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenError, Value: "|", Pos: l.start}
	case '+':
		l.pos++
		return Token{Type: TokenPlus, Value: "+", Pos: l.start}
	case '-':
		l.pos++
		return Token{Type: TokenMinus, Value: "-", Pos: l.start}
	case '*':
		l.pos++
		return Token{Type: TokenStar, Value: "*", Pos: l.start}
	case '/':
		l.pos++
		return Token{Type: TokenSlash, Value: "/", Pos: l.start}
	case '%':
		l.pos++
		return Token{Type: TokenPercent, Value: "%", Pos: l.start}
	case '.':
		l.pos++
		return Token{Type: TokenDot, Value: ".", Pos: l.start}
	case ',':
		l.pos++
		return Token{Type: TokenComma, Value: ",", Pos: l.start}
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Value: "(", Pos: l.start}
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Value: ")", Pos: l.start}
	case '[':
		l.pos++
		return Token{Type: TokenLBracket, Value: "[", Pos: l.start}
	case ']':
		l.pos++
		return Token{Type: TokenRBracket, Value: "]", Pos: l.start}
	case '"', '\'':
		return l.scanString(ch)
	default:
		if isDigit(ch) {
			return l.scanNumber()
		}
		if isIdentStart(ch) {
			return l.scanIdent()
		}
		l.pos++
		return Token{Type: TokenError, Value: string(ch), Pos: l.start}
	}
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n < len(l.input) {
		return l.input[l.pos+n]
	}
	return 0
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenIdent, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' && isDigit(l.peek(1)) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) scanString(quote byte) Token {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			switch next {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(next)
			}
			l.pos += 2
			continue
		}
		if ch == quote {
			l.pos++
			return Token{Type: TokenString, Value: sb.String(), Pos: start}
		}
		sb.WriteByte(ch)
		l.pos++
	}

	return Token{Type: TokenError, Value: fmt.Sprintf("unterminated string at %d", start), Pos: start}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
