package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses an expression string into an AST.
type Parser struct {
	lexer *Lexer
	cur   Token
	input string
}

// Parse parses a single expression. Trailing input after the expression is
// an error.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	p := &Parser{lexer: NewLexer(input), input: input}
	p.advance()

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.cur.Value, p.cur.Pos)
	}
	return node, nil
}

func (p *Parser) advance() {
	p.cur = p.lexer.NextToken()
}

func (p *Parser) expect(tt TokenType, what string) error {
	if p.cur.Type != tt {
		return fmt.Errorf("expected %s at position %d, got %q", what, p.cur.Pos, p.cur.Value)
	}
	p.advance()
	return nil
}

// parseOr: and ( ("||" | "or") and )*
func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOr || p.isKeyword("or") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

// parseAnd: equality ( ("&&" | "and") equality )*
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenAnd || p.isKeyword("and") {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

// parseEquality: comparison ( ("==" | "!=") comparison )*
func (p *Parser) parseEquality() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenEq || p.cur.Type == TokenNeq {
		op := OpEq
		if p.cur.Type == TokenNeq {
			op = OpNeq
		}
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseComparison: additive ( ("<" | "<=" | ">" | ">=") additive )*
func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.cur.Type {
		case TokenLt:
			op = OpLt
		case TokenLte:
			op = OpLte
		case TokenGt:
			op = OpGt
		case TokenGte:
			op = OpGte
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

// parseAdditive: multiplicative ( ("+" | "-") multiplicative )*
func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		op := OpAdd
		if p.cur.Type == TokenMinus {
			op = OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseMultiplicative: unary ( ("*" | "/" | "%") unary )*
func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.cur.Type {
		case TokenStar:
			op = OpMul
		case TokenSlash:
			op = OpDiv
		case TokenPercent:
			op = OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

// parseUnary: ("!" | "not" | "-") unary | primary
func (p *Parser) parseUnary() (Node, error) {
	if p.cur.Type == TokenBang || p.isKeyword("not") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpNot, X: x}, nil
	}
	if p.cur.Type == TokenMinus {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpNeg, X: x}, nil
	}
	return p.parsePrimary()
}

// parsePrimary: literal | list | "(" expr ")" | path [call]
func (p *Parser) parsePrimary() (Node, error) {
	switch p.cur.Type {
	case TokenNumber:
		f, err := strconv.ParseFloat(p.cur.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", p.cur.Value, p.cur.Pos)
		}
		p.advance()
		return &Literal{Value: f}, nil

	case TokenString:
		v := p.cur.Value
		p.advance()
		return &Literal{Value: v}, nil

	case TokenLParen:
		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return node, nil

	case TokenLBracket:
		return p.parseList()

	case TokenIdent:
		switch p.cur.Value {
		case "true":
			p.advance()
			return &Literal{Value: true}, nil
		case "false":
			p.advance()
			return &Literal{Value: false}, nil
		case "null":
			p.advance()
			return &Literal{Value: nil}, nil
		}
		return p.parsePathOrCall()

	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of expression")

	default:
		return nil, fmt.Errorf("unexpected %q at position %d", p.cur.Value, p.cur.Pos)
	}
}

// parseList: "[" [expr ("," expr)*] "]"
func (p *Parser) parseList() (Node, error) {
	p.advance() // [
	var items []Node
	if p.cur.Type != TokenRBracket {
		for {
			item, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if p.cur.Type != TokenComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(TokenRBracket, "']'"); err != nil {
		return nil, err
	}
	return &List{Items: items}, nil
}

// parsePathOrCall: ident ("." ident)* ["(" args ")"]
func (p *Parser) parsePathOrCall() (Node, error) {
	parts := []string{p.cur.Value}
	p.advance()

	for p.cur.Type == TokenDot {
		p.advance()
		if p.cur.Type != TokenIdent {
			return nil, fmt.Errorf("expected identifier after '.' at position %d", p.cur.Pos)
		}
		parts = append(parts, p.cur.Value)
		p.advance()
	}

	if p.cur.Type == TokenLParen {
		p.advance()
		var args []Node
		if p.cur.Type != TokenRParen {
			for {
				arg, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.Type != TokenComma {
					break
				}
				p.advance()
			}
		}
		if err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return &Call{Name: strings.Join(parts, "."), Args: args}, nil
	}

	return &Path{Parts: parts}, nil
}

func (p *Parser) isKeyword(kw string) bool {
	return p.cur.Type == TokenIdent && p.cur.Value == kw
}
