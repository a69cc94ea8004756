package expr

import (
	"fmt"

	"github.com/calctrace/calctrace/pkg/types"
)

// Parser is a recursive descent parser over a buffered token slice.
//
// Grammar, low to high precedence:
//
//	expression := term (('+'|'-') term)*
//	term       := factor (('*'|'/'|'\cdot'|'\times') factor)*
//	factor     := '-' factor | postfix ('^' factor)?
//	postfix    := primary '!'*
//	primary    := number | identifier | call | '(' expression ')' | latex-command
type Parser struct {
	tokens []Token
	pos    int
}

// Parse parses a complete expression. It fails with a *types.ParseError on a
// grammar mismatch or when tokens remain after the expression.
func Parse(input string) (Node, error) {
	tokens := NewLexer(input).Tokenize()
	p := &Parser{tokens: tokens}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s", describeToken(tok))
	}
	return node, nil
}

// current returns the current token.
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// advance consumes the current token and returns it.
func (p *Parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

// expect consumes a token of the expected type or fails with a ParseError.
func (p *Parser) expect(tt TokenType, context string) (Token, error) {
	tok := p.current()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s %s, got %s", tt, context, describeToken(tok))
	}
	p.advance()
	return tok, nil
}

func (p *Parser) errorf(tok Token, format string, args ...interface{}) error {
	return types.NewParseError(fmt.Sprintf(format, args...), tok.Pos)
}

func describeToken(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenNone:
		return fmt.Sprintf("character %q", tok.Value)
	case TokenCommand:
		return fmt.Sprintf("command \\%s", tok.Value)
	default:
		return fmt.Sprintf("%q", tok.Value)
	}
}

func (p *Parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		tok := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		op := OpAdd
		if tok.Type == TokenMinus {
			op = OpSub
		}
		left = &BinaryNode{Op: op, Left: left, Right: right, Span: spanAcross(left.Pos(), right.Pos(), tok.Pos)}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.current()
		op := OpMul
		switch {
		case tok.Type == TokenStar:
		case tok.Type == TokenSlash:
			op = OpDiv
		case tok.Type == TokenCommand && (tok.Value == "cdot" || tok.Value == "times"):
			// Infix multiplication commands.
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right, Span: spanAcross(left.Pos(), right.Pos(), tok.Pos)}
	}
}

func (p *Parser) parseFactor() (Node, error) {
	if tok := p.current(); tok.Type == TokenMinus {
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		// Unary minus desugars to 0 - operand.
		zero := &NumberNode{Value: 0, Span: tok.Pos}
		return &BinaryNode{Op: OpSub, Left: zero, Right: operand, Span: spanAcross(tok.Pos, operand.Pos(), tok.Pos)}, nil
	}

	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type == TokenCaret {
		p.advance()
		// Exponentiation is right-associative; a braced exponent is the
		// LaTeX superscript form.
		var exp Node
		if p.current().Type == TokenLBrace {
			exp, err = p.parseBraced()
		} else {
			exp, err = p.parseFactor()
		}
		if err != nil {
			return nil, err
		}
		return &BinaryNode{Op: OpPow, Left: base, Right: exp, Span: spanAcross(base.Pos(), exp.Pos(), tok.Pos)}, nil
	}
	return base, nil
}

func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenBang {
		tok := p.advance()
		node = &FactorialNode{Inner: node, Span: spanAcross(node.Pos(), tok.Pos, tok.Pos)}
	}
	return node, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.current()
	switch tok.Type {
	case TokenNumber:
		p.advance()
		return &NumberNode{Value: tok.NumVal, Span: tok.Pos}, nil

	case TokenIdent:
		p.advance()
		if p.current().Type == TokenLParen {
			args, end, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &FuncNode{Name: tok.Value, Args: args, Span: tok.Pos.Union(end)}, nil
		}
		return &VariableNode{Name: tok.Value, Span: tok.Pos}, nil

	case TokenLParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(TokenRParen, "to close parenthesis")
		if err != nil {
			return nil, err
		}
		return &ParenNode{Inner: inner, Span: tok.Pos.Union(end.Pos)}, nil

	case TokenCommand:
		handler, ok := latexHandlers[tok.Value]
		if !ok {
			return nil, p.errorf(tok, "unknown LaTeX command \\%s", tok.Value)
		}
		p.advance()
		return handler(p, tok)

	default:
		return nil, p.errorf(tok, "unexpected %s", describeToken(tok))
	}
}

// parseArgList parses '(' expression (',' expression)* ')'. The closing
// paren position is returned for span construction.
func (p *Parser) parseArgList() ([]Node, types.Position, error) {
	if _, err := p.expect(TokenLParen, "to open argument list"); err != nil {
		return nil, types.Position{}, err
	}
	var args []Node
	for p.current().Type != TokenRParen {
		if len(args) > 0 {
			if _, err := p.expect(TokenComma, "between arguments"); err != nil {
				return nil, types.Position{}, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, types.Position{}, err
		}
		args = append(args, arg)
	}
	end, err := p.expect(TokenRParen, "to close argument list")
	if err != nil {
		return nil, types.Position{}, err
	}
	return args, end.Pos, nil
}

// parseBraced parses '{' expression '}' and returns the inner node.
func (p *Parser) parseBraced() (Node, error) {
	if _, err := p.expect(TokenLBrace, "to open group"); err != nil {
		return nil, err
	}
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBrace, "to close group"); err != nil {
		return nil, err
	}
	return inner, nil
}
