package expr

// latexHandler builds the AST for one LaTeX command. The command token has
// already been consumed; its position anchors the produced node.
type latexHandler func(p *Parser, cmd Token) (Node, error)

// latexHandlers is the command dispatch table. \cdot and \times are infix
// and handled directly by the term parser. The table is populated in init:
// the handlers recurse into the parser, which consults the table again.
var latexHandlers = make(map[string]latexHandler)

func init() {
	latexHandlers["frac"] = parseFrac
	latexHandlers["sqrt"] = parseRadical
	latexHandlers["sum"] = parseIterator
	latexHandlers["prod"] = parseIterator
	latexHandlers["sin"] = parseLatexFunc
	latexHandlers["cos"] = parseLatexFunc
	latexHandlers["tan"] = parseLatexFunc
	latexHandlers["log"] = parseLatexFunc
	latexHandlers["ln"] = parseLatexFunc
	latexHandlers["pi"] = parseConstant
	latexHandlers["phi"] = parseConstant
}

// parseFrac parses \frac{numerator}{denominator} into a division.
func parseFrac(p *Parser, cmd Token) (Node, error) {
	num, err := p.parseBraced()
	if err != nil {
		return nil, err
	}
	den, err := p.parseBraced()
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Op: OpDiv, Left: num, Right: den, Span: spanAcross(cmd.Pos, den.Pos(), cmd.Pos)}, nil
}

// parseRadical parses \sqrt{x} into the sqrt function and \sqrt[n]{x} into
// x^(1/n).
func parseRadical(p *Parser, cmd Token) (Node, error) {
	if p.current().Type == TokenLBracket {
		p.advance()
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRBracket, "to close root index"); err != nil {
			return nil, err
		}
		arg, err := p.parseBraced()
		if err != nil {
			return nil, err
		}
		one := &NumberNode{Value: 1, Span: index.Pos()}
		exp := &BinaryNode{Op: OpDiv, Left: one, Right: index, Span: index.Pos()}
		return &BinaryNode{Op: OpPow, Left: arg, Right: exp, Span: spanAcross(cmd.Pos, arg.Pos(), cmd.Pos)}, nil
	}

	arg, err := p.parseBraced()
	if err != nil {
		return nil, err
	}
	return &FuncNode{Name: "sqrt", Args: []Node{arg}, Span: spanAcross(cmd.Pos, arg.Pos(), cmd.Pos)}, nil
}

// parseIterator parses \sum_{v=start}^{end}{body} and the \prod equivalent.
func parseIterator(p *Parser, cmd Token) (Node, error) {
	kind := IterSum
	if cmd.Value == "prod" {
		kind = IterProd
	}

	if _, err := p.expect(TokenUnderscore, "after \\"+cmd.Value); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace, "to open the bound binding"); err != nil {
		return nil, err
	}
	varTok, err := p.expect(TokenIdent, "as the iteration variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEquals, "after the iteration variable"); err != nil {
		return nil, err
	}
	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBrace, "to close the bound binding"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenCaret, "after \\"+cmd.Value+" lower bound"); err != nil {
		return nil, err
	}
	end, err := p.parseBraced()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBraced()
	if err != nil {
		return nil, err
	}

	return &IteratorNode{
		Kind:     kind,
		Variable: varTok.Value,
		Start:    start,
		End:      end,
		Body:     body,
		Span:     spanAcross(cmd.Pos, body.Pos(), cmd.Pos),
	}, nil
}

// parseLatexFunc parses \sin{x} and the other unary function commands.
func parseLatexFunc(p *Parser, cmd Token) (Node, error) {
	arg, err := p.parseBraced()
	if err != nil {
		return nil, err
	}
	return &FuncNode{Name: cmd.Value, Args: []Node{arg}, Span: spanAcross(cmd.Pos, arg.Pos(), cmd.Pos)}, nil
}

// parseConstant parses \pi and \phi as references to the named constants.
func parseConstant(p *Parser, cmd Token) (Node, error) {
	return &VariableNode{Name: cmd.Value, Span: cmd.Pos}, nil
}
