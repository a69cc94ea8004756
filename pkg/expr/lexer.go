package expr

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/calctrace/calctrace/pkg/types"
)

// Lexer tokenizes an expression string, tracking line and column.
type Lexer struct {
	input  string
	pos    int
	line   int
	col    int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize scans the entire input and returns all tokens, ending with EOF.
// Unrecognized characters become TokenNone tokens rather than errors.
func (l *Lexer) Tokenize() []Token {
	for {
		tok := l.next()
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return l.tokens
}

// next returns the next token from the input.
func (l *Lexer) next() Token {
	l.skipWhitespace()

	start := l.mark()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.span(start)}
	}

	ch := l.input[l.pos]

	if ch >= '0' && ch <= '9' {
		return l.readNumber(start)
	}
	if isLetter(ch) {
		return l.readIdentifier(start)
	}
	if ch == '\\' {
		return l.readCommand(start)
	}

	l.advance()
	switch ch {
	case '+':
		return l.single(TokenPlus, ch, start)
	case '-':
		return l.single(TokenMinus, ch, start)
	case '*':
		return l.single(TokenStar, ch, start)
	case '/':
		return l.single(TokenSlash, ch, start)
	case '^':
		return l.single(TokenCaret, ch, start)
	case '!':
		return l.single(TokenBang, ch, start)
	case ',':
		return l.single(TokenComma, ch, start)
	case '=':
		return l.single(TokenEquals, ch, start)
	case '(':
		return l.single(TokenLParen, ch, start)
	case ')':
		return l.single(TokenRParen, ch, start)
	case '{':
		return l.single(TokenLBrace, ch, start)
	case '}':
		return l.single(TokenRBrace, ch, start)
	case '[':
		return l.single(TokenLBracket, ch, start)
	case ']':
		return l.single(TokenRBracket, ch, start)
	case '_':
		return l.single(TokenUnderscore, ch, start)
	}
	return Token{Type: TokenNone, Value: string(ch), Pos: l.span(start)}
}

func (l *Lexer) single(tt TokenType, ch byte, start marker) Token {
	return Token{Type: tt, Value: string(ch), Pos: l.span(start)}
}

// readNumber reads a decimal literal with at most one decimal point.
func (l *Lexer) readNumber(start marker) Token {
	seenDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= '0' && ch <= '9' {
			l.advance()
		} else if ch == '.' && !seenDot {
			seenDot = true
			l.advance()
		} else {
			break
		}
	}
	raw := l.input[start.pos:l.pos]
	// Cannot fail: raw is digits with at most one point.
	v, _ := strconv.ParseFloat(raw, 64)
	return Token{Type: TokenNumber, Value: raw, NumVal: v, Pos: l.span(start)}
}

// readIdentifier reads a case-folded identifier: a letter followed by
// letters, digits, or underscores.
func (l *Lexer) readIdentifier(start marker) Token {
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance()
	}
	word := strings.ToLower(l.input[start.pos:l.pos])
	return Token{Type: TokenIdent, Value: word, Pos: l.span(start)}
}

// readCommand reads a backslash LaTeX command name. A backslash with no
// letters after it yields a TokenNone.
func (l *Lexer) readCommand(start marker) Token {
	l.advance() // consume backslash
	nameStart := l.pos
	for l.pos < len(l.input) && isLetter(l.input[l.pos]) {
		l.advance()
	}
	if l.pos == nameStart {
		return Token{Type: TokenNone, Value: "\\", Pos: l.span(start)}
	}
	name := strings.ToLower(l.input[nameStart:l.pos])
	return Token{Type: TokenCommand, Value: name, Pos: l.span(start)}
}

// marker captures the lexer position at the start of a token.
type marker struct {
	pos  int
	line int
	col  int
}

func (l *Lexer) mark() marker {
	return marker{pos: l.pos, line: l.line, col: l.col}
}

func (l *Lexer) span(start marker) types.Position {
	return types.Position{Start: start.pos, End: l.pos, Line: start.line, Col: start.col}
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.advance()
	}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || (ch >= '0' && ch <= '9') || ch == '_'
}
