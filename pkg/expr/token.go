// Package expr implements the math expression engine: tokenizer, recursive
// descent parser with LaTeX command handlers, AST, direct and step-recording
// evaluators, and the plain/LaTeX expression printer.
package expr

import "github.com/calctrace/calctrace/pkg/types"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// TokenNone marks an unrecognized character. The lexer never fails;
	// the parser reports the error with full position context.
	TokenNone TokenType = iota

	TokenNumber  // decimal numeric literal
	TokenIdent   // identifier: variable, function, or constant name
	TokenCommand // backslash LaTeX command, Value holds the name

	// Operators
	TokenPlus   // +
	TokenMinus  // -
	TokenStar   // *
	TokenSlash  // /
	TokenCaret  // ^ (exponent and LaTeX superscript)
	TokenBang   // !
	TokenComma  // ,
	TokenEquals // = (iterator bound binding)

	// Grouping
	TokenLParen     // (
	TokenRParen     // )
	TokenLBrace     // {
	TokenRBrace     // }
	TokenLBracket   // [
	TokenRBracket   // ]
	TokenUnderscore // _ (LaTeX subscript)

	TokenEOF // end of input
)

// Token represents a single lexical token.
type Token struct {
	Type   TokenType
	Value  string  // literal text; for TokenCommand, the name without backslash
	NumVal float64 // parsed value for TokenNumber
	Pos    types.Position
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenNone:
		return "NONE"
	case TokenNumber:
		return "NUMBER"
	case TokenIdent:
		return "IDENT"
	case TokenCommand:
		return "COMMAND"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenStar:
		return "STAR"
	case TokenSlash:
		return "SLASH"
	case TokenCaret:
		return "CARET"
	case TokenBang:
		return "BANG"
	case TokenComma:
		return "COMMA"
	case TokenEquals:
		return "EQUALS"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenLBrace:
		return "LBRACE"
	case TokenRBrace:
		return "RBRACE"
	case TokenLBracket:
		return "LBRACKET"
	case TokenRBracket:
		return "RBRACKET"
	case TokenUnderscore:
		return "UNDERSCORE"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}
