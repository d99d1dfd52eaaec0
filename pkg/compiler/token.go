package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF   TokenType = iota // sentinel: end of input
	ERROR                  // malformed lexeme, e.g. "2a"

	// Literals
	IDENTIFIER // variable name
	INTEGER    // decimal integer literal
	FLOAT_LIT  // decimal literal with a fractional part, e.g. 3.14

	// Keywords
	INT    // "int"
	FLOAT  // "float"
	DOUBLE // "double"
	FOR    // "for"

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	SEMICOLON // ;

	// Arithmetic operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PLUS_PLUS // ++

	ASSIGN // =

	// Relational operators
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=

	numTokenTypes
)

// tokenNames is indexed by TokenType; the array length is pinned to
// numTokenTypes so a missing entry fails to compile.
var tokenNames = [numTokenTypes]string{
	EOF:        "EOF",
	ERROR:      "ERROR",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	FLOAT_LIT:  "FLOAT_LIT",
	INT:        "INT",
	FLOAT:      "FLOAT",
	DOUBLE:     "DOUBLE",
	FOR:        "FOR",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	SEMICOLON:  "SEMICOLON",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	PLUS_PLUS:  "PLUS_PLUS",
	ASSIGN:     "ASSIGN",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	LESS:       "LESS",
	GREATER:    "GREATER",
	LESS_EQ:    "LESS_EQ",
	GREATER_EQ: "GREATER_EQ",
}

func (tt TokenType) String() string {
	if tt >= 0 && tt < numTokenTypes {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"int":    INT,
	"float":  FLOAT,
	"double": DOUBLE,
	"for":    FOR,
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
