package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// DiagKind classifies a Diagnostic.
type DiagKind int

const (
	InvalidNumericIdentifier DiagKind = iota // digits followed by letters, or a malformed float
	IllegalCharacter                         // a character no token can start with
	UnterminatedComment                      // "/*" without a closing "*/"
	DuplicateDeclaration                     // name declared twice
	UndeclaredVariable                       // name used before declaration
	SyntaxError                              // token does not fit the grammar
)

var diagKindNames = [...]string{
	InvalidNumericIdentifier: "invalid numeric identifier",
	IllegalCharacter:         "illegal character",
	UnterminatedComment:      "unterminated comment",
	DuplicateDeclaration:     "duplicate declaration",
	UndeclaredVariable:       "undeclared variable",
	SyntaxError:              "syntax error",
}

func (k DiagKind) String() string {
	if k >= 0 && int(k) < len(diagKindNames) {
		return diagKindNames[k]
	}
	return fmt.Sprintf("DiagKind(%d)", int(k))
}

// Lexical reports whether diagnostics of this kind are recoverable.
func (k DiagKind) Lexical() bool {
	return k <= UnterminatedComment
}

var (
	ErrInvalidNumericIdentifier = errors.New("invalid numeric identifier")
	ErrIllegalCharacter         = errors.New("illegal character")
	ErrUnterminatedComment      = errors.New("unterminated comment")
	ErrDuplicateDeclaration     = errors.New("duplicate declaration")
	ErrUndeclaredVariable       = errors.New("undeclared variable")
	ErrSyntax                   = errors.New("syntax error")

	// ErrInternal marks a broken invariant of the action/table data, never a
	// problem with the input program.
	ErrInternal = errors.New("internal compiler error")
)

var diagSentinels = [...]error{
	InvalidNumericIdentifier: ErrInvalidNumericIdentifier,
	IllegalCharacter:         ErrIllegalCharacter,
	UnterminatedComment:      ErrUnterminatedComment,
	DuplicateDeclaration:     ErrDuplicateDeclaration,
	UndeclaredVariable:       ErrUndeclaredVariable,
	SyntaxError:              ErrSyntax,
}

// Diagnostic is a located compiler message. Lexical diagnostics are collected;
// semantic and syntax diagnostics are returned as errors and end compilation.
type Diagnostic struct {
	Kind   DiagKind
	Line   int
	Lexeme string // offending text, or the name for semantic errors

	// Set for SyntaxError only.
	Expected []TokenType
	Actual   TokenType
}

func (d *Diagnostic) Error() string {
	switch d.Kind {
	case SyntaxError:
		want := make([]string, len(d.Expected))
		for i, tt := range d.Expected {
			want[i] = tt.String()
		}
		return fmt.Sprintf("line %d: %s: expected %s, got %s (%q)",
			d.Line, d.Kind, strings.Join(want, " or "), d.Actual, d.Lexeme)
	case DuplicateDeclaration:
		return fmt.Sprintf("line %d: %s: variable %q is already declared", d.Line, d.Kind, d.Lexeme)
	case UndeclaredVariable:
		return fmt.Sprintf("line %d: %s: variable %q is not declared", d.Line, d.Kind, d.Lexeme)
	default:
		return fmt.Sprintf("line %d: %s %q", d.Line, d.Kind, d.Lexeme)
	}
}

// Unwrap exposes the sentinel for the diagnostic kind so callers can use errors.Is.
func (d *Diagnostic) Unwrap() error {
	if d.Kind >= 0 && int(d.Kind) < len(diagSentinels) {
		return diagSentinels[d.Kind]
	}
	return nil
}
