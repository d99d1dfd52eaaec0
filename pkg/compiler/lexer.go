package compiler

import (
	"strings"
	"unicode"
)

// charClass is the input alphabet of the DFA. Symbol characters are their own
// class (charClass(r)); everything else maps to one of the negative classes.
type charClass rune

const (
	classOther charClass = -(iota + 1)
	classLetter
	classDigit
	classDot
	classSpace
)

// symbolChars lists every character that has a literal class.
const symbolChars = "+-*/=<>!;(){}"

func classify(r rune) charClass {
	switch {
	case r == '_' || unicode.IsLetter(r):
		return classLetter
	case r >= '0' && r <= '9':
		return classDigit
	case r == '.':
		return classDot
	case unicode.IsSpace(r):
		return classSpace
	case strings.ContainsRune(symbolChars, r):
		return charClass(r)
	}
	return classOther
}

type dfaState int

const (
	stateStart     dfaState = iota
	stateIdent              // letter or '_' then letters/digits
	stateInt                // digit run
	stateDot                // digit run then '.', a digit must follow
	stateFloat              // digits '.' digits
	statePlus               // '+', may become "++"
	stateAssign             // '=', may become "=="
	stateLess               // '<', may become "<="
	stateGreater            // '>', may become ">="
	stateBang               // '!', only valid as "!="
	stateMalformed          // numeric run glued to letters, absorbs the rest
	numStates
)

// transition is either a move to another state or, when final is set, the
// end of a token of kind emit that includes the current character.
type transition struct {
	next  dfaState
	emit  TokenType
	final bool
}

func to(s dfaState) transition       { return transition{next: s} }
func finish(tt TokenType) transition { return transition{emit: tt, final: true} }

// dfa is the lexer's transition table. A missing entry ends the token in the
// current state.
var dfa = [numStates]map[charClass]transition{
	stateStart: {
		classLetter: to(stateIdent),
		classDigit:  to(stateInt),
		'+':         to(statePlus),
		'=':         to(stateAssign),
		'<':         to(stateLess),
		'>':         to(stateGreater),
		'!':         to(stateBang),
		'-':         finish(MINUS),
		'*':         finish(STAR),
		'/':         finish(SLASH),
		';':         finish(SEMICOLON),
		'(':         finish(LPAREN),
		')':         finish(RPAREN),
		'{':         finish(LBRACE),
		'}':         finish(RBRACE),
	},
	stateIdent: {
		classLetter: to(stateIdent),
		classDigit:  to(stateIdent),
	},
	stateInt: {
		classDigit:  to(stateInt),
		classDot:    to(stateDot),
		classLetter: to(stateMalformed),
	},
	stateDot: {
		classDigit:  to(stateFloat),
		classDot:    to(stateMalformed),
		classLetter: to(stateMalformed),
	},
	stateFloat: {
		classDigit:  to(stateFloat),
		classDot:    to(stateMalformed),
		classLetter: to(stateMalformed),
	},
	statePlus:    {'+': finish(PLUS_PLUS)},
	stateAssign:  {'=': finish(EQUALS)},
	stateLess:    {'=': finish(LESS_EQ)},
	stateGreater: {'=': finish(GREATER_EQ)},
	stateBang:    {'=': finish(NOT_EQ)},
	stateMalformed: {
		classLetter: to(stateMalformed),
		classDigit:  to(stateMalformed),
		classDot:    to(stateMalformed),
	},
}

// accepting maps states that end a valid token when no transition applies.
var accepting = map[dfaState]TokenType{
	stateIdent:   IDENTIFIER,
	stateInt:     INTEGER,
	stateFloat:   FLOAT_LIT,
	statePlus:    PLUS,
	stateAssign:  ASSIGN,
	stateLess:    LESS,
	stateGreater: GREATER,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line

	tokens []Token
	diags  []*Diagnostic
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) diag(kind DiagKind, lexeme string, line int) {
	l.diags = append(l.diags, &Diagnostic{Kind: kind, Line: line, Lexeme: lexeme})
}

// skipTrivia discards whitespace and both comment styles in a loop so that
// a comment followed immediately by more whitespace is handled.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch {
		case classify(l.peek()) == classSpace:
			l.advance()
		case l.peek() == '/' && l.peek2() == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case l.peek() == '/' && l.peek2() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// Without one, the rest of the input is consumed and a diagnostic recorded.
func (l *Lexer) skipBlockComment() {
	startLine := l.line
	l.advance() // /
	l.advance() // *
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	l.diag(UnterminatedComment, "/*", startLine)
}

// scanToken runs the DFA from the current position. It always consumes at
// least one rune.
func (l *Lexer) scanToken() {
	line := l.line
	start := l.pos
	state := stateStart
	for l.pos < len(l.src) {
		tr, ok := dfa[state][classify(l.peek())]
		if !ok {
			break
		}
		l.advance()
		if tr.final {
			l.tokens = append(l.tokens, Token{Type: tr.emit, Lexeme: string(l.src[start:l.pos]), Line: line})
			return
		}
		state = tr.next
	}

	if l.pos == start {
		// Nothing matched: report the character and step over it.
		l.diag(IllegalCharacter, string(l.advance()), line)
		return
	}

	lexeme := string(l.src[start:l.pos])
	if tt, ok := accepting[state]; ok {
		if tt == IDENTIFIER {
			if kw, isKw := keywords[lexeme]; isKw {
				tt = kw
			}
		}
		l.tokens = append(l.tokens, Token{Type: tt, Lexeme: lexeme, Line: line})
		return
	}

	switch state {
	case stateBang:
		l.diag(IllegalCharacter, lexeme, line)
	default: // stateDot, stateMalformed
		l.diag(InvalidNumericIdentifier, lexeme, line)
		l.tokens = append(l.tokens, Token{Type: ERROR, Lexeme: lexeme, Line: line})
	}
}

// Lex tokenises src and returns all tokens including the final EOF token,
// together with every lexical diagnostic. Lexing never stops early: malformed
// numbers become ERROR tokens and illegal characters are skipped one at a time.
func Lex(src string) ([]Token, []*Diagnostic) {
	l := newLexer(src)
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			break
		}
		l.scanToken()
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Lexeme: "", Line: l.line})
	return l.tokens, l.diags
}
