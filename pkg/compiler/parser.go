package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"tacc/pkg/logger"
)

// Parser is a table-driven LL(1) stack machine. It never recurses: the
// control stack holds terminals still to match, nonterminals still to expand
// and actions still to run, in the order they will be processed (top last).
type Parser struct {
	table  *Table
	tokens []Token
	pos    int
	stack  []GrammarSymbol
	last   Token // most recently matched terminal
	ctx    *Context

	// Trace logs every expansion and match at debug level.
	Trace bool
}

// NewParser prepares a parse of tokens, which must end with EOF, running the
// grammar's actions against ctx.
func NewParser(tokens []Token, table *Table, ctx *Context) *Parser {
	return &Parser{tokens: tokens, table: table, ctx: ctx}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1]
		}
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) push(syms ...GrammarSymbol) {
	for i := len(syms) - 1; i >= 0; i-- {
		p.stack = append(p.stack, syms[i])
	}
}

func (p *Parser) syntaxError(tok Token, expected ...TokenType) error {
	return &Diagnostic{
		Kind:     SyntaxError,
		Line:     tok.Line,
		Lexeme:   tok.Lexeme,
		Expected: expected,
		Actual:   tok.Type,
	}
}

func (p *Parser) trace(msg string, args ...any) {
	if p.Trace && p.ctx.log.Enabled(context.Background(), slog.LevelDebug) {
		p.ctx.log.Debug(msg, args...)
	}
}

// Parse runs the driver to completion. The first syntax or semantic error
// stops it; the context's program is then incomplete.
func (p *Parser) Parse() error {
	p.stack = p.stack[:0]
	p.push(N(p.table.Start()), End)

	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		tok := p.peek()

		switch top.Kind {
		case KindAction:
			p.trace("action", "action", top.Act, "lexeme", p.last.Lexeme)
			if err := p.ctx.exec(top.Act, p.last); err != nil {
				return err
			}

		case KindEnd:
			if tok.Type != EOF {
				return p.syntaxError(tok, EOF)
			}
			return p.ctx.balanced()

		case KindTerminal:
			if tok.Type != top.Term {
				return p.syntaxError(tok, top.Term)
			}
			p.trace("match", "token", tok.Type, "lexeme", tok.Lexeme, "line", tok.Line)
			if tok.Type == ERROR {
				logger.LogWarning(p.ctx.log, "parse", tok.Line, fmt.Sprintf("skipping malformed token %q", tok.Lexeme))
			}
			p.last = tok
			p.pos++

		case KindNonterminal:
			prod, ok := p.table.Lookup(top.NT, tok.Type)
			if !ok {
				return p.syntaxError(tok, p.table.Expected(top.NT)...)
			}
			p.trace("expand", "production", prod.String(), "lookahead", tok.Type)
			p.push(prod.RHS...)

		default:
			return fmt.Errorf("%w: bad control symbol %v", ErrInternal, top)
		}
	}
	return fmt.Errorf("%w: control stack exhausted before end marker", ErrInternal)
}
