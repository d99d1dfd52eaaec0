package compiler

import (
	"errors"
	"log/slog"

	"tacc/pkg/logger"
	"tacc/pkg/tac"
)

// Options configures one compilation.
type Options struct {
	Logger *slog.Logger // nil means logger.Default()
	Trace  bool         // log every parser step at debug level
	Table  *Table       // nil means LanguageTable()
}

// Result is everything a compilation produced.
type Result struct {
	Tokens      []Token
	Diagnostics []*Diagnostic // lexical ones, then the fatal one if any
	Symbols     *SymbolTable
	Program     *tac.Program // nil when compilation failed
}

// Compile lexes and parses src, generating TAC as it goes. Lexical problems
// are collected in the result. A syntax or semantic error stops compilation
// and is returned; the result then has no Program.
func Compile(src string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	table := opts.Table
	if table == nil {
		table = LanguageTable()
	}

	tokens, diags := Lex(src)
	logger.LogLexing(log, len(tokens), len(diags))
	for _, d := range diags {
		logger.LogWarning(log, "lex", d.Line, d.Error())
	}

	ctx := NewContext(log)
	res := &Result{Tokens: tokens, Diagnostics: diags, Symbols: ctx.Symbols}

	p := NewParser(tokens, table, ctx)
	p.Trace = opts.Trace
	if err := p.Parse(); err != nil {
		var d *Diagnostic
		if errors.As(err, &d) {
			res.Diagnostics = append(res.Diagnostics, d)
			logger.LogError(log, "parse", d.Line, d.Error())
		} else {
			log.Error("Compilation failed", "error", err)
		}
		return res, err
	}

	logger.LogParsing(log, ctx.Program.Len(), ctx.Symbols.Len())
	res.Program = ctx.Program
	return res, nil
}
