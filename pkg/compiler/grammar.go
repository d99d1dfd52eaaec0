package compiler

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// Nonterminal names a grammar rule.
type Nonterminal int

const (
	NTProgram Nonterminal = iota
	NTStmtList
	NTStmt
	NTDecl
	NTDeclBody
	NTDeclInit
	NTType
	NTAssign
	NTAssignBody
	NTFor
	NTForInit
	NTIter
	NTIterTail
	NTCond
	NTRelOp
	NTBlock
	NTExpr
	NTExprTail
	NTTerm
	NTTermTail
	NTFactor
	numNonterminals
)

var nonterminalNames = [numNonterminals]string{
	NTProgram:    "Program",
	NTStmtList:   "StmtList",
	NTStmt:       "Stmt",
	NTDecl:       "Decl",
	NTDeclBody:   "DeclBody",
	NTDeclInit:   "DeclInit",
	NTType:       "Type",
	NTAssign:     "Assign",
	NTAssignBody: "AssignBody",
	NTFor:        "For",
	NTForInit:    "ForInit",
	NTIter:       "Iter",
	NTIterTail:   "IterTail",
	NTCond:       "Cond",
	NTRelOp:      "RelOp",
	NTBlock:      "Block",
	NTExpr:       "Expr",
	NTExprTail:   "ExprTail",
	NTTerm:       "Term",
	NTTermTail:   "TermTail",
	NTFactor:     "Factor",
}

func (nt Nonterminal) String() string {
	if nt >= 0 && nt < numNonterminals {
		return nonterminalNames[nt]
	}
	return fmt.Sprintf("Nonterminal(%d)", int(nt))
}

// SymbolKind tags a GrammarSymbol.
type SymbolKind uint8

const (
	KindTerminal SymbolKind = iota
	KindNonterminal
	KindAction
	KindEnd // bottom-of-stack marker, matches EOF
)

// GrammarSymbol is one element of a production's right-hand side, and of the
// parser's control stack. Only the field selected by Kind is meaningful.
type GrammarSymbol struct {
	Kind SymbolKind
	Term TokenType
	NT   Nonterminal
	Act  Action
}

func T(tt TokenType) GrammarSymbol   { return GrammarSymbol{Kind: KindTerminal, Term: tt} }
func N(nt Nonterminal) GrammarSymbol { return GrammarSymbol{Kind: KindNonterminal, NT: nt} }
func A(act Action) GrammarSymbol     { return GrammarSymbol{Kind: KindAction, Act: act} }

// End is pushed beneath the start symbol.
var End = GrammarSymbol{Kind: KindEnd}

func (s GrammarSymbol) String() string {
	switch s.Kind {
	case KindTerminal:
		return s.Term.String()
	case KindNonterminal:
		return s.NT.String()
	case KindAction:
		return "@" + s.Act.String()
	case KindEnd:
		return "$"
	}
	return fmt.Sprintf("GrammarSymbol(%d)", s.Kind)
}

// Production is LHS → RHS. An empty RHS, or one holding only actions,
// derives ε.
type Production struct {
	LHS Nonterminal
	RHS []GrammarSymbol
}

func (p Production) String() string {
	if len(p.RHS) == 0 {
		return p.LHS.String() + " → ε"
	}
	parts := make([]string, len(p.RHS))
	for i, s := range p.RHS {
		parts[i] = s.String()
	}
	return p.LHS.String() + " → " + strings.Join(parts, " ")
}

func prod(lhs Nonterminal, rhs ...GrammarSymbol) Production {
	return Production{LHS: lhs, RHS: rhs}
}

// Grammar is a start symbol plus its productions.
type Grammar struct {
	Start       Nonterminal
	Productions []Production
}

// Language is the grammar of the source language.
//
//	Program    = StmtList
//	StmtList   = Stmt StmtList | ε
//	Stmt       = Decl | Assign | For | Block | ERROR
//	Decl       = DeclBody ";"
//	DeclBody   = Type IDENTIFIER ("=" Expr)?
//	Type       = "int" | "float" | "double"
//	Assign     = AssignBody ";"
//	AssignBody = IDENTIFIER "=" Expr
//	For        = "for" "(" (DeclBody | AssignBody) ";" Cond ";" Iter ")" Block
//	Iter       = IDENTIFIER ("=" Expr | "++") | "++" IDENTIFIER
//	Cond       = Expr RelOp Expr
//	Block      = "{" StmtList "}"
//	Expr       = Term (("+" | "-") Term)*
//	Term       = Factor (("*" | "/") Factor)*
//	Factor     = "(" Expr ")" | IDENTIFIER | INTEGER | FLOAT_LIT
var Language = &Grammar{
	Start: NTProgram,
	Productions: []Production{
		prod(NTProgram, N(NTStmtList)),

		prod(NTStmtList, N(NTStmt), N(NTStmtList)),
		prod(NTStmtList),

		prod(NTStmt, N(NTDecl)),
		prod(NTStmt, N(NTAssign)),
		prod(NTStmt, N(NTFor)),
		prod(NTStmt, N(NTBlock)),
		prod(NTStmt, T(ERROR)), // a bad lexeme is dropped, the statement list goes on

		prod(NTDecl, N(NTDeclBody), T(SEMICOLON)),
		prod(NTDeclBody, N(NTType), T(IDENTIFIER), A(ActDefineVar), N(NTDeclInit)),
		prod(NTDeclInit, T(ASSIGN), N(NTExpr), A(ActAssign)),
		prod(NTDeclInit, A(ActDropTarget)),

		prod(NTType, T(INT), A(ActSetType)),
		prod(NTType, T(FLOAT), A(ActSetType)),
		prod(NTType, T(DOUBLE), A(ActSetType)),

		prod(NTAssign, N(NTAssignBody), T(SEMICOLON)),
		prod(NTAssignBody, T(IDENTIFIER), A(ActCheckVar), A(ActPushValue), T(ASSIGN), N(NTExpr), A(ActAssign)),

		prod(NTFor,
			T(FOR), T(LPAREN), N(NTForInit), T(SEMICOLON),
			A(ActLoopHeader), N(NTCond), A(ActLoopTest), T(SEMICOLON),
			A(ActStartIter), N(NTIter), A(ActEndIter), T(RPAREN),
			N(NTBlock), A(ActLoopClose)),
		prod(NTForInit, N(NTDeclBody)),
		prod(NTForInit, N(NTAssignBody)),

		prod(NTIter, T(IDENTIFIER), A(ActCheckVar), A(ActPushValue), N(NTIterTail)),
		prod(NTIter, T(PLUS_PLUS), T(IDENTIFIER), A(ActCheckVar), A(ActPushValue), A(ActIncrement)),
		prod(NTIterTail, T(ASSIGN), N(NTExpr), A(ActAssign)),
		prod(NTIterTail, T(PLUS_PLUS), A(ActIncrement)),

		prod(NTCond, N(NTExpr), N(NTRelOp), N(NTExpr), A(ActRelationalGen)),
		prod(NTRelOp, T(LESS), A(ActPushOperator)),
		prod(NTRelOp, T(GREATER), A(ActPushOperator)),
		prod(NTRelOp, T(LESS_EQ), A(ActPushOperator)),
		prod(NTRelOp, T(GREATER_EQ), A(ActPushOperator)),
		prod(NTRelOp, T(EQUALS), A(ActPushOperator)),
		prod(NTRelOp, T(NOT_EQ), A(ActPushOperator)),

		prod(NTBlock, T(LBRACE), N(NTStmtList), T(RBRACE)),

		prod(NTExpr, N(NTTerm), N(NTExprTail)),
		prod(NTExprTail, T(PLUS), N(NTTerm), A(ActAdd), N(NTExprTail)),
		prod(NTExprTail, T(MINUS), N(NTTerm), A(ActSub), N(NTExprTail)),
		prod(NTExprTail),

		prod(NTTerm, N(NTFactor), N(NTTermTail)),
		prod(NTTermTail, T(STAR), N(NTFactor), A(ActMul), N(NTTermTail)),
		prod(NTTermTail, T(SLASH), N(NTFactor), A(ActDiv), N(NTTermTail)),
		prod(NTTermTail),

		prod(NTFactor, T(LPAREN), N(NTExpr), T(RPAREN)),
		prod(NTFactor, T(IDENTIFIER), A(ActCheckVar), A(ActPushValue)),
		prod(NTFactor, T(INTEGER), A(ActPushValue)),
		prod(NTFactor, T(FLOAT_LIT), A(ActPushValue)),
	},
}

// tokenSet is a bit set over TokenType.
type tokenSet uint64

func (s tokenSet) has(tt TokenType) bool { return s&(1<<uint(tt)) != 0 }
func (s *tokenSet) add(tt TokenType)     { *s |= 1 << uint(tt) }

// union adds o to s and reports whether s grew.
func (s *tokenSet) union(o tokenSet) bool {
	before := *s
	*s |= o
	return *s != before
}

func (s tokenSet) slice() []TokenType {
	out := make([]TokenType, 0, bits.OnesCount64(uint64(s)))
	for tt := TokenType(0); tt < numTokenTypes; tt++ {
		if s.has(tt) {
			out = append(out, tt)
		}
	}
	return out
}

// ConflictError reports two productions of the same nonterminal that predict
// on the same lookahead, i.e. a grammar that is not LL(1).
type ConflictError struct {
	NT        Nonterminal
	Lookahead TokenType
	First     Production
	Second    Production
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("LL(1) conflict in %s on %s: %q and %q", e.NT, e.Lookahead, e.First, e.Second)
}

// Table is a predictive parsing table: (nonterminal, lookahead) → production.
type Table struct {
	grammar *Grammar
	entries [numNonterminals]map[TokenType]int // index into grammar.Productions

	nullable [numNonterminals]bool
	first    [numNonterminals]tokenSet
	follow   [numNonterminals]tokenSet
}

// BuildTable computes FIRST and FOLLOW sets for g and fills the table. It
// fails with a *ConflictError when g is not LL(1).
func BuildTable(g *Grammar) (*Table, error) {
	t := &Table{grammar: g}
	for nt := range t.entries {
		t.entries[nt] = make(map[TokenType]int)
	}
	t.computeFirst()
	t.computeFollow()

	for i, p := range g.Productions {
		predict, nullable := t.firstOf(p.RHS)
		if nullable {
			predict.union(t.follow[p.LHS])
		}
		for _, tt := range predict.slice() {
			if j, taken := t.entries[p.LHS][tt]; taken && j != i {
				return nil, &ConflictError{
					NT:        p.LHS,
					Lookahead: tt,
					First:     g.Productions[j],
					Second:    p,
				}
			}
			t.entries[p.LHS][tt] = i
		}
	}
	return t, nil
}

// MustBuildTable is like BuildTable but panics on a conflict.
func MustBuildTable(g *Grammar) *Table {
	t, err := BuildTable(g)
	if err != nil {
		panic("compiler: " + err.Error())
	}
	return t
}

// firstOf returns FIRST of a symbol sequence and whether it can derive ε.
// Actions are transparent.
func (t *Table) firstOf(seq []GrammarSymbol) (tokenSet, bool) {
	var set tokenSet
	for _, s := range seq {
		switch s.Kind {
		case KindTerminal:
			set.add(s.Term)
			return set, false
		case KindNonterminal:
			set.union(t.first[s.NT])
			if !t.nullable[s.NT] {
				return set, false
			}
		}
	}
	return set, true
}

func (t *Table) computeFirst() {
	for changed := true; changed; {
		changed = false
		for _, p := range t.grammar.Productions {
			set, nullable := t.firstOf(p.RHS)
			if t.first[p.LHS].union(set) {
				changed = true
			}
			if nullable && !t.nullable[p.LHS] {
				t.nullable[p.LHS] = true
				changed = true
			}
		}
	}
}

func (t *Table) computeFollow() {
	t.follow[t.grammar.Start].add(EOF)
	for changed := true; changed; {
		changed = false
		for _, p := range t.grammar.Productions {
			for i, s := range p.RHS {
				if s.Kind != KindNonterminal {
					continue
				}
				rest, nullable := t.firstOf(p.RHS[i+1:])
				if t.follow[s.NT].union(rest) {
					changed = true
				}
				if nullable && t.follow[s.NT].union(t.follow[p.LHS]) {
					changed = true
				}
			}
		}
	}
}

// Lookup returns the production to expand nt with under lookahead tt.
func (t *Table) Lookup(nt Nonterminal, tt TokenType) (Production, bool) {
	i, ok := t.entries[nt][tt]
	if !ok {
		return Production{}, false
	}
	return t.grammar.Productions[i], true
}

// Expected lists the lookaheads nt accepts, in TokenType order.
func (t *Table) Expected(nt Nonterminal) []TokenType {
	out := make([]TokenType, 0, len(t.entries[nt]))
	for tt := range t.entries[nt] {
		out = append(out, tt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// First returns FIRST(nt).
func (t *Table) First(nt Nonterminal) []TokenType { return t.first[nt].slice() }

// Follow returns FOLLOW(nt).
func (t *Table) Follow(nt Nonterminal) []TokenType { return t.follow[nt].slice() }

// Start is the grammar's start symbol.
func (t *Table) Start() Nonterminal { return t.grammar.Start }

// languageTable is built once and shared read-only by every compilation.
var languageTable = MustBuildTable(Language)

// LanguageTable returns the parsing table of Language.
func LanguageTable() *Table { return languageTable }
