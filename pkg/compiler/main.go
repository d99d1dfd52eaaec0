// Package compiler provides a DFA lexer, an LL(1) table-driven parser and a
// three-address-code generator for a small imperative language of int, float
// and double variables, assignments, arithmetic and for loops.
//
// Pipeline: source → Lex → Parser (table + actions) → tac.Program
package compiler
