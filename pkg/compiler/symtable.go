package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is one declared variable.
type Symbol struct {
	Name string
	Type string // declared type keyword: "int", "float" or "double"
	Line int    // line of the declaration
}

// SymbolTable maps variable names to their declarations.
// There is a single flat scope: entries are never removed, so a name declared
// inside a loop body stays visible for the rest of the unit.
type SymbolTable struct {
	symbols map[string]Symbol
	order   []string // declaration order
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]Symbol),
	}
}

// Declare records name with its declared type. If name is already present it
// returns a DuplicateDeclaration *Diagnostic located at line.
func (s *SymbolTable) Declare(name, typ string, line int) error {
	if _, ok := s.symbols[name]; ok {
		return &Diagnostic{Kind: DuplicateDeclaration, Line: line, Lexeme: name}
	}
	s.symbols[name] = Symbol{Name: name, Type: typ, Line: line}
	s.order = append(s.order, name)
	return nil
}

// Resolve returns the entry for a use of name on line, or an
// UndeclaredVariable *Diagnostic located there.
func (s *SymbolTable) Resolve(name string, line int) (Symbol, error) {
	sym, ok := s.symbols[name]
	if !ok {
		return Symbol{}, &Diagnostic{Kind: UndeclaredVariable, Line: line, Lexeme: name}
	}
	return sym, nil
}

// Lookup returns the declared type of name, or an error matching
// ErrUndeclaredVariable.
func (s *SymbolTable) Lookup(name string) (string, error) {
	sym, err := s.Resolve(name, 0)
	return sym.Type, err
}

// Symbol returns the full entry for name.
func (s *SymbolTable) Symbol(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

func (s *SymbolTable) Len() int { return len(s.order) }

// Names returns the declared names in declaration order.
func (s *SymbolTable) Names() []string {
	return append([]string(nil), s.order...)
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.symbols) == 0 {
		sb.WriteString("Symbols: (empty)\n")
		return sb.String()
	}
	sb.WriteString("Symbols:\n")
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := s.symbols[name]
		fmt.Fprintf(&sb, "  %-20s  Type: %-6s (line %d)\n", name, sym.Type, sym.Line)
	}
	return sb.String()
}
