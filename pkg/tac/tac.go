// Package tac holds three-address code: instruction records, the program
// container the compiler emits into, a reader for TAC listings and a small
// interpreter.
//
// A listing uses exactly five line forms:
//
//	NAME = VALUE
//	NAME = VALUE op VALUE
//	label:
//	goto label
//	if NAME == 0 goto label
package tac

import (
	"fmt"
	"strings"
)

// Opcode selects the form of an instruction.
type Opcode uint8

const (
	OpCopy   Opcode = iota // Dest = Arg1
	OpBinary               // Dest = Arg1 Operator Arg2
	OpLabel                // Label:
	OpGoto                 // goto Label
	OpIfZero               // if Arg1 == 0 goto Label
)

var opcodeNames = [...]string{
	OpCopy:   "COPY",
	OpBinary: "BINARY",
	OpLabel:  "LABEL",
	OpGoto:   "GOTO",
	OpIfZero: "IFZERO",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

// Operators lists every binary operator an OpBinary instruction may carry.
var Operators = []string{"+", "-", "*", "/", "<", ">", "<=", ">=", "==", "!="}

// IsOperator reports whether op is a valid binary operator.
func IsOperator(op string) bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Instr is a single TAC instruction. Operands are untyped text: names,
// literals or temporaries.
type Instr struct {
	Op       Opcode
	Dest     string
	Arg1     string
	Operator string
	Arg2     string
	Label    string
}

func Copy(dest, value string) Instr {
	return Instr{Op: OpCopy, Dest: dest, Arg1: value}
}

func Binary(dest, left, op, right string) Instr {
	return Instr{Op: OpBinary, Dest: dest, Arg1: left, Operator: op, Arg2: right}
}

func Label(name string) Instr {
	return Instr{Op: OpLabel, Label: name}
}

func Goto(label string) Instr {
	return Instr{Op: OpGoto, Label: label}
}

func IfZero(cond, label string) Instr {
	return Instr{Op: OpIfZero, Arg1: cond, Label: label}
}

func (i Instr) String() string {
	switch i.Op {
	case OpCopy:
		return fmt.Sprintf("%s = %s", i.Dest, i.Arg1)
	case OpBinary:
		return fmt.Sprintf("%s = %s %s %s", i.Dest, i.Arg1, i.Operator, i.Arg2)
	case OpLabel:
		return i.Label + ":"
	case OpGoto:
		return "goto " + i.Label
	case OpIfZero:
		return fmt.Sprintf("if %s == 0 goto %s", i.Arg1, i.Label)
	}
	return fmt.Sprintf("<%s>", i.Op)
}

// Program is an ordered, append-only instruction list. Excise is the only way
// to take instructions out, and it hands them back in their original order so
// they can be replayed later with Append.
type Program struct {
	Instrs []Instr
}

func (p *Program) Emit(in Instr) { p.Instrs = append(p.Instrs, in) }

// Append replays instructions at the end of the program, preserving order.
func (p *Program) Append(ins ...Instr) { p.Instrs = append(p.Instrs, ins...) }

func (p *Program) Len() int { return len(p.Instrs) }

// Excise removes every instruction appended at or after index from and
// returns them.
func (p *Program) Excise(from int) []Instr {
	if from < 0 || from > len(p.Instrs) {
		panic(fmt.Sprintf("tac: excise point %d out of range [0,%d]", from, len(p.Instrs)))
	}
	cut := make([]Instr, len(p.Instrs)-from)
	copy(cut, p.Instrs[from:])
	p.Instrs = p.Instrs[:from]
	return cut
}

// Lines renders each instruction as one listing line.
func (p *Program) Lines() []string {
	lines := make([]string, len(p.Instrs))
	for i, in := range p.Instrs {
		lines[i] = in.String()
	}
	return lines
}

// String returns the full listing, one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	for _, in := range p.Instrs {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
