package tac

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultStepLimit bounds the number of instructions a Machine executes.
const DefaultStepLimit = 1_000_000

var (
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrUnassigned     = errors.New("read of unassigned variable")
	ErrDivisionByZero = errors.New("division by zero")
	ErrUndefinedLabel = errors.New("undefined label")
)

// Machine executes a Program. Every value is a float64; relational operators
// produce 1 or 0.
type Machine struct {
	Vars      map[string]float64
	PC        int // index of the next instruction
	Steps     int // instructions executed so far
	StepLimit int // zero means DefaultStepLimit
	Halted    bool

	prog   *Program
	labels map[string]int
}

// NewMachine prepares prog for execution. It resolves every label up front.
func NewMachine(prog *Program) (*Machine, error) {
	m := &Machine{
		Vars:   make(map[string]float64),
		prog:   prog,
		labels: make(map[string]int),
	}
	for i, in := range prog.Instrs {
		if in.Op == OpLabel {
			m.labels[in.Label] = i
		}
	}
	for _, in := range prog.Instrs {
		if in.Op == OpGoto || in.Op == OpIfZero {
			if _, ok := m.labels[in.Label]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUndefinedLabel, in.Label)
			}
		}
	}
	return m, nil
}

// Run executes prog and returns the final variable values.
func Run(prog *Program) (map[string]float64, error) {
	m, err := NewMachine(prog)
	if err != nil {
		return nil, err
	}
	if err := m.Run(); err != nil {
		return m.Vars, err
	}
	return m.Vars, nil
}

// Run steps until the program falls off its last instruction.
func (m *Machine) Run() error {
	for !m.Halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	if m.PC >= len(m.prog.Instrs) {
		m.Halted = true
		return nil
	}
	limit := m.StepLimit
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	if m.Steps >= limit {
		return fmt.Errorf("%w (%d) at instruction %d", ErrStepLimit, limit, m.PC)
	}
	m.Steps++

	in := m.prog.Instrs[m.PC]
	m.PC++

	switch in.Op {
	case OpLabel:
	case OpGoto:
		m.PC = m.labels[in.Label]
	case OpIfZero:
		v, err := m.value(in.Arg1)
		if err != nil {
			return err
		}
		if v == 0 {
			m.PC = m.labels[in.Label]
		}
	case OpCopy:
		v, err := m.value(in.Arg1)
		if err != nil {
			return err
		}
		m.Vars[in.Dest] = v
	case OpBinary:
		l, err := m.value(in.Arg1)
		if err != nil {
			return err
		}
		r, err := m.value(in.Arg2)
		if err != nil {
			return err
		}
		res, err := apply(in.Operator, l, r)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		m.Vars[in.Dest] = res
	default:
		return fmt.Errorf("unknown opcode %s at instruction %d", in.Op, m.PC-1)
	}
	return nil
}

func (m *Machine) value(operand string) (float64, error) {
	if isNumber(operand) {
		return strconv.ParseFloat(operand, 64)
	}
	v, ok := m.Vars[operand]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnassigned, operand)
	}
	return v, nil
}

func apply(op string, l, r float64) (float64, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	case "<":
		return truth(l < r), nil
	case ">":
		return truth(l > r), nil
	case "<=":
		return truth(l <= r), nil
	case ">=":
		return truth(l >= r), nil
	case "==":
		return truth(l == r), nil
	case "!=":
		return truth(l != r), nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FormatVars renders variables as "name = value" lines sorted by name.
func FormatVars(vars map[string]float64) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%s = %s\n", name, strconv.FormatFloat(vars[name], 'g', -1, 64))
	}
	return sb.String()
}
