package tac

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Reader turns a TAC listing back into instructions.
type Reader struct {
	labels map[string]int // label -> line number of its definition
}

func NewReader() *Reader {
	return &Reader{
		labels: make(map[string]int),
	}
}

// Parse reads a TAC listing using a fresh Reader.
func Parse(text string) (*Program, error) {
	return NewReader().Parse(text)
}

// Parse reads text in two passes: the first collects instructions and label
// definitions, the second checks that every jump names a defined label.
func (r *Reader) Parse(text string) (*Program, error) {
	lines := strings.Split(text, "\n")

	prog, lineNos, err := r.pass1(lines)
	if err != nil {
		return nil, err
	}
	if err := r.pass2(prog, lineNos); err != nil {
		return nil, err
	}
	return prog, nil
}

func (r *Reader) pass1(lines []string) (*Program, []int, error) {
	prog := &Program{}
	var lineNos []int
	for i, raw := range lines {
		lineNo := i + 1
		in, ok, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		if in.Op == OpLabel {
			if prev, exists := r.labels[in.Label]; exists {
				return nil, nil, fmt.Errorf("duplicate label '%s' on line %d (first defined on line %d)", in.Label, lineNo, prev)
			}
			r.labels[in.Label] = lineNo
		}
		prog.Emit(in)
		lineNos = append(lineNos, lineNo)
	}
	return prog, lineNos, nil
}

func (r *Reader) pass2(prog *Program, lineNos []int) error {
	for i, in := range prog.Instrs {
		if in.Op != OpGoto && in.Op != OpIfZero {
			continue
		}
		if _, ok := r.labels[in.Label]; !ok {
			return fmt.Errorf("undefined label '%s' on line %d", in.Label, lineNos[i])
		}
	}
	return nil
}

// parseLine decodes one listing line. ok is false for blank lines.
func parseLine(raw string, lineNo int) (in Instr, ok bool, err error) {
	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return Instr{}, false, nil
	}
	fields := strings.Fields(line)

	switch {
	case len(fields) == 1 && strings.HasSuffix(fields[0], ":"):
		label := strings.TrimSuffix(fields[0], ":")
		if !isIdentifier(label) {
			return Instr{}, false, fmt.Errorf("invalid label '%s' on line %d", label, lineNo)
		}
		return Label(label), true, nil

	case len(fields) >= 3 && fields[1] == "=":
		if !isIdentifier(fields[0]) {
			return Instr{}, false, fmt.Errorf("invalid assignment target '%s' on line %d", fields[0], lineNo)
		}
		switch len(fields) {
		case 3:
			if !isOperand(fields[2]) {
				return Instr{}, false, fmt.Errorf("invalid operand '%s' on line %d", fields[2], lineNo)
			}
			return Copy(fields[0], fields[2]), true, nil
		case 5:
			if !IsOperator(fields[3]) {
				return Instr{}, false, fmt.Errorf("unknown operator '%s' on line %d", fields[3], lineNo)
			}
			if !isOperand(fields[2]) || !isOperand(fields[4]) {
				return Instr{}, false, fmt.Errorf("invalid operand on line %d", lineNo)
			}
			return Binary(fields[0], fields[2], fields[3], fields[4]), true, nil
		}

	case fields[0] == "goto":
		if len(fields) != 2 || !isIdentifier(fields[1]) {
			return Instr{}, false, fmt.Errorf("goto expects one label on line %d", lineNo)
		}
		return Goto(fields[1]), true, nil

	case fields[0] == "if":
		if len(fields) != 6 || fields[2] != "==" || fields[3] != "0" || fields[4] != "goto" {
			return Instr{}, false, fmt.Errorf("expected 'if NAME == 0 goto LABEL' on line %d", lineNo)
		}
		if !isOperand(fields[1]) || !isIdentifier(fields[5]) {
			return Instr{}, false, fmt.Errorf("invalid conditional jump on line %d", lineNo)
		}
		return IfZero(fields[1], fields[5]), true, nil
	}

	return Instr{}, false, fmt.Errorf("unknown instruction on line %d: %s", lineNo, line)
}

func stripComments(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

// isOperand accepts a name or a decimal literal.
func isOperand(s string) bool {
	if isIdentifier(s) {
		return true
	}
	return isNumber(s)
}

func isNumber(s string) bool {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
