package tac

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	src := `
i = 0          // init
L1:
t1 = i < 5
if t1 == 0 goto L2
t2 = a + 1.5
a = t2
i = i + 1
goto L1
L2:
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []Instr{
		Copy("i", "0"),
		Label("L1"),
		Binary("t1", "i", "<", "5"),
		IfZero("t1", "L2"),
		Binary("t2", "a", "+", "1.5"),
		Copy("a", "t2"),
		Binary("i", "i", "+", "1"),
		Goto("L1"),
		Label("L2"),
	}
	if !reflect.DeepEqual(prog.Instrs, want) {
		t.Errorf("got %v, want %v", prog.Instrs, want)
	}
}

func TestParseEveryOperator(t *testing.T) {
	for _, op := range Operators {
		line := "t1 = a " + op + " b"
		prog, err := Parse(line)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", line, err)
			continue
		}
		if got := prog.Instrs[0].String(); got != line {
			t.Errorf("round trip of %q gave %q", line, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"Duplicate Label", "L1:\nL1:", "duplicate label 'L1' on line 2"},
		{"Undefined Label", "goto L9", "undefined label 'L9' on line 1"},
		{"Undefined Conditional Target", "if t1 == 0 goto L3", "undefined label 'L3'"},
		{"Bad Label Name", "1x:", "invalid label"},
		{"Goto Without Target", "goto", "goto expects one label"},
		{"Conditional Not Against Zero", "L1:\nif t1 == 1 goto L1", "expected 'if NAME == 0 goto LABEL'"},
		{"Unknown Operator", "t1 = a % b", "unknown operator '%'"},
		{"Bad Target", "5 = a", "invalid assignment target"},
		{"Bad Operand", "a = 2b", "invalid operand '2b'"},
		{"Garbage", "a b c d", "unknown instruction on line 1"},
		{"Missing Right Operand", "a = b +", "unknown instruction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

// Listing keywords are valid names on the left of an assignment.
func TestParseKeywordNames(t *testing.T) {
	prog, err := Parse("goto = 1\nif = goto + 2")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []Instr{Copy("goto", "1"), Binary("if", "goto", "+", "2")}
	if !reflect.DeepEqual(prog.Instrs, want) {
		t.Errorf("got %v, want %v", prog.Instrs, want)
	}
}
