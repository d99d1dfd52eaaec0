package compiler

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"tacc/pkg/tac"
)

// compileLines compiles src and returns the TAC listing line by line.
func compileLines(t *testing.T, src string) []string {
	t.Helper()
	res, err := Compile(src, Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v\nsource:\n%s", err, src)
	}
	return res.Program.Lines()
}

func TestCompileStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Declaration With Initializer",
			input:    "int a = 1;",
			expected: []string{"a = 1"},
		},
		{
			name:     "Declaration Without Initializer Emits Nothing",
			input:    "int a; float b; double c;",
			expected: nil,
		},
		{
			name:     "Assignment",
			input:    "int a; int b = 2; a = b;",
			expected: []string{"b = 2", "a = b"},
		},
		{
			name:  "Multiplication Binds Tighter",
			input: "int x = 10 - 2 * 3;",
			expected: []string{
				"t1 = 2 * 3",
				"t2 = 10 - t1",
				"x = t2",
			},
		},
		{
			name:  "Subtraction Is Left Associative",
			input: "int a = 9; int b = a - 2 - 3;",
			expected: []string{
				"a = 9",
				"t1 = a - 2",
				"t2 = t1 - 3",
				"b = t2",
			},
		},
		{
			name:  "Division Is Left Associative",
			input: "int q = 8 / 4 / 2;",
			expected: []string{
				"t1 = 8 / 4",
				"t2 = t1 / 2",
				"q = t2",
			},
		},
		{
			name:  "Parentheses Override Precedence",
			input: "int r = (1 + 2) * 3;",
			expected: []string{
				"t1 = 1 + 2",
				"t2 = t1 * 3",
				"r = t2",
			},
		},
		{
			name:  "Nested Parentheses",
			input: "int r = ((4));",
			expected: []string{
				"r = 4",
			},
		},
		{
			name:  "Mixed Chain",
			input: "int a = 1; int b = a + 2 * a - 6 / 3;",
			expected: []string{
				"a = 1",
				"t1 = 2 * a",
				"t2 = a + t1",
				"t3 = 6 / 3",
				"t4 = t2 - t3",
				"b = t4",
			},
		},
		{
			name:  "Float Literals",
			input: "double d = 1.5 * 2;",
			expected: []string{
				"t1 = 1.5 * 2",
				"d = t1",
			},
		},
		{
			name:  "Temps Never Reused Across Statements",
			input: "int a = 1 + 2; int b = a * 3;",
			expected: []string{
				"t1 = 1 + 2",
				"a = t1",
				"t2 = a * 3",
				"b = t2",
			},
		},
		{
			name:  "Block Statements",
			input: "int a; { a = 1; { a = 2; } }",
			expected: []string{
				"a = 1",
				"a = 2",
			},
		},
		{
			name:     "Empty Program",
			input:    "  // nothing here\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compileLines(t, tt.input)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("TAC mismatch\ngot:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(tt.expected, "\n"))
			}
		})
	}
}

func TestCompileSymbols(t *testing.T) {
	res, err := Compile("int a;\nfloat b = 1.0;\nfor (double c = 0; c < 1; c++) { int d; }", Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := []Symbol{
		{Name: "a", Type: "int", Line: 1},
		{Name: "b", Type: "float", Line: 2},
		{Name: "c", Type: "double", Line: 3},
		{Name: "d", Type: "int", Line: 3},
	}
	for _, w := range want {
		got, ok := res.Symbols.Symbol(w.Name)
		if !ok || got != w {
			t.Errorf("symbol %s: got %+v, want %+v", w.Name, got, w)
		}
	}
	if res.Symbols.Len() != len(want) {
		t.Errorf("expected %d symbols, got %d", len(want), res.Symbols.Len())
	}
}

func TestCompileDuplicateDeclaration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"Top Level", "int x;\nint x;", 2},
		{"Different Types", "int x;\ndouble x = 1;", 2},
		{"Inside Block", "int x;\n{ { int x; } }", 2},
		{"Inside Loop Body", "for (int i = 0; i < 1; i++) {\n  int i;\n}", 2},
		{"Loop Body Twice", "for (int i = 0; i < 2; i++) {\n int t;\n}\nfor (int j = 0; j < 2; j++) {\n int t;\n}", 5},
		{"Second Loop Reuses Counter", "for (int i = 0; i < 1; i++) {}\nfor (int i = 0; i < 1; i++) {}", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.input, Options{})
			if !errors.Is(err, ErrDuplicateDeclaration) {
				t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
			}
			var d *Diagnostic
			if !errors.As(err, &d) {
				t.Fatalf("expected *Diagnostic, got %T", err)
			}
			if d.Kind != DuplicateDeclaration || d.Line != tt.line {
				t.Errorf("got %+v, want duplicate declaration on line %d", d, tt.line)
			}
			if res.Program != nil {
				t.Errorf("failed compilation must not return a program")
			}
		})
	}
}

func TestCompileUndeclaredVariable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ident string
	}{
		{"Assignment Target", "x = 1;", "x"},
		{"Initializer", "int a = b;", "b"},
		{"Nested Expression", "int a;\na = (a + b) * 2;", "b"},
		{"Loop Init", "for (k = 0; k < 2; k++) {}", "k"},
		{"Loop Condition", "for (int i = 0; i < n; i++) {}", "n"},
		{"Loop Postfix Increment", "for (int i = 0; i < 1; k++) {}", "k"},
		{"Loop Prefix Increment", "for (int i = 0; i < 1; ++k) {}", "k"},
		{"Loop Body", "for (int i = 0; i < 1; i++) {\n  c = i;\n}", "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.input, Options{})
			if !errors.Is(err, ErrUndeclaredVariable) {
				t.Fatalf("expected ErrUndeclaredVariable, got %v", err)
			}
			var d *Diagnostic
			if !errors.As(err, &d) || d.Lexeme != tt.ident {
				t.Errorf("got %v, want undeclared %q", err, tt.ident)
			}
			if res.Program != nil {
				t.Errorf("failed compilation must not return a program")
			}
			if last := res.Diagnostics[len(res.Diagnostics)-1]; last != d {
				t.Errorf("fatal diagnostic not recorded in the result")
			}
		})
	}
}

func TestCompileLexicalDiagnosticsAreNotFatal(t *testing.T) {
	res, err := Compile("int a = 1;\n2a\nint b @= a;", Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := []string{"a = 1", "b = a"}
	if got := res.Program.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", res.Diagnostics)
	}
	if res.Diagnostics[0].Kind != InvalidNumericIdentifier || res.Diagnostics[0].Line != 2 {
		t.Errorf("first diagnostic: got %+v", res.Diagnostics[0])
	}
	if res.Diagnostics[1].Kind != IllegalCharacter || res.Diagnostics[1].Line != 3 {
		t.Errorf("second diagnostic: got %+v", res.Diagnostics[1])
	}
}

// Each compilation owns its counters, so the same source always gives the
// same listing, including when units are compiled concurrently.
func TestCompileIndependentContexts(t *testing.T) {
	src := "int a = 0;\nfor (int i = 0; i < 3; i++) { a = a + i * 2; }"
	first := compileLines(t, src)

	const workers = 8
	results := make([][]string, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			res, err := Compile(src, Options{})
			if err != nil {
				t.Errorf("worker %d: %v", w, err)
				return
			}
			results[w] = res.Program.Lines()
		}(w)
	}
	wg.Wait()

	for w, got := range results {
		if !reflect.DeepEqual(got, first) {
			t.Errorf("worker %d: got %v, want %v", w, got, first)
		}
	}
}

func TestCompileListingRoundTrip(t *testing.T) {
	src := `
int n = 3;
double acc = 1;
for (int i = 0; i < n; i = i + 1) {
	for (int j = 0; j != i; ++j) {
		acc = acc * (n - j) / 2;
	}
}
`
	res, err := Compile(src, Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	back, err := tac.Parse(res.Program.String())
	if err != nil {
		t.Fatalf("tac.Parse failed on generated listing: %v\n%s", err, res.Program)
	}
	if !reflect.DeepEqual(back.Instrs, res.Program.Instrs) {
		t.Errorf("round trip mismatch\ngot:\n%s\nwant:\n%s", back, res.Program)
	}
}

// Generated temps never take the name of a declared variable, including one
// declared in a loop body after the iteration clause was compiled.
func TestCompileTempsAvoidDeclaredNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		vars     map[string]float64
	}{
		{
			name:  "Declared Before Use",
			input: "int t1 = 5; int a = t1 + 1 * 2;",
			expected: []string{
				"t1 = 5",
				"t2 = 1 * 2",
				"t3 = t1 + t2",
				"a = t3",
			},
			vars: map[string]float64{"t1": 5, "a": 7},
		},
		{
			name:  "Declared In Loop Body",
			input: "int i;\nfor (i = 0; i < 4; i = i + 2 * 1) { int t2 = 9; }",
			expected: []string{
				"i = 0",
				"L1:",
				"t1 = i < 4",
				"if t1 == 0 goto L2",
				"t2 = 9",
				"t4 = 2 * 1",
				"t3 = i + t4",
				"i = t3",
				"goto L1",
				"L2:",
			},
			vars: map[string]float64{"i": 4, "t2": 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.input, Options{})
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if got := res.Program.Lines(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("TAC mismatch\ngot:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(tt.expected, "\n"))
			}
			vars, err := tac.Run(res.Program)
			if err != nil {
				t.Fatalf("tac.Run failed: %v", err)
			}
			for name, want := range tt.vars {
				if vars[name] != want {
					t.Errorf("%s = %v, want %v", name, vars[name], want)
				}
			}
		})
	}
}
