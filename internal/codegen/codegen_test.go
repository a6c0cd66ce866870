package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kpumuk/compi/internal/diag"
	"github.com/kpumuk/compi/internal/lexer"
	"github.com/kpumuk/compi/internal/parser"
	"github.com/kpumuk/compi/internal/symbols"
)

func generate(t *testing.T, src string) (string, *diag.Reporter) {
	t.Helper()
	var buf bytes.Buffer
	reporter := diag.NewReporter(&buf, false)
	arrays := symbols.NewArrays()
	structs := symbols.NewStructs()
	lex := lexer.New([]byte(src), reporter)
	p := parser.New(lex, reporter, arrays, structs)
	root := p.Parse()
	if reporter.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reporter.Diagnostics())
	}
	g := New(reporter, arrays, structs)
	return g.Generate(root), reporter
}

func TestGenerateSimpleAddFunction(t *testing.T) {
	t.Parallel()

	out, reporter := generate(t, "int add(int a, int b) { return a + b; }")
	if reporter.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", reporter.Diagnostics())
	}
	if !strings.Contains(out, "entity add is") {
		t.Fatalf("missing entity declaration:\n%s", out)
	}
	if !strings.Contains(out, "end entity add;") {
		t.Fatalf("missing entity close:\n%s", out)
	}
	if !strings.Contains(out, "architecture behavioral of add is") {
		t.Fatalf("missing architecture declaration:\n%s", out)
	}
	if !strings.Contains(out, "a : in  signed(31 downto 0);") {
		t.Fatalf("missing port a:\n%s", out)
	}
	if !strings.Contains(out, "result <= (a + b);") {
		t.Fatalf("missing return lowering:\n%s", out)
	}
}

func TestGenerateIfElse(t *testing.T) {
	t.Parallel()

	out, reporter := generate(t, "int f(int x) { if (x > 0) { x = 1; } else { x = 2; } return x; }")
	if reporter.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", reporter.Diagnostics())
	}
	if !strings.Contains(out, "if (x > to_signed(0, 32)) then") {
		t.Fatalf("expected relational condition rendered as-is:\n%s", out)
	}
	if !strings.Contains(out, "else") || !strings.Contains(out, "end if;") {
		t.Fatalf("missing if/else/end if structure:\n%s", out)
	}
}

func TestGenerateWhileUsesTruthyCondition(t *testing.T) {
	t.Parallel()

	out, reporter := generate(t, "int f(int x) { while (x) { x = x - 1; } return x; }")
	if reporter.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", reporter.Diagnostics())
	}
	if !strings.Contains(out, "while (x) /= 0 loop") {
		t.Fatalf("expected implicit nonzero truthiness check:\n%s", out)
	}
}

func TestGenerateForLoop(t *testing.T) {
	t.Parallel()

	out, reporter := generate(t, "int f() { int s = 0; for (int i = 0; i < 10; i = i + 1) { s = s + i; } return s; }")
	if reporter.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", reporter.Diagnostics())
	}
	if !strings.Contains(out, "signal i : signed(31 downto 0);") {
		t.Fatalf("expected loop variable signal:\n%s", out)
	}
	if !strings.Contains(out, "while (i < to_signed(10, 32)) loop") {
		t.Fatalf("expected for-loop lowered to while:\n%s", out)
	}
}

func TestGenerateArrayLocalEmitsArrayType(t *testing.T) {
	t.Parallel()

	out, reporter := generate(t, "int f() { int buf[4]; buf[0] = 1; return buf[0]; }")
	if reporter.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", reporter.Diagnostics())
	}
	if !strings.Contains(out, "type buf_arr_t is array(0 to 3) of signed(31 downto 0);") {
		t.Fatalf("expected array type declaration:\n%s", out)
	}
	if !strings.Contains(out, "buf(to_signed(0, 32)) <= to_signed(1, 32);") {
		t.Fatalf("expected array-index assignment:\n%s", out)
	}
}

func TestGenerateStructAccessUsesDottedName(t *testing.T) {
	t.Parallel()

	out, reporter := generate(t, "struct point { int x; int y; }; int f(struct point p) { return p.x; }")
	if reporter.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", reporter.Diagnostics())
	}
	if !strings.Contains(out, "result <= p.x;") {
		t.Fatalf("expected dotted struct access in result assignment:\n%s", out)
	}
}

func TestGenerateUnsupportedNodeEmitsCommentAndDiagnostic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := diag.NewReporter(&buf, false)
	arrays := symbols.NewArrays()
	structs := symbols.NewStructs()
	src := "int f() { break; return 0; }"
	lex := lexer.New([]byte(src), reporter)
	p := parser.New(lex, reporter, arrays, structs)
	root := p.Parse()

	reporter.Reset()
	g := New(reporter, arrays, structs)
	out := g.Generate(root)

	if !strings.Contains(out, "-- break") {
		t.Fatalf("expected break lowered to a comment stub:\n%s", out)
	}
	_, warnings := reporter.Counters()
	if warnings == 0 {
		t.Fatal("expected a warning diagnostic for unsupported break lowering")
	}
}

func TestVoidFunctionOmitsResultPort(t *testing.T) {
	t.Parallel()

	out, reporter := generate(t, "void f(int x) { x = x + 1; }")
	if reporter.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", reporter.Diagnostics())
	}
	if strings.Contains(out, "result :") {
		t.Fatalf("void function should not declare a result port:\n%s", out)
	}
}

func TestTypeWidthTable(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"int": 32, "short": 16, "long": 64, "char": 8,
		"unsigned int": 32, "signed long": 64, "float": 32, "double": 64,
	}
	for typ, want := range cases {
		if got := typeWidth(typ); got != want {
			t.Errorf("typeWidth(%q) = %d, want %d", typ, got, want)
		}
	}
}
