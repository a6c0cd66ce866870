// Package codegen lowers compi's AST into VHDL entity/architecture
// pairs using a small buffered writer with explicit indent-level
// tracking, driven by AST structure rather than a token stream.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kpumuk/compi/internal/ast"
	"github.com/kpumuk/compi/internal/diag"
	"github.com/kpumuk/compi/internal/litfmt"
	"github.com/kpumuk/compi/internal/parser"
	"github.com/kpumuk/compi/internal/symbols"
)

// vhdlWriter accumulates generated VHDL text with two-space
// indentation per nesting level.
type vhdlWriter struct {
	buf    bytes.Buffer
	indent int
}

func (w *vhdlWriter) line(format string, args ...any) {
	w.buf.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *vhdlWriter) blank() {
	w.buf.WriteByte('\n')
}

func (w *vhdlWriter) push() { w.indent++ }
func (w *vhdlWriter) pop()  { w.indent-- }

func (w *vhdlWriter) String() string { return w.buf.String() }

// typeWidth maps a C-subset type name to its VHDL bit width: char to 8,
// short to 16, int/signed/unsigned to 32, and long to 64.
// float and double are carried as opaque std_logic_vector payloads
// (no VHDL fixed/floating IEEE package is assumed available), sized by
// byte width: float -> 32, double -> 64.
func typeWidth(typ string) int {
	fields := strings.Fields(typ)
	base := typ
	if len(fields) > 0 {
		base = fields[len(fields)-1]
	}
	switch base {
	case "char":
		return 8
	case "short":
		return 16
	case "long":
		return 64
	case "float":
		return 32
	case "double":
		return 64
	case "void":
		return 0
	default: // int, signed, unsigned, or any qualifier combination ending in one of these
		return 32
	}
}

func isUnsigned(typ string) bool {
	return strings.Contains(typ, "unsigned")
}

func isFloating(typ string) bool {
	return typ == "float" || typ == "double"
}

// vhdlType renders the VHDL type used for a signal/port declaration of
// the given C type.
func vhdlType(typ string) string {
	width := typeWidth(typ)
	switch {
	case typ == "void":
		return ""
	case isFloating(typ):
		return fmt.Sprintf("std_logic_vector(%d downto 0)", width-1)
	case isUnsigned(typ):
		return fmt.Sprintf("unsigned(%d downto 0)", width-1)
	default:
		return fmt.Sprintf("signed(%d downto 0)", width-1)
	}
}

// Generator lowers each function of a program's AST into a VHDL
// entity/architecture pair, consulting the symbol tables the parser populated for this
// translation unit and reporting CODEGEN diagnostics for anything it
// cannot express.
type Generator struct {
	diags   *diag.Reporter
	arrays  *symbols.Arrays
	structs *symbols.Structs
}

// New creates a Generator bound to one translation unit's symbol tables.
func New(diags *diag.Reporter, arrays *symbols.Arrays, structs *symbols.Structs) *Generator {
	return &Generator{diags: diags, arrays: arrays, structs: structs}
}

// Generate walks program's top-level declarations and emits one
// entity/architecture pair per FUNCTION node, in source order.
// Non-function top-level declarations (struct and array declarations)
// have already done their job by populating the symbol tables during
// parsing and emit no VHDL of their own.
func (g *Generator) Generate(program *ast.Node) string {
	if program == nil {
		return ""
	}
	var out strings.Builder
	first := true
	for _, decl := range program.Children {
		if decl.Kind != ast.FUNCTION {
			continue
		}
		if !first {
			out.WriteByte('\n')
		}
		first = false
		out.WriteString(g.generateFunction(decl))
	}
	return out.String()
}

func (g *Generator) generateFunction(fn *ast.Node) string {
	name := fn.Value
	returnType := fn.Children[0].Value
	params := fn.Children[1 : len(fn.Children)-1]
	body := fn.Children[len(fn.Children)-1]

	w := &vhdlWriter{}
	w.line("library IEEE;")
	w.line("use IEEE.STD_LOGIC_1164.ALL;")
	w.line("use IEEE.NUMERIC_STD.ALL;")
	w.blank()
	w.line("entity %s is", name)
	w.push()
	w.line("port (")
	w.push()
	w.line("clk   : in  std_logic;")
	w.line("reset : in  std_logic;")
	for _, p := range params {
		pname := p.Children[0].Value
		typ := vhdlType(p.Value)
		if typ == "" {
			continue
		}
		w.line("%s : in  %s;", pname, typ)
	}
	if retType := vhdlType(returnType); retType != "" {
		w.line("result : out %s;", retType)
	}
	w.line("done  : out std_logic")
	w.pop()
	w.line(");")
	w.pop()
	w.line("end entity %s;", name)
	w.blank()

	w.line("architecture behavioral of %s is", name)
	locals := g.collectLocals(body)
	for _, l := range locals {
		if l.size > 0 {
			elemType := vhdlType(l.typ)
			w.line("type %s_arr_t is array(0 to %d) of %s;", l.name, l.size-1, elemType)
			w.line("signal %s : %s_arr_t;", l.name, l.name)
			continue
		}
		typ := vhdlType(l.typ)
		if typ == "" {
			continue
		}
		w.line("signal %s : %s;", l.name, typ)
	}
	w.line("begin")
	w.push()
	w.line("process (clk, reset)")
	w.line("begin")
	w.push()
	w.line("if reset = '1' then")
	w.push()
	w.line("done <= '0';")
	w.pop()
	w.line("elsif rising_edge(clk) then")
	w.push()
	g.generateBlock(w, body)
	w.line("done <= '1';")
	w.pop()
	w.line("end if;")
	w.pop()
	w.line("end process;")
	w.pop()
	w.line("end architecture behavioral;")

	return w.String()
}

type localDecl struct {
	name string
	typ  string
	size int // > 0 for an array local, 0 for a scalar
}

// collectLocals finds every VAR_DECL and ARRAY_DECL statement inside a
// function body (not descending into nested functions, which cannot
// occur per the grammar) so their signals can be declared once at the
// architecture level, matching VHDL's flat declarative region.
func (g *Generator) collectLocals(body *ast.Node) []localDecl {
	var out []localDecl
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		switch n.Kind {
		case ast.VAR_DECL:
			out = append(out, localDecl{name: n.Children[0].Value, typ: n.Value})
			return
		case ast.ARRAY_DECL:
			name := n.Children[0].Value
			out = append(out, localDecl{name: name, typ: n.Value, size: g.arrays.Find(name)})
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, stmt := range body.Children {
		walk(stmt)
	}
	return out
}

func (g *Generator) generateBlock(w *vhdlWriter, block *ast.Node) {
	for _, stmt := range block.Children {
		g.generateStmt(w, stmt)
	}
}

func (g *Generator) generateStmt(w *vhdlWriter, n *ast.Node) {
	switch n.Kind {
	case ast.VAR_DECL:
		if len(n.Children) > 1 {
			w.line("%s <= %s;", n.Children[0].Value, g.expr(n.Children[1]))
		}
	case ast.ARRAY_DECL:
		// Sizing already recorded in the array symbol table; no
		// per-statement VHDL is emitted here.
	case ast.ASSIGNMENT:
		g.generateAssignment(w, n)
	case ast.IF:
		g.generateIf(w, n)
	case ast.WHILE:
		g.generateWhile(w, n)
	case ast.FOR:
		g.generateFor(w, n)
	case ast.RETURN:
		g.generateReturn(w, n)
	case ast.BREAK:
		w.line("-- break (unsupported in concurrent/process lowering)")
		g.diags.WarningCode(diag.Codegen, diag.CodeBreakUnsupported, n.Line, "break has no direct VHDL process equivalent; emitted as a comment")
	case ast.CONTINUE:
		w.line("-- continue (unsupported in concurrent/process lowering)")
		g.diags.WarningCode(diag.Codegen, diag.CodeContinueUnsupported, n.Line, "continue has no direct VHDL process equivalent; emitted as a comment")
	case ast.BLOCK:
		g.generateBlock(w, n)
	case ast.EXPRESSION:
		if len(n.Children) > 0 {
			w.line("-- %s;", g.expr(n.Children[0]))
		}
	case ast.STRUCT_DECL:
		// Struct layout lives entirely in the symbol table.
	default:
		w.line("-- unsupported construct: %s", n.Kind)
		g.diags.ErrorCode(diag.Codegen, diag.CodeUnsupportedStatement, n.Line, "cannot lower %s to VHDL", n.Kind)
	}
}

func (g *Generator) generateAssignment(w *vhdlWriter, n *ast.Node) {
	target := g.expr(n.Children[0])
	value := g.expr(n.Children[1])
	switch n.Value {
	case "=":
		w.line("%s <= %s;", target, value)
	case "+=":
		w.line("%s <= %s + %s;", target, target, value)
	case "-=":
		w.line("%s <= %s - %s;", target, target, value)
	case "*=":
		w.line("%s <= %s * %s;", target, target, value)
	case "/=":
		w.line("%s <= %s / %s;", target, target, value)
	default:
		w.line("-- unsupported assignment operator %q", n.Value)
		g.diags.ErrorCode(diag.Codegen, diag.CodeUnsupportedAssignOp, n.Line, "unsupported assignment operator %q", n.Value)
	}
}

func (g *Generator) generateIf(w *vhdlWriter, n *ast.Node) {
	cond := n.Children[0]
	then := n.Children[1]
	w.line("if %s then", g.condition(cond))
	w.push()
	g.generateStmt(w, then)
	w.pop()
	if len(n.Children) == 3 {
		elseNode := n.Children[2]
		w.line("else")
		w.push()
		g.generateStmt(w, elseNode.Children[0])
		w.pop()
	}
	w.line("end if;")
}

func (g *Generator) generateWhile(w *vhdlWriter, n *ast.Node) {
	cond := n.Children[0]
	body := n.Children[1]
	w.line("while %s loop", g.condition(cond))
	w.push()
	g.generateStmt(w, body)
	w.pop()
	w.line("end loop;")
}

func (g *Generator) generateFor(w *vhdlWriter, n *ast.Node) {
	init, cond, step, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]
	if !parser.IsEmptySlot(init) {
		g.generateStmt(w, init)
	}
	condText := "true"
	if !parser.IsEmptySlot(cond) {
		condText = g.condition(cond)
	}
	w.line("while %s loop", condText)
	w.push()
	g.generateStmt(w, body)
	if !parser.IsEmptySlot(step) {
		g.generateStmt(w, step)
	}
	w.pop()
	w.line("end loop;")
}

func (g *Generator) generateReturn(w *vhdlWriter, n *ast.Node) {
	if len(n.Children) == 0 {
		return
	}
	w.line("result <= %s;", g.expr(n.Children[0]))
}

// condition renders a boolean expression. compi's C subset has no
// dedicated boolean type, so any nonzero value is truthy; a bare
// identifier or arithmetic expression used as a condition is compared
// against zero exactly as C's implicit truthiness requires, while a
// relational/logical BINARY_OP is rendered as-is.
func (g *Generator) condition(n *ast.Node) string {
	if n.Kind == ast.BINARY_OP && isBooleanOp(n.Value) {
		return g.expr(n)
	}
	return fmt.Sprintf("(%s) /= 0", g.expr(n))
}

func isBooleanOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return true
	default:
		return false
	}
}

var binaryOpText = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "mod",
	"==": "=", "!=": "/=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"&&": "and", "||": "or",
	"&": "and", "|": "or", "^": "xor",
	"<<": "sll", ">>": "srl",
}

// expr renders an expression node as VHDL, following the operator
// translation table and conventions for literals, arrays, and structs.
func (g *Generator) expr(n *ast.Node) string {
	switch n.Kind {
	case ast.LITERAL:
		return g.literal(n)
	case ast.IDENTIFIER:
		return n.Value
	case ast.BINARY_OP:
		opText, ok := binaryOpText[n.Value]
		if !ok {
			g.diags.ErrorCode(diag.Codegen, diag.CodeUnsupportedBinaryOp, n.Line, "unsupported operator %q", n.Value)
			opText = n.Value
		}
		return fmt.Sprintf("(%s %s %s)", g.expr(n.Children[0]), opText, g.expr(n.Children[1]))
	case ast.UNARY_OP:
		switch n.Value {
		case "-":
			return fmt.Sprintf("(-%s)", g.expr(n.Children[0]))
		case "!":
			return fmt.Sprintf("not (%s)", g.condition(n.Children[0]))
		case "~":
			return fmt.Sprintf("not %s", g.expr(n.Children[0]))
		default:
			g.diags.ErrorCode(diag.Codegen, diag.CodeUnsupportedUnaryOp, n.Line, "unsupported unary operator %q", n.Value)
			return g.expr(n.Children[0])
		}
	case ast.FUNC_CALL:
		args := make([]string, len(n.Children))
		for i, c := range n.Children {
			args[i] = g.expr(c)
		}
		return fmt.Sprintf("%s(%s)", n.Value, strings.Join(args, ", "))
	case ast.ARRAY_ACCESS:
		if g.arrays.Find(n.Value) < 0 {
			g.diags.WarningCode(diag.Semantic, diag.CodeArrayUndeclared, n.Line, "array %q used without a prior declaration", n.Value)
		}
		return fmt.Sprintf("%s(%s)", n.Value, g.expr(n.Children[0]))
	case ast.STRUCT_ACCESS:
		return n.Value
	default:
		g.diags.ErrorCode(diag.Codegen, diag.CodeUnsupportedExpression, n.Line, "cannot lower %s to a VHDL expression", n.Kind)
		return "0"
	}
}

// literal renders a LITERAL node, distinguishing a string payload
// from a numeric one and folding a negative numeric literal's sign
// into the to_signed call rather than emitting a separate unary minus.
func (g *Generator) literal(n *ast.Node) string {
	if strings.HasPrefix(n.Value, "\"") {
		return n.Value
	}
	if litfmt.IsNumber(n.Value) || litfmt.IsNegativeLiteral(n.Value) {
		return fmt.Sprintf("to_signed(%s, 32)", n.Value)
	}
	return n.Value
}
