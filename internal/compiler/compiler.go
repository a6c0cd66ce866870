// Package compiler wires the lexer, parser, and codegen stages into
// one translation unit, threading explicit diag.Reporter and symbol
// table values through the pipeline rather than relying on shared
// process-wide state, so two translations can run concurrently
// without interfering with each other.
package compiler

import (
	"fmt"
	"io"

	"github.com/kpumuk/compi/internal/ast"
	"github.com/kpumuk/compi/internal/codegen"
	"github.com/kpumuk/compi/internal/diag"
	"github.com/kpumuk/compi/internal/lexer"
	"github.com/kpumuk/compi/internal/parser"
	"github.com/kpumuk/compi/internal/symbols"
)

// Options configures one Translate call.
type Options struct {
	// Filename is attached to every diagnostic's location for display;
	// an empty string falls back to bare "line N" diagnostics.
	Filename string
	// Colored enables ANSI-colored diagnostic severities.
	Colored bool
	// DumpAST, if set, receives the parsed tree's pretty-printed text
	// before codegen runs, for -debug CLI support.
	DumpAST io.Writer
}

// Result is the outcome of translating one source file.
type Result struct {
	VHDL     string
	Errors   int
	Warnings int
}

// Translate lexes, parses, and lowers src to VHDL, writing diagnostics
// to diagsOut as they are produced. It returns the generated VHDL text
// (possibly partial, if errors occurred) and the final error/warning
// counts. The caller decides what an error count > 0 means for exit
// status; Translate itself returns no Go error, source-level problems
// surface only as diagnostics (nil src is fine; "" sources translate
// to empty output with zero diagnostics).
func Translate(src []byte, opts Options, diagsOut io.Writer) Result {
	reporter := diag.NewReporter(diagsOut, opts.Colored)
	reporter.SetFilename(opts.Filename)
	arrays := symbols.NewArrays()
	structs := symbols.NewStructs()

	lex := lexer.New(src, reporter)
	p := parser.New(lex, reporter, arrays, structs)
	root := p.Parse()

	if opts.DumpAST != nil {
		fmt.Fprint(opts.DumpAST, dumpOrEmpty(root))
	}

	var vhdl string
	if root != nil {
		gen := codegen.New(reporter, arrays, structs)
		vhdl = gen.Generate(root)
	}

	errs, warns := reporter.Counters()
	return Result{VHDL: vhdl, Errors: errs, Warnings: warns}
}

func dumpOrEmpty(root *ast.Node) string {
	if root == nil {
		return "(empty program)\n"
	}
	return ast.Sprint(root)
}
