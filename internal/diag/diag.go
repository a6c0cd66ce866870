// Package diag implements compi's structured diagnostic reporting:
// severities, categories, source locations, and the hint/suggestion
// attachments that decorate the most recently reported diagnostic.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/kpumuk/compi/internal/text"
)

// Severity is the level of a diagnostic.
type Severity uint8

// Severity values, ordered from least to most serious.
const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", s)
	}
}

// Category identifies which pipeline stage produced a diagnostic.
type Category uint8

// Category values, one per pipeline stage plus a catch-all.
const (
	General Category = iota
	Lexer
	Parser
	Semantic
	Codegen
)

func (c Category) String() string {
	switch c {
	case Lexer:
		return "Lexer"
	case Parser:
		return "Parser"
	case Semantic:
		return "Semantic"
	case Codegen:
		return "Codegen"
	default:
		return "General"
	}
}

// Diagnostic is a single structured compiler message.
type Diagnostic struct {
	Severity   Severity
	Category   Category
	Location   text.Location
	Code       string
	Message    string
	Hint       string
	Suggestion string
}

// Reporter collects diagnostics for one translation unit and tracks the
// error/warning counters the pipeline consults to decide whether
// translation succeeded. A Reporter is an explicit value, not global
// state, so independent translation units (including concurrent ones
// in the CLI's batch mode) never share counters or output streams.
type Reporter struct {
	out         io.Writer
	colored     bool
	filename    string
	diagnostics []Diagnostic
	errors      int
	warnings    int
}

// NewReporter creates a Reporter that renders to out. Colored output
// is opt-in; when false the rendered stream never contains ANSI escapes.
func NewReporter(out io.Writer, colored bool) *Reporter {
	return &Reporter{out: out, colored: colored}
}

// SetFilename attaches name to every diagnostic reported through
// Info/Warning/ErrorDiag from this point on, so a translation unit
// working from a real file gets "name:line: ..." rather than the bare
// "line N: ..." form. It does not affect diagnostics already reported.
func (r *Reporter) SetFilename(name string) {
	r.filename = name
}

// Reset zeroes the error/warning counters and clears recorded diagnostics.
func (r *Reporter) Reset() {
	r.diagnostics = nil
	r.errors = 0
	r.warnings = 0
}

// HasErrors reports whether the error counter is positive.
func (r *Reporter) HasErrors() bool {
	return r.errors > 0
}

// Counters returns the current error and warning counts.
func (r *Reporter) Counters() (errors, warnings int) {
	return r.errors, r.warnings
}

// Report records a diagnostic, renders it to the sink, and opens it for
// AddHint/AddSuggestion attachment. INFO diagnostics never change the
// counters; WARNING increments the warning counter; ERROR increments
// the error counter.
func (r *Reporter) Report(d Diagnostic) {
	switch d.Severity {
	case Warning:
		r.warnings++
	case Error:
		r.errors++
	}
	r.diagnostics = append(r.diagnostics, d)
	r.render(len(r.diagnostics) - 1)
}

// Info reports an INFO diagnostic with a printf-style message at a bare
// line number (no filename/column context).
func (r *Reporter) Info(category Category, line int, format string, args ...any) {
	r.simple(Info, category, line, format, args...)
}

// Warning reports a WARNING diagnostic the same way Info does.
func (r *Reporter) Warning(category Category, line int, format string, args ...any) {
	r.simple(Warning, category, line, format, args...)
}

// ErrorDiag reports an ERROR diagnostic the same way Info does. Named
// ErrorDiag rather than Error to avoid colliding with the error interface.
func (r *Reporter) ErrorDiag(category Category, line int, format string, args ...any) {
	r.simple(Error, category, line, format, args...)
}

// InfoCode, WarningCode, and ErrorCode behave like Info/Warning/ErrorDiag
// but attach one of the catalogued Code constants (see codes.go), giving
// the diagnostic a stable, greppable identifier alongside its message.
func (r *Reporter) InfoCode(category Category, code string, line int, format string, args ...any) {
	r.simpleCode(Info, category, code, line, format, args...)
}

func (r *Reporter) WarningCode(category Category, code string, line int, format string, args ...any) {
	r.simpleCode(Warning, category, code, line, format, args...)
}

func (r *Reporter) ErrorCode(category Category, code string, line int, format string, args ...any) {
	r.simpleCode(Error, category, code, line, format, args...)
}

func (r *Reporter) simple(sev Severity, category Category, line int, format string, args ...any) {
	r.simpleCode(sev, category, "", line, format, args...)
}

func (r *Reporter) simpleCode(sev Severity, category Category, code string, line int, format string, args ...any) {
	r.Report(Diagnostic{
		Severity: sev,
		Category: category,
		Location: text.Location{Filename: r.filename, Position: text.Position{Line: line}},
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ReportEx reports a fully structured diagnostic with an optional error
// code, explicit severity/category/location, and a printf-style message.
func (r *Reporter) ReportEx(sev Severity, category Category, loc text.Location, code, format string, args ...any) {
	r.Report(Diagnostic{
		Severity: sev,
		Category: category,
		Location: loc,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// AddHint attaches a hint to the most recently reported diagnostic and
// writes a "hint: ..." line to the sink. A no-op if nothing has been
// reported yet.
func (r *Reporter) AddHint(text string) {
	if len(r.diagnostics) == 0 {
		return
	}
	last := len(r.diagnostics) - 1
	r.diagnostics[last].Hint = text
	fmt.Fprintf(r.out, "hint: %s\n", text)
}

// AddSuggestion attaches a suggestion to the most recently reported
// diagnostic and writes a "help: did you mean '...'?" line to the sink.
// A no-op if nothing has been reported yet.
func (r *Reporter) AddSuggestion(text string) {
	if len(r.diagnostics) == 0 {
		return
	}
	last := len(r.diagnostics) - 1
	r.diagnostics[last].Suggestion = text
	fmt.Fprintf(r.out, "help: did you mean '%s'?\n", text)
}

// Diagnostics returns the diagnostics reported so far, in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), r.diagnostics...)
}

const (
	ansiBoldRed    = "\x1b[1;31m"
	ansiBoldYellow = "\x1b[1;33m"
	ansiBoldBlue   = "\x1b[1;34m"
	ansiBoldGreen  = "\x1b[1;32m"
	ansiReset      = "\x1b[0m"
)

func (r *Reporter) render(idx int) {
	d := r.diagnostics[idx]

	var b strings.Builder
	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}
	if d.Location.HasFilename() {
		if d.Location.HasColumn() {
			fmt.Fprintf(&b, "%s:%d:%d: ", d.Location.Filename, d.Location.Position.Line, d.Location.Position.Column)
		} else {
			fmt.Fprintf(&b, "%s:%d: ", d.Location.Filename, d.Location.Position.Line)
		}
	} else {
		fmt.Fprintf(&b, "line %d: ", d.Location.Position.Line)
	}

	sevText := r.colorize(d.Severity)
	fmt.Fprintf(&b, "%s[%s]: %s", sevText, d.Category, d.Message)

	fmt.Fprintln(r.out, b.String())

	if d.Location.HasSourceLine() {
		fmt.Fprintln(r.out, d.Location.SourceLine)
		if d.Location.HasColumn() {
			fmt.Fprintln(r.out, strings.Repeat(" ", d.Location.Position.Column-1)+"^")
		}
	}
}

func (r *Reporter) colorize(sev Severity) string {
	if !r.colored {
		return sev.String()
	}
	var color string
	switch sev {
	case Error:
		color = ansiBoldRed
	case Warning:
		color = ansiBoldYellow
	case Info:
		color = ansiBoldBlue
	default:
		color = ansiBoldGreen
	}
	return color + sev.String() + ansiReset
}
