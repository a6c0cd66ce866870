// Package text defines the small set of source-location types shared by
// the diagnostics, lexer, and parser packages.
package text

import "fmt"

// Position is a 1-based source line and an optional 1-based column.
// Column 0 means "no column available" (no caret is drawn for it).
type Position struct {
	Line   int
	Column int
}

// Location pins a Position to an optional source file and an optional
// verbatim copy of the offending source line, both of which diagnostics
// rendering treats as optional context.
type Location struct {
	Filename   string
	Position   Position
	SourceLine string
}

// HasFilename reports whether the location names a source file.
func (l Location) HasFilename() bool {
	return l.Filename != ""
}

// HasColumn reports whether the location carries a caret-able column.
func (l Location) HasColumn() bool {
	return l.Position.Column > 0
}

// HasSourceLine reports whether the location carries source context.
func (l Location) HasSourceLine() bool {
	return l.SourceLine != ""
}

func (l Location) String() string {
	if l.HasFilename() {
		if l.HasColumn() {
			return fmt.Sprintf("%s:%d:%d", l.Filename, l.Position.Line, l.Position.Column)
		}
		return fmt.Sprintf("%s:%d", l.Filename, l.Position.Line)
	}
	return fmt.Sprintf("line %d", l.Position.Line)
}
