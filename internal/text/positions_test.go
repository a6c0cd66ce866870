package text

import "testing"

func TestLocationStringWithFilenameAndColumn(t *testing.T) {
	t.Parallel()

	loc := Location{Filename: "main.c", Position: Position{Line: 10, Column: 9}}
	if got, want := loc.String(), "main.c:10:9"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLocationStringWithFilenameNoColumn(t *testing.T) {
	t.Parallel()

	loc := Location{Filename: "main.c", Position: Position{Line: 10}}
	if got, want := loc.String(), "main.c:10"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLocationStringWithoutFilename(t *testing.T) {
	t.Parallel()

	loc := Location{Position: Position{Line: 4}}
	if got, want := loc.String(), "line 4"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLocationHasColumnZeroMeansNoCaret(t *testing.T) {
	t.Parallel()

	loc := Location{Position: Position{Line: 1, Column: 0}}
	if loc.HasColumn() {
		t.Fatal("column 0 should report HasColumn() == false")
	}

	loc.Position.Column = 1
	if !loc.HasColumn() {
		t.Fatal("column 1 should report HasColumn() == true")
	}
}

func TestLocationHasSourceLine(t *testing.T) {
	t.Parallel()

	var loc Location
	if loc.HasSourceLine() {
		t.Fatal("zero-value location should not have a source line")
	}
	loc.SourceLine = "int x = 5"
	if !loc.HasSourceLine() {
		t.Fatal("expected HasSourceLine() == true once SourceLine is set")
	}
}
