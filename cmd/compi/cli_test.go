package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunTranslatesSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "add.c")
	out := filepath.Join(dir, "add.vhdl")
	require.NoError(t, os.WriteFile(in, []byte("int add(int a, int b) { return a + b; }"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr, []string{in, out})
	require.Equalf(t, exitOK, code, "stderr: %s", stderr.String())

	generated, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(generated), "entity add is")
}

func TestRunRejectsOddArgumentCount(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr, []string{"only_one.c"})
	if code != exitInternal {
		t.Fatalf("exit code = %d, want %d", code, exitInternal)
	}
	if !strings.Contains(stderr.String(), "input.c output.vhdl pairs") {
		t.Fatalf("stderr missing usage hint: %q", stderr.String())
	}
}

func TestRunFailsOnMissingInputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr,
		[]string{filepath.Join(dir, "nope.c"), filepath.Join(dir, "nope.vhdl")})
	if code != exitInternal {
		t.Fatalf("exit code = %d, want %d", code, exitInternal)
	}
}

func TestRunReturnsFailedExitCodeOnCompileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "bad.c")
	out := filepath.Join(dir, "bad.vhdl")
	require.NoError(t, os.WriteFile(in, []byte("int f() { int x = ; return 0; }"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr, []string{in, out})
	require.Equal(t, exitFailed, code)
	require.Contains(t, stderr.String(), "error(s)")
}

func TestRunTranslatesMultipleUnitsConcurrently(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var args []string
	for i := 0; i < 5; i++ {
		in := filepath.Join(dir, "f"+string(rune('a'+i))+".c")
		out := filepath.Join(dir, "f"+string(rune('a'+i))+".vhdl")
		if err := os.WriteFile(in, []byte("int f(int x) { return x; }"), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		args = append(args, in, out)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr, args)
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d, stderr: %s", code, exitOK, stderr.String())
	}
	for i := 0; i < len(args); i += 2 {
		if _, err := os.Stat(args[i+1]); err != nil {
			t.Fatalf("expected output file %s: %v", args[i+1], err)
		}
	}
}

func TestRunDebugFlagPrintsAST(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "f.c")
	out := filepath.Join(dir, "f.vhdl")
	if err := os.WriteFile(in, []byte("int f() { return 0; }"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr, []string{"-debug", in, out})
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d, stderr: %s", code, exitOK, stderr.String())
	}
	if !strings.Contains(stdout.String(), "PROGRAM") {
		t.Fatalf("expected -debug to print AST, stdout: %q", stdout.String())
	}
}

func TestRunVersionFlag(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr, []string{"-version"})
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout.String(), "compi")
}
