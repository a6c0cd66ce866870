// Package testutil provides shared helpers for repository tests.
package testutil

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// GoldenCase is an input/expected fixture pair: a compi source file
// and the VHDL it is expected to translate to.
type GoldenCase struct {
	Name         string
	InputPath    string
	ExpectedPath string
}

// Update reports whether golden fixtures should be regenerated rather
// than compared, controlled by the -update flag this package registers.
var Update = flag.Bool("update", false, "regenerate golden fixtures instead of comparing against them")

// RepoRoot returns the repository root by walking up from this source file.
func RepoRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("runtime.Caller failed")
	}
	dir := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("repository root not found")
		}
		dir = parent
	}
}

// MustRepoRoot returns the repository root or fails the test.
func MustRepoRoot(t testing.TB) string {
	t.Helper()
	root, err := RepoRoot()
	if err != nil {
		t.Fatalf("RepoRoot: %v", err)
	}
	return root
}

// CodegenGoldenCases returns sorted compi->VHDL fixture pairs from
// testdata: every "<name>.c" file paired with a "<name>.vhdl" file in
// the same directory.
func CodegenGoldenCases() ([]GoldenCase, error) {
	root, err := RepoRoot()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, "testdata")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read testdata dir: %w", err)
	}

	var cases []GoldenCase
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".c" || strings.HasPrefix(name, ".") {
			continue
		}

		base := strings.TrimSuffix(name, ".c")
		expectedPath := filepath.Join(dir, base+".vhdl")
		if !*Update {
			if _, err := os.Stat(expectedPath); err != nil {
				return nil, fmt.Errorf("missing expected fixture for %s", name)
			}
		}

		cases = append(cases, GoldenCase{
			Name:         base,
			InputPath:    filepath.Join(dir, name),
			ExpectedPath: expectedPath,
		})
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, nil
}

// CompareOrUpdate compares got against the fixture at path, or
// (when Update is set) writes got to path and skips comparison —
// the regeneration half of the golden-file contract.
func CompareOrUpdate(t testing.TB, path string, got []byte) {
	t.Helper()
	if *Update {
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
		return
	}
	want := ReadFile(t, path)
	if string(want) != string(got) {
		t.Errorf("golden mismatch for %s\n--- want ---\n%s\n--- got ---\n%s", path, want, got)
	}
}

// ReadFile reads a fixture file or fails the test.
func ReadFile(t testing.TB, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return b
}
