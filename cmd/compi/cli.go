package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/kpumuk/compi/internal/compiler"
)

const (
	exitOK       = 0
	exitFailed   = 1
	exitInternal = 2
)

type cliOptions struct {
	debug   bool
	noColor bool
	version bool
	pairs   [][2]string // (input path, output path)
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	_ = stdin // compi has no --stdin mode: file-in/file-out pairs only.

	opts, usage, err := parseArgs(args)
	if err != nil {
		writef(stderr, "compi: %v\n\n%s", err, usage)
		return exitInternal
	}

	if opts.version {
		if !semver.IsValid("v" + strings.TrimPrefix(version, "v")) {
			panic(fmt.Sprintf("compi: embedded build version %q is not valid semver", version))
		}
		writef(stdout, "compi %s\n", version)
		return exitOK
	}

	failed, err := translateAll(ctx, opts.pairs, opts.debug, !opts.noColor, stdout, stderr)
	if err != nil {
		writef(stderr, "compi: %v\n", err)
		return exitInternal
	}
	if failed {
		return exitFailed
	}
	return exitOK
}

func parseArgs(args []string) (cliOptions, string, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("compi", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&opts.debug, "debug", false, "print the parsed AST before generating VHDL")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable colored diagnostic output")
	fs.BoolVar(&opts.version, "version", false, "print the build version and exit")

	usage := cliUsage(fs)
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, usage, err
	}
	if opts.version {
		return opts, usage, nil
	}

	rest := fs.Args()
	if len(rest) == 0 || len(rest)%2 != 0 {
		return cliOptions{}, usage, errors.New("arguments must be one or more input.c output.vhdl pairs")
	}
	for i := 0; i < len(rest); i += 2 {
		opts.pairs = append(opts.pairs, [2]string{rest[i], rest[i+1]})
	}
	return opts, usage, nil
}

func cliUsage(fs *flag.FlagSet) string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	b.WriteString("  compi [flags] input.c output.vhdl [input2.c output2.vhdl ...]\n")
	b.WriteString("  compi -version\n\n")
	b.WriteString("Flags:\n")
	fs.VisitAll(func(f *flag.Flag) {
		writef(&b, "  -%s\t%s\n", f.Name, f.Usage)
	})
	return b.String()
}

// translateAll runs each (input, output) pair as an independent
// translation unit, concurrently bounded by errgroup. Each unit's own
// lexer->parser->codegen pipeline stays single-threaded; only the
// set of units runs in parallel. Every unit builds its own stdout/
// diagnostics text in memory first and a shared mutex serializes the
// actual writes to stdout/stderr, since those writers are not
// themselves safe for concurrent use from multiple goroutines.
func translateAll(ctx context.Context, pairs [][2]string, debug, colored bool, stdout, stderr io.Writer) (failed bool, err error) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	failures := make([]bool, len(pairs))
	var writeMu sync.Mutex

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			unitFailed, unitErr := translateOne(pair[0], pair[1], debug, colored, stdout, stderr, &writeMu)
			failures[i] = unitFailed
			return unitErr
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for _, f := range failures {
		if f {
			failed = true
		}
	}
	return failed, nil
}

func translateOne(inputPath, outputPath string, debug, colored bool, stdout, stderr io.Writer, writeMu *sync.Mutex) (failed bool, err error) {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", inputPath, err)
	}

	var diagsBuf, astBuf strings.Builder
	opts := compiler.Options{Filename: inputPath, Colored: colored}
	if debug {
		opts.DumpAST = &astBuf
	}
	res := compiler.Translate(src, opts, &diagsBuf)

	writeMu.Lock()
	if astBuf.Len() > 0 {
		writef(stdout, "%s", astBuf.String())
	}
	if diagsBuf.Len() > 0 {
		writef(stderr, "%s", diagsBuf.String())
	}
	if res.Errors > 0 {
		writef(stderr, "compi: %s: %d error(s), %d warning(s)\n", inputPath, res.Errors, res.Warnings)
	}
	writeMu.Unlock()

	if res.Errors > 0 {
		return true, nil
	}
	if err := os.WriteFile(outputPath, []byte(res.VHDL), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", outputPath, err)
	}
	return false, nil
}

func writef(w io.Writer, format string, args ...any) {
	_, _ = io.WriteString(w, fmt.Sprintf(format, args...))
}
