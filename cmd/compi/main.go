// Command compi translates a small C subset into VHDL entity/
// architecture skeletons.
package main

import (
	"context"
	"os"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "v0.0.0-dev"

func main() {
	os.Exit(run(context.Background(), os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}
