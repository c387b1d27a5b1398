package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/oxyde-lang/oxyde/lang/asm"
	"github.com/oxyde-lang/oxyde/lang/pipeline"
)

// Asm reads a textual instruction listing from args[0] and writes its
// binary bytecode encoding to stdout.
func (c *Cmd) Asm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	bc, err := asm.Asm(src)
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}

	if err := pipeline.Encode(stdio.Stdout, bc); err != nil {
		return printError(stdio, err)
	}
	return nil
}
