package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/oxyde-lang/oxyde/lang/asm"
	"github.com/oxyde-lang/oxyde/lang/pipeline"
)

// Disasm reads a binary bytecode file from args[0] and writes its textual
// instruction listing to stdout.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return printError(stdio, err)
	}
	defer f.Close()

	bc, err := pipeline.Decode(f)
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}

	if _, err := stdio.Stdout.Write(asm.Dasm(bc)); err != nil {
		return printError(stdio, err)
	}
	return nil
}
