package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/oxyde-lang/oxyde/lang/machine"
	"github.com/oxyde-lang/oxyde/lang/pipeline"
)

// Run reads a binary bytecode file from args[0], executes it to
// completion, and prints its final execution profile (and, with
// --print-stack, its final operand stack).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return printError(stdio, err)
	}
	defer f.Close()

	bc, err := pipeline.Decode(f)
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}

	vm := machine.New(bc, machine.IO{In: stdio.Stdin, Out: stdio.Stdout})
	vm.MaxInstructions = c.maxInstructions

	profile, runErr := vm.Run()
	fmt.Fprintf(stdio.Stdout, "executed=%d reads=%d writes=%d pushes=%d pops=%d\n",
		profile.ExecutedInstructions, profile.MemoryReads, profile.MemoryWrites,
		profile.Pushes, profile.Pops)

	if c.PrintStack {
		for _, v := range vm.Stack() {
			fmt.Fprintf(stdio.Stdout, "%s\n", v.Render())
		}
	}

	if c.PrintStore {
		store := vm.Store()
		names := maps.Keys(store)
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(stdio.Stdout, "%s=%s\n", name, store[name].Render())
		}
	}

	if runErr != nil {
		return printError(stdio, runErr)
	}
	return nil
}
