// Package pipeline wires the compiler stages (build IR, flatten, encode,
// decode, execute) into the few entry points a host program needs, so that
// callers like the CLI don't have to know the package layout of lang/ir,
// lang/codec and lang/machine individually.
package pipeline

import (
	"io"

	"github.com/oxyde-lang/oxyde/lang/ast"
	"github.com/oxyde-lang/oxyde/lang/bytecode"
	"github.com/oxyde-lang/oxyde/lang/codec"
	"github.com/oxyde-lang/oxyde/lang/ir"
	"github.com/oxyde-lang/oxyde/lang/machine"
)

// Compile lowers prog to IR and flattens it to Bytecode in one step.
func Compile(prog *ast.Program) (*bytecode.Bytecode, error) {
	irProg, err := ir.Build(prog)
	if err != nil {
		return nil, err
	}
	return ir.Flatten(irProg)
}

// Encode writes bc to w in the binary wire format.
func Encode(w io.Writer, bc *bytecode.Bytecode) error {
	return codec.Encode(w, bc)
}

// Decode reads a Bytecode from r in the binary wire format.
func Decode(r io.Reader) (*bytecode.Bytecode, error) {
	return codec.Decode(r)
}

// Execute runs bc to completion on a fresh VM, returning its execution
// profile alongside any runtime error.
func Execute(bc *bytecode.Bytecode, ioSink machine.IO, maxInstructions uint64) (machine.Profile, error) {
	vm := machine.New(bc, ioSink)
	vm.MaxInstructions = maxInstructions
	return vm.Run()
}
