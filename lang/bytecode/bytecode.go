// Package bytecode holds the flat, append-only opcode sequence produced by
// flattening and consumed by both the codec and the VM.
package bytecode

import "github.com/oxyde-lang/oxyde/lang/opcode"

// Bytecode is an ordered, finite sequence of opcodes. It is append-only
// during construction and read-only during execution; it carries no
// addresses of its own, those live inside Flow opcodes.
type Bytecode struct {
	ops []opcode.Opcode
}

// New returns an empty Bytecode.
func New() *Bytecode {
	return &Bytecode{}
}

// FromSlice builds a Bytecode from an existing slice, copying it so the
// caller's backing array cannot alias the container.
func FromSlice(ops []opcode.Opcode) *Bytecode {
	b := &Bytecode{ops: make([]opcode.Opcode, len(ops))}
	copy(b.ops, ops)
	return b
}

// Append adds op to the end of the sequence and returns its index.
func (b *Bytecode) Append(op opcode.Opcode) int {
	b.ops = append(b.ops, op)
	return len(b.ops) - 1
}

// Len reports the number of opcodes in the sequence.
func (b *Bytecode) Len() int { return len(b.ops) }

// At returns the opcode at index i and whether i was in range.
func (b *Bytecode) At(i int) (opcode.Opcode, bool) {
	if i < 0 || i >= len(b.ops) {
		return opcode.Opcode{}, false
	}
	return b.ops[i], true
}

// Slice returns the underlying opcodes. The returned slice aliases the
// container and must not be mutated by the caller.
func (b *Bytecode) Slice() []opcode.Opcode { return b.ops }

// Clone returns a deep copy of b.
func (b *Bytecode) Clone() *Bytecode { return FromSlice(b.ops) }

// Equal reports whether b and other hold the same opcodes in the same
// order.
func (b *Bytecode) Equal(other *Bytecode) bool {
	if other == nil {
		return false
	}
	if len(b.ops) != len(other.ops) {
		return false
	}
	for i, op := range b.ops {
		if !op.Equal(other.ops[i]) {
			return false
		}
	}
	return true
}
