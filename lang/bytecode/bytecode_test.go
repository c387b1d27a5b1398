package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

func TestAppendAndAt(t *testing.T) {
	b := New()
	idx := b.Append(opcode.Lit(value.UInt(1)))
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, b.Len())

	op, ok := b.At(0)
	require.True(t, ok)
	assert.True(t, op.Equal(opcode.Lit(value.UInt(1))))

	_, ok = b.At(1)
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	a := New()
	a.Append(opcode.Lit(value.UInt(1)))
	a.Append(opcode.Halt())

	b := New()
	b.Append(opcode.Lit(value.UInt(1)))
	b.Append(opcode.Halt())

	assert.True(t, a.Equal(b))

	c := New()
	c.Append(opcode.Lit(value.UInt(2)))
	c.Append(opcode.Halt())
	assert.False(t, a.Equal(c))
}

func TestCloneIsIndependent(t *testing.T) {
	a := New()
	a.Append(opcode.Halt())
	clone := a.Clone()
	clone.Append(opcode.Dup())
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestFromSliceCopies(t *testing.T) {
	ops := []opcode.Opcode{opcode.Halt()}
	b := FromSlice(ops)
	ops[0] = opcode.Dup()
	op, _ := b.At(0)
	assert.True(t, op.Equal(opcode.Halt()))
}
