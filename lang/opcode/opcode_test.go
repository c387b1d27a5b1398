package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxyde-lang/oxyde/lang/value"
)

func TestEqualComparesPayload(t *testing.T) {
	assert.True(t, Lit(value.UInt(1)).Equal(Lit(value.UInt(1))))
	assert.False(t, Lit(value.UInt(1)).Equal(Lit(value.UInt(2))))
	assert.True(t, FlowJump(4).Equal(FlowJump(4)))
	assert.False(t, FlowJump(4).Equal(FlowJump(5)))
	assert.False(t, FlowJump(4).Equal(FlowCall(4)))
	assert.True(t, FlowReturn().Equal(FlowReturn()))
}

func TestHasAddr(t *testing.T) {
	assert.True(t, FlowJump(0).HasAddr())
	assert.True(t, FlowCall(0).HasAddr())
	assert.False(t, FlowReturn().HasAddr())
	assert.False(t, Halt().HasAddr())
}

func TestStringRendersOperands(t *testing.T) {
	assert.Equal(t, "literal 7", Lit(value.UInt(7)).String())
	assert.Equal(t, "jump 3", FlowJump(3).String())
	assert.Equal(t, "return", FlowReturn().String())
	assert.Equal(t, "add", Arithmetic(Add).String())
}
