package machine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxyde-lang/oxyde/lang/bytecode"
	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

func bc(ops ...opcode.Opcode) *bytecode.Bytecode {
	b := bytecode.New()
	for _, op := range ops {
		b.Append(op)
	}
	return b
}

func TestConstantStoreLoad(t *testing.T) {
	program := bc(
		opcode.Lit(value.UInt(1)),
		opcode.Lit(value.String("x")),
		opcode.Memory(opcode.Store),
		opcode.Lit(value.String("x")),
		opcode.Memory(opcode.Load),
		opcode.Halt(),
	)
	vm := New(program, IO{})
	profile, err := vm.Run()
	require.NoError(t, err)

	assert.EqualValues(t, 6, profile.ExecutedInstructions)
	assert.EqualValues(t, 1, profile.MemoryWrites)
	assert.EqualValues(t, 1, profile.MemoryReads)

	stack := vm.Stack()
	require.Len(t, stack, 1)
	assert.True(t, stack[0].Equal(value.UInt(1)))

	store := vm.Store()
	assert.True(t, store["x"].Equal(value.UInt(1)))
}

func TestBinaryOperatorStackOrder(t *testing.T) {
	// a - b where a=10, b=3: right (b) pushed first, then left (a).
	program := bc(
		opcode.Lit(value.UInt(3)),
		opcode.Lit(value.UInt(10)),
		opcode.Arithmetic(opcode.Sub),
		opcode.Halt(),
	)
	vm := New(program, IO{})
	_, err := vm.Run()
	require.NoError(t, err)

	stack := vm.Stack()
	require.Len(t, stack, 1)
	u, ok := stack[0].UInt()
	require.True(t, ok)
	assert.EqualValues(t, 7, u)
}

func TestWhileCountdown(t *testing.T) {
	// while (x > 0) { x = x - 1 }, x initially 3.
	program := bytecode.New()
	idx := func() uint32 { return uint32(program.Len()) }

	// 0..2: x = 3
	program.Append(opcode.Lit(value.UInt(3)))
	program.Append(opcode.Lit(value.String("x")))
	program.Append(opcode.Memory(opcode.Store))
	jumpToCond := program.Len()
	program.Append(opcode.FlowJump(0)) // patched below

	condStart := idx()
	program.Append(opcode.Lit(value.UInt(0)))
	program.Append(opcode.Lit(value.String("x")))
	program.Append(opcode.Memory(opcode.Load))
	program.Append(opcode.Comparison(opcode.Gt))
	jumpIfAddr := program.Len()
	program.Append(opcode.FlowJumpIfTrue(0)) // patched
	program.Append(opcode.FlowJump(0))       // patched (after addr)

	bodyStart := idx()
	program.Append(opcode.Lit(value.UInt(1)))
	program.Append(opcode.Lit(value.String("x")))
	program.Append(opcode.Memory(opcode.Load))
	program.Append(opcode.Arithmetic(opcode.Sub))
	program.Append(opcode.Lit(value.String("x")))
	program.Append(opcode.Memory(opcode.Store))
	program.Append(opcode.FlowJump(uint32(condStart)))

	afterStart := idx()
	program.Append(opcode.Halt())

	ops := program.Slice()
	ops[jumpToCond] = opcode.FlowJump(uint32(condStart))
	ops[jumpIfAddr] = opcode.FlowJumpIfTrue(uint32(bodyStart))
	ops[jumpIfAddr+1] = opcode.FlowJump(uint32(afterStart))
	rebuilt := bytecode.FromSlice(ops)

	vm := New(rebuilt, IO{})
	_, err := vm.Run()
	require.NoError(t, err)

	store := vm.Store()
	u, ok := store["x"].UInt()
	require.True(t, ok)
	assert.EqualValues(t, 0, u)
}

func TestCallReturn(t *testing.T) {
	// main: Call f; Halt. f (at addr 2): Literal(1); Return.
	program := bc(
		opcode.FlowCall(2),
		opcode.Halt(),
		opcode.Lit(value.UInt(1)),
		opcode.FlowReturn(),
	)
	vm := New(program, IO{})
	_, err := vm.Run()
	require.NoError(t, err)
	stack := vm.Stack()
	require.Len(t, stack, 1)
	assert.True(t, stack[0].Equal(value.UInt(1)))
}

func TestStackUnderflow(t *testing.T) {
	program := bc(opcode.Pop(), opcode.Halt())
	vm := New(program, IO{})
	_, err := vm.Run()
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "StackUnderflow", re.Kind)
}

func TestDivideByZero(t *testing.T) {
	program := bc(
		opcode.Lit(value.UInt(0)),
		opcode.Lit(value.UInt(1)),
		opcode.Arithmetic(opcode.Div),
		opcode.Halt(),
	)
	vm := New(program, IO{})
	_, err := vm.Run()
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "DivideByZero", re.Kind)
}

func TestUndefinedVariable(t *testing.T) {
	program := bc(
		opcode.Lit(value.String("missing")),
		opcode.Memory(opcode.Load),
		opcode.Halt(),
	)
	vm := New(program, IO{})
	_, err := vm.Run()
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "UndefinedVariable", re.Kind)
}

func TestPCOutOfBounds(t *testing.T) {
	program := bc(opcode.Lit(value.UInt(1)))
	vm := New(program, IO{})
	_, err := vm.Run()
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "PCOutOfBounds", re.Kind)
}

func TestPrintWritesLineToSink(t *testing.T) {
	var out bytes.Buffer
	program := bc(opcode.Lit(value.UInt(42)), opcode.IOOpcode(opcode.Print), opcode.Halt())
	vm := New(program, IO{Out: &out})
	_, err := vm.Run()
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}

func TestScanReadsLineFromSink(t *testing.T) {
	in := strings.NewReader("hello\n")
	program := bc(opcode.IOOpcode(opcode.Scan), opcode.Halt())
	vm := New(program, IO{In: in})
	_, err := vm.Run()
	require.NoError(t, err)
	stack := vm.Stack()
	require.Len(t, stack, 1)
	s, ok := stack[0].String()
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestDeterministicAcrossRuns(t *testing.T) {
	build := func() *bytecode.Bytecode {
		return bc(
			opcode.Lit(value.UInt(4)),
			opcode.Lit(value.UInt(3)),
			opcode.Arithmetic(opcode.Add),
			opcode.Lit(value.String("z")),
			opcode.Memory(opcode.Store),
			opcode.Halt(),
		)
	}
	vm1 := New(build(), IO{})
	p1, err := vm1.Run()
	require.NoError(t, err)

	vm2 := New(build(), IO{})
	p2, err := vm2.Run()
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, vm1.Store(), vm2.Store())
}
