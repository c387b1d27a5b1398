package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxyde-lang/oxyde/lang/ast"
	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

func buildAndFlatten(t *testing.T, prog *ast.Program) []opcode.Opcode {
	t.Helper()
	irProg, err := Build(prog)
	require.NoError(t, err)
	bc, err := Flatten(irProg)
	require.NoError(t, err)
	return bc.Slice()
}

func TestAssignmentLowersToStoreWithStringKeyFirst(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.Assignment{Name: "z", Expr: &ast.Literal{Value: value.UInt(7)}},
	}}
	ops := buildAndFlatten(t, prog)

	want := []opcode.Opcode{
		opcode.Lit(value.UInt(7)),
		opcode.Lit(value.String("z")),
		opcode.Memory(opcode.Store),
		opcode.Halt(),
	}
	require.Len(t, ops, len(want))
	for i := range want {
		assert.True(t, ops[i].Equal(want[i]), "opcode %d: got %v want %v", i, ops[i], want[i])
	}
}

func TestBinaryOperationPushesRightBeforeLeft(t *testing.T) {
	// z = 3 + 4; lowering order must push 4 then 3.
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.Assignment{Name: "z", Expr: &ast.BinaryOperation{
			Op:   "+",
			Left: &ast.Literal{Value: value.UInt(3)},
			Right: &ast.Literal{Value: value.UInt(4)},
		}},
	}}
	ops := buildAndFlatten(t, prog)

	require.True(t, ops[0].Equal(opcode.Lit(value.UInt(4))))
	require.True(t, ops[1].Equal(opcode.Lit(value.UInt(3))))
	require.True(t, ops[2].Equal(opcode.Arithmetic(opcode.Add)))
}

func TestWhileLoweringShape(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.Assignment{Name: "x", Expr: &ast.Literal{Value: value.UInt(3)}},
		&ast.While{
			Cond: &ast.BinaryOperation{Op: ">", Left: &ast.Variable{Name: "x"}, Right: &ast.Literal{Value: value.UInt(0)}},
			Body: []ast.Stmt{
				&ast.Assignment{Name: "x", Expr: &ast.BinaryOperation{Op: "-", Left: &ast.Variable{Name: "x"}, Right: &ast.Literal{Value: value.UInt(1)}}},
			},
		},
	}}
	irProg, err := Build(prog)
	require.NoError(t, err)
	require.Len(t, irProg.Main.Blocks, 4) // entry, cond, body, after
	bc, err := Flatten(irProg)
	require.NoError(t, err)
	// Last opcode must be Halt regardless of loop structure.
	last, ok := bc.At(bc.Len() - 1)
	require.True(t, ok)
	assert.True(t, last.Equal(opcode.Halt()))
}

func TestCallResolvesToFunctionEntryAddress(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.FunctionDefinition{Name: "f", Body: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.Literal{Value: value.UInt(1)}},
		}},
		&ast.ExprStmt{Expr: &ast.FunctionCall{Name: "f"}},
	}}
	irProg, err := Build(prog)
	require.NoError(t, err)
	bc, err := Flatten(irProg)
	require.NoError(t, err)

	// main = [Call f, Halt]; f = [Literal(1), Return]
	callOp, ok := bc.At(0)
	require.True(t, ok)
	require.Equal(t, opcode.CatFlow, callOp.Cat)
	require.Equal(t, opcode.Call, callOp.Flow)
	assert.EqualValues(t, 2, callOp.Addr) // f starts right after main's Call and Halt
}

func TestUndefinedFunctionCallIsLinkError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.FunctionCall{Name: "missing"}},
	}}
	irProg, err := Build(prog)
	require.NoError(t, err)
	_, err = Flatten(irProg)
	var linkErr *LinkError
	assert.ErrorAs(t, err, &linkErr)
}

func TestUnknownOperatorIsMalformedAST(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.BinaryOperation{Op: "%", Left: &ast.Literal{Value: value.UInt(1)}, Right: &ast.Literal{Value: value.UInt(1)}}},
	}}
	_, err := Build(prog)
	var malformed *MalformedAST
	assert.ErrorAs(t, err, &malformed)
}
