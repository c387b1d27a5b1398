package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxyde-lang/oxyde/lang/ast"
	"github.com/oxyde-lang/oxyde/lang/machine"
	"github.com/oxyde-lang/oxyde/lang/value"
)

// zPlusProgram builds the AST for `z = 3 + 4;` (spec scenario: Arithmetic).
func zPlusProgram() *ast.Program {
	return &ast.Program{
		Statements: []ast.Stmt{
			&ast.Assignment{
				Name: "z",
				Expr: &ast.BinaryOperation{
					Op:    "+",
					Left:  &ast.Literal{Value: value.UInt(3)},
					Right: &ast.Literal{Value: value.UInt(4)},
				},
			},
		},
	}
}

// countdownProgram builds the AST for:
//
//	x = 3;
//	while (x > 0) { x = x - 1; }
func countdownProgram() *ast.Program {
	return &ast.Program{
		Statements: []ast.Stmt{
			&ast.Assignment{Name: "x", Expr: &ast.Literal{Value: value.UInt(3)}},
			&ast.While{
				Cond: &ast.BinaryOperation{
					Op:    ">",
					Left:  &ast.Variable{Name: "x"},
					Right: &ast.Literal{Value: value.UInt(0)},
				},
				Body: []ast.Stmt{
					&ast.Assignment{
						Name: "x",
						Expr: &ast.BinaryOperation{
							Op:    "-",
							Left:  &ast.Variable{Name: "x"},
							Right: &ast.Literal{Value: value.UInt(1)},
						},
					},
				},
			},
		},
	}
}

func TestArithmeticProgramRunsEndToEnd(t *testing.T) {
	bc, err := Compile(zPlusProgram())
	require.NoError(t, err)

	vm := machine.New(bc, machine.IO{})
	_, err = vm.Run()
	require.NoError(t, err)

	got, ok := vm.Store()["z"].UInt()
	require.True(t, ok)
	assert.EqualValues(t, 7, got)
}

func TestWhileCountdownProgramRunsEndToEnd(t *testing.T) {
	bc, err := Compile(countdownProgram())
	require.NoError(t, err)

	vm := machine.New(bc, machine.IO{})
	_, err = vm.Run()
	require.NoError(t, err)

	got, ok := vm.Store()["x"].UInt()
	require.True(t, ok)
	assert.EqualValues(t, 0, got)
}

// TestLoweringIsDeterministic pins spec's "equal ASTs produce byte-equal
// bytecode" property by flattening the same AST twice and comparing.
func TestLoweringIsDeterministic(t *testing.T) {
	bc1, err := Compile(countdownProgram())
	require.NoError(t, err)

	bc2, err := Compile(countdownProgram())
	require.NoError(t, err)

	assert.True(t, bc1.Equal(bc2))
}
