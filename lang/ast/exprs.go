package ast

import "github.com/oxyde-lang/oxyde/lang/value"

// Literal is a constant value embedded directly in the source.
type Literal struct {
	Value value.Value
}

// Variable references a named binding in the variable store.
type Variable struct {
	Name string
}

// UnaryOperation applies a unary operator to Expr. The only recognized Op
// is "-" (arithmetic negation); any other string fails lowering with
// MalformedAST.
type UnaryOperation struct {
	Op   string
	Expr Expr
}

// BinaryOperation applies a binary operator to Left and Right. Op must be
// one of: + - * / == != < > <= >=; any other string fails lowering with
// MalformedAST.
type BinaryOperation struct {
	Op          string
	Left, Right Expr
}

// FunctionCall invokes the function named Name with the evaluated Args,
// pushed left to right.
type FunctionCall struct {
	Name string
	Args []Expr
}

func (*Literal) exprNode()         {}
func (*Variable) exprNode()        {}
func (*UnaryOperation) exprNode()  {}
func (*BinaryOperation) exprNode() {}
func (*FunctionCall) exprNode()    {}
