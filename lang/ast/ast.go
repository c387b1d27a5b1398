// Package ast defines the tree shape that the IR builder consumes. A
// conforming front end (lexer, parser, name resolution) is an external
// collaborator: this package only names the contract, it does not produce
// trees itself.
package ast

// Program is the root of a parsed source file: a flat list of top-level
// statements, in source order.
type Program struct {
	Statements []Stmt
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
}
