package ir

import (
	"fmt"

	"github.com/oxyde-lang/oxyde/lang/ast"
	"github.com/oxyde-lang/oxyde/lang/opcode"
)

// MalformedAST reports an AST shape the builder does not know how to
// lower: an unrecognized operator string, statement type or expression
// type.
type MalformedAST struct {
	Reason string
}

func (e *MalformedAST) Error() string { return fmt.Sprintf("malformed AST: %s", e.Reason) }

// builder holds the cursor (current function, current block) that drives
// lowering. The root AST program lowers into a function named "main".
type builder struct {
	prog *Program
	fn   *Function
	blk  int
}

// Build lowers prog into an IR program rooted at a function named "main".
func Build(prog *ast.Program) (*Program, error) {
	b := &builder{prog: &Program{Functions: make(map[string]*Function)}}
	main := &Function{Name: "main"}
	main.NewBlock()
	b.prog.Main = main
	b.prog.declare(main)
	b.fn = main
	b.blk = 0

	for _, s := range prog.Statements {
		if err := b.lowerStmt(s); err != nil {
			return nil, err
		}
	}
	return b.prog, nil
}

func (b *builder) emit(instr Instr) { b.fn.Emit(b.blk, instr) }

func (b *builder) lowerStmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.Assignment:
		if err := b.lowerExpr(s.Expr); err != nil {
			return err
		}
		b.emit(Store(s.Name))
		return nil

	case *ast.ExprStmt:
		// The produced value is deliberately left on the stack: no Pop is
		// emitted after it.
		return b.lowerExpr(s.Expr)

	case *ast.While:
		condBlk := b.fn.NewBlock()
		bodyBlk := b.fn.NewBlock()
		afterBlk := b.fn.NewBlock()

		b.emit(Jmp(condBlk))

		b.blk = condBlk
		if err := b.lowerExpr(s.Cond); err != nil {
			return err
		}
		b.emit(JumpIf(bodyBlk, afterBlk))

		b.blk = bodyBlk
		for _, stmt := range s.Body {
			if err := b.lowerStmt(stmt); err != nil {
				return err
			}
		}
		b.emit(Jmp(condBlk))

		b.blk = afterBlk
		return nil

	case *ast.FunctionDefinition:
		fn := &Function{Name: s.Name}
		fn.NewBlock()
		b.prog.declare(fn)

		savedFn, savedBlk := b.fn, b.blk
		b.fn, b.blk = fn, 0
		for _, stmt := range s.Body {
			if err := b.lowerStmt(stmt); err != nil {
				return err
			}
		}
		b.emit(Return())
		b.fn, b.blk = savedFn, savedBlk
		return nil

	default:
		return &MalformedAST{Reason: fmt.Sprintf("unknown statement type %T", s)}
	}
}

// lowerExpr lowers e using the stack-machine convention that the right
// operand is pushed before the left, so that after the binary opcode
// executes the stack holds left op right. The VM's dispatch loop consumes
// operands in the corresponding order; see the machine package.
func (b *builder) lowerExpr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.Literal:
		b.emit(Push(e.Value))
		return nil

	case *ast.Variable:
		b.emit(Load(e.Name))
		return nil

	case *ast.UnaryOperation:
		if e.Op != "-" {
			return &MalformedAST{Reason: fmt.Sprintf("unknown unary operator %q", e.Op)}
		}
		if err := b.lowerExpr(e.Expr); err != nil {
			return err
		}
		b.emit(Neg())
		return nil

	case *ast.BinaryOperation:
		if err := b.lowerExpr(e.Right); err != nil {
			return err
		}
		if err := b.lowerExpr(e.Left); err != nil {
			return err
		}
		instr, err := binaryInstr(e.Op)
		if err != nil {
			return err
		}
		b.emit(instr)
		return nil

	case *ast.FunctionCall:
		for _, arg := range e.Args {
			if err := b.lowerExpr(arg); err != nil {
				return err
			}
		}
		b.emit(Call(e.Name))
		return nil

	default:
		return &MalformedAST{Reason: fmt.Sprintf("unknown expression type %T", e)}
	}
}

func binaryInstr(op string) (Instr, error) {
	switch op {
	case "+":
		return Arith(opcode.Add), nil
	case "-":
		return Arith(opcode.Sub), nil
	case "*":
		return Arith(opcode.Mul), nil
	case "/":
		return Arith(opcode.Div), nil
	case "==":
		return Compare(opcode.Eq), nil
	case "!=":
		return Compare(opcode.Ne), nil
	case "<":
		return Compare(opcode.Lt), nil
	case "<=":
		return Compare(opcode.Le), nil
	case ">":
		return Compare(opcode.Gt), nil
	case ">=":
		return Compare(opcode.Ge), nil
	default:
		return Instr{}, &MalformedAST{Reason: fmt.Sprintf("unknown binary operator %q", op)}
	}
}
