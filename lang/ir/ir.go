// Package ir implements the control-flow-graph intermediate representation
// sitting between the AST and flat bytecode, the builder that lowers an AST
// into it, and the flattening pass that resolves it to absolute addresses.
package ir

import (
	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

// InstrKind identifies which IR instruction variant is populated.
type InstrKind uint8

const (
	KPush InstrKind = iota
	KLoad
	KStore
	KArith
	KLogic
	KCompare
	KIO
	KDup
	KPop
	KSwap
	KJump
	KJumpIf
	KCall
	KReturn
	KNeg
)

// Instr is one IR instruction. It mirrors the Opcode set, with two
// distinguishing additions: Load/Store carry the variable name inline
// (rather than a preceding Literal(String) push), and Jump/JumpIf refer to
// block indices within the owning function rather than absolute PCs.
type Instr struct {
	Kind    InstrKind
	Literal value.Value
	Name    string
	Arith   opcode.ArithOp
	Logic   opcode.LogicOp
	Compare opcode.CompareOp
	IO      opcode.IOOp

	// Jump is the single successor block for KJump.
	Jump int
	// Then/Else are the two successor blocks for KJumpIf.
	Then, Else int

	// Callee is the target function name for KCall.
	Callee string
}

func Push(v value.Value) Instr          { return Instr{Kind: KPush, Literal: v} }
func Load(name string) Instr            { return Instr{Kind: KLoad, Name: name} }
func Store(name string) Instr           { return Instr{Kind: KStore, Name: name} }
func Arith(op opcode.ArithOp) Instr     { return Instr{Kind: KArith, Arith: op} }
func Logic(op opcode.LogicOp) Instr     { return Instr{Kind: KLogic, Logic: op} }
func Compare(op opcode.CompareOp) Instr { return Instr{Kind: KCompare, Compare: op} }
func IO(op opcode.IOOp) Instr           { return Instr{Kind: KIO, IO: op} }
func Dup() Instr                        { return Instr{Kind: KDup} }
func Pop() Instr                        { return Instr{Kind: KPop} }
func Swap() Instr                       { return Instr{Kind: KSwap} }
func Jmp(block int) Instr               { return Instr{Kind: KJump, Jump: block} }
func JumpIf(then, els int) Instr        { return Instr{Kind: KJumpIf, Then: then, Else: els} }
func Call(name string) Instr            { return Instr{Kind: KCall, Callee: name} }
func Return() Instr                     { return Instr{Kind: KReturn} }

// Neg negates the value on top of the stack. There is no dedicated flat
// opcode for it; flattening expands it to a literal 0 and a Sub.
func Neg() Instr { return Instr{Kind: KNeg} }

// BasicBlock is a maximal straight-line sequence of IR instructions. Next
// and Branch are informational successor links (fall-through and
// conditional target, respectively); flattening does not rely on them, it
// resolves control flow from the explicit Jump/JumpIf instructions each
// block ends with.
type BasicBlock struct {
	Instrs []Instr
	Next   *int
	Branch *int
}

// Function is one named routine: an ordered list of basic blocks addressed
// by stable indices, with block 0 always the entry.
type Function struct {
	Name   string
	Params []string
	Blocks []*BasicBlock
}

// NewBlock appends a fresh, empty block and returns its index.
func (f *Function) NewBlock() int {
	f.Blocks = append(f.Blocks, &BasicBlock{})
	return len(f.Blocks) - 1
}

// Emit appends instr to the block at index.
func (f *Function) Emit(index int, instr Instr) {
	f.Blocks[index].Instrs = append(f.Blocks[index].Instrs, instr)
}

// Program is the full IR for a compilation unit: one function per named
// routine, plus the distinguished "main" entry function. Order records the
// order functions were declared in, with "main" always first; flattening
// concatenates functions in this order.
type Program struct {
	Main      *Function
	Functions map[string]*Function
	Order     []string
}

// declare registers fn under its name, recording declaration order.
func (p *Program) declare(fn *Function) {
	p.Functions[fn.Name] = fn
	p.Order = append(p.Order, fn.Name)
}
