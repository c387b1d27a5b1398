package ir

import (
	"fmt"

	"github.com/oxyde-lang/oxyde/lang/bytecode"
	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

// LinkError reports an IR reference (function call or block jump) that
// does not resolve to anything in the program being flattened.
type LinkError struct {
	Reason string
}

func (e *LinkError) Error() string { return fmt.Sprintf("link error: %s", e.Reason) }

// instrSize is the number of flat opcodes instr expands to, used to
// compute block addresses before any opcode is materialized.
func instrSize(instr Instr) int {
	switch instr.Kind {
	case KLoad, KStore, KJumpIf, KNeg:
		return 2
	default:
		return 1
	}
}

// Flatten resolves prog to a linear opcode sequence, appending a trailing
// Halt to main. Functions are concatenated in declaration order; within a
// function, blocks are laid out in index order.
func Flatten(prog *Program) (*bytecode.Bytecode, error) {
	blockAddr := make(map[string][]uint32)
	funcAddr := make(map[string]uint32)

	var pc uint32
	for _, name := range prog.Order {
		fn := prog.Functions[name]
		funcAddr[name] = pc
		addrs := make([]uint32, len(fn.Blocks))
		for i, blk := range fn.Blocks {
			addrs[i] = pc
			for _, instr := range blk.Instrs {
				pc += uint32(instrSize(instr))
			}
		}
		blockAddr[name] = addrs
		if fn == prog.Main {
			pc++ // main's trailing Halt
		}
	}

	bc := bytecode.New()
	for _, name := range prog.Order {
		fn := prog.Functions[name]
		addrs := blockAddr[name]
		for bi, blk := range fn.Blocks {
			for _, instr := range blk.Instrs {
				ops, err := materialize(instr, addrs, funcAddr, bi, name)
				if err != nil {
					return nil, err
				}
				for _, op := range ops {
					bc.Append(op)
				}
			}
		}
		if fn == prog.Main {
			bc.Append(opcode.Halt())
		}
	}
	return bc, nil
}

func materialize(instr Instr, blockAddrs []uint32, funcAddr map[string]uint32, blockIdx int, fnName string) ([]opcode.Opcode, error) {
	switch instr.Kind {
	case KPush:
		return []opcode.Opcode{opcode.Lit(instr.Literal)}, nil
	case KLoad:
		return []opcode.Opcode{
			opcode.Lit(value.String(instr.Name)),
			opcode.Memory(opcode.Load),
		}, nil
	case KStore:
		return []opcode.Opcode{
			opcode.Lit(value.String(instr.Name)),
			opcode.Memory(opcode.Store),
		}, nil
	case KArith:
		return []opcode.Opcode{opcode.Arithmetic(instr.Arith)}, nil
	case KLogic:
		return []opcode.Opcode{opcode.LogicOpcode(instr.Logic)}, nil
	case KCompare:
		return []opcode.Opcode{opcode.Comparison(instr.Compare)}, nil
	case KIO:
		return []opcode.Opcode{opcode.IOOpcode(instr.IO)}, nil
	case KDup:
		return []opcode.Opcode{opcode.Dup()}, nil
	case KPop:
		return []opcode.Opcode{opcode.Pop()}, nil
	case KSwap:
		return []opcode.Opcode{opcode.Swap()}, nil
	case KJump:
		addr, err := resolveBlock(blockAddrs, instr.Jump, fnName)
		if err != nil {
			return nil, err
		}
		return []opcode.Opcode{opcode.FlowJump(addr)}, nil
	case KJumpIf:
		thenAddr, err := resolveBlock(blockAddrs, instr.Then, fnName)
		if err != nil {
			return nil, err
		}
		elseAddr, err := resolveBlock(blockAddrs, instr.Else, fnName)
		if err != nil {
			return nil, err
		}
		return []opcode.Opcode{
			opcode.FlowJumpIfTrue(thenAddr),
			opcode.FlowJump(elseAddr),
		}, nil
	case KCall:
		addr, ok := funcAddr[instr.Callee]
		if !ok {
			return nil, &LinkError{Reason: fmt.Sprintf("call to undefined function %q", instr.Callee)}
		}
		return []opcode.Opcode{opcode.FlowCall(addr)}, nil
	case KReturn:
		return []opcode.Opcode{opcode.FlowReturn()}, nil
	case KNeg:
		// No dedicated opcode: negate by computing 0 - top-of-stack. The
		// value already on the stack is the right operand (b); push 0 as
		// the left operand (a) so Sub(a, b) computes 0 - x.
		return []opcode.Opcode{
			opcode.Lit(value.UInt(0)),
			opcode.Arithmetic(opcode.Sub),
		}, nil
	default:
		return nil, &LinkError{Reason: fmt.Sprintf("unresolvable IR instruction kind %d in function %q", instr.Kind, fnName)}
	}
}

func resolveBlock(blockAddrs []uint32, idx int, fnName string) (uint32, error) {
	if idx < 0 || idx >= len(blockAddrs) {
		return 0, &LinkError{Reason: fmt.Sprintf("reference to non-existent block %d in function %q", idx, fnName)}
	}
	return blockAddrs[idx], nil
}
