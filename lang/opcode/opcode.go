// Package opcode defines the instruction alphabet executed by the stack
// machine: a closed tagged union of categories, each carrying its own
// category-specific payload. The numeric values of every tag and subtag
// are part of the external binary contract (see the codec package) and
// must not be renumbered.
package opcode

import (
	"fmt"

	"github.com/oxyde-lang/oxyde/lang/value"
)

// Category identifies which variant of Opcode is populated. Its numeric
// value is the leading tag byte in the binary encoding.
type Category uint8

const (
	CatHalt       Category = 0x00
	CatLiteral    Category = 0x01
	CatArithmetic Category = 0x02
	CatLogic      Category = 0x03
	CatComparison Category = 0x04
	CatMemory     Category = 0x05
	CatIO         Category = 0x06
	CatFlow       Category = 0x07
	CatDup        Category = 0x08
	CatPop        Category = 0x09
	CatSwap       Category = 0x0A
)

func (c Category) String() string {
	switch c {
	case CatHalt:
		return "halt"
	case CatLiteral:
		return "literal"
	case CatArithmetic:
		return "arithmetic"
	case CatLogic:
		return "logic"
	case CatComparison:
		return "comparison"
	case CatMemory:
		return "memory"
	case CatIO:
		return "io"
	case CatFlow:
		return "flow"
	case CatDup:
		return "dup"
	case CatPop:
		return "pop"
	case CatSwap:
		return "swap"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// ArithOp is the subtag for the Arithmetic category.
type ArithOp uint8

const (
	Add ArithOp = 0
	Sub ArithOp = 1
	Mul ArithOp = 2
	Div ArithOp = 3
)

func (op ArithOp) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	default:
		return fmt.Sprintf("arith(%d)", uint8(op))
	}
}

// LogicOp is the subtag for the Logic category.
type LogicOp uint8

const (
	And LogicOp = 0
	Or  LogicOp = 1
	Xor LogicOp = 2
	Not LogicOp = 3
)

func (op LogicOp) String() string {
	switch op {
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	case Not:
		return "not"
	default:
		return fmt.Sprintf("logic(%d)", uint8(op))
	}
}

// CompareOp is the subtag for the Comparison category.
type CompareOp uint8

const (
	Eq CompareOp = 0
	Ne CompareOp = 1
	Lt CompareOp = 2
	Le CompareOp = 3
	Gt CompareOp = 4
	Ge CompareOp = 5
)

func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "eq"
	case Ne:
		return "ne"
	case Lt:
		return "lt"
	case Le:
		return "le"
	case Gt:
		return "gt"
	case Ge:
		return "ge"
	default:
		return fmt.Sprintf("cmp(%d)", uint8(op))
	}
}

// MemOp is the subtag for the Memory category.
type MemOp uint8

const (
	Load  MemOp = 0
	Store MemOp = 1
)

func (op MemOp) String() string {
	switch op {
	case Load:
		return "load"
	case Store:
		return "store"
	default:
		return fmt.Sprintf("mem(%d)", uint8(op))
	}
}

// IOOp is the subtag for the IO category.
type IOOp uint8

const (
	Print IOOp = 0
	Scan  IOOp = 1
)

func (op IOOp) String() string {
	switch op {
	case Print:
		return "print"
	case Scan:
		return "scan"
	default:
		return fmt.Sprintf("io(%d)", uint8(op))
	}
}

// FlowOp is the subtag for the Flow category. The numbering matches the
// wire format, with JumpIfFalse (not Jump) as 0.
type FlowOp uint8

const (
	JumpIfFalse FlowOp = 0
	JumpIfTrue  FlowOp = 1
	Jump        FlowOp = 2
	Call        FlowOp = 3
	Return      FlowOp = 4
)

func (op FlowOp) String() string {
	switch op {
	case JumpIfFalse:
		return "jump_if_false"
	case JumpIfTrue:
		return "jump_if_true"
	case Jump:
		return "jump"
	case Call:
		return "call"
	case Return:
		return "return"
	default:
		return fmt.Sprintf("flow(%d)", uint8(op))
	}
}

// hasAddr reports whether a Flow subtag carries an address payload.
func (op FlowOp) hasAddr() bool { return op != Return }

// Opcode is one instruction. Only the fields relevant to Cat are
// meaningful; constructors below are the supported way to build one.
type Opcode struct {
	Cat     Category
	Literal value.Value
	Arith   ArithOp
	Logic   LogicOp
	Compare CompareOp
	Mem     MemOp
	IO      IOOp
	Flow    FlowOp
	Addr    uint32
}

// Halt constructs a Halt opcode.
func Halt() Opcode { return Opcode{Cat: CatHalt} }

// Lit constructs a Literal opcode carrying v.
func Lit(v value.Value) Opcode { return Opcode{Cat: CatLiteral, Literal: v} }

// Arithmetic constructs an Arithmetic opcode with the given subtag.
func Arithmetic(op ArithOp) Opcode { return Opcode{Cat: CatArithmetic, Arith: op} }

// LogicOpcode constructs a Logic opcode with the given subtag.
func LogicOpcode(op LogicOp) Opcode { return Opcode{Cat: CatLogic, Logic: op} }

// Comparison constructs a Comparison opcode with the given subtag.
func Comparison(op CompareOp) Opcode { return Opcode{Cat: CatComparison, Compare: op} }

// Memory constructs a Memory opcode with the given subtag.
func Memory(op MemOp) Opcode { return Opcode{Cat: CatMemory, Mem: op} }

// IOOpcode constructs an IO opcode with the given subtag.
func IOOpcode(op IOOp) Opcode { return Opcode{Cat: CatIO, IO: op} }

// FlowJump constructs Flow(Jump(addr)).
func FlowJump(addr uint32) Opcode { return Opcode{Cat: CatFlow, Flow: Jump, Addr: addr} }

// FlowJumpIfTrue constructs Flow(JumpIfTrue(addr)).
func FlowJumpIfTrue(addr uint32) Opcode { return Opcode{Cat: CatFlow, Flow: JumpIfTrue, Addr: addr} }

// FlowJumpIfFalse constructs Flow(JumpIfFalse(addr)).
func FlowJumpIfFalse(addr uint32) Opcode {
	return Opcode{Cat: CatFlow, Flow: JumpIfFalse, Addr: addr}
}

// FlowCall constructs Flow(Call(addr)).
func FlowCall(addr uint32) Opcode { return Opcode{Cat: CatFlow, Flow: Call, Addr: addr} }

// FlowReturn constructs Flow(Return).
func FlowReturn() Opcode { return Opcode{Cat: CatFlow, Flow: Return} }

// Dup, Pop, Swap construct the three no-payload stack opcodes.
func Dup() Opcode  { return Opcode{Cat: CatDup} }
func Pop() Opcode  { return Opcode{Cat: CatPop} }
func Swap() Opcode { return Opcode{Cat: CatSwap} }

// HasAddr reports whether op carries a Flow address payload.
func (op Opcode) HasAddr() bool {
	return op.Cat == CatFlow && op.Flow.hasAddr()
}

// Equal reports whether op and other are the same instruction, including
// their payloads.
func (op Opcode) Equal(other Opcode) bool {
	if op.Cat != other.Cat {
		return false
	}
	switch op.Cat {
	case CatLiteral:
		return op.Literal.Equal(other.Literal)
	case CatArithmetic:
		return op.Arith == other.Arith
	case CatLogic:
		return op.Logic == other.Logic
	case CatComparison:
		return op.Compare == other.Compare
	case CatMemory:
		return op.Mem == other.Mem
	case CatIO:
		return op.IO == other.IO
	case CatFlow:
		if op.Flow != other.Flow {
			return false
		}
		if op.Flow.hasAddr() {
			return op.Addr == other.Addr
		}
		return true
	default: // Halt, Dup, Pop, Swap carry no payload
		return true
	}
}

// String renders op in the textual assembly form used by the disassembler.
func (op Opcode) String() string {
	switch op.Cat {
	case CatHalt:
		return "halt"
	case CatLiteral:
		return fmt.Sprintf("literal %s", op.Literal.Render())
	case CatArithmetic:
		return op.Arith.String()
	case CatLogic:
		return op.Logic.String()
	case CatComparison:
		return op.Compare.String()
	case CatMemory:
		return op.Mem.String()
	case CatIO:
		return op.IO.String()
	case CatFlow:
		if op.Flow.hasAddr() {
			return fmt.Sprintf("%s %d", op.Flow, op.Addr)
		}
		return op.Flow.String()
	case CatDup:
		return "dup"
	case CatPop:
		return "pop"
	case CatSwap:
		return "swap"
	default:
		return fmt.Sprintf("<invalid opcode category %d>", uint8(op.Cat))
	}
}
