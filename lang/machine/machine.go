// Package machine implements the stack-based virtual machine: the
// fetch-decode-execute loop, its operand stack, variable store, call
// stack, program counter, and execution profile.
package machine

import (
	"github.com/mna/swiss"

	"github.com/oxyde-lang/oxyde/lang/bytecode"
	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

// defaultVarStoreSize is the initial capacity hint for the variable
// store's underlying swiss table; it is not a limit.
const defaultVarStoreSize = 16

// VM executes a single Bytecode to completion. It owns its stacks and
// variable store exclusively for the duration of Run and is not safe for
// concurrent use; independent VMs over disjoint state may run on separate
// goroutines.
type VM struct {
	bc    *bytecode.Bytecode
	stack []value.Value
	vars  *swiss.Map[string, value.Value]
	calls []uint32
	pc    uint32

	profile Profile
	io      IO

	// MaxInstructions, if nonzero, bounds ExecutedInstructions; exceeding it
	// fails with Cancelled. The core contract requires no such limit, this
	// is the optional extension point described for hosts that need one.
	MaxInstructions uint64
}

// New returns a VM ready to execute bc from its initial state: empty
// stacks, empty variable store, pc = 0, zeroed profile.
func New(bc *bytecode.Bytecode, io IO) *VM {
	return &VM{
		bc:   bc,
		vars: swiss.NewMap[string, value.Value](defaultVarStoreSize),
		io:   io,
	}
}

// Store returns a snapshot of the variable store, for diagnostics after a
// failed or completed Run.
func (vm *VM) Store() map[string]value.Value {
	out := make(map[string]value.Value, vm.vars.Count())
	vm.vars.Iter(func(k string, v value.Value) bool {
		out[k] = v
		return false
	})
	return out
}

// Stack returns a copy of the current operand stack, top-last.
func (vm *VM) Stack() []value.Value {
	out := make([]value.Value, len(vm.stack))
	copy(out, vm.stack)
	return out
}

// PC returns the current program counter.
func (vm *VM) PC() uint32 { return vm.pc }

// Profile returns the current counter snapshot.
func (vm *VM) Profile() Profile { return vm.profile }

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
	vm.profile.Pushes++
}

func (vm *VM) pop(atPC uint32) (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Value{}, errStackUnderflow(atPC)
	}
	top := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	vm.profile.Pops++
	return top, nil
}

// Run executes bytecode from the current pc until Halt or an error.
func (vm *VM) Run() (Profile, error) {
	for {
		opAt := vm.pc
		op, ok := vm.bc.At(int(vm.pc))
		if !ok {
			return vm.profile, errPCOutOfBounds(opAt)
		}
		vm.pc++
		vm.profile.ExecutedInstructions++

		if vm.MaxInstructions != 0 && vm.profile.ExecutedInstructions > vm.MaxInstructions {
			return vm.profile, errCancelled(opAt)
		}

		halted, err := vm.step(opAt, op)
		if err != nil {
			return vm.profile, err
		}
		if halted {
			return vm.profile, nil
		}
	}
}

// step executes a single opcode, fetched at address opAt with pc already
// advanced past it. It reports whether execution should halt.
func (vm *VM) step(opAt uint32, op opcode.Opcode) (bool, error) {
	switch op.Cat {
	case opcode.CatHalt:
		return true, nil

	case opcode.CatLiteral:
		vm.push(op.Literal)
		return false, nil

	case opcode.CatArithmetic:
		return false, vm.binaryArith(opAt, op.Arith)

	case opcode.CatLogic:
		if op.Logic == opcode.Not {
			return false, vm.unaryLogic(opAt)
		}
		return false, vm.binaryLogic(opAt, op.Logic)

	case opcode.CatComparison:
		return false, vm.binaryCompare(opAt, op.Compare)

	case opcode.CatMemory:
		if op.Mem == opcode.Load {
			return false, vm.memLoad(opAt)
		}
		return false, vm.memStore(opAt)

	case opcode.CatIO:
		if op.IO == opcode.Print {
			return false, vm.ioPrint(opAt)
		}
		return false, vm.ioScan(opAt)

	case opcode.CatFlow:
		return vm.flow(opAt, op)

	case opcode.CatDup:
		return false, vm.dup(opAt)

	case opcode.CatPop:
		_, err := vm.pop(opAt)
		return false, err

	case opcode.CatSwap:
		return false, vm.swap(opAt)

	default:
		return false, errTypeMismatch(opAt, "unrecognized opcode category")
	}
}

func (vm *VM) binaryArith(opAt uint32, op opcode.ArithOp) error {
	a, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	b, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	var result value.Value
	switch op {
	case opcode.Add:
		result, err = value.Add(a, b)
	case opcode.Sub:
		result, err = value.Sub(a, b)
	case opcode.Mul:
		result, err = value.Mul(a, b)
	case opcode.Div:
		result, err = value.Div(a, b)
	}
	if err != nil {
		return wrapValueError(opAt, err)
	}
	vm.push(result)
	return nil
}

func (vm *VM) binaryLogic(opAt uint32, op opcode.LogicOp) error {
	a, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	b, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	var result value.Value
	switch op {
	case opcode.And:
		result, err = value.And(a, b)
	case opcode.Or:
		result, err = value.Or(a, b)
	case opcode.Xor:
		result, err = value.Xor(a, b)
	}
	if err != nil {
		return wrapValueError(opAt, err)
	}
	vm.push(result)
	return nil
}

func (vm *VM) unaryLogic(opAt uint32) error {
	a, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	result, err := value.Not(a)
	if err != nil {
		return wrapValueError(opAt, err)
	}
	vm.push(result)
	return nil
}

func (vm *VM) binaryCompare(opAt uint32, op opcode.CompareOp) error {
	a, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	b, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	var result value.Value
	switch op {
	case opcode.Eq:
		result = value.Eq(a, b)
	case opcode.Ne:
		result = value.Ne(a, b)
	case opcode.Lt:
		result, err = value.Lt(a, b)
	case opcode.Le:
		result, err = value.Le(a, b)
	case opcode.Gt:
		result, err = value.Gt(a, b)
	case opcode.Ge:
		result, err = value.Ge(a, b)
	}
	if err != nil {
		return wrapValueError(opAt, err)
	}
	vm.push(result)
	return nil
}

func (vm *VM) memLoad(opAt uint32) error {
	key, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	name, ok := key.String()
	if !ok {
		return errTypeMismatch(opAt, "memory key is not a string")
	}
	v, ok := vm.vars.Get(name)
	if !ok {
		return errUndefinedVariable(opAt, name)
	}
	vm.profile.MemoryReads++
	vm.push(v)
	return nil
}

func (vm *VM) memStore(opAt uint32) error {
	key, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	name, ok := key.String()
	if !ok {
		return errTypeMismatch(opAt, "memory key is not a string")
	}
	v, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	vm.vars.Put(name, v)
	vm.profile.MemoryWrites++
	return nil
}

func (vm *VM) ioPrint(opAt uint32) error {
	v, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	return vm.io.writeLine(v.Render())
}

func (vm *VM) ioScan(opAt uint32) error {
	line, err := vm.io.readLine()
	if err != nil {
		return newError("IOError", opAt, err.Error())
	}
	vm.push(value.String(line))
	return nil
}

func (vm *VM) flow(opAt uint32, op opcode.Opcode) (bool, error) {
	switch op.Flow {
	case opcode.Jump:
		vm.pc = op.Addr
		return false, nil

	case opcode.JumpIfTrue:
		cond, err := vm.pop(opAt)
		if err != nil {
			return false, err
		}
		b, ok := cond.Bool()
		if !ok {
			return false, errTypeMismatch(opAt, "jump condition is not a bool")
		}
		if b {
			vm.pc = op.Addr
		}
		return false, nil

	case opcode.JumpIfFalse:
		cond, err := vm.pop(opAt)
		if err != nil {
			return false, err
		}
		b, ok := cond.Bool()
		if !ok {
			return false, errTypeMismatch(opAt, "jump condition is not a bool")
		}
		if !b {
			vm.pc = op.Addr
		}
		return false, nil

	case opcode.Call:
		vm.calls = append(vm.calls, vm.pc)
		vm.pc = op.Addr
		return false, nil

	case opcode.Return:
		if len(vm.calls) == 0 {
			return false, errCallStackUnderflow(opAt)
		}
		ret := vm.calls[len(vm.calls)-1]
		vm.calls = vm.calls[:len(vm.calls)-1]
		vm.pc = ret
		return false, nil

	default:
		return false, errTypeMismatch(opAt, "unrecognized flow subtag")
	}
}

func (vm *VM) dup(opAt uint32) error {
	if len(vm.stack) == 0 {
		return errStackUnderflow(opAt)
	}
	top := vm.stack[len(vm.stack)-1]
	vm.push(top)
	return nil
}

func (vm *VM) swap(opAt uint32) error {
	a, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	b, err := vm.pop(opAt)
	if err != nil {
		return err
	}
	vm.push(a)
	vm.push(b)
	return nil
}
