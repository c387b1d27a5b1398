// Package asm implements a human-readable/writable textual form of a
// Bytecode. This is mostly to support testing of the VM and codec without
// going through the compiler pipeline, and to give the CLI's disasm
// command something to print.
//
// The format is one instruction per line, in program order:
//
//	literal uint 3
//	literal string "x"
//	store
//	literal string "x"
//	load
//	halt
//
// Jump, jump_if_true, jump_if_false and call carry their target as an
// absolute address (the index of the destination instruction in this same
// listing), matching the addresses used internally by the flattener.
package asm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oxyde-lang/oxyde/lang/bytecode"
	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

// Asm parses the textual assembly form into a Bytecode.
func Asm(src []byte) (*bytecode.Bytecode, error) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	bc := bytecode.New()

	lineNo := 0
	for sc.Scan() {
		lineNo++
		rawLine := sc.Text()
		line := stripComment(rawLine)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		op, err := parseLine(fields, rawLine)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		bc.Append(op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return bc, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func parseLine(fields []string, rawLine string) (opcode.Opcode, error) {
	mnemonic := strings.ToLower(fields[0])
	args := fields[1:]

	switch mnemonic {
	case "halt":
		return opcode.Halt(), noArgs(args, mnemonic)
	case "dup":
		return opcode.Dup(), noArgs(args, mnemonic)
	case "pop":
		return opcode.Pop(), noArgs(args, mnemonic)
	case "swap":
		return opcode.Swap(), noArgs(args, mnemonic)

	case "literal":
		return parseLiteral(args, rawLine)

	case "add":
		return opcode.Arithmetic(opcode.Add), noArgs(args, mnemonic)
	case "sub":
		return opcode.Arithmetic(opcode.Sub), noArgs(args, mnemonic)
	case "mul":
		return opcode.Arithmetic(opcode.Mul), noArgs(args, mnemonic)
	case "div":
		return opcode.Arithmetic(opcode.Div), noArgs(args, mnemonic)

	case "and":
		return opcode.LogicOpcode(opcode.And), noArgs(args, mnemonic)
	case "or":
		return opcode.LogicOpcode(opcode.Or), noArgs(args, mnemonic)
	case "xor":
		return opcode.LogicOpcode(opcode.Xor), noArgs(args, mnemonic)
	case "not":
		return opcode.LogicOpcode(opcode.Not), noArgs(args, mnemonic)

	case "eq":
		return opcode.Comparison(opcode.Eq), noArgs(args, mnemonic)
	case "ne":
		return opcode.Comparison(opcode.Ne), noArgs(args, mnemonic)
	case "lt":
		return opcode.Comparison(opcode.Lt), noArgs(args, mnemonic)
	case "le":
		return opcode.Comparison(opcode.Le), noArgs(args, mnemonic)
	case "gt":
		return opcode.Comparison(opcode.Gt), noArgs(args, mnemonic)
	case "ge":
		return opcode.Comparison(opcode.Ge), noArgs(args, mnemonic)

	case "load":
		return opcode.Memory(opcode.Load), noArgs(args, mnemonic)
	case "store":
		return opcode.Memory(opcode.Store), noArgs(args, mnemonic)

	case "print":
		return opcode.IOOpcode(opcode.Print), noArgs(args, mnemonic)
	case "scan":
		return opcode.IOOpcode(opcode.Scan), noArgs(args, mnemonic)

	case "jump":
		addr, err := oneAddr(args, mnemonic)
		return opcode.FlowJump(addr), err
	case "jump_if_true":
		addr, err := oneAddr(args, mnemonic)
		return opcode.FlowJumpIfTrue(addr), err
	case "jump_if_false":
		addr, err := oneAddr(args, mnemonic)
		return opcode.FlowJumpIfFalse(addr), err
	case "call":
		addr, err := oneAddr(args, mnemonic)
		return opcode.FlowCall(addr), err
	case "return":
		return opcode.FlowReturn(), noArgs(args, mnemonic)

	default:
		return opcode.Opcode{}, fmt.Errorf("unknown mnemonic: %s", fields[0])
	}
}

func noArgs(args []string, mnemonic string) error {
	if len(args) != 0 {
		return fmt.Errorf("%s takes no arguments, got %d", mnemonic, len(args))
	}
	return nil
}

func oneAddr(args []string, mnemonic string) (uint32, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s expects exactly one address argument, got %d", mnemonic, len(args))
	}
	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid address %q: %w", mnemonic, args[0], err)
	}
	return uint32(n), nil
}

func parseLiteral(args []string, rawLine string) (opcode.Opcode, error) {
	if len(args) == 0 {
		return opcode.Opcode{}, errors.New("literal requires a kind and value")
	}
	switch strings.ToLower(args[0]) {
	case "uint":
		if len(args) != 2 {
			return opcode.Opcode{}, errors.New("literal uint requires exactly one value")
		}
		n, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return opcode.Opcode{}, fmt.Errorf("literal uint: %w", err)
		}
		return opcode.Lit(value.UInt(uint32(n))), nil

	case "bool":
		if len(args) != 2 {
			return opcode.Opcode{}, errors.New("literal bool requires exactly one value")
		}
		switch args[1] {
		case "true":
			return opcode.Lit(value.Bool(true)), nil
		case "false":
			return opcode.Lit(value.Bool(false)), nil
		default:
			return opcode.Opcode{}, fmt.Errorf("literal bool: invalid value %q", args[1])
		}

	case "string":
		s, err := quotedStringFromLine(rawLine)
		if err != nil {
			return opcode.Opcode{}, fmt.Errorf("literal string: %w", err)
		}
		return opcode.Lit(value.String(s)), nil

	case "null":
		if len(args) != 1 {
			return opcode.Opcode{}, errors.New("literal null takes no value")
		}
		return opcode.Lit(value.Null), nil

	default:
		return opcode.Opcode{}, fmt.Errorf("unknown literal kind: %s", args[0])
	}
}

// quotedStringFromLine extracts the double-quoted Go string literal from a
// "literal string ..." line, working off the raw (unsplit) line so that
// whitespace inside the quotes survives strings.Fields.
func quotedStringFromLine(rawLine string) (string, error) {
	i := strings.IndexByte(rawLine, '"')
	if i < 0 {
		return "", errors.New("expected a double-quoted string")
	}
	qs, err := strconv.QuotedPrefix(rawLine[i:])
	if err != nil {
		return "", fmt.Errorf("malformed quoted string: %w", err)
	}
	return strconv.Unquote(qs)
}

// Dasm renders bc in the textual assembly form, one instruction per line,
// with its address as a trailing "# %05d" comment that Asm's comment
// stripping discards on reparse, so Asm(Dasm(bc)) round-trips to bc.
func Dasm(bc *bytecode.Bytecode) []byte {
	var buf bytes.Buffer
	ops := bc.Slice()
	for i, op := range ops {
		fmt.Fprintf(&buf, "%s\t# %05d\n", dasmLine(op), i)
	}
	return buf.Bytes()
}

// dasmLine renders a single opcode the way Asm expects to read it back,
// which for string literals differs from opcode.Opcode.String() (that form
// is unquoted and not safely parseable).
func dasmLine(op opcode.Opcode) string {
	if op.Cat == opcode.CatLiteral {
		switch op.Literal.Kind() {
		case value.KindUInt:
			u, _ := op.Literal.UInt()
			return fmt.Sprintf("literal uint %d", u)
		case value.KindBool:
			b, _ := op.Literal.Bool()
			return fmt.Sprintf("literal bool %t", b)
		case value.KindString:
			s, _ := op.Literal.String()
			return fmt.Sprintf("literal string %q", s)
		case value.KindNull:
			return "literal null"
		}
	}
	return op.String()
}
