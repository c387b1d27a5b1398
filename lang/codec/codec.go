// Package codec implements the versioned binary wire format for Bytecode:
// a 5-byte header (magic + version) followed by a back-to-back encoding of
// every opcode, with no trailing length — the decoder consumes all bytes.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/oxyde-lang/oxyde/lang/bytecode"
	"github.com/oxyde-lang/oxyde/lang/opcode"
	"github.com/oxyde-lang/oxyde/lang/value"
)

// Magic is the 4-byte little-endian file signature every encoded bytecode
// begins with.
const Magic uint32 = 0x765F4172

// Version is the only wire format version this package understands.
const Version byte = 1

const maxStringLen = 1<<16 - 1

// category tags, matching the leading byte of every opcode encoding.
const (
	tagHalt       byte = 0x00
	tagLiteral    byte = 0x01
	tagArithmetic byte = 0x02
	tagLogic      byte = 0x03
	tagComparison byte = 0x04
	tagMemory     byte = 0x05
	tagIO         byte = 0x06
	tagFlow       byte = 0x07
	tagDup        byte = 0x08
	tagPop        byte = 0x09
	tagSwap       byte = 0x0A
)

// literal subtags.
const (
	litUInt   byte = 0x00
	litBool   byte = 0x01
	litString byte = 0x02
	litNull   byte = 0x03
)

// Encode serializes bc to w as a 5-byte header followed by every opcode's
// wire encoding, in order. It returns *StringTooLong if any string literal
// exceeds the format's 16-bit length field.
func Encode(w io.Writer, bc *bytecode.Bytecode) error {
	var buf bytes.Buffer
	var magicBytes [4]byte
	binary.LittleEndian.PutUint32(magicBytes[:], Magic)
	buf.Write(magicBytes[:])
	buf.WriteByte(Version)

	for _, op := range bc.Slice() {
		if err := encodeOpcode(&buf, op); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func encodeOpcode(buf *bytes.Buffer, op opcode.Opcode) error {
	switch op.Cat {
	case opcode.CatHalt:
		buf.WriteByte(tagHalt)
	case opcode.CatLiteral:
		buf.WriteByte(tagLiteral)
		return encodeLiteral(buf, op.Literal)
	case opcode.CatArithmetic:
		buf.WriteByte(tagArithmetic)
		buf.WriteByte(byte(op.Arith))
	case opcode.CatLogic:
		buf.WriteByte(tagLogic)
		buf.WriteByte(byte(op.Logic))
	case opcode.CatComparison:
		buf.WriteByte(tagComparison)
		buf.WriteByte(byte(op.Compare))
	case opcode.CatMemory:
		buf.WriteByte(tagMemory)
		buf.WriteByte(byte(op.Mem))
	case opcode.CatIO:
		buf.WriteByte(tagIO)
		buf.WriteByte(byte(op.IO))
	case opcode.CatFlow:
		buf.WriteByte(tagFlow)
		buf.WriteByte(byte(op.Flow))
		if op.HasAddr() {
			var addrBytes [4]byte
			binary.LittleEndian.PutUint32(addrBytes[:], op.Addr)
			buf.Write(addrBytes[:])
		}
	case opcode.CatDup:
		buf.WriteByte(tagDup)
	case opcode.CatPop:
		buf.WriteByte(tagPop)
	case opcode.CatSwap:
		buf.WriteByte(tagSwap)
	}
	return nil
}

func encodeLiteral(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind() {
	case value.KindUInt:
		u, _ := v.UInt()
		buf.WriteByte(litUInt)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], u)
		buf.Write(b[:])
	case value.KindBool:
		b, _ := v.Bool()
		buf.WriteByte(litBool)
		if b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case value.KindString:
		s, _ := v.String()
		if len(s) > maxStringLen {
			return &StringTooLong{Length: len(s)}
		}
		buf.WriteByte(litString)
		var lenBytes [2]byte
		binary.LittleEndian.PutUint16(lenBytes[:], uint16(len(s)))
		buf.Write(lenBytes[:])
		buf.WriteString(s)
	case value.KindNull:
		buf.WriteByte(litNull)
	}
	return nil
}

// decoder walks a byte slice front to back, tracking its offset for error
// reporting.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) remaining() int { return len(d.data) - d.pos }

func (d *decoder) readByte() (byte, bool) {
	if d.remaining() < 1 {
		return 0, false
	}
	b := d.data[d.pos]
	d.pos++
	return b, true
}

func (d *decoder) readUint32() (uint32, bool) {
	if d.remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(d.data[d.pos : d.pos+4])
	d.pos += 4
	return v, true
}

func (d *decoder) readUint16() (uint16, bool) {
	if d.remaining() < 2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(d.data[d.pos : d.pos+2])
	d.pos += 2
	return v, true
}

func (d *decoder) readBytes(n int) ([]byte, bool) {
	if d.remaining() < n {
		return nil, false
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, true
}

// Decode parses r's entire contents into a Bytecode. It fails with
// InvalidMagic, UnsupportedVersion, Truncated, UnknownOpcode, UnknownSubtag,
// or InvalidUtf8 as described in the format's decoder contract.
func Decode(r io.Reader) (*bytecode.Bytecode, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := &decoder{data: data}

	magic, ok := d.readUint32()
	if !ok || magic != Magic {
		return nil, invalidMagic(0)
	}
	version, ok := d.readByte()
	if !ok {
		return nil, truncated(d.pos, "missing version byte")
	}
	if version != Version {
		return nil, unsupportedVersion(4, version)
	}

	bc := bytecode.New()
	for d.remaining() > 0 {
		op, err := decodeOpcode(d)
		if err != nil {
			return nil, err
		}
		bc.Append(op)
	}
	return bc, nil
}

func decodeOpcode(d *decoder) (opcode.Opcode, error) {
	tagOffset := d.pos
	tag, ok := d.readByte()
	if !ok {
		return opcode.Opcode{}, truncated(tagOffset, "missing opcode tag")
	}
	switch tag {
	case tagHalt:
		return opcode.Halt(), nil
	case tagLiteral:
		return decodeLiteral(d)
	case tagArithmetic:
		sub, ok := d.readByte()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "missing arithmetic subtag")
		}
		if sub > byte(opcode.Div) {
			return opcode.Opcode{}, unknownSubtag(d.pos-1, sub)
		}
		return opcode.Arithmetic(opcode.ArithOp(sub)), nil
	case tagLogic:
		sub, ok := d.readByte()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "missing logic subtag")
		}
		if sub > byte(opcode.Not) {
			return opcode.Opcode{}, unknownSubtag(d.pos-1, sub)
		}
		return opcode.LogicOpcode(opcode.LogicOp(sub)), nil
	case tagComparison:
		sub, ok := d.readByte()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "missing comparison subtag")
		}
		if sub > byte(opcode.Ge) {
			return opcode.Opcode{}, unknownSubtag(d.pos-1, sub)
		}
		return opcode.Comparison(opcode.CompareOp(sub)), nil
	case tagMemory:
		sub, ok := d.readByte()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "missing memory subtag")
		}
		if sub > byte(opcode.Store) {
			return opcode.Opcode{}, unknownSubtag(d.pos-1, sub)
		}
		return opcode.Memory(opcode.MemOp(sub)), nil
	case tagIO:
		sub, ok := d.readByte()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "missing io subtag")
		}
		if sub > byte(opcode.Scan) {
			return opcode.Opcode{}, unknownSubtag(d.pos-1, sub)
		}
		return opcode.IOOpcode(opcode.IOOp(sub)), nil
	case tagFlow:
		return decodeFlow(d)
	case tagDup:
		return opcode.Dup(), nil
	case tagPop:
		return opcode.Pop(), nil
	case tagSwap:
		return opcode.Swap(), nil
	default:
		return opcode.Opcode{}, unknownOpcode(tagOffset, tag)
	}
}

func decodeLiteral(d *decoder) (opcode.Opcode, error) {
	subOffset := d.pos
	sub, ok := d.readByte()
	if !ok {
		return opcode.Opcode{}, truncated(subOffset, "missing literal subtag")
	}
	switch sub {
	case litUInt:
		u, ok := d.readUint32()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "truncated uint literal")
		}
		return opcode.Lit(value.UInt(u)), nil
	case litBool:
		b, ok := d.readByte()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "truncated bool literal")
		}
		return opcode.Lit(value.Bool(b != 0)), nil
	case litString:
		lenOffset := d.pos
		n, ok := d.readUint16()
		if !ok {
			return opcode.Opcode{}, truncated(lenOffset, "missing string length")
		}
		raw, ok := d.readBytes(int(n))
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "truncated string payload")
		}
		if !utf8.Valid(raw) {
			return opcode.Opcode{}, invalidUTF8(d.pos - len(raw))
		}
		return opcode.Lit(value.String(string(raw))), nil
	case litNull:
		return opcode.Lit(value.Null), nil
	default:
		return opcode.Opcode{}, unknownSubtag(subOffset, sub)
	}
}

func decodeFlow(d *decoder) (opcode.Opcode, error) {
	subOffset := d.pos
	sub, ok := d.readByte()
	if !ok {
		return opcode.Opcode{}, truncated(subOffset, "missing flow subtag")
	}
	flowOp := opcode.FlowOp(sub)
	switch flowOp {
	case opcode.JumpIfFalse, opcode.JumpIfTrue, opcode.Jump, opcode.Call:
		addr, ok := d.readUint32()
		if !ok {
			return opcode.Opcode{}, truncated(d.pos, "truncated flow address")
		}
		return opcode.Opcode{Cat: opcode.CatFlow, Flow: flowOp, Addr: addr}, nil
	case opcode.Return:
		return opcode.FlowReturn(), nil
	default:
		return opcode.Opcode{}, unknownSubtag(subOffset, sub)
	}
}
