package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

func (op Opcode) String() string {
	if name := opcodes[op].name; name != "" {
		return name
	}
	return fmt.Sprintf("opcode(0x%02X)", uint8(op))
}

// IsStandard reports whether op is an instruction the JVM specification
// defines.
func (op Opcode) IsStandard() bool {
	return opcodes[op].shape != shapeInvalid
}

// Instruction is one decoded instruction. The variants are Plain, Operand,
// Iinc, Constant, TableSwitch, LookupSwitch and Wide.
type Instruction interface {
	Opcode() Opcode
	// Size is the encoded length in bytes. Switch instructions only know it
	// once SetOffset has been called.
	Size() int
	encode(buf *bytes.Buffer) error
}

// OffsetAware instructions need their absolute start offset in the code
// array before they can be sized or encoded.
type OffsetAware interface {
	SetOffset(pc int)
}

// Plain is an instruction without operands.
type Plain struct {
	Op Opcode
}

func (i *Plain) Opcode() Opcode { return i.Op }
func (i *Plain) Size() int      { return 1 }

func (i *Plain) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(i.Op))
	return nil
}

// Operand is an instruction with one integer operand: a local variable
// index, an immediate, an array type or a relative branch offset.
type Operand struct {
	Op    Opcode
	Value int32
}

func (i *Operand) Opcode() Opcode { return i.Op }

func (i *Operand) Size() int {
	switch opcodes[i.Op].shape {
	case shapeShort, shapeBranch:
		return 3
	case shapeBranchWide:
		return 5
	}
	return 2
}

func (i *Operand) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(i.Op))
	switch opcodes[i.Op].shape {
	case shapeLocal, shapeArrayType:
		if i.Value < 0 || i.Value > math.MaxUint8 {
			return fmt.Errorf("%s operand %d does not fit in a byte", i.Op, i.Value)
		}
		buf.WriteByte(byte(i.Value))
	case shapeByte:
		if i.Value < math.MinInt8 || i.Value > math.MaxInt8 {
			return fmt.Errorf("%s operand %d does not fit in a signed byte", i.Op, i.Value)
		}
		buf.WriteByte(byte(int8(i.Value)))
	case shapeShort, shapeBranch:
		if i.Value < math.MinInt16 || i.Value > math.MaxInt16 {
			return fmt.Errorf("%s operand %d does not fit in 16 bits", i.Op, i.Value)
		}
		buf.Write(binary.BigEndian.AppendUint16(nil, uint16(int16(i.Value))))
	case shapeBranchWide:
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(i.Value)))
	default:
		return fmt.Errorf("%s does not take a single operand", i.Op)
	}
	return nil
}

// Iinc increments a local variable by a signed constant.
type Iinc struct {
	Index uint8
	Const int8
}

func (i *Iinc) Opcode() Opcode { return OpIinc }
func (i *Iinc) Size() int      { return 3 }

func (i *Iinc) encode(buf *bytes.Buffer) error {
	buf.Write([]byte{byte(OpIinc), i.Index, byte(i.Const)})
	return nil
}

// Constant references the constant pool. Trailing holds the bytes that
// follow the index for invokeinterface (count, 0), invokedynamic (0, 0) and
// multianewarray (dimensions); they are kept as read.
type Constant struct {
	Op       Opcode
	Index    uint16
	Trailing []byte
}

func (i *Constant) Opcode() Opcode { return i.Op }

func (i *Constant) Size() int {
	if opcodes[i.Op].shape == shapeConstant1 {
		return 2
	}
	return 3 + len(i.Trailing)
}

func (i *Constant) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(i.Op))
	shape := opcodes[i.Op].shape
	if want := trailingBytes(shape); len(i.Trailing) != want {
		return fmt.Errorf("%s needs %d trailing bytes, has %d", i.Op, want, len(i.Trailing))
	}
	switch shape {
	case shapeConstant1:
		if i.Index > math.MaxUint8 {
			return fmt.Errorf("%s index %d does not fit in a byte", i.Op, i.Index)
		}
		buf.WriteByte(byte(i.Index))
	case shapeConstant2, shapeInvokeInterface, shapeInvokeDynamic, shapeMultiANewArray:
		buf.Write(binary.BigEndian.AppendUint16(nil, i.Index))
		buf.Write(i.Trailing)
	default:
		return fmt.Errorf("%s does not reference the constant pool", i.Op)
	}
	return nil
}

func trailingBytes(shape operandShape) int {
	switch shape {
	case shapeInvokeInterface, shapeInvokeDynamic:
		return 2
	case shapeMultiANewArray:
		return 1
	}
	return 0
}

// switchPadding is the number of bytes between a switch opcode at pc and
// its first 4-byte aligned operand.
func switchPadding(pc int) int {
	return (3 - pc%4) % 4
}

// TableSwitch jumps through a dense table indexed from Low to High.
type TableSwitch struct {
	Default int32
	Low     int32
	High    int32
	Offsets []int32

	pc int
}

func (i *TableSwitch) Opcode() Opcode   { return OpTableswitch }
func (i *TableSwitch) SetOffset(pc int) { i.pc = pc }
func (i *TableSwitch) Size() int        { return 1 + switchPadding(i.pc) + 12 + 4*len(i.Offsets) }

func (i *TableSwitch) encode(buf *bytes.Buffer) error {
	if int64(i.High)-int64(i.Low)+1 != int64(len(i.Offsets)) {
		return fmt.Errorf("tableswitch %d..%d has %d offsets", i.Low, i.High, len(i.Offsets))
	}
	buf.WriteByte(byte(OpTableswitch))
	buf.Write(make([]byte, switchPadding(i.pc)))
	for _, v := range []int32{i.Default, i.Low, i.High} {
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(v)))
	}
	for _, off := range i.Offsets {
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(off)))
	}
	return nil
}

// MatchOffset is one lookupswitch case.
type MatchOffset struct {
	Match  int32
	Offset int32
}

// LookupSwitch jumps through a sorted list of match/offset pairs.
type LookupSwitch struct {
	Default int32
	Pairs   []MatchOffset

	pc int
}

func (i *LookupSwitch) Opcode() Opcode   { return OpLookupswitch }
func (i *LookupSwitch) SetOffset(pc int) { i.pc = pc }
func (i *LookupSwitch) Size() int        { return 1 + switchPadding(i.pc) + 8 + 8*len(i.Pairs) }

func (i *LookupSwitch) encode(buf *bytes.Buffer) error {
	if int64(len(i.Pairs)) > math.MaxInt32 {
		return fmt.Errorf("lookupswitch has %d pairs", len(i.Pairs))
	}
	buf.WriteByte(byte(OpLookupswitch))
	buf.Write(make([]byte, switchPadding(i.pc)))
	buf.Write(binary.BigEndian.AppendUint32(nil, uint32(i.Default)))
	buf.Write(binary.BigEndian.AppendUint32(nil, uint32(len(i.Pairs))))
	for _, p := range i.Pairs {
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(p.Match)))
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(p.Offset)))
	}
	return nil
}

// Wide is a wide-prefixed load, store, ret or iinc. Const is only used
// when Op is iinc.
type Wide struct {
	Op    Opcode
	Index uint16
	Const int16
}

func (i *Wide) Opcode() Opcode { return OpWide }

func (i *Wide) Size() int {
	if i.Op == OpIinc {
		return 6
	}
	return 4
}

func (i *Wide) encode(buf *bytes.Buffer) error {
	if !wideable(i.Op) {
		return fmt.Errorf("wide cannot modify %s", i.Op)
	}
	buf.Write([]byte{byte(OpWide), byte(i.Op)})
	buf.Write(binary.BigEndian.AppendUint16(nil, i.Index))
	if i.Op == OpIinc {
		buf.Write(binary.BigEndian.AppendUint16(nil, uint16(i.Const)))
	}
	return nil
}

func wideable(op Opcode) bool {
	return op == OpIinc || opcodes[op].shape == shapeLocal
}

// PoolReferences returns the constant pool index of every instruction that
// names one, in instruction order.
func PoolReferences(insns []Instruction) []uint16 {
	var refs []uint16
	for _, insn := range insns {
		if c, ok := insn.(*Constant); ok {
			refs = append(refs, c.Index)
		}
	}
	return refs
}
