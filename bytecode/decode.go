package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/dhamidi/classguard/classfile"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classguard.bytecode")

var (
	// ErrTruncated is returned when an instruction runs past the end of the
	// code array.
	ErrTruncated = errors.New("truncated instruction")

	// ErrUnknownOpcode is returned for a reserved opcode with no standard
	// equivalent in the active profile.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrMalformed is returned for operands no VM would accept, such as a
	// tableswitch with low > high or wide applied to a non-local opcode.
	ErrMalformed = errors.New("malformed instruction")

	// ErrUnmappedConstant is returned when a compact ldc ordinal matches no
	// pool entry, directly or byte-swapped.
	ErrUnmappedConstant = errors.New("constant ordinal does not map to the pool")
)

// Option configures Decode.
type Option func(*decoder)

// WithConstantPool supplies the pool used to map compact ldc ordinals back
// to pool indices.
func WithConstantPool(cp *classfile.ConstantPool) Option {
	return func(d *decoder) { d.cp = cp }
}

// WithProfile selects the VM numbering for reserved opcodes.
func WithProfile(p Profile) Option {
	return func(d *decoder) { d.profile = p }
}

// OnRewrite registers fn to be called for every reserved opcode that was
// replaced by a standard one.
func OnRewrite(fn func(pc int, reserved byte, replacement Opcode)) Option {
	return func(d *decoder) { d.onRewrite = fn }
}

type decoder struct {
	code      []byte
	pc        int
	cp        *classfile.ConstantPool
	profile   Profile
	onRewrite func(pc int, reserved byte, replacement Opcode)

	// ordinals maps a resolved-reference ordinal to its pool index. Built on
	// first use.
	ordinals []uint16
	scanned  bool
}

// Decode splits a Code attribute's code array into instructions. Reserved
// opcodes the profile knows are replaced by standard instructions of the
// same length.
func Decode(code []byte, opts ...Option) ([]Instruction, error) {
	d := &decoder{code: code, profile: DefaultProfile}
	for _, opt := range opts {
		opt(d)
	}

	insns := make([]Instruction, 0, len(code)/2)
	for d.pc < len(code) {
		start := d.pc
		decoded, err := d.next()
		if err != nil {
			return nil, fmt.Errorf("pc %d: %w", start, err)
		}
		insns = append(insns, decoded...)
	}
	return insns, nil
}

func (d *decoder) need(n int) error {
	if len(d.code)-d.pc < n {
		return ErrTruncated
	}
	return nil
}

func (d *decoder) u2(at int) uint16 { return binary.BigEndian.Uint16(d.code[at:]) }
func (d *decoder) s4(at int) int32  { return int32(binary.BigEndian.Uint32(d.code[at:])) }

func (d *decoder) next() ([]Instruction, error) {
	pc := d.pc
	op := Opcode(d.code[pc])
	shape := opcodes[op].shape

	var insn Instruction
	size := 1
	switch shape {
	case shapeNone:
		insn = &Plain{Op: op}
	case shapeLocal, shapeArrayType:
		size = 2
		if err := d.need(size); err != nil {
			return nil, err
		}
		insn = &Operand{Op: op, Value: int32(d.code[pc+1])}
	case shapeByte:
		size = 2
		if err := d.need(size); err != nil {
			return nil, err
		}
		insn = &Operand{Op: op, Value: int32(int8(d.code[pc+1]))}
	case shapeShort, shapeBranch:
		size = 3
		if err := d.need(size); err != nil {
			return nil, err
		}
		insn = &Operand{Op: op, Value: int32(int16(d.u2(pc + 1)))}
	case shapeBranchWide:
		size = 5
		if err := d.need(size); err != nil {
			return nil, err
		}
		insn = &Operand{Op: op, Value: d.s4(pc + 1)}
	case shapeConstant1:
		size = 2
		if err := d.need(size); err != nil {
			return nil, err
		}
		insn = &Constant{Op: op, Index: uint16(d.code[pc+1])}
	case shapeConstant2, shapeInvokeInterface, shapeInvokeDynamic, shapeMultiANewArray:
		trailing := trailingBytes(shape)
		size = 3 + trailing
		if err := d.need(size); err != nil {
			return nil, err
		}
		c := &Constant{Op: op, Index: d.u2(pc + 1)}
		if trailing > 0 {
			c.Trailing = append([]byte(nil), d.code[pc+3:pc+size]...)
		}
		insn = c
	case shapeIinc:
		size = 3
		if err := d.need(size); err != nil {
			return nil, err
		}
		insn = &Iinc{Index: d.code[pc+1], Const: int8(d.code[pc+2])}
	case shapeWide:
		return d.wide()
	case shapeTableSwitch:
		return d.tableSwitch()
	case shapeLookupSwitch:
		return d.lookupSwitch()
	default:
		return d.reserved()
	}
	d.pc += size
	return []Instruction{insn}, nil
}

func (d *decoder) wide() ([]Instruction, error) {
	pc := d.pc
	if err := d.need(2); err != nil {
		return nil, err
	}
	op := Opcode(d.code[pc+1])
	if !wideable(op) {
		return nil, fmt.Errorf("%w: wide %s", ErrMalformed, op)
	}
	size := 4
	if op == OpIinc {
		size = 6
	}
	if err := d.need(size); err != nil {
		return nil, err
	}
	w := &Wide{Op: op, Index: d.u2(pc + 2)}
	if op == OpIinc {
		w.Const = int16(d.u2(pc + 4))
	}
	d.pc += size
	return []Instruction{w}, nil
}

func (d *decoder) tableSwitch() ([]Instruction, error) {
	pc := d.pc
	at := pc + 1 + switchPadding(pc)
	if err := d.need(at - pc + 12); err != nil {
		return nil, err
	}
	ts := &TableSwitch{
		Default: d.s4(at),
		Low:     d.s4(at + 4),
		High:    d.s4(at + 8),
	}
	if ts.Low > ts.High {
		return nil, fmt.Errorf("%w: tableswitch low %d > high %d", ErrMalformed, ts.Low, ts.High)
	}
	n := int64(ts.High) - int64(ts.Low) + 1
	at += 12
	if n > int64(len(d.code)-at)/4 {
		return nil, ErrTruncated
	}
	ts.Offsets = make([]int32, n)
	for i := range ts.Offsets {
		ts.Offsets[i] = d.s4(at + 4*i)
	}
	ts.SetOffset(pc)
	d.pc += ts.Size()
	return []Instruction{ts}, nil
}

func (d *decoder) lookupSwitch() ([]Instruction, error) {
	pc := d.pc
	at := pc + 1 + switchPadding(pc)
	if err := d.need(at - pc + 8); err != nil {
		return nil, err
	}
	ls := &LookupSwitch{Default: d.s4(at)}
	n := d.s4(at + 4)
	if n < 0 {
		return nil, fmt.Errorf("%w: lookupswitch with %d pairs", ErrMalformed, n)
	}
	at += 8
	if int64(n) > int64(len(d.code)-at)/8 {
		return nil, ErrTruncated
	}
	ls.Pairs = make([]MatchOffset, n)
	for i := range ls.Pairs {
		ls.Pairs[i] = MatchOffset{Match: d.s4(at + 8*i), Offset: d.s4(at + 8*i + 4)}
	}
	ls.SetOffset(pc)
	d.pc += ls.Size()
	return []Instruction{ls}, nil
}

// reserved decodes a VM-internal opcode into its standard equivalent.
func (d *decoder) reserved() ([]Instruction, error) {
	pc := d.pc
	raw := d.code[pc]
	op := Opcode(raw)
	replacement, size, ok := d.profile.rewrite(op)
	if !ok {
		if op > d.profile.Last && op < 0xFE {
			return nil, fmt.Errorf("%w: 0x%02X is unassigned in %s", ErrUnknownOpcode, raw, d.profile.Name)
		}
		return nil, fmt.Errorf("%w: 0x%02X has no standard form in %s", ErrUnknownOpcode, raw, d.profile.Name)
	}
	if err := d.need(size); err != nil {
		return nil, err
	}

	var out []Instruction
	switch replacement {
	case OpLdc:
		index, err := d.remap(uint16(d.code[pc+1]), false)
		if err != nil {
			return nil, err
		}
		if index > math.MaxUint8 {
			return nil, fmt.Errorf("%w: ordinal %d maps to index %d, too large for ldc", ErrUnmappedConstant, d.code[pc+1], index)
		}
		out = []Instruction{&Constant{Op: OpLdc, Index: index}}
	case OpLdcW:
		index, err := d.remap(d.u2(pc+1), true)
		if err != nil {
			return nil, err
		}
		out = []Instruction{&Constant{Op: OpLdcW, Index: index}}
	default:
		for n := 0; n < size; n++ {
			out = append(out, &Plain{Op: replacement})
		}
	}

	log.Debugf("rewrote reserved opcode 0x%02X at pc %d to %s", raw, pc, replacement)
	if d.onRewrite != nil {
		d.onRewrite(pc, raw, replacement)
	}
	d.pc += size
	return out, nil
}

// remap turns a resolved-reference ordinal into a pool index. The VM keeps
// the two-byte ordinal in native order, so a swapped reading is tried when
// the big-endian one is out of range.
func (d *decoder) remap(ordinal uint16, wide bool) (uint16, error) {
	if d.cp == nil {
		return 0, fmt.Errorf("%w: no constant pool to map ordinal %d", ErrUnmappedConstant, ordinal)
	}
	if !d.scanned {
		d.ordinals = resolvedReferences(d.cp)
		d.scanned = true
	}
	if int(ordinal) < len(d.ordinals) {
		return d.ordinals[ordinal], nil
	}
	if wide {
		if swapped := bits.ReverseBytes16(ordinal); int(swapped) < len(d.ordinals) {
			return d.ordinals[swapped], nil
		}
	}
	return 0, fmt.Errorf("%w: ordinal %d of %d", ErrUnmappedConstant, ordinal, len(d.ordinals))
}

// resolvedReferences lists, in pool order, the entries the VM keeps in its
// resolved-references array.
func resolvedReferences(cp *classfile.ConstantPool) []uint16 {
	var indices []uint16
	for index, entry := range cp.All() {
		switch entry.Tag() {
		case classfile.ConstantString, classfile.ConstantMethodHandle,
			classfile.ConstantMethodType, classfile.ConstantDynamic:
			indices = append(indices, index)
		}
	}
	return indices
}
