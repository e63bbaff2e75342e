package bytecode_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dhamidi/classguard/bytecode"
	"github.com/dhamidi/classguard/classfile"
)

func mustEncode(t *testing.T, insns []bytecode.Instruction) []byte {
	t.Helper()
	code, err := bytecode.Encode(insns)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return code
}

func TestRoundTrip(t *testing.T) {
	insns := []bytecode.Instruction{
		&bytecode.Plain{Op: bytecode.OpIconst0},
		&bytecode.Operand{Op: bytecode.OpBipush, Value: -5},
		&bytecode.Operand{Op: bytecode.OpSipush, Value: 1000},
		&bytecode.Constant{Op: bytecode.OpLdc, Index: 2},
		&bytecode.Constant{Op: bytecode.OpLdcW, Index: 300},
		&bytecode.Constant{Op: bytecode.OpLdc2W, Index: 7},
		&bytecode.Operand{Op: bytecode.OpIload, Value: 3},
		&bytecode.Iinc{Index: 1, Const: -1},
		&bytecode.Wide{Op: bytecode.OpIload, Index: 300},
		&bytecode.Wide{Op: bytecode.OpIinc, Index: 300, Const: -1000},
		&bytecode.Operand{Op: bytecode.OpNewarray, Value: 10},
		&bytecode.Constant{Op: bytecode.OpInvokeinterface, Index: 9, Trailing: []byte{2, 0}},
		&bytecode.Constant{Op: bytecode.OpInvokedynamic, Index: 11, Trailing: []byte{0, 0}},
		&bytecode.Constant{Op: bytecode.OpMultianewarray, Index: 4, Trailing: []byte{3}},
		&bytecode.TableSwitch{Default: 40, Low: -1, High: 1, Offsets: []int32{10, 20, 30}},
		&bytecode.LookupSwitch{Default: 8, Pairs: []bytecode.MatchOffset{{Match: -7, Offset: 4}, {Match: 100, Offset: 12}}},
		&bytecode.Operand{Op: bytecode.OpGoto, Value: -3},
		&bytecode.Operand{Op: bytecode.OpGotoW, Value: 70000},
		&bytecode.Plain{Op: bytecode.OpReturn},
	}

	code := mustEncode(t, insns)
	decoded, err := bytecode.Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(insns) {
		t.Fatalf("expected %d instructions, got %d", len(insns), len(decoded))
	}
	for i := range insns {
		if decoded[i].Opcode() != insns[i].Opcode() {
			t.Errorf("instruction %d: opcode %s, want %s", i, decoded[i].Opcode(), insns[i].Opcode())
		}
	}
	again := mustEncode(t, decoded)
	if !bytes.Equal(again, code) {
		t.Errorf("re-encoding changed the code:\n got  %x\n want %x", again, code)
	}
}

func TestSwitchPaddingLaw(t *testing.T) {
	for pc := 0; pc < 8; pc++ {
		prefix := make([]bytecode.Instruction, pc)
		for i := range prefix {
			prefix[i] = &bytecode.Plain{Op: bytecode.OpNop}
		}
		padding := (3 - pc%4) % 4

		t.Run("tableswitch", func(t *testing.T) {
			ts := &bytecode.TableSwitch{Default: 1, Low: 5, High: 8, Offsets: []int32{1, 2, 3, 4}}
			code := mustEncode(t, append(prefix, ts))
			if got, want := ts.Size(), 1+padding+12+4*4; got != want {
				t.Errorf("pc %d: size %d, want %d", pc, got, want)
			}
			if len(code) != pc+ts.Size() {
				t.Errorf("pc %d: encoded %d bytes, want %d", pc, len(code), pc+ts.Size())
			}
			if (pc+1+padding)%4 != 0 {
				t.Errorf("pc %d: operands start unaligned", pc)
			}
			for _, b := range code[pc+1 : pc+1+padding] {
				if b != 0 {
					t.Errorf("pc %d: padding byte %d", pc, b)
				}
			}
			decoded, err := bytecode.Decode(code)
			if err != nil {
				t.Fatalf("pc %d: Decode: %v", pc, err)
			}
			got := decoded[len(decoded)-1].(*bytecode.TableSwitch)
			if got.Low != 5 || got.High != 8 || len(got.Offsets) != 4 || got.Offsets[3] != 4 {
				t.Errorf("pc %d: decoded %+v", pc, got)
			}
		})

		t.Run("lookupswitch", func(t *testing.T) {
			ls := &bytecode.LookupSwitch{Default: 1, Pairs: []bytecode.MatchOffset{{Match: 1, Offset: 2}, {Match: 3, Offset: 4}, {Match: 5, Offset: 6}}}
			code := mustEncode(t, append(prefix, ls))
			if got, want := ls.Size(), 1+padding+8+8*3; got != want {
				t.Errorf("pc %d: size %d, want %d", pc, got, want)
			}
			decoded, err := bytecode.Decode(code)
			if err != nil {
				t.Fatalf("pc %d: Decode: %v", pc, err)
			}
			if !bytes.Equal(mustEncode(t, decoded), code) {
				t.Errorf("pc %d: round trip changed the code", pc)
			}
		})
	}
}

func TestWideForms(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		size int
	}{
		{"wide iload", []byte{0xC4, 0x15, 0x01, 0x00}, 4},
		{"wide astore", []byte{0xC4, 0x3A, 0x00, 0x05}, 4},
		{"wide ret", []byte{0xC4, 0xA9, 0x01, 0x02}, 4},
		{"wide iinc", []byte{0xC4, 0x84, 0x01, 0x00, 0xFF, 0x00}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insns, err := bytecode.Decode(tt.code)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(insns) != 1 {
				t.Fatalf("expected 1 instruction, got %d", len(insns))
			}
			if insns[0].Size() != tt.size {
				t.Errorf("size %d, want %d", insns[0].Size(), tt.size)
			}
			if !bytes.Equal(mustEncode(t, insns), tt.code) {
				t.Error("round trip changed the code")
			}
		})
	}

	t.Run("wide iinc fields", func(t *testing.T) {
		insns, _ := bytecode.Decode([]byte{0xC4, 0x84, 0x01, 0x00, 0xFC, 0x18})
		w := insns[0].(*bytecode.Wide)
		if w.Op != bytecode.OpIinc || w.Index != 256 || w.Const != -1000 {
			t.Errorf("decoded %+v", w)
		}
	})

	t.Run("wide on a non-local opcode", func(t *testing.T) {
		_, err := bytecode.Decode([]byte{0xC4, 0x60, 0x00, 0x01})
		if !errors.Is(err, bytecode.ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})
}

func TestFastAload0MatchesAload0(t *testing.T) {
	tests := []struct {
		profile bytecode.Profile
		code    byte
	}{
		{bytecode.HotSpot11, 0xDC},
		{bytecode.HotSpot8, 0xDB},
	}

	for _, tt := range tests {
		t.Run(tt.profile.Name, func(t *testing.T) {
			rewritten, err := bytecode.Decode([]byte{tt.code, 0xB1}, bytecode.WithProfile(tt.profile))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			literal, err := bytecode.Decode([]byte{0x2A, 0xB1})
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(mustEncode(t, rewritten), mustEncode(t, literal)) {
				t.Error("fast aload_0 did not encode like aload_0")
			}
		})
	}
}

func TestBreakpointBecomesTwoNops(t *testing.T) {
	var rewrites int
	insns, err := bytecode.Decode([]byte{0xCA, 0x07, 0xB1}, bytecode.OnRewrite(func(pc int, reserved byte, replacement bytecode.Opcode) {
		rewrites++
		if pc != 0 || reserved != 0xCA || replacement != bytecode.OpNop {
			t.Errorf("OnRewrite(%d, 0x%02X, %s)", pc, reserved, replacement)
		}
	}))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(insns) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(insns))
	}
	for i, want := range []bytecode.Opcode{bytecode.OpNop, bytecode.OpNop, bytecode.OpReturn} {
		if insns[i].Opcode() != want {
			t.Errorf("instruction %d: %s, want %s", i, insns[i].Opcode(), want)
		}
	}
	if rewrites != 1 {
		t.Errorf("expected 1 rewrite, got %d", rewrites)
	}
	if got := mustEncode(t, insns); !bytes.Equal(got, []byte{0x00, 0x00, 0xB1}) {
		t.Errorf("encoded %x", got)
	}
}

func TestOtherReservedRewrites(t *testing.T) {
	insns, err := bytecode.Decode([]byte{0xE8, 0xEE})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := mustEncode(t, insns); !bytes.Equal(got, []byte{0xB1, 0x00}) {
		t.Errorf("encoded %x, want b100", got)
	}
}

// ldcPool has resolved-reference ordinals 0 -> #2 (String) and
// 1 -> #5 (MethodType).
func ldcPool(t *testing.T) *classfile.ConstantPool {
	t.Helper()
	cp := classfile.NewConstantPool()
	hello := classfile.NewUtf8("hello")
	desc := classfile.NewUtf8("()V")
	for _, e := range []classfile.ConstantPoolEntry{
		hello,
		&classfile.ConstantStringInfo{Value: hello},
		&classfile.ConstantIntegerInfo{Value: 1},
		desc,
		&classfile.ConstantMethodTypeInfo{Descriptor: desc},
	} {
		if _, err := cp.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return cp
}

func TestAldcRemap(t *testing.T) {
	cp := ldcPool(t)
	tests := []struct {
		name string
		code []byte
		want []byte
		err  error
	}{
		{"aldc ordinal 0", []byte{0xE6, 0x00}, []byte{0x12, 0x02}, nil},
		{"aldc ordinal 1", []byte{0xE6, 0x01}, []byte{0x12, 0x05}, nil},
		{"aldc_w big endian", []byte{0xE7, 0x00, 0x01}, []byte{0x13, 0x00, 0x05}, nil},
		{"aldc_w byte swapped", []byte{0xE7, 0x01, 0x00}, []byte{0x13, 0x00, 0x05}, nil},
		{"aldc out of range", []byte{0xE6, 0x07}, nil, bytecode.ErrUnmappedConstant},
		{"aldc_w out of range both ways", []byte{0xE7, 0x02, 0x02}, nil, bytecode.ErrUnmappedConstant},
		{"aldc truncated", []byte{0xE6}, nil, bytecode.ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insns, err := bytecode.Decode(tt.code, bytecode.WithConstantPool(cp))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := mustEncode(t, insns); !bytes.Equal(got, tt.want) {
				t.Errorf("encoded %x, want %x", got, tt.want)
			}
		})
	}

	t.Run("no pool", func(t *testing.T) {
		if _, err := bytecode.Decode([]byte{0xE6, 0x00}); !errors.Is(err, bytecode.ErrUnmappedConstant) {
			t.Errorf("expected ErrUnmappedConstant, got %v", err)
		}
	})
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    []byte
		profile bytecode.Profile
		err     error
	}{
		{"fast getfield", []byte{0xCB, 0x00, 0x01}, bytecode.HotSpot11, bytecode.ErrUnknownOpcode},
		{"unassigned internal opcode", []byte{0xF0}, bytecode.HotSpot11, bytecode.ErrUnknownOpcode},
		{"hotspot11 return marker under hotspot8", []byte{0xE8}, bytecode.HotSpot8, bytecode.ErrUnknownOpcode},
		{"impdep1", []byte{0xFE}, bytecode.HotSpot11, bytecode.ErrUnknownOpcode},
		{"truncated sipush", []byte{0x11, 0x00}, bytecode.HotSpot11, bytecode.ErrTruncated},
		{"truncated invokeinterface", []byte{0xB9, 0x00, 0x01, 0x01}, bytecode.HotSpot11, bytecode.ErrTruncated},
		{"truncated wide", []byte{0xC4}, bytecode.HotSpot11, bytecode.ErrTruncated},
		{"truncated breakpoint", []byte{0xCA}, bytecode.HotSpot11, bytecode.ErrTruncated},
		{"tableswitch low above high", []byte{0xAA, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 1}, bytecode.HotSpot11, bytecode.ErrMalformed},
		{"tableswitch missing offsets", []byte{0xAA, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 9}, bytecode.HotSpot11, bytecode.ErrTruncated},
		{"lookupswitch negative pairs", []byte{0xAB, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}, bytecode.HotSpot11, bytecode.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bytecode.Decode(tt.code, bytecode.WithProfile(tt.profile))
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestEncodeRejectsBadOperands(t *testing.T) {
	tests := []struct {
		name string
		insn bytecode.Instruction
	}{
		{"bipush overflow", &bytecode.Operand{Op: bytecode.OpBipush, Value: 200}},
		{"local index overflow", &bytecode.Operand{Op: bytecode.OpIload, Value: 256}},
		{"ldc wide index", &bytecode.Constant{Op: bytecode.OpLdc, Index: 256}},
		{"invokeinterface without count", &bytecode.Constant{Op: bytecode.OpInvokeinterface, Index: 1}},
		{"tableswitch offsets mismatch", &bytecode.TableSwitch{Low: 0, High: 3, Offsets: []int32{1}}},
		{"wide iadd", &bytecode.Wide{Op: bytecode.OpIadd, Index: 1}},
		{"operand on nop", &bytecode.Operand{Op: bytecode.OpNop, Value: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := bytecode.Encode([]bytecode.Instruction{tt.insn}); err == nil {
				t.Error("expected Encode to fail")
			}
		})
	}
}

func TestOffsetsAndPoolReferences(t *testing.T) {
	insns := []bytecode.Instruction{
		&bytecode.Plain{Op: bytecode.OpAload0},
		&bytecode.Constant{Op: bytecode.OpGetfield, Index: 4},
		&bytecode.LookupSwitch{Default: 0},
		&bytecode.Constant{Op: bytecode.OpLdc, Index: 9},
	}
	offsets := bytecode.Offsets(insns)
	want := []int{0, 1, 4, 16}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("offset %d = %d, want %d", i, offsets[i], want[i])
		}
	}

	refs := bytecode.PoolReferences(insns)
	if len(refs) != 2 || refs[0] != 4 || refs[1] != 9 {
		t.Errorf("PoolReferences = %v, want [4 9]", refs)
	}
}

func TestLookupProfile(t *testing.T) {
	p, err := bytecode.LookupProfile("HotSpot8")
	if err != nil || p.Name != "hotspot8" {
		t.Errorf("LookupProfile(HotSpot8) = %q, %v", p.Name, err)
	}
	if _, err := bytecode.LookupProfile("j9"); err == nil {
		t.Error("expected unknown profile to fail")
	}
}

func TestOpcodeString(t *testing.T) {
	if got := bytecode.OpInvokedynamic.String(); got != "invokedynamic" {
		t.Errorf("String() = %q", got)
	}
	if got := bytecode.Opcode(0xE6).String(); got != "opcode(0xE6)" {
		t.Errorf("String() = %q", got)
	}
	if bytecode.Opcode(0xCA).IsStandard() || !bytecode.OpJsrW.IsStandard() {
		t.Error("IsStandard mismatch")
	}
}
