package classfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dhamidi/classguard/internal/classtest"
)

func TestUnknownAttributeIsOpaque(t *testing.T) {
	c := sampleClass()
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	c.Attrs = append(c.Attrs, c.Attr("com.example.Custom", payload))

	cf, err := ParseBytes(c.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	attr := cf.GetAttribute("com.example.Custom")
	if attr == nil {
		t.Fatal("Expected custom attribute")
	}
	if attr.Parsed != nil || attr.Malformed {
		t.Errorf("Parsed = %v, Malformed = %v; want opaque and well-formed", attr.Parsed, attr.Malformed)
	}
	got, err := attr.Payload()
	if err != nil || !bytes.Equal(got, payload) {
		t.Errorf("Payload() = %x, %v; want %x", got, err, payload)
	}
}

func TestMalformedKnownAttribute(t *testing.T) {
	tests := []struct {
		name string
		info []byte
	}{
		{"short ConstantValue", []byte{0, 1, 2}},
		{"long ConstantValue", []byte{0, 1, 0, 2}},
		{"empty ConstantValue", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classtest.New("demo/Bad")
			c.Field(0x0018, "X", "I", c.Attr(AttrConstantValue, tt.info))
			cf, err := ParseBytes(c.Bytes())
			if err != nil {
				t.Fatalf("ParseBytes() error = %v", err)
			}
			attr := cf.Fields[0].GetAttribute(cf.ConstantPool, AttrConstantValue)
			if attr == nil {
				t.Fatal("Expected ConstantValue attribute")
			}
			if !attr.Malformed {
				t.Error("Expected Malformed to be set")
			}
			if attr.AsConstantValue() != nil {
				t.Error("AsConstantValue should return nil for a malformed payload")
			}
			if !bytes.Equal(attr.Info, tt.info) {
				t.Errorf("Info = %x, want %x", attr.Info, tt.info)
			}
		})
	}
}

func TestDecodeAttributeRejects(t *testing.T) {
	tests := []struct {
		name string
		attr string
		info []byte
	}{
		{"reserved frame type", AttrStackMapTable, classtest.Cat(classtest.U2(1), []byte{200})},
		{"bad verification tag", AttrStackMapTable, classtest.Cat(classtest.U2(1), []byte{64, 9})},
		{"bad element value tag", AttrAnnotationDefault, []byte{'x', 0, 1}},
		{"unknown type annotation target", AttrRuntimeVisibleTypeAnnotations, classtest.Cat(classtest.U2(1), []byte{0x30})},
		{"code length past end", AttrCode, classtest.Cat(classtest.U2(1), classtest.U2(1), classtest.U4(10), []byte{0})},
		{"trailing bytes", AttrSignature, []byte{0, 1, 0}},
		{"truncated exceptions", AttrExceptions, classtest.Cat(classtest.U2(2), classtest.U2(1))},
		{"code sub-attribute past end", AttrCode, classtest.Cat(
			classtest.U2(0), classtest.U2(0), classtest.U4(1), []byte{0xB1}, classtest.U2(0),
			classtest.U2(1), classtest.U2(1), classtest.U4(5))},
		{"record component attribute past end", AttrRecord, classtest.Cat(
			classtest.U2(1), classtest.U2(1), classtest.U2(2),
			classtest.U2(1), classtest.U2(1), classtest.U4(5))},
	}

	cp := NewConstantPool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAttribute(tt.attr, tt.info, cp); err == nil {
				t.Error("Expected DecodeAttribute to fail")
			}
		})
	}
}

func TestReadAttributesLeavesErrorOnReader(t *testing.T) {
	r := newReader(classtest.Cat(classtest.U2(1), classtest.U2(1), classtest.U4(5), []byte{1, 2}))
	attrs, err := readAttributes(r, NewConstantPool())
	if err == nil {
		t.Fatal("Expected readAttributes to fail")
	}
	if attrs != nil {
		t.Errorf("attrs = %v, want nil", attrs)
	}
	if r.err != err {
		t.Errorf("reader error = %v, want %v", r.err, err)
	}
	if !errors.Is(err, ErrInvalidClass) {
		t.Errorf("error %v does not match ErrInvalidClass", err)
	}
}

func TestKnownAttributes(t *testing.T) {
	for _, name := range []string{AttrCode, AttrRecord, AttrBootstrapMethods, AttrModule, AttrAnnotationDefault} {
		if !IsKnownAttribute(name) {
			t.Errorf("IsKnownAttribute(%q) = false", name)
		}
	}
	if IsKnownAttribute("com.example.Custom") {
		t.Error("IsKnownAttribute reports a custom attribute as known")
	}
}

func TestStackMapFrameObjectClassIndices(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  []uint16
	}{
		{"same", []byte{5}, nil},
		{"same locals one stack item", []byte{70, 7, 0, 9}, []uint16{9}},
		{"extended", classtest.Cat([]byte{247}, classtest.U2(100), []byte{7}, classtest.U2(3)), []uint16{3}},
		{"chop", classtest.Cat([]byte{249}, classtest.U2(4)), nil},
		{"append", classtest.Cat([]byte{253}, classtest.U2(4), []byte{1, 7}, classtest.U2(12)), []uint16{12}},
		{
			"full",
			classtest.Cat([]byte{255}, classtest.U2(0), classtest.U2(2), []byte{7}, classtest.U2(5), []byte{8}, classtest.U2(0),
				classtest.U2(1), []byte{7}, classtest.U2(6)),
			[]uint16{5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := classtest.Cat(classtest.U2(1), tt.frame)
			body, err := DecodeAttribute(AttrStackMapTable, info, NewConstantPool())
			if err != nil {
				t.Fatalf("DecodeAttribute() error = %v", err)
			}
			smt := body.(*StackMapTableAttribute)
			if len(smt.Entries) != 1 || smt.Entries[0].FrameType != tt.frame[0] {
				t.Fatalf("Entries = %+v", smt.Entries)
			}
			got := smt.PoolReferences()
			if len(got) != len(tt.want) {
				t.Fatalf("PoolReferences() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("PoolReferences()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPoolReferences(t *testing.T) {
	tests := []struct {
		name string
		body AttributeBody
		want []uint16
	}{
		{"code catch types", &CodeAttribute{ExceptionTable: []ExceptionTableEntry{{CatchType: 0}, {CatchType: 7}}}, []uint16{0, 7}},
		{"inner classes", &InnerClassesAttribute{Classes: []InnerClassEntry{{InnerClassInfoIndex: 1, OuterClassInfoIndex: 2, InnerNameIndex: 3}}}, []uint16{1, 2, 3}},
		{"bootstrap", &BootstrapMethodsAttribute{BootstrapMethods: []BootstrapMethod{{BootstrapMethodRef: 4, BootstrapArguments: []uint16{5, 6}}}}, []uint16{4, 5, 6}},
		{"annotation default enum", &AnnotationDefaultAttribute{DefaultValue: ElementValue{Tag: 'e', Value: EnumConstValue{TypeNameIndex: 8, ConstNameIndex: 9}}}, []uint16{8, 9}},
		{"module", &ModuleAttribute{ModuleNameIndex: 1, Uses: []uint16{4}, Requires: []ModuleRequires{{RequiresIndex: 2, RequiresVersionIndex: 3}}}, []uint16{1, 0, 2, 3, 4}},
		{"synthetic", &SyntheticAttribute{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.body.PoolReferences()
			if len(got) != len(tt.want) {
				t.Fatalf("PoolReferences() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("PoolReferences()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHolders(t *testing.T) {
	c := sampleClass()
	x := c.Utf8("x")
	desc := c.Utf8("I")
	component := classtest.Cat(classtest.U2(x), classtest.U2(desc), classtest.U2(0))
	c.Attrs = append(c.Attrs, c.Attr(AttrRecord, classtest.U2(1), component))

	cf, err := ParseBytes(c.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	counts := map[AttributeContext]int{}
	for _, h := range cf.Holders() {
		counts[h.Context()]++
	}
	want := map[AttributeContext]int{
		ContextClass:           1,
		ContextField:           3,
		ContextMethod:          3,
		ContextCode:            2,
		ContextRecordComponent: 1,
	}
	for ctx, n := range want {
		if counts[ctx] != n {
			t.Errorf("%s holders = %d, want %d", ctx, counts[ctx], n)
		}
	}

	t.Run("set attributes through a holder", func(t *testing.T) {
		var code Holder = cf.GetMethod("<init>", "()V").GetCodeAttribute(cf.ConstantPool)
		code.SetAttributes(nil)
		again, err := cf.Bytes()
		if err != nil {
			t.Fatalf("Bytes() error = %v", err)
		}
		parsed, err := ParseBytes(again)
		if err != nil {
			t.Fatalf("ParseBytes() error = %v", err)
		}
		if n := len(parsed.GetMethod("<init>", "()V").GetCodeAttribute(parsed.ConstantPool).Attributes); n != 0 {
			t.Errorf("Code attributes = %d, want 0", n)
		}
	})
}

func TestAttributeAsMethodsReturnNil(t *testing.T) {
	cf, err := ParseBytes(sampleClass().Bytes())
	if err != nil {
		t.Fatalf("Failed to parse class: %v", err)
	}

	sourceFileAttr := cf.GetAttribute(AttrSourceFile)
	if sourceFileAttr == nil {
		t.Fatal("Expected SourceFile attribute")
	}

	if sourceFileAttr.AsCode() != nil {
		t.Error("AsCode should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsLineNumberTable() != nil {
		t.Error("AsLineNumberTable should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsLocalVariableTable() != nil {
		t.Error("AsLocalVariableTable should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsConstantValue() != nil {
		t.Error("AsConstantValue should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsExceptions() != nil {
		t.Error("AsExceptions should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsInnerClasses() != nil {
		t.Error("AsInnerClasses should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsSignature() != nil {
		t.Error("AsSignature should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsBootstrapMethods() != nil {
		t.Error("AsBootstrapMethods should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsRecord() != nil {
		t.Error("AsRecord should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsStackMapTable() != nil {
		t.Error("AsStackMapTable should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsRuntimeVisibleAnnotations() != nil {
		t.Error("AsRuntimeVisibleAnnotations should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsAnnotationDefault() != nil {
		t.Error("AsAnnotationDefault should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsModule() != nil {
		t.Error("AsModule should return nil for SourceFile attribute")
	}
	if sourceFileAttr.AsSourceFile() == nil {
		t.Error("AsSourceFile should not return nil for SourceFile attribute")
	}
}
