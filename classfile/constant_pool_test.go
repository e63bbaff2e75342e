package classfile

import (
	"errors"
	"testing"
)

func TestConstantPoolAppend(t *testing.T) {
	cp := NewConstantPool()

	first, err := cp.Append(NewUtf8("a"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	long, _ := cp.Append(&ConstantLongInfo{Value: 5})
	after, _ := cp.Append(NewUtf8("b"))

	if first != 1 || long != 2 || after != 4 {
		t.Errorf("indices = %d, %d, %d; want 1, 2, 4", first, long, after)
	}
	if cp.Size() != 5 {
		t.Errorf("Size() = %d, want 5", cp.Size())
	}
	if cp.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cp.Len())
	}

	var order []uint16
	for index, entry := range cp.All() {
		if entry.Index() != index {
			t.Errorf("entry at %d reports index %d", index, entry.Index())
		}
		order = append(order, index)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 4 {
		t.Errorf("All() order = %v, want [1 2 4]", order)
	}
}

func TestConstantPoolGetOutOfRange(t *testing.T) {
	cp := NewConstantPool()
	cp.Append(&ConstantDoubleInfo{Bits: 1})

	for _, index := range []uint16{0, 2, 3, 0xFFFF} {
		if _, err := cp.Get(index); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Get(%d) error = %v, want ErrOutOfRange", index, err)
		}
	}
	if _, err := cp.Get(1); err != nil {
		t.Errorf("Get(1) error = %v", err)
	}
}

func TestConstantPoolReplace(t *testing.T) {
	cp := NewConstantPool()
	cp.Append(NewUtf8("x"))
	cp.Append(&ConstantLongInfo{Value: 1})

	t.Run("same width", func(t *testing.T) {
		filler := &ConstantIntegerInfo{}
		if err := cp.Replace(1, filler); err != nil {
			t.Fatalf("Replace() error = %v", err)
		}
		if filler.Index() != 1 {
			t.Errorf("filler index = %d, want 1", filler.Index())
		}
		if tag, _ := cp.TagAt(1); tag != ConstantInteger {
			t.Errorf("TagAt(1) = %s, want Integer", tag)
		}
	})

	t.Run("width change", func(t *testing.T) {
		if err := cp.Replace(2, &ConstantIntegerInfo{}); err == nil {
			t.Error("Expected replacing a Long with an Integer to fail")
		}
	})

	t.Run("empty slot", func(t *testing.T) {
		if err := cp.Replace(3, &ConstantIntegerInfo{}); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Replace(3) error = %v, want ErrOutOfRange", err)
		}
	})
}

// poolClass builds a class whose pool holds only the given entries.
func poolClass(t *testing.T, entries ...ConstantPoolEntry) *ClassFile {
	t.Helper()
	cp := NewConstantPool()
	for _, e := range entries {
		if _, err := cp.Append(e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	return &ClassFile{MajorVersion: 52, ConstantPool: cp}
}

func TestWriteDerivesIndicesFromEntries(t *testing.T) {
	first := NewUtf8("demo/First")
	second := NewUtf8("demo/Second")
	class := &ConstantClassInfo{Name: first}
	cf := poolClass(t, first, class, second)
	cf.ThisClass = class.Index()

	class.Name = second

	data, err := cf.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	parsed, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got := parsed.ClassName(); got != "demo/Second" {
		t.Errorf("ClassName() = %q, want demo/Second", got)
	}
}

func TestWriteUnresolvedReference(t *testing.T) {
	tests := []struct {
		name  string
		entry ConstantPoolEntry
		want  error
	}{
		{"class without name", &ConstantClassInfo{}, ErrUnresolved},
		{"string without value", &ConstantStringInfo{}, ErrUnresolved},
		{"name and type without descriptor", &ConstantNameAndTypeInfo{Name: NewUtf8("x")}, ErrUnresolved},
		{"method handle without reference", &ConstantMethodHandleInfo{ReferenceKind: RefInvokeStatic}, ErrUnresolved},
		{"indy without name and type", &ConstantInvokeDynamicInfo{}, ErrUnresolved},
		{"class naming an entry outside the pool", &ConstantClassInfo{Name: NewUtf8("x")}, ErrUnassigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := poolClass(t, tt.entry)
			if _, err := cf.Bytes(); !errors.Is(err, tt.want) {
				t.Errorf("Bytes() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConstantPoolGetters(t *testing.T) {
	name := NewUtf8("demo/Thing")
	class := &ConstantClassInfo{Name: name}
	method := NewUtf8("go")
	desc := NewUtf8("()V")
	nat := &ConstantNameAndTypeInfo{Name: method, Descriptor: desc}
	ref := &ConstantMethodrefInfo{Class: class, NameAndType: nat}
	cf := poolClass(t, name, class, method, desc, nat, ref, &ConstantLongInfo{Value: -3}, &ConstantFloatInfo{Bits: 0x3F800000})
	cp := cf.ConstantPool

	if got := cp.GetClassName(class.Index()); got != "demo/Thing" {
		t.Errorf("GetClassName() = %q", got)
	}
	if owner, n, d := cp.GetMethodref(ref.Index()); owner != "demo/Thing" || n != "go" || d != "()V" {
		t.Errorf("GetMethodref() = %q %q %q", owner, n, d)
	}
	if v, ok := cp.GetLong(7); !ok || v != -3 {
		t.Errorf("GetLong(7) = %d, %v", v, ok)
	}
	if v, ok := cp.GetFloat(9); !ok || v != 1 {
		t.Errorf("GetFloat(9) = %v, %v", v, ok)
	}

	t.Run("mismatched kinds return zero values", func(t *testing.T) {
		if got := cp.GetUtf8(class.Index()); got != "" {
			t.Errorf("GetUtf8(class) = %q", got)
		}
		if got := cp.GetClassName(name.Index()); got != "" {
			t.Errorf("GetClassName(utf8) = %q", got)
		}
		if _, ok := cp.GetInteger(0); ok {
			t.Error("GetInteger(0) should fail")
		}
		if _, _, d := cp.GetFieldref(ref.Index()); d != "" {
			t.Errorf("GetFieldref(methodref) descriptor = %q", d)
		}
		if cp.GetMethodHandle(500) != nil {
			t.Error("GetMethodHandle(500) should be nil")
		}
	})
}

func TestModifiedUtf8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		raw  []byte
	}{
		{"ascii", "abc", []byte("abc")},
		{"nul", "a\x00b", []byte{'a', 0xC0, 0x80, 'b'}},
		{"two byte", "é", []byte{0xC3, 0xA9}},
		{"supplementary", "\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUtf8(tt.in)
			if string(u.Raw) != string(tt.raw) {
				t.Errorf("Raw = %x, want %x", u.Raw, tt.raw)
			}
			if got := u.Value(); got != tt.in {
				t.Errorf("Value() = %q, want %q", got, tt.in)
			}
		})
	}
}

func TestCrossReferencing(t *testing.T) {
	name := NewUtf8("demo/Thing")
	class := &ConstantClassInfo{Name: name}

	var entry ConstantPoolEntry = class
	xr, ok := entry.(CrossReferencing)
	if !ok {
		t.Fatal("Expected Class to be CrossReferencing")
	}
	refs := xr.References()
	if len(refs) != 1 || refs[0] != name {
		t.Errorf("References() = %v", refs)
	}

	if _, ok := ConstantPoolEntry(name).(CrossReferencing); ok {
		t.Error("Utf8 should not be CrossReferencing")
	}
	if len((&ConstantClassInfo{}).References()) != 0 {
		t.Error("unresolved Class should report no references")
	}
}

func TestConstantPoolTagMethods(t *testing.T) {
	tests := []struct {
		entry    ConstantPoolEntry
		tag      ConstantTag
		loadable bool
	}{
		{NewUtf8("test"), ConstantUtf8, false},
		{&ConstantIntegerInfo{Value: 42}, ConstantInteger, true},
		{&ConstantFloatInfo{}, ConstantFloat, true},
		{&ConstantLongInfo{Value: 12345}, ConstantLong, true},
		{&ConstantDoubleInfo{}, ConstantDouble, true},
		{&ConstantClassInfo{}, ConstantClass, true},
		{&ConstantStringInfo{}, ConstantString, true},
		{&ConstantFieldrefInfo{}, ConstantFieldref, false},
		{&ConstantMethodrefInfo{}, ConstantMethodref, false},
		{&ConstantInterfaceMethodrefInfo{}, ConstantInterfaceMethodref, false},
		{&ConstantNameAndTypeInfo{}, ConstantNameAndType, false},
		{&ConstantMethodHandleInfo{ReferenceKind: RefInvokeVirtual}, ConstantMethodHandle, true},
		{&ConstantMethodTypeInfo{}, ConstantMethodType, true},
		{&ConstantDynamicInfo{}, ConstantDynamic, true},
		{&ConstantInvokeDynamicInfo{}, ConstantInvokeDynamic, false},
		{&ConstantModuleInfo{}, ConstantModule, false},
		{&ConstantPackageInfo{}, ConstantPackage, false},
	}

	for _, tt := range tests {
		if got := tt.entry.Tag(); got != tt.tag {
			t.Errorf("Tag() = %d, want %d for %T", got, tt.tag, tt.entry)
		}
		if _, ok := tt.entry.(LoadableConstant); ok != tt.loadable {
			t.Errorf("%T loadable = %v, want %v", tt.entry, ok, tt.loadable)
		}
		if tt.tag.IsLoadable() != tt.loadable {
			t.Errorf("%s.IsLoadable() = %v, want %v", tt.tag, tt.tag.IsLoadable(), tt.loadable)
		}
	}
}
