package classfile

import (
	"fmt"
	"io"
	"math"
	"os"
)

func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return ParseBytes(data)
}

func Parse(rd io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes decodes a complete class file. Structural problems are reported
// as *InvalidClassError.
func ParseBytes(data []byte) (*ClassFile, error) {
	r := newReader(data)

	magic := r.readU4()
	if r.err != nil {
		return nil, r.err
	}
	if magic != Magic {
		return nil, invalidf(0, "invalid magic number 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, r.err
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = cp

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()

	interfacesCount := r.readU2()
	cf.Interfaces = make([]uint16, 0, interfacesCount)
	for i := uint16(0); i < interfacesCount && r.err == nil; i++ {
		cf.Interfaces = append(cf.Interfaces, r.readU2())
	}
	if r.err != nil {
		return nil, r.err
	}

	fieldsCount := r.readU2()
	cf.Fields = make([]FieldInfo, 0, fieldsCount)
	for i := uint16(0); i < fieldsCount; i++ {
		field, err := readMember(r, cp)
		if err != nil {
			return nil, fmt.Errorf("failed to read field %d: %w", i, err)
		}
		cf.Fields = append(cf.Fields, FieldInfo(field))
	}

	methodsCount := r.readU2()
	cf.Methods = make([]MethodInfo, 0, methodsCount)
	for i := uint16(0); i < methodsCount; i++ {
		method, err := readMember(r, cp)
		if err != nil {
			return nil, fmt.Errorf("failed to read method %d: %w", i, err)
		}
		cf.Methods = append(cf.Methods, MethodInfo(method))
	}

	cf.Attributes, err = readAttributes(r, cp)
	if err != nil {
		return nil, fmt.Errorf("failed to read class attributes: %w", err)
	}

	if r.remaining() > 0 {
		return nil, invalidf(r.pos, "%d trailing bytes after class attributes", r.remaining())
	}
	return cf, nil
}

// member is the shared layout of field_info and method_info.
type member struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func readMember(r *reader, cp *ConstantPool) (member, error) {
	m := member{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	if r.err != nil {
		return m, r.err
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return m, err
	}
	m.Attributes = attrs
	return m, nil
}

// readAttributes reads a counted attribute table. Every failure is also
// left on r, so nested tables fail the enclosing decode.
func readAttributes(r *reader, cp *ConstantPool) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	attrs := make([]AttributeInfo, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIndex := r.readU2()
		length := r.readU4()
		if r.err != nil {
			return nil, r.err
		}
		if length > math.MaxInt32 || int(length) > r.remaining() {
			r.failf("attribute %d length %d exceeds remaining %d bytes", i, length, r.remaining())
			return nil, r.err
		}
		info := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.err
		}
		attrs = append(attrs, newAttribute(nameIndex, info, cp))
	}
	return attrs, nil
}

// pendingRefs records the raw indices of an entry until pass two binds them.
type pendingRefs struct {
	entry  ConstantPoolEntry
	offset int
	refs   [2]uint16
}

func readConstantPool(r *reader) (*ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	if count == 0 {
		return nil, invalidf(r.pos-2, "constant pool count is zero")
	}

	cp := &ConstantPool{slots: make([]ConstantPoolEntry, count)}
	var pending []pendingRefs

	for i := 1; i < int(count); {
		start := r.pos
		entry, refs, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		entry.assign(uint16(i))
		cp.slots[i] = entry
		if _, ok := entry.(CrossReferencing); ok {
			pending = append(pending, pendingRefs{entry: entry, offset: start, refs: refs})
		}
		if entry.Wide() {
			if i+1 >= int(count) {
				return nil, invalidf(start, "%s entry %d has no room for its second slot", entry.Tag(), i)
			}
			i += 2
		} else {
			i++
		}
	}

	for _, p := range pending {
		if err := bindReferences(cp, p); err != nil {
			return nil, &InvalidClassError{
				Offset: p.offset,
				Reason: fmt.Sprintf("%s entry %d", p.entry.Tag(), p.entry.Index()),
				Err:    err,
			}
		}
	}
	return cp, nil
}

func readConstantPoolEntry(r *reader) (ConstantPoolEntry, [2]uint16, error) {
	var refs [2]uint16
	start := r.pos
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, refs, r.err
	}

	var entry ConstantPoolEntry
	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		entry = &ConstantUtf8Info{Raw: r.readBytes(int(length))}
	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: int32(r.readU4())}
	case ConstantFloat:
		entry = &ConstantFloatInfo{Bits: r.readU4()}
	case ConstantLong:
		high := r.readU4()
		low := r.readU4()
		entry = &ConstantLongInfo{Value: int64(uint64(high)<<32 | uint64(low))}
	case ConstantDouble:
		high := r.readU4()
		low := r.readU4()
		entry = &ConstantDoubleInfo{Bits: uint64(high)<<32 | uint64(low)}
	case ConstantClass:
		refs[0] = r.readU2()
		entry = &ConstantClassInfo{}
	case ConstantString:
		refs[0] = r.readU2()
		entry = &ConstantStringInfo{}
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref, ConstantNameAndType:
		refs[0] = r.readU2()
		refs[1] = r.readU2()
		switch tag {
		case ConstantFieldref:
			entry = &ConstantFieldrefInfo{}
		case ConstantMethodref:
			entry = &ConstantMethodrefInfo{}
		case ConstantInterfaceMethodref:
			entry = &ConstantInterfaceMethodrefInfo{}
		default:
			entry = &ConstantNameAndTypeInfo{}
		}
	case ConstantMethodHandle:
		kind := MethodHandleKind(r.readU1())
		refs[0] = r.readU2()
		if r.err == nil && (kind < RefGetField || kind > RefInvokeInterface) {
			return nil, refs, invalidf(start, "invalid method handle kind %d", kind)
		}
		entry = &ConstantMethodHandleInfo{ReferenceKind: kind}
	case ConstantMethodType:
		refs[0] = r.readU2()
		entry = &ConstantMethodTypeInfo{}
	case ConstantDynamic:
		bsm := r.readU2()
		refs[0] = r.readU2()
		entry = &ConstantDynamicInfo{BootstrapMethodAttrIndex: bsm}
	case ConstantInvokeDynamic:
		bsm := r.readU2()
		refs[0] = r.readU2()
		entry = &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: bsm}
	case ConstantModule:
		refs[0] = r.readU2()
		entry = &ConstantModuleInfo{}
	case ConstantPackage:
		refs[0] = r.readU2()
		entry = &ConstantPackageInfo{}
	default:
		return nil, refs, invalidf(start, "unknown constant pool tag %d", uint8(tag))
	}
	if r.err != nil {
		return nil, refs, r.err
	}
	return entry, refs, nil
}

// bindReferences is pass two of pool parsing: every raw index becomes a
// pointer to an entry of the required kind.
func bindReferences(cp *ConstantPool, p pendingRefs) error {
	var err error
	switch e := p.entry.(type) {
	case *ConstantClassInfo:
		e.Name, err = resolveAs[*ConstantUtf8Info](cp, p.refs[0])
	case *ConstantStringInfo:
		e.Value, err = resolveAs[*ConstantUtf8Info](cp, p.refs[0])
	case *ConstantNameAndTypeInfo:
		if e.Name, err = resolveAs[*ConstantUtf8Info](cp, p.refs[0]); err == nil {
			e.Descriptor, err = resolveAs[*ConstantUtf8Info](cp, p.refs[1])
		}
	case *ConstantFieldrefInfo:
		if e.Class, err = resolveAs[*ConstantClassInfo](cp, p.refs[0]); err == nil {
			e.NameAndType, err = resolveAs[*ConstantNameAndTypeInfo](cp, p.refs[1])
		}
	case *ConstantMethodrefInfo:
		if e.Class, err = resolveAs[*ConstantClassInfo](cp, p.refs[0]); err == nil {
			e.NameAndType, err = resolveAs[*ConstantNameAndTypeInfo](cp, p.refs[1])
		}
	case *ConstantInterfaceMethodrefInfo:
		if e.Class, err = resolveAs[*ConstantClassInfo](cp, p.refs[0]); err == nil {
			e.NameAndType, err = resolveAs[*ConstantNameAndTypeInfo](cp, p.refs[1])
		}
	case *ConstantMethodHandleInfo:
		e.Reference, err = resolveAs[MemberRef](cp, p.refs[0])
	case *ConstantMethodTypeInfo:
		e.Descriptor, err = resolveAs[*ConstantUtf8Info](cp, p.refs[0])
	case *ConstantDynamicInfo:
		e.NameAndType, err = resolveAs[*ConstantNameAndTypeInfo](cp, p.refs[0])
	case *ConstantInvokeDynamicInfo:
		e.NameAndType, err = resolveAs[*ConstantNameAndTypeInfo](cp, p.refs[0])
	case *ConstantModuleInfo:
		e.Name, err = resolveAs[*ConstantUtf8Info](cp, p.refs[0])
	case *ConstantPackageInfo:
		e.Name, err = resolveAs[*ConstantUtf8Info](cp, p.refs[0])
	}
	return err
}

func resolveAs[T ConstantPoolEntry](cp *ConstantPool, index uint16) (T, error) {
	var zero T
	e, err := cp.Get(index)
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("reference to entry %d has wrong kind %s", index, e.Tag())
	}
	return t, nil
}
