package classfile

type attributeDecoder func(r *reader, cp *ConstantPool) AttributeBody

// attributeDecoders is filled in init since decodeCode reaches
// IsKnownAttribute again through readAttributes.
var attributeDecoders map[string]attributeDecoder

func init() {
	attributeDecoders = map[string]attributeDecoder{
		AttrCode:                                 decodeCode,
		AttrConstantValue:                        decodeConstantValue,
		AttrExceptions:                           decodeExceptions,
		AttrInnerClasses:                         decodeInnerClasses,
		AttrEnclosingMethod:                      decodeEnclosingMethod,
		AttrSynthetic:                            decodeSynthetic,
		AttrDeprecated:                           decodeDeprecated,
		AttrSignature:                            decodeSignature,
		AttrSourceFile:                           decodeSourceFile,
		AttrSourceDebugExtension:                 decodeSourceDebugExtension,
		AttrLineNumberTable:                      decodeLineNumberTable,
		AttrLocalVariableTable:                   decodeLocalVariableTable,
		AttrLocalVariableTypeTable:               decodeLocalVariableTypeTable,
		AttrStackMapTable:                        decodeStackMapTable,
		AttrBootstrapMethods:                     decodeBootstrapMethods,
		AttrMethodParameters:                     decodeMethodParameters,
		AttrNestHost:                             decodeNestHost,
		AttrNestMembers:                          decodeNestMembers,
		AttrPermittedSubclasses:                  decodePermittedSubclasses,
		AttrRecord:                               decodeRecord,
		AttrModule:                               decodeModule,
		AttrModulePackages:                       decodeModulePackages,
		AttrModuleMainClass:                      decodeModuleMainClass,
		AttrRuntimeVisibleAnnotations:            decodeRuntimeVisibleAnnotations,
		AttrRuntimeInvisibleAnnotations:          decodeRuntimeInvisibleAnnotations,
		AttrRuntimeVisibleParameterAnnotations:   decodeRuntimeVisibleParameterAnnotations,
		AttrRuntimeInvisibleParameterAnnotations: decodeRuntimeInvisibleParameterAnnotations,
		AttrRuntimeVisibleTypeAnnotations:        decodeRuntimeVisibleTypeAnnotations,
		AttrRuntimeInvisibleTypeAnnotations:      decodeRuntimeInvisibleTypeAnnotations,
		AttrAnnotationDefault:                    decodeAnnotationDefault,
	}
}

// IsKnownAttribute reports whether name has a typed form.
func IsKnownAttribute(name string) bool {
	_, ok := attributeDecoders[name]
	return ok
}

// DecodeAttribute decodes info as the attribute called name. The whole
// payload must be consumed.
func DecodeAttribute(name string, info []byte, cp *ConstantPool) (AttributeBody, error) {
	return decodeAttribute(name, info, cp)
}

func decodeAttribute(name string, info []byte, cp *ConstantPool) (AttributeBody, error) {
	decode, ok := attributeDecoders[name]
	if !ok {
		return nil, invalidf(0, "no typed form for attribute %q", name)
	}
	r := newReader(info)
	body := decode(r, cp)
	if r.err != nil {
		return nil, r.err
	}
	if r.remaining() > 0 {
		return nil, invalidf(r.pos, "%s attribute has %d trailing bytes", name, r.remaining())
	}
	return body, nil
}

func decodeCode(r *reader, cp *ConstantPool) AttributeBody {
	code := &CodeAttribute{
		MaxStack:  r.readU2(),
		MaxLocals: r.readU2(),
	}
	codeLength := r.readU4()
	if r.err == nil && int64(codeLength) > int64(r.remaining()) {
		r.failf("code length %d exceeds attribute", codeLength)
		return code
	}
	code.Code = r.readBytes(int(codeLength))

	count := int(r.readU2())
	code.ExceptionTable = make([]ExceptionTableEntry, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		code.ExceptionTable = append(code.ExceptionTable, ExceptionTableEntry{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readU2(),
		})
	}
	if r.err != nil {
		return code
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return code
	}
	code.Attributes = attrs
	return code
}

func decodeConstantValue(r *reader, _ *ConstantPool) AttributeBody {
	return &ConstantValueAttribute{ConstantValueIndex: r.readU2()}
}

func decodeExceptions(r *reader, _ *ConstantPool) AttributeBody {
	return &ExceptionsAttribute{ExceptionIndexTable: r.readU2s(int(r.readU2()))}
}

func decodeInnerClasses(r *reader, _ *ConstantPool) AttributeBody {
	count := int(r.readU2())
	ic := &InnerClassesAttribute{Classes: make([]InnerClassEntry, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		ic.Classes = append(ic.Classes, InnerClassEntry{
			InnerClassInfoIndex:   r.readU2(),
			OuterClassInfoIndex:   r.readU2(),
			InnerNameIndex:        r.readU2(),
			InnerClassAccessFlags: AccessFlags(r.readU2()),
		})
	}
	return ic
}

func decodeEnclosingMethod(r *reader, _ *ConstantPool) AttributeBody {
	return &EnclosingMethodAttribute{
		ClassIndex:  r.readU2(),
		MethodIndex: r.readU2(),
	}
}

func decodeSynthetic(_ *reader, _ *ConstantPool) AttributeBody {
	return &SyntheticAttribute{}
}

func decodeDeprecated(_ *reader, _ *ConstantPool) AttributeBody {
	return &DeprecatedAttribute{}
}

func decodeSignature(r *reader, _ *ConstantPool) AttributeBody {
	return &SignatureAttribute{SignatureIndex: r.readU2()}
}

func decodeSourceFile(r *reader, _ *ConstantPool) AttributeBody {
	return &SourceFileAttribute{SourceFileIndex: r.readU2()}
}

func decodeSourceDebugExtension(r *reader, _ *ConstantPool) AttributeBody {
	return &SourceDebugExtensionAttribute{DebugExtension: r.readBytes(r.remaining())}
}

func decodeLineNumberTable(r *reader, _ *ConstantPool) AttributeBody {
	count := int(r.readU2())
	lnt := &LineNumberTableAttribute{LineNumberTable: make([]LineNumberEntry, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		lnt.LineNumberTable = append(lnt.LineNumberTable, LineNumberEntry{
			StartPC:    r.readU2(),
			LineNumber: r.readU2(),
		})
	}
	return lnt
}

func decodeLocalVariableTable(r *reader, _ *ConstantPool) AttributeBody {
	count := int(r.readU2())
	lvt := &LocalVariableTableAttribute{LocalVariableTable: make([]LocalVariableEntry, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		lvt.LocalVariableTable = append(lvt.LocalVariableTable, LocalVariableEntry{
			StartPC:         r.readU2(),
			Length:          r.readU2(),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
			Index:           r.readU2(),
		})
	}
	return lvt
}

func decodeLocalVariableTypeTable(r *reader, _ *ConstantPool) AttributeBody {
	count := int(r.readU2())
	lvtt := &LocalVariableTypeTableAttribute{LocalVariableTypeTable: make([]LocalVariableTypeEntry, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		lvtt.LocalVariableTypeTable = append(lvtt.LocalVariableTypeTable, LocalVariableTypeEntry{
			StartPC:        r.readU2(),
			Length:         r.readU2(),
			NameIndex:      r.readU2(),
			SignatureIndex: r.readU2(),
			Index:          r.readU2(),
		})
	}
	return lvtt
}

func decodeStackMapTable(r *reader, _ *ConstantPool) AttributeBody {
	count := int(r.readU2())
	smt := &StackMapTableAttribute{Entries: make([]StackMapFrame, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		start := r.pos
		frameType := walkFrame(r, nil)
		if r.err != nil {
			break
		}
		data := make([]byte, r.pos-start)
		copy(data, r.buf[start:r.pos])
		smt.Entries = append(smt.Entries, StackMapFrame{FrameType: frameType, Data: data})
	}
	return smt
}

// walkFrame consumes one stack_map_frame and reports each verification type
// it contains.
func walkFrame(r *reader, visit func(tag uint8, arg uint16)) uint8 {
	frameType := r.readU1()
	if r.err != nil {
		return frameType
	}
	verification := func(n int) {
		for k := 0; k < n && r.err == nil; k++ {
			tag := r.readU1()
			var arg uint16
			switch {
			case tag <= 6:
			case tag == 7 || tag == 8:
				arg = r.readU2()
			default:
				r.failf("unknown verification type tag %d", tag)
				return
			}
			if visit != nil && r.err == nil {
				visit(tag, arg)
			}
		}
	}

	switch {
	case frameType <= 63:
		// same_frame
	case frameType <= 127:
		verification(1)
	case frameType < 247:
		r.failf("reserved stack map frame type %d", frameType)
	case frameType == 247:
		r.readU2()
		verification(1)
	case frameType <= 251:
		// chop_frame and same_frame_extended
		r.readU2()
	case frameType <= 254:
		r.readU2()
		verification(int(frameType) - 251)
	default:
		r.readU2()
		verification(int(r.readU2()))
		verification(int(r.readU2()))
	}
	return frameType
}

// ObjectClassIndices returns the pool indices of every Object_variable_info
// in the frame.
func (f StackMapFrame) ObjectClassIndices() []uint16 {
	var refs []uint16
	r := newReader(f.Data)
	walkFrame(r, func(tag uint8, arg uint16) {
		if tag == 7 {
			refs = append(refs, arg)
		}
	})
	return refs
}

func decodeBootstrapMethods(r *reader, _ *ConstantPool) AttributeBody {
	count := int(r.readU2())
	bm := &BootstrapMethodsAttribute{BootstrapMethods: make([]BootstrapMethod, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		ref := r.readU2()
		args := r.readU2s(int(r.readU2()))
		bm.BootstrapMethods = append(bm.BootstrapMethods, BootstrapMethod{
			BootstrapMethodRef: ref,
			BootstrapArguments: args,
		})
	}
	return bm
}

func decodeMethodParameters(r *reader, _ *ConstantPool) AttributeBody {
	count := int(r.readU1())
	mp := &MethodParametersAttribute{Parameters: make([]MethodParameter, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		mp.Parameters = append(mp.Parameters, MethodParameter{
			NameIndex:   r.readU2(),
			AccessFlags: AccessFlags(r.readU2()),
		})
	}
	return mp
}

func decodeNestHost(r *reader, _ *ConstantPool) AttributeBody {
	return &NestHostAttribute{HostClassIndex: r.readU2()}
}

func decodeNestMembers(r *reader, _ *ConstantPool) AttributeBody {
	return &NestMembersAttribute{Classes: r.readU2s(int(r.readU2()))}
}

func decodePermittedSubclasses(r *reader, _ *ConstantPool) AttributeBody {
	return &PermittedSubclassesAttribute{Classes: r.readU2s(int(r.readU2()))}
}

func decodeRecord(r *reader, cp *ConstantPool) AttributeBody {
	count := int(r.readU2())
	rec := &RecordAttribute{Components: make([]RecordComponentInfo, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		component := RecordComponentInfo{
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
		if r.err != nil {
			break
		}
		attrs, err := readAttributes(r, cp)
		if err != nil {
			break
		}
		component.Attributes = attrs
		rec.Components = append(rec.Components, component)
	}
	return rec
}

func decodeModule(r *reader, _ *ConstantPool) AttributeBody {
	m := &ModuleAttribute{
		ModuleNameIndex:    r.readU2(),
		ModuleFlags:        r.readU2(),
		ModuleVersionIndex: r.readU2(),
	}

	count := int(r.readU2())
	m.Requires = make([]ModuleRequires, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		m.Requires = append(m.Requires, ModuleRequires{
			RequiresIndex:        r.readU2(),
			RequiresFlags:        r.readU2(),
			RequiresVersionIndex: r.readU2(),
		})
	}

	count = int(r.readU2())
	m.Exports = make([]ModuleExports, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		export := ModuleExports{
			ExportsIndex: r.readU2(),
			ExportsFlags: r.readU2(),
		}
		export.ExportsToIndex = r.readU2s(int(r.readU2()))
		m.Exports = append(m.Exports, export)
	}

	count = int(r.readU2())
	m.Opens = make([]ModuleOpens, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		opens := ModuleOpens{
			OpensIndex: r.readU2(),
			OpensFlags: r.readU2(),
		}
		opens.OpensToIndex = r.readU2s(int(r.readU2()))
		m.Opens = append(m.Opens, opens)
	}

	m.Uses = r.readU2s(int(r.readU2()))

	count = int(r.readU2())
	m.Provides = make([]ModuleProvides, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		provides := ModuleProvides{ProvidesIndex: r.readU2()}
		provides.ProvidesWithIndex = r.readU2s(int(r.readU2()))
		m.Provides = append(m.Provides, provides)
	}
	return m
}

func decodeModulePackages(r *reader, _ *ConstantPool) AttributeBody {
	return &ModulePackagesAttribute{PackageIndex: r.readU2s(int(r.readU2()))}
}

func decodeModuleMainClass(r *reader, _ *ConstantPool) AttributeBody {
	return &ModuleMainClassAttribute{MainClassIndex: r.readU2()}
}

func decodeRuntimeVisibleAnnotations(r *reader, _ *ConstantPool) AttributeBody {
	return &RuntimeVisibleAnnotationsAttribute{Annotations: readAnnotations(r)}
}

func decodeRuntimeInvisibleAnnotations(r *reader, _ *ConstantPool) AttributeBody {
	return &RuntimeInvisibleAnnotationsAttribute{Annotations: readAnnotations(r)}
}

func decodeRuntimeVisibleParameterAnnotations(r *reader, _ *ConstantPool) AttributeBody {
	return &RuntimeVisibleParameterAnnotationsAttribute{ParameterAnnotations: readParameterAnnotations(r)}
}

func decodeRuntimeInvisibleParameterAnnotations(r *reader, _ *ConstantPool) AttributeBody {
	return &RuntimeInvisibleParameterAnnotationsAttribute{ParameterAnnotations: readParameterAnnotations(r)}
}

func decodeRuntimeVisibleTypeAnnotations(r *reader, _ *ConstantPool) AttributeBody {
	return &RuntimeVisibleTypeAnnotationsAttribute{Annotations: readTypeAnnotations(r)}
}

func decodeRuntimeInvisibleTypeAnnotations(r *reader, _ *ConstantPool) AttributeBody {
	return &RuntimeInvisibleTypeAnnotationsAttribute{Annotations: readTypeAnnotations(r)}
}

func decodeAnnotationDefault(r *reader, _ *ConstantPool) AttributeBody {
	return &AnnotationDefaultAttribute{DefaultValue: readElementValue(r)}
}
