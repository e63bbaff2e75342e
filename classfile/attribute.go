package classfile

import "bytes"

// AttributeBody is the typed form of a known attribute. PoolReferences
// lists every constant pool index the body stores, zeros included.
type AttributeBody interface {
	PoolReferences() []uint16
	encode(w *writer) error
}

// AttributeInfo is one attribute. Parsed is nil for attributes whose name is
// unknown and for known attributes whose payload does not decode; those are
// written back from Info unchanged. When Parsed is set it is the source of
// truth and Info is only the payload as originally read.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    AttributeBody

	// Malformed is set when the name is a known attribute but the payload
	// could not be decoded into its typed form.
	Malformed bool
}

func (a *AttributeInfo) Name(cp *ConstantPool) string {
	return cp.GetUtf8(a.NameIndex)
}

// Payload returns the bytes that will be written for this attribute.
func (a *AttributeInfo) Payload() ([]byte, error) {
	if a.Parsed == nil {
		return a.Info, nil
	}
	var w writer
	if err := a.Parsed.encode(&w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Holder is a structure that carries attributes.
type Holder interface {
	Context() AttributeContext
	GetAttributes() []AttributeInfo
	SetAttributes(attrs []AttributeInfo)
}

func newAttribute(nameIndex uint16, info []byte, cp *ConstantPool) AttributeInfo {
	attr := AttributeInfo{NameIndex: nameIndex, Info: info}
	name := cp.GetUtf8(nameIndex)
	if !IsKnownAttribute(name) {
		return attr
	}
	body, err := decodeAttribute(name, info, cp)
	if err != nil {
		attr.Malformed = true
		return attr
	}
	// A typed form is only kept when it reproduces the payload exactly.
	var w writer
	if err := body.encode(&w); err != nil || !bytes.Equal(w.Bytes(), info) {
		attr.Malformed = true
		return attr
	}
	attr.Parsed = body
	return attr
}

func findAttribute(attrs []AttributeInfo, cp *ConstantPool, name string) *AttributeInfo {
	for i := range attrs {
		if cp.GetUtf8(attrs[i].NameIndex) == name {
			return &attrs[i]
		}
	}
	return nil
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

func (c *CodeAttribute) Context() AttributeContext           { return ContextCode }
func (c *CodeAttribute) GetAttributes() []AttributeInfo      { return c.Attributes }
func (c *CodeAttribute) SetAttributes(attrs []AttributeInfo) { c.Attributes = attrs }

func (c *CodeAttribute) GetAttribute(cp *ConstantPool, name string) *AttributeInfo {
	return findAttribute(c.Attributes, cp, name)
}

func (c *CodeAttribute) PoolReferences() []uint16 {
	refs := make([]uint16, 0, len(c.ExceptionTable))
	for _, e := range c.ExceptionTable {
		refs = append(refs, e.CatchType)
	}
	return refs
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

func (a *LineNumberTableAttribute) PoolReferences() []uint16 { return nil }

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

func (a *LocalVariableTableAttribute) PoolReferences() []uint16 {
	refs := make([]uint16, 0, 2*len(a.LocalVariableTable))
	for _, e := range a.LocalVariableTable {
		refs = append(refs, e.NameIndex, e.DescriptorIndex)
	}
	return refs
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

func (a *SourceFileAttribute) PoolReferences() []uint16 { return []uint16{a.SourceFileIndex} }

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

func (a *ConstantValueAttribute) PoolReferences() []uint16 { return []uint16{a.ConstantValueIndex} }

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

func (a *ExceptionsAttribute) PoolReferences() []uint16 { return a.ExceptionIndexTable }

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

func (a *InnerClassesAttribute) PoolReferences() []uint16 {
	refs := make([]uint16, 0, 3*len(a.Classes))
	for _, c := range a.Classes {
		refs = append(refs, c.InnerClassInfoIndex, c.OuterClassInfoIndex, c.InnerNameIndex)
	}
	return refs
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

func (a *SignatureAttribute) PoolReferences() []uint16 { return []uint16{a.SignatureIndex} }

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

func (a *BootstrapMethodsAttribute) PoolReferences() []uint16 {
	var refs []uint16
	for _, m := range a.BootstrapMethods {
		refs = append(refs, m.BootstrapMethodRef)
		refs = append(refs, m.BootstrapArguments...)
	}
	return refs
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

func (a *EnclosingMethodAttribute) PoolReferences() []uint16 {
	return []uint16{a.ClassIndex, a.MethodIndex}
}

type SyntheticAttribute struct{}

func (a *SyntheticAttribute) PoolReferences() []uint16 { return nil }

type DeprecatedAttribute struct{}

func (a *DeprecatedAttribute) PoolReferences() []uint16 { return nil }

// SourceDebugExtensionAttribute keeps the raw bytes; they are modified UTF-8
// that need not be valid.
type SourceDebugExtensionAttribute struct {
	DebugExtension []byte
}

func (a *SourceDebugExtensionAttribute) PoolReferences() []uint16 { return nil }

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableTypeEntry
}

func (a *LocalVariableTypeTableAttribute) PoolReferences() []uint16 {
	refs := make([]uint16, 0, 2*len(a.LocalVariableTypeTable))
	for _, e := range a.LocalVariableTypeTable {
		refs = append(refs, e.NameIndex, e.SignatureIndex)
	}
	return refs
}

type LocalVariableTypeEntry struct {
	StartPC        uint16
	Length         uint16
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

func (a *MethodParametersAttribute) PoolReferences() []uint16 {
	refs := make([]uint16, 0, len(a.Parameters))
	for _, p := range a.Parameters {
		refs = append(refs, p.NameIndex)
	}
	return refs
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

type NestHostAttribute struct {
	HostClassIndex uint16
}

func (a *NestHostAttribute) PoolReferences() []uint16 { return []uint16{a.HostClassIndex} }

type NestMembersAttribute struct {
	Classes []uint16
}

func (a *NestMembersAttribute) PoolReferences() []uint16 { return a.Classes }

type RecordAttribute struct {
	Components []RecordComponentInfo
}

func (a *RecordAttribute) PoolReferences() []uint16 {
	refs := make([]uint16, 0, 2*len(a.Components))
	for _, c := range a.Components {
		refs = append(refs, c.NameIndex, c.DescriptorIndex)
	}
	return refs
}

type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (r *RecordComponentInfo) Context() AttributeContext           { return ContextRecordComponent }
func (r *RecordComponentInfo) GetAttributes() []AttributeInfo      { return r.Attributes }
func (r *RecordComponentInfo) SetAttributes(attrs []AttributeInfo) { r.Attributes = attrs }

type PermittedSubclassesAttribute struct {
	Classes []uint16
}

func (a *PermittedSubclassesAttribute) PoolReferences() []uint16 { return a.Classes }

type StackMapTableAttribute struct {
	Entries []StackMapFrame
}

func (a *StackMapTableAttribute) PoolReferences() []uint16 {
	var refs []uint16
	for _, f := range a.Entries {
		refs = append(refs, f.ObjectClassIndices()...)
	}
	return refs
}

// StackMapFrame keeps a frame's encoded bytes, frame type included.
type StackMapFrame struct {
	FrameType uint8
	Data      []byte
}

type RuntimeVisibleAnnotationsAttribute struct {
	Annotations []Annotation
}

func (a *RuntimeVisibleAnnotationsAttribute) PoolReferences() []uint16 {
	return annotationRefs(a.Annotations)
}

type RuntimeInvisibleAnnotationsAttribute struct {
	Annotations []Annotation
}

func (a *RuntimeInvisibleAnnotationsAttribute) PoolReferences() []uint16 {
	return annotationRefs(a.Annotations)
}

type RuntimeVisibleParameterAnnotationsAttribute struct {
	ParameterAnnotations [][]Annotation
}

func (a *RuntimeVisibleParameterAnnotationsAttribute) PoolReferences() []uint16 {
	var refs []uint16
	for _, anns := range a.ParameterAnnotations {
		refs = append(refs, annotationRefs(anns)...)
	}
	return refs
}

type RuntimeInvisibleParameterAnnotationsAttribute struct {
	ParameterAnnotations [][]Annotation
}

func (a *RuntimeInvisibleParameterAnnotationsAttribute) PoolReferences() []uint16 {
	var refs []uint16
	for _, anns := range a.ParameterAnnotations {
		refs = append(refs, annotationRefs(anns)...)
	}
	return refs
}

type RuntimeVisibleTypeAnnotationsAttribute struct {
	Annotations []TypeAnnotation
}

func (a *RuntimeVisibleTypeAnnotationsAttribute) PoolReferences() []uint16 {
	return typeAnnotationRefs(a.Annotations)
}

type RuntimeInvisibleTypeAnnotationsAttribute struct {
	Annotations []TypeAnnotation
}

func (a *RuntimeInvisibleTypeAnnotationsAttribute) PoolReferences() []uint16 {
	return typeAnnotationRefs(a.Annotations)
}

type AnnotationDefaultAttribute struct {
	DefaultValue ElementValue
}

func (a *AnnotationDefaultAttribute) PoolReferences() []uint16 {
	return a.DefaultValue.PoolReferences()
}

type ModuleAttribute struct {
	ModuleNameIndex    uint16
	ModuleFlags        uint16
	ModuleVersionIndex uint16
	Requires           []ModuleRequires
	Exports            []ModuleExports
	Opens              []ModuleOpens
	Uses               []uint16
	Provides           []ModuleProvides
}

func (a *ModuleAttribute) PoolReferences() []uint16 {
	refs := []uint16{a.ModuleNameIndex, a.ModuleVersionIndex}
	for _, r := range a.Requires {
		refs = append(refs, r.RequiresIndex, r.RequiresVersionIndex)
	}
	for _, e := range a.Exports {
		refs = append(refs, e.ExportsIndex)
		refs = append(refs, e.ExportsToIndex...)
	}
	for _, o := range a.Opens {
		refs = append(refs, o.OpensIndex)
		refs = append(refs, o.OpensToIndex...)
	}
	refs = append(refs, a.Uses...)
	for _, p := range a.Provides {
		refs = append(refs, p.ProvidesIndex)
		refs = append(refs, p.ProvidesWithIndex...)
	}
	return refs
}

type ModuleRequires struct {
	RequiresIndex        uint16
	RequiresFlags        uint16
	RequiresVersionIndex uint16
}

type ModuleExports struct {
	ExportsIndex   uint16
	ExportsFlags   uint16
	ExportsToIndex []uint16
}

type ModuleOpens struct {
	OpensIndex   uint16
	OpensFlags   uint16
	OpensToIndex []uint16
}

type ModuleProvides struct {
	ProvidesIndex     uint16
	ProvidesWithIndex []uint16
}

type ModulePackagesAttribute struct {
	PackageIndex []uint16
}

func (a *ModulePackagesAttribute) PoolReferences() []uint16 { return a.PackageIndex }

type ModuleMainClassAttribute struct {
	MainClassIndex uint16
}

func (a *ModuleMainClassAttribute) PoolReferences() []uint16 { return []uint16{a.MainClassIndex} }

func as[T AttributeBody](a *AttributeInfo) T {
	t, _ := a.Parsed.(T)
	return t
}

func (a *AttributeInfo) AsCode() *CodeAttribute { return as[*CodeAttribute](a) }
func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	return as[*LineNumberTableAttribute](a)
}
func (a *AttributeInfo) AsLocalVariableTable() *LocalVariableTableAttribute {
	return as[*LocalVariableTableAttribute](a)
}
func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute { return as[*SourceFileAttribute](a) }
func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	return as[*ConstantValueAttribute](a)
}
func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute { return as[*ExceptionsAttribute](a) }
func (a *AttributeInfo) AsInnerClasses() *InnerClassesAttribute {
	return as[*InnerClassesAttribute](a)
}
func (a *AttributeInfo) AsSignature() *SignatureAttribute { return as[*SignatureAttribute](a) }
func (a *AttributeInfo) AsBootstrapMethods() *BootstrapMethodsAttribute {
	return as[*BootstrapMethodsAttribute](a)
}
func (a *AttributeInfo) AsEnclosingMethod() *EnclosingMethodAttribute {
	return as[*EnclosingMethodAttribute](a)
}
func (a *AttributeInfo) AsSynthetic() *SyntheticAttribute   { return as[*SyntheticAttribute](a) }
func (a *AttributeInfo) AsDeprecated() *DeprecatedAttribute { return as[*DeprecatedAttribute](a) }
func (a *AttributeInfo) AsSourceDebugExtension() *SourceDebugExtensionAttribute {
	return as[*SourceDebugExtensionAttribute](a)
}
func (a *AttributeInfo) AsLocalVariableTypeTable() *LocalVariableTypeTableAttribute {
	return as[*LocalVariableTypeTableAttribute](a)
}
func (a *AttributeInfo) AsMethodParameters() *MethodParametersAttribute {
	return as[*MethodParametersAttribute](a)
}
func (a *AttributeInfo) AsNestHost() *NestHostAttribute       { return as[*NestHostAttribute](a) }
func (a *AttributeInfo) AsNestMembers() *NestMembersAttribute { return as[*NestMembersAttribute](a) }
func (a *AttributeInfo) AsRecord() *RecordAttribute           { return as[*RecordAttribute](a) }
func (a *AttributeInfo) AsPermittedSubclasses() *PermittedSubclassesAttribute {
	return as[*PermittedSubclassesAttribute](a)
}
func (a *AttributeInfo) AsStackMapTable() *StackMapTableAttribute {
	return as[*StackMapTableAttribute](a)
}
func (a *AttributeInfo) AsRuntimeVisibleAnnotations() *RuntimeVisibleAnnotationsAttribute {
	return as[*RuntimeVisibleAnnotationsAttribute](a)
}
func (a *AttributeInfo) AsRuntimeInvisibleAnnotations() *RuntimeInvisibleAnnotationsAttribute {
	return as[*RuntimeInvisibleAnnotationsAttribute](a)
}
func (a *AttributeInfo) AsRuntimeVisibleParameterAnnotations() *RuntimeVisibleParameterAnnotationsAttribute {
	return as[*RuntimeVisibleParameterAnnotationsAttribute](a)
}
func (a *AttributeInfo) AsRuntimeInvisibleParameterAnnotations() *RuntimeInvisibleParameterAnnotationsAttribute {
	return as[*RuntimeInvisibleParameterAnnotationsAttribute](a)
}
func (a *AttributeInfo) AsRuntimeVisibleTypeAnnotations() *RuntimeVisibleTypeAnnotationsAttribute {
	return as[*RuntimeVisibleTypeAnnotationsAttribute](a)
}
func (a *AttributeInfo) AsRuntimeInvisibleTypeAnnotations() *RuntimeInvisibleTypeAnnotationsAttribute {
	return as[*RuntimeInvisibleTypeAnnotationsAttribute](a)
}
func (a *AttributeInfo) AsAnnotationDefault() *AnnotationDefaultAttribute {
	return as[*AnnotationDefaultAttribute](a)
}
func (a *AttributeInfo) AsModule() *ModuleAttribute { return as[*ModuleAttribute](a) }
func (a *AttributeInfo) AsModulePackages() *ModulePackagesAttribute {
	return as[*ModulePackagesAttribute](a)
}
func (a *AttributeInfo) AsModuleMainClass() *ModuleMainClassAttribute {
	return as[*ModuleMainClassAttribute](a)
}
