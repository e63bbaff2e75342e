package strip

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dhamidi/classguard/bytecode"
	"github.com/dhamidi/classguard/classfile"
)

// violation is the reason an attribute was judged illegal. It is recorded
// in the Report and never returned to callers.
type violation struct {
	reason string
}

func (v *violation) Error() string { return v.reason }

func violationf(format string, args ...any) error {
	return &violation{reason: fmt.Sprintf(format, args...)}
}

var constantValueTags = []classfile.ConstantTag{
	classfile.ConstantInteger, classfile.ConstantFloat, classfile.ConstantLong,
	classfile.ConstantDouble, classfile.ConstantClass, classfile.ConstantString,
}

// check decides whether attr may stay on a holder of context ctx. method is
// the enclosing method for method and Code holders.
func (c *checker) check(attr *classfile.AttributeInfo, ctx classfile.AttributeContext, method *classfile.MethodInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = violationf("check failed: %v", r)
		}
	}()

	if err := c.tag(attr.NameIndex, "attribute name", classfile.ConstantUtf8); err != nil {
		return err
	}
	name := attr.Name(c.cp)
	if !classfile.IsKnownAttribute(name) {
		return nil
	}
	if !Permitted(name, ctx) {
		return violationf("not permitted on a %s", ctx)
	}
	if attr.Parsed == nil {
		return violationf("payload does not decode")
	}
	return c.checkBody(attr.Parsed, method)
}

func (c *checker) checkBody(body classfile.AttributeBody, method *classfile.MethodInfo) error {
	switch a := body.(type) {
	case *classfile.CodeAttribute:
		return c.checkCode(a, method)
	case *classfile.ConstantValueAttribute:
		return c.tag(a.ConstantValueIndex, "constant value", constantValueTags...)
	case *classfile.ExceptionsAttribute:
		return c.each(a.ExceptionIndexTable, "exception", classfile.ConstantClass)
	case *classfile.InnerClassesAttribute:
		for _, e := range a.Classes {
			if err := c.tag(e.InnerClassInfoIndex, "inner class", classfile.ConstantClass); err != nil {
				return err
			}
			if err := c.optional(e.OuterClassInfoIndex, "outer class", classfile.ConstantClass); err != nil {
				return err
			}
			if err := c.optional(e.InnerNameIndex, "inner name", classfile.ConstantUtf8); err != nil {
				return err
			}
		}
	case *classfile.EnclosingMethodAttribute:
		if err := c.tag(a.ClassIndex, "enclosing class", classfile.ConstantClass); err != nil {
			return err
		}
		return c.optional(a.MethodIndex, "enclosing method", classfile.ConstantNameAndType)
	case *classfile.SignatureAttribute:
		return c.tag(a.SignatureIndex, "signature", classfile.ConstantUtf8)
	case *classfile.SourceFileAttribute:
		return c.tag(a.SourceFileIndex, "source file", classfile.ConstantUtf8)
	case *classfile.LocalVariableTableAttribute:
		for _, e := range a.LocalVariableTable {
			if err := c.each([]uint16{e.NameIndex, e.DescriptorIndex}, "local variable", classfile.ConstantUtf8); err != nil {
				return err
			}
		}
	case *classfile.LocalVariableTypeTableAttribute:
		for _, e := range a.LocalVariableTypeTable {
			if err := c.each([]uint16{e.NameIndex, e.SignatureIndex}, "local variable type", classfile.ConstantUtf8); err != nil {
				return err
			}
		}
	case *classfile.StackMapTableAttribute:
		return c.each(a.PoolReferences(), "stack map object", classfile.ConstantClass)
	case *classfile.BootstrapMethodsAttribute:
		return c.checkBootstrapMethods(a)
	case *classfile.MethodParametersAttribute:
		for _, p := range a.Parameters {
			if err := c.optional(p.NameIndex, "parameter name", classfile.ConstantUtf8); err != nil {
				return err
			}
		}
	case *classfile.NestHostAttribute:
		return c.tag(a.HostClassIndex, "nest host", classfile.ConstantClass)
	case *classfile.NestMembersAttribute:
		return c.each(a.Classes, "nest member", classfile.ConstantClass)
	case *classfile.PermittedSubclassesAttribute:
		return c.each(a.Classes, "permitted subclass", classfile.ConstantClass)
	case *classfile.RecordAttribute:
		for _, rc := range a.Components {
			if err := c.tag(rc.NameIndex, "record component name", classfile.ConstantUtf8); err != nil {
				return err
			}
			if err := c.fieldDescriptor(rc.DescriptorIndex, "record component descriptor"); err != nil {
				return err
			}
		}
	case *classfile.ModuleAttribute:
		return c.checkModule(a)
	case *classfile.ModulePackagesAttribute:
		return c.each(a.PackageIndex, "package", classfile.ConstantPackage)
	case *classfile.ModuleMainClassAttribute:
		return c.tag(a.MainClassIndex, "main class", classfile.ConstantClass)
	case *classfile.RuntimeVisibleAnnotationsAttribute:
		return c.annotations(a.Annotations)
	case *classfile.RuntimeInvisibleAnnotationsAttribute:
		return c.annotations(a.Annotations)
	case *classfile.RuntimeVisibleParameterAnnotationsAttribute:
		return c.parameterAnnotations(a.ParameterAnnotations, method)
	case *classfile.RuntimeInvisibleParameterAnnotationsAttribute:
		return c.parameterAnnotations(a.ParameterAnnotations, method)
	case *classfile.RuntimeVisibleTypeAnnotationsAttribute:
		return c.typeAnnotations(a.Annotations)
	case *classfile.RuntimeInvisibleTypeAnnotationsAttribute:
		return c.typeAnnotations(a.Annotations)
	case *classfile.AnnotationDefaultAttribute:
		return c.elementValue(a.DefaultValue)
	}
	return nil
}

func (c *checker) tag(index uint16, what string, want ...classfile.ConstantTag) error {
	got, ok := c.cp.TagAt(index)
	if !ok {
		return violationf("%s index %d is outside the pool", what, index)
	}
	if !slices.Contains(want, got) {
		return violationf("%s index %d is %s, want %s", what, index, got, tagNames(want))
	}
	return nil
}

// optional is tag with 0 accepted as "absent".
func (c *checker) optional(index uint16, what string, want ...classfile.ConstantTag) error {
	if index == 0 {
		return nil
	}
	return c.tag(index, what, want...)
}

func (c *checker) each(indices []uint16, what string, want ...classfile.ConstantTag) error {
	for _, index := range indices {
		if err := c.tag(index, what, want...); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) fieldDescriptor(index uint16, what string) error {
	if err := c.tag(index, what, classfile.ConstantUtf8); err != nil {
		return err
	}
	desc := c.cp.GetUtf8(index)
	if classfile.ParseDescriptor(desc).Kind != classfile.DescriptorField {
		return violationf("%s %q is not a field descriptor", what, desc)
	}
	return nil
}

func tagNames(tags []classfile.ConstantTag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}

func (c *checker) checkCode(code *classfile.CodeAttribute, method *classfile.MethodInfo) error {
	if method != nil && (method.AccessFlags.IsAbstract() || method.AccessFlags.IsNative()) {
		return violationf("code on an abstract or native method")
	}
	insns, err := c.instructions(code)
	if err != nil {
		return violationf("instructions do not decode: %v", err)
	}
	for _, insn := range insns {
		if k, ok := insn.(*bytecode.Constant); ok {
			if err := c.tag(k.Index, k.Op.String()+" operand", operandTags(k.Op)...); err != nil {
				return err
			}
		}
	}
	for _, e := range code.ExceptionTable {
		if e.CatchType == 0 {
			continue
		}
		if err := c.tag(e.CatchType, "catch type", classfile.ConstantClass); err != nil {
			return err
		}
		if name := c.cp.GetClassName(e.CatchType); !classfile.IsValidBinaryName(name) {
			return violationf("catch type %q is not a class name", name)
		}
	}
	return nil
}

// operandTags lists the pool tags an instruction's operand may name.
func operandTags(op bytecode.Opcode) []classfile.ConstantTag {
	switch op {
	case bytecode.OpLdc, bytecode.OpLdcW:
		return []classfile.ConstantTag{
			classfile.ConstantInteger, classfile.ConstantFloat, classfile.ConstantClass,
			classfile.ConstantString, classfile.ConstantMethodHandle, classfile.ConstantMethodType,
			classfile.ConstantDynamic,
		}
	case bytecode.OpLdc2W:
		return []classfile.ConstantTag{classfile.ConstantLong, classfile.ConstantDouble, classfile.ConstantDynamic}
	case bytecode.OpGetstatic, bytecode.OpPutstatic, bytecode.OpGetfield, bytecode.OpPutfield:
		return []classfile.ConstantTag{classfile.ConstantFieldref}
	case bytecode.OpInvokevirtual:
		return []classfile.ConstantTag{classfile.ConstantMethodref}
	case bytecode.OpInvokespecial, bytecode.OpInvokestatic:
		return []classfile.ConstantTag{classfile.ConstantMethodref, classfile.ConstantInterfaceMethodref}
	case bytecode.OpInvokeinterface:
		return []classfile.ConstantTag{classfile.ConstantInterfaceMethodref}
	case bytecode.OpInvokedynamic:
		return []classfile.ConstantTag{classfile.ConstantInvokeDynamic}
	}
	// new, anewarray, checkcast, instanceof, multianewarray
	return []classfile.ConstantTag{classfile.ConstantClass}
}

func (c *checker) checkBootstrapMethods(a *classfile.BootstrapMethodsAttribute) error {
	for i, m := range a.BootstrapMethods {
		what := fmt.Sprintf("bootstrap method %d", i)
		if err := c.tag(m.BootstrapMethodRef, what, classfile.ConstantMethodHandle); err != nil {
			return err
		}
		for _, arg := range m.BootstrapArguments {
			got, ok := c.cp.TagAt(arg)
			if !ok {
				return violationf("%s argument %d is outside the pool", what, arg)
			}
			if !got.IsLoadable() {
				return violationf("%s argument %d is %s, which is not loadable", what, arg, got)
			}
		}
	}
	return nil
}

func (c *checker) checkModule(a *classfile.ModuleAttribute) error {
	if err := c.tag(a.ModuleNameIndex, "module name", classfile.ConstantModule); err != nil {
		return err
	}
	if err := c.optional(a.ModuleVersionIndex, "module version", classfile.ConstantUtf8); err != nil {
		return err
	}
	for _, r := range a.Requires {
		if err := c.tag(r.RequiresIndex, "requires", classfile.ConstantModule); err != nil {
			return err
		}
		if err := c.optional(r.RequiresVersionIndex, "requires version", classfile.ConstantUtf8); err != nil {
			return err
		}
	}
	for _, e := range a.Exports {
		if err := c.tag(e.ExportsIndex, "exports", classfile.ConstantPackage); err != nil {
			return err
		}
		if err := c.each(e.ExportsToIndex, "exports to", classfile.ConstantModule); err != nil {
			return err
		}
	}
	for _, o := range a.Opens {
		if err := c.tag(o.OpensIndex, "opens", classfile.ConstantPackage); err != nil {
			return err
		}
		if err := c.each(o.OpensToIndex, "opens to", classfile.ConstantModule); err != nil {
			return err
		}
	}
	if err := c.each(a.Uses, "uses", classfile.ConstantClass); err != nil {
		return err
	}
	for _, p := range a.Provides {
		if err := c.tag(p.ProvidesIndex, "provides", classfile.ConstantClass); err != nil {
			return err
		}
		if err := c.each(p.ProvidesWithIndex, "provides with", classfile.ConstantClass); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) annotations(anns []classfile.Annotation) error {
	for _, ann := range anns {
		if err := c.annotation(ann.TypeIndex, ann.ElementValuePairs); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) annotation(typeIndex uint16, pairs []classfile.ElementValuePair) error {
	if err := c.fieldDescriptor(typeIndex, "annotation type"); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := c.tag(p.ElementNameIndex, "element name", classfile.ConstantUtf8); err != nil {
			return err
		}
		if err := c.elementValue(p.Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) parameterAnnotations(params [][]classfile.Annotation, method *classfile.MethodInfo) error {
	if method == nil {
		return violationf("parameter annotations outside a method")
	}
	desc := method.Descriptor(c.cp)
	if n := classfile.ParseDescriptor(desc).ParameterCount(); len(params) > n {
		return violationf("%d parameter annotation lists for descriptor %q", len(params), desc)
	}
	for _, anns := range params {
		if err := c.annotations(anns); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) typeAnnotations(anns []classfile.TypeAnnotation) error {
	for _, ann := range anns {
		if err := c.annotation(ann.TypeIndex, ann.ElementValuePairs); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) elementValue(ev classfile.ElementValue) error {
	switch ev.Tag {
	case 'e':
		v, ok := ev.Value.(classfile.EnumConstValue)
		if !ok {
			return violationf("enum element without a value")
		}
		if err := c.fieldDescriptor(v.TypeNameIndex, "enum type"); err != nil {
			return err
		}
		return c.tag(v.ConstNameIndex, "enum constant", classfile.ConstantUtf8)
	case '@':
		v, ok := ev.Value.(classfile.Annotation)
		if !ok {
			return violationf("nested annotation without a value")
		}
		return c.annotation(v.TypeIndex, v.ElementValuePairs)
	case '[':
		v, ok := ev.Value.(classfile.ArrayValue)
		if !ok {
			return violationf("array element without values")
		}
		for _, elem := range v.Values {
			if err := c.elementValue(elem); err != nil {
				return err
			}
		}
		return nil
	case 'c':
		index, _ := ev.Value.(uint16)
		if err := c.tag(index, "class element", classfile.ConstantUtf8); err != nil {
			return err
		}
		if desc := c.cp.GetUtf8(index); desc != "V" && classfile.ParseDescriptor(desc).Kind != classfile.DescriptorField {
			return violationf("class element %q is not a return descriptor", desc)
		}
		return nil
	}
	want, ok := classfile.ConstantTagFor(ev.Tag)
	if !ok {
		return violationf("element value tag %q", ev.Tag)
	}
	index, _ := ev.Value.(uint16)
	return c.tag(index, fmt.Sprintf("element value %q", ev.Tag), want)
}
