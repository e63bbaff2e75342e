// Package format renders a parsed class file for the dump command.
package format

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"github.com/dhamidi/classguard/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *classfile.ClassFile) error
}

// DescribeEntry renders one constant pool entry without its index.
func DescribeEntry(e classfile.ConstantPoolEntry) string {
	switch v := e.(type) {
	case *classfile.ConstantUtf8Info:
		return strconv.Quote(v.Value())
	case *classfile.ConstantIntegerInfo:
		return strconv.FormatInt(int64(v.Value), 10)
	case *classfile.ConstantFloatInfo:
		return fmt.Sprintf("%g (0x%08x)", v.Value(), v.Bits)
	case *classfile.ConstantLongInfo:
		return strconv.FormatInt(v.Value, 10) + "L"
	case *classfile.ConstantDoubleInfo:
		return fmt.Sprintf("%g (0x%016x)", v.Value(), v.Bits)
	case *classfile.ConstantClassInfo:
		return ref(v.Name)
	case *classfile.ConstantStringInfo:
		return ref(v.Value)
	case *classfile.ConstantNameAndTypeInfo:
		return ref(v.Name) + ":" + ref(v.Descriptor)
	case classfile.MemberRef:
		return ref(v.Owner()) + "." + ref(v.Member())
	case *classfile.ConstantMethodHandleInfo:
		return fmt.Sprintf("kind %d %s", v.ReferenceKind, ref(v.Reference))
	case *classfile.ConstantMethodTypeInfo:
		return ref(v.Descriptor)
	case *classfile.ConstantDynamicInfo:
		return fmt.Sprintf("bsm %d %s", v.BootstrapMethodAttrIndex, ref(v.NameAndType))
	case *classfile.ConstantInvokeDynamicInfo:
		return fmt.Sprintf("bsm %d %s", v.BootstrapMethodAttrIndex, ref(v.NameAndType))
	case *classfile.ConstantModuleInfo:
		return ref(v.Name)
	case *classfile.ConstantPackageInfo:
		return ref(v.Name)
	}
	return ""
}

func ref(e classfile.ConstantPoolEntry) string {
	if e == nil || reflect.ValueOf(e).IsNil() {
		return "#?"
	}
	return "#" + strconv.Itoa(int(e.Index()))
}

// attributeState says whether an attribute was decoded, kept opaque
// because its name is unknown, or kept opaque because it did not decode.
func attributeState(a *classfile.AttributeInfo) string {
	switch {
	case a.Parsed != nil:
		return "parsed"
	case a.Malformed:
		return "malformed"
	}
	return "opaque"
}
