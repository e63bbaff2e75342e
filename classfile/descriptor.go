package classfile

import "strings"

// FieldType is one field type of a descriptor. BaseType is the Java
// keyword for primitives; ClassName is the internal name otherwise.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(strings.ReplaceAll(ft.ClassName, "/", "."))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func parseFieldType(desc string, start int) (*FieldType, int) {
	if start >= len(desc) {
		return nil, 0
	}

	ft := &FieldType{}
	i := start

	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}

	if i >= len(desc) {
		return nil, 0
	}

	switch desc[i] {
	case 'B':
		ft.BaseType = "byte"
		return ft, i - start + 1
	case 'C':
		ft.BaseType = "char"
		return ft, i - start + 1
	case 'D':
		ft.BaseType = "double"
		return ft, i - start + 1
	case 'F':
		ft.BaseType = "float"
		return ft, i - start + 1
	case 'I':
		ft.BaseType = "int"
		return ft, i - start + 1
	case 'J':
		ft.BaseType = "long"
		return ft, i - start + 1
	case 'S':
		ft.BaseType = "short"
		return ft, i - start + 1
	case 'Z':
		ft.BaseType = "boolean"
		return ft, i - start + 1
	case 'L':
		semicolon := strings.IndexByte(desc[i:], ';')
		if semicolon == -1 {
			return nil, 0
		}
		ft.ClassName = desc[i+1 : i+semicolon]
		return ft, i - start + semicolon + 1
	default:
		return nil, 0
	}
}

// DescriptorKind classifies a descriptor string.
type DescriptorKind int

const (
	DescriptorIllegal DescriptorKind = iota
	DescriptorField
	DescriptorMethod
)

func (k DescriptorKind) String() string {
	switch k {
	case DescriptorField:
		return "field"
	case DescriptorMethod:
		return "method"
	}
	return "illegal"
}

// Descriptor is the strict reading of a field or method descriptor.
type Descriptor struct {
	Kind       DescriptorKind
	Parameters []FieldType
	// Return is nil for void methods and for field descriptors.
	Return *FieldType
	// Field is set for field descriptors.
	Field *FieldType
}

// ParameterCount is the number of declared parameters, or -1 when the
// descriptor is not a method descriptor.
func (d Descriptor) ParameterCount() int {
	if d.Kind != DescriptorMethod {
		return -1
	}
	return len(d.Parameters)
}

// String renders the descriptor in source form: "int[]" for a field,
// "(int, java.lang.String) void" for a method.
func (d Descriptor) String() string {
	switch d.Kind {
	case DescriptorField:
		return d.Field.String()
	case DescriptorMethod:
		var sb strings.Builder
		sb.WriteString("(")
		for i := range d.Parameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.Parameters[i].String())
		}
		sb.WriteString(") ")
		if d.Return == nil {
			sb.WriteString("void")
		} else {
			sb.WriteString(d.Return.String())
		}
		return sb.String()
	}
	return d.Kind.String()
}

// ParseDescriptor classifies s. Anything that is not exactly one field type
// or one well-formed method descriptor is DescriptorIllegal.
func ParseDescriptor(s string) Descriptor {
	if s == "" {
		return Descriptor{}
	}
	if s[0] != '(' {
		ft, n := parseStrictFieldType(s, 0)
		if ft == nil || n != len(s) {
			return Descriptor{}
		}
		return Descriptor{Kind: DescriptorField, Field: ft}
	}

	d := Descriptor{Kind: DescriptorMethod}
	i := 1
	for i < len(s) && s[i] != ')' {
		ft, n := parseStrictFieldType(s, i)
		if ft == nil {
			return Descriptor{}
		}
		d.Parameters = append(d.Parameters, *ft)
		i += n
	}
	if i >= len(s) {
		return Descriptor{}
	}
	i++
	switch {
	case i == len(s):
		return Descriptor{}
	case s[i] == 'V' && i+1 == len(s):
		return d
	}
	ret, n := parseStrictFieldType(s, i)
	if ret == nil || i+n != len(s) {
		return Descriptor{}
	}
	d.Return = ret
	return d
}

func parseStrictFieldType(desc string, start int) (*FieldType, int) {
	ft, n := parseFieldType(desc, start)
	if ft == nil {
		return nil, 0
	}
	if ft.ArrayDepth > 255 {
		return nil, 0
	}
	if ft.BaseType == "" && !IsValidBinaryName(ft.ClassName) {
		return nil, 0
	}
	return ft, n
}

// IsValidBinaryName reports whether name is a non-empty internal class name:
// no '.', ';' or '[' and no empty '/'-separated segment.
func IsValidBinaryName(name string) bool {
	if name == "" || strings.ContainsAny(name, ".;[") {
		return false
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "" {
			return false
		}
	}
	return true
}
