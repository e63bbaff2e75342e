package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classguard/classfile"
)

// LineEncoder writes one tab-separated record per line: the class header,
// pool entries, members and attributes. Member lines end with the
// descriptor in source form. Nested attributes are indented.
type LineEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class
	cp := c.ConstantPool

	fmt.Fprintf(&sb, "%s\t%s\t%d.%d\t0x%04x\n", classKind(c), c.ClassName(), c.MajorVersion, c.MinorVersion, uint16(c.AccessFlags))
	if super := c.SuperClassName(); super != "" {
		fmt.Fprintf(&sb, "super\t%s\n", super)
	}
	for _, name := range c.InterfaceNames() {
		fmt.Fprintf(&sb, "implements\t%s\n", name)
	}

	for index, entry := range cp.All() {
		fmt.Fprintf(&sb, "pool\t%d\t%s\t%s\n", index, entry.Tag(), DescribeEntry(entry))
	}

	for i := range c.Fields {
		f := &c.Fields[i]
		fmt.Fprintf(&sb, "field\t%s\t%s\t0x%04x\t%s\n", f.Name(cp), f.Descriptor(cp), uint16(f.AccessFlags), f.ParsedDescriptor(cp))
		e.attributes(&sb, f.Attributes, 1)
	}
	for i := range c.Methods {
		m := &c.Methods[i]
		fmt.Fprintf(&sb, "method\t%s\t%s\t0x%04x\t%s\n", m.Name(cp), m.Descriptor(cp), uint16(m.AccessFlags), m.ParsedDescriptor(cp))
		e.attributes(&sb, m.Attributes, 1)
	}
	e.attributes(&sb, c.Attributes, 0)

	return []byte(sb.String()), nil
}

func (e *LineEncoder) attributes(sb *strings.Builder, attrs []classfile.AttributeInfo, depth int) {
	cp := e.class.ConstantPool
	indent := strings.Repeat("\t", depth)
	for i := range attrs {
		a := &attrs[i]
		payload, err := a.Payload()
		size := fmt.Sprint(len(payload))
		if err != nil {
			size = "error: " + err.Error()
		}
		fmt.Fprintf(sb, "%sattribute\t%s\t%s\t%s\n", indent, a.Name(cp), attributeState(a), size)
		if code := a.AsCode(); code != nil {
			fmt.Fprintf(sb, "%s\tcode\t%d\tstack %d\tlocals %d\n", indent, len(code.Code), code.MaxStack, code.MaxLocals)
			e.attributes(sb, code.Attributes, depth+1)
		}
		if record := a.AsRecord(); record != nil {
			for j := range record.Components {
				rc := &record.Components[j]
				fmt.Fprintf(sb, "%s\tcomponent\t%s\t%s\n", indent, cp.GetUtf8(rc.NameIndex), cp.GetUtf8(rc.DescriptorIndex))
				e.attributes(sb, rc.Attributes, depth+2)
			}
		}
	}
}

func classKind(c *classfile.ClassFile) string {
	switch {
	case c.IsModule():
		return "module"
	case c.IsAnnotation():
		return "annotation"
	case c.IsInterface():
		return "interface"
	case c.IsEnum():
		return "enum"
	case c.GetAttribute(classfile.AttrRecord) != nil:
		return "record"
	default:
		return "class"
	}
}
