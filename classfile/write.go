package classfile

import (
	"fmt"
	"io"
)

// Bytes encodes the class file. Every count and length is taken from the
// current in-memory values.
func (cf *ClassFile) Bytes() ([]byte, error) {
	var w writer
	if err := cf.encode(&w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (cf *ClassFile) Write(out io.Writer) error {
	data, err := cf.Bytes()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func (cf *ClassFile) encode(w *writer) error {
	w.writeU4(Magic)
	w.writeU2(cf.MinorVersion)
	w.writeU2(cf.MajorVersion)

	if err := writeConstantPool(w, cf.ConstantPool); err != nil {
		return fmt.Errorf("failed to write constant pool: %w", err)
	}

	w.writeU2(uint16(cf.AccessFlags))
	w.writeU2(cf.ThisClass)
	w.writeU2(cf.SuperClass)
	if err := w.writeU2s(cf.Interfaces); err != nil {
		return fmt.Errorf("failed to write interfaces: %w", err)
	}

	if len(cf.Fields) > 0xFFFF {
		return errTooMany(len(cf.Fields))
	}
	w.writeU2(uint16(len(cf.Fields)))
	for i := range cf.Fields {
		if err := writeMember(w, member(cf.Fields[i])); err != nil {
			return fmt.Errorf("failed to write field %d: %w", i, err)
		}
	}

	if len(cf.Methods) > 0xFFFF {
		return errTooMany(len(cf.Methods))
	}
	w.writeU2(uint16(len(cf.Methods)))
	for i := range cf.Methods {
		if err := writeMember(w, member(cf.Methods[i])); err != nil {
			return fmt.Errorf("failed to write method %d: %w", i, err)
		}
	}

	if err := writeAttributes(w, cf.Attributes); err != nil {
		return fmt.Errorf("failed to write class attributes: %w", err)
	}
	return nil
}

func writeMember(w *writer, m member) error {
	w.writeU2(uint16(m.AccessFlags))
	w.writeU2(m.NameIndex)
	w.writeU2(m.DescriptorIndex)
	return writeAttributes(w, m.Attributes)
}

func writeConstantPool(w *writer, cp *ConstantPool) error {
	if cp == nil {
		cp = NewConstantPool()
	}
	size := cp.Size()
	if size > 0xFFFF {
		return errTooMany(size)
	}
	w.writeU2(uint16(size))
	for index, entry := range cp.All() {
		if entry.Index() != index {
			return fmt.Errorf("entry at slot %d claims index %d", index, entry.Index())
		}
		if err := entry.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}
