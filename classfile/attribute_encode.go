package classfile

import "math"

// writeAttributes writes a counted attribute table. Lengths come from the
// current payloads, never from what was read.
func writeAttributes(w *writer, attrs []AttributeInfo) error {
	if len(attrs) > 0xFFFF {
		return errTooMany(len(attrs))
	}
	w.writeU2(uint16(len(attrs)))
	for i := range attrs {
		payload, err := attrs[i].Payload()
		if err != nil {
			return err
		}
		if int64(len(payload)) > math.MaxUint32 {
			return invalidf(0, "attribute payload of %d bytes is too large", len(payload))
		}
		w.writeU2(attrs[i].NameIndex)
		w.writeU4(uint32(len(payload)))
		w.writeBytes(payload)
	}
	return nil
}

func (c *CodeAttribute) encode(w *writer) error {
	w.writeU2(c.MaxStack)
	w.writeU2(c.MaxLocals)
	w.writeU4(uint32(len(c.Code)))
	w.writeBytes(c.Code)
	if len(c.ExceptionTable) > 0xFFFF {
		return errTooMany(len(c.ExceptionTable))
	}
	w.writeU2(uint16(len(c.ExceptionTable)))
	for _, e := range c.ExceptionTable {
		w.writeU2(e.StartPC)
		w.writeU2(e.EndPC)
		w.writeU2(e.HandlerPC)
		w.writeU2(e.CatchType)
	}
	return writeAttributes(w, c.Attributes)
}

func (a *ConstantValueAttribute) encode(w *writer) error {
	w.writeU2(a.ConstantValueIndex)
	return nil
}

func (a *ExceptionsAttribute) encode(w *writer) error {
	return w.writeU2s(a.ExceptionIndexTable)
}

func (a *InnerClassesAttribute) encode(w *writer) error {
	if len(a.Classes) > 0xFFFF {
		return errTooMany(len(a.Classes))
	}
	w.writeU2(uint16(len(a.Classes)))
	for _, c := range a.Classes {
		w.writeU2(c.InnerClassInfoIndex)
		w.writeU2(c.OuterClassInfoIndex)
		w.writeU2(c.InnerNameIndex)
		w.writeU2(uint16(c.InnerClassAccessFlags))
	}
	return nil
}

func (a *EnclosingMethodAttribute) encode(w *writer) error {
	w.writeU2(a.ClassIndex)
	w.writeU2(a.MethodIndex)
	return nil
}

func (a *SyntheticAttribute) encode(*writer) error  { return nil }
func (a *DeprecatedAttribute) encode(*writer) error { return nil }

func (a *SignatureAttribute) encode(w *writer) error {
	w.writeU2(a.SignatureIndex)
	return nil
}

func (a *SourceFileAttribute) encode(w *writer) error {
	w.writeU2(a.SourceFileIndex)
	return nil
}

func (a *SourceDebugExtensionAttribute) encode(w *writer) error {
	w.writeBytes(a.DebugExtension)
	return nil
}

func (a *LineNumberTableAttribute) encode(w *writer) error {
	if len(a.LineNumberTable) > 0xFFFF {
		return errTooMany(len(a.LineNumberTable))
	}
	w.writeU2(uint16(len(a.LineNumberTable)))
	for _, e := range a.LineNumberTable {
		w.writeU2(e.StartPC)
		w.writeU2(e.LineNumber)
	}
	return nil
}

func (a *LocalVariableTableAttribute) encode(w *writer) error {
	if len(a.LocalVariableTable) > 0xFFFF {
		return errTooMany(len(a.LocalVariableTable))
	}
	w.writeU2(uint16(len(a.LocalVariableTable)))
	for _, e := range a.LocalVariableTable {
		w.writeU2(e.StartPC)
		w.writeU2(e.Length)
		w.writeU2(e.NameIndex)
		w.writeU2(e.DescriptorIndex)
		w.writeU2(e.Index)
	}
	return nil
}

func (a *LocalVariableTypeTableAttribute) encode(w *writer) error {
	if len(a.LocalVariableTypeTable) > 0xFFFF {
		return errTooMany(len(a.LocalVariableTypeTable))
	}
	w.writeU2(uint16(len(a.LocalVariableTypeTable)))
	for _, e := range a.LocalVariableTypeTable {
		w.writeU2(e.StartPC)
		w.writeU2(e.Length)
		w.writeU2(e.NameIndex)
		w.writeU2(e.SignatureIndex)
		w.writeU2(e.Index)
	}
	return nil
}

func (a *StackMapTableAttribute) encode(w *writer) error {
	if len(a.Entries) > 0xFFFF {
		return errTooMany(len(a.Entries))
	}
	w.writeU2(uint16(len(a.Entries)))
	for _, f := range a.Entries {
		w.writeBytes(f.Data)
	}
	return nil
}

func (a *BootstrapMethodsAttribute) encode(w *writer) error {
	if len(a.BootstrapMethods) > 0xFFFF {
		return errTooMany(len(a.BootstrapMethods))
	}
	w.writeU2(uint16(len(a.BootstrapMethods)))
	for _, m := range a.BootstrapMethods {
		w.writeU2(m.BootstrapMethodRef)
		if err := w.writeU2s(m.BootstrapArguments); err != nil {
			return err
		}
	}
	return nil
}

func (a *MethodParametersAttribute) encode(w *writer) error {
	if len(a.Parameters) > 0xFF {
		return errTooMany(len(a.Parameters))
	}
	w.writeU1(uint8(len(a.Parameters)))
	for _, p := range a.Parameters {
		w.writeU2(p.NameIndex)
		w.writeU2(uint16(p.AccessFlags))
	}
	return nil
}

func (a *NestHostAttribute) encode(w *writer) error {
	w.writeU2(a.HostClassIndex)
	return nil
}

func (a *NestMembersAttribute) encode(w *writer) error {
	return w.writeU2s(a.Classes)
}

func (a *PermittedSubclassesAttribute) encode(w *writer) error {
	return w.writeU2s(a.Classes)
}

func (a *RecordAttribute) encode(w *writer) error {
	if len(a.Components) > 0xFFFF {
		return errTooMany(len(a.Components))
	}
	w.writeU2(uint16(len(a.Components)))
	for _, c := range a.Components {
		w.writeU2(c.NameIndex)
		w.writeU2(c.DescriptorIndex)
		if err := writeAttributes(w, c.Attributes); err != nil {
			return err
		}
	}
	return nil
}

func (a *ModuleAttribute) encode(w *writer) error {
	w.writeU2(a.ModuleNameIndex)
	w.writeU2(a.ModuleFlags)
	w.writeU2(a.ModuleVersionIndex)

	if len(a.Requires) > 0xFFFF {
		return errTooMany(len(a.Requires))
	}
	w.writeU2(uint16(len(a.Requires)))
	for _, r := range a.Requires {
		w.writeU2(r.RequiresIndex)
		w.writeU2(r.RequiresFlags)
		w.writeU2(r.RequiresVersionIndex)
	}

	if len(a.Exports) > 0xFFFF {
		return errTooMany(len(a.Exports))
	}
	w.writeU2(uint16(len(a.Exports)))
	for _, e := range a.Exports {
		w.writeU2(e.ExportsIndex)
		w.writeU2(e.ExportsFlags)
		if err := w.writeU2s(e.ExportsToIndex); err != nil {
			return err
		}
	}

	if len(a.Opens) > 0xFFFF {
		return errTooMany(len(a.Opens))
	}
	w.writeU2(uint16(len(a.Opens)))
	for _, o := range a.Opens {
		w.writeU2(o.OpensIndex)
		w.writeU2(o.OpensFlags)
		if err := w.writeU2s(o.OpensToIndex); err != nil {
			return err
		}
	}

	if err := w.writeU2s(a.Uses); err != nil {
		return err
	}

	if len(a.Provides) > 0xFFFF {
		return errTooMany(len(a.Provides))
	}
	w.writeU2(uint16(len(a.Provides)))
	for _, p := range a.Provides {
		w.writeU2(p.ProvidesIndex)
		if err := w.writeU2s(p.ProvidesWithIndex); err != nil {
			return err
		}
	}
	return nil
}

func (a *ModulePackagesAttribute) encode(w *writer) error {
	return w.writeU2s(a.PackageIndex)
}

func (a *ModuleMainClassAttribute) encode(w *writer) error {
	w.writeU2(a.MainClassIndex)
	return nil
}

func (a *RuntimeVisibleAnnotationsAttribute) encode(w *writer) error {
	return writeAnnotations(w, a.Annotations)
}

func (a *RuntimeInvisibleAnnotationsAttribute) encode(w *writer) error {
	return writeAnnotations(w, a.Annotations)
}

func (a *RuntimeVisibleParameterAnnotationsAttribute) encode(w *writer) error {
	return writeParameterAnnotations(w, a.ParameterAnnotations)
}

func (a *RuntimeInvisibleParameterAnnotationsAttribute) encode(w *writer) error {
	return writeParameterAnnotations(w, a.ParameterAnnotations)
}

func (a *RuntimeVisibleTypeAnnotationsAttribute) encode(w *writer) error {
	return writeTypeAnnotations(w, a.Annotations)
}

func (a *RuntimeInvisibleTypeAnnotationsAttribute) encode(w *writer) error {
	return writeTypeAnnotations(w, a.Annotations)
}

func (a *AnnotationDefaultAttribute) encode(w *writer) error {
	return writeElementValue(w, a.DefaultValue)
}
