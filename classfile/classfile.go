package classfile

// ClassFile is a decoded class file. Attributes and members keep raw pool
// indices; the pool entries themselves are linked by pointer.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) GetField(name string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name(cf.ConstantPool) == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			if descriptor == "" || cf.Methods[i].Descriptor(cf.ConstantPool) == descriptor {
				return &cf.Methods[i]
			}
		}
	}
	return nil
}

func (cf *ClassFile) GetMethods(name string) []*MethodInfo {
	var methods []*MethodInfo
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	return findAttribute(cf.Attributes, cf.ConstantPool, name)
}

func (cf *ClassFile) Context() AttributeContext           { return ContextClass }
func (cf *ClassFile) GetAttributes() []AttributeInfo      { return cf.Attributes }
func (cf *ClassFile) SetAttributes(attrs []AttributeInfo) { cf.Attributes = attrs }

// Holders lists every attribute holder in the class, outermost first: the
// class, each field, each method, each Code body and each record component.
func (cf *ClassFile) Holders() []Holder {
	holders := []Holder{cf}
	for i := range cf.Fields {
		holders = append(holders, &cf.Fields[i])
	}
	for i := range cf.Methods {
		holders = append(holders, &cf.Methods[i])
		for j := range cf.Methods[i].Attributes {
			if code := cf.Methods[i].Attributes[j].AsCode(); code != nil {
				holders = append(holders, code)
			}
		}
	}
	for i := range cf.Attributes {
		if record := cf.Attributes[i].AsRecord(); record != nil {
			for j := range record.Components {
				holders = append(holders, &record.Components[j])
			}
		}
	}
	return holders
}
