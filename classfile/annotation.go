package classfile

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is one element_value. Value holds a uint16 pool index for
// the constant tags and 'c', an EnumConstValue for 'e', an Annotation for
// '@' and an ArrayValue for '['.
type ElementValue struct {
	Tag   byte
	Value interface{}
}

type EnumConstValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type ArrayValue struct {
	Values []ElementValue
}

type TypeAnnotation struct {
	TargetType        uint8
	TargetInfo        []byte
	TargetPath        []TypePathEntry
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

// ConstantTagFor returns the pool tag an element value with the given tag
// must reference. ok is false for '@', '[' and unknown tags.
func ConstantTagFor(elementTag byte) (tag ConstantTag, ok bool) {
	switch elementTag {
	case 'B', 'C', 'I', 'S', 'Z':
		return ConstantInteger, true
	case 'D':
		return ConstantDouble, true
	case 'F':
		return ConstantFloat, true
	case 'J':
		return ConstantLong, true
	case 's', 'c':
		return ConstantUtf8, true
	}
	return 0, false
}

func (ev ElementValue) PoolReferences() []uint16 {
	switch v := ev.Value.(type) {
	case uint16:
		return []uint16{v}
	case EnumConstValue:
		return []uint16{v.TypeNameIndex, v.ConstNameIndex}
	case Annotation:
		return annotationRefs([]Annotation{v})
	case ArrayValue:
		var refs []uint16
		for _, e := range v.Values {
			refs = append(refs, e.PoolReferences()...)
		}
		return refs
	}
	return nil
}

func annotationRefs(anns []Annotation) []uint16 {
	var refs []uint16
	for _, a := range anns {
		refs = append(refs, a.TypeIndex)
		refs = append(refs, pairRefs(a.ElementValuePairs)...)
	}
	return refs
}

func typeAnnotationRefs(anns []TypeAnnotation) []uint16 {
	var refs []uint16
	for _, a := range anns {
		refs = append(refs, a.TypeIndex)
		refs = append(refs, pairRefs(a.ElementValuePairs)...)
	}
	return refs
}

func pairRefs(pairs []ElementValuePair) []uint16 {
	var refs []uint16
	for _, p := range pairs {
		refs = append(refs, p.ElementNameIndex)
		refs = append(refs, p.Value.PoolReferences()...)
	}
	return refs
}

func readElementValue(r *reader) ElementValue {
	ev := ElementValue{Tag: r.readU1()}
	if r.err != nil {
		return ev
	}
	switch ev.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		ev.Value = r.readU2()
	case 'e':
		ev.Value = EnumConstValue{
			TypeNameIndex:  r.readU2(),
			ConstNameIndex: r.readU2(),
		}
	case '@':
		ev.Value = readAnnotation(r)
	case '[':
		count := int(r.readU2())
		values := make([]ElementValue, 0, count)
		for i := 0; i < count && r.err == nil; i++ {
			values = append(values, readElementValue(r))
		}
		ev.Value = ArrayValue{Values: values}
	default:
		r.failf("unknown element value tag %q", ev.Tag)
	}
	return ev
}

func readAnnotation(r *reader) Annotation {
	ann := Annotation{TypeIndex: r.readU2()}
	ann.ElementValuePairs = readElementValuePairs(r)
	return ann
}

func readElementValuePairs(r *reader) []ElementValuePair {
	count := int(r.readU2())
	pairs := make([]ElementValuePair, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		pair := ElementValuePair{ElementNameIndex: r.readU2()}
		pair.Value = readElementValue(r)
		pairs = append(pairs, pair)
	}
	return pairs
}

func readAnnotations(r *reader) []Annotation {
	count := int(r.readU2())
	anns := make([]Annotation, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		anns = append(anns, readAnnotation(r))
	}
	return anns
}

func readParameterAnnotations(r *reader) [][]Annotation {
	count := int(r.readU1())
	params := make([][]Annotation, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		params = append(params, readAnnotations(r))
	}
	return params
}

func readTypeAnnotation(r *reader) TypeAnnotation {
	ta := TypeAnnotation{TargetType: r.readU1()}
	if r.err != nil {
		return ta
	}

	var size int
	switch ta.TargetType {
	case 0x00, 0x01, 0x16:
		size = 1
	case 0x10, 0x11, 0x12, 0x17, 0x42, 0x43, 0x44, 0x45, 0x46:
		size = 2
	case 0x13, 0x14, 0x15:
		size = 0
	case 0x40, 0x41:
		if !r.need(2) {
			return ta
		}
		tableLength := int(r.buf[r.pos])<<8 | int(r.buf[r.pos+1])
		size = 2 + tableLength*6
	case 0x47, 0x48, 0x49, 0x4A, 0x4B:
		size = 3
	default:
		r.failf("unknown type annotation target type 0x%02X", ta.TargetType)
		return ta
	}
	ta.TargetInfo = r.readBytes(size)

	pathLength := int(r.readU1())
	ta.TargetPath = make([]TypePathEntry, 0, pathLength)
	for i := 0; i < pathLength && r.err == nil; i++ {
		ta.TargetPath = append(ta.TargetPath, TypePathEntry{
			TypePathKind:      r.readU1(),
			TypeArgumentIndex: r.readU1(),
		})
	}

	ta.TypeIndex = r.readU2()
	ta.ElementValuePairs = readElementValuePairs(r)
	return ta
}

func readTypeAnnotations(r *reader) []TypeAnnotation {
	count := int(r.readU2())
	anns := make([]TypeAnnotation, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		anns = append(anns, readTypeAnnotation(r))
	}
	return anns
}

func writeElementValue(w *writer, ev ElementValue) error {
	w.writeU1(ev.Tag)
	switch v := ev.Value.(type) {
	case uint16:
		w.writeU2(v)
	case EnumConstValue:
		w.writeU2(v.TypeNameIndex)
		w.writeU2(v.ConstNameIndex)
	case Annotation:
		return writeAnnotation(w, v)
	case ArrayValue:
		if len(v.Values) > 0xFFFF {
			return errTooMany(len(v.Values))
		}
		w.writeU2(uint16(len(v.Values)))
		for _, e := range v.Values {
			if err := writeElementValue(w, e); err != nil {
				return err
			}
		}
	default:
		return invalidf(0, "element value %q has no encodable value", ev.Tag)
	}
	return nil
}

func writeAnnotation(w *writer, ann Annotation) error {
	w.writeU2(ann.TypeIndex)
	return writeElementValuePairs(w, ann.ElementValuePairs)
}

func writeElementValuePairs(w *writer, pairs []ElementValuePair) error {
	if len(pairs) > 0xFFFF {
		return errTooMany(len(pairs))
	}
	w.writeU2(uint16(len(pairs)))
	for _, p := range pairs {
		w.writeU2(p.ElementNameIndex)
		if err := writeElementValue(w, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeAnnotations(w *writer, anns []Annotation) error {
	if len(anns) > 0xFFFF {
		return errTooMany(len(anns))
	}
	w.writeU2(uint16(len(anns)))
	for _, a := range anns {
		if err := writeAnnotation(w, a); err != nil {
			return err
		}
	}
	return nil
}

func writeParameterAnnotations(w *writer, params [][]Annotation) error {
	if len(params) > 0xFF {
		return errTooMany(len(params))
	}
	w.writeU1(uint8(len(params)))
	for _, anns := range params {
		if err := writeAnnotations(w, anns); err != nil {
			return err
		}
	}
	return nil
}

func writeTypeAnnotations(w *writer, anns []TypeAnnotation) error {
	if len(anns) > 0xFFFF {
		return errTooMany(len(anns))
	}
	w.writeU2(uint16(len(anns)))
	for _, ta := range anns {
		w.writeU1(ta.TargetType)
		w.writeBytes(ta.TargetInfo)
		if len(ta.TargetPath) > 0xFF {
			return errTooMany(len(ta.TargetPath))
		}
		w.writeU1(uint8(len(ta.TargetPath)))
		for _, p := range ta.TargetPath {
			w.writeU1(p.TypePathKind)
			w.writeU1(p.TypeArgumentIndex)
		}
		w.writeU2(ta.TypeIndex)
		if err := writeElementValuePairs(w, ta.ElementValuePairs); err != nil {
			return err
		}
	}
	return nil
}
