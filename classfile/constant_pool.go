package classfile

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// ConstantPoolEntry is one slot of the constant pool. Entries that point at
// other entries hold those entries directly; the numeric index is derived
// from the target's assigned index when the pool is written.
type ConstantPoolEntry interface {
	Tag() ConstantTag
	Index() uint16
	Wide() bool
	assign(index uint16)
	writeTo(w *writer) error
}

// CrossReferencing is implemented by entries that reference other entries.
type CrossReferencing interface {
	ConstantPoolEntry
	References() []ConstantPoolEntry
}

// LoadableConstant is implemented by entries that ldc and bootstrap
// arguments may name.
type LoadableConstant interface {
	ConstantPoolEntry
	loadable()
}

// MemberRef is a Fieldref, Methodref or InterfaceMethodref entry.
type MemberRef interface {
	CrossReferencing
	Owner() *ConstantClassInfo
	Member() *ConstantNameAndTypeInfo
}

type slot struct {
	index uint16
}

func (s *slot) Index() uint16       { return s.index }
func (s *slot) Wide() bool          { return false }
func (s *slot) assign(index uint16) { s.index = index }

// ConstantUtf8Info keeps the modified UTF-8 bytes exactly as stored.
type ConstantUtf8Info struct {
	slot
	Raw []byte
}

// NewUtf8 encodes s as modified UTF-8.
func NewUtf8(s string) *ConstantUtf8Info {
	return &ConstantUtf8Info{Raw: encodeModifiedUtf8(s)}
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }
func (c *ConstantUtf8Info) Value() string    { return decodeModifiedUtf8(c.Raw) }

func (c *ConstantUtf8Info) writeTo(w *writer) error {
	if len(c.Raw) > math.MaxUint16 {
		return fmt.Errorf("utf8 entry %d: %d bytes exceeds limit", c.index, len(c.Raw))
	}
	w.writeU1(uint8(ConstantUtf8))
	w.writeU2(uint16(len(c.Raw)))
	w.writeBytes(c.Raw)
	return nil
}

type ConstantIntegerInfo struct {
	slot
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }
func (c *ConstantIntegerInfo) loadable()        {}

func (c *ConstantIntegerInfo) writeTo(w *writer) error {
	w.writeU1(uint8(ConstantInteger))
	w.writeU4(uint32(c.Value))
	return nil
}

// ConstantFloatInfo keeps the raw IEEE bits so NaN payloads survive.
type ConstantFloatInfo struct {
	slot
	Bits uint32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }
func (c *ConstantFloatInfo) Value() float32   { return math.Float32frombits(c.Bits) }
func (c *ConstantFloatInfo) loadable()        {}

func (c *ConstantFloatInfo) writeTo(w *writer) error {
	w.writeU1(uint8(ConstantFloat))
	w.writeU4(c.Bits)
	return nil
}

type ConstantLongInfo struct {
	slot
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }
func (c *ConstantLongInfo) Wide() bool       { return true }
func (c *ConstantLongInfo) loadable()        {}

func (c *ConstantLongInfo) writeTo(w *writer) error {
	w.writeU1(uint8(ConstantLong))
	w.writeU4(uint32(uint64(c.Value) >> 32))
	w.writeU4(uint32(c.Value))
	return nil
}

type ConstantDoubleInfo struct {
	slot
	Bits uint64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }
func (c *ConstantDoubleInfo) Wide() bool       { return true }
func (c *ConstantDoubleInfo) Value() float64   { return math.Float64frombits(c.Bits) }
func (c *ConstantDoubleInfo) loadable()        {}

func (c *ConstantDoubleInfo) writeTo(w *writer) error {
	w.writeU1(uint8(ConstantDouble))
	w.writeU4(uint32(c.Bits >> 32))
	w.writeU4(uint32(c.Bits))
	return nil
}

type ConstantClassInfo struct {
	slot
	Name *ConstantUtf8Info
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }
func (c *ConstantClassInfo) loadable()        {}

func (c *ConstantClassInfo) References() []ConstantPoolEntry {
	return nonNil(c.Name)
}

func (c *ConstantClassInfo) writeTo(w *writer) error {
	if c.Name == nil {
		return unresolvedError(c)
	}
	name, err := assignedIndex(c.Name)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantClass))
	w.writeU2(name)
	return nil
}

type ConstantStringInfo struct {
	slot
	Value *ConstantUtf8Info
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }
func (c *ConstantStringInfo) loadable()        {}

func (c *ConstantStringInfo) References() []ConstantPoolEntry {
	return nonNil(c.Value)
}

func (c *ConstantStringInfo) writeTo(w *writer) error {
	if c.Value == nil {
		return unresolvedError(c)
	}
	value, err := assignedIndex(c.Value)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantString))
	w.writeU2(value)
	return nil
}

type ConstantNameAndTypeInfo struct {
	slot
	Name       *ConstantUtf8Info
	Descriptor *ConstantUtf8Info
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

func (c *ConstantNameAndTypeInfo) References() []ConstantPoolEntry {
	return nonNil(c.Name, c.Descriptor)
}

func (c *ConstantNameAndTypeInfo) writeTo(w *writer) error {
	if c.Name == nil || c.Descriptor == nil {
		return unresolvedError(c)
	}
	return writeTwoRefs(w, ConstantNameAndType, c.Name, c.Descriptor)
}

type ConstantFieldrefInfo struct {
	slot
	Class       *ConstantClassInfo
	NameAndType *ConstantNameAndTypeInfo
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag                 { return ConstantFieldref }
func (c *ConstantFieldrefInfo) Owner() *ConstantClassInfo        { return c.Class }
func (c *ConstantFieldrefInfo) Member() *ConstantNameAndTypeInfo { return c.NameAndType }

func (c *ConstantFieldrefInfo) References() []ConstantPoolEntry {
	return nonNil(c.Class, c.NameAndType)
}

func (c *ConstantFieldrefInfo) writeTo(w *writer) error {
	if c.Class == nil || c.NameAndType == nil {
		return unresolvedError(c)
	}
	return writeTwoRefs(w, ConstantFieldref, c.Class, c.NameAndType)
}

type ConstantMethodrefInfo struct {
	slot
	Class       *ConstantClassInfo
	NameAndType *ConstantNameAndTypeInfo
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag                 { return ConstantMethodref }
func (c *ConstantMethodrefInfo) Owner() *ConstantClassInfo        { return c.Class }
func (c *ConstantMethodrefInfo) Member() *ConstantNameAndTypeInfo { return c.NameAndType }

func (c *ConstantMethodrefInfo) References() []ConstantPoolEntry {
	return nonNil(c.Class, c.NameAndType)
}

func (c *ConstantMethodrefInfo) writeTo(w *writer) error {
	if c.Class == nil || c.NameAndType == nil {
		return unresolvedError(c)
	}
	return writeTwoRefs(w, ConstantMethodref, c.Class, c.NameAndType)
}

type ConstantInterfaceMethodrefInfo struct {
	slot
	Class       *ConstantClassInfo
	NameAndType *ConstantNameAndTypeInfo
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag                 { return ConstantInterfaceMethodref }
func (c *ConstantInterfaceMethodrefInfo) Owner() *ConstantClassInfo        { return c.Class }
func (c *ConstantInterfaceMethodrefInfo) Member() *ConstantNameAndTypeInfo { return c.NameAndType }

func (c *ConstantInterfaceMethodrefInfo) References() []ConstantPoolEntry {
	return nonNil(c.Class, c.NameAndType)
}

func (c *ConstantInterfaceMethodrefInfo) writeTo(w *writer) error {
	if c.Class == nil || c.NameAndType == nil {
		return unresolvedError(c)
	}
	return writeTwoRefs(w, ConstantInterfaceMethodref, c.Class, c.NameAndType)
}

type ConstantMethodHandleInfo struct {
	slot
	ReferenceKind MethodHandleKind
	Reference     MemberRef
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }
func (c *ConstantMethodHandleInfo) loadable()        {}

func (c *ConstantMethodHandleInfo) References() []ConstantPoolEntry {
	if c.Reference == nil {
		return nil
	}
	return []ConstantPoolEntry{c.Reference}
}

func (c *ConstantMethodHandleInfo) writeTo(w *writer) error {
	if c.Reference == nil {
		return unresolvedError(c)
	}
	ref, err := assignedIndex(c.Reference)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantMethodHandle))
	w.writeU1(uint8(c.ReferenceKind))
	w.writeU2(ref)
	return nil
}

type ConstantMethodTypeInfo struct {
	slot
	Descriptor *ConstantUtf8Info
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }
func (c *ConstantMethodTypeInfo) loadable()        {}

func (c *ConstantMethodTypeInfo) References() []ConstantPoolEntry {
	return nonNil(c.Descriptor)
}

func (c *ConstantMethodTypeInfo) writeTo(w *writer) error {
	if c.Descriptor == nil {
		return unresolvedError(c)
	}
	desc, err := assignedIndex(c.Descriptor)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantMethodType))
	w.writeU2(desc)
	return nil
}

// ConstantDynamicInfo is a dynamically computed constant. BootstrapMethodAttrIndex
// indexes the class's BootstrapMethods table, not the pool.
type ConstantDynamicInfo struct {
	slot
	BootstrapMethodAttrIndex uint16
	NameAndType              *ConstantNameAndTypeInfo
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return ConstantDynamic }
func (c *ConstantDynamicInfo) loadable()        {}

func (c *ConstantDynamicInfo) References() []ConstantPoolEntry {
	return nonNil(c.NameAndType)
}

func (c *ConstantDynamicInfo) writeTo(w *writer) error {
	if c.NameAndType == nil {
		return unresolvedError(c)
	}
	nat, err := assignedIndex(c.NameAndType)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantDynamic))
	w.writeU2(c.BootstrapMethodAttrIndex)
	w.writeU2(nat)
	return nil
}

type ConstantInvokeDynamicInfo struct {
	slot
	BootstrapMethodAttrIndex uint16
	NameAndType              *ConstantNameAndTypeInfo
}

func (c *ConstantInvokeDynamicInfo) Tag() ConstantTag { return ConstantInvokeDynamic }

func (c *ConstantInvokeDynamicInfo) References() []ConstantPoolEntry {
	return nonNil(c.NameAndType)
}

func (c *ConstantInvokeDynamicInfo) writeTo(w *writer) error {
	if c.NameAndType == nil {
		return unresolvedError(c)
	}
	nat, err := assignedIndex(c.NameAndType)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantInvokeDynamic))
	w.writeU2(c.BootstrapMethodAttrIndex)
	w.writeU2(nat)
	return nil
}

type ConstantModuleInfo struct {
	slot
	Name *ConstantUtf8Info
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

func (c *ConstantModuleInfo) References() []ConstantPoolEntry {
	return nonNil(c.Name)
}

func (c *ConstantModuleInfo) writeTo(w *writer) error {
	if c.Name == nil {
		return unresolvedError(c)
	}
	name, err := assignedIndex(c.Name)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantModule))
	w.writeU2(name)
	return nil
}

type ConstantPackageInfo struct {
	slot
	Name *ConstantUtf8Info
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

func (c *ConstantPackageInfo) References() []ConstantPoolEntry {
	return nonNil(c.Name)
}

func (c *ConstantPackageInfo) writeTo(w *writer) error {
	if c.Name == nil {
		return unresolvedError(c)
	}
	name, err := assignedIndex(c.Name)
	if err != nil {
		return err
	}
	w.writeU1(uint8(ConstantPackage))
	w.writeU2(name)
	return nil
}

// nonNil drops unbound references. Callers pass concrete pointers, so each
// one is checked before it is boxed.
func nonNil(entries ...ConstantPoolEntry) []ConstantPoolEntry {
	out := make([]ConstantPoolEntry, 0, len(entries))
	for _, e := range entries {
		if !isNilEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

func isNilEntry(e ConstantPoolEntry) bool {
	switch v := e.(type) {
	case nil:
		return true
	case *ConstantUtf8Info:
		return v == nil
	case *ConstantClassInfo:
		return v == nil
	case *ConstantNameAndTypeInfo:
		return v == nil
	}
	return false
}

func assignedIndex(e ConstantPoolEntry) (uint16, error) {
	if e.Index() == 0 {
		return 0, fmt.Errorf("%s entry: %w", e.Tag(), ErrUnassigned)
	}
	return e.Index(), nil
}

func unresolvedError(e ConstantPoolEntry) error {
	return fmt.Errorf("%s entry %d: %w", e.Tag(), e.Index(), ErrUnresolved)
}

func writeTwoRefs(w *writer, tag ConstantTag, a, b ConstantPoolEntry) error {
	first, err := assignedIndex(a)
	if err != nil {
		return err
	}
	second, err := assignedIndex(b)
	if err != nil {
		return err
	}
	w.writeU1(uint8(tag))
	w.writeU2(first)
	w.writeU2(second)
	return nil
}

// ErrPoolFull is returned by Append when no index is left.
var ErrPoolFull = errors.New("constant pool is full")

// ConstantPool is the 1-based table of constants. Slot 0 and the upper half
// of every Long and Double are empty.
type ConstantPool struct {
	slots []ConstantPoolEntry
}

func NewConstantPool() *ConstantPool {
	return &ConstantPool{slots: make([]ConstantPoolEntry, 1)}
}

// Size is the constant_pool_count written to the class file: one more than
// the highest usable index.
func (cp *ConstantPool) Size() int {
	if len(cp.slots) == 0 {
		return 1
	}
	return len(cp.slots)
}

// Len is the number of entries, not counting empty slots.
func (cp *ConstantPool) Len() int {
	n := 0
	for _, e := range cp.slots {
		if e != nil {
			n++
		}
	}
	return n
}

func (cp *ConstantPool) Get(index uint16) (ConstantPoolEntry, error) {
	if index < 1 || int(index) >= len(cp.slots) || cp.slots[index] == nil {
		return nil, fmt.Errorf("index %d (size %d): %w", index, cp.Size(), ErrOutOfRange)
	}
	return cp.slots[index], nil
}

// TagAt returns the tag of the entry at index, if there is one.
func (cp *ConstantPool) TagAt(index uint16) (ConstantTag, bool) {
	e, err := cp.Get(index)
	if err != nil {
		return 0, false
	}
	return e.Tag(), true
}

// Append adds e at the next free index and returns it. A Long or Double
// also claims the following index.
func (cp *ConstantPool) Append(e ConstantPoolEntry) (uint16, error) {
	if len(cp.slots) == 0 {
		cp.slots = make([]ConstantPoolEntry, 1)
	}
	next := len(cp.slots)
	width := 1
	if e.Wide() {
		width = 2
	}
	if next+width > math.MaxUint16 {
		return 0, ErrPoolFull
	}
	e.assign(uint16(next))
	cp.slots = append(cp.slots, e)
	if e.Wide() {
		cp.slots = append(cp.slots, nil)
	}
	return uint16(next), nil
}

// Replace puts e into the slot at index. The new entry must have the same
// width so no other index moves.
func (cp *ConstantPool) Replace(index uint16, e ConstantPoolEntry) error {
	old, err := cp.Get(index)
	if err != nil {
		return err
	}
	if old.Wide() != e.Wide() {
		return fmt.Errorf("replace entry %d: %s cannot take the slot of %s", index, e.Tag(), old.Tag())
	}
	e.assign(index)
	cp.slots[index] = e
	return nil
}

// All yields entries in index order.
func (cp *ConstantPool) All() iter.Seq2[uint16, ConstantPoolEntry] {
	return func(yield func(uint16, ConstantPoolEntry) bool) {
		for i, e := range cp.slots {
			if e == nil {
				continue
			}
			if !yield(uint16(i), e) {
				return
			}
		}
	}
}

func (cp *ConstantPool) GetUtf8(index uint16) string {
	if entry := cp.Utf8(index); entry != nil {
		return entry.Value()
	}
	return ""
}

// Utf8 returns the Utf8 entry at index or nil.
func (cp *ConstantPool) Utf8(index uint16) *ConstantUtf8Info {
	entry, _ := lookup[*ConstantUtf8Info](cp, index)
	return entry
}

func (cp *ConstantPool) GetClassName(index uint16) string {
	if entry, ok := lookup[*ConstantClassInfo](cp, index); ok && entry.Name != nil {
		return entry.Name.Value()
	}
	return ""
}

func (cp *ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if entry, ok := lookup[*ConstantNameAndTypeInfo](cp, index); ok {
		return utf8Value(entry.Name), utf8Value(entry.Descriptor)
	}
	return "", ""
}

func (cp *ConstantPool) GetString(index uint16) string {
	if entry, ok := lookup[*ConstantStringInfo](cp, index); ok {
		return utf8Value(entry.Value)
	}
	return ""
}

func (cp *ConstantPool) GetModuleName(index uint16) string {
	if entry, ok := lookup[*ConstantModuleInfo](cp, index); ok {
		return utf8Value(entry.Name)
	}
	return ""
}

func (cp *ConstantPool) GetPackageName(index uint16) string {
	if entry, ok := lookup[*ConstantPackageInfo](cp, index); ok {
		return utf8Value(entry.Name)
	}
	return ""
}

func (cp *ConstantPool) GetInteger(index uint16) (int32, bool) {
	if entry, ok := lookup[*ConstantIntegerInfo](cp, index); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp *ConstantPool) GetLong(index uint16) (int64, bool) {
	if entry, ok := lookup[*ConstantLongInfo](cp, index); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp *ConstantPool) GetFloat(index uint16) (float32, bool) {
	if entry, ok := lookup[*ConstantFloatInfo](cp, index); ok {
		return entry.Value(), true
	}
	return 0, false
}

func (cp *ConstantPool) GetDouble(index uint16) (float64, bool) {
	if entry, ok := lookup[*ConstantDoubleInfo](cp, index); ok {
		return entry.Value(), true
	}
	return 0, false
}

func (cp *ConstantPool) GetFieldref(index uint16) (className, name, descriptor string) {
	if entry, ok := lookup[*ConstantFieldrefInfo](cp, index); ok {
		return memberNames(entry)
	}
	return "", "", ""
}

func (cp *ConstantPool) GetMethodref(index uint16) (className, name, descriptor string) {
	if entry, ok := lookup[*ConstantMethodrefInfo](cp, index); ok {
		return memberNames(entry)
	}
	return "", "", ""
}

func (cp *ConstantPool) GetInterfaceMethodref(index uint16) (className, name, descriptor string) {
	if entry, ok := lookup[*ConstantInterfaceMethodrefInfo](cp, index); ok {
		return memberNames(entry)
	}
	return "", "", ""
}

func (cp *ConstantPool) GetMethodHandle(index uint16) *ConstantMethodHandleInfo {
	entry, _ := lookup[*ConstantMethodHandleInfo](cp, index)
	return entry
}

func (cp *ConstantPool) GetMethodType(index uint16) string {
	if entry, ok := lookup[*ConstantMethodTypeInfo](cp, index); ok {
		return utf8Value(entry.Descriptor)
	}
	return ""
}

func (cp *ConstantPool) GetDynamic(index uint16) *ConstantDynamicInfo {
	entry, _ := lookup[*ConstantDynamicInfo](cp, index)
	return entry
}

func (cp *ConstantPool) GetInvokeDynamic(index uint16) *ConstantInvokeDynamicInfo {
	entry, _ := lookup[*ConstantInvokeDynamicInfo](cp, index)
	return entry
}

func lookup[T ConstantPoolEntry](cp *ConstantPool, index uint16) (T, bool) {
	var zero T
	if cp == nil {
		return zero, false
	}
	e, err := cp.Get(index)
	if err != nil {
		return zero, false
	}
	t, ok := e.(T)
	return t, ok
}

func utf8Value(e *ConstantUtf8Info) string {
	if e == nil {
		return ""
	}
	return e.Value()
}

func memberNames(ref MemberRef) (className, name, descriptor string) {
	if owner := ref.Owner(); owner != nil {
		className = utf8Value(owner.Name)
	}
	if nat := ref.Member(); nat != nil {
		name, descriptor = utf8Value(nat.Name), utf8Value(nat.Descriptor)
	}
	return className, name, descriptor
}

func decodeModifiedUtf8(bytes []byte) string {
	runes := make([]rune, 0, len(bytes))
	i := 0
	for i < len(bytes) {
		b := bytes[i]
		if b&0x80 == 0 {
			runes = append(runes, rune(b))
			i++
		} else if b&0xE0 == 0xC0 {
			if i+1 >= len(bytes) {
				break
			}
			r := rune(b&0x1F)<<6 | rune(bytes[i+1]&0x3F)
			runes = append(runes, r)
			i += 2
		} else if b&0xF0 == 0xE0 {
			if i+2 >= len(bytes) {
				break
			}
			r := rune(b&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(bytes) && bytes[i+3] == 0xED {
				low := rune(bytes[i+3]&0x0F)<<12 | rune(bytes[i+4]&0x3F)<<6 | rune(bytes[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		} else {
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}

func encodeModifiedUtf8(s string) []byte {
	out := make([]byte, 0, len(s))
	put3 := func(r rune) {
		out = append(out, byte(0xE0|(r>>12)&0x0F), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	}
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, byte(0xC0|(r>>6)&0x1F), byte(0x80|r&0x3F))
		case r < 0x10000:
			put3(r)
		default:
			r -= 0x10000
			put3(0xD800 + (r>>10)&0x3FF)
			put3(0xDC00 + r&0x3FF)
		}
	}
	return out
}
