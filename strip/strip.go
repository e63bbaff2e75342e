// Package strip removes attributes that reference the constant pool
// illegally or sit on a holder they are not allowed on. The class stays
// loadable: pool indices never move.
package strip

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dhamidi/classguard/bytecode"
	"github.com/dhamidi/classguard/classfile"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classguard.strip")

// Report describes what Strip changed.
type Report struct {
	Dropped []Drop
	// Filled lists the pool slots whose Dynamic or InvokeDynamic entry fell
	// out of use and was replaced by Integer 0.
	Filled                  []uint16
	BootstrapMethodsRemoved bool
	// Rewrites counts reserved opcodes replaced in Code attributes.
	Rewrites int
}

// Drop is one removed attribute.
type Drop struct {
	Holder    string
	Attribute string
	Reason    string
}

func (d Drop) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Holder, d.Attribute, d.Reason)
}

// Changed reports whether Strip modified the class.
func (r *Report) Changed() bool {
	return len(r.Dropped) > 0 || len(r.Filled) > 0 || r.BootstrapMethodsRemoved || r.Rewrites > 0
}

type Option func(*checker)

// WithProfile selects the VM numbering used to rewrite reserved opcodes.
func WithProfile(p bytecode.Profile) Option {
	return func(c *checker) { c.profile = p }
}

type checker struct {
	cf      *classfile.ClassFile
	cp      *classfile.ConstantPool
	profile bytecode.Profile
	report  *Report

	// decoded holds each Code attribute's instructions after normalization;
	// broken holds the reason a Code attribute could not be decoded.
	decoded map[*classfile.CodeAttribute][]bytecode.Instruction
	broken  map[*classfile.CodeAttribute]error
}

// Strip validates every attribute of cf in place and drops the illegal ones.
// Code attributes are normalized first so reserved opcodes are replaced by
// their standard forms. A class without illegal content comes out byte for
// byte unchanged.
func Strip(cf *classfile.ClassFile, opts ...Option) *Report {
	c := newChecker(cf, opts...)
	c.normalize()
	before := c.referenced()
	c.stripAll()
	after := c.referenced()
	c.fill(before, after)
	c.removeUnusedBootstrapMethods()

	if c.report.Changed() {
		log.Infof("%s: dropped %d attributes, filled %d pool slots, rewrote %d opcodes",
			cf.ClassName(), len(c.report.Dropped), len(c.report.Filled), c.report.Rewrites)
	}
	return c.report
}

func newChecker(cf *classfile.ClassFile, opts ...Option) *checker {
	c := &checker{
		cf:      cf,
		cp:      cf.ConstantPool,
		profile: bytecode.DefaultProfile,
		report:  &Report{},
		decoded: make(map[*classfile.CodeAttribute][]bytecode.Instruction),
		broken:  make(map[*classfile.CodeAttribute]error),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// normalize decodes every Code attribute once. Reserved opcodes are written
// back in standard form only when there were any, so valid code is left
// untouched.
func (c *checker) normalize() {
	for i := range c.cf.Methods {
		for j := range c.cf.Methods[i].Attributes {
			code := c.cf.Methods[i].Attributes[j].AsCode()
			if code == nil {
				continue
			}
			if err := c.normalizeCode(code); err != nil {
				c.broken[code] = err
			}
		}
	}
}

func (c *checker) normalizeCode(code *classfile.CodeAttribute) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder failed: %v", r)
		}
	}()

	rewrites := 0
	insns, err := bytecode.Decode(code.Code,
		bytecode.WithConstantPool(c.cp),
		bytecode.WithProfile(c.profile),
		bytecode.OnRewrite(func(int, byte, bytecode.Opcode) { rewrites++ }),
	)
	if err != nil {
		return err
	}
	if rewrites > 0 {
		normalized, err := bytecode.Encode(insns)
		if err != nil {
			return err
		}
		code.Code = normalized
		c.report.Rewrites += rewrites
	}
	c.decoded[code] = insns
	return nil
}

// instructions returns the normalized instructions of code.
func (c *checker) instructions(code *classfile.CodeAttribute) ([]bytecode.Instruction, error) {
	if err, ok := c.broken[code]; ok {
		return nil, err
	}
	if insns, ok := c.decoded[code]; ok {
		return insns, nil
	}
	if err := c.normalizeCode(code); err != nil {
		c.broken[code] = err
		return nil, err
	}
	return c.decoded[code], nil
}

func (c *checker) stripAll() {
	cp := c.cp
	c.stripHolder(c.cf, "class "+c.cf.ClassName(), nil)
	for i := range c.cf.Fields {
		f := &c.cf.Fields[i]
		c.stripHolder(f, "field "+f.Name(cp), nil)
	}
	for i := range c.cf.Methods {
		m := &c.cf.Methods[i]
		label := "method " + m.Name(cp) + m.Descriptor(cp)
		c.stripHolder(m, label, m)
		for j := range m.Attributes {
			if code := m.Attributes[j].AsCode(); code != nil {
				c.stripHolder(code, "code of "+label, m)
			}
		}
	}
	for i := range c.cf.Attributes {
		record := c.cf.Attributes[i].AsRecord()
		if record == nil {
			continue
		}
		for j := range record.Components {
			rc := &record.Components[j]
			c.stripHolder(rc, "record component "+cp.GetUtf8(rc.NameIndex), nil)
		}
	}
}

func (c *checker) stripHolder(h classfile.Holder, label string, method *classfile.MethodInfo) {
	attrs := h.GetAttributes()
	kept := make([]classfile.AttributeInfo, 0, len(attrs))
	for i := range attrs {
		err := c.check(&attrs[i], h.Context(), method)
		if err == nil {
			kept = append(kept, attrs[i])
			continue
		}
		name := attrs[i].Name(c.cp)
		if name == "" {
			name = fmt.Sprintf("#%d", attrs[i].NameIndex)
		}
		drop := Drop{Holder: label, Attribute: name, Reason: err.Error()}
		c.report.Dropped = append(c.report.Dropped, drop)
		log.Debugf("dropped %s", drop)
	}
	if len(kept) != len(attrs) {
		h.SetAttributes(kept)
	}
}

// fill overwrites Dynamic and InvokeDynamic entries that were reachable
// before stripping and are not anymore.
func (c *checker) fill(before, after map[uint16]bool) {
	for _, index := range slices.Sorted(maps.Keys(before)) {
		if after[index] {
			continue
		}
		tag, _ := c.cp.TagAt(index)
		if tag != classfile.ConstantDynamic && tag != classfile.ConstantInvokeDynamic {
			continue
		}
		if err := c.cp.Replace(index, &classfile.ConstantIntegerInfo{}); err != nil {
			log.Warningf("cannot fill pool slot %d: %s", index, err)
			continue
		}
		c.report.Filled = append(c.report.Filled, index)
		log.Debugf("filled unused %s entry %d", tag, index)
	}
}

// removeUnusedBootstrapMethods drops BootstrapMethods once filling has left
// no Dynamic or InvokeDynamic entry to name a bootstrap method.
func (c *checker) removeUnusedBootstrapMethods() {
	if len(c.report.Filled) == 0 {
		return
	}
	for _, entry := range c.cp.All() {
		switch entry.Tag() {
		case classfile.ConstantDynamic, classfile.ConstantInvokeDynamic:
			return
		}
	}
	kept := c.cf.Attributes[:0:0]
	for _, attr := range c.cf.Attributes {
		if attr.Name(c.cp) == classfile.AttrBootstrapMethods {
			c.report.BootstrapMethodsRemoved = true
			continue
		}
		kept = append(kept, attr)
	}
	if c.report.BootstrapMethodsRemoved {
		c.cf.SetAttributes(kept)
		log.Debugf("removed BootstrapMethods from %s", c.cf.ClassName())
	}
}
