package strip

import (
	"github.com/dhamidi/classguard/bytecode"
	"github.com/dhamidi/classguard/classfile"
)

// referenced returns every pool index the class reaches from its header,
// members, attributes and instructions, closed over references between
// pool entries.
func (c *checker) referenced() map[uint16]bool {
	seen := make(map[uint16]bool)
	var visit func(index uint16)
	visit = func(index uint16) {
		if index == 0 || seen[index] {
			return
		}
		entry, err := c.cp.Get(index)
		if err != nil {
			return
		}
		seen[index] = true
		if x, ok := entry.(classfile.CrossReferencing); ok {
			for _, ref := range x.References() {
				visit(ref.Index())
			}
		}
	}
	visitAll := func(indices []uint16) {
		for _, index := range indices {
			visit(index)
		}
	}

	cf := c.cf
	visit(cf.ThisClass)
	visit(cf.SuperClass)
	visitAll(cf.Interfaces)
	for _, f := range cf.Fields {
		visit(f.NameIndex)
		visit(f.DescriptorIndex)
	}
	for _, m := range cf.Methods {
		visit(m.NameIndex)
		visit(m.DescriptorIndex)
	}
	for _, h := range cf.Holders() {
		for _, attr := range h.GetAttributes() {
			visit(attr.NameIndex)
			if attr.Parsed == nil {
				continue
			}
			visitAll(attr.Parsed.PoolReferences())
			if code, ok := attr.Parsed.(*classfile.CodeAttribute); ok {
				visitAll(bytecode.PoolReferences(c.decoded[code]))
			}
		}
	}
	return seen
}
