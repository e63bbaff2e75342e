package bytecode

import (
	"bytes"
	"fmt"
)

// Encode lays out insns from offset zero. Switch instructions are told
// their offset before they are sized, so their padding follows the layout
// being produced.
func Encode(insns []Instruction) ([]byte, error) {
	var buf bytes.Buffer
	for n, insn := range insns {
		pc := buf.Len()
		if oa, ok := insn.(OffsetAware); ok {
			oa.SetOffset(pc)
		}
		if err := insn.encode(&buf); err != nil {
			return nil, fmt.Errorf("instruction %d at pc %d: %w", n, pc, err)
		}
		if got := buf.Len() - pc; got != insn.Size() {
			return nil, fmt.Errorf("instruction %d at pc %d: %s wrote %d bytes, size is %d", n, pc, insn.Opcode(), got, insn.Size())
		}
	}
	return buf.Bytes(), nil
}

// Offsets returns the start offset of each instruction in the layout
// Encode would produce.
func Offsets(insns []Instruction) []int {
	offsets := make([]int, len(insns))
	pc := 0
	for i, insn := range insns {
		offsets[i] = pc
		if oa, ok := insn.(OffsetAware); ok {
			oa.SetOffset(pc)
		}
		pc += insn.Size()
	}
	return offsets
}
