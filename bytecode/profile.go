package bytecode

import (
	"fmt"
	"strings"
)

// Profile is one VM generation's numbering of its internal opcodes. Only
// the opcodes that have a standard equivalent are named; every other value
// from 0xCA up is rejected.
type Profile struct {
	Name string

	// Breakpoint is followed by one operand byte and becomes two nops.
	Breakpoint Opcode
	// FastAload0 becomes aload_0.
	FastAload0 Opcode
	// FastAldc and FastAldcW carry a resolved-reference ordinal and become
	// ldc and ldc_w.
	FastAldc  Opcode
	FastAldcW Opcode
	// ReturnRegisterFinalizer becomes return.
	ReturnRegisterFinalizer Opcode
	// ShouldNotReachHere becomes nop.
	ShouldNotReachHere Opcode
	// Last is the highest internal opcode the VM assigns.
	Last Opcode
}

// HotSpot8 follows the JDK 8 bytecode numbering, which has no
// fast_zputfield and no nofast_* opcodes.
var HotSpot8 = Profile{
	Name:                    "hotspot8",
	Breakpoint:              0xCA,
	FastAload0:              0xDB,
	FastAldc:                0xE5,
	FastAldcW:               0xE6,
	ReturnRegisterFinalizer: 0xE7,
	ShouldNotReachHere:      0xE9,
	Last:                    0xE9,
}

// HotSpot11 follows the JDK 11 and later numbering.
var HotSpot11 = Profile{
	Name:                    "hotspot11",
	Breakpoint:              0xCA,
	FastAload0:              0xDC,
	FastAldc:                0xE6,
	FastAldcW:               0xE7,
	ReturnRegisterFinalizer: 0xE8,
	ShouldNotReachHere:      0xEE,
	Last:                    0xEE,
}

// DefaultProfile is used when no profile is given.
var DefaultProfile = HotSpot11

var profiles = map[string]Profile{
	HotSpot8.Name:  HotSpot8,
	HotSpot11.Name: HotSpot11,
}

// LookupProfile finds a built-in profile by name, ignoring case.
func LookupProfile(name string) (Profile, error) {
	if p, ok := profiles[strings.ToLower(name)]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("unknown VM profile %q", name)
}

// rewrite returns the standard opcode a reserved opcode stands for and how
// many bytes the reserved form occupies.
func (p Profile) rewrite(op Opcode) (Opcode, int, bool) {
	switch op {
	case p.Breakpoint:
		return OpNop, 2, true
	case p.FastAload0:
		return OpAload0, 1, true
	case p.FastAldc:
		return OpLdc, 2, true
	case p.FastAldcW:
		return OpLdcW, 3, true
	case p.ReturnRegisterFinalizer:
		return OpReturn, 1, true
	case p.ShouldNotReachHere:
		return OpNop, 1, true
	}
	return 0, 0, false
}
