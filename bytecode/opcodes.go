package bytecode

// Opcode is a JVM instruction opcode.
type Opcode uint8

const (
	OpNop             Opcode = 0x00
	OpAconstNull      Opcode = 0x01
	OpIconstM1        Opcode = 0x02
	OpIconst0         Opcode = 0x03
	OpIconst1         Opcode = 0x04
	OpIconst2         Opcode = 0x05
	OpIconst3         Opcode = 0x06
	OpIconst4         Opcode = 0x07
	OpIconst5         Opcode = 0x08
	OpLconst0         Opcode = 0x09
	OpLconst1         Opcode = 0x0A
	OpFconst0         Opcode = 0x0B
	OpFconst1         Opcode = 0x0C
	OpFconst2         Opcode = 0x0D
	OpDconst0         Opcode = 0x0E
	OpDconst1         Opcode = 0x0F
	OpBipush          Opcode = 0x10
	OpSipush          Opcode = 0x11
	OpLdc             Opcode = 0x12
	OpLdcW            Opcode = 0x13
	OpLdc2W           Opcode = 0x14
	OpIload           Opcode = 0x15
	OpLload           Opcode = 0x16
	OpFload           Opcode = 0x17
	OpDload           Opcode = 0x18
	OpAload           Opcode = 0x19
	OpIload0          Opcode = 0x1A
	OpIload1          Opcode = 0x1B
	OpIload2          Opcode = 0x1C
	OpIload3          Opcode = 0x1D
	OpLload0          Opcode = 0x1E
	OpLload1          Opcode = 0x1F
	OpLload2          Opcode = 0x20
	OpLload3          Opcode = 0x21
	OpFload0          Opcode = 0x22
	OpFload1          Opcode = 0x23
	OpFload2          Opcode = 0x24
	OpFload3          Opcode = 0x25
	OpDload0          Opcode = 0x26
	OpDload1          Opcode = 0x27
	OpDload2          Opcode = 0x28
	OpDload3          Opcode = 0x29
	OpAload0          Opcode = 0x2A
	OpAload1          Opcode = 0x2B
	OpAload2          Opcode = 0x2C
	OpAload3          Opcode = 0x2D
	OpIaload          Opcode = 0x2E
	OpLaload          Opcode = 0x2F
	OpFaload          Opcode = 0x30
	OpDaload          Opcode = 0x31
	OpAaload          Opcode = 0x32
	OpBaload          Opcode = 0x33
	OpCaload          Opcode = 0x34
	OpSaload          Opcode = 0x35
	OpIstore          Opcode = 0x36
	OpLstore          Opcode = 0x37
	OpFstore          Opcode = 0x38
	OpDstore          Opcode = 0x39
	OpAstore          Opcode = 0x3A
	OpIstore0         Opcode = 0x3B
	OpIstore1         Opcode = 0x3C
	OpIstore2         Opcode = 0x3D
	OpIstore3         Opcode = 0x3E
	OpLstore0         Opcode = 0x3F
	OpLstore1         Opcode = 0x40
	OpLstore2         Opcode = 0x41
	OpLstore3         Opcode = 0x42
	OpFstore0         Opcode = 0x43
	OpFstore1         Opcode = 0x44
	OpFstore2         Opcode = 0x45
	OpFstore3         Opcode = 0x46
	OpDstore0         Opcode = 0x47
	OpDstore1         Opcode = 0x48
	OpDstore2         Opcode = 0x49
	OpDstore3         Opcode = 0x4A
	OpAstore0         Opcode = 0x4B
	OpAstore1         Opcode = 0x4C
	OpAstore2         Opcode = 0x4D
	OpAstore3         Opcode = 0x4E
	OpIastore         Opcode = 0x4F
	OpLastore         Opcode = 0x50
	OpFastore         Opcode = 0x51
	OpDastore         Opcode = 0x52
	OpAastore         Opcode = 0x53
	OpBastore         Opcode = 0x54
	OpCastore         Opcode = 0x55
	OpSastore         Opcode = 0x56
	OpPop             Opcode = 0x57
	OpPop2            Opcode = 0x58
	OpDup             Opcode = 0x59
	OpDupX1           Opcode = 0x5A
	OpDupX2           Opcode = 0x5B
	OpDup2            Opcode = 0x5C
	OpDup2X1          Opcode = 0x5D
	OpDup2X2          Opcode = 0x5E
	OpSwap            Opcode = 0x5F
	OpIadd            Opcode = 0x60
	OpLadd            Opcode = 0x61
	OpFadd            Opcode = 0x62
	OpDadd            Opcode = 0x63
	OpIsub            Opcode = 0x64
	OpLsub            Opcode = 0x65
	OpFsub            Opcode = 0x66
	OpDsub            Opcode = 0x67
	OpImul            Opcode = 0x68
	OpLmul            Opcode = 0x69
	OpFmul            Opcode = 0x6A
	OpDmul            Opcode = 0x6B
	OpIdiv            Opcode = 0x6C
	OpLdiv            Opcode = 0x6D
	OpFdiv            Opcode = 0x6E
	OpDdiv            Opcode = 0x6F
	OpIrem            Opcode = 0x70
	OpLrem            Opcode = 0x71
	OpFrem            Opcode = 0x72
	OpDrem            Opcode = 0x73
	OpIneg            Opcode = 0x74
	OpLneg            Opcode = 0x75
	OpFneg            Opcode = 0x76
	OpDneg            Opcode = 0x77
	OpIshl            Opcode = 0x78
	OpLshl            Opcode = 0x79
	OpIshr            Opcode = 0x7A
	OpLshr            Opcode = 0x7B
	OpIushr           Opcode = 0x7C
	OpLushr           Opcode = 0x7D
	OpIand            Opcode = 0x7E
	OpLand            Opcode = 0x7F
	OpIor             Opcode = 0x80
	OpLor             Opcode = 0x81
	OpIxor            Opcode = 0x82
	OpLxor            Opcode = 0x83
	OpIinc            Opcode = 0x84
	OpI2l             Opcode = 0x85
	OpI2f             Opcode = 0x86
	OpI2d             Opcode = 0x87
	OpL2i             Opcode = 0x88
	OpL2f             Opcode = 0x89
	OpL2d             Opcode = 0x8A
	OpF2i             Opcode = 0x8B
	OpF2l             Opcode = 0x8C
	OpF2d             Opcode = 0x8D
	OpD2i             Opcode = 0x8E
	OpD2l             Opcode = 0x8F
	OpD2f             Opcode = 0x90
	OpI2b             Opcode = 0x91
	OpI2c             Opcode = 0x92
	OpI2s             Opcode = 0x93
	OpLcmp            Opcode = 0x94
	OpFcmpl           Opcode = 0x95
	OpFcmpg           Opcode = 0x96
	OpDcmpl           Opcode = 0x97
	OpDcmpg           Opcode = 0x98
	OpIfeq            Opcode = 0x99
	OpIfne            Opcode = 0x9A
	OpIflt            Opcode = 0x9B
	OpIfge            Opcode = 0x9C
	OpIfgt            Opcode = 0x9D
	OpIfle            Opcode = 0x9E
	OpIfIcmpeq        Opcode = 0x9F
	OpIfIcmpne        Opcode = 0xA0
	OpIfIcmplt        Opcode = 0xA1
	OpIfIcmpge        Opcode = 0xA2
	OpIfIcmpgt        Opcode = 0xA3
	OpIfIcmple        Opcode = 0xA4
	OpIfAcmpeq        Opcode = 0xA5
	OpIfAcmpne        Opcode = 0xA6
	OpGoto            Opcode = 0xA7
	OpJsr             Opcode = 0xA8
	OpRet             Opcode = 0xA9
	OpTableswitch     Opcode = 0xAA
	OpLookupswitch    Opcode = 0xAB
	OpIreturn         Opcode = 0xAC
	OpLreturn         Opcode = 0xAD
	OpFreturn         Opcode = 0xAE
	OpDreturn         Opcode = 0xAF
	OpAreturn         Opcode = 0xB0
	OpReturn          Opcode = 0xB1
	OpGetstatic       Opcode = 0xB2
	OpPutstatic       Opcode = 0xB3
	OpGetfield        Opcode = 0xB4
	OpPutfield        Opcode = 0xB5
	OpInvokevirtual   Opcode = 0xB6
	OpInvokespecial   Opcode = 0xB7
	OpInvokestatic    Opcode = 0xB8
	OpInvokeinterface Opcode = 0xB9
	OpInvokedynamic   Opcode = 0xBA
	OpNew             Opcode = 0xBB
	OpNewarray        Opcode = 0xBC
	OpAnewarray       Opcode = 0xBD
	OpArraylength     Opcode = 0xBE
	OpAthrow          Opcode = 0xBF
	OpCheckcast       Opcode = 0xC0
	OpInstanceof      Opcode = 0xC1
	OpMonitorenter    Opcode = 0xC2
	OpMonitorexit     Opcode = 0xC3
	OpWide            Opcode = 0xC4
	OpMultianewarray  Opcode = 0xC5
	OpIfnull          Opcode = 0xC6
	OpIfnonnull       Opcode = 0xC7
	OpGotoW           Opcode = 0xC8
	OpJsrW            Opcode = 0xC9
)

// operandShape says how the bytes after an opcode are laid out.
type operandShape uint8

const (
	shapeInvalid operandShape = iota
	shapeNone
	shapeLocal
	shapeByte
	shapeArrayType
	shapeShort
	shapeBranch
	shapeBranchWide
	shapeConstant1
	shapeConstant2
	shapeInvokeInterface
	shapeInvokeDynamic
	shapeMultiANewArray
	shapeIinc
	shapeTableSwitch
	shapeLookupSwitch
	shapeWide
)

type opInfo struct {
	name  string
	shape operandShape
}

// opcodes is indexed by opcode. Values without an entry are not standard
// instructions.
var opcodes = [256]opInfo{
	OpNop:             {"nop", shapeNone},
	OpAconstNull:      {"aconst_null", shapeNone},
	OpIconstM1:        {"iconst_m1", shapeNone},
	OpIconst0:         {"iconst_0", shapeNone},
	OpIconst1:         {"iconst_1", shapeNone},
	OpIconst2:         {"iconst_2", shapeNone},
	OpIconst3:         {"iconst_3", shapeNone},
	OpIconst4:         {"iconst_4", shapeNone},
	OpIconst5:         {"iconst_5", shapeNone},
	OpLconst0:         {"lconst_0", shapeNone},
	OpLconst1:         {"lconst_1", shapeNone},
	OpFconst0:         {"fconst_0", shapeNone},
	OpFconst1:         {"fconst_1", shapeNone},
	OpFconst2:         {"fconst_2", shapeNone},
	OpDconst0:         {"dconst_0", shapeNone},
	OpDconst1:         {"dconst_1", shapeNone},
	OpBipush:          {"bipush", shapeByte},
	OpSipush:          {"sipush", shapeShort},
	OpLdc:             {"ldc", shapeConstant1},
	OpLdcW:            {"ldc_w", shapeConstant2},
	OpLdc2W:           {"ldc2_w", shapeConstant2},
	OpIload:           {"iload", shapeLocal},
	OpLload:           {"lload", shapeLocal},
	OpFload:           {"fload", shapeLocal},
	OpDload:           {"dload", shapeLocal},
	OpAload:           {"aload", shapeLocal},
	OpIload0:          {"iload_0", shapeNone},
	OpIload1:          {"iload_1", shapeNone},
	OpIload2:          {"iload_2", shapeNone},
	OpIload3:          {"iload_3", shapeNone},
	OpLload0:          {"lload_0", shapeNone},
	OpLload1:          {"lload_1", shapeNone},
	OpLload2:          {"lload_2", shapeNone},
	OpLload3:          {"lload_3", shapeNone},
	OpFload0:          {"fload_0", shapeNone},
	OpFload1:          {"fload_1", shapeNone},
	OpFload2:          {"fload_2", shapeNone},
	OpFload3:          {"fload_3", shapeNone},
	OpDload0:          {"dload_0", shapeNone},
	OpDload1:          {"dload_1", shapeNone},
	OpDload2:          {"dload_2", shapeNone},
	OpDload3:          {"dload_3", shapeNone},
	OpAload0:          {"aload_0", shapeNone},
	OpAload1:          {"aload_1", shapeNone},
	OpAload2:          {"aload_2", shapeNone},
	OpAload3:          {"aload_3", shapeNone},
	OpIaload:          {"iaload", shapeNone},
	OpLaload:          {"laload", shapeNone},
	OpFaload:          {"faload", shapeNone},
	OpDaload:          {"daload", shapeNone},
	OpAaload:          {"aaload", shapeNone},
	OpBaload:          {"baload", shapeNone},
	OpCaload:          {"caload", shapeNone},
	OpSaload:          {"saload", shapeNone},
	OpIstore:          {"istore", shapeLocal},
	OpLstore:          {"lstore", shapeLocal},
	OpFstore:          {"fstore", shapeLocal},
	OpDstore:          {"dstore", shapeLocal},
	OpAstore:          {"astore", shapeLocal},
	OpIstore0:         {"istore_0", shapeNone},
	OpIstore1:         {"istore_1", shapeNone},
	OpIstore2:         {"istore_2", shapeNone},
	OpIstore3:         {"istore_3", shapeNone},
	OpLstore0:         {"lstore_0", shapeNone},
	OpLstore1:         {"lstore_1", shapeNone},
	OpLstore2:         {"lstore_2", shapeNone},
	OpLstore3:         {"lstore_3", shapeNone},
	OpFstore0:         {"fstore_0", shapeNone},
	OpFstore1:         {"fstore_1", shapeNone},
	OpFstore2:         {"fstore_2", shapeNone},
	OpFstore3:         {"fstore_3", shapeNone},
	OpDstore0:         {"dstore_0", shapeNone},
	OpDstore1:         {"dstore_1", shapeNone},
	OpDstore2:         {"dstore_2", shapeNone},
	OpDstore3:         {"dstore_3", shapeNone},
	OpAstore0:         {"astore_0", shapeNone},
	OpAstore1:         {"astore_1", shapeNone},
	OpAstore2:         {"astore_2", shapeNone},
	OpAstore3:         {"astore_3", shapeNone},
	OpIastore:         {"iastore", shapeNone},
	OpLastore:         {"lastore", shapeNone},
	OpFastore:         {"fastore", shapeNone},
	OpDastore:         {"dastore", shapeNone},
	OpAastore:         {"aastore", shapeNone},
	OpBastore:         {"bastore", shapeNone},
	OpCastore:         {"castore", shapeNone},
	OpSastore:         {"sastore", shapeNone},
	OpPop:             {"pop", shapeNone},
	OpPop2:            {"pop2", shapeNone},
	OpDup:             {"dup", shapeNone},
	OpDupX1:           {"dup_x1", shapeNone},
	OpDupX2:           {"dup_x2", shapeNone},
	OpDup2:            {"dup2", shapeNone},
	OpDup2X1:          {"dup2_x1", shapeNone},
	OpDup2X2:          {"dup2_x2", shapeNone},
	OpSwap:            {"swap", shapeNone},
	OpIadd:            {"iadd", shapeNone},
	OpLadd:            {"ladd", shapeNone},
	OpFadd:            {"fadd", shapeNone},
	OpDadd:            {"dadd", shapeNone},
	OpIsub:            {"isub", shapeNone},
	OpLsub:            {"lsub", shapeNone},
	OpFsub:            {"fsub", shapeNone},
	OpDsub:            {"dsub", shapeNone},
	OpImul:            {"imul", shapeNone},
	OpLmul:            {"lmul", shapeNone},
	OpFmul:            {"fmul", shapeNone},
	OpDmul:            {"dmul", shapeNone},
	OpIdiv:            {"idiv", shapeNone},
	OpLdiv:            {"ldiv", shapeNone},
	OpFdiv:            {"fdiv", shapeNone},
	OpDdiv:            {"ddiv", shapeNone},
	OpIrem:            {"irem", shapeNone},
	OpLrem:            {"lrem", shapeNone},
	OpFrem:            {"frem", shapeNone},
	OpDrem:            {"drem", shapeNone},
	OpIneg:            {"ineg", shapeNone},
	OpLneg:            {"lneg", shapeNone},
	OpFneg:            {"fneg", shapeNone},
	OpDneg:            {"dneg", shapeNone},
	OpIshl:            {"ishl", shapeNone},
	OpLshl:            {"lshl", shapeNone},
	OpIshr:            {"ishr", shapeNone},
	OpLshr:            {"lshr", shapeNone},
	OpIushr:           {"iushr", shapeNone},
	OpLushr:           {"lushr", shapeNone},
	OpIand:            {"iand", shapeNone},
	OpLand:            {"land", shapeNone},
	OpIor:             {"ior", shapeNone},
	OpLor:             {"lor", shapeNone},
	OpIxor:            {"ixor", shapeNone},
	OpLxor:            {"lxor", shapeNone},
	OpIinc:            {"iinc", shapeIinc},
	OpI2l:             {"i2l", shapeNone},
	OpI2f:             {"i2f", shapeNone},
	OpI2d:             {"i2d", shapeNone},
	OpL2i:             {"l2i", shapeNone},
	OpL2f:             {"l2f", shapeNone},
	OpL2d:             {"l2d", shapeNone},
	OpF2i:             {"f2i", shapeNone},
	OpF2l:             {"f2l", shapeNone},
	OpF2d:             {"f2d", shapeNone},
	OpD2i:             {"d2i", shapeNone},
	OpD2l:             {"d2l", shapeNone},
	OpD2f:             {"d2f", shapeNone},
	OpI2b:             {"i2b", shapeNone},
	OpI2c:             {"i2c", shapeNone},
	OpI2s:             {"i2s", shapeNone},
	OpLcmp:            {"lcmp", shapeNone},
	OpFcmpl:           {"fcmpl", shapeNone},
	OpFcmpg:           {"fcmpg", shapeNone},
	OpDcmpl:           {"dcmpl", shapeNone},
	OpDcmpg:           {"dcmpg", shapeNone},
	OpIfeq:            {"ifeq", shapeBranch},
	OpIfne:            {"ifne", shapeBranch},
	OpIflt:            {"iflt", shapeBranch},
	OpIfge:            {"ifge", shapeBranch},
	OpIfgt:            {"ifgt", shapeBranch},
	OpIfle:            {"ifle", shapeBranch},
	OpIfIcmpeq:        {"if_icmpeq", shapeBranch},
	OpIfIcmpne:        {"if_icmpne", shapeBranch},
	OpIfIcmplt:        {"if_icmplt", shapeBranch},
	OpIfIcmpge:        {"if_icmpge", shapeBranch},
	OpIfIcmpgt:        {"if_icmpgt", shapeBranch},
	OpIfIcmple:        {"if_icmple", shapeBranch},
	OpIfAcmpeq:        {"if_acmpeq", shapeBranch},
	OpIfAcmpne:        {"if_acmpne", shapeBranch},
	OpGoto:            {"goto", shapeBranch},
	OpJsr:             {"jsr", shapeBranch},
	OpRet:             {"ret", shapeLocal},
	OpTableswitch:     {"tableswitch", shapeTableSwitch},
	OpLookupswitch:    {"lookupswitch", shapeLookupSwitch},
	OpIreturn:         {"ireturn", shapeNone},
	OpLreturn:         {"lreturn", shapeNone},
	OpFreturn:         {"freturn", shapeNone},
	OpDreturn:         {"dreturn", shapeNone},
	OpAreturn:         {"areturn", shapeNone},
	OpReturn:          {"return", shapeNone},
	OpGetstatic:       {"getstatic", shapeConstant2},
	OpPutstatic:       {"putstatic", shapeConstant2},
	OpGetfield:        {"getfield", shapeConstant2},
	OpPutfield:        {"putfield", shapeConstant2},
	OpInvokevirtual:   {"invokevirtual", shapeConstant2},
	OpInvokespecial:   {"invokespecial", shapeConstant2},
	OpInvokestatic:    {"invokestatic", shapeConstant2},
	OpInvokeinterface: {"invokeinterface", shapeInvokeInterface},
	OpInvokedynamic:   {"invokedynamic", shapeInvokeDynamic},
	OpNew:             {"new", shapeConstant2},
	OpNewarray:        {"newarray", shapeArrayType},
	OpAnewarray:       {"anewarray", shapeConstant2},
	OpArraylength:     {"arraylength", shapeNone},
	OpAthrow:          {"athrow", shapeNone},
	OpCheckcast:       {"checkcast", shapeConstant2},
	OpInstanceof:      {"instanceof", shapeConstant2},
	OpMonitorenter:    {"monitorenter", shapeNone},
	OpMonitorexit:     {"monitorexit", shapeNone},
	OpWide:            {"wide", shapeWide},
	OpMultianewarray:  {"multianewarray", shapeMultiANewArray},
	OpIfnull:          {"ifnull", shapeBranch},
	OpIfnonnull:       {"ifnonnull", shapeBranch},
	OpGotoW:           {"goto_w", shapeBranchWide},
	OpJsrW:            {"jsr_w", shapeBranchWide},
}
