package x64

// REX prefix bits
const (
	X86_REX_BASE = 0x40
	X86_REX_W    = 0x08 // 64-bit operand size
	X86_REX_R    = 0x04 // extension of ModRM reg
	X86_REX_X    = 0x02 // extension of SIB index
	X86_REX_B    = 0x01 // extension of ModRM r/m or opcode reg
)

// ModRM modes
const (
	X86_MOD_INDIRECT        = 0x00
	X86_MOD_INDIRECT_DISP8  = 0x01
	X86_MOD_INDIRECT_DISP32 = 0x02
	X86_MOD_REGISTER        = 0x03

	X86_RM_RIP = 0x05 // mod=00 rm=101: [rip+disp32]
)

// Primary opcodes
const (
	X86_OP_ADD_RM_R        = 0x01
	X86_OP_OR_RM_R         = 0x09
	X86_OP_AND_RM_R        = 0x21
	X86_OP_SUB_RM_R        = 0x29
	X86_OP_XOR_RM_R        = 0x31
	X86_OP_CMP_RM_R        = 0x39
	X86_OP_CMP_R_RM        = 0x3B
	X86_OP_GROUP1_RM_IMM32 = 0x81
	X86_OP_TEST_RM_R       = 0x85
	X86_OP_NOP             = 0x90
	X86_OP_MOV_RM8_R8      = 0x88
	X86_OP_MOV_RM_R        = 0x89
	X86_OP_MOV_R_RM        = 0x8B
	X86_OP_MOV_R_IMM       = 0xB8 // + reg
	X86_OP_GROUP2_RM_IMM8  = 0xC1
	X86_OP_GROUP2_RM_1     = 0xD1
	X86_OP_GROUP2_RM_CL    = 0xD3
	X86_OP_JMP_REL8        = 0xEB
	X86_OP_JMP_REL32       = 0xE9
	X86_OP_JCC_REL8        = 0x70 // + cc
	X86_OP_RET             = 0xC3
	X86_OP_GROUP3_RM       = 0xF7
	X86_OP_GROUP5_RM       = 0xFF
)

// Two-byte opcodes, after 0x0F
const (
	X86_OP2_MOVD_X_RM    = 0x6E // movd/movq xmm, r/m
	X86_OP2_MOVD_RM_X    = 0x7E // movd/movq r/m, xmm
	X86_OP2_CVTSI2S      = 0x2A
	X86_OP2_UCOMIS       = 0x2E
	X86_OP2_SQRT         = 0x51
	X86_OP2_ADD          = 0x58
	X86_OP2_MUL          = 0x59
	X86_OP2_CVTS2S       = 0x5A
	X86_OP2_SUB          = 0x5C
	X86_OP2_DIV          = 0x5E
	X86_OP2_CMOVA        = 0x47
	X86_OP2_JCC_REL32    = 0x80 // + cc
	X86_OP2_SETCC        = 0x90 // + cc
	X86_OP2_IMUL_R_RM    = 0xAF
	X86_OP2_MOVZX_R_RM8  = 0xB6
	X86_OP2_MOVZX_R_RM16 = 0xB7
	X86_OP2_MOVSX_R_RM8  = 0xBE
	X86_OP2_MOVSX_R_RM16 = 0xBF
)

// ModRM reg field for group opcodes
const (
	X86_REG_AND = 4 // group 1
	X86_REG_CMP = 7

	X86_REG_SHL = 4 // group 2
	X86_REG_SHR = 5
	X86_REG_SAR = 7

	X86_REG_NOT = 2 // group 3
	X86_REG_NEG = 3

	X86_REG_JMP_RM = 4 // group 5
)

// Prefixes
const (
	X86_PREFIX_0F    = 0x0F
	X86_PREFIX_66    = 0x66
	X86_PREFIX_REPNE = 0xF2 // scalar double
	X86_PREFIX_REP   = 0xF3 // scalar single
)

// Cond is the low nibble of a Jcc or SETcc opcode.
type Cond byte

const (
	CondO  Cond = 0x0
	CondB  Cond = 0x2
	CondAE Cond = 0x3
	CondE  Cond = 0x4
	CondNE Cond = 0x5
	CondBE Cond = 0x6
	CondA  Cond = 0x7
	CondS  Cond = 0x8
	CondP  Cond = 0xA
	CondNP Cond = 0xB
	CondL  Cond = 0xC
	CondGE Cond = 0xD
	CondLE Cond = 0xE
	CondG  Cond = 0xF
)
