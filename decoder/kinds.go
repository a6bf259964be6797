package decoder

// Kind identifies one opcode descriptor. Handler tables are indexed by Kind.
type Kind uint16

const (
	ILLEGAL Kind = iota

	// System and cache control, group 0.
	BRAF
	BSRF
	MOVCA_L
	OCBI
	OCBP
	OCBWB
	PREF
	MUL_L
	CLRMAC
	CLRS
	CLRT
	LDTLB
	SETS
	SETT
	DIV0U
	MOVT
	NOP
	NOP0
	RTE
	RTS
	SLEEP
	MAC_L

	// Logic, compare and multiply on register pairs.
	DIV0S
	TST
	AND
	XOR
	OR
	CMP_STR
	XTRCT
	MULU_W
	MULS_W
	CMP_EQ
	CMP_HS
	CMP_GE
	DIV1
	DMULU_L
	CMP_HI
	CMP_GT
	SUB
	SUBC
	SUBV
	ADD
	DMULS_L
	ADDC
	ADDV

	// Data transfer.
	MOVB_STORE_R0
	MOVW_STORE_R0
	MOVL_STORE_R0
	MOVB_LOAD_R0
	MOVW_LOAD_R0
	MOVL_LOAD_R0
	MOVL_STORE_DISP
	MOVL_LOAD_DISP
	MOVB_STORE
	MOVW_STORE
	MOVL_STORE
	MOVB_LOAD
	MOVW_LOAD
	MOVL_LOAD
	MOVB_STORE_DEC
	MOVW_STORE_DEC
	MOVL_STORE_DEC
	MOVB_LOAD_INC
	MOVW_LOAD_INC
	MOVL_LOAD_INC
	MOVB_STORE_DISP
	MOVW_STORE_DISP
	MOVB_LOAD_DISP
	MOVW_LOAD_DISP
	MOVW_LOAD_PC
	MOVB_STORE_GBR
	MOVW_STORE_GBR
	MOVL_STORE_GBR
	MOVB_LOAD_GBR
	MOVW_LOAD_GBR
	MOVL_LOAD_GBR
	MOVL_LOAD_PC

	// Register and immediate moves.
	MOV
	MOVA
	MOV_IMM

	// Control and system register transfer.
	STSL_FPUL
	STSL_FPSCR
	STSL_MACH
	STSL_MACL
	STSL_PR
	STCL_DBR
	STCL_SGR
	STCL_SR
	STCL_GBR
	STCL_VBR
	STCL_SSR
	STCL_SPC
	STCL_BANK
	LDSL_MACH
	LDSL_MACL
	LDSL_PR
	LDCL_SGR
	LDSL_FPUL
	LDSL_FPSCR
	LDCL_DBR
	LDCL_SR
	LDCL_GBR
	LDCL_VBR
	LDCL_SSR
	LDCL_SPC
	LDCL_BANK
	STC_SR
	STC_GBR
	STC_VBR
	STC_SSR
	STC_SPC
	STC_BANK
	STS_MACH
	STS_MACL
	STS_PR
	STC_SGR
	STS_FPUL
	STS_FPSCR
	STC_DBR
	LDS_MACH
	LDS_MACL
	LDS_PR
	LDC_SGR
	LDS_FPUL
	LDS_FPSCR
	LDC_DBR
	LDC_SR
	LDC_GBR
	LDC_VBR
	LDC_SSR
	LDC_SPC
	LDC_BANK

	// Shifts, rotates and register-to-register operations.
	SHLL
	DT
	SHAL
	SHLR
	CMP_PZ
	SHAR
	ROTCL
	ROTL
	CMP_PL
	ROTCR
	ROTR
	SHLL2
	SHLL8
	SHLL16
	SHLR2
	SHLR8
	SHLR16
	JMP
	JSR
	TAS_B
	SHAD
	SHLD
	MAC_W
	NOT
	SWAP_B
	SWAP_W
	NEGC
	NEG
	EXTU_B
	EXTU_W
	EXTS_B
	EXTS_W

	// Immediate forms and PC-relative branches.
	ADD_IMM
	BF
	BF_S
	BT
	BT_S
	CMP_EQ_IMM
	BRA
	BSR
	TRAPA
	TST_IMM
	AND_IMM
	XOR_IMM
	OR_IMM
	TST_B
	AND_B
	XOR_B
	OR_B

	// Floating point.
	FADD
	FSUB
	FMUL
	FDIV
	FCMP_EQ
	FCMP_GT
	FMOV_LOAD_R0
	FMOV_STORE_R0
	FMOV_LOAD
	FMOV_LOAD_INC
	FMOV_STORE
	FMOV_STORE_DEC
	FMOV
	FABS
	FSCA
	FCNVDS
	FCNVSD
	FIPR
	FLDI0
	FLDI1
	FLDS
	FLOAT
	FNEG
	FRCHG
	FSCHG
	FSQRT
	FTRC
	FSTS
	FTRV
	FMAC
	FSRRA

	NumKinds
)

