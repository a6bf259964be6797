package decoder

// Opcode masks. Bits outside the mask carry operand fields.
const (
	MaskNM     = 0xF00F // n, m
	MaskNMImm4 = 0xF000 // n, m, imm4
	MaskN      = 0xF0FF // n
	MaskNone   = 0xFFFF
	MaskImm8   = 0xFF00 // imm8, or m plus imm4
	MaskNImm8  = 0xF000 // n plus imm8, or imm12
	MaskNBank  = 0xF08F // n plus banked register in bits 4-6
	MaskNH3    = 0xF1FF // 3-bit n in bits 9-11
	MaskNH2    = 0xF3FF // 2-bit n in bits 10-11
)

// opTable lists every defined SH4 opcode. Cycles are issue cycles, Latency is
// result latency.
var opTable = []Op{
	{Kind: BRAF, Mask: MaskN, Key: 0x0023, Cycles: 2, Latency: 3, Class: ClassBranch | ClassDelayed | ClassReadsPC | ClassSlotIllegal, Name: "braf r{n}"},
	{Kind: BSRF, Mask: MaskN, Key: 0x0003, Cycles: 2, Latency: 3, Class: ClassBranch | ClassDelayed | ClassReadsPC | ClassSlotIllegal, Name: "bsrf r{n}"},
	{Kind: MOVCA_L, Mask: MaskN, Key: 0x00C3, Cycles: 1, Latency: 4, Name: "movca.l r0,@r{n}"},
	{Kind: OCBI, Mask: MaskN, Key: 0x0093, Cycles: 1, Latency: 2, Name: "ocbi @r{n}"},
	{Kind: OCBP, Mask: MaskN, Key: 0x00A3, Cycles: 1, Latency: 3, Name: "ocbp @r{n}"},
	{Kind: OCBWB, Mask: MaskN, Key: 0x00B3, Cycles: 1, Latency: 3, Name: "ocbwb @r{n}"},
	{Kind: PREF, Mask: MaskN, Key: 0x0083, Cycles: 1, Latency: 1, Name: "pref @r{n}"},
	{Kind: MUL_L, Mask: MaskNM, Key: 0x0007, Cycles: 2, Latency: 4, Name: "mul.l r{m},r{n}"},
	{Kind: CLRMAC, Mask: MaskNone, Key: 0x0028, Cycles: 1, Latency: 3, Name: "clrmac"},
	{Kind: CLRS, Mask: MaskNone, Key: 0x0048, Cycles: 1, Latency: 1, Name: "clrs"},
	{Kind: CLRT, Mask: MaskNone, Key: 0x0008, Cycles: 1, Latency: 1, Name: "clrt"},
	{Kind: LDTLB, Mask: MaskNone, Key: 0x0038, Cycles: 1, Latency: 1, Name: "ldtlb"},
	{Kind: SETS, Mask: MaskNone, Key: 0x0058, Cycles: 1, Latency: 1, Name: "sets"},
	{Kind: SETT, Mask: MaskNone, Key: 0x0018, Cycles: 1, Latency: 1, Name: "sett"},
	{Kind: DIV0U, Mask: MaskNone, Key: 0x0019, Cycles: 1, Latency: 1, Name: "div0u"},
	{Kind: MOVT, Mask: MaskN, Key: 0x0029, Cycles: 1, Latency: 1, Name: "movt r{n}"},
	{Kind: NOP, Mask: MaskNone, Key: 0x0009, Cycles: 1, Latency: 0, Name: "nop"},
	{Kind: NOP0, Mask: MaskNone, Key: 0x0000, Cycles: 1, Latency: 0, Name: "nop0"},
	{Kind: RTE, Mask: MaskNone, Key: 0x002B, Cycles: 5, Latency: 5, Class: ClassBranch | ClassDelayed | ClassWritesSR | ClassSlotIllegal, Name: "rte"},
	{Kind: RTS, Mask: MaskNone, Key: 0x000B, Cycles: 2, Latency: 3, Class: ClassBranch | ClassDelayed | ClassSlotIllegal, Name: "rts"},
	{Kind: SLEEP, Mask: MaskNone, Key: 0x001B, Cycles: 4, Latency: 4, Class: ClassEndsBlock, Name: "sleep"},
	{Kind: MAC_L, Mask: MaskNM, Key: 0x000F, Cycles: 2, Latency: 4, Name: "mac.l @r{m}+,@r{n}+"},
	{Kind: DIV0S, Mask: MaskNM, Key: 0x2007, Cycles: 1, Latency: 1, Name: "div0s r{m},r{n}"},
	{Kind: TST, Mask: MaskNM, Key: 0x2008, Cycles: 1, Latency: 1, Name: "tst r{m},r{n}"},
	{Kind: AND, Mask: MaskNM, Key: 0x2009, Cycles: 1, Latency: 1, Name: "and r{m},r{n}"},
	{Kind: XOR, Mask: MaskNM, Key: 0x200A, Cycles: 1, Latency: 1, Name: "xor r{m},r{n}"},
	{Kind: OR, Mask: MaskNM, Key: 0x200B, Cycles: 1, Latency: 1, Name: "or r{m},r{n}"},
	{Kind: CMP_STR, Mask: MaskNM, Key: 0x200C, Cycles: 1, Latency: 1, Name: "cmp/str r{m},r{n}"},
	{Kind: XTRCT, Mask: MaskNM, Key: 0x200D, Cycles: 1, Latency: 1, Name: "xtrct r{m},r{n}"},
	{Kind: MULU_W, Mask: MaskNM, Key: 0x200E, Cycles: 2, Latency: 4, Name: "mulu.w r{m},r{n}"},
	{Kind: MULS_W, Mask: MaskNM, Key: 0x200F, Cycles: 2, Latency: 4, Name: "muls.w r{m},r{n}"},
	{Kind: CMP_EQ, Mask: MaskNM, Key: 0x3000, Cycles: 1, Latency: 1, Name: "cmp/eq r{m},r{n}"},
	{Kind: CMP_HS, Mask: MaskNM, Key: 0x3002, Cycles: 1, Latency: 1, Name: "cmp/hs r{m},r{n}"},
	{Kind: CMP_GE, Mask: MaskNM, Key: 0x3003, Cycles: 1, Latency: 1, Name: "cmp/ge r{m},r{n}"},
	{Kind: DIV1, Mask: MaskNM, Key: 0x3004, Cycles: 1, Latency: 1, Name: "div1 r{m},r{n}"},
	{Kind: DMULU_L, Mask: MaskNM, Key: 0x3005, Cycles: 2, Latency: 4, Name: "dmulu.l r{m},r{n}"},
	{Kind: CMP_HI, Mask: MaskNM, Key: 0x3006, Cycles: 1, Latency: 1, Name: "cmp/hi r{m},r{n}"},
	{Kind: CMP_GT, Mask: MaskNM, Key: 0x3007, Cycles: 1, Latency: 1, Name: "cmp/gt r{m},r{n}"},
	{Kind: SUB, Mask: MaskNM, Key: 0x3008, Cycles: 1, Latency: 1, Name: "sub r{m},r{n}"},
	{Kind: SUBC, Mask: MaskNM, Key: 0x300A, Cycles: 1, Latency: 1, Name: "subc r{m},r{n}"},
	{Kind: SUBV, Mask: MaskNM, Key: 0x300B, Cycles: 1, Latency: 1, Name: "subv r{m},r{n}"},
	{Kind: ADD, Mask: MaskNM, Key: 0x300C, Cycles: 1, Latency: 1, Name: "add r{m},r{n}"},
	{Kind: DMULS_L, Mask: MaskNM, Key: 0x300D, Cycles: 2, Latency: 4, Name: "dmuls.l r{m},r{n}"},
	{Kind: ADDC, Mask: MaskNM, Key: 0x300E, Cycles: 1, Latency: 1, Name: "addc r{m},r{n}"},
	{Kind: ADDV, Mask: MaskNM, Key: 0x300F, Cycles: 1, Latency: 1, Name: "addv r{m},r{n}"},
	{Kind: MOVB_STORE_R0, Mask: MaskNM, Key: 0x0004, Cycles: 1, Latency: 1, Name: "mov.b r{m},@(r0,r{n})"},
	{Kind: MOVW_STORE_R0, Mask: MaskNM, Key: 0x0005, Cycles: 1, Latency: 1, Name: "mov.w r{m},@(r0,r{n})"},
	{Kind: MOVL_STORE_R0, Mask: MaskNM, Key: 0x0006, Cycles: 1, Latency: 1, Name: "mov.l r{m},@(r0,r{n})"},
	{Kind: MOVB_LOAD_R0, Mask: MaskNM, Key: 0x000C, Cycles: 1, Latency: 2, Name: "mov.b @(r0,r{m}),r{n}"},
	{Kind: MOVW_LOAD_R0, Mask: MaskNM, Key: 0x000D, Cycles: 1, Latency: 2, Name: "mov.w @(r0,r{m}),r{n}"},
	{Kind: MOVL_LOAD_R0, Mask: MaskNM, Key: 0x000E, Cycles: 1, Latency: 2, Name: "mov.l @(r0,r{m}),r{n}"},
	{Kind: MOVL_STORE_DISP, Mask: MaskNImm8, Key: 0x1000, Cycles: 1, Latency: 1, Name: "mov.l r{m},@({disp4l},r{n})"},
	{Kind: MOVL_LOAD_DISP, Mask: MaskNMImm4, Key: 0x5000, Cycles: 1, Latency: 2, Name: "mov.l @({disp4l},r{m}),r{n}"},
	{Kind: MOVB_STORE, Mask: MaskNM, Key: 0x2000, Cycles: 1, Latency: 1, Name: "mov.b r{m},@r{n}"},
	{Kind: MOVW_STORE, Mask: MaskNM, Key: 0x2001, Cycles: 1, Latency: 1, Name: "mov.w r{m},@r{n}"},
	{Kind: MOVL_STORE, Mask: MaskNM, Key: 0x2002, Cycles: 1, Latency: 1, Name: "mov.l r{m},@r{n}"},
	{Kind: MOVB_LOAD, Mask: MaskNM, Key: 0x6000, Cycles: 1, Latency: 2, Name: "mov.b @r{m},r{n}"},
	{Kind: MOVW_LOAD, Mask: MaskNM, Key: 0x6001, Cycles: 1, Latency: 2, Name: "mov.w @r{m},r{n}"},
	{Kind: MOVL_LOAD, Mask: MaskNM, Key: 0x6002, Cycles: 1, Latency: 2, Name: "mov.l @r{m},r{n}"},
	{Kind: MOVB_STORE_DEC, Mask: MaskNM, Key: 0x2004, Cycles: 1, Latency: 1, Name: "mov.b r{m},@-r{n}"},
	{Kind: MOVW_STORE_DEC, Mask: MaskNM, Key: 0x2005, Cycles: 1, Latency: 1, Name: "mov.w r{m},@-r{n}"},
	{Kind: MOVL_STORE_DEC, Mask: MaskNM, Key: 0x2006, Cycles: 1, Latency: 1, Name: "mov.l r{m},@-r{n}"},
	{Kind: MOVB_LOAD_INC, Mask: MaskNM, Key: 0x6004, Cycles: 1, Latency: 2, Name: "mov.b @r{m}+,r{n}"},
	{Kind: MOVW_LOAD_INC, Mask: MaskNM, Key: 0x6005, Cycles: 1, Latency: 2, Name: "mov.w @r{m}+,r{n}"},
	{Kind: MOVL_LOAD_INC, Mask: MaskNM, Key: 0x6006, Cycles: 1, Latency: 2, Name: "mov.l @r{m}+,r{n}"},
	{Kind: MOVB_STORE_DISP, Mask: MaskImm8, Key: 0x8000, Cycles: 1, Latency: 1, Name: "mov.b r0,@({disp4b},r{m})"},
	{Kind: MOVW_STORE_DISP, Mask: MaskImm8, Key: 0x8100, Cycles: 1, Latency: 1, Name: "mov.w r0,@({disp4w},r{m})"},
	{Kind: MOVB_LOAD_DISP, Mask: MaskImm8, Key: 0x8400, Cycles: 1, Latency: 2, Name: "mov.b @({disp4b},r{m}),r0"},
	{Kind: MOVW_LOAD_DISP, Mask: MaskImm8, Key: 0x8500, Cycles: 1, Latency: 2, Name: "mov.w @({disp4w},r{m}),r0"},
	{Kind: MOVW_LOAD_PC, Mask: MaskNImm8, Key: 0x9000, Cycles: 1, Latency: 2, Class: ClassReadsPC, Name: "mov.w @({pcw}),r{n}"},
	{Kind: MOVB_STORE_GBR, Mask: MaskImm8, Key: 0xC000, Cycles: 1, Latency: 1, Name: "mov.b r0,@({disp8b},gbr)"},
	{Kind: MOVW_STORE_GBR, Mask: MaskImm8, Key: 0xC100, Cycles: 1, Latency: 1, Name: "mov.w r0,@({disp8w},gbr)"},
	{Kind: MOVL_STORE_GBR, Mask: MaskImm8, Key: 0xC200, Cycles: 1, Latency: 1, Name: "mov.l r0,@({disp8l},gbr)"},
	{Kind: MOVB_LOAD_GBR, Mask: MaskImm8, Key: 0xC400, Cycles: 1, Latency: 2, Name: "mov.b @({disp8b},gbr),r0"},
	{Kind: MOVW_LOAD_GBR, Mask: MaskImm8, Key: 0xC500, Cycles: 1, Latency: 2, Name: "mov.w @({disp8w},gbr),r0"},
	{Kind: MOVL_LOAD_GBR, Mask: MaskImm8, Key: 0xC600, Cycles: 1, Latency: 2, Name: "mov.l @({disp8l},gbr),r0"},
	{Kind: MOVL_LOAD_PC, Mask: MaskNImm8, Key: 0xD000, Cycles: 1, Latency: 2, Class: ClassReadsPC, Name: "mov.l @({pcl}),r{n}"},
	{Kind: MOV, Mask: MaskNM, Key: 0x6003, Cycles: 1, Latency: 0, Name: "mov r{m},r{n}"},
	{Kind: MOVA, Mask: MaskImm8, Key: 0xC700, Cycles: 1, Latency: 1, Class: ClassReadsPC, Name: "mova @({pcl}),r0"},
	{Kind: MOV_IMM, Mask: MaskNImm8, Key: 0xE000, Cycles: 1, Latency: 1, Name: "mov #{simm8},r{n}"},
	{Kind: STSL_FPUL, Mask: MaskN, Key: 0x4052, Cycles: 1, Latency: 1, Class: ClassUsesFPU, Name: "sts.l fpul,@-r{n}"},
	{Kind: STSL_FPSCR, Mask: MaskN, Key: 0x4062, Cycles: 1, Latency: 1, Class: ClassUsesFPU, Name: "sts.l fpscr,@-r{n}"},
	{Kind: STSL_MACH, Mask: MaskN, Key: 0x4002, Cycles: 1, Latency: 1, Name: "sts.l mach,@-r{n}"},
	{Kind: STSL_MACL, Mask: MaskN, Key: 0x4012, Cycles: 1, Latency: 1, Name: "sts.l macl,@-r{n}"},
	{Kind: STSL_PR, Mask: MaskN, Key: 0x4022, Cycles: 2, Latency: 2, Name: "sts.l pr,@-r{n}"},
	{Kind: STCL_DBR, Mask: MaskN, Key: 0x40F2, Cycles: 2, Latency: 2, Name: "stc.l dbr,@-r{n}"},
	{Kind: STCL_SGR, Mask: MaskN, Key: 0x4032, Cycles: 3, Latency: 3, Name: "stc.l sgr,@-r{n}"},
	{Kind: STCL_SR, Mask: MaskN, Key: 0x4003, Cycles: 2, Latency: 2, Name: "stc.l sr,@-r{n}"},
	{Kind: STCL_GBR, Mask: MaskN, Key: 0x4013, Cycles: 2, Latency: 2, Name: "stc.l gbr,@-r{n}"},
	{Kind: STCL_VBR, Mask: MaskN, Key: 0x4023, Cycles: 2, Latency: 2, Name: "stc.l vbr,@-r{n}"},
	{Kind: STCL_SSR, Mask: MaskN, Key: 0x4033, Cycles: 2, Latency: 2, Name: "stc.l ssr,@-r{n}"},
	{Kind: STCL_SPC, Mask: MaskN, Key: 0x4043, Cycles: 2, Latency: 2, Name: "stc.l spc,@-r{n}"},
	{Kind: STCL_BANK, Mask: MaskNBank, Key: 0x4083, Cycles: 2, Latency: 2, Name: "stc.l r{bank}_bank,@-r{n}"},
	{Kind: LDSL_MACH, Mask: MaskN, Key: 0x4006, Cycles: 1, Latency: 3, Name: "lds.l @r{n}+,mach"},
	{Kind: LDSL_MACL, Mask: MaskN, Key: 0x4016, Cycles: 1, Latency: 3, Name: "lds.l @r{n}+,macl"},
	{Kind: LDSL_PR, Mask: MaskN, Key: 0x4026, Cycles: 2, Latency: 3, Name: "lds.l @r{n}+,pr"},
	{Kind: LDCL_SGR, Mask: MaskN, Key: 0x4036, Cycles: 3, Latency: 3, Name: "ldc.l @r{n}+,sgr"},
	{Kind: LDSL_FPUL, Mask: MaskN, Key: 0x4056, Cycles: 1, Latency: 2, Class: ClassUsesFPU, Name: "lds.l @r{n}+,fpul"},
	{Kind: LDSL_FPSCR, Mask: MaskN, Key: 0x4066, Cycles: 1, Latency: 4, Class: ClassUsesFPU | ClassWritesFPSCR | ClassEndsBlock, Name: "lds.l @r{n}+,fpscr"},
	{Kind: LDCL_DBR, Mask: MaskN, Key: 0x40F6, Cycles: 1, Latency: 3, Name: "ldc.l @r{n}+,dbr"},
	{Kind: LDCL_SR, Mask: MaskN, Key: 0x4007, Cycles: 4, Latency: 4, Class: ClassWritesSR | ClassEndsBlock | ClassSlotIllegal, Name: "ldc.l @r{n}+,sr"},
	{Kind: LDCL_GBR, Mask: MaskN, Key: 0x4017, Cycles: 3, Latency: 3, Name: "ldc.l @r{n}+,gbr"},
	{Kind: LDCL_VBR, Mask: MaskN, Key: 0x4027, Cycles: 1, Latency: 3, Name: "ldc.l @r{n}+,vbr"},
	{Kind: LDCL_SSR, Mask: MaskN, Key: 0x4037, Cycles: 1, Latency: 3, Name: "ldc.l @r{n}+,ssr"},
	{Kind: LDCL_SPC, Mask: MaskN, Key: 0x4047, Cycles: 1, Latency: 3, Name: "ldc.l @r{n}+,spc"},
	{Kind: LDCL_BANK, Mask: MaskNBank, Key: 0x4087, Cycles: 1, Latency: 3, Name: "ldc.l @r{n}+,r{bank}_bank"},
	{Kind: STC_SR, Mask: MaskN, Key: 0x0002, Cycles: 2, Latency: 2, Name: "stc sr,r{n}"},
	{Kind: STC_GBR, Mask: MaskN, Key: 0x0012, Cycles: 2, Latency: 2, Name: "stc gbr,r{n}"},
	{Kind: STC_VBR, Mask: MaskN, Key: 0x0022, Cycles: 2, Latency: 2, Name: "stc vbr,r{n}"},
	{Kind: STC_SSR, Mask: MaskN, Key: 0x0032, Cycles: 2, Latency: 2, Name: "stc ssr,r{n}"},
	{Kind: STC_SPC, Mask: MaskN, Key: 0x0042, Cycles: 2, Latency: 2, Name: "stc spc,r{n}"},
	{Kind: STC_BANK, Mask: MaskNBank, Key: 0x0082, Cycles: 2, Latency: 2, Name: "stc r{bank}_bank,r{n}"},
	{Kind: STS_MACH, Mask: MaskN, Key: 0x000A, Cycles: 1, Latency: 3, Name: "sts mach,r{n}"},
	{Kind: STS_MACL, Mask: MaskN, Key: 0x001A, Cycles: 1, Latency: 3, Name: "sts macl,r{n}"},
	{Kind: STS_PR, Mask: MaskN, Key: 0x002A, Cycles: 2, Latency: 2, Name: "sts pr,r{n}"},
	{Kind: STC_SGR, Mask: MaskN, Key: 0x003A, Cycles: 3, Latency: 3, Name: "stc sgr,r{n}"},
	{Kind: STS_FPUL, Mask: MaskN, Key: 0x005A, Cycles: 1, Latency: 3, Class: ClassUsesFPU, Name: "sts fpul,r{n}"},
	{Kind: STS_FPSCR, Mask: MaskN, Key: 0x006A, Cycles: 1, Latency: 3, Class: ClassUsesFPU, Name: "sts fpscr,r{n}"},
	{Kind: STC_DBR, Mask: MaskN, Key: 0x00FA, Cycles: 2, Latency: 2, Name: "stc dbr,r{n}"},
	{Kind: LDS_MACH, Mask: MaskN, Key: 0x400A, Cycles: 1, Latency: 3, Name: "lds r{n},mach"},
	{Kind: LDS_MACL, Mask: MaskN, Key: 0x401A, Cycles: 1, Latency: 3, Name: "lds r{n},macl"},
	{Kind: LDS_PR, Mask: MaskN, Key: 0x402A, Cycles: 2, Latency: 3, Name: "lds r{n},pr"},
	{Kind: LDC_SGR, Mask: MaskN, Key: 0x403A, Cycles: 3, Latency: 3, Name: "ldc r{n},sgr"},
	{Kind: LDS_FPUL, Mask: MaskN, Key: 0x405A, Cycles: 1, Latency: 1, Class: ClassUsesFPU, Name: "lds r{n},fpul"},
	{Kind: LDS_FPSCR, Mask: MaskN, Key: 0x406A, Cycles: 1, Latency: 4, Class: ClassUsesFPU | ClassWritesFPSCR | ClassEndsBlock, Name: "lds r{n},fpscr"},
	{Kind: LDC_DBR, Mask: MaskN, Key: 0x40FA, Cycles: 1, Latency: 3, Name: "ldc r{n},dbr"},
	{Kind: LDC_SR, Mask: MaskN, Key: 0x400E, Cycles: 4, Latency: 4, Class: ClassWritesSR | ClassEndsBlock | ClassSlotIllegal, Name: "ldc r{n},sr"},
	{Kind: LDC_GBR, Mask: MaskN, Key: 0x401E, Cycles: 3, Latency: 3, Name: "ldc r{n},gbr"},
	{Kind: LDC_VBR, Mask: MaskN, Key: 0x402E, Cycles: 1, Latency: 3, Name: "ldc r{n},vbr"},
	{Kind: LDC_SSR, Mask: MaskN, Key: 0x403E, Cycles: 1, Latency: 3, Name: "ldc r{n},ssr"},
	{Kind: LDC_SPC, Mask: MaskN, Key: 0x404E, Cycles: 1, Latency: 3, Name: "ldc r{n},spc"},
	{Kind: LDC_BANK, Mask: MaskNBank, Key: 0x408E, Cycles: 1, Latency: 3, Name: "ldc r{n},r{bank}_bank"},
	{Kind: SHLL, Mask: MaskN, Key: 0x4000, Cycles: 1, Latency: 1, Name: "shll r{n}"},
	{Kind: DT, Mask: MaskN, Key: 0x4010, Cycles: 1, Latency: 1, Name: "dt r{n}"},
	{Kind: SHAL, Mask: MaskN, Key: 0x4020, Cycles: 1, Latency: 1, Name: "shal r{n}"},
	{Kind: SHLR, Mask: MaskN, Key: 0x4001, Cycles: 1, Latency: 1, Name: "shlr r{n}"},
	{Kind: CMP_PZ, Mask: MaskN, Key: 0x4011, Cycles: 1, Latency: 1, Name: "cmp/pz r{n}"},
	{Kind: SHAR, Mask: MaskN, Key: 0x4021, Cycles: 1, Latency: 1, Name: "shar r{n}"},
	{Kind: ROTCL, Mask: MaskN, Key: 0x4024, Cycles: 1, Latency: 1, Name: "rotcl r{n}"},
	{Kind: ROTL, Mask: MaskN, Key: 0x4004, Cycles: 1, Latency: 1, Name: "rotl r{n}"},
	{Kind: CMP_PL, Mask: MaskN, Key: 0x4015, Cycles: 1, Latency: 1, Name: "cmp/pl r{n}"},
	{Kind: ROTCR, Mask: MaskN, Key: 0x4025, Cycles: 1, Latency: 1, Name: "rotcr r{n}"},
	{Kind: ROTR, Mask: MaskN, Key: 0x4005, Cycles: 1, Latency: 1, Name: "rotr r{n}"},
	{Kind: SHLL2, Mask: MaskN, Key: 0x4008, Cycles: 1, Latency: 1, Name: "shll2 r{n}"},
	{Kind: SHLL8, Mask: MaskN, Key: 0x4018, Cycles: 1, Latency: 1, Name: "shll8 r{n}"},
	{Kind: SHLL16, Mask: MaskN, Key: 0x4028, Cycles: 1, Latency: 1, Name: "shll16 r{n}"},
	{Kind: SHLR2, Mask: MaskN, Key: 0x4009, Cycles: 1, Latency: 1, Name: "shlr2 r{n}"},
	{Kind: SHLR8, Mask: MaskN, Key: 0x4019, Cycles: 1, Latency: 1, Name: "shlr8 r{n}"},
	{Kind: SHLR16, Mask: MaskN, Key: 0x4029, Cycles: 1, Latency: 1, Name: "shlr16 r{n}"},
	{Kind: JMP, Mask: MaskN, Key: 0x402B, Cycles: 2, Latency: 3, Class: ClassBranch | ClassDelayed | ClassSlotIllegal, Name: "jmp @r{n}"},
	{Kind: JSR, Mask: MaskN, Key: 0x400B, Cycles: 2, Latency: 3, Class: ClassBranch | ClassDelayed | ClassSlotIllegal, Name: "jsr @r{n}"},
	{Kind: TAS_B, Mask: MaskN, Key: 0x401B, Cycles: 5, Latency: 5, Name: "tas.b @r{n}"},
	{Kind: SHAD, Mask: MaskNM, Key: 0x400C, Cycles: 1, Latency: 1, Name: "shad r{m},r{n}"},
	{Kind: SHLD, Mask: MaskNM, Key: 0x400D, Cycles: 1, Latency: 1, Name: "shld r{m},r{n}"},
	{Kind: MAC_W, Mask: MaskNM, Key: 0x400F, Cycles: 2, Latency: 4, Name: "mac.w @r{m}+,@r{n}+"},
	{Kind: NOT, Mask: MaskNM, Key: 0x6007, Cycles: 1, Latency: 1, Name: "not r{m},r{n}"},
	{Kind: SWAP_B, Mask: MaskNM, Key: 0x6008, Cycles: 1, Latency: 1, Name: "swap.b r{m},r{n}"},
	{Kind: SWAP_W, Mask: MaskNM, Key: 0x6009, Cycles: 1, Latency: 1, Name: "swap.w r{m},r{n}"},
	{Kind: NEGC, Mask: MaskNM, Key: 0x600A, Cycles: 1, Latency: 1, Name: "negc r{m},r{n}"},
	{Kind: NEG, Mask: MaskNM, Key: 0x600B, Cycles: 1, Latency: 1, Name: "neg r{m},r{n}"},
	{Kind: EXTU_B, Mask: MaskNM, Key: 0x600C, Cycles: 1, Latency: 1, Name: "extu.b r{m},r{n}"},
	{Kind: EXTU_W, Mask: MaskNM, Key: 0x600D, Cycles: 1, Latency: 1, Name: "extu.w r{m},r{n}"},
	{Kind: EXTS_B, Mask: MaskNM, Key: 0x600E, Cycles: 1, Latency: 1, Name: "exts.b r{m},r{n}"},
	{Kind: EXTS_W, Mask: MaskNM, Key: 0x600F, Cycles: 1, Latency: 1, Name: "exts.w r{m},r{n}"},
	{Kind: ADD_IMM, Mask: MaskNImm8, Key: 0x7000, Cycles: 1, Latency: 1, Name: "add #{simm8},r{n}"},
	{Kind: BF, Mask: MaskImm8, Key: 0x8B00, Cycles: 1, Latency: 2, Class: ClassBranch | ClassConditional | ClassReadsPC | ClassSlotIllegal, Name: "bf {bdisp8}"},
	{Kind: BF_S, Mask: MaskImm8, Key: 0x8F00, Cycles: 1, Latency: 2, Class: ClassBranch | ClassConditional | ClassDelayed | ClassReadsPC | ClassSlotIllegal, Name: "bf.s {bdisp8}"},
	{Kind: BT, Mask: MaskImm8, Key: 0x8900, Cycles: 1, Latency: 2, Class: ClassBranch | ClassConditional | ClassReadsPC | ClassSlotIllegal, Name: "bt {bdisp8}"},
	{Kind: BT_S, Mask: MaskImm8, Key: 0x8D00, Cycles: 1, Latency: 2, Class: ClassBranch | ClassConditional | ClassDelayed | ClassReadsPC | ClassSlotIllegal, Name: "bt.s {bdisp8}"},
	{Kind: CMP_EQ_IMM, Mask: MaskImm8, Key: 0x8800, Cycles: 1, Latency: 1, Name: "cmp/eq #{simm8},r0"},
	{Kind: BRA, Mask: MaskNImm8, Key: 0xA000, Cycles: 1, Latency: 2, Class: ClassBranch | ClassDelayed | ClassReadsPC | ClassSlotIllegal, Name: "bra {bdisp12}"},
	{Kind: BSR, Mask: MaskNImm8, Key: 0xB000, Cycles: 1, Latency: 2, Class: ClassBranch | ClassDelayed | ClassReadsPC | ClassSlotIllegal, Name: "bsr {bdisp12}"},
	{Kind: TRAPA, Mask: MaskImm8, Key: 0xC300, Cycles: 7, Latency: 7, Class: ClassEndsBlock | ClassSlotIllegal, Name: "trapa #{imm8}"},
	{Kind: TST_IMM, Mask: MaskImm8, Key: 0xC800, Cycles: 1, Latency: 1, Name: "tst #{imm8},r0"},
	{Kind: AND_IMM, Mask: MaskImm8, Key: 0xC900, Cycles: 1, Latency: 1, Name: "and #{imm8},r0"},
	{Kind: XOR_IMM, Mask: MaskImm8, Key: 0xCA00, Cycles: 1, Latency: 1, Name: "xor #{imm8},r0"},
	{Kind: OR_IMM, Mask: MaskImm8, Key: 0xCB00, Cycles: 1, Latency: 1, Name: "or #{imm8},r0"},
	{Kind: TST_B, Mask: MaskImm8, Key: 0xCC00, Cycles: 3, Latency: 3, Name: "tst.b #{imm8},@(r0,gbr)"},
	{Kind: AND_B, Mask: MaskImm8, Key: 0xCD00, Cycles: 4, Latency: 4, Name: "and.b #{imm8},@(r0,gbr)"},
	{Kind: XOR_B, Mask: MaskImm8, Key: 0xCE00, Cycles: 4, Latency: 4, Name: "xor.b #{imm8},@(r0,gbr)"},
	{Kind: OR_B, Mask: MaskImm8, Key: 0xCF00, Cycles: 4, Latency: 4, Name: "or.b #{imm8},@(r0,gbr)"},
	{Kind: FADD, Mask: MaskNM, Key: 0xF000, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fadd {fm},{fn}"},
	{Kind: FSUB, Mask: MaskNM, Key: 0xF001, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fsub {fm},{fn}"},
	{Kind: FMUL, Mask: MaskNM, Key: 0xF002, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fmul {fm},{fn}"},
	{Kind: FDIV, Mask: MaskNM, Key: 0xF003, Cycles: 1, Latency: 13, Class: ClassUsesFPU, Name: "fdiv {fm},{fn}"},
	{Kind: FCMP_EQ, Mask: MaskNM, Key: 0xF004, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fcmp/eq {fm},{fn}"},
	{Kind: FCMP_GT, Mask: MaskNM, Key: 0xF005, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fcmp/gt {fm},{fn}"},
	{Kind: FMOV_LOAD_R0, Mask: MaskNM, Key: 0xF006, Cycles: 1, Latency: 2, Class: ClassUsesFPU, Name: "fmov.s @(r0,r{m}),{fn}"},
	{Kind: FMOV_STORE_R0, Mask: MaskNM, Key: 0xF007, Cycles: 1, Latency: 1, Class: ClassUsesFPU, Name: "fmov.s {fm},@(r0,r{n})"},
	{Kind: FMOV_LOAD, Mask: MaskNM, Key: 0xF008, Cycles: 1, Latency: 2, Class: ClassUsesFPU, Name: "fmov.s @r{m},{fn}"},
	{Kind: FMOV_LOAD_INC, Mask: MaskNM, Key: 0xF009, Cycles: 1, Latency: 2, Class: ClassUsesFPU, Name: "fmov.s @r{m}+,{fn}"},
	{Kind: FMOV_STORE, Mask: MaskNM, Key: 0xF00A, Cycles: 1, Latency: 1, Class: ClassUsesFPU, Name: "fmov.s {fm},@r{n}"},
	{Kind: FMOV_STORE_DEC, Mask: MaskNM, Key: 0xF00B, Cycles: 1, Latency: 1, Class: ClassUsesFPU, Name: "fmov.s {fm},@-r{n}"},
	{Kind: FMOV, Mask: MaskNM, Key: 0xF00C, Cycles: 1, Latency: 0, Class: ClassUsesFPU, Name: "fmov {fm},{fn}"},
	{Kind: FABS, Mask: MaskN, Key: 0xF05D, Cycles: 1, Latency: 0, Class: ClassUsesFPU, Name: "fabs {fn}"},
	{Kind: FSCA, Mask: MaskNH3, Key: 0xF0FD, Cycles: 1, Latency: 3, Class: ClassUsesFPU, Name: "fsca fpul,dr{dn}"},
	{Kind: FCNVDS, Mask: MaskN, Key: 0xF0BD, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fcnvds dr{dn},fpul"},
	{Kind: FCNVSD, Mask: MaskN, Key: 0xF0AD, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fcnvsd fpul,dr{dn}"},
	{Kind: FIPR, Mask: MaskN, Key: 0xF0ED, Cycles: 1, Latency: 5, Class: ClassUsesFPU, Name: "fipr fv{fvm},fv{fvn}"},
	{Kind: FLDI0, Mask: MaskN, Key: 0xF08D, Cycles: 1, Latency: 0, Class: ClassUsesFPU, Name: "fldi0 {fn}"},
	{Kind: FLDI1, Mask: MaskN, Key: 0xF09D, Cycles: 1, Latency: 0, Class: ClassUsesFPU, Name: "fldi1 {fn}"},
	{Kind: FLDS, Mask: MaskN, Key: 0xF01D, Cycles: 1, Latency: 0, Class: ClassUsesFPU, Name: "flds {fn},fpul"},
	{Kind: FLOAT, Mask: MaskN, Key: 0xF02D, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "float fpul,{fn}"},
	{Kind: FNEG, Mask: MaskN, Key: 0xF04D, Cycles: 1, Latency: 0, Class: ClassUsesFPU, Name: "fneg {fn}"},
	{Kind: FRCHG, Mask: MaskNone, Key: 0xFBFD, Cycles: 1, Latency: 4, Class: ClassUsesFPU | ClassWritesFPSCR | ClassEndsBlock, Name: "frchg"},
	{Kind: FSCHG, Mask: MaskNone, Key: 0xF3FD, Cycles: 1, Latency: 4, Class: ClassUsesFPU | ClassWritesFPSCR | ClassEndsBlock, Name: "fschg"},
	{Kind: FSQRT, Mask: MaskN, Key: 0xF06D, Cycles: 1, Latency: 23, Class: ClassUsesFPU, Name: "fsqrt {fn}"},
	{Kind: FTRC, Mask: MaskN, Key: 0xF03D, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "ftrc {fn},fpul"},
	{Kind: FSTS, Mask: MaskN, Key: 0xF00D, Cycles: 1, Latency: 0, Class: ClassUsesFPU, Name: "fsts fpul,{fn}"},
	{Kind: FTRV, Mask: MaskNH2, Key: 0xF1FD, Cycles: 1, Latency: 8, Class: ClassUsesFPU, Name: "ftrv xmtrx,fv{fvn}"},
	{Kind: FMAC, Mask: MaskNM, Key: 0xF00E, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fmac fr0,{fm},{fn}"},
	{Kind: FSRRA, Mask: MaskN, Key: 0xF07D, Cycles: 1, Latency: 4, Class: ClassUsesFPU, Name: "fsrra {fn}"},
}
