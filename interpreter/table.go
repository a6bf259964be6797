package interpreter

import (
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
)

func init() {
	initHandlerTable()
}

type handler func(in *Interpreter, c *cpu.Context, op uint16)

var handlers [decoder.NumKinds]handler

// Implemented reports whether kind k has a handler.
func Implemented(k decoder.Kind) bool {
	return k < decoder.NumKinds && handlers[k] != nil
}

func initHandlerTable() {
	handlers[decoder.ILLEGAL] = opILLEGAL

	// Branches
	handlers[decoder.BRA] = opBRA
	handlers[decoder.BSR] = opBSR
	handlers[decoder.BRAF] = opBRAF
	handlers[decoder.BSRF] = opBSRF
	handlers[decoder.JMP] = opJMP
	handlers[decoder.JSR] = opJSR
	handlers[decoder.RTS] = opRTS
	handlers[decoder.RTE] = opRTE
	handlers[decoder.BT] = condBranch(1, false)
	handlers[decoder.BF] = condBranch(0, false)
	handlers[decoder.BT_S] = condBranch(1, true)
	handlers[decoder.BF_S] = condBranch(0, true)

	// System
	handlers[decoder.NOP] = opNOP
	handlers[decoder.NOP0] = opNOP
	handlers[decoder.TRAPA] = opTRAPA
	handlers[decoder.SLEEP] = opSLEEP
	handlers[decoder.LDTLB] = opLDTLB
	handlers[decoder.CLRT] = opCLRT
	handlers[decoder.SETT] = opSETT
	handlers[decoder.CLRS] = opCLRS
	handlers[decoder.SETS] = opSETS
	handlers[decoder.CLRMAC] = opCLRMAC
	handlers[decoder.MOVT] = opMOVT
	handlers[decoder.OCBI] = opCacheNop
	handlers[decoder.OCBP] = opCacheNop
	handlers[decoder.OCBWB] = opCacheNop
	handlers[decoder.PREF] = opPREF
	handlers[decoder.MOVCA_L] = opMOVCA_L

	// Arithmetic and logic
	handlers[decoder.MOV] = opMOV
	handlers[decoder.MOV_IMM] = opMOV_IMM
	handlers[decoder.ADD] = opADD
	handlers[decoder.ADD_IMM] = opADD_IMM
	handlers[decoder.ADDC] = opADDC
	handlers[decoder.ADDV] = opADDV
	handlers[decoder.SUB] = opSUB
	handlers[decoder.SUBC] = opSUBC
	handlers[decoder.SUBV] = opSUBV
	handlers[decoder.NEG] = opNEG
	handlers[decoder.NEGC] = opNEGC
	handlers[decoder.AND] = opAND
	handlers[decoder.OR] = opOR
	handlers[decoder.XOR] = opXOR
	handlers[decoder.NOT] = opNOT
	handlers[decoder.AND_IMM] = opAND_IMM
	handlers[decoder.OR_IMM] = opOR_IMM
	handlers[decoder.XOR_IMM] = opXOR_IMM
	handlers[decoder.TST] = opTST
	handlers[decoder.TST_IMM] = opTST_IMM
	handlers[decoder.CMP_EQ] = opCMP_EQ
	handlers[decoder.CMP_EQ_IMM] = opCMP_EQ_IMM
	handlers[decoder.CMP_HS] = opCMP_HS
	handlers[decoder.CMP_HI] = opCMP_HI
	handlers[decoder.CMP_GE] = opCMP_GE
	handlers[decoder.CMP_GT] = opCMP_GT
	handlers[decoder.CMP_PZ] = opCMP_PZ
	handlers[decoder.CMP_PL] = opCMP_PL
	handlers[decoder.CMP_STR] = opCMP_STR
	handlers[decoder.XTRCT] = opXTRCT
	handlers[decoder.DT] = opDT
	handlers[decoder.EXTU_B] = opEXTU_B
	handlers[decoder.EXTU_W] = opEXTU_W
	handlers[decoder.EXTS_B] = opEXTS_B
	handlers[decoder.EXTS_W] = opEXTS_W
	handlers[decoder.SWAP_B] = opSWAP_B
	handlers[decoder.SWAP_W] = opSWAP_W

	// Shifts
	handlers[decoder.SHLL] = opSHLL
	handlers[decoder.SHAL] = opSHLL
	handlers[decoder.SHLR] = opSHLR
	handlers[decoder.SHAR] = opSHAR
	handlers[decoder.ROTL] = opROTL
	handlers[decoder.ROTR] = opROTR
	handlers[decoder.ROTCL] = opROTCL
	handlers[decoder.ROTCR] = opROTCR
	handlers[decoder.SHLL2] = shiftBy(2, true)
	handlers[decoder.SHLL8] = shiftBy(8, true)
	handlers[decoder.SHLL16] = shiftBy(16, true)
	handlers[decoder.SHLR2] = shiftBy(2, false)
	handlers[decoder.SHLR8] = shiftBy(8, false)
	handlers[decoder.SHLR16] = shiftBy(16, false)
	handlers[decoder.SHAD] = opSHAD
	handlers[decoder.SHLD] = opSHLD

	// Multiply, divide
	handlers[decoder.MUL_L] = opMUL_L
	handlers[decoder.MULS_W] = opMULS_W
	handlers[decoder.MULU_W] = opMULU_W
	handlers[decoder.DMULS_L] = opDMULS_L
	handlers[decoder.DMULU_L] = opDMULU_L
	handlers[decoder.DIV0S] = opDIV0S
	handlers[decoder.DIV0U] = opDIV0U
	handlers[decoder.DIV1] = opDIV1
	handlers[decoder.MAC_L] = opMAC_L
	handlers[decoder.MAC_W] = opMAC_W

	// Loads and stores
	handlers[decoder.MOVB_STORE] = storeInd(w8)
	handlers[decoder.MOVW_STORE] = storeInd(w16)
	handlers[decoder.MOVL_STORE] = storeInd(w32)
	handlers[decoder.MOVB_LOAD] = loadInd(w8)
	handlers[decoder.MOVW_LOAD] = loadInd(w16)
	handlers[decoder.MOVL_LOAD] = loadInd(w32)
	handlers[decoder.MOVB_STORE_DEC] = storeDec(w8)
	handlers[decoder.MOVW_STORE_DEC] = storeDec(w16)
	handlers[decoder.MOVL_STORE_DEC] = storeDec(w32)
	handlers[decoder.MOVB_LOAD_INC] = loadInc(w8)
	handlers[decoder.MOVW_LOAD_INC] = loadInc(w16)
	handlers[decoder.MOVL_LOAD_INC] = loadInc(w32)
	handlers[decoder.MOVB_STORE_R0] = storeR0(w8)
	handlers[decoder.MOVW_STORE_R0] = storeR0(w16)
	handlers[decoder.MOVL_STORE_R0] = storeR0(w32)
	handlers[decoder.MOVB_LOAD_R0] = loadR0(w8)
	handlers[decoder.MOVW_LOAD_R0] = loadR0(w16)
	handlers[decoder.MOVL_LOAD_R0] = loadR0(w32)
	handlers[decoder.MOVB_STORE_DISP] = storeDisp4(w8)
	handlers[decoder.MOVW_STORE_DISP] = storeDisp4(w16)
	handlers[decoder.MOVB_LOAD_DISP] = loadDisp4(w8)
	handlers[decoder.MOVW_LOAD_DISP] = loadDisp4(w16)
	handlers[decoder.MOVL_STORE_DISP] = opMOVL_STORE_DISP
	handlers[decoder.MOVL_LOAD_DISP] = opMOVL_LOAD_DISP
	handlers[decoder.MOVB_STORE_GBR] = storeGBR(w8)
	handlers[decoder.MOVW_STORE_GBR] = storeGBR(w16)
	handlers[decoder.MOVL_STORE_GBR] = storeGBR(w32)
	handlers[decoder.MOVB_LOAD_GBR] = loadGBR(w8)
	handlers[decoder.MOVW_LOAD_GBR] = loadGBR(w16)
	handlers[decoder.MOVL_LOAD_GBR] = loadGBR(w32)
	handlers[decoder.MOVW_LOAD_PC] = opMOVW_LOAD_PC
	handlers[decoder.MOVL_LOAD_PC] = opMOVL_LOAD_PC
	handlers[decoder.MOVA] = opMOVA
	handlers[decoder.TAS_B] = opTAS_B
	handlers[decoder.TST_B] = opTST_B
	handlers[decoder.AND_B] = gbrByteOp(func(v, imm uint32) uint32 { return v & imm })
	handlers[decoder.OR_B] = gbrByteOp(func(v, imm uint32) uint32 { return v | imm })
	handlers[decoder.XOR_B] = gbrByteOp(func(v, imm uint32) uint32 { return v ^ imm })

	// Control registers
	handlers[decoder.STC_SR] = opSTC_SR
	handlers[decoder.STCL_SR] = opSTCL_SR
	handlers[decoder.LDC_SR] = opLDC_SR
	handlers[decoder.LDCL_SR] = opLDCL_SR
	handlers[decoder.LDS_FPSCR] = opLDS_FPSCR
	handlers[decoder.LDSL_FPSCR] = opLDSL_FPSCR
	handlers[decoder.STC_BANK] = storeCtl(bankReg)
	handlers[decoder.STCL_BANK] = storeCtlDec(bankReg)
	handlers[decoder.LDC_BANK] = loadCtl(bankReg)
	handlers[decoder.LDCL_BANK] = loadCtlInc(bankReg)

	for _, t := range []struct {
		reg              cpu.Reg
		st, stl, ld, ldl decoder.Kind
	}{
		{cpu.RegGBR, decoder.STC_GBR, decoder.STCL_GBR, decoder.LDC_GBR, decoder.LDCL_GBR},
		{cpu.RegVBR, decoder.STC_VBR, decoder.STCL_VBR, decoder.LDC_VBR, decoder.LDCL_VBR},
		{cpu.RegSSR, decoder.STC_SSR, decoder.STCL_SSR, decoder.LDC_SSR, decoder.LDCL_SSR},
		{cpu.RegSPC, decoder.STC_SPC, decoder.STCL_SPC, decoder.LDC_SPC, decoder.LDCL_SPC},
		{cpu.RegSGR, decoder.STC_SGR, decoder.STCL_SGR, decoder.LDC_SGR, decoder.LDCL_SGR},
		{cpu.RegDBR, decoder.STC_DBR, decoder.STCL_DBR, decoder.LDC_DBR, decoder.LDCL_DBR},
		{cpu.RegMACH, decoder.STS_MACH, decoder.STSL_MACH, decoder.LDS_MACH, decoder.LDSL_MACH},
		{cpu.RegMACL, decoder.STS_MACL, decoder.STSL_MACL, decoder.LDS_MACL, decoder.LDSL_MACL},
		{cpu.RegPR, decoder.STS_PR, decoder.STSL_PR, decoder.LDS_PR, decoder.LDSL_PR},
		{cpu.RegFPUL, decoder.STS_FPUL, decoder.STSL_FPUL, decoder.LDS_FPUL, decoder.LDSL_FPUL},
	} {
		handlers[t.st] = storeCtl(ctlReg(t.reg))
		handlers[t.stl] = storeCtlDec(ctlReg(t.reg))
		handlers[t.ld] = loadCtl(ctlReg(t.reg))
		handlers[t.ldl] = loadCtlInc(ctlReg(t.reg))
	}
	handlers[decoder.STS_FPSCR] = storeCtl(ctlReg(cpu.RegFPSCR))
	handlers[decoder.STSL_FPSCR] = storeCtlDec(ctlReg(cpu.RegFPSCR))

	// FPU
	handlers[decoder.FADD] = fpArith(FAdd32, FAdd64)
	handlers[decoder.FSUB] = fpArith(FSub32, FSub64)
	handlers[decoder.FMUL] = fpArith(FMul32, FMul64)
	handlers[decoder.FDIV] = fpArith(FDiv32, FDiv64)
	handlers[decoder.FCMP_EQ] = opFCMP_EQ
	handlers[decoder.FCMP_GT] = opFCMP_GT
	handlers[decoder.FMOV] = opFMOV
	handlers[decoder.FMOV_LOAD] = opFMOV_LOAD
	handlers[decoder.FMOV_LOAD_R0] = opFMOV_LOAD_R0
	handlers[decoder.FMOV_LOAD_INC] = opFMOV_LOAD_INC
	handlers[decoder.FMOV_STORE] = opFMOV_STORE
	handlers[decoder.FMOV_STORE_R0] = opFMOV_STORE_R0
	handlers[decoder.FMOV_STORE_DEC] = opFMOV_STORE_DEC
	handlers[decoder.FABS] = opFABS
	handlers[decoder.FNEG] = opFNEG
	handlers[decoder.FLDI0] = opFLDI0
	handlers[decoder.FLDI1] = opFLDI1
	handlers[decoder.FLDS] = opFLDS
	handlers[decoder.FSTS] = opFSTS
	handlers[decoder.FLOAT] = opFLOAT
	handlers[decoder.FTRC] = opFTRC
	handlers[decoder.FSQRT] = opFSQRT
	handlers[decoder.FSRRA] = opFSRRA
	handlers[decoder.FSCA] = opFSCA
	handlers[decoder.FMAC] = opFMAC
	handlers[decoder.FCNVDS] = opFCNVDS
	handlers[decoder.FCNVSD] = opFCNVSD
	handlers[decoder.FIPR] = opFIPR
	handlers[decoder.FTRV] = opFTRV
	handlers[decoder.FRCHG] = opFRCHG
	handlers[decoder.FSCHG] = opFSCHG
}
