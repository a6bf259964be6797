package x64

import "encoding/binary"

func rex(w bool, reg, rm X86Reg) byte {
	var p byte = X86_REX_BASE
	if w {
		p |= X86_REX_W
	}
	if reg.REXBit == 1 {
		p |= X86_REX_R
	}
	if rm.REXBit == 1 {
		p |= X86_REX_B
	}
	return p
}

// prefix emits a REX byte when one is needed.
func (a *Assembler) prefix(w bool, reg, rm X86Reg) {
	if p := rex(w, reg, rm); p != X86_REX_BASE {
		a.Emit(p)
	}
}

func modrm(mod, reg, rm byte) byte { return mod<<6 | (reg&7)<<3 | rm&7 }

func imm32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// mem emits the ModRM and displacement for [base+disp]. base is never rsp
// or r12 here, so no SIB byte is needed.
func (a *Assembler) mem(reg byte, base X86Reg, disp int32) {
	switch {
	case disp == 0 && base.RegBits != 5:
		a.Emit(modrm(X86_MOD_INDIRECT, reg, base.RegBits))
	case fitsInt8(int64(disp)):
		a.Emit(modrm(X86_MOD_INDIRECT_DISP8, reg, base.RegBits), byte(int8(disp)))
	default:
		a.Emit(modrm(X86_MOD_INDIRECT_DISP32, reg, base.RegBits))
		a.Emit(imm32(uint32(disp))...)
	}
}

// MovRR64 emits mov dst, src.
func (a *Assembler) MovRR64(dst, src X86Reg) {
	a.Emit(rex(true, src, dst), X86_OP_MOV_RM_R, modrm(X86_MOD_REGISTER, src.RegBits, dst.RegBits))
}

// MovRR32 emits mov dst32, src32, clearing the upper half.
func (a *Assembler) MovRR32(dst, src X86Reg) {
	a.prefix(false, src, dst)
	a.Emit(X86_OP_MOV_RM_R, modrm(X86_MOD_REGISTER, src.RegBits, dst.RegBits))
}

// Load32 emits mov dst32, [base+disp].
func (a *Assembler) Load32(dst, base X86Reg, disp int32) {
	a.prefix(false, dst, base)
	a.Emit(X86_OP_MOV_R_RM)
	a.mem(dst.RegBits, base, disp)
}

// Store32 emits mov [base+disp], src32.
func (a *Assembler) Store32(base X86Reg, disp int32, src X86Reg) {
	a.prefix(false, src, base)
	a.Emit(X86_OP_MOV_RM_R)
	a.mem(src.RegBits, base, disp)
}

// Load64 emits mov dst, [base+disp].
func (a *Assembler) Load64(dst, base X86Reg, disp int32) {
	a.Emit(rex(true, dst, base), X86_OP_MOV_R_RM)
	a.mem(dst.RegBits, base, disp)
}

// Store64 emits mov [base+disp], src.
func (a *Assembler) Store64(base X86Reg, disp int32, src X86Reg) {
	a.Emit(rex(true, src, base), X86_OP_MOV_RM_R)
	a.mem(src.RegBits, base, disp)
}

// MovImm32 emits mov dst32, imm, which zero extends.
func (a *Assembler) MovImm32(dst X86Reg, v uint32) {
	a.prefix(false, X86Reg{}, dst)
	a.Emit(X86_OP_MOV_R_IMM + dst.RegBits)
	a.Emit(imm32(v)...)
}

// MovLit64 loads a 64-bit pool constant: mov dst, [rip+lit].
func (a *Assembler) MovLit64(dst X86Reg, v uint64) {
	a.RIP(a.Lit64(v), rex(true, dst, X86Reg{}), X86_OP_MOV_R_RM, modrm(X86_MOD_INDIRECT, dst.RegBits, X86_RM_RIP))
}

// ALU32 emits a two-register 32-bit op such as add dst, src.
func (a *Assembler) ALU32(op byte, dst, src X86Reg) {
	a.prefix(false, src, dst)
	a.Emit(op, modrm(X86_MOD_REGISTER, src.RegBits, dst.RegBits))
}

// ALU64 is ALU32 with REX.W.
func (a *Assembler) ALU64(op byte, dst, src X86Reg) {
	a.Emit(rex(true, src, dst), op, modrm(X86_MOD_REGISTER, src.RegBits, dst.RegBits))
}

// ALUImm32 emits a group 1 op with a 32-bit immediate.
func (a *Assembler) ALUImm32(ext byte, dst X86Reg, v uint32) {
	a.prefix(false, X86Reg{}, dst)
	a.Emit(X86_OP_GROUP1_RM_IMM32, modrm(X86_MOD_REGISTER, ext, dst.RegBits))
	a.Emit(imm32(v)...)
}

// Imul32 emits imul dst32, src32.
func (a *Assembler) Imul32(dst, src X86Reg) {
	a.prefix(false, dst, src)
	a.Emit(X86_PREFIX_0F, X86_OP2_IMUL_R_RM, modrm(X86_MOD_REGISTER, dst.RegBits, src.RegBits))
}

// ShiftCL32 emits shl, shr or sar dst32, cl.
func (a *Assembler) ShiftCL32(ext byte, dst X86Reg) {
	a.prefix(false, X86Reg{}, dst)
	a.Emit(X86_OP_GROUP2_RM_CL, modrm(X86_MOD_REGISTER, ext, dst.RegBits))
}

// ShiftImm64 emits a 64-bit shift by a constant.
func (a *Assembler) ShiftImm64(ext byte, dst X86Reg, n byte) {
	if n == 1 {
		a.Emit(rex(true, X86Reg{}, dst), X86_OP_GROUP2_RM_1, modrm(X86_MOD_REGISTER, ext, dst.RegBits))
		return
	}
	a.Emit(rex(true, X86Reg{}, dst), X86_OP_GROUP2_RM_IMM8, modrm(X86_MOD_REGISTER, ext, dst.RegBits), n)
}

// Unary32 emits not or neg dst32.
func (a *Assembler) Unary32(ext byte, dst X86Reg) {
	a.prefix(false, X86Reg{}, dst)
	a.Emit(X86_OP_GROUP3_RM, modrm(X86_MOD_REGISTER, ext, dst.RegBits))
}

// Extend emits movsx or movzx dst32, src8/src16. dst and src must be
// legacy registers.
func (a *Assembler) Extend(op byte, dst, src X86Reg) {
	a.Emit(X86_PREFIX_0F, op, modrm(X86_MOD_REGISTER, dst.RegBits, src.RegBits))
}

// Setcc sets r32 to 0 or 1 from the flags. r must be a legacy register.
func (a *Assembler) Setcc(cc Cond, r X86Reg) {
	a.Emit(X86_PREFIX_0F, X86_OP2_SETCC+byte(cc), modrm(X86_MOD_REGISTER, 0, r.RegBits))
	a.Extend(X86_OP2_MOVZX_R_RM8, r, r)
}

// Test32 emits test r32, r32.
func (a *Assembler) Test32(r X86Reg) {
	a.prefix(false, r, r)
	a.Emit(X86_OP_TEST_RM_R, modrm(X86_MOD_REGISTER, r.RegBits, r.RegBits))
}

// LoadInd emits a sign extending load of width bytes from [rcx] into eax.
func (a *Assembler) LoadInd(width int) {
	switch width {
	case 1:
		a.Emit(X86_PREFIX_0F, X86_OP2_MOVSX_R_RM8, modrm(X86_MOD_INDIRECT, RAX.RegBits, RCX.RegBits))
	case 2:
		a.Emit(X86_PREFIX_0F, X86_OP2_MOVSX_R_RM16, modrm(X86_MOD_INDIRECT, RAX.RegBits, RCX.RegBits))
	default:
		a.Emit(X86_OP_MOV_R_RM, modrm(X86_MOD_INDIRECT, RAX.RegBits, RCX.RegBits))
	}
}

// StoreInd emits a store of width bytes from eax to [rcx].
func (a *Assembler) StoreInd(width int) {
	switch width {
	case 1:
		a.Emit(X86_OP_MOV_RM8_R8, modrm(X86_MOD_INDIRECT, RAX.RegBits, RCX.RegBits))
	case 2:
		a.Emit(X86_PREFIX_66, X86_OP_MOV_RM_R, modrm(X86_MOD_INDIRECT, RAX.RegBits, RCX.RegBits))
	default:
		a.Emit(X86_OP_MOV_RM_R, modrm(X86_MOD_INDIRECT, RAX.RegBits, RCX.RegBits))
	}
}

// MovToXMM emits movd/movq xmm, gpr.
func (a *Assembler) MovToXMM(double bool, x, r X86Reg) {
	a.Emit(X86_PREFIX_66)
	if double {
		a.Emit(rex(true, x, r))
	}
	a.Emit(X86_PREFIX_0F, X86_OP2_MOVD_X_RM, modrm(X86_MOD_REGISTER, x.RegBits, r.RegBits))
}

// MovFromXMM emits movd/movq gpr, xmm.
func (a *Assembler) MovFromXMM(double bool, r, x X86Reg) {
	a.Emit(X86_PREFIX_66)
	if double {
		a.Emit(rex(true, x, r))
	}
	a.Emit(X86_PREFIX_0F, X86_OP2_MOVD_RM_X, modrm(X86_MOD_REGISTER, x.RegBits, r.RegBits))
}

func scalar(double bool) byte {
	if double {
		return X86_PREFIX_REPNE
	}
	return X86_PREFIX_REP
}

// SSE emits a scalar op such as addss dst, src.
func (a *Assembler) SSE(double bool, op byte, dst, src X86Reg) {
	a.Emit(scalar(double), X86_PREFIX_0F, op, modrm(X86_MOD_REGISTER, dst.RegBits, src.RegBits))
}

// Ucomis emits ucomiss or ucomisd x, y.
func (a *Assembler) Ucomis(double bool, x, y X86Reg) {
	if double {
		a.Emit(X86_PREFIX_66)
	}
	a.Emit(X86_PREFIX_0F, X86_OP2_UCOMIS, modrm(X86_MOD_REGISTER, x.RegBits, y.RegBits))
}

// CvtInt emits cvtsi2ss or cvtsi2sd x, r32.
func (a *Assembler) CvtInt(double bool, x, r X86Reg) {
	a.Emit(scalar(double), X86_PREFIX_0F, X86_OP2_CVTSI2S, modrm(X86_MOD_REGISTER, x.RegBits, r.RegBits))
}

// CmovaLit emits cmova dst, [rip+lit] with the pool constant v.
func (a *Assembler) CmovaLit(double bool, dst X86Reg, v uint64) {
	if double {
		a.RIP(a.Lit64(v), rex(true, dst, X86Reg{}), X86_PREFIX_0F, X86_OP2_CMOVA, modrm(X86_MOD_INDIRECT, dst.RegBits, X86_RM_RIP))
		return
	}
	a.RIP(a.Lit32(uint32(v)), X86_PREFIX_0F, X86_OP2_CMOVA, modrm(X86_MOD_INDIRECT, dst.RegBits, X86_RM_RIP))
}

// CmpLit64 emits cmp r, [rip+lit].
func (a *Assembler) CmpLit64(r X86Reg, v uint64) {
	a.RIP(a.Lit64(v), rex(true, r, X86Reg{}), X86_OP_CMP_R_RM, modrm(X86_MOD_INDIRECT, r.RegBits, X86_RM_RIP))
}

func (a *Assembler) Ret() { a.Emit(X86_OP_RET) }
