package ir

import (
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
)

func init() {
	initEmitterTable()
}

type emitFunc func(e *builder, op uint16)

var emitters [decoder.NumKinds]emitFunc

// Lowered reports whether kind k has an emitter, and whether it lowers to
// native IR rather than an interpreter fallback.
func Lowered(k decoder.Kind) (covered, native bool) {
	if k >= decoder.NumKinds || emitters[k] == nil {
		return false, false
	}
	return true, !fallback[k]
}

var fallback [decoder.NumKinds]bool

func interpOnly(kinds ...decoder.Kind) {
	for _, k := range kinds {
		emitters[k] = emitInterp
		fallback[k] = true
	}
}

func interpEnds(kinds ...decoder.Kind) {
	for _, k := range kinds {
		emitters[k] = emitInterpEnd
		fallback[k] = true
	}
}

func emitInterp(e *builder, op uint16) { e.interp(op) }

// emitInterpEnd runs a mode or control changing instruction and ends the
// block at whatever PC it leaves behind.
func emitInterpEnd(e *builder, op uint16) {
	if decoder.Decode(op).Is(decoder.ClassDelayed) {
		// the slot runs inside the interpreter call
		e.begin(decoder.Decode(e.bus.Read16(e.pc + 2)))
	}
	pc := e.interp(op)
	if !e.inSlot {
		e.exitDynamic(pc)
	}
}

func emitNop(e *builder, op uint16) {}

func initEmitterTable() {
	interpEnds(decoder.ILLEGAL, decoder.RTE, decoder.TRAPA, decoder.SLEEP,
		decoder.LDC_SR, decoder.LDCL_SR, decoder.LDS_FPSCR, decoder.LDSL_FPSCR,
		decoder.FRCHG, decoder.FSCHG)
	interpOnly(decoder.SHAD, decoder.SHLD, decoder.DIV1, decoder.DMULS_L, decoder.DMULU_L,
		decoder.MAC_L, decoder.MAC_W, decoder.PREF, decoder.LDTLB,
		decoder.FSCA, decoder.FSRRA, decoder.FMAC, decoder.FIPR, decoder.FTRV)

	// Branches
	emitters[decoder.BRA] = emitBRA
	emitters[decoder.BSR] = emitBSR
	emitters[decoder.BRAF] = emitBRAF
	emitters[decoder.BSRF] = emitBSRF
	emitters[decoder.JMP] = emitJMP
	emitters[decoder.JSR] = emitJSR
	emitters[decoder.RTS] = emitRTS
	emitters[decoder.BT] = condExit(true, false)
	emitters[decoder.BF] = condExit(false, false)
	emitters[decoder.BT_S] = condExit(true, true)
	emitters[decoder.BF_S] = condExit(false, true)

	// System
	for _, k := range []decoder.Kind{decoder.NOP, decoder.NOP0, decoder.OCBI, decoder.OCBP, decoder.OCBWB} {
		emitters[k] = emitNop
	}
	emitters[decoder.CLRT] = func(e *builder, op uint16) { e.setT(e.k(0)) }
	emitters[decoder.SETT] = func(e *builder, op uint16) { e.setT(e.k(1)) }
	emitters[decoder.CLRS] = srBits(OpAnd, ^uint32(cpu.SR_S))
	emitters[decoder.SETS] = srBits(OpOr, cpu.SR_S)
	emitters[decoder.CLRMAC] = func(e *builder, op uint16) {
		z := e.k(0)
		e.set(cpu.RegMACH, z)
		e.set(cpu.RegMACL, z)
	}
	emitters[decoder.MOVT] = func(e *builder, op uint16) { e.setR(decoder.N(op), e.get(cpu.RegT)) }
	emitters[decoder.MOVCA_L] = func(e *builder, op uint16) { e.st(OpStore32, e.r(decoder.N(op)), e.r(0)) }

	// Arithmetic and logic
	emitters[decoder.MOV] = func(e *builder, op uint16) { e.setR(decoder.N(op), e.r(decoder.M(op))) }
	emitters[decoder.MOV_IMM] = func(e *builder, op uint16) { e.setR(decoder.N(op), e.k(uint32(decoder.Simm8(op)))) }
	emitters[decoder.ADD] = binRR(OpAdd)
	emitters[decoder.SUB] = binRR(OpSub)
	emitters[decoder.AND] = binRR(OpAnd)
	emitters[decoder.OR] = binRR(OpOr)
	emitters[decoder.XOR] = binRR(OpXor)
	emitters[decoder.NOT] = unRR(OpNot)
	emitters[decoder.NEG] = unRR(OpNeg)
	emitters[decoder.EXTU_B] = unRR(OpZext8)
	emitters[decoder.EXTU_W] = unRR(OpZext16)
	emitters[decoder.EXTS_B] = unRR(OpSext8)
	emitters[decoder.EXTS_W] = unRR(OpSext16)
	emitters[decoder.ADD_IMM] = func(e *builder, op uint16) {
		n := decoder.N(op)
		e.setR(n, e.addK(e.r(n), uint32(decoder.Simm8(op))))
	}
	emitters[decoder.AND_IMM] = binR0Imm(OpAnd)
	emitters[decoder.OR_IMM] = binR0Imm(OpOr)
	emitters[decoder.XOR_IMM] = binR0Imm(OpXor)
	emitters[decoder.ADDC] = emitADDC
	emitters[decoder.ADDV] = emitADDV
	emitters[decoder.SUBC] = emitSUBC
	emitters[decoder.SUBV] = emitSUBV
	emitters[decoder.NEGC] = emitNEGC
	emitters[decoder.TST] = func(e *builder, op uint16) {
		e.setT(e.bin(OpSetEQ, e.bin(OpAnd, e.r(decoder.N(op)), e.r(decoder.M(op))), e.k(0)))
	}
	emitters[decoder.TST_IMM] = func(e *builder, op uint16) {
		e.setT(e.bin(OpSetEQ, e.bin(OpAnd, e.r(0), e.k(decoder.Imm8(op))), e.k(0)))
	}
	emitters[decoder.CMP_EQ] = cmpRR(OpSetEQ)
	emitters[decoder.CMP_HS] = cmpRR(OpSetHS)
	emitters[decoder.CMP_HI] = cmpRR(OpSetHI)
	emitters[decoder.CMP_GE] = cmpRR(OpSetGE)
	emitters[decoder.CMP_GT] = cmpRR(OpSetGT)
	emitters[decoder.CMP_PZ] = func(e *builder, op uint16) { e.setT(e.bin(OpSetGE, e.r(decoder.N(op)), e.k(0))) }
	emitters[decoder.CMP_PL] = func(e *builder, op uint16) { e.setT(e.bin(OpSetGT, e.r(decoder.N(op)), e.k(0))) }
	emitters[decoder.CMP_EQ_IMM] = func(e *builder, op uint16) {
		e.setT(e.bin(OpSetEQ, e.r(0), e.k(uint32(decoder.Simm8(op)))))
	}
	emitters[decoder.CMP_STR] = emitCMP_STR
	emitters[decoder.XTRCT] = func(e *builder, op uint16) {
		n := decoder.N(op)
		hi := e.bin(OpShl, e.r(decoder.M(op)), e.k(16))
		e.setR(n, e.bin(OpOr, hi, e.bin(OpShr, e.r(n), e.k(16))))
	}
	emitters[decoder.DT] = func(e *builder, op uint16) {
		n := decoder.N(op)
		v := e.bin(OpSub, e.r(n), e.k(1))
		e.setR(n, v)
		e.setT(e.bin(OpSetEQ, v, e.k(0)))
	}
	emitters[decoder.SWAP_B] = func(e *builder, op uint16) {
		v := e.r(decoder.M(op))
		hi := e.bin(OpAnd, v, e.k(0xFFFF0000))
		b0 := e.bin(OpShl, e.bin(OpAnd, v, e.k(0xFF)), e.k(8))
		b1 := e.bin(OpAnd, e.bin(OpShr, v, e.k(8)), e.k(0xFF))
		e.setR(decoder.N(op), e.bin(OpOr, hi, e.bin(OpOr, b0, b1)))
	}
	emitters[decoder.SWAP_W] = func(e *builder, op uint16) {
		v := e.r(decoder.M(op))
		e.setR(decoder.N(op), e.bin(OpOr, e.bin(OpShl, v, e.k(16)), e.bin(OpShr, v, e.k(16))))
	}

	// Shifts
	emitters[decoder.SHLL] = shiftOut(OpShl, 31)
	emitters[decoder.SHAL] = shiftOut(OpShl, 31)
	emitters[decoder.SHLR] = shiftOut(OpShr, 0)
	emitters[decoder.SHAR] = shiftOut(OpSar, 0)
	emitters[decoder.ROTL] = rotate(true, false)
	emitters[decoder.ROTR] = rotate(false, false)
	emitters[decoder.ROTCL] = rotate(true, true)
	emitters[decoder.ROTCR] = rotate(false, true)
	emitters[decoder.SHLL2] = shiftK(OpShl, 2)
	emitters[decoder.SHLL8] = shiftK(OpShl, 8)
	emitters[decoder.SHLL16] = shiftK(OpShl, 16)
	emitters[decoder.SHLR2] = shiftK(OpShr, 2)
	emitters[decoder.SHLR8] = shiftK(OpShr, 8)
	emitters[decoder.SHLR16] = shiftK(OpShr, 16)

	// Multiply, divide
	emitters[decoder.MUL_L] = mulTo(NoOpCode)
	emitters[decoder.MULS_W] = mulTo(OpSext16)
	emitters[decoder.MULU_W] = mulTo(OpZext16)
	emitters[decoder.DIV0S] = emitDIV0S
	emitters[decoder.DIV0U] = func(e *builder, op uint16) {
		e.set(cpu.RegSR, e.bin(OpAnd, e.get(cpu.RegSR), e.k(^uint32(cpu.SR_Q|cpu.SR_M))))
		e.setT(e.k(0))
	}

	// Loads and stores
	for _, t := range []struct {
		st, ld, stDec, ldInc, stR0, ldR0 decoder.Kind
		store, load                      OpCode
	}{
		{decoder.MOVB_STORE, decoder.MOVB_LOAD, decoder.MOVB_STORE_DEC, decoder.MOVB_LOAD_INC, decoder.MOVB_STORE_R0, decoder.MOVB_LOAD_R0, OpStore8, OpLoad8},
		{decoder.MOVW_STORE, decoder.MOVW_LOAD, decoder.MOVW_STORE_DEC, decoder.MOVW_LOAD_INC, decoder.MOVW_STORE_R0, decoder.MOVW_LOAD_R0, OpStore16, OpLoad16},
		{decoder.MOVL_STORE, decoder.MOVL_LOAD, decoder.MOVL_STORE_DEC, decoder.MOVL_LOAD_INC, decoder.MOVL_STORE_R0, decoder.MOVL_LOAD_R0, OpStore32, OpLoad32},
	} {
		emitters[t.st] = storeInd(t.store)
		emitters[t.ld] = loadInd(t.load)
		emitters[t.stDec] = storeDec(t.store)
		emitters[t.ldInc] = loadInc(t.load)
		emitters[t.stR0] = storeR0(t.store)
		emitters[t.ldR0] = loadR0(t.load)
	}
	emitters[decoder.MOVB_STORE_DISP] = storeDisp(OpStore8)
	emitters[decoder.MOVW_STORE_DISP] = storeDisp(OpStore16)
	emitters[decoder.MOVB_LOAD_DISP] = loadDisp(OpLoad8)
	emitters[decoder.MOVW_LOAD_DISP] = loadDisp(OpLoad16)
	emitters[decoder.MOVL_STORE_DISP] = func(e *builder, op uint16) {
		addr := e.addK(e.r(decoder.N(op)), decoder.Imm4(op)*4)
		e.st(OpStore32, addr, e.r(decoder.M(op)))
	}
	emitters[decoder.MOVL_LOAD_DISP] = func(e *builder, op uint16) {
		addr := e.addK(e.r(decoder.M(op)), decoder.Imm4(op)*4)
		e.setR(decoder.N(op), e.ld(OpLoad32, addr))
	}
	emitters[decoder.MOVB_STORE_GBR] = storeGBR(OpStore8)
	emitters[decoder.MOVW_STORE_GBR] = storeGBR(OpStore16)
	emitters[decoder.MOVL_STORE_GBR] = storeGBR(OpStore32)
	emitters[decoder.MOVB_LOAD_GBR] = loadGBR(OpLoad8)
	emitters[decoder.MOVW_LOAD_GBR] = loadGBR(OpLoad16)
	emitters[decoder.MOVL_LOAD_GBR] = loadGBR(OpLoad32)
	emitters[decoder.MOVW_LOAD_PC] = func(e *builder, op uint16) {
		e.setR(decoder.N(op), e.ld(OpLoad16, e.k(decoder.PCRelWord(e.pc, op))))
	}
	emitters[decoder.MOVL_LOAD_PC] = func(e *builder, op uint16) {
		e.setR(decoder.N(op), e.ld(OpLoad32, e.k(decoder.PCRelLong(e.pc, op))))
	}
	emitters[decoder.MOVA] = func(e *builder, op uint16) { e.setR(0, e.k(decoder.PCRelLong(e.pc, op))) }
	emitters[decoder.TAS_B] = func(e *builder, op uint16) {
		addr := e.r(decoder.N(op))
		v := e.ld(OpLoad8, addr)
		e.setT(e.bin(OpSetEQ, v, e.k(0)))
		e.st(OpStore8, addr, e.bin(OpOr, v, e.k(0x80)))
	}
	emitters[decoder.TST_B] = func(e *builder, op uint16) {
		v := e.ld(OpLoad8, e.bin(OpAdd, e.get(cpu.RegGBR), e.r(0)))
		e.setT(e.bin(OpSetEQ, e.bin(OpAnd, v, e.k(decoder.Imm8(op))), e.k(0)))
	}
	emitters[decoder.AND_B] = gbrByte(OpAnd)
	emitters[decoder.OR_B] = gbrByte(OpOr)
	emitters[decoder.XOR_B] = gbrByte(OpXor)

	// Control registers
	srFull := func(e *builder) Value { return e.bin(OpOr, e.get(cpu.RegSR), e.get(cpu.RegT)) }
	emitters[decoder.STC_SR] = func(e *builder, op uint16) { e.setR(decoder.N(op), srFull(e)) }
	emitters[decoder.STCL_SR] = func(e *builder, op uint16) { e.pushDec(decoder.N(op), srFull(e)) }
	bank := func(op uint16) cpu.Reg { return cpu.RegBank0 + cpu.Reg(decoder.Bank(op)) }
	emitters[decoder.STC_BANK] = func(e *builder, op uint16) { e.setR(decoder.N(op), e.get(bank(op))) }
	emitters[decoder.STCL_BANK] = func(e *builder, op uint16) { e.pushDec(decoder.N(op), e.get(bank(op))) }
	emitters[decoder.LDC_BANK] = func(e *builder, op uint16) { e.set(bank(op), e.r(decoder.N(op))) }
	emitters[decoder.LDCL_BANK] = func(e *builder, op uint16) { e.set(bank(op), e.popInc(decoder.N(op))) }

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
		reg := t.reg
		emitters[t.st] = func(e *builder, op uint16) { e.setR(decoder.N(op), e.get(reg)) }
		emitters[t.stl] = func(e *builder, op uint16) { e.pushDec(decoder.N(op), e.get(reg)) }
		emitters[t.ld] = func(e *builder, op uint16) { e.set(reg, e.r(decoder.N(op))) }
		emitters[t.ldl] = func(e *builder, op uint16) { e.set(reg, e.popInc(decoder.N(op))) }
	}
	emitters[decoder.STS_FPSCR] = func(e *builder, op uint16) { e.setR(decoder.N(op), e.get(cpu.RegFPSCR)) }
	emitters[decoder.STSL_FPSCR] = func(e *builder, op uint16) { e.pushDec(decoder.N(op), e.get(cpu.RegFPSCR)) }

	initFPUEmitters()
}

// NoOpCode marks an absent conversion.
const NoOpCode = OpNop

func binRR(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		n := decoder.N(op)
		e.setR(n, e.bin(c, e.r(n), e.r(decoder.M(op))))
	}
}

func unRR(c OpCode) emitFunc {
	return func(e *builder, op uint16) { e.setR(decoder.N(op), e.un(c, e.r(decoder.M(op)))) }
}

func binR0Imm(c OpCode) emitFunc {
	return func(e *builder, op uint16) { e.setR(0, e.bin(c, e.r(0), e.k(decoder.Imm8(op)))) }
}

func cmpRR(c OpCode) emitFunc {
	return func(e *builder, op uint16) { e.setT(e.bin(c, e.r(decoder.N(op)), e.r(decoder.M(op)))) }
}

func srBits(c OpCode, mask uint32) emitFunc {
	return func(e *builder, op uint16) { e.set(cpu.RegSR, e.bin(c, e.get(cpu.RegSR), e.k(mask))) }
}

// rn+rm+T, carry when either add wraps.
func emitADDC(e *builder, op uint16) {
	n := decoder.N(op)
	a := e.r(n)
	sum := e.bin(OpAdd, a, e.r(decoder.M(op)))
	c1 := e.bin(OpSetHI, a, sum)
	res := e.bin(OpAdd, sum, e.get(cpu.RegT))
	c2 := e.bin(OpSetHI, sum, res)
	e.setR(n, res)
	e.setT(e.bin(OpOr, c1, c2))
}

func emitSUBC(e *builder, op uint16) {
	n := decoder.N(op)
	a := e.r(n)
	diff := e.bin(OpSub, a, e.r(decoder.M(op)))
	b1 := e.bin(OpSetHI, diff, a)
	res := e.bin(OpSub, diff, e.get(cpu.RegT))
	b2 := e.bin(OpSetHI, res, diff)
	e.setR(n, res)
	e.setT(e.bin(OpOr, b1, b2))
}

func emitNEGC(e *builder, op uint16) {
	neg := e.un(OpNeg, e.r(decoder.M(op)))
	res := e.bin(OpSub, neg, e.get(cpu.RegT))
	b1 := e.bin(OpSetHI, neg, e.k(0))
	b2 := e.bin(OpSetHI, res, neg)
	e.setR(decoder.N(op), res)
	e.setT(e.bin(OpOr, b1, b2))
}

func emitADDV(e *builder, op uint16) {
	n := decoder.N(op)
	a, b := e.r(n), e.r(decoder.M(op))
	res := e.bin(OpAdd, a, b)
	ov := e.bin(OpAnd, e.bin(OpXor, a, res), e.bin(OpXor, b, res))
	e.setR(n, res)
	e.setT(e.bin(OpShr, ov, e.k(31)))
}

func emitSUBV(e *builder, op uint16) {
	n := decoder.N(op)
	a, b := e.r(n), e.r(decoder.M(op))
	res := e.bin(OpSub, a, b)
	ov := e.bin(OpAnd, e.bin(OpXor, a, b), e.bin(OpXor, a, res))
	e.setR(n, res)
	e.setT(e.bin(OpShr, ov, e.k(31)))
}

func emitCMP_STR(e *builder, op uint16) {
	x := e.bin(OpXor, e.r(decoder.N(op)), e.r(decoder.M(op)))
	zero := e.k(0)
	var t Value = NoValue
	for _, mask := range []uint32{0xFF000000, 0x00FF0000, 0x0000FF00, 0x000000FF} {
		eq := e.bin(OpSetEQ, e.bin(OpAnd, x, e.k(mask)), zero)
		if t == NoValue {
			t = eq
		} else {
			t = e.bin(OpOr, t, eq)
		}
	}
	e.setT(t)
}

// shiftOut shifts Rn by one and moves the bit at out into T.
func shiftOut(c OpCode, out uint32) emitFunc {
	return func(e *builder, op uint16) {
		n := decoder.N(op)
		v := e.r(n)
		var t Value
		if out == 31 {
			t = e.bin(OpShr, v, e.k(31))
		} else {
			t = e.bin(OpAnd, v, e.k(1))
		}
		e.setR(n, e.bin(c, v, e.k(1)))
		e.setT(t)
	}
}

func shiftK(c OpCode, k uint32) emitFunc {
	return func(e *builder, op uint16) {
		n := decoder.N(op)
		e.setR(n, e.bin(c, e.r(n), e.k(k)))
	}
}

// rotate by one; throughT rotates through T instead of copying the bit.
func rotate(left, throughT bool) emitFunc {
	return func(e *builder, op uint16) {
		n := decoder.N(op)
		v := e.r(n)
		var out, in Value
		if left {
			out = e.bin(OpShr, v, e.k(31))
		} else {
			out = e.bin(OpAnd, v, e.k(1))
		}
		in = out
		if throughT {
			in = e.get(cpu.RegT)
		}
		if left {
			e.setR(n, e.bin(OpOr, e.bin(OpShl, v, e.k(1)), in))
		} else {
			e.setR(n, e.bin(OpOr, e.bin(OpShr, v, e.k(1)), e.bin(OpShl, in, e.k(31))))
		}
		e.setT(out)
	}
}

func mulTo(ext OpCode) emitFunc {
	return func(e *builder, op uint16) {
		a, b := e.r(decoder.N(op)), e.r(decoder.M(op))
		if ext != NoOpCode {
			a, b = e.un(ext, a), e.un(ext, b)
		}
		e.set(cpu.RegMACL, e.bin(OpMul, a, b))
	}
}

func emitDIV0S(e *builder, op uint16) {
	q := e.bin(OpShr, e.r(decoder.N(op)), e.k(31))
	m := e.bin(OpShr, e.r(decoder.M(op)), e.k(31))
	sr := e.bin(OpAnd, e.get(cpu.RegSR), e.k(^uint32(cpu.SR_Q|cpu.SR_M)))
	sr = e.bin(OpOr, sr, e.bin(OpShl, q, e.k(8)))
	sr = e.bin(OpOr, sr, e.bin(OpShl, m, e.k(9)))
	e.set(cpu.RegSR, sr)
	e.setT(e.bin(OpXor, q, m))
}

func storeInd(c OpCode) emitFunc {
	return func(e *builder, op uint16) { e.st(c, e.r(decoder.N(op)), e.r(decoder.M(op))) }
}

func loadInd(c OpCode) emitFunc {
	return func(e *builder, op uint16) { e.setR(decoder.N(op), e.ld(c, e.r(decoder.M(op)))) }
}

func storeDec(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		n := decoder.N(op)
		v := e.r(decoder.M(op))
		addr := e.bin(OpSub, e.r(n), e.k(uint32(c.Width())))
		e.st(c, addr, v)
		e.setR(n, addr)
	}
}

func loadInc(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		n, m := decoder.N(op), decoder.M(op)
		addr := e.r(m)
		v := e.ld(c, addr)
		if n != m {
			e.setR(m, e.addK(addr, uint32(c.Width())))
		}
		e.setR(n, v)
	}
}

func storeR0(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		addr := e.bin(OpAdd, e.r(0), e.r(decoder.N(op)))
		e.st(c, addr, e.r(decoder.M(op)))
	}
}

func loadR0(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		addr := e.bin(OpAdd, e.r(0), e.r(decoder.M(op)))
		e.setR(decoder.N(op), e.ld(c, addr))
	}
}

func storeDisp(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		addr := e.addK(e.r(decoder.M(op)), decoder.Imm4(op)*uint32(c.Width()))
		e.st(c, addr, e.r(0))
	}
}

func loadDisp(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		addr := e.addK(e.r(decoder.M(op)), decoder.Imm4(op)*uint32(c.Width()))
		e.setR(0, e.ld(c, addr))
	}
}

func storeGBR(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		addr := e.addK(e.get(cpu.RegGBR), decoder.Imm8(op)*uint32(c.Width()))
		e.st(c, addr, e.r(0))
	}
}

func loadGBR(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		addr := e.addK(e.get(cpu.RegGBR), decoder.Imm8(op)*uint32(c.Width()))
		e.setR(0, e.ld(c, addr))
	}
}

func gbrByte(c OpCode) emitFunc {
	return func(e *builder, op uint16) {
		addr := e.bin(OpAdd, e.get(cpu.RegGBR), e.r(0))
		v := e.ld(OpLoad8, addr)
		e.st(OpStore8, addr, e.bin(c, v, e.k(decoder.Imm8(op))))
	}
}

// pushDec stores v at Rn-4 and writes the new address back.
func (e *builder) pushDec(n int, v Value) {
	addr := e.bin(OpSub, e.r(n), e.k(4))
	e.st(OpStore32, addr, v)
	e.setR(n, addr)
}

// popInc loads from Rn and post-increments it.
func (e *builder) popInc(n int) Value {
	addr := e.r(n)
	v := e.ld(OpLoad32, addr)
	e.setR(n, e.addK(addr, 4))
	return v
}

// Branches. Targets and link values are computed before the slot; the link
// register is written after it.

func emitBRA(e *builder, op uint16) {
	target := decoder.Disp12Target(e.pc, op)
	e.slot()
	e.exitStatic(target)
}

func emitBSR(e *builder, op uint16) {
	target := decoder.Disp12Target(e.pc, op)
	link := e.pc + 4
	e.slot()
	e.set(cpu.RegPR, e.k(link))
	e.exitStatic(target)
}

func emitBRAF(e *builder, op uint16) {
	dest := e.addK(e.r(decoder.N(op)), e.pc+4)
	e.slot()
	e.exitDynamic(dest)
}

func emitBSRF(e *builder, op uint16) {
	dest := e.addK(e.r(decoder.N(op)), e.pc+4)
	link := e.pc + 4
	e.slot()
	e.set(cpu.RegPR, e.k(link))
	e.exitDynamic(dest)
}

func emitJMP(e *builder, op uint16) {
	dest := e.r(decoder.N(op))
	e.slot()
	e.exitDynamic(dest)
}

func emitJSR(e *builder, op uint16) {
	dest := e.r(decoder.N(op))
	link := e.pc + 4
	e.slot()
	e.set(cpu.RegPR, e.k(link))
	e.exitDynamic(dest)
}

func emitRTS(e *builder, op uint16) {
	dest := e.get(cpu.RegPR)
	e.slot()
	e.exitDynamic(dest)
}

func condExit(onT, delayed bool) emitFunc {
	return func(e *builder, op uint16) {
		target := decoder.Disp8Target(e.pc, op)
		cond := e.get(cpu.RegT)
		if !onT {
			cond = e.bin(OpXor, cond, e.k(1))
		}
		next := e.pc + 2
		if delayed {
			e.slot()
			next += 2
		}
		e.exitCond(cond, target, next)
	}
}
