package ir

import (
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
)

// FPU instructions are lowered for the block mode; PR and SZ are constants
// inside a block.

func (e *builder) fr(n int) Value       { return e.get(cpu.RegFR(n)) }
func (e *builder) setFR(n int, v Value) { e.set(cpu.RegFR(n), v) }
func (e *builder) fpul() Value          { return e.get(cpu.RegFPUL) }
func (e *builder) setFPUL(v Value)      { e.set(cpu.RegFPUL, v) }
func (e *builder) dr(n int) Value       { return e.bin(OpPair, e.fr(n&^1), e.fr(n|1)) }
func (e *builder) setDR(n int, v Value) { e.setPair(cpu.RegFR(n&^1), v) }

func (e *builder) setPair(hi cpu.Reg, v Value) {
	e.set(hi, e.un(OpHi, v))
	e.set(hi+1, e.un(OpLo, v))
}

// szPair is the register pair fmov names with SZ=1: odd numbers select XD.
func szPair(r int) cpu.Reg {
	if r&1 != 0 {
		return cpu.RegXF(r & 0xE)
	}
	return cpu.RegFR(r & 0xE)
}

func fpBin(op32, op64 OpCode) emitFunc {
	return func(e *builder, op uint16) {
		n, m := decoder.N(op), decoder.M(op)
		if e.mode().PR() {
			e.setDR(n, e.bin(op64, e.dr(n), e.dr(m)))
			return
		}
		e.setFR(n, e.bin(op32, e.fr(n), e.fr(m)))
	}
}

func fpCmp(op32, op64 OpCode) emitFunc {
	return func(e *builder, op uint16) {
		n, m := decoder.N(op), decoder.M(op)
		if e.mode().PR() {
			e.setT(e.bin(op64, e.dr(n), e.dr(m)))
			return
		}
		e.setT(e.bin(op32, e.fr(n), e.fr(m)))
	}
}

func fsize(m cpu.Mode) uint32 {
	if m.SZ() {
		return 8
	}
	return 4
}

func (e *builder) fload(n int, addr Value) {
	if e.mode().SZ() {
		hi := e.ld(OpLoad32, addr)
		lo := e.ld(OpLoad32, e.addK(addr, 4))
		r := szPair(n)
		e.set(r, hi)
		e.set(r+1, lo)
		return
	}
	e.setFR(n, e.ld(OpLoad32, addr))
}

func (e *builder) fstore(m int, addr Value) {
	if e.mode().SZ() {
		r := szPair(m)
		hi, lo := e.get(r), e.get(r+1)
		e.st(OpStore32, addr, hi)
		e.st(OpStore32, e.addK(addr, 4), lo)
		return
	}
	e.st(OpStore32, addr, e.fr(m))
}

// signOp applies mask to the sign word of FRn, or of DRn with PR=1.
func signOp(c OpCode, mask uint32) emitFunc {
	return func(e *builder, op uint16) {
		n := decoder.N(op)
		if e.mode().PR() {
			n &= 0xE
		}
		e.setFR(n, e.bin(c, e.fr(n), e.k(mask)))
	}
}

func fldi(bits uint32) emitFunc {
	return func(e *builder, op uint16) {
		if !e.mode().PR() {
			e.setFR(decoder.N(op), e.k(bits))
		}
	}
}

func initFPUEmitters() {
	emitters[decoder.FADD] = fpBin(OpFAdd32, OpFAdd64)
	emitters[decoder.FSUB] = fpBin(OpFSub32, OpFSub64)
	emitters[decoder.FMUL] = fpBin(OpFMul32, OpFMul64)
	emitters[decoder.FDIV] = fpBin(OpFDiv32, OpFDiv64)
	emitters[decoder.FCMP_EQ] = fpCmp(OpFCmpEQ32, OpFCmpEQ64)
	emitters[decoder.FCMP_GT] = fpCmp(OpFCmpGT32, OpFCmpGT64)

	emitters[decoder.FMOV] = func(e *builder, op uint16) {
		n, m := decoder.N(op), decoder.M(op)
		if e.mode().SZ() {
			src, dst := szPair(m), szPair(n)
			hi, lo := e.get(src), e.get(src+1)
			e.set(dst, hi)
			e.set(dst+1, lo)
			return
		}
		e.setFR(n, e.fr(m))
	}
	emitters[decoder.FMOV_LOAD] = func(e *builder, op uint16) { e.fload(decoder.N(op), e.r(decoder.M(op))) }
	emitters[decoder.FMOV_LOAD_R0] = func(e *builder, op uint16) {
		e.fload(decoder.N(op), e.bin(OpAdd, e.r(0), e.r(decoder.M(op))))
	}
	emitters[decoder.FMOV_LOAD_INC] = func(e *builder, op uint16) {
		m := decoder.M(op)
		addr := e.r(m)
		e.fload(decoder.N(op), addr)
		e.setR(m, e.addK(addr, fsize(e.mode())))
	}
	emitters[decoder.FMOV_STORE] = func(e *builder, op uint16) { e.fstore(decoder.M(op), e.r(decoder.N(op))) }
	emitters[decoder.FMOV_STORE_R0] = func(e *builder, op uint16) {
		e.fstore(decoder.M(op), e.bin(OpAdd, e.r(0), e.r(decoder.N(op))))
	}
	emitters[decoder.FMOV_STORE_DEC] = func(e *builder, op uint16) {
		n := decoder.N(op)
		addr := e.bin(OpSub, e.r(n), e.k(fsize(e.mode())))
		e.fstore(decoder.M(op), addr)
		e.setR(n, addr)
	}

	emitters[decoder.FABS] = signOp(OpAnd, 0x7FFFFFFF)
	emitters[decoder.FNEG] = signOp(OpXor, 0x80000000)
	emitters[decoder.FLDI0] = fldi(0)
	emitters[decoder.FLDI1] = fldi(0x3F800000)
	emitters[decoder.FLDS] = func(e *builder, op uint16) { e.setFPUL(e.fr(decoder.N(op))) }
	emitters[decoder.FSTS] = func(e *builder, op uint16) { e.setFR(decoder.N(op), e.fpul()) }

	emitters[decoder.FLOAT] = func(e *builder, op uint16) {
		n := decoder.N(op)
		if e.mode().PR() {
			e.setDR(n, e.un(OpIntToF64, e.fpul()))
			return
		}
		e.setFR(n, e.un(OpIntToF32, e.fpul()))
	}
	emitters[decoder.FTRC] = func(e *builder, op uint16) {
		n := decoder.N(op)
		if e.mode().PR() {
			e.setFPUL(e.un(OpFtrc64, e.dr(n)))
			return
		}
		e.setFPUL(e.un(OpFtrc32, e.fr(n)))
	}
	emitters[decoder.FSQRT] = func(e *builder, op uint16) {
		n := decoder.N(op)
		if e.mode().PR() {
			e.setDR(n, e.un(OpFSqrt64, e.dr(n)))
			return
		}
		e.setFR(n, e.un(OpFSqrt32, e.fr(n)))
	}

	// Single precision forms go to the interpreter, which reports them.
	emitters[decoder.FCNVDS] = func(e *builder, op uint16) {
		if !e.mode().PR() {
			e.interp(op)
			return
		}
		e.setFPUL(e.un(OpF64To32, e.dr(decoder.N(op))))
	}
	emitters[decoder.FCNVSD] = func(e *builder, op uint16) {
		if !e.mode().PR() {
			e.interp(op)
			return
		}
		e.setDR(decoder.N(op), e.un(OpF32To64, e.fpul()))
	}
}
