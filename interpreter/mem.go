package interpreter

import (
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
)

// width selects the access size of a load or store handler.
type width uint8

const (
	w8 width = 1 << iota
	w16
	w32
)

func (in *Interpreter) load(w width, addr uint32) uint32 {
	switch w {
	case w8:
		return in.read8(addr)
	case w16:
		return in.read16(addr)
	}
	return in.read32(addr)
}

func (in *Interpreter) store(w width, addr, v uint32) {
	switch w {
	case w8:
		in.bus.Write8(addr, uint8(v))
	case w16:
		in.bus.Write16(addr, uint16(v))
	default:
		in.bus.Write32(addr, v)
	}
}

// mov.x Rm,@Rn
func storeInd(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		in.store(w, c.R[decoder.N(op)], c.R[decoder.M(op)])
	}
}

// mov.x @Rm,Rn
func loadInd(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		c.R[decoder.N(op)] = in.load(w, c.R[decoder.M(op)])
	}
}

// mov.x Rm,@-Rn stores the value Rm had before the decrement.
func storeDec(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		n := decoder.N(op)
		addr := c.R[n] - uint32(w)
		in.store(w, addr, c.R[decoder.M(op)])
		c.R[n] = addr
	}
}

// mov.x @Rm+,Rn skips the increment when n == m.
func loadInc(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		n, m := decoder.N(op), decoder.M(op)
		v := in.load(w, c.R[m])
		if n != m {
			c.R[m] += uint32(w)
		}
		c.R[n] = v
	}
}

// mov.x Rm,@(R0,Rn)
func storeR0(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		in.store(w, c.R[0]+c.R[decoder.N(op)], c.R[decoder.M(op)])
	}
}

// mov.x @(R0,Rm),Rn
func loadR0(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		c.R[decoder.N(op)] = in.load(w, c.R[0]+c.R[decoder.M(op)])
	}
}

// mov.b/w R0,@(disp,Rm)
func storeDisp4(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		in.store(w, c.R[decoder.M(op)]+decoder.Imm4(op)*uint32(w), c.R[0])
	}
}

// mov.b/w @(disp,Rm),R0
func loadDisp4(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		c.R[0] = in.load(w, c.R[decoder.M(op)]+decoder.Imm4(op)*uint32(w))
	}
}

func opMOVL_STORE_DISP(in *Interpreter, c *cpu.Context, op uint16) {
	in.bus.Write32(c.R[decoder.N(op)]+decoder.Imm4(op)*4, c.R[decoder.M(op)])
}

func opMOVL_LOAD_DISP(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = in.read32(c.R[decoder.M(op)] + decoder.Imm4(op)*4)
}

func storeGBR(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		in.store(w, c.GBR+decoder.Imm8(op)*uint32(w), c.R[0])
	}
}

func loadGBR(w width) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		c.R[0] = in.load(w, c.GBR+decoder.Imm8(op)*uint32(w))
	}
}

func opMOVW_LOAD_PC(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = in.read16(decoder.PCRelWord(c.PC-2, op))
}

func opMOVL_LOAD_PC(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = in.read32(decoder.PCRelLong(c.PC-2, op))
}

func opMOVA(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[0] = decoder.PCRelLong(c.PC-2, op)
}

func opMOVCA_L(in *Interpreter, c *cpu.Context, op uint16) {
	in.bus.Write32(c.R[decoder.N(op)], c.R[0])
}

func opTAS_B(in *Interpreter, c *cpu.Context, op uint16) {
	addr := c.R[decoder.N(op)]
	v := in.bus.Read8(addr)
	c.T = b2u(v == 0)
	in.bus.Write8(addr, v|0x80)
}

func opTST_B(in *Interpreter, c *cpu.Context, op uint16) {
	v := uint32(in.bus.Read8(c.GBR + c.R[0]))
	c.T = b2u(v&decoder.Imm8(op) == 0)
}

func gbrByteOp(f func(v, imm uint32) uint32) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		addr := c.GBR + c.R[0]
		v := uint32(in.bus.Read8(addr))
		in.bus.Write8(addr, uint8(f(v, decoder.Imm8(op))))
	}
}

// Cache control. The core has no operand cache model.
func opCacheNop(in *Interpreter, c *cpu.Context, op uint16) {}

// storeQueueArea is addr>>26 of the pref targets that start a store queue burst.
const storeQueueArea = 0x38

func opPREF(in *Interpreter, c *cpu.Context, op uint16) {
	addr := c.R[decoder.N(op)]
	if addr>>26 == storeQueueArea && in.prefetch != nil {
		in.prefetch.Prefetch(addr)
	}
}

// System and control register transfers.

// regOf returns the context slot a ldc/stc/lds/sts form names.
type regOf func(c *cpu.Context, op uint16) *uint32

func ctlReg(r cpu.Reg) regOf {
	return func(c *cpu.Context, op uint16) *uint32 { return c.Reg(r) }
}

func bankReg(c *cpu.Context, op uint16) *uint32 { return &c.RBank[decoder.Bank(op)] }

// stc/sts reg,Rn
func storeCtl(src regOf) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		c.R[decoder.N(op)] = *src(c, op)
	}
}

// stc.l/sts.l reg,@-Rn
func storeCtlDec(src regOf) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		n := decoder.N(op)
		addr := c.R[n] - 4
		in.bus.Write32(addr, *src(c, op))
		c.R[n] = addr
	}
}

// ldc/lds Rn,reg
func loadCtl(dst regOf) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		*dst(c, op) = c.R[decoder.N(op)]
	}
}

// ldc.l/lds.l @Rn+,reg
func loadCtlInc(dst regOf) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		n := decoder.N(op)
		v := in.read32(c.R[n])
		c.R[n] += 4
		*dst(c, op) = v
	}
}

func opSTC_SR(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = c.SRFull()
}

func opSTCL_SR(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	addr := c.R[n] - 4
	in.bus.Write32(addr, c.SRFull())
	c.R[n] = addr
}

func opLDC_SR(in *Interpreter, c *cpu.Context, op uint16) {
	c.SetSR(c.R[decoder.N(op)])
}

func opLDCL_SR(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	v := in.read32(c.R[n])
	c.R[n] += 4
	c.SetSR(v)
}

func opLDS_FPSCR(in *Interpreter, c *cpu.Context, op uint16) {
	c.SetFPSCR(c.R[decoder.N(op)])
}

func opLDSL_FPSCR(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	v := in.read32(c.R[n])
	c.R[n] += 4
	c.SetFPSCR(v)
}
