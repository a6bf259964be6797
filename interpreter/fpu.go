package interpreter

import (
	"math"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
)

func isPR(c *cpu.Context) bool { return c.FPSCR&cpu.FPSCR_PR != 0 }
func isSZ(c *cpu.Context) bool { return c.FPSCR&cpu.FPSCR_SZ != 0 }

func f32(v uint32) float32 { return math.Float32frombits(v) }

// fix32 stores a single precision result with NaNs canonicalized.
func fix32(f float32) uint32 { return cpu.FixNaN32(math.Float32bits(f)) }

func fix64(f float64) uint64 { return cpu.FixNaN64(math.Float64bits(f)) }

// Binary arithmetic on FRn/FRm or DRn/DRm depending on FPSCR.PR.
func fpArith(op32 func(a, b float32) float32, op64 func(a, b float64) float64) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		n, m := decoder.N(op), decoder.M(op)
		if isPR(c) {
			c.SetDR(n>>1, fix64(op64(c.DRf(n>>1), c.DRf(m>>1))))
			return
		}
		c.FR[n] = fix32(op32(c.FRf(n), c.FRf(m)))
	}
}

func FAdd32(a, b float32) float32 { return a + b }
func FSub32(a, b float32) float32 { return a - b }
func FMul32(a, b float32) float32 { return a * b }
func FDiv32(a, b float32) float32 { return a / b }
func FAdd64(a, b float64) float64 { return a + b }
func FSub64(a, b float64) float64 { return a - b }
func FMul64(a, b float64) float64 { return a * b }
func FDiv64(a, b float64) float64 { return a / b }

func opFCMP_EQ(in *Interpreter, c *cpu.Context, op uint16) {
	n, m := decoder.N(op), decoder.M(op)
	if isPR(c) {
		c.T = b2u(c.DRf(n>>1) == c.DRf(m>>1))
		return
	}
	c.T = b2u(c.FRf(n) == c.FRf(m))
}

func opFCMP_GT(in *Interpreter, c *cpu.Context, op uint16) {
	n, m := decoder.N(op), decoder.M(op)
	if isPR(c) {
		c.T = b2u(c.DRf(n>>1) > c.DRf(m>>1))
		return
	}
	c.T = b2u(c.FRf(n) > c.FRf(m))
}

// With SZ=1 register numbers name pairs: even is DRn>>1, odd is XDn>>1.
func pairOf(c *cpu.Context, r int) *[16]uint32 {
	if r&1 != 0 {
		return &c.XF
	}
	return &c.FR
}

func getPair(c *cpu.Context, r int) (hi, lo uint32) {
	f := pairOf(c, r)
	return f[r&0xE], f[r&0xE|1]
}

func setPair(c *cpu.Context, r int, hi, lo uint32) {
	f := pairOf(c, r)
	f[r&0xE], f[r&0xE|1] = hi, lo
}

func opFMOV(in *Interpreter, c *cpu.Context, op uint16) {
	n, m := decoder.N(op), decoder.M(op)
	if isSZ(c) {
		hi, lo := getPair(c, m)
		setPair(c, n, hi, lo)
		return
	}
	c.FR[n] = c.FR[m]
}

func (in *Interpreter) fload(c *cpu.Context, n int, addr uint32) {
	if isSZ(c) {
		setPair(c, n, in.bus.Read32(addr), in.bus.Read32(addr+4))
		return
	}
	c.FR[n] = in.bus.Read32(addr)
}

func (in *Interpreter) fstore(c *cpu.Context, m int, addr uint32) {
	if isSZ(c) {
		hi, lo := getPair(c, m)
		in.bus.Write32(addr, hi)
		in.bus.Write32(addr+4, lo)
		return
	}
	in.bus.Write32(addr, c.FR[m])
}

func fsize(c *cpu.Context) uint32 {
	if isSZ(c) {
		return 8
	}
	return 4
}

func opFMOV_LOAD(in *Interpreter, c *cpu.Context, op uint16) {
	in.fload(c, decoder.N(op), c.R[decoder.M(op)])
}

func opFMOV_LOAD_R0(in *Interpreter, c *cpu.Context, op uint16) {
	in.fload(c, decoder.N(op), c.R[0]+c.R[decoder.M(op)])
}

func opFMOV_LOAD_INC(in *Interpreter, c *cpu.Context, op uint16) {
	m := decoder.M(op)
	in.fload(c, decoder.N(op), c.R[m])
	c.R[m] += fsize(c)
}

func opFMOV_STORE(in *Interpreter, c *cpu.Context, op uint16) {
	in.fstore(c, decoder.M(op), c.R[decoder.N(op)])
}

func opFMOV_STORE_R0(in *Interpreter, c *cpu.Context, op uint16) {
	in.fstore(c, decoder.M(op), c.R[0]+c.R[decoder.N(op)])
}

func opFMOV_STORE_DEC(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	addr := c.R[n] - fsize(c)
	in.fstore(c, decoder.M(op), addr)
	c.R[n] = addr
}

func opFABS(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	if isPR(c) {
		n &= 0xE
	}
	c.FR[n] &^= 0x80000000
}

func opFNEG(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	if isPR(c) {
		n &= 0xE
	}
	c.FR[n] ^= 0x80000000
}

func opFLDI0(in *Interpreter, c *cpu.Context, op uint16) {
	if !isPR(c) {
		c.FR[decoder.N(op)] = 0
	}
}

func opFLDI1(in *Interpreter, c *cpu.Context, op uint16) {
	if !isPR(c) {
		c.FR[decoder.N(op)] = 0x3F800000
	}
}

func opFLDS(in *Interpreter, c *cpu.Context, op uint16) { c.FPUL = c.FR[decoder.N(op)] }
func opFSTS(in *Interpreter, c *cpu.Context, op uint16) { c.FR[decoder.N(op)] = c.FPUL }

func opFLOAT(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	if isPR(c) {
		c.SetDRf(n>>1, float64(int32(c.FPUL)))
		return
	}
	c.SetFRf(n, float32(int32(c.FPUL)))
}

// Ftrc converts with the hardware saturation: NaN and negative overflow give
// 0x80000000, positive overflow 0x7FFFFFFF.
func Ftrc(f float64) uint32 {
	switch {
	case f != f:
		return 0x80000000
	case f >= 2147483648.0:
		return 0x7FFFFFFF
	case f <= -2147483649.0:
		return 0x80000000
	}
	return uint32(int32(f))
}

func opFTRC(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	if isPR(c) {
		c.FPUL = Ftrc(c.DRf(n >> 1))
		return
	}
	c.FPUL = Ftrc(float64(c.FRf(n)))
}

func opFSQRT(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	if isPR(c) {
		c.SetDR(n>>1, fix64(math.Sqrt(c.DRf(n>>1))))
		return
	}
	c.FR[n] = fix32(float32(math.Sqrt(float64(c.FRf(n)))))
}

func opFSRRA(in *Interpreter, c *cpu.Context, op uint16) {
	if isPR(c) {
		in.unimplemented(c, op, "fsrra with PR=1")
		return
	}
	n := decoder.N(op)
	c.FR[n] = fix32(float32(1 / math.Sqrt(float64(c.FRf(n)))))
}

func opFSCA(in *Interpreter, c *cpu.Context, op uint16) {
	if isPR(c) {
		in.unimplemented(c, op, "fsca with PR=1")
		return
	}
	n := decoder.N(op) & 0xE
	c.FR[n], c.FR[n+1] = Fsca(c.FPUL)
}

func opFMAC(in *Interpreter, c *cpu.Context, op uint16) {
	if isPR(c) {
		in.unimplemented(c, op, "fmac with PR=1")
		return
	}
	n, m := decoder.N(op), decoder.M(op)
	acc := float64(c.FRf(n)) + float64(c.FRf(0))*float64(c.FRf(m))
	c.FR[n] = fix32(float32(acc))
}

func opFCNVDS(in *Interpreter, c *cpu.Context, op uint16) {
	if !isPR(c) {
		in.unimplemented(c, op, "fcnvds with PR=0")
		return
	}
	c.FPUL = fix32(float32(c.DRf(decoder.N(op) >> 1)))
}

func opFCNVSD(in *Interpreter, c *cpu.Context, op uint16) {
	if !isPR(c) {
		in.unimplemented(c, op, "fcnvsd with PR=0")
		return
	}
	c.SetDRf(decoder.N(op)>>1, float64(f32(c.FPUL)))
}

// Fipr is the inner product of two 4-vectors accumulated in double.
func Fipr(a, b []uint32) uint32 {
	var acc float64
	for i := 0; i < 4; i++ {
		acc += float64(f32(a[i])) * float64(f32(b[i]))
	}
	return fix32(float32(acc))
}

func opFIPR(in *Interpreter, c *cpu.Context, op uint16) {
	if isPR(c) {
		in.unimplemented(c, op, "fipr with PR=1")
		return
	}
	n := decoder.N(op) & 0xC
	m := (decoder.N(op) & 3) << 2
	c.FR[n+3] = Fipr(c.FR[n:n+4], c.FR[m:m+4])
}

// Ftrv multiplies the vector v by the column-major matrix xmtrx in place.
func Ftrv(xmtrx *[16]uint32, v []uint32) {
	var out [4]uint32
	for i := 0; i < 4; i++ {
		var acc float64
		for j := 0; j < 4; j++ {
			acc += float64(f32(xmtrx[i+4*j])) * float64(f32(v[j]))
		}
		out[i] = fix32(float32(acc))
	}
	copy(v, out[:])
}

func opFTRV(in *Interpreter, c *cpu.Context, op uint16) {
	if isPR(c) {
		in.unimplemented(c, op, "ftrv with PR=1")
		return
	}
	n := decoder.N(op) & 0xC
	Ftrv(&c.XF, c.FR[n:n+4])
}

func opFRCHG(in *Interpreter, c *cpu.Context, op uint16) {
	c.SetFPSCR(c.FPSCR ^ cpu.FPSCR_FR)
}

func opFSCHG(in *Interpreter, c *cpu.Context, op uint16) {
	c.SetFPSCR(c.FPSCR ^ cpu.FPSCR_SZ)
}
