package interpreter

import (
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
)

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func opMOV(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = c.R[decoder.M(op)]
}

func opMOV_IMM(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = uint32(decoder.Simm8(op))
}

func opADD(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] += c.R[decoder.M(op)]
}

func opADD_IMM(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] += uint32(decoder.Simm8(op))
}

func opADDC(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	sum := uint64(c.R[n]) + uint64(c.R[decoder.M(op)]) + uint64(c.T)
	c.R[n] = uint32(sum)
	c.T = uint32(sum >> 32)
}

func opADDV(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	a, b := c.R[n], c.R[decoder.M(op)]
	res := a + b
	c.T = ((a ^ res) & (b ^ res)) >> 31
	c.R[n] = res
}

func opSUB(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] -= c.R[decoder.M(op)]
}

func opSUBC(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	diff := uint64(c.R[n]) - uint64(c.R[decoder.M(op)]) - uint64(c.T)
	c.R[n] = uint32(diff)
	c.T = uint32(diff>>63) & 1
}

func opSUBV(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	a, b := c.R[n], c.R[decoder.M(op)]
	res := a - b
	c.T = ((a ^ b) & (a ^ res)) >> 31
	c.R[n] = res
}

func opNEG(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = -c.R[decoder.M(op)]
}

func opNEGC(in *Interpreter, c *cpu.Context, op uint16) {
	d := uint64(0) - uint64(c.R[decoder.M(op)]) - uint64(c.T)
	c.R[decoder.N(op)] = uint32(d)
	c.T = uint32(d>>63) & 1
}

func opAND(in *Interpreter, c *cpu.Context, op uint16) { c.R[decoder.N(op)] &= c.R[decoder.M(op)] }
func opOR(in *Interpreter, c *cpu.Context, op uint16)  { c.R[decoder.N(op)] |= c.R[decoder.M(op)] }
func opXOR(in *Interpreter, c *cpu.Context, op uint16) { c.R[decoder.N(op)] ^= c.R[decoder.M(op)] }
func opNOT(in *Interpreter, c *cpu.Context, op uint16) { c.R[decoder.N(op)] = ^c.R[decoder.M(op)] }

func opAND_IMM(in *Interpreter, c *cpu.Context, op uint16) { c.R[0] &= decoder.Imm8(op) }
func opOR_IMM(in *Interpreter, c *cpu.Context, op uint16)  { c.R[0] |= decoder.Imm8(op) }
func opXOR_IMM(in *Interpreter, c *cpu.Context, op uint16) { c.R[0] ^= decoder.Imm8(op) }

func opTST(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(c.R[decoder.N(op)]&c.R[decoder.M(op)] == 0)
}

func opTST_IMM(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(c.R[0]&decoder.Imm8(op) == 0)
}

func opCMP_EQ(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(c.R[decoder.N(op)] == c.R[decoder.M(op)])
}

func opCMP_EQ_IMM(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(c.R[0] == uint32(decoder.Simm8(op)))
}

func opCMP_HS(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(c.R[decoder.N(op)] >= c.R[decoder.M(op)])
}

func opCMP_HI(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(c.R[decoder.N(op)] > c.R[decoder.M(op)])
}

func opCMP_GE(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(int32(c.R[decoder.N(op)]) >= int32(c.R[decoder.M(op)]))
}

func opCMP_GT(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(int32(c.R[decoder.N(op)]) > int32(c.R[decoder.M(op)]))
}

func opCMP_PZ(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(int32(c.R[decoder.N(op)]) >= 0)
}

func opCMP_PL(in *Interpreter, c *cpu.Context, op uint16) {
	c.T = b2u(int32(c.R[decoder.N(op)]) > 0)
}

// cmp/str sets T when any byte of Rn equals the same byte of Rm.
func opCMP_STR(in *Interpreter, c *cpu.Context, op uint16) {
	x := c.R[decoder.N(op)] ^ c.R[decoder.M(op)]
	c.T = b2u(x&0xFF000000 == 0 || x&0x00FF0000 == 0 || x&0x0000FF00 == 0 || x&0x000000FF == 0)
}

func opXTRCT(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.R[n] = c.R[decoder.M(op)]<<16 | c.R[n]>>16
}

func opDT(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.R[n]--
	c.T = b2u(c.R[n] == 0)
}

func opEXTU_B(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = c.R[decoder.M(op)] & 0xFF
}

func opEXTU_W(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = c.R[decoder.M(op)] & 0xFFFF
}

func opEXTS_B(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = uint32(int32(int8(c.R[decoder.M(op)])))
}

func opEXTS_W(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = uint32(int32(int16(c.R[decoder.M(op)])))
}

func opSWAP_B(in *Interpreter, c *cpu.Context, op uint16) {
	v := c.R[decoder.M(op)]
	c.R[decoder.N(op)] = v&0xFFFF0000 | (v&0xFF)<<8 | (v>>8)&0xFF
}

func opSWAP_W(in *Interpreter, c *cpu.Context, op uint16) {
	v := c.R[decoder.M(op)]
	c.R[decoder.N(op)] = v<<16 | v>>16
}

func opMOVT(in *Interpreter, c *cpu.Context, op uint16) {
	c.R[decoder.N(op)] = c.T
}

// Shifts and rotates.

func opSHLL(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.T = c.R[n] >> 31
	c.R[n] <<= 1
}

func opSHLR(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.T = c.R[n] & 1
	c.R[n] >>= 1
}

func opSHAR(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.T = c.R[n] & 1
	c.R[n] = uint32(int32(c.R[n]) >> 1)
}

func opROTL(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.T = c.R[n] >> 31
	c.R[n] = c.R[n]<<1 | c.T
}

func opROTR(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.T = c.R[n] & 1
	c.R[n] = c.R[n]>>1 | c.T<<31
}

func opROTCL(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	t := c.R[n] >> 31
	c.R[n] = c.R[n]<<1 | c.T
	c.T = t
}

func opROTCR(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	t := c.R[n] & 1
	c.R[n] = c.R[n]>>1 | c.T<<31
	c.T = t
}

func shiftBy(k uint, left bool) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		n := decoder.N(op)
		if left {
			c.R[n] <<= k
		} else {
			c.R[n] >>= k
		}
	}
}

// ShadValue is the result of shad for value v and shift register s.
func ShadValue(v, s uint32) uint32 {
	switch {
	case s&0x80000000 == 0:
		return v << (s & 0x1F)
	case s&0x1F == 0:
		return uint32(int32(v) >> 31)
	default:
		return uint32(int32(v) >> ((^s & 0x1F) + 1))
	}
}

// ShldValue is the result of shld for value v and shift register s.
func ShldValue(v, s uint32) uint32 {
	switch {
	case s&0x80000000 == 0:
		return v << (s & 0x1F)
	case s&0x1F == 0:
		return 0
	default:
		return v >> ((^s & 0x1F) + 1)
	}
}

func opSHAD(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.R[n] = ShadValue(c.R[n], c.R[decoder.M(op)])
}

func opSHLD(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	c.R[n] = ShldValue(c.R[n], c.R[decoder.M(op)])
}

// Multiply and divide.

func opMUL_L(in *Interpreter, c *cpu.Context, op uint16) {
	c.MACL = c.R[decoder.N(op)] * c.R[decoder.M(op)]
}

func opMULS_W(in *Interpreter, c *cpu.Context, op uint16) {
	c.MACL = uint32(int32(int16(c.R[decoder.N(op)])) * int32(int16(c.R[decoder.M(op)])))
}

func opMULU_W(in *Interpreter, c *cpu.Context, op uint16) {
	c.MACL = (c.R[decoder.N(op)] & 0xFFFF) * (c.R[decoder.M(op)] & 0xFFFF)
}

func opDMULS_L(in *Interpreter, c *cpu.Context, op uint16) {
	c.SetMAC(uint64(int64(int32(c.R[decoder.N(op)])) * int64(int32(c.R[decoder.M(op)]))))
}

func opDMULU_L(in *Interpreter, c *cpu.Context, op uint16) {
	c.SetMAC(uint64(c.R[decoder.N(op)]) * uint64(c.R[decoder.M(op)]))
}

func opDIV0S(in *Interpreter, c *cpu.Context, op uint16) {
	q := c.R[decoder.N(op)] >> 31
	m := c.R[decoder.M(op)] >> 31
	sr := c.SR &^ (cpu.SR_Q | cpu.SR_M)
	c.SR = sr | q<<8 | m<<9
	c.T = q ^ m
}

func opDIV0U(in *Interpreter, c *cpu.Context, op uint16) {
	c.SR &^= cpu.SR_Q | cpu.SR_M
	c.T = 0
}

// Div1Step performs one non-restoring division step and returns the new Rn,
// Q and T. q and m are the SR.Q and SR.M bits.
func Div1Step(rn, rm, t, q, m uint32) (uint32, uint32, uint32) {
	oldQ := q
	q = rn >> 31
	rn = rn<<1 | t
	var carry uint32
	tmp := rn
	if oldQ == m {
		rn -= rm
		carry = b2u(rn > tmp)
	} else {
		rn += rm
		carry = b2u(rn < tmp)
	}
	q ^= carry ^ m
	return rn, q, b2u(q == m)
}

func opDIV1(in *Interpreter, c *cpu.Context, op uint16) {
	n := decoder.N(op)
	q := (c.SR & cpu.SR_Q) >> 8
	m := (c.SR & cpu.SR_M) >> 9
	var rn uint32
	rn, q, c.T = Div1Step(c.R[n], c.R[decoder.M(op)], c.T, q, m)
	c.R[n] = rn
	c.SR = c.SR&^cpu.SR_Q | q<<8
}

const (
	mac48Max = int64(0x00007FFFFFFFFFFF)
	mac48Min = -int64(0x0000800000000000)
)

func opMAC_L(in *Interpreter, c *cpu.Context, op uint16) {
	n, m := decoder.N(op), decoder.M(op)
	a := int32(in.read32(c.R[n]))
	c.R[n] += 4
	b := int32(in.read32(c.R[m]))
	c.R[m] += 4
	mac := int64(c.MAC()) + int64(a)*int64(b)
	if c.SR&cpu.SR_S != 0 {
		if mac > mac48Max {
			mac = mac48Max
		} else if mac < mac48Min {
			mac = mac48Min
		}
	}
	c.SetMAC(uint64(mac))
}

func opMAC_W(in *Interpreter, c *cpu.Context, op uint16) {
	n, m := decoder.N(op), decoder.M(op)
	a := int32(int16(in.bus.Read16(c.R[n])))
	c.R[n] += 2
	b := int32(int16(in.bus.Read16(c.R[m])))
	c.R[m] += 2
	mul := int64(a) * int64(b)
	if c.SR&cpu.SR_S == 0 {
		c.SetMAC(uint64(int64(c.MAC()) + mul))
		return
	}
	acc := int64(int32(c.MACL)) + mul
	switch {
	case acc > 0x7FFFFFFF:
		acc = 0x7FFFFFFF
		c.MACH |= 1
	case acc < -0x80000000:
		acc = -0x80000000
		c.MACH |= 1
	}
	c.MACL = uint32(acc)
}
