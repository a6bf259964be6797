// Package cpu holds the complete guest SH4 register state.
package cpu

import (
	"fmt"
	"math"
	"strings"
)

// SR bits. T lives in its own word, see Context.T.
const (
	SR_T     = 1 << 0
	SR_S     = 1 << 1
	SR_IMASK = 0xF << 4
	SR_Q     = 1 << 8
	SR_M     = 1 << 9
	SR_FD    = 1 << 15
	SR_BL    = 1 << 28
	SR_RB    = 1 << 29
	SR_MD    = 1 << 30

	SRWriteMask = 0x700083F3
)

// FPSCR bits.
const (
	FPSCR_RM    = 0x3
	FPSCR_FLAG  = 0x1F << 2
	FPSCR_EN    = 0x1F << 7
	FPSCR_CAUSE = 0x3F << 12
	FPSCR_DN    = 1 << 18
	FPSCR_PR    = 1 << 19
	FPSCR_SZ    = 1 << 20
	FPSCR_FR    = 1 << 21

	FPSCRWriteMask = 0x003FFFFF
)

// Power-on values.
const (
	ResetPC    = 0xA0000000
	ResetSR    = 0x700000F0
	ResetFPSCR = 0x00040001
)

// Canonical NaN bit patterns produced by the FPU.
const (
	CanonicalNaN32 uint32 = 0x7FBFFFFF
	CanonicalNaN64 uint64 = 0x7FF7FFFFFFFFFFFF
)

// Mode is the specialization mode a block is compiled under: FPSCR.PR in bit 0
// and FPSCR.SZ in bit 1.
type Mode uint8

const (
	ModePR Mode = 1 << 0
	ModeSZ Mode = 1 << 1
)

func (m Mode) PR() bool { return m&ModePR != 0 }
func (m Mode) SZ() bool { return m&ModeSZ != 0 }

func (m Mode) String() string {
	return fmt.Sprintf("pr%d/sz%d", m&ModePR, (m&ModeSZ)>>1)
}

// Context is the guest CPU state. It is owned by a single driver.
//
// The uint32 register block from R through FPSCR is laid out contiguously;
// generated code addresses it through RegOffset.
type Context struct {
	R     [16]uint32
	FR    [16]uint32
	XF    [16]uint32
	RBank [8]uint32

	PR    uint32
	GBR   uint32
	VBR   uint32
	MACH  uint32
	MACL  uint32
	FPUL  uint32
	T     uint32
	SR    uint32 // status bits without T
	FPSCR uint32
	SSR   uint32
	SPC   uint32
	SGR   uint32
	DBR   uint32

	PC uint32

	EXPEVT uint32
	INTEVT uint32
	TRA    uint32

	Sleeping bool

	// Spill holds register allocator overflow for generated code.
	Spill [SpillSlots]uint64
}

const SpillSlots = 16

// NewContext returns a context in the power-on state.
func NewContext() *Context {
	c := &Context{}
	c.Reset()
	return c
}

// Reset puts the context into the power-on state.
func (c *Context) Reset() {
	*c = Context{}
	c.PC = ResetPC
	c.SR = ResetSR &^ SR_T
	c.FPSCR = ResetFPSCR
}

// SRFull returns SR with the T bit merged in.
func (c *Context) SRFull() uint32 {
	return c.SR | (c.T & 1)
}

// SetSR writes SR (T included) and swaps the R0-R7 banks when the active bank changes.
func (c *Context) SetSR(v uint32) {
	v &= SRWriteMask
	before := c.bankSelected()
	c.SR = v &^ SR_T
	c.T = v & SR_T
	if c.bankSelected() != before {
		c.swapBanks()
	}
}

// bankSelected reports whether bank 1 is the active bank. RB only takes effect in privileged mode.
func (c *Context) bankSelected() bool {
	return c.SR&SR_MD != 0 && c.SR&SR_RB != 0
}

func (c *Context) swapBanks() {
	for i := 0; i < 8; i++ {
		c.R[i], c.RBank[i] = c.RBank[i], c.R[i]
	}
}

// SetFPSCR writes FPSCR and swaps FR/XF when the FR bit changes. PR and SZ only
// change how the register file is interpreted.
func (c *Context) SetFPSCR(v uint32) {
	v &= FPSCRWriteMask
	if (v^c.FPSCR)&FPSCR_FR != 0 {
		c.FR, c.XF = c.XF, c.FR
	}
	c.FPSCR = v
}

// Mode returns the current specialization mode.
func (c *Context) Mode() Mode {
	var m Mode
	if c.FPSCR&FPSCR_PR != 0 {
		m |= ModePR
	}
	if c.FPSCR&FPSCR_SZ != 0 {
		m |= ModeSZ
	}
	return m
}

// DR returns double register n as the concatenation FR[2n]:FR[2n+1].
func (c *Context) DR(n int) uint64 {
	return uint64(c.FR[2*n])<<32 | uint64(c.FR[2*n+1])
}

func (c *Context) SetDR(n int, v uint64) {
	c.FR[2*n] = uint32(v >> 32)
	c.FR[2*n+1] = uint32(v)
}

// XD returns the extended double register n from the XF bank.
func (c *Context) XD(n int) uint64 {
	return uint64(c.XF[2*n])<<32 | uint64(c.XF[2*n+1])
}

func (c *Context) SetXD(n int, v uint64) {
	c.XF[2*n] = uint32(v >> 32)
	c.XF[2*n+1] = uint32(v)
}

func (c *Context) FRf(n int) float32 { return math.Float32frombits(c.FR[n]) }

func (c *Context) SetFRf(n int, f float32) { c.FR[n] = math.Float32bits(f) }

func (c *Context) DRf(n int) float64 { return math.Float64frombits(c.DR(n)) }

func (c *Context) SetDRf(n int, f float64) { c.SetDR(n, math.Float64bits(f)) }

// MAC returns MACH:MACL.
func (c *Context) MAC() uint64 {
	return uint64(c.MACH)<<32 | uint64(c.MACL)
}

func (c *Context) SetMAC(v uint64) {
	c.MACH = uint32(v >> 32)
	c.MACL = uint32(v)
}

// FixNaN32 returns the canonical NaN for any NaN input.
func FixNaN32(v uint32) uint32 {
	if v&0x7F800000 == 0x7F800000 && v&0x007FFFFF != 0 {
		return CanonicalNaN32
	}
	return v
}

// FixNaN64 returns the canonical NaN for any NaN input.
func FixNaN64(v uint64) uint64 {
	if v&0x7FF0000000000000 == 0x7FF0000000000000 && v&0x000FFFFFFFFFFFFF != 0 {
		return CanonicalNaN64
	}
	return v
}

func (c *Context) String() string {
	var sb strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&sb, "r%-2d=%08x ", i, c.R[i])
		if i%4 == 3 {
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "pc=%08x pr=%08x sr=%08x t=%d gbr=%08x vbr=%08x\n", c.PC, c.PR, c.SRFull(), c.T, c.GBR, c.VBR)
	fmt.Fprintf(&sb, "mach=%08x macl=%08x fpul=%08x fpscr=%08x mode=%s", c.MACH, c.MACL, c.FPUL, c.FPSCR, c.Mode())
	return sb.String()
}
