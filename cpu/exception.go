package cpu

// Exception event codes written to EXPEVT.
const (
	ExManualReset      uint32 = 0x020
	ExTrap             uint32 = 0x160
	ExIllegalInstr     uint32 = 0x180
	ExSlotIllegalInstr uint32 = 0x1A0
	ExFpuDisabled      uint32 = 0x800
	ExSlotFpuDisabled  uint32 = 0x820
)

const (
	vectorGeneral   = 0x100
	vectorInterrupt = 0x600
)

// RaiseException enters the general exception vector. epc is the address
// execution resumes at after rte. A fault while SR.BL is set resets the CPU.
// It reports false when the fault caused a reset.
func (c *Context) RaiseException(epc uint32, code uint32) bool {
	if c.SR&SR_BL != 0 {
		c.manualReset()
		return false
	}
	c.EXPEVT = code
	c.enter(epc)
	c.PC = c.VBR + vectorGeneral
	return true
}

// InterruptAccepted reports whether an interrupt of the given priority level
// would be taken now.
func (c *Context) InterruptAccepted(level int) bool {
	if c.SR&SR_BL != 0 {
		return false
	}
	imask := int(c.SR&SR_IMASK) >> 4
	return level > imask
}

// AcceptInterrupt enters the interrupt vector. The caller checks InterruptAccepted first.
func (c *Context) AcceptInterrupt(intevt uint32) {
	c.INTEVT = intevt
	c.Sleeping = false
	c.enter(c.PC)
	c.PC = c.VBR + vectorInterrupt
}

func (c *Context) enter(epc uint32) {
	c.SSR = c.SRFull()
	c.SPC = epc
	c.SGR = c.R[15]
	c.SetSR(c.SRFull() | SR_BL | SR_MD | SR_RB)
}

func (c *Context) manualReset() {
	c.SetSR(ResetSR)
	c.SetFPSCR(ResetFPSCR)
	c.EXPEVT = ExManualReset
	c.PC = ResetPC
	c.VBR = 0
	c.Sleeping = false
}
