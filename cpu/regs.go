package cpu

import (
	"fmt"
	"unsafe"
)

// Reg names one 32-bit register slot of the context.
type Reg uint8

const (
	RegR0    Reg = 0
	RegFR0   Reg = 16
	RegXF0   Reg = 32
	RegBank0 Reg = 48

	RegPR Reg = 56 + iota - 4
	RegGBR
	RegVBR
	RegMACH
	RegMACL
	RegFPUL
	RegT
	RegSR
	RegFPSCR
	RegSSR
	RegSPC
	RegSGR
	RegDBR

	NumRegs
)

// RegR returns the id of general register n.
func RegR(n int) Reg { return RegR0 + Reg(n) }

// RegFR returns the id of single float register n of the active bank.
func RegFR(n int) Reg { return RegFR0 + Reg(n) }

// RegXF returns the id of single float register n of the inactive bank.
func RegXF(n int) Reg { return RegXF0 + Reg(n) }

func (r Reg) String() string {
	switch {
	case r < RegFR0:
		return fmt.Sprintf("r%d", r)
	case r < RegXF0:
		return fmt.Sprintf("fr%d", r-RegFR0)
	case r < RegBank0:
		return fmt.Sprintf("xf%d", r-RegXF0)
	case r < RegPR:
		return fmt.Sprintf("r%d_bank", r-RegBank0)
	}
	switch r {
	case RegPR:
		return "pr"
	case RegGBR:
		return "gbr"
	case RegVBR:
		return "vbr"
	case RegMACH:
		return "mach"
	case RegMACL:
		return "macl"
	case RegFPUL:
		return "fpul"
	case RegT:
		return "t"
	case RegSR:
		return "sr"
	case RegFPSCR:
		return "fpscr"
	case RegSSR:
		return "ssr"
	case RegSPC:
		return "spc"
	case RegSGR:
		return "sgr"
	case RegDBR:
		return "dbr"
	}
	return fmt.Sprintf("reg%d", uint8(r))
}

// Reg returns a pointer to the slot named by id.
func (c *Context) Reg(id Reg) *uint32 {
	return (*uint32)(unsafe.Add(unsafe.Pointer(c), RegOffset(id)))
}

var regBlockBase = unsafe.Offsetof(Context{}.R)

// RegOffset returns the byte offset of the slot named by id from the start of Context.
func RegOffset(id Reg) uintptr {
	if id >= NumRegs {
		panic(fmt.Sprintf("cpu: register id %d out of range", id))
	}
	return regBlockBase + uintptr(id)*4
}

// PCOffset is the byte offset of Context.PC.
var PCOffset = unsafe.Offsetof(Context{}.PC)

// SpillOffset returns the byte offset of spill slot i.
func SpillOffset(i int) uintptr {
	return unsafe.Offsetof(Context{}.Spill) + uintptr(i)*8
}
