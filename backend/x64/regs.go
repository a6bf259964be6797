// Package x64 compiles IR blocks to x86-64 machine code.
package x64

// X86Reg is an x86-64 register with its ModRM encoding.
type X86Reg struct {
	Name    string
	RegBits byte // 3-bit code for ModRM/SIB
	REXBit  byte // 1 if register index >= 8
}

func (r X86Reg) String() string { return r.Name }

// General registers used by generated code. Only caller-saved registers
// appear here.
var (
	RAX = X86Reg{"rax", 0, 0} // scratch, result of every op
	RCX = X86Reg{"rcx", 1, 0} // scratch, second operand and shift count
	RDX = X86Reg{"rdx", 2, 0}
	RSI = X86Reg{"rsi", 6, 0}
	RDI = X86Reg{"rdi", 7, 0} // *cpu.Context for the whole block
	R8  = X86Reg{"r8", 0, 1}
	R9  = X86Reg{"r9", 1, 1}
	R10 = X86Reg{"r10", 2, 1}
	R11 = X86Reg{"r11", 3, 1}

	XMM0 = X86Reg{"xmm0", 0, 0}
	XMM1 = X86Reg{"xmm1", 1, 0}
)

// allocatable lists the registers handed to SSA values, in allocation order.
var allocatable = []X86Reg{RDX, R8, R9, R10, R11}

// CtxReg holds the context pointer on entry.
var CtxReg = RDI
