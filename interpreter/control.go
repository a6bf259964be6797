package interpreter

import (
	"fmt"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/log"
)

// Delayed branches compute their target and link value before the slot runs
// and commit them after it.

func opBRA(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := decoder.Disp12Target(pc, op)
	if in.delaySlot(c, pc) {
		c.PC = target
	}
}

func opBSR(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := decoder.Disp12Target(pc, op)
	if in.delaySlot(c, pc) {
		c.PR = pc + 4
		c.PC = target
	}
}

func opBRAF(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := pc + 4 + c.R[decoder.N(op)]
	if in.delaySlot(c, pc) {
		c.PC = target
	}
}

func opBSRF(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := pc + 4 + c.R[decoder.N(op)]
	if in.delaySlot(c, pc) {
		c.PR = pc + 4
		c.PC = target
	}
}

func opJMP(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := c.R[decoder.N(op)]
	if in.delaySlot(c, pc) {
		c.PC = target
	}
}

func opJSR(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := c.R[decoder.N(op)]
	if in.delaySlot(c, pc) {
		c.PR = pc + 4
		c.PC = target
	}
}

func opRTS(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := c.PR
	if in.delaySlot(c, pc) {
		c.PC = target
	}
}

// rte restores SR before the slot so the slot runs in the restored mode.
func opRTE(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	target := c.SPC
	c.SetSR(c.SSR)
	if in.delaySlot(c, pc) {
		c.PC = target
	}
}

func condBranch(onT uint32, delayed bool) handler {
	return func(in *Interpreter, c *cpu.Context, op uint16) {
		pc := c.PC - 2
		taken := c.T == onT
		target := decoder.Disp8Target(pc, op)
		if delayed && !in.delaySlot(c, pc) {
			return
		}
		if taken {
			c.PC = target
		}
	}
}

func opTRAPA(in *Interpreter, c *cpu.Context, op uint16) {
	c.TRA = decoder.Imm8(op) << 2
	c.RaiseException(c.PC, cpu.ExTrap)
}

func opSLEEP(in *Interpreter, c *cpu.Context, op uint16) {
	c.Sleeping = true
}

func opILLEGAL(in *Interpreter, c *cpu.Context, op uint16) {
	pc := c.PC - 2
	log.Debug(log.CpuInterp, "illegal instruction", "pc", fmt.Sprintf("%08x", pc), "op", fmt.Sprintf("%04x", op))
	c.RaiseException(pc, cpu.ExIllegalInstr)
}

func opNOP(in *Interpreter, c *cpu.Context, op uint16) {}

func opLDTLB(in *Interpreter, c *cpu.Context, op uint16) {
	log.Debug(log.CpuInterp, "ldtlb ignored", "pc", fmt.Sprintf("%08x", c.PC-2))
}

func opCLRT(in *Interpreter, c *cpu.Context, op uint16) { c.T = 0 }
func opSETT(in *Interpreter, c *cpu.Context, op uint16) { c.T = 1 }
func opCLRS(in *Interpreter, c *cpu.Context, op uint16) { c.SR &^= cpu.SR_S }
func opSETS(in *Interpreter, c *cpu.Context, op uint16) { c.SR |= cpu.SR_S }

func opCLRMAC(in *Interpreter, c *cpu.Context, op uint16) {
	c.MACH, c.MACL = 0, 0
}
