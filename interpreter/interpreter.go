// Package interpreter is the reference SH4 interpreter. Every compiled block
// must leave the context exactly as running these handlers would.
package interpreter

import (
	"fmt"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/memory"
)

// UnimplementedFunc is called for FPU forms the core does not emulate.
type UnimplementedFunc func(pc uint32, op uint16, reason string)

type Interpreter struct {
	bus      memory.Bus
	prefetch memory.Prefetcher
	onUnimpl UnimplementedFunc

	slotCycles int
	executed   uint64
}

type Option func(*Interpreter)

// WithUnimplementedHook installs the not-implemented diagnostic callback.
func WithUnimplementedHook(f UnimplementedFunc) Option {
	return func(in *Interpreter) { in.onUnimpl = f }
}

// WithPrefetcher routes pref @Rn to the store queue. A bus that is itself a
// Prefetcher is used when no prefetcher is given.
func WithPrefetcher(p memory.Prefetcher) Option {
	return func(in *Interpreter) { in.prefetch = p }
}

func New(bus memory.Bus, opts ...Option) *Interpreter {
	in := &Interpreter{bus: bus}
	if p, ok := bus.(memory.Prefetcher); ok {
		in.prefetch = p
	}
	for _, o := range opts {
		o(in)
	}
	return in
}

// Bus returns the bus the interpreter reads and writes.
func (in *Interpreter) Bus() memory.Bus { return in.bus }

// Executed is the number of instructions run, delay slots included.
func (in *Interpreter) Executed() uint64 { return in.executed }

// Step fetches the instruction at ctx.PC and executes it.
func (in *Interpreter) Step(c *cpu.Context) int {
	return in.Execute(c, in.bus.Read16(c.PC))
}

// Execute runs opcode as the instruction located at c.PC, including its delay
// slot when it is a delayed branch, and returns the issue cycles consumed.
func (in *Interpreter) Execute(c *cpu.Context, op uint16) int {
	d := decoder.Decode(op)
	pc := c.PC
	c.PC = pc + 2
	in.slotCycles = 0
	in.executed++
	if d.Is(decoder.ClassUsesFPU) && c.SR&cpu.SR_FD != 0 {
		c.RaiseException(pc, cpu.ExFpuDisabled)
		return d.Cycles
	}
	handlers[d.Kind](in, c, op)
	return d.Cycles + in.slotCycles
}

// delaySlot executes the instruction after the branch at pc. It reports false
// when the slot raised an exception; the branch must then not complete.
func (in *Interpreter) delaySlot(c *cpu.Context, pc uint32) bool {
	slot := pc + 2
	op := in.bus.Read16(slot)
	d := decoder.Decode(op)
	in.executed++
	in.slotCycles = d.Cycles
	if d.Kind == decoder.ILLEGAL || d.Is(decoder.ClassSlotIllegal) {
		log.Debug(log.CpuInterp, "slot illegal", "pc", fmt.Sprintf("%08x", pc), "slot", decoder.Disassemble(slot, op))
		c.RaiseException(pc, cpu.ExSlotIllegalInstr)
		return false
	}
	if d.Is(decoder.ClassUsesFPU) && c.SR&cpu.SR_FD != 0 {
		c.RaiseException(pc, cpu.ExSlotFpuDisabled)
		return false
	}
	c.PC = slot + 2
	handlers[d.Kind](in, c, op)
	return c.PC == slot+2
}

func (in *Interpreter) unimplemented(c *cpu.Context, op uint16, reason string) {
	pc := c.PC - 2
	log.Warn(log.CpuInterp, "fpu form not implemented", "pc", fmt.Sprintf("%08x", pc), "op", decoder.Disassemble(pc, op), "reason", reason)
	if in.onUnimpl != nil {
		in.onUnimpl(pc, op, reason)
	}
}

func (in *Interpreter) read8(addr uint32) uint32  { return uint32(int32(int8(in.bus.Read8(addr)))) }
func (in *Interpreter) read16(addr uint32) uint32 { return uint32(int32(int16(in.bus.Read16(addr)))) }
func (in *Interpreter) read32(addr uint32) uint32 { return in.bus.Read32(addr) }
