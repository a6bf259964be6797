package ir

import (
	"fmt"
	"maps"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/interpreter"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

func ssaError(b *Block, i int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("block %08x op %d: %s: %w", b.Start, i, msg, sh4errors.ErrVSSAInvalid)
}

// Verify checks that b is well formed: every value is defined once before
// use, operand counts match opcodes, exits name defined values and the cycle
// total adds up.
func Verify(b *Block) error {
	if b.End <= b.Start || b.Count == 0 {
		return fmt.Errorf("block %08x-%08x: %w", b.Start, b.End, sh4errors.ErrCInvalidBlock)
	}
	defined := make([]bool, b.NumValues)
	use := func(i int, v Value) error {
		if v == NoValue || int(v) >= b.NumValues || !defined[v] {
			return ssaError(b, i, "use of undefined %s", v)
		}
		return nil
	}
	for i := range b.Ops {
		o := &b.Ops[i]
		if o.Code >= NumOpCodes {
			return ssaError(b, i, "bad opcode %d", o.Code)
		}
		switch ar := o.Code.Arity(); {
		case ar >= 1:
			if err := use(i, o.A); err != nil {
				return err
			}
			if ar == 2 {
				if err := use(i, o.B); err != nil {
					return err
				}
			} else if o.B != NoValue {
				return ssaError(b, i, "%s takes one operand", o.Code)
			}
		case o.A != NoValue || o.B != NoValue:
			return ssaError(b, i, "%s takes no operands", o.Code)
		}
		if o.Code == OpLoadReg || o.Code == OpStoreReg {
			if o.Reg >= cpu.NumRegs {
				return ssaError(b, i, "bad register %d", o.Reg)
			}
		}
		if (o.Code.IsLoad() || o.Code.IsStore()) && o.Mem.Width != o.Code.Width() {
			return ssaError(b, i, "%s with width %d", o.Code, o.Mem.Width)
		}
		if o.Code.HasResult() {
			if o.Dst == NoValue || int(o.Dst) >= b.NumValues || defined[o.Dst] {
				return ssaError(b, i, "%s redefined or out of range", o.Dst)
			}
			defined[o.Dst] = true
		} else if o.Dst != NoValue {
			return ssaError(b, i, "%s defines %s", o.Code, o.Dst)
		}
	}
	n := len(b.Ops)
	switch b.Exit.Kind {
	case ExitCond:
		if err := use(n, b.Exit.Cond); err != nil {
			return err
		}
	case ExitDynamic:
		if err := use(n, b.Exit.Dest); err != nil {
			return err
		}
	case ExitStatic, ExitFallthrough:
	default:
		return fmt.Errorf("block %08x: exit %s: %w", b.Start, b.Exit.Kind, sh4errors.ErrVMissingTerminal)
	}
	if b.Cycles < 1 || b.sumCycles() != b.Cycles {
		return ssaError(b, n, "cycles %d, ops carry %d", b.Cycles, b.sumCycles())
	}
	return nil
}

// overlay keeps the writes of a trial run away from the real bus.
type overlay struct {
	base  memory.Bus
	bytes map[uint32]byte
}

func newOverlay(base memory.Bus) *overlay {
	return &overlay{base: base, bytes: map[uint32]byte{}}
}

func (o *overlay) dirty(addr uint32, n int) bool {
	for i := 0; i < n; i++ {
		if _, ok := o.bytes[memory.Physical(addr+uint32(i))]; ok {
			return true
		}
	}
	return false
}

func (o *overlay) byteAt(addr uint32) uint8 {
	if v, ok := o.bytes[memory.Physical(addr)]; ok {
		return v
	}
	return o.base.Read8(addr)
}

func (o *overlay) Read8(addr uint32) uint8 { return o.byteAt(addr) }

func (o *overlay) Read16(addr uint32) uint16 {
	if !o.dirty(addr, 2) {
		return o.base.Read16(addr)
	}
	return uint16(o.byteAt(addr)) | uint16(o.byteAt(addr+1))<<8
}

func (o *overlay) Read32(addr uint32) uint32 {
	if !o.dirty(addr, 4) {
		return o.base.Read32(addr)
	}
	return uint32(o.Read16(addr)) | uint32(o.Read16(addr+2))<<16
}

func (o *overlay) put(addr uint32, v uint32, n int) {
	for i := 0; i < n; i++ {
		o.bytes[memory.Physical(addr+uint32(i))] = uint8(v >> (8 * i))
	}
}

func (o *overlay) Write8(addr uint32, v uint8)   { o.put(addr, uint32(v), 1) }
func (o *overlay) Write16(addr uint32, v uint16) { o.put(addr, uint32(v), 2) }
func (o *overlay) Write32(addr uint32, v uint32) { o.put(addr, v, 4) }

// CheckLiveOut runs ref and opt from the same starting context without
// touching bus and reports the first register or memory write on which they
// disagree.
func CheckLiveOut(ref, opt *Block, c *cpu.Context, bus memory.Bus) error {
	ca, cb := *c, *c
	oa, ob := newOverlay(bus), newOverlay(bus)
	Eval(ref, &ca, oa, interpreter.New(oa))
	Eval(opt, &cb, ob, interpreter.New(ob))
	if ca != cb {
		for r := cpu.Reg(0); r < cpu.NumRegs; r++ {
			if x, y := *ca.Reg(r), *cb.Reg(r); x != y {
				return fmt.Errorf("block %08x: %s is %08x, optimized %08x: %w", ref.Start, r, x, y, sh4errors.ErrVLiveOutChanged)
			}
		}
		return fmt.Errorf("block %08x: pc %08x, optimized %08x: %w", ref.Start, ca.PC, cb.PC, sh4errors.ErrVLiveOutChanged)
	}
	if !maps.Equal(oa.bytes, ob.bytes) {
		return fmt.Errorf("block %08x: memory writes differ: %w", ref.Start, sh4errors.ErrVLiveOutChanged)
	}
	return nil
}
