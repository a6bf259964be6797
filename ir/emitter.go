package ir

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

const DefaultMaxBlockOps = 64

type Config struct {
	// MaxBlockOps bounds the guest instructions in one block, delay slots
	// included.
	MaxBlockOps int
}

// Emitter lowers guest code to IR blocks.
type Emitter struct {
	bus memory.Bus
	cfg Config
}

func NewEmitter(bus memory.Bus, cfg Config) *Emitter {
	if cfg.MaxBlockOps <= 0 {
		cfg.MaxBlockOps = DefaultMaxBlockOps
	}
	return &Emitter{bus: bus, cfg: cfg}
}

// builder accumulates the ops of one block.
type builder struct {
	bus     memory.Bus
	b       *Block
	pc      uint32
	pending int
	inSlot  bool
	ended   bool
}

// EmitBlock decodes guest code at start and returns its IR under mode.
func (em *Emitter) EmitBlock(mode cpu.Mode, start uint32) (*Block, error) {
	if start&1 != 0 {
		return nil, fmt.Errorf("block at %08x: odd address: %w", start, sh4errors.ErrCInvalidBlock)
	}
	e := &builder{bus: em.bus, b: &Block{Start: start, Mode: mode}}
	pc := start
	for !e.ended {
		raw := em.bus.Read16(pc)
		d := decoder.Decode(raw)
		size := 1
		if d.Is(decoder.ClassDelayed) {
			size = 2
		}
		if e.b.Count > 0 && e.b.Count+size > em.cfg.MaxBlockOps {
			e.b.Exit = Exit{Kind: ExitFallthrough, Next: pc, Cond: NoValue, Dest: NoValue}
			break
		}
		e.pc = pc
		e.begin(d)
		switch {
		case d.Is(decoder.ClassDelayed) && !slotAllowed(em.bus.Read16(pc+2)):
			// the interpreter raises the slot exception
			e.b.Count++
			e.exitDynamic(e.interp(raw))
		default:
			emitters[d.Kind](e, raw)
		}
		pc += 2 * uint32(size)
		if (d.Is(decoder.ClassBranch) || d.Is(decoder.ClassEndsBlock)) && !e.ended {
			return nil, fmt.Errorf("%s at %08x did not end the block: %w", d.Kind, e.pc, sh4errors.ErrCInvalidBlock)
		}
	}
	b := e.b
	b.End = pc
	b.TailCycles = e.pending
	b.Cycles = b.sumCycles()
	if b.Cycles < 1 {
		b.TailCycles += 1 - b.Cycles
		b.Cycles = 1
	}
	b.CodeHash = HashCode(em.bus, b.Start, b.End)
	return b, nil
}

// HashCode digests the guest code bytes in [start, end).
func HashCode(bus memory.Bus, start, end uint32) [32]byte {
	buf := make([]byte, 0, end-start)
	for a := start; a < end; a += 2 {
		w := bus.Read16(a)
		buf = append(buf, byte(w), byte(w>>8))
	}
	return blake2b.Sum256(buf)
}

func slotAllowed(raw uint16) bool {
	d := decoder.Decode(raw)
	return d.Kind != decoder.ILLEGAL && !d.Is(decoder.ClassSlotIllegal)
}

func (e *builder) begin(d *decoder.Op) {
	e.pending += d.Cycles
	e.b.Count++
	if d.Is(decoder.ClassUsesFPU) {
		e.b.UsesFPU = true
	}
}

// slot emits the delay slot of the branch being emitted.
func (e *builder) slot() {
	pc := e.pc
	e.pc = pc + 2
	raw := e.bus.Read16(e.pc)
	d := decoder.Decode(raw)
	e.begin(d)
	e.inSlot = true
	emitters[d.Kind](e, raw)
	e.inSlot = false
	e.pc = pc
}

func (e *builder) mode() cpu.Mode { return e.b.Mode }

func (e *builder) push(o Op) Value {
	o.PC = e.pc
	o.Cycles = e.pending
	e.pending = 0
	o.Dst = NoValue
	if o.Code.HasResult() {
		o.Dst = Value(e.b.NumValues)
		e.b.NumValues++
	}
	e.b.Ops = append(e.b.Ops, o)
	return o.Dst
}

func (e *builder) k(v uint32) Value { return e.push(Op{Code: OpConst, Imm: uint64(v), A: NoValue, B: NoValue}) }

func (e *builder) get(r cpu.Reg) Value {
	return e.push(Op{Code: OpLoadReg, Reg: r, A: NoValue, B: NoValue})
}

func (e *builder) set(r cpu.Reg, v Value) {
	e.push(Op{Code: OpStoreReg, Reg: r, A: v, B: NoValue})
}

func (e *builder) bin(c OpCode, a, b Value) Value { return e.push(Op{Code: c, A: a, B: b}) }
func (e *builder) un(c OpCode, a Value) Value     { return e.push(Op{Code: c, A: a, B: NoValue}) }

func (e *builder) ld(c OpCode, addr Value) Value {
	return e.push(Op{Code: c, A: addr, B: NoValue, Mem: Mem{Width: c.Width()}})
}

func (e *builder) st(c OpCode, addr, v Value) {
	e.push(Op{Code: c, A: addr, B: v, Mem: Mem{Width: c.Width()}})
}

func (e *builder) interp(raw uint16) Value {
	return e.push(Op{Code: OpInterp, Imm: uint64(raw), A: NoValue, B: NoValue})
}

func (e *builder) r(n int) Value       { return e.get(cpu.RegR(n)) }
func (e *builder) setR(n int, v Value) { e.set(cpu.RegR(n), v) }
func (e *builder) setT(v Value)        { e.set(cpu.RegT, v) }

func (e *builder) addK(a Value, k uint32) Value { return e.bin(OpAdd, a, e.k(k)) }

func (e *builder) exitStatic(target uint32) {
	e.b.Exit = Exit{Kind: ExitStatic, Target: target, Cond: NoValue, Dest: NoValue}
	e.ended = true
}

func (e *builder) exitCond(cond Value, target, next uint32) {
	e.b.Exit = Exit{Kind: ExitCond, Cond: cond, Target: target, Next: next, Dest: NoValue}
	e.ended = true
}

func (e *builder) exitDynamic(dest Value) {
	e.b.Exit = Exit{Kind: ExitDynamic, Dest: dest, Cond: NoValue}
	e.ended = true
}
