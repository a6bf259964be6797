package backend

import (
	"fmt"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/interpreter"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

type frame struct {
	c    *cpu.Context
	vals []uint64
}

// step runs one op and reports whether the block continues.
type step func(f *frame) bool

// ThreadedBackend lowers each IR op to a Go closure. It accepts every block
// the emitter produces.
type ThreadedBackend struct {
	bus    memory.Bus
	mapper ir.Mapper
	in     *interpreter.Interpreter

	compiled int
}

// NewThreaded returns a backend that dispatches memory through bus, resolves
// direct accesses through m and runs OpInterp with in.
func NewThreaded(bus memory.Bus, m ir.Mapper, in *interpreter.Interpreter) *ThreadedBackend {
	return &ThreadedBackend{bus: bus, mapper: m, in: in}
}

func (t *ThreadedBackend) Name() string { return Threaded }

func (t *ThreadedBackend) Reset() { t.compiled = 0 }

// Compiled is the number of blocks compiled since the last Reset.
func (t *ThreadedBackend) Compiled() int { return t.compiled }

type threadedCode struct {
	steps []step
	// done[i] is the cycles consumed once step i has run.
	done  []int
	total int
	exit  func(f *frame) uint32
	vals  []uint64
}

func (tc *threadedCode) Size() int { return len(tc.steps) }

func (tc *threadedCode) Run(c *cpu.Context) Exit {
	f := frame{c: c, vals: tc.vals}
	for i, s := range tc.steps {
		if !s(&f) {
			return Exit{Cycles: tc.done[i], Early: true}
		}
	}
	c.PC = tc.exit(&f)
	return Exit{Cycles: tc.total}
}

func (t *ThreadedBackend) Compile(b *ir.Block) (Code, error) {
	if err := ir.Verify(b); err != nil {
		return nil, fmt.Errorf("%w: %w", sh4errors.ErrCInvalidBlock, err)
	}
	tc := &threadedCode{
		steps: make([]step, 0, len(b.Ops)),
		done:  make([]int, 0, len(b.Ops)),
		vals:  make([]uint64, b.NumValues),
	}
	cycles := 0
	for i := range b.Ops {
		o := b.Ops[i]
		s, err := t.lower(&o)
		if err != nil {
			return nil, fmt.Errorf("block %08x op %d: %w", b.Start, i, err)
		}
		cycles += o.Cycles
		tc.steps = append(tc.steps, s)
		tc.done = append(tc.done, cycles)
	}
	tc.total = cycles + b.TailCycles
	tc.exit = lowerExit(b.Exit)
	t.compiled++
	return tc, nil
}

func lowerExit(e ir.Exit) func(f *frame) uint32 {
	switch e.Kind {
	case ir.ExitStatic:
		target := e.Target
		return func(*frame) uint32 { return target }
	case ir.ExitCond:
		cond, taken, next := e.Cond, e.Target, e.Next
		return func(f *frame) uint32 {
			if f.vals[cond] != 0 {
				return taken
			}
			return next
		}
	case ir.ExitDynamic:
		dest := e.Dest
		return func(f *frame) uint32 { return uint32(f.vals[dest]) }
	}
	next := e.Next
	return func(*frame) uint32 { return next }
}

func sext(v uint32, width int) uint64 {
	switch width {
	case 1:
		return uint64(uint32(int32(int8(v))))
	case 2:
		return uint64(uint32(int32(int16(v))))
	}
	return uint64(v)
}

func (t *ThreadedBackend) lower(o *ir.Op) (step, error) {
	d, a, b := o.Dst, o.A, o.B
	switch {
	case o.Code == ir.OpNop:
		return func(*frame) bool { return true }, nil
	case o.Code == ir.OpConst:
		imm := o.Imm
		return func(f *frame) bool { f.vals[d] = imm; return true }, nil
	case o.Code == ir.OpLoadReg:
		r := o.Reg
		return func(f *frame) bool { f.vals[d] = uint64(*f.c.Reg(r)); return true }, nil
	case o.Code == ir.OpStoreReg:
		r := o.Reg
		return func(f *frame) bool { *f.c.Reg(r) = uint32(f.vals[a]); return true }, nil
	case o.Code.IsLoad():
		return t.lowerLoad(o)
	case o.Code.IsStore():
		return t.lowerStore(o)
	case o.Code == ir.OpInterp:
		pc, raw, in := o.PC, uint16(o.Imm), t.in
		if in == nil {
			return nil, fmt.Errorf("interp at %08x without interpreter: %w", pc, sh4errors.ErrCUnsupportedOp)
		}
		return func(f *frame) bool {
			f.c.PC = pc
			in.Execute(f.c, raw)
			f.vals[d] = uint64(f.c.PC)
			return f.c.PC == pc+2
		}, nil
	}

	// The common integer ops get their own closures.
	switch o.Code {
	case ir.OpAdd:
		return func(f *frame) bool { f.vals[d] = uint64(uint32(f.vals[a]) + uint32(f.vals[b])); return true }, nil
	case ir.OpSub:
		return func(f *frame) bool { f.vals[d] = uint64(uint32(f.vals[a]) - uint32(f.vals[b])); return true }, nil
	case ir.OpAnd:
		return func(f *frame) bool { f.vals[d] = f.vals[a] & f.vals[b] & 0xFFFFFFFF; return true }, nil
	case ir.OpOr:
		return func(f *frame) bool { f.vals[d] = (f.vals[a] | f.vals[b]) & 0xFFFFFFFF; return true }, nil
	case ir.OpXor:
		return func(f *frame) bool { f.vals[d] = (f.vals[a] ^ f.vals[b]) & 0xFFFFFFFF; return true }, nil
	case ir.OpSetEQ:
		return func(f *frame) bool {
			f.vals[d] = 0
			if uint32(f.vals[a]) == uint32(f.vals[b]) {
				f.vals[d] = 1
			}
			return true
		}, nil
	}
	if !o.Code.IsPure() {
		return nil, fmt.Errorf("%s: %w", o.Code, sh4errors.ErrCUnsupportedOp)
	}
	code := o.Code
	if code.Arity() == 1 {
		return func(f *frame) bool { f.vals[d] = ir.Apply(code, f.vals[a], 0); return true }, nil
	}
	return func(f *frame) bool { f.vals[d] = ir.Apply(code, f.vals[a], f.vals[b]); return true }, nil
}

func (t *ThreadedBackend) region(o *ir.Op) (*memory.Region, error) {
	if t.mapper == nil {
		return nil, sh4errors.ErrCMapUnavailable
	}
	r := t.mapper.Region(o.Mem.Region)
	if r == nil {
		return nil, fmt.Errorf("region %d: %w", o.Mem.Region, sh4errors.ErrCMapUnavailable)
	}
	return r, nil
}

func (t *ThreadedBackend) lowerLoad(o *ir.Op) (step, error) {
	d, a, w := o.Dst, o.A, o.Code.Width()
	if o.Mem.Class == ir.Direct {
		r, err := t.region(o)
		if err != nil {
			return nil, err
		}
		off := o.Mem.Offset
		return func(f *frame) bool { f.vals[d] = sext(r.Load(off, w), w); return true }, nil
	}
	bus := t.bus
	switch w {
	case 1:
		return func(f *frame) bool { f.vals[d] = sext(uint32(bus.Read8(uint32(f.vals[a]))), 1); return true }, nil
	case 2:
		return func(f *frame) bool { f.vals[d] = sext(uint32(bus.Read16(uint32(f.vals[a]))), 2); return true }, nil
	}
	return func(f *frame) bool { f.vals[d] = uint64(bus.Read32(uint32(f.vals[a]))); return true }, nil
}

func (t *ThreadedBackend) lowerStore(o *ir.Op) (step, error) {
	a, v, w := o.A, o.B, o.Code.Width()
	if o.Mem.Class == ir.Direct {
		r, err := t.region(o)
		if err != nil {
			return nil, err
		}
		off := o.Mem.Offset
		return func(f *frame) bool { r.Store(off, w, uint32(f.vals[v])); return true }, nil
	}
	bus := t.bus
	switch w {
	case 1:
		return func(f *frame) bool { bus.Write8(uint32(f.vals[a]), uint8(f.vals[v])); return true }, nil
	case 2:
		return func(f *frame) bool { bus.Write16(uint32(f.vals[a]), uint16(f.vals[v])); return true }, nil
	}
	return func(f *frame) bool { bus.Write32(uint32(f.vals[a]), uint32(f.vals[v])); return true }, nil
}
