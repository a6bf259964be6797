package ir

import (
	"fmt"

	"github.com/colorfulnotion/sh4core/cpu"
)

type Options struct {
	ForwardLoads bool
	ReuseMemory  bool
	Fold         bool
	DeadStores   bool
	DeadCode     bool
	// MaxPasses bounds the rounds run until nothing changes.
	MaxPasses int
}

func DefaultOptions() Options {
	return Options{
		ForwardLoads: true,
		ReuseMemory:  true,
		Fold:         true,
		DeadStores:   true,
		DeadCode:     true,
		MaxPasses:    4,
	}
}

type Stats struct {
	ForwardedLoads int
	ReusedLoads    int
	Folded         int
	DeadStores     int
	DeadOps        int
	Passes         int
}

// Removed is the number of ops the optimizer dropped.
func (s Stats) Removed() int {
	return s.ForwardedLoads + s.ReusedLoads + s.DeadStores + s.DeadOps
}

func (s Stats) String() string {
	return fmt.Sprintf("fwd=%d reuse=%d fold=%d dse=%d dce=%d passes=%d",
		s.ForwardedLoads, s.ReusedLoads, s.Folded, s.DeadStores, s.DeadOps, s.Passes)
}

// Optimize rewrites b in place. Every guest register is live out of the
// block, so only stores overwritten inside it are removed.
func Optimize(b *Block, opts Options) (Stats, error) {
	var st Stats
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = 1
	}
	for st.Passes < opts.MaxPasses {
		st.Passes++
		changed := false
		if opts.ForwardLoads || opts.ReuseMemory {
			changed = forward(b, opts, &st) || changed
		}
		if opts.Fold {
			changed = fold(b, &st) || changed
		}
		if opts.DeadStores {
			changed = deadStores(b, &st) || changed
		}
		if opts.DeadCode {
			changed = deadCode(b, &st) || changed
		}
		if !changed {
			break
		}
	}
	if err := Verify(b); err != nil {
		return st, err
	}
	return st, nil
}

// renamer maps values replaced by an equivalent earlier value.
type renamer []Value

func newRenamer(n int) renamer {
	r := make(renamer, n)
	for i := range r {
		r[i] = Value(i)
	}
	return r
}

func (r renamer) get(v Value) Value {
	if v == NoValue {
		return v
	}
	return r[v]
}

func (r renamer) apply(o *Op) {
	o.A = r.get(o.A)
	o.B = r.get(o.B)
}

func (r renamer) applyExit(e *Exit) {
	e.Cond = r.get(e.Cond)
	e.Dest = r.get(e.Dest)
}

// compact drops the ops not kept. Cycles of a dropped op are charged at the
// next surviving op.
func compact(b *Block, keep []bool) {
	out := b.Ops[:0]
	carry := 0
	for i := range b.Ops {
		if !keep[i] {
			carry += b.Ops[i].Cycles
			continue
		}
		o := b.Ops[i]
		o.Cycles += carry
		carry = 0
		out = append(out, o)
	}
	b.Ops = out
	b.TailCycles += carry
}

type memKey struct {
	region int
	offset uint32
	code   OpCode
}

// forward replaces register loads with the value last stored or loaded, and
// direct loads with an earlier identical load. OpInterp reads and writes
// everything.
func forward(b *Block, opts Options, st *Stats) bool {
	rn := newRenamer(b.NumValues)
	keep := make([]bool, len(b.Ops))
	var regs [cpu.NumRegs]Value
	reset := func() {
		for i := range regs {
			regs[i] = NoValue
		}
	}
	reset()
	mem := map[memKey]Value{}
	changed := false
	for i := range b.Ops {
		o := &b.Ops[i]
		rn.apply(o)
		keep[i] = true
		switch {
		case o.Code == OpLoadReg:
			if v := regs[o.Reg]; opts.ForwardLoads && v != NoValue {
				rn[o.Dst] = v
				keep[i] = false
				st.ForwardedLoads++
				changed = true
				continue
			}
			regs[o.Reg] = o.Dst
		case o.Code == OpStoreReg:
			regs[o.Reg] = o.A
		case o.Code == OpInterp:
			reset()
			clear(mem)
		case o.Code.IsLoad() && o.Mem.Class == Direct:
			k := memKey{o.Mem.Region, o.Mem.Offset, o.Code}
			if v, ok := mem[k]; ok && opts.ReuseMemory {
				rn[o.Dst] = v
				keep[i] = false
				st.ReusedLoads++
				changed = true
				continue
			}
			mem[k] = o.Dst
		case o.Code.IsStore():
			clear(mem)
		}
	}
	rn.applyExit(&b.Exit)
	if changed {
		compact(b, keep)
	}
	return changed
}

// fold evaluates ops with constant operands and applies algebraic identities.
func fold(b *Block, st *Stats) bool {
	rn := newRenamer(b.NumValues)
	keep := make([]bool, len(b.Ops))
	isConst := make([]bool, b.NumValues)
	val := make([]uint64, b.NumValues)
	konst := func(v Value) (uint64, bool) {
		if v == NoValue || !isConst[v] {
			return 0, false
		}
		return val[v], true
	}
	changed := false
	for i := range b.Ops {
		o := &b.Ops[i]
		rn.apply(o)
		keep[i] = true
		if o.Code == OpConst {
			isConst[o.Dst], val[o.Dst] = true, o.Imm
			continue
		}
		if !o.Code.IsPure() || o.Code == OpLoadReg {
			continue
		}
		a, aok := konst(o.A)
		bv, bok := konst(o.B)
		ar := o.Code.Arity()
		if aok && (ar == 1 || bok) {
			r := Apply(o.Code, a, bv)
			*o = Op{Code: OpConst, Dst: o.Dst, A: NoValue, B: NoValue, Imm: r, PC: o.PC, Cycles: o.Cycles}
			isConst[o.Dst], val[o.Dst] = true, r
			st.Folded++
			changed = true
			continue
		}
		if ar != 2 {
			continue
		}
		alias, zero := identity(o.Code, o.A, o.B, a, aok, bv, bok)
		switch {
		case alias != NoValue:
			rn[o.Dst] = alias
			keep[i] = false
		case zero:
			*o = Op{Code: OpConst, Dst: o.Dst, A: NoValue, B: NoValue, PC: o.PC, Cycles: o.Cycles}
			isConst[o.Dst], val[o.Dst] = true, 0
		default:
			continue
		}
		st.Folded++
		changed = true
	}
	rn.applyExit(&b.Exit)
	if foldExit(&b.Exit, konst) {
		st.Folded++
		changed = true
	}
	if changed {
		compact(b, keep)
	}
	return changed
}

// identity returns the operand an op reduces to, or reports that it is zero.
func identity(c OpCode, x, y Value, a uint64, aok bool, b uint64, bok bool) (Value, bool) {
	const ones = 0xFFFFFFFF
	switch c {
	case OpAdd, OpOr, OpXor:
		if bok && b == 0 {
			return x, false
		}
		if aok && a == 0 {
			return y, false
		}
	case OpSub, OpShl, OpShr, OpSar:
		if bok && b == 0 {
			return x, false
		}
	case OpAnd:
		if (bok && b == 0) || (aok && a == 0) {
			return NoValue, true
		}
		if bok && b == ones {
			return x, false
		}
		if aok && a == ones {
			return y, false
		}
	case OpMul:
		if (bok && b == 0) || (aok && a == 0) {
			return NoValue, true
		}
		if bok && b == 1 {
			return x, false
		}
		if aok && a == 1 {
			return y, false
		}
	}
	if x == y {
		switch c {
		case OpSub, OpXor:
			return NoValue, true
		case OpAnd, OpOr:
			return x, false
		}
	}
	return NoValue, false
}

// foldExit turns exits with known outcomes into static ones.
func foldExit(e *Exit, konst func(Value) (uint64, bool)) bool {
	switch e.Kind {
	case ExitCond:
		c, ok := konst(e.Cond)
		if !ok {
			return false
		}
		target := e.Next
		if c != 0 {
			target = e.Target
		}
		*e = Exit{Kind: ExitStatic, Target: target, Cond: NoValue, Dest: NoValue}
		return true
	case ExitDynamic:
		d, ok := konst(e.Dest)
		if !ok {
			return false
		}
		*e = Exit{Kind: ExitStatic, Target: uint32(d), Cond: NoValue, Dest: NoValue}
		return true
	}
	return false
}

// deadStores removes register writes overwritten later in the block with no
// read in between.
func deadStores(b *Block, st *Stats) bool {
	keep := make([]bool, len(b.Ops))
	var overwritten [cpu.NumRegs]bool
	changed := false
	for i := len(b.Ops) - 1; i >= 0; i-- {
		o := &b.Ops[i]
		keep[i] = true
		switch o.Code {
		case OpStoreReg:
			if overwritten[o.Reg] {
				keep[i] = false
				st.DeadStores++
				changed = true
				continue
			}
			overwritten[o.Reg] = true
		case OpLoadReg:
			overwritten[o.Reg] = false
		case OpInterp:
			overwritten = [cpu.NumRegs]bool{}
		}
	}
	if changed {
		compact(b, keep)
	}
	return changed
}

func removable(o *Op) bool {
	if o.Code.IsLoad() {
		return o.Mem.Class == Direct
	}
	return o.Code.IsPure()
}

// deadCode removes ops whose results are never used.
func deadCode(b *Block, st *Stats) bool {
	used := make([]bool, b.NumValues)
	mark := func(v Value) {
		if v != NoValue {
			used[v] = true
		}
	}
	mark(b.Exit.Cond)
	mark(b.Exit.Dest)
	keep := make([]bool, len(b.Ops))
	changed := false
	for i := len(b.Ops) - 1; i >= 0; i-- {
		o := &b.Ops[i]
		if o.Code.HasResult() && !used[o.Dst] && removable(o) {
			st.DeadOps++
			changed = true
			continue
		}
		if o.Code == OpNop {
			changed = true
			continue
		}
		keep[i] = true
		mark(o.A)
		mark(o.B)
	}
	if changed {
		compact(b, keep)
	}
	return changed
}
