package x64

import (
	"fmt"
	"sort"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

// Loc is where a value lives for its whole lifetime.
type Loc struct {
	Reg  X86Reg
	Slot int // spill slot in cpu.Context.Spill, or -1
}

func (l Loc) String() string {
	if l.Slot >= 0 {
		return fmt.Sprintf("spill%d", l.Slot)
	}
	return l.Reg.Name
}

type interval struct {
	v          ir.Value
	start, end int
}

// Allocation maps every value of a block to a Loc.
type Allocation struct {
	Locs   []Loc
	Spills int // slots used
}

// liveness returns the interval of every defined value. The exit counts as a
// use at len(b.Ops).
func liveness(b *ir.Block) []interval {
	ivs := make([]interval, b.NumValues)
	seen := make([]bool, b.NumValues)
	use := func(v ir.Value, at int) {
		if v != ir.NoValue && ivs[v].end < at {
			ivs[v].end = at
		}
	}
	for i := range b.Ops {
		o := &b.Ops[i]
		use(o.A, i)
		use(o.B, i)
		if o.Code.HasResult() {
			ivs[o.Dst] = interval{v: o.Dst, start: i, end: i}
			seen[o.Dst] = true
		}
	}
	use(b.Exit.Cond, len(b.Ops))
	use(b.Exit.Dest, len(b.Ops))
	out := ivs[:0]
	for i, iv := range ivs {
		if seen[i] {
			out = append(out, iv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// Allocate runs linear scan over the values of b. An operand whose
// interval ends at an op may share its register with that op's result,
// because operands are read into scratch registers first.
func Allocate(b *ir.Block, regs []X86Reg) (*Allocation, error) {
	al := &Allocation{Locs: make([]Loc, b.NumValues)}
	for i := range al.Locs {
		al.Locs[i].Slot = -1
	}
	free := append([]X86Reg(nil), regs...)
	var freeSlots []int
	var active, spilled []interval

	takeSlot := func() (int, error) {
		if n := len(freeSlots); n > 0 {
			s := freeSlots[n-1]
			freeSlots = freeSlots[:n-1]
			return s, nil
		}
		if al.Spills == cpu.SpillSlots {
			return 0, fmt.Errorf("block %08x: more than %d spill slots: %w", b.Start, cpu.SpillSlots, sh4errors.ErrCUnsupportedOp)
		}
		al.Spills++
		return al.Spills - 1, nil
	}
	insert := func(iv interval) {
		i := sort.Search(len(active), func(i int) bool { return active[i].end > iv.end })
		active = append(active, interval{})
		copy(active[i+1:], active[i:])
		active[i] = iv
	}

	for _, iv := range liveness(b) {
		keep := active[:0]
		for _, a := range active {
			if a.end <= iv.start {
				free = append(free, al.Locs[a.v].Reg)
			} else {
				keep = append(keep, a)
			}
		}
		active = keep
		stillSpilled := spilled[:0]
		for _, s := range spilled {
			if s.end <= iv.start {
				freeSlots = append(freeSlots, al.Locs[s.v].Slot)
			} else {
				stillSpilled = append(stillSpilled, s)
			}
		}
		spilled = stillSpilled

		if n := len(free); n > 0 {
			al.Locs[iv.v] = Loc{Reg: free[0], Slot: -1}
			free = free[1:]
			insert(iv)
			continue
		}
		slot, err := takeSlot()
		if err != nil {
			return nil, err
		}
		if n := len(active); n > 0 && active[n-1].end > iv.end {
			last := active[n-1]
			// The longest lived value moves to the stack.
			al.Locs[iv.v] = Loc{Reg: al.Locs[last.v].Reg, Slot: -1}
			al.Locs[last.v] = Loc{Slot: slot}
			active = active[:n-1]
			spilled = append(spilled, last)
			insert(iv)
		} else {
			al.Locs[iv.v] = Loc{Slot: slot}
			spilled = append(spilled, iv)
		}
	}
	return al, nil
}
