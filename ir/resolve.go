package ir

import (
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

// Mapper is the view of the memory map the resolver needs. *memory.Map
// implements it.
type Mapper interface {
	Locate(addr uint32, width int) (memory.Location, bool)
	Region(i int) *memory.Region
	Generation() uint64
}

// Resolve classifies every load and store of b. An access whose address is a
// constant landing inside one region becomes Direct; stores to read-only
// regions and all other accesses stay Dispatch. It returns the number of
// direct accesses.
func Resolve(b *Block, m Mapper) (int, error) {
	if m == nil {
		return 0, sh4errors.ErrCMapUnavailable
	}
	isConst := make([]bool, b.NumValues)
	val := make([]uint32, b.NumValues)
	b.DirectStores = b.DirectStores[:0]
	direct := 0
	for i := range b.Ops {
		o := &b.Ops[i]
		if o.Code == OpConst {
			isConst[o.Dst], val[o.Dst] = true, uint32(o.Imm)
			continue
		}
		if !o.Code.IsLoad() && !o.Code.IsStore() {
			continue
		}
		w := o.Code.Width()
		o.Mem = Mem{Class: Dispatch, Width: w}
		if !isConst[o.A] {
			continue
		}
		addr := val[o.A]
		loc, ok := m.Locate(addr, w)
		if !ok {
			continue
		}
		r := m.Region(loc.Region)
		if r == nil || (o.Code.IsStore() && r.ReadOnly) {
			continue
		}
		o.Mem = Mem{Class: Direct, Region: loc.Region, Offset: loc.Offset, Width: w}
		if o.Code.IsStore() {
			b.DirectStores = append(b.DirectStores, StoreSite{Addr: addr, Width: w})
		}
		direct++
	}
	b.MapGeneration = m.Generation()
	return direct, nil
}
