package blockcache

import (
	"errors"
	"sync"
	"testing"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCode int

func (f fakeCode) Run(c *cpu.Context) backend.Exit { return backend.Exit{Cycles: int(f)} }
func (f fakeCode) Size() int                       { return int(f) * 10 }

func block(start, end uint32) *ir.Block {
	return &ir.Block{Start: start, End: end, Count: int(end-start) / 2, Cycles: int(end-start) / 2}
}

func compileEntry(t *testing.T, bc *Cache, start, end uint32) *Entry {
	t.Helper()
	e := bc.Lookup(Key{Addr: start})
	require.NoError(t, bc.Begin(e))
	require.NoError(t, bc.Commit(e, block(start, end), fakeCode(1)))
	return e
}

func TestStateMachine(t *testing.T) {
	bc := New(4)
	k := Key{Addr: 0x8C000000}
	e := bc.Lookup(k)
	assert.Equal(t, Uncompiled, e.State)
	assert.Same(t, e, bc.Lookup(k))
	assert.Equal(t, 2, e.Visits)

	assert.True(t, errors.Is(bc.Commit(e, nil, nil), sh4errors.ErrVBadTransition))
	require.NoError(t, bc.Begin(e))
	assert.Equal(t, Compiling, e.State)
	assert.True(t, errors.Is(bc.Begin(e), sh4errors.ErrVBadTransition))
	require.NoError(t, bc.Commit(e, block(0x8C000000, 0x8C000008), fakeCode(2)))
	assert.True(t, e.Native())

	bc.Lookup(k)
	st := bc.Stats()
	assert.Equal(t, uint64(3), st.Lookups)
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Compiles)

	assert.True(t, bc.Invalidate(e))
	assert.Equal(t, Invalidated, e.State)
	assert.False(t, bc.Invalidate(e))
	fresh := bc.Lookup(k)
	assert.NotSame(t, e, fresh)
	assert.Equal(t, Uncompiled, fresh.State)
}

func TestFailLeavesEntryInterpreted(t *testing.T) {
	bc := New(4)
	e := bc.Lookup(Key{Addr: 0x8C000000})
	require.NoError(t, bc.Begin(e))
	require.NoError(t, bc.Fail(e, block(0x8C000000, 0x8C000004), sh4errors.ErrCUnsupportedOp))
	assert.Equal(t, Compiled, e.State)
	assert.False(t, e.Native())
	assert.Equal(t, uint64(1), bc.Stats().Failures)

	infos := bc.Snapshot()
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0].Err, "UnsupportedOp")
}

func TestInvalidateRangeExactOverlap(t *testing.T) {
	bc := New(16)
	a := compileEntry(t, bc, 0x8C000000, 0x8C000010)
	b := compileEntry(t, bc, 0x8C000010, 0x8C000020)
	c := compileEntry(t, bc, 0xAC000040, 0xAC000048)

	// Last byte of a only.
	dropped := bc.InvalidateRange(0x0C00000F, 1)
	assert.Equal(t, []Key{a.Key}, dropped)
	assert.Equal(t, Invalidated, a.State)
	assert.Equal(t, Compiled, b.State)

	// Physical address match across P1 and P2 mirrors.
	dropped = bc.InvalidateRange(0x8C000044, 4)
	assert.Equal(t, []Key{c.Key}, dropped)
	assert.Empty(t, bc.InvalidateRange(0x0C000020, 0x20))
	assert.Empty(t, bc.InvalidateRange(0x0C000010, 0))
	assert.Equal(t, 1, bc.Len())
}

func TestInvalidateRangeFoldsMirrors(t *testing.T) {
	// 1MB of RAM at 0x0C000000 mirrored four times.
	fold := func(addr uint32) uint32 {
		return 0x0C000000 | memory.Physical(addr)&0xFFFFF
	}
	bc := New(16, WithAddressFunc(fold))
	a := compileEntry(t, bc, 0x8C100000, 0x8C100006)
	b := compileEntry(t, bc, 0x8C000100, 0x8C000108)

	assert.Equal(t, []Key{a.Key}, bc.InvalidateRange(0x0C000002, 2))
	assert.Equal(t, []Key{b.Key}, bc.InvalidateRange(0xAC300104, 4))
	assert.Zero(t, bc.Len())
}

func TestInvalidateRangeAcrossPages(t *testing.T) {
	bc := New(16)
	a := compileEntry(t, bc, 0x8C000FF8, 0x8C001010)
	b := compileEntry(t, bc, 0x8C001010, 0x8C001020)
	c := compileEntry(t, bc, 0x8C000020, 0x8C000030)

	assert.Empty(t, bc.InvalidateRange(0x0C001800, 4))
	// A write straddling the page boundary hits a once.
	assert.Equal(t, []Key{a.Key}, bc.InvalidateRange(0x0C000FFE, 4))
	assert.Equal(t, Compiled, b.State)
	assert.Empty(t, bc.InvalidateRange(0x0C001000, 0x10))
	assert.Equal(t, []Key{b.Key, c.Key}, append(bc.InvalidateRange(0x0C001010, 2), bc.InvalidateRange(0x0C000020, 2)...))
	assert.Empty(t, bc.pages)
}

func TestInvalidateAll(t *testing.T) {
	bc := New(16)
	a := compileEntry(t, bc, 0x8C000000, 0x8C000010)
	compileEntry(t, bc, 0x8C000100, 0x8C000110)
	assert.Equal(t, 2, bc.InvalidateAll("load state"))
	assert.Equal(t, Invalidated, a.State)
	assert.Zero(t, bc.Len())
	assert.Equal(t, uint64(1), bc.Stats().Flushes)
}

func TestLRUEvictionOrder(t *testing.T) {
	bc := New(3)
	e0 := bc.Lookup(Key{Addr: 0x100})
	e1 := bc.Lookup(Key{Addr: 0x200})
	e2 := bc.Lookup(Key{Addr: 0x300})
	bc.Lookup(Key{Addr: 0x100})
	bc.Lookup(Key{Addr: 0x400})

	assert.Equal(t, Invalidated, e1.State)
	assert.Equal(t, Uncompiled, e0.State)
	assert.Equal(t, Uncompiled, e2.State)
	assert.Nil(t, bc.Peek(Key{Addr: 0x200}))
	assert.Equal(t, uint64(1), bc.Stats().Evictions)

	// An entry being compiled is never evicted.
	require.NoError(t, bc.Begin(e2))
	bc.Lookup(Key{Addr: 0x500})
	bc.Lookup(Key{Addr: 0x600})
	assert.Equal(t, Compiling, e2.State)
	assert.Equal(t, 3, bc.Len())
}

func TestTopAndTree(t *testing.T) {
	bc := New(16)
	a := compileEntry(t, bc, 0x8C000000, 0x8C000010)
	b := compileEntry(t, bc, 0x8C000100, 0x8C000104)
	bc.Record(a, 5)
	bc.Record(b, 50)
	bc.Record(b, 50)

	top := bc.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, uint32(0x8C000100), top[0].Addr)
	assert.Equal(t, uint64(2), top[0].Runs)
	assert.Len(t, bc.Top(10), 2)

	out := bc.Tree().String()
	assert.Contains(t, out, "8c000000-8c000010")
	assert.Contains(t, out, "mode pr0/sz0")
	assert.Contains(t, out, "code 10 bytes")
}

func TestSnapshotConcurrentReaders(t *testing.T) {
	bc := New(64)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = bc.Snapshot()
				}
			}
		}()
	}
	for i := uint32(0); i < 200; i++ {
		e := compileEntry(t, bc, 0x8C000000+i*16, 0x8C000010+i*16)
		bc.Record(e, 1)
		if i%10 == 0 {
			bc.InvalidateRange(0x0C000000+i*16, 2)
		}
	}
	close(stop)
	wg.Wait()
	assert.LessOrEqual(t, bc.Len(), 64)
}
