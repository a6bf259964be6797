package backend

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/interpreter"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4asm"
	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	org      = 0x8C000000
	sentinel = 0x8C0FFF00
)

func newBus(t *testing.T, b *sh4asm.Builder) *memory.Map {
	t.Helper()
	bus := memory.NewMap()
	_, err := bus.AddRAM("ram", 0x0C000000, 0x100000, 0)
	require.NoError(t, err)
	bus.LoadBytes(b.Org(), b.MustBytes())
	return bus
}

func newContext(seed uint32) *cpu.Context {
	c := cpu.NewContext()
	c.PC = org
	c.SetSR(0x40000000)
	c.SetFPSCR(0)
	c.PR = sentinel
	for i := 0; i < 14; i++ {
		c.R[i] = seed * uint32(i+3)
		c.FR[i] = seed ^ uint32(i)<<21
	}
	return c
}

// compile emits, optimizes and resolves the block at c.PC.
func compile(t *testing.T, bus *memory.Map, c *cpu.Context) *ir.Block {
	t.Helper()
	b, err := ir.NewEmitter(bus, ir.Config{MaxBlockOps: 24}).EmitBlock(c.Mode(), c.PC)
	require.NoError(t, err)
	_, err = ir.Optimize(b, ir.DefaultOptions())
	require.NoError(t, err)
	_, err = ir.Resolve(b, bus)
	require.NoError(t, err)
	_, err = ir.Optimize(b, ir.DefaultOptions())
	require.NoError(t, err)
	return b
}

func TestThreadedMatchesEval(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for n := 0; n < 30; n++ {
		prog := sh4asm.Random(rng, org, 60, sh4asm.RandomOptions{Memory: true, FPU: true, Interp: true})
		seed := rng.Uint32()
		busA, busB := newBus(t, prog), newBus(t, prog)
		ca, cb := newContext(seed), newContext(seed)
		inA, inB := interpreter.New(busA), interpreter.New(busB)
		be := NewThreaded(busB, busB, inB)

		for steps := 0; ca.PC != sentinel; steps++ {
			require.Less(t, steps, 100)
			want := ir.Eval(compile(t, busA, ca), ca, busA, inA)
			code, err := be.Compile(compile(t, busB, cb))
			require.NoError(t, err)
			got := code.Run(cb)
			require.Empty(t, cmp.Diff(*ca, *cb), "program %d", n)
			require.Equal(t, want, got.Cycles)
		}
		assert.Equal(t, busA.ReadBytes(sh4asm.DataBase, 0x100), busB.ReadBytes(sh4asm.DataBase, 0x100))
	}
}

func TestThreadedEarlyExit(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.ADD_IMM, 1, 0, 1).
		Op(decoder.MOV_IMM, 2, 0, 3).
		Raw(0xFFFD).
		Op(decoder.ADD_IMM, 1, 0, 1)
	bus := newBus(t, prog)
	c := newContext(0)
	c.VBR = 0x8C002000
	b := compile(t, bus, c)
	be := NewThreaded(bus, bus, interpreter.New(bus))
	code, err := be.Compile(b)
	require.NoError(t, err)

	ex := code.Run(c)
	assert.True(t, ex.Early)
	assert.Equal(t, uint32(0x8C002100), c.PC)
	assert.Equal(t, cpu.ExIllegalInstr, c.EXPEVT)
	assert.Equal(t, uint32(1), c.R[1])
	assert.Equal(t, uint32(3), c.R[2])
	assert.Equal(t, 3, ex.Cycles)
	assert.Equal(t, 1, be.Compiled())
	be.Reset()
	assert.Zero(t, be.Compiled())
}

func TestThreadedStoreFiresWatch(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.MOVL_LOAD_PC, 1, 0, 1).
		Op(decoder.MOVL_STORE, 1, 1, 0).
		Op(decoder.RTS, 0, 0, 0).
		Op(decoder.NOP, 0, 0, 0).
		Long(0x8C000400)
	bus := newBus(t, prog)
	var hits []uint32
	bus.SetCodeWriteHook(func(phys, size uint32) { hits = append(hits, phys) })
	bus.Watch(0x0C000400, 4)

	c := newContext(0)
	b := compile(t, bus, c)
	code, err := NewThreaded(bus, bus, nil).Compile(b)
	require.NoError(t, err)
	code.Run(c)
	assert.Equal(t, uint32(sentinel), c.PC)
	assert.Equal(t, uint32(0x8C000400), bus.Read32(0x8C000400))
	assert.NotEmpty(t, hits)
}

func TestThreadedRejectsBadBlock(t *testing.T) {
	b := &ir.Block{Start: org, End: org, Cycles: 1}
	_, err := NewThreaded(nil, nil, nil).Compile(b)
	assert.True(t, errors.Is(err, sh4errors.ErrCInvalidBlock))
}
