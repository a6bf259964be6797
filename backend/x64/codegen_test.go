package x64

import (
	"errors"
	"strings"
	"testing"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4asm"
	"github.com/colorfulnotion/sh4core/sh4errors"
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
		c.R[i] = seed * uint32(i+5)
		c.FR[i] = seed ^ uint32(i)<<22
	}
	return c
}

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

func TestSupportedRejectsFallbacks(t *testing.T) {
	cases := []struct {
		name string
		prog *sh4asm.Builder
	}{
		{"interp", sh4asm.New(org).Op(decoder.DIV1, 1, 2, 0).Op(decoder.RTS, 0, 0, 0).Op(decoder.NOP, 0, 0, 0)},
		{"dispatch store", sh4asm.New(org).Op(decoder.MOVL_STORE, 2, 1, 0).Op(decoder.RTS, 0, 0, 0).Op(decoder.NOP, 0, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bus := newBus(t, tc.prog)
			b := compile(t, bus, newContext(1))
			assert.True(t, errors.Is(Supported(b), sh4errors.ErrCUnsupportedOp))
			_, _, err := Generate(b, bus, 0x1000, 0)
			assert.True(t, errors.Is(err, sh4errors.ErrCUnsupportedOp))
		})
	}
}

func TestGenerateExits(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.ADD_IMM, 1, 0, 1).
		Op(decoder.CMP_EQ, 1, 2, 0).
		Branch(decoder.BF, "out").
		Op(decoder.NOP, 0, 0, 0).
		Label("out").
		Op(decoder.RTS, 0, 0, 0).
		Op(decoder.NOP, 0, 0, 0)
	bus := newBus(t, prog)
	b := compile(t, bus, newContext(1))
	require.Equal(t, ir.ExitCond, b.Exit.Kind)

	code, lay, err := Generate(b, bus, 0x1000, 0)
	require.NoError(t, err)
	insts := Instructions(code[:lay.CodeLen])
	assert.Equal(t, 2, strings.Count(strings.Join(insts, " "), "ret"))
	assert.Contains(t, insts, "test")
	assert.Equal(t, 1, lay.ShortJumps)

	// A shared epilogue nearby turns both exits into rel32 jumps.
	code, lay, err = Generate(b, bus, 0x1000, 0x800)
	require.NoError(t, err)
	insts = Instructions(code[:lay.CodeLen])
	assert.NotContains(t, insts, "ret")
	assert.Equal(t, "jmp", insts[len(insts)-1])
	assert.Equal(t, 3, lay.LongJumps+lay.ShortJumps)

	text := Disassemble(code[:lay.CodeLen], 0x1000)
	assert.True(t, strings.HasPrefix(text, "00001000: "))
	assert.Contains(t, text, "jmp")
}

func TestGenerateDirectAccess(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.MOV_IMM, 2, 0, 0x0C).
		Op(decoder.SHLL8, 2, 0, 0).
		Op(decoder.SHLL16, 2, 0, 0).
		Op(decoder.ADD_IMM, 2, 0, 0x40).
		Op(decoder.MOVL_STORE, 2, 1, 0).
		Op(decoder.MOVL_LOAD, 3, 2, 0).
		Op(decoder.RTS, 0, 0, 0).
		Op(decoder.NOP, 0, 0, 0)
	bus := newBus(t, prog)
	b := compile(t, bus, newContext(0))
	require.NoError(t, Supported(b))
	code, lay, err := Generate(b, bus, 0x1000, 0)
	require.NoError(t, err)
	assert.Positive(t, lay.Literals)
	assert.Greater(t, len(code), lay.CodeLen)
}
