package ir

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/interpreter"
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
	if b != nil {
		bus.LoadBytes(b.Org(), b.MustBytes())
	}
	return bus
}

func newContext() *cpu.Context {
	c := cpu.NewContext()
	c.PC = org
	c.SetSR(0x40000000)
	c.SetFPSCR(0)
	c.PR = sentinel
	return c
}

func emit(t *testing.T, bus *memory.Map, mode cpu.Mode, pc uint32) *Block {
	t.Helper()
	b, err := NewEmitter(bus, Config{}).EmitBlock(mode, pc)
	require.NoError(t, err)
	require.NoError(t, Verify(b))
	return b
}

func TestEveryKindHasEmitter(t *testing.T) {
	for k := decoder.Kind(0); k < decoder.NumKinds; k++ {
		covered, _ := Lowered(k)
		assert.True(t, covered, "no emitter for %s", k)
	}
	_, native := Lowered(decoder.ADD)
	assert.True(t, native)
	_, native = Lowered(decoder.DIV1)
	assert.False(t, native)
}

func TestBlockEndsAfterDelaySlot(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.ADD_IMM, 1, 0, 1).
		Branch(decoder.BRA, "far").
		Op(decoder.ADD_IMM, 2, 0, 2).
		Op(decoder.ADD_IMM, 3, 0, 3).
		Label("far").
		Op(decoder.NOP, 0, 0, 0)
	bus := newBus(t, prog)
	b := emit(t, bus, 0, org)

	assert.Equal(t, 3, b.Count)
	assert.Equal(t, uint32(org+6), b.End)
	assert.Equal(t, ExitStatic, b.Exit.Kind)
	assert.Equal(t, uint32(org+8), b.Exit.Target)
	assert.Equal(t, 3, b.Cycles)
	assert.NotEqual(t, [32]byte{}, b.CodeHash)
	assert.Equal(t, HashCode(bus, org, org+6), b.CodeHash)
}

func TestConditionalExit(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.CMP_EQ, 1, 2, 0).
		Branch(decoder.BF, "out").
		Op(decoder.NOP, 0, 0, 0).
		Label("out")
	b := emit(t, newBus(t, prog), 0, org)
	assert.Equal(t, ExitCond, b.Exit.Kind)
	assert.Equal(t, uint32(org+6), b.Exit.Target)
	assert.Equal(t, uint32(org+4), b.Exit.Next)
	assert.Equal(t, uint32(org+4), b.End)
}

func TestMaxBlockOps(t *testing.T) {
	prog := sh4asm.New(org)
	for i := 0; i < 10; i++ {
		prog.Op(decoder.ADD_IMM, 1, 0, 1)
	}
	b, err := NewEmitter(newBus(t, prog), Config{MaxBlockOps: 4}).EmitBlock(0, org)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Count)
	assert.Equal(t, ExitFallthrough, b.Exit.Kind)
	assert.Equal(t, uint32(org+8), b.Exit.Next)
	assert.Equal(t, uint32(org+8), b.End)
}

func TestModeChangingInstructionsEndBlocks(t *testing.T) {
	for _, k := range []decoder.Kind{decoder.LDS_FPSCR, decoder.FSCHG, decoder.FRCHG, decoder.LDC_SR, decoder.SLEEP, decoder.TRAPA, decoder.ILLEGAL} {
		prog := sh4asm.New(org).Op(decoder.ADD_IMM, 1, 0, 1)
		if k == decoder.ILLEGAL {
			prog.Raw(0xFFFF)
		} else {
			prog.Op(k, 1, 0, 0)
		}
		prog.Op(decoder.ADD_IMM, 1, 0, 1)
		b := emit(t, newBus(t, prog), 0, org)
		assert.Equal(t, 2, b.Count, k.String())
		assert.Equal(t, ExitDynamic, b.Exit.Kind, k.String())
		last := b.Ops[len(b.Ops)-1]
		assert.Equal(t, OpInterp, last.Code, k.String())
		assert.Equal(t, uint32(org+2), last.PC, k.String())
	}
}

func TestIllegalSlotFallsBack(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.JMP, 3, 0, 0).
		Op(decoder.RTS, 0, 0, 0)
	bus := newBus(t, prog)
	b := emit(t, bus, 0, org)
	require.Len(t, b.Ops, 1)
	assert.Equal(t, OpInterp, b.Ops[0].Code)
	assert.Equal(t, uint32(org+4), b.End)

	c := newContext()
	c.VBR = 0x8C001000
	Eval(b, c, bus, interpreter.New(bus))
	assert.Equal(t, cpu.ExSlotIllegalInstr, c.EXPEVT)
	assert.Equal(t, uint32(org), c.SPC)
	assert.Equal(t, uint32(0x8C001100), c.PC)
}

func TestFpuModeSpecializes(t *testing.T) {
	prog := sh4asm.New(org).Op(decoder.FADD, 2, 4, 0).Op(decoder.RTS, 0, 0, 0).Op(decoder.NOP, 0, 0, 0)
	bus := newBus(t, prog)
	single := emit(t, bus, 0, org)
	double := emit(t, bus, cpu.ModePR, org)
	assert.True(t, single.UsesFPU)

	has := func(b *Block, c OpCode) bool {
		for _, o := range b.Ops {
			if o.Code == c {
				return true
			}
		}
		return false
	}
	assert.True(t, has(single, OpFAdd32))
	assert.False(t, has(single, OpFAdd64))
	assert.True(t, has(double, OpFAdd64))
}

func TestOptimizeFoldsAndForwards(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.MOV_IMM, 1, 0, 5).
		Op(decoder.ADD_IMM, 1, 0, 3).
		Op(decoder.MOV, 2, 1, 0).
		Op(decoder.ADD, 2, 2, 0).
		Op(decoder.MOV_IMM, 1, 0, 0).
		Op(decoder.RTS, 0, 0, 0).
		Op(decoder.NOP, 0, 0, 0)
	bus := newBus(t, prog)
	b := emit(t, bus, 0, org)
	ref := b.Clone()
	before := len(b.Ops)

	st, err := Optimize(b, DefaultOptions())
	require.NoError(t, err)
	assert.Less(t, len(b.Ops), before)
	assert.Positive(t, st.ForwardedLoads)
	assert.Positive(t, st.Folded)
	assert.Positive(t, st.DeadStores)
	assert.Equal(t, ref.Cycles, b.Cycles)

	// r1 and r2 end as constants: the only stores left are constants
	for _, o := range b.Ops {
		if o.Code == OpStoreReg && (o.Reg == cpu.RegR(1) || o.Reg == cpu.RegR(2)) {
			def := b.Ops[indexOf(b, o.A)]
			assert.Equal(t, OpConst, def.Code)
		}
	}
	c := newContext()
	require.NoError(t, CheckLiveOut(ref, b, c, bus))
	Eval(b, c, bus, interpreter.New(bus))
	assert.Equal(t, uint32(0), c.R[1])
	assert.Equal(t, uint32(16), c.R[2])
	assert.Equal(t, uint32(sentinel), c.PC)
}

func indexOf(b *Block, v Value) int {
	for i, o := range b.Ops {
		if o.Dst == v {
			return i
		}
	}
	return -1
}

func TestOptimizeKeepsStoresBeforeInterp(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.MOV_IMM, 1, 0, 5).
		Op(decoder.DIV1, 1, 2, 0).
		Op(decoder.MOV_IMM, 1, 0, 6).
		Op(decoder.RTS, 0, 0, 0).
		Op(decoder.NOP, 0, 0, 0)
	b := emit(t, newBus(t, prog), 0, org)
	_, err := Optimize(b, DefaultOptions())
	require.NoError(t, err)
	stores := 0
	for _, o := range b.Ops {
		if o.Code == OpStoreReg && o.Reg == cpu.RegR(1) {
			stores++
		}
	}
	assert.Equal(t, 2, stores)
}

func TestResolveClassifiesAccesses(t *testing.T) {
	prog := sh4asm.New(org).
		Op(decoder.MOVL_LOAD_PC, 1, 0, 1).
		Op(decoder.MOVL_LOAD, 2, 1, 0).
		Op(decoder.RTS, 0, 0, 0).
		Op(decoder.NOP, 0, 0, 0).
		Long(0x8C000100)
	bus := newBus(t, prog)
	b := emit(t, bus, 0, org)
	_, err := Optimize(b, DefaultOptions())
	require.NoError(t, err)
	n, err := Resolve(b, bus)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, bus.Generation(), b.MapGeneration)

	var classes []MemClass
	for _, o := range b.Ops {
		if o.Code.IsLoad() {
			classes = append(classes, o.Mem.Class)
		}
	}
	assert.Equal(t, []MemClass{Direct, Dispatch}, classes)
	assert.Equal(t, uint32(8), b.Ops[indexLoad(b)].Mem.Offset)

	_, err = Resolve(b, nil)
	assert.True(t, errors.Is(err, sh4errors.ErrCMapUnavailable))
}

func indexLoad(b *Block) int {
	for i, o := range b.Ops {
		if o.Code.IsLoad() {
			return i
		}
	}
	return -1
}

func TestResolveSkipsReadOnlyStores(t *testing.T) {
	bus := newBus(t, nil)
	_, err := bus.AddROM("rom", 0x00000000, make([]byte, 0x1000))
	require.NoError(t, err)
	b := &Block{Start: org, End: org + 2, Count: 1, NumValues: 2, Cycles: 1}
	b.Ops = []Op{
		{Code: OpConst, Dst: 0, A: NoValue, B: NoValue, Imm: 0xA0000010, Cycles: 1},
		{Code: OpStore32, Dst: NoValue, A: 0, B: 0, Mem: Mem{Width: 4}},
		{Code: OpLoad32, Dst: 1, A: 0, B: NoValue, Mem: Mem{Width: 4}},
	}
	b.Exit = Exit{Kind: ExitStatic, Target: org, Cond: NoValue, Dest: NoValue}
	n, err := Resolve(b, bus)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, Dispatch, b.Ops[1].Mem.Class)
	assert.Equal(t, Direct, b.Ops[2].Mem.Class)
	assert.Empty(t, b.DirectStores)
}

func TestVerifyRejectsBrokenBlocks(t *testing.T) {
	prog := sh4asm.New(org).Op(decoder.ADD, 1, 2, 0).Op(decoder.RTS, 0, 0, 0).Op(decoder.NOP, 0, 0, 0)
	good := emit(t, newBus(t, prog), 0, org)

	tests := []struct {
		name   string
		mutate func(b *Block)
	}{
		{"use before def", func(b *Block) { b.Ops[0], b.Ops[2] = b.Ops[2], b.Ops[0] }},
		{"double def", func(b *Block) { b.Ops[1].Dst = b.Ops[0].Dst }},
		{"bad exit", func(b *Block) { b.Exit.Dest = Value(b.NumValues + 3) }},
		{"cycles", func(b *Block) { b.Cycles++ }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := good.Clone()
			tt.mutate(b)
			err := Verify(b)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sh4errors.ErrVSSAInvalid), err.Error())
		})
	}
}

func TestCheckLiveOutDetectsChange(t *testing.T) {
	prog := sh4asm.New(org).Op(decoder.MOV_IMM, 1, 0, 5).Op(decoder.RTS, 0, 0, 0).Op(decoder.NOP, 0, 0, 0)
	bus := newBus(t, prog)
	ref := emit(t, bus, 0, org)
	bad := ref.Clone()
	for i := range bad.Ops {
		if bad.Ops[i].Code == OpConst {
			bad.Ops[i].Imm = 6
		}
	}
	err := CheckLiveOut(ref, bad, newContext(), bus)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sh4errors.ErrVLiveOutChanged))
	assert.Contains(t, err.Error(), "r1")
}

// runInterp steps the reference interpreter until the program returns.
func runInterp(t *testing.T, bus memory.Bus, c *cpu.Context) int {
	in := interpreter.New(bus)
	cycles := 0
	for steps := 0; c.PC != sentinel; steps++ {
		require.Less(t, steps, 10000)
		cycles += in.Step(c)
	}
	return cycles
}

// runBlocks compiles and evaluates blocks until the program returns.
func runBlocks(t *testing.T, bus *memory.Map, c *cpu.Context, optimize bool) int {
	em := NewEmitter(bus, Config{MaxBlockOps: 16})
	in := interpreter.New(bus)
	cycles := 0
	for steps := 0; c.PC != sentinel; steps++ {
		require.Less(t, steps, 1000)
		b, err := em.EmitBlock(c.Mode(), c.PC)
		require.NoError(t, err)
		if optimize {
			_, err = Optimize(b, DefaultOptions())
			require.NoError(t, err)
			_, err = Resolve(b, bus)
			require.NoError(t, err)
			_, err = Optimize(b, DefaultOptions())
			require.NoError(t, err)
		}
		cycles += Eval(b, c, bus, in)
	}
	return cycles
}

func TestRandomProgramsMatchInterpreter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for seed := 0; seed < 40; seed++ {
		prog := sh4asm.Random(rng, org, 48, sh4asm.RandomOptions{Memory: true, FPU: true, Interp: true})
		init := rng.Uint32()
		for _, optimize := range []bool{false, true} {
			busA, busB := newBus(t, prog), newBus(t, prog)
			ca, cb := newContext(), newContext()
			for i := 0; i < 14; i++ {
				ca.R[i] = init * uint32(i+1)
				ca.FR[i] = init ^ uint32(i)<<20
			}
			*cb = *ca
			wantCycles := runInterp(t, busA, ca)
			gotCycles := runBlocks(t, busB, cb, optimize)
			require.Empty(t, cmp.Diff(*ca, *cb), "seed %d optimize %v", seed, optimize)
			require.Equal(t, busA.ReadBytes(sh4asm.DataBase, 0x200), busB.ReadBytes(sh4asm.DataBase, 0x200))
			assert.Equal(t, wantCycles, gotCycles, "seed %d", seed)
		}
	}
}

func TestApplyCanonicalizesNaN(t *testing.T) {
	nan := uint64(0x7FC00001)
	one := uint64(0x3F800000)
	assert.Equal(t, uint64(cpu.CanonicalNaN32), Apply(OpFAdd32, nan, one))
	assert.Equal(t, uint64(0x3F800000), Apply(OpFMul32, one, one))
	assert.Equal(t, uint64(0x7FFFFFFF), Apply(OpFtrc32, uint64(0x5F000000), 0))
	assert.Equal(t, uint64(0xFFFFFFFF), Apply(OpSar, 0x80000000, 31))
	assert.Equal(t, uint64(1), Apply(OpSetGT, 1, 0xFFFFFFFF))
	assert.Equal(t, uint64(0), Apply(OpSetHI, 1, 0xFFFFFFFF))
}
