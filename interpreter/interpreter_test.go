package interpreter

import (
	"math"
	"testing"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4asm"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const org = 0x8C000000

type machine struct {
	in  *Interpreter
	c   *cpu.Context
	bus *memory.Map
}

func newMachine(t *testing.T, b *sh4asm.Builder, opts ...Option) *machine {
	t.Helper()
	bus := memory.NewMap()
	_, err := bus.AddRAM("ram", 0x0C000000, 0x100000, 0)
	require.NoError(t, err)
	if b != nil {
		code, err := b.Bytes()
		require.NoError(t, err)
		bus.LoadBytes(b.Org(), code)
	}
	c := cpu.NewContext()
	c.PC = org
	c.SetSR(0x40000000) // privileged, bank 0, IMASK 0
	c.SetFPSCR(0)
	return &machine{in: New(bus, opts...), c: c, bus: bus}
}

func one(k decoder.Kind, n, m int, imm int32) *sh4asm.Builder {
	return sh4asm.New(org).Op(k, n, m, imm)
}

func TestEveryKindHasHandler(t *testing.T) {
	for k := decoder.Kind(0); k < decoder.NumKinds; k++ {
		assert.True(t, Implemented(k), "no handler for %s", k)
	}
	assert.False(t, Implemented(decoder.NumKinds))
}

func TestAddImmediate(t *testing.T) {
	m := newMachine(t, one(decoder.ADD_IMM, 5, 0, 0x7F))
	m.c.R[5] = 10
	m.c.T = 1
	before := *m.c
	cycles := m.in.Step(m.c)
	assert.Equal(t, 1, cycles)
	assert.Equal(t, uint32(137), m.c.R[5])
	assert.Equal(t, uint32(org+2), m.c.PC)

	before.R[5] = 137
	before.PC = org + 2
	assert.Empty(t, cmp.Diff(before, *m.c))
}

func TestCarryAndOverflow(t *testing.T) {
	cases := []struct {
		name  string
		kind  decoder.Kind
		rn    uint32
		rm    uint32
		t     uint32
		want  uint32
		wantT uint32
	}{
		{"addc carry out", decoder.ADDC, 0xFFFFFFFF, 1, 0, 0, 1},
		{"addc carry in", decoder.ADDC, 1, 1, 1, 3, 0},
		{"subc borrow", decoder.SUBC, 0, 1, 0, 0xFFFFFFFF, 1},
		{"subc borrow in", decoder.SUBC, 5, 2, 1, 2, 0},
		{"addv overflow", decoder.ADDV, 0x7FFFFFFF, 1, 0, 0x80000000, 1},
		{"addv clean", decoder.ADDV, 0xFFFFFFFF, 1, 1, 0, 0},
		{"subv overflow", decoder.SUBV, 0x80000000, 1, 0, 0x7FFFFFFF, 1},
		{"negc", decoder.NEGC, 0, 1, 0, 0xFFFFFFFF, 1},
		{"negc zero", decoder.NEGC, 9, 0, 0, 0, 0},
		{"negc zero borrow", decoder.NEGC, 9, 0, 1, 0xFFFFFFFF, 1},
		{"cmp/str hit", decoder.CMP_STR, 0x12345678, 0xFF34FFFF, 0, 0x12345678, 1},
		{"cmp/str miss", decoder.CMP_STR, 0x12345678, 0x87654321, 1, 0x12345678, 0},
		{"cmp/ge signed", decoder.CMP_GE, 1, 0xFFFFFFFF, 0, 1, 1},
		{"cmp/hs unsigned", decoder.CMP_HS, 1, 0xFFFFFFFF, 1, 1, 0},
		{"xtrct", decoder.XTRCT, 0x11112222, 0x33334444, 0, 0x44441111, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMachine(t, one(tc.kind, 1, 2, 0))
			m.c.R[1], m.c.R[2], m.c.T = tc.rn, tc.rm, tc.t
			m.in.Step(m.c)
			assert.Equal(t, tc.want, m.c.R[1])
			assert.Equal(t, tc.wantT, m.c.T)
		})
	}
}

func TestShifts(t *testing.T) {
	assert.Equal(t, uint32(0x10), ShadValue(1, 4))
	assert.Equal(t, uint32(0xFFFFFFF8), ShadValue(0xFFFFFFF0, uint32(0xFFFFFFFF)))
	assert.Equal(t, uint32(0xFFFFFFFF), ShadValue(0x80000000, 0x80000000))
	assert.Equal(t, uint32(0), ShldValue(0x80000000, 0x80000000))
	assert.Equal(t, uint32(0x08000000), ShldValue(0x80000000, uint32(0xFFFFFFFC)))

	m := newMachine(t, sh4asm.New(org).
		Op(decoder.ROTCL, 1, 0, 0).
		Op(decoder.ROTR, 2, 0, 0).
		Op(decoder.SHLR16, 3, 0, 0))
	m.c.R[1], m.c.R[2], m.c.R[3] = 0x80000000, 1, 0xABCD0000
	m.c.T = 1
	m.in.Step(m.c)
	assert.Equal(t, uint32(1), m.c.R[1])
	assert.Equal(t, uint32(1), m.c.T)
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x80000000), m.c.R[2])
	m.in.Step(m.c)
	assert.Equal(t, uint32(0xABCD), m.c.R[3])
}

func TestDivision(t *testing.T) {
	b := sh4asm.New(org).Op(decoder.DIV0U, 0, 0, 0)
	for i := 0; i < 32; i++ {
		b.Op(decoder.ROTCL, 2, 0, 0).Op(decoder.DIV1, 1, 0, 0)
	}
	b.Op(decoder.ROTCL, 2, 0, 0)
	m := newMachine(t, b)
	m.c.R[0], m.c.R[1], m.c.R[2] = 7, 0, 100
	for i := 0; i < 66; i++ {
		m.in.Step(m.c)
	}
	assert.Equal(t, uint32(14), m.c.R[2])

	m = newMachine(t, one(decoder.DIV0S, 1, 2, 0))
	m.c.R[1], m.c.R[2] = 0x80000000, 1
	m.in.Step(m.c)
	assert.Equal(t, uint32(cpu.SR_Q), m.c.SR&(cpu.SR_Q|cpu.SR_M))
	assert.Equal(t, uint32(1), m.c.T)
}

func TestMultiplyAccumulate(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.DMULS_L, 1, 2, 0).
		Op(decoder.MULS_W, 1, 2, 0).
		Op(decoder.MAC_L, 3, 4, 0))
	m.c.R[1], m.c.R[2] = 0xFFFFFFFE, 3
	m.in.Step(m.c)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFA), m.c.MAC())
	m.in.Step(m.c)
	assert.Equal(t, uint32(0xFFFFFFFA), m.c.MACL)

	m.bus.Write32(0x8C001000, 0x7FFFFFFF)
	m.bus.Write32(0x8C001004, 0x7FFFFFFF)
	m.c.R[3], m.c.R[4] = 0x8C001000, 0x8C001004
	m.c.SetMAC(0x00007FFFFFFF0000)
	m.c.SR |= cpu.SR_S
	assert.Equal(t, 2, m.in.Step(m.c))
	assert.Equal(t, uint64(0x00007FFFFFFFFFFF), m.c.MAC())
	assert.Equal(t, uint32(0x8C001004), m.c.R[3])
	assert.Equal(t, uint32(0x8C001008), m.c.R[4])
}

func TestMacWordSaturates(t *testing.T) {
	m := newMachine(t, one(decoder.MAC_W, 1, 1, 0))
	m.bus.Write16(0x8C001000, 0x7FFF)
	m.bus.Write16(0x8C001002, 0x7FFF)
	m.c.R[1] = 0x8C001000
	m.c.MACL = 0x7FFFFFF0
	m.c.SR |= cpu.SR_S
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x7FFFFFFF), m.c.MACL)
	assert.Equal(t, uint32(1), m.c.MACH&1)
	assert.Equal(t, uint32(0x8C001004), m.c.R[1])
}

func TestLoadStoreAddressing(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.MOVL_LOAD_INC, 1, 1, 0).
		Op(decoder.MOVL_STORE_DEC, 2, 2, 0).
		Op(decoder.MOVB_LOAD, 3, 4, 0).
		Op(decoder.MOVW_LOAD_GBR, 0, 0, 2).
		Op(decoder.MOVL_LOAD_DISP, 5, 6, 3))
	m.bus.Write32(0x8C002000, 0xCAFEF00D)
	m.bus.Write8(0x8C002010, 0x80)
	m.bus.Write16(0x8C002024, 0x8001)
	m.bus.Write32(0x8C00203C, 0x11111111)
	m.c.R[1] = 0x8C002000
	m.c.R[2] = 0x8C003000
	m.c.R[4] = 0x8C002010
	m.c.GBR = 0x8C002020
	m.c.R[6] = 0x8C002030

	m.in.Step(m.c)
	assert.Equal(t, uint32(0xCAFEF00D), m.c.R[1], "no post increment when n == m")
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x8C002FFC), m.c.R[2])
	assert.Equal(t, uint32(0x8C003000), m.bus.Read32(0x8C002FFC), "stores the value before decrement")
	m.in.Step(m.c)
	assert.Equal(t, uint32(0xFFFFFF80), m.c.R[3])
	m.in.Step(m.c)
	assert.Equal(t, uint32(0xFFFF8001), m.c.R[0])
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x11111111), m.c.R[5])
}

func TestPCRelative(t *testing.T) {
	b := sh4asm.New(org)
	b.Op(decoder.NOP, 0, 0, 0).
		Op(decoder.MOVL_LOAD_PC, 1, 0, 2). // (org+2+4)&^3 + 8
		Op(decoder.MOVA, 0, 0, 0).
		Op(decoder.MOVW_LOAD_PC, 2, 0, 0).
		Long(0x12345678).
		Long(0xFFFF9ABC)
	m := newMachine(t, b)
	m.in.Step(m.c)
	m.in.Step(m.c)
	assert.Equal(t, uint32(0xFFFF9ABC), m.c.R[1])
	m.in.Step(m.c)
	assert.Equal(t, uint32(org+8), m.c.R[0])
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x1234), m.c.R[2])
}

func TestGBRByteOps(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.OR_B, 0, 0, 0x0F).
		Op(decoder.TST_B, 0, 0, 0x80).
		Op(decoder.TAS_B, 1, 0, 0))
	m.c.GBR = 0x8C004000
	m.c.R[0] = 4
	m.c.R[1] = 0x8C004010
	m.bus.Write8(0x8C004004, 0x30)
	m.in.Step(m.c)
	assert.Equal(t, uint8(0x3F), m.bus.Read8(0x8C004004))
	m.in.Step(m.c)
	assert.Equal(t, uint32(1), m.c.T)
	m.in.Step(m.c)
	assert.Equal(t, uint32(1), m.c.T)
	assert.Equal(t, uint8(0x80), m.bus.Read8(0x8C004010))
}

func TestDelayedCallLinksAfterSlot(t *testing.T) {
	b := sh4asm.New(org)
	b.Branch(decoder.BSR, "target").
		Op(decoder.LDS_PR, 4, 0, 0).
		Op(decoder.NOP, 0, 0, 0).
		Label("target").
		Op(decoder.NOP, 0, 0, 0)
	m := newMachine(t, b)
	m.c.R[4] = 0xDEAD0000
	cycles := m.in.Step(m.c)
	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint32(org+6), m.c.PC)
	assert.Equal(t, uint32(org+4), m.c.PR)
	assert.Equal(t, uint64(2), m.in.Executed())
}

func TestReturnReadsPRBeforeSlot(t *testing.T) {
	b := sh4asm.New(org).
		Op(decoder.RTS, 0, 0, 0).
		Op(decoder.LDS_PR, 4, 0, 0)
	m := newMachine(t, b)
	m.c.PR = 0x8C000100
	m.c.R[4] = 0x8C000200
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x8C000100), m.c.PC)
	assert.Equal(t, uint32(0x8C000200), m.c.PR)
}

func TestJumpTargetReadBeforeSlot(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.JMP, 3, 0, 0).
		Op(decoder.ADD_IMM, 3, 0, 8))
	m.c.R[3] = 0x8C000040
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x8C000040), m.c.PC)
	assert.Equal(t, uint32(0x8C000048), m.c.R[3])
}

func TestConditionalBranches(t *testing.T) {
	b := sh4asm.New(org)
	b.Branch(decoder.BT_S, "out").
		Op(decoder.CLRT, 0, 0, 0).
		Op(decoder.NOP, 0, 0, 0).
		Label("out").
		Op(decoder.NOP, 0, 0, 0)

	m := newMachine(t, b)
	m.c.T = 1
	m.in.Step(m.c)
	assert.Equal(t, uint32(org+6), m.c.PC, "T sampled before the slot")
	assert.Equal(t, uint32(0), m.c.T)

	m = newMachine(t, b)
	m.in.Step(m.c)
	assert.Equal(t, uint32(org+4), m.c.PC)

	b = sh4asm.New(org)
	b.Branch(decoder.BF, "skip").Op(decoder.NOP, 0, 0, 0).Label("skip")
	m = newMachine(t, b)
	assert.Equal(t, 1, m.in.Step(m.c))
	assert.Equal(t, uint32(org+4), m.c.PC)
}

func TestSlotIllegal(t *testing.T) {
	b := sh4asm.New(org)
	b.Branch(decoder.BRA, "l").Branch(decoder.BRA, "l").Label("l")
	m := newMachine(t, b)
	m.c.VBR = 0x8C010000
	m.c.R[15] = 0x8C0F0000
	sr := m.c.SRFull()
	m.in.Step(m.c)
	assert.Equal(t, cpu.ExSlotIllegalInstr, m.c.EXPEVT)
	assert.Equal(t, uint32(org), m.c.SPC)
	assert.Equal(t, sr, m.c.SSR)
	assert.Equal(t, uint32(0x8C0F0000), m.c.SGR)
	assert.Equal(t, uint32(0x8C010100), m.c.PC)
	assert.NotZero(t, m.c.SR&cpu.SR_BL)

	m = newMachine(t, sh4asm.New(org).Op(decoder.RTS, 0, 0, 0).Raw(0xFFFF))
	m.in.Step(m.c)
	assert.Equal(t, cpu.ExSlotIllegalInstr, m.c.EXPEVT)
}

func TestTrapAndIllegal(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).Op(decoder.TRAPA, 0, 0, 0x21))
	m.c.VBR = 0x8C000000
	assert.Equal(t, 7, m.in.Step(m.c))
	assert.Equal(t, uint32(0x84), m.c.TRA)
	assert.Equal(t, cpu.ExTrap, m.c.EXPEVT)
	assert.Equal(t, uint32(org+2), m.c.SPC)
	assert.Equal(t, uint32(0x8C000100), m.c.PC)

	m = newMachine(t, sh4asm.New(org).Raw(0xFFFF))
	m.in.Step(m.c)
	assert.Equal(t, cpu.ExIllegalInstr, m.c.EXPEVT)
	assert.Equal(t, uint32(org), m.c.SPC)

	// a second fault with BL set resets
	m.c.PC = org
	m.in.Step(m.c)
	assert.Equal(t, cpu.ExManualReset, m.c.EXPEVT)
	assert.Equal(t, uint32(cpu.ResetPC), m.c.PC)
}

func TestRteRestoresBeforeSlot(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.RTE, 0, 0, 0).
		Op(decoder.STC_SR, 1, 0, 0))
	m.c.SSR = 0x000000F1
	m.c.SPC = 0x8C000080
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x8C000080), m.c.PC)
	assert.Equal(t, uint32(0x000000F1), m.c.R[1])
	assert.Equal(t, uint32(1), m.c.T)
}

func TestBankedRegisters(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.LDC_BANK, 2, 3, 0).
		Op(decoder.STC_BANK, 4, 3, 0))
	m.c.R[2] = 77
	m.in.Step(m.c)
	assert.Equal(t, uint32(77), m.c.RBank[3])
	m.in.Step(m.c)
	assert.Equal(t, uint32(77), m.c.R[4])

	m.c.SetSR(m.c.SRFull() | cpu.SR_RB)
	assert.Equal(t, uint32(77), m.c.R[3])
}

func TestSleepAndPrefetch(t *testing.T) {
	var sq []uint32
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.PREF, 1, 0, 0).
		Op(decoder.PREF, 2, 0, 0).
		Op(decoder.SLEEP, 0, 0, 0),
		WithPrefetcher(prefetchFunc(func(a uint32) { sq = append(sq, a) })))
	m.c.R[1] = 0xE0000020
	m.c.R[2] = 0x8C000000
	m.in.Step(m.c)
	m.in.Step(m.c)
	assert.Equal(t, []uint32{0xE0000020}, sq)
	m.in.Step(m.c)
	assert.True(t, m.c.Sleeping)
	assert.Equal(t, uint32(org+6), m.c.PC)
}

type prefetchFunc func(uint32)

func (f prefetchFunc) Prefetch(a uint32) { f(a) }

func TestFaddCanonicalNaN(t *testing.T) {
	m := newMachine(t, one(decoder.FADD, 1, 0, 0))
	m.c.FR[0] = 0x7F800001
	m.c.SetFRf(1, 1.0)
	m.in.Step(m.c)
	assert.Equal(t, cpu.CanonicalNaN32, m.c.FR[1])

	m = newMachine(t, one(decoder.FMUL, 2, 4, 0))
	m.c.SetFPSCR(cpu.FPSCR_PR)
	m.c.SetDR(1, 0x7FF0000000000001)
	m.c.SetDRf(2, 2)
	m.in.Step(m.c)
	assert.Equal(t, cpu.CanonicalNaN64, m.c.DR(1))
}

func TestFpuPrecisionModes(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.FADD, 2, 4, 0).
		Op(decoder.FSQRT, 6, 0, 0))
	m.c.SetFPSCR(cpu.FPSCR_PR)
	m.c.SetDRf(1, 1.5)
	m.c.SetDRf(2, 2.25)
	m.c.SetDRf(3, 16)
	m.in.Step(m.c)
	m.in.Step(m.c)
	assert.Equal(t, 3.75, m.c.DRf(1))
	assert.Equal(t, 4.0, m.c.DRf(3))

	m = newMachine(t, sh4asm.New(org).
		Op(decoder.FCMP_GT, 1, 0, 0).
		Op(decoder.FDIV, 1, 0, 0))
	m.c.SetFRf(0, 2)
	m.c.SetFRf(1, 3)
	m.in.Step(m.c)
	assert.Equal(t, uint32(1), m.c.T)
	m.in.Step(m.c)
	assert.Equal(t, float32(1.5), m.c.FRf(1))
}

func TestFtrcSaturates(t *testing.T) {
	assert.Equal(t, uint32(0x7FFFFFFF), Ftrc(3e9))
	assert.Equal(t, uint32(0x80000000), Ftrc(-3e9))
	assert.Equal(t, uint32(0x80000000), Ftrc(math.NaN()))
	assert.Equal(t, uint32(1), Ftrc(1.9))
	assert.Equal(t, uint32(0xFFFFFFFF), Ftrc(-1.9))
	assert.Equal(t, uint32(0x7FFFFF80), Ftrc(float64(float32(2147483520))))

	m := newMachine(t, one(decoder.FTRC, 3, 0, 0))
	m.c.SetFRf(3, -7.5)
	m.in.Step(m.c)
	assert.Equal(t, uint32(0xFFFFFFF9), m.c.FPUL)
}

func TestVectorOps(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.FIPR, 4, 0, 0).
		Op(decoder.FTRV, 8, 0, 0))
	for i := 0; i < 4; i++ {
		m.c.SetFRf(i, float32(i+1))
		m.c.SetFRf(4+i, 2)
		m.c.SetFRf(8+i, float32(10*(i+1)))
	}
	// XMTRX scales by 2
	for i := 0; i < 4; i++ {
		m.c.XF[i*5] = math.Float32bits(2)
	}
	m.in.Step(m.c)
	assert.Equal(t, float32(20), m.c.FRf(7))
	m.in.Step(m.c)
	assert.Equal(t, []float32{20, 40, 60, 80}, []float32{m.c.FRf(8), m.c.FRf(9), m.c.FRf(10), m.c.FRf(11)})
}

func TestFscaAndFmac(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.FSCA, 2, 0, 0).
		Op(decoder.FMAC, 5, 6, 0))
	m.c.FPUL = 0x14000 // only the low 16 bits count
	m.in.Step(m.c)
	assert.Equal(t, float32(1), m.c.FRf(2))
	assert.InDelta(t, 0, m.c.FRf(3), 1e-6)

	m.c.SetFRf(0, 3)
	m.c.SetFRf(5, 1)
	m.c.SetFRf(6, 4)
	m.in.Step(m.c)
	assert.Equal(t, float32(13), m.c.FRf(5))
}

func TestFscaTable(t *testing.T) {
	for _, tc := range []struct {
		angle    uint32
		sin, cos float32
	}{
		{0x0000, 0, 1},
		{0x4000, 1, 0},
		{0x8000, 0, -1},
		{0xC000, -1, 0},
	} {
		s, c := Fsca(tc.angle)
		assert.Equal(t, math.Float32bits(tc.sin), s, "sin %04x", tc.angle)
		assert.Equal(t, math.Float32bits(tc.cos), c, "cos %04x", tc.angle)
	}
	for a := uint32(1); a < 0x10000; a += 0x3F1 {
		s, c := Fsca(a)
		rad := float64(a) * math.Pi / 0x8000
		assert.InDelta(t, math.Sin(rad), f32(s), 1e-6, "sin %04x", a)
		assert.InDelta(t, math.Cos(rad), f32(c), 1e-6, "cos %04x", a)
		ns, _ := Fsca(0x10000 - a)
		assert.Equal(t, s^1<<31, ns, "odd %04x", a)
	}
}

func TestUnimplementedFormsLeaveStateUntouched(t *testing.T) {
	type hit struct {
		pc     uint32
		reason string
	}
	for _, tc := range []struct {
		kind  decoder.Kind
		fpscr uint32
	}{
		{decoder.FIPR, cpu.FPSCR_PR},
		{decoder.FTRV, cpu.FPSCR_PR},
		{decoder.FSCA, cpu.FPSCR_PR},
		{decoder.FSRRA, cpu.FPSCR_PR},
		{decoder.FMAC, cpu.FPSCR_PR},
		{decoder.FCNVDS, 0},
		{decoder.FCNVSD, 0},
	} {
		var hits []hit
		m := newMachine(t, one(tc.kind, 4, 2, 0), WithUnimplementedHook(func(pc uint32, op uint16, reason string) {
			hits = append(hits, hit{pc, reason})
		}))
		m.c.SetFPSCR(tc.fpscr)
		for i := range m.c.FR {
			m.c.FR[i] = uint32(i) * 0x01010101
		}
		before := *m.c
		m.in.Step(m.c)
		before.PC += 2
		assert.Empty(t, cmp.Diff(before, *m.c), "%s", tc.kind)
		require.Len(t, hits, 1, "%s", tc.kind)
		assert.Equal(t, uint32(org), hits[0].pc)
	}
}

func TestFldiIgnoredInDoubleMode(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.FLDI1, 3, 0, 0).
		Op(decoder.FSCHG, 0, 0, 0).
		Op(decoder.FLDI1, 3, 0, 0))
	m.c.SetFPSCR(cpu.FPSCR_PR)
	m.c.FR[3] = 0x12345678
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x12345678), m.c.FR[3])
	m.in.Step(m.c)
	assert.NotZero(t, m.c.FPSCR&cpu.FPSCR_SZ)

	m.c.SetFPSCR(0)
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x3F800000), m.c.FR[3])
}

func TestPairMoves(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.FMOV_LOAD_INC, 2, 1, 0).
		Op(decoder.FMOV, 5, 2, 0).
		Op(decoder.FMOV_STORE_DEC, 3, 5, 0).
		Op(decoder.FABS, 2, 0, 0))
	m.c.SetFPSCR(cpu.FPSCR_SZ)
	m.bus.Write32(0x8C005000, 0xBFF00000)
	m.bus.Write32(0x8C005004, 0x00000001)
	m.c.R[1] = 0x8C005000
	m.c.R[3] = 0x8C006000

	m.in.Step(m.c)
	assert.Equal(t, uint32(0xBFF00000), m.c.FR[2])
	assert.Equal(t, uint32(0x00000001), m.c.FR[3])
	assert.Equal(t, uint32(0x8C005008), m.c.R[1])

	m.in.Step(m.c)
	assert.Equal(t, m.c.DR(1), m.c.XD(2), "odd register names the XD pair")

	m.in.Step(m.c)
	assert.Equal(t, uint32(0x8C005FF8), m.c.R[3])
	assert.Equal(t, uint32(0xBFF00000), m.bus.Read32(0x8C005FF8))
	assert.Equal(t, uint32(0x00000001), m.bus.Read32(0x8C005FFC))

	m.c.SetFPSCR(cpu.FPSCR_PR)
	m.in.Step(m.c)
	assert.Equal(t, uint32(0x3FF00000), m.c.FR[2])
}

func TestFrchgSwapsBanks(t *testing.T) {
	m := newMachine(t, one(decoder.FRCHG, 0, 0, 0))
	m.c.FR[0] = 1
	m.c.XF[0] = 2
	m.in.Step(m.c)
	assert.Equal(t, uint32(2), m.c.FR[0])
	assert.Equal(t, uint32(1), m.c.XF[0])
	assert.NotZero(t, m.c.FPSCR&cpu.FPSCR_FR)
}

func TestFloatConversions(t *testing.T) {
	m := newMachine(t, sh4asm.New(org).
		Op(decoder.FLOAT, 4, 0, 0).
		Op(decoder.FCNVDS, 4, 0, 0))
	m.c.SetFPSCR(cpu.FPSCR_PR)
	m.c.FPUL = 0xFFFFFFFD
	m.in.Step(m.c)
	assert.Equal(t, -3.0, m.c.DRf(2))
	m.in.Step(m.c)
	assert.Equal(t, math.Float32bits(-3), m.c.FPUL)
}

func TestFpuDisabled(t *testing.T) {
	m := newMachine(t, one(decoder.FADD, 1, 0, 0))
	m.c.SR |= cpu.SR_FD
	m.in.Step(m.c)
	assert.Equal(t, cpu.ExFpuDisabled, m.c.EXPEVT)
	assert.Equal(t, uint32(org), m.c.SPC)

	m = newMachine(t, sh4asm.New(org).Op(decoder.RTS, 0, 0, 0).Op(decoder.FADD, 1, 0, 0))
	m.c.SR |= cpu.SR_FD
	m.in.Step(m.c)
	assert.Equal(t, cpu.ExSlotFpuDisabled, m.c.EXPEVT)
	assert.Equal(t, uint32(org), m.c.SPC)
}
