package decoder

import (
	"errors"
	"testing"

	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIsTotal(t *testing.T) {
	seen := make(map[Kind]bool)
	for v := 0; v < 1<<16; v++ {
		op := Decode(uint16(v))
		require.NotNil(t, op, "opcode %04x", v)
		if op.Kind != ILLEGAL {
			require.Equal(t, op.Key, uint16(v)&op.Mask, "opcode %04x decoded as %s", v, op.Kind)
		}
		seen[op.Kind] = true
	}
	for _, op := range Ops() {
		assert.True(t, seen[op.Kind], "%s never decoded", op.Kind)
	}
	assert.True(t, seen[ILLEGAL])
}

func TestEveryKindHasOneEntry(t *testing.T) {
	assert.Len(t, Ops(), int(NumKinds)-1)
	for k := Kind(0); k < NumKinds; k++ {
		require.NotNil(t, ByKind(k), "kind %d", k)
		assert.Equal(t, k, ByKind(k).Kind)
	}
	assert.Equal(t, &IllegalOp, ByKind(NumKinds+3))
}

func TestDecodeKnownOpcodes(t *testing.T) {
	cases := []struct {
		op   uint16
		kind Kind
	}{
		{0x757F, ADD_IMM},
		{0x0009, NOP},
		{0x0000, NOP0},
		{0x000B, RTS},
		{0x8B10, BF},
		{0x8DFE, BT_S},
		{0xAFFE, BRA},
		{0x4F22, STSL_PR},
		{0x40F6, LDCL_DBR},
		{0x4E8E, LDC_BANK},
		{0xF120, FADD},
		{0xF0FD, FSCA},
		{0xF2FD, FSCA},
		{0xF1FD, FTRV},
		{0xF5FD, FTRV},
		{0xF3FD, FSCHG},
		{0xFBFD, FRCHG},
		{0xF7ED, FIPR},
		{0xFFFD, ILLEGAL},
		{0xFFFF, ILLEGAL},
		{0x3001, ILLEGAL},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, Decode(c.op).Kind, "opcode %04x", c.op)
	}
}

func TestClassFlags(t *testing.T) {
	assert.True(t, Decode(0xA000).Is(ClassDelayed))
	assert.True(t, Decode(0x8900).Is(ClassConditional))
	assert.False(t, Decode(0x8900).Is(ClassDelayed))
	assert.True(t, Decode(0x406A).Is(ClassWritesFPSCR))
	assert.True(t, Decode(0x400E).Is(ClassWritesSR))
	assert.True(t, Decode(0xC312).Is(ClassSlotIllegal))
	assert.False(t, Decode(0x300C).Is(ClassSlotIllegal))
	assert.Equal(t, 1, Decode(0x757F).Cycles)
	assert.Equal(t, 7, Decode(0xC300).Cycles)
}

func TestFields(t *testing.T) {
	assert.Equal(t, 5, N(0x757F))
	assert.Equal(t, int32(127), Simm8(0x757F))
	assert.Equal(t, int32(-1), Simm8(0x75FF))
	assert.Equal(t, int32(-2), Simm12(0xAFFE))
	assert.Equal(t, int32(0x7FF), Simm12(0xA7FF))
	assert.Equal(t, 6, Bank(0x40E7))
	assert.Equal(t, int32(-8), SignExtend(uint8(0xF8), 8))
	assert.Equal(t, int32(0x7F), SignExtend(0x7F, 8))
}

func TestTargets(t *testing.T) {
	assert.Equal(t, uint32(0x8C000000), Disp12Target(0x8C000000, 0xAFFE))
	assert.Equal(t, uint32(0x8C000024), Disp8Target(0x8C000000, 0x8910))
	assert.Equal(t, uint32(0x8C000018), PCRelLong(0x8C000002, 0xD105))
	assert.Equal(t, uint32(0x8C000010), PCRelLong(0x8C000000, 0xD103))
	assert.Equal(t, uint32(0x8C00000E), PCRelWord(0x8C000002, 0x9104))
}

func TestDisassemble(t *testing.T) {
	cases := []struct {
		pc   uint32
		op   uint16
		want string
	}{
		{0, 0x757F, "add #127,r5"},
		{0, 0x6153, "mov r5,r1"},
		{0x8C000000, 0xAFFE, "bra 0x8c000000"},
		{0x8C000002, 0xD105, "mov.l @(0x8c000018),r1"},
		{0, 0x4F22, "sts.l pr,@-r15"},
		{0, 0x51E3, "mov.l @(12,r14),r1"},
		{0, 0xC00C, "mov.b r0,@(12,gbr)"},
		{0, 0xC312, "trapa #0x12"},
		{0, 0xF120, "fadd fr2,fr1"},
		{0, 0xF4ED, "fipr fv0,fv4"},
		{0, 0xF2FD, "fsca fpul,dr2"},
		{0, 0x4E8E, "ldc r14,r0_bank"},
		{0, 0xFFFF, ".word 0xffff"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Disassemble(c.pc, c.op), "opcode %04x", c.op)
	}
	assert.Equal(t, "00000000: 0009  nop\n00000002: 000b  rts\n", DisassembleRange(0, []uint16{0x0009, 0x000B}))
	assert.Equal(t, "add", ADD.String())
	assert.Equal(t, "kind(9999)", Kind(9999).String())
}

func TestConflictingTablePanics(t *testing.T) {
	ops := []Op{
		{Kind: ADD, Mask: MaskNM, Key: 0x300C, Name: "add"},
		{Kind: SUB, Mask: 0xF000, Key: 0x3000, Name: "broad"},
	}
	err := recoverErr(func() { buildTables(ops) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, sh4errors.ErrVDecodeConflict))

	dup := []Op{
		{Kind: ADD, Mask: MaskNone, Key: 0x0001, Name: "a"},
		{Kind: ADD, Mask: MaskNone, Key: 0x0002, Name: "b"},
	}
	assert.ErrorIs(t, recoverErr(func() { buildTables(dup) }), sh4errors.ErrVDecodeConflict)
}

func recoverErr(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	f()
	return nil
}
