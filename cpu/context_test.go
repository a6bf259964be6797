package cpu

import (
	"math"
	"testing"
	"unsafe"

	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDROverlay(t *testing.T) {
	c := NewContext()
	c.SetDRf(1, 1.5)
	bits := math.Float64bits(1.5)
	assert.Equal(t, uint32(bits>>32), c.FR[2])
	assert.Equal(t, uint32(bits), c.FR[3])
	assert.Equal(t, 1.5, c.DRf(1))

	// PR/SZ toggles never move bits.
	before := c.FR
	c.SetFPSCR(c.FPSCR | FPSCR_PR | FPSCR_SZ)
	assert.Equal(t, before, c.FR)
	assert.Equal(t, ModePR|ModeSZ, c.Mode())
	c.SetFPSCR(c.FPSCR &^ (FPSCR_PR | FPSCR_SZ))
	assert.Equal(t, before, c.FR)
	assert.Equal(t, Mode(0), c.Mode())
}

func TestFRBankSwap(t *testing.T) {
	c := NewContext()
	c.FR[0] = 0x3f800000
	c.XF[0] = 0x40000000
	c.SetFPSCR(c.FPSCR | FPSCR_FR)
	assert.Equal(t, uint32(0x40000000), c.FR[0])
	assert.Equal(t, uint32(0x3f800000), c.XF[0])
	c.SetXD(0, 0x1122334455667788)
	assert.Equal(t, uint64(0x1122334455667788), c.XD(0))
}

func TestRegisterBankSwitch(t *testing.T) {
	c := NewContext()
	// reset state is privileged with RB=1
	c.R[0] = 1
	c.RBank[0] = 2
	c.SetSR(c.SRFull() &^ SR_RB)
	assert.Equal(t, uint32(2), c.R[0])
	assert.Equal(t, uint32(1), c.RBank[0])

	// leaving privileged mode selects bank 0, which is already active
	c.SetSR(c.SRFull() &^ SR_MD)
	assert.Equal(t, uint32(2), c.R[0])
}

func TestSRKeepsTSeparate(t *testing.T) {
	c := NewContext()
	c.SetSR(0x700000F1)
	assert.Equal(t, uint32(1), c.T)
	assert.Equal(t, uint32(0x700000F0), c.SR)
	assert.Equal(t, uint32(0x700000F1), c.SRFull())
}

func TestRegOffsets(t *testing.T) {
	var c Context
	assert.Equal(t, unsafe.Offsetof(c.R), RegOffset(RegR0))
	assert.Equal(t, unsafe.Offsetof(c.FR), RegOffset(RegFR0))
	assert.Equal(t, unsafe.Offsetof(c.XF), RegOffset(RegXF0))
	assert.Equal(t, unsafe.Offsetof(c.RBank), RegOffset(RegBank0))
	assert.Equal(t, unsafe.Offsetof(c.PR), RegOffset(RegPR))
	assert.Equal(t, unsafe.Offsetof(c.T), RegOffset(RegT))
	assert.Equal(t, unsafe.Offsetof(c.FPSCR), RegOffset(RegFPSCR))
	assert.Equal(t, unsafe.Offsetof(c.DBR), RegOffset(RegDBR))

	*c.Reg(RegR(5)) = 10
	*c.Reg(RegMACL) = 7
	assert.Equal(t, uint32(10), c.R[5])
	assert.Equal(t, uint32(7), c.MACL)
	assert.Equal(t, "fr3", RegFR(3).String())
	assert.Equal(t, "macl", RegMACL.String())
}

func TestFixNaN(t *testing.T) {
	assert.Equal(t, CanonicalNaN32, FixNaN32(math.Float32bits(float32(math.NaN()))))
	assert.Equal(t, CanonicalNaN32, FixNaN32(0xFFC00000))
	assert.Equal(t, uint32(0x7F800000), FixNaN32(0x7F800000)) // +inf untouched
	assert.Equal(t, CanonicalNaN64, FixNaN64(math.Float64bits(math.NaN())))
	assert.Equal(t, uint64(0x3FF0000000000000), FixNaN64(0x3FF0000000000000))
}

func TestExceptionEntry(t *testing.T) {
	c := NewContext()
	c.SetSR(0x00000001) // user mode, T set
	c.VBR = 0x8C000000
	c.R[15] = 0x1234
	require.True(t, c.RaiseException(0x8C0100A0, ExIllegalInstr))
	assert.Equal(t, uint32(0x8C000100), c.PC)
	assert.Equal(t, uint32(0x8C0100A0), c.SPC)
	assert.Equal(t, uint32(0x00000001), c.SSR)
	assert.Equal(t, uint32(0x1234), c.SGR)
	assert.Equal(t, ExIllegalInstr, c.EXPEVT)
	assert.NotZero(t, c.SR&SR_BL)
	assert.NotZero(t, c.SR&SR_MD)

	// second fault while blocked resets
	assert.False(t, c.RaiseException(0x8C000100, ExIllegalInstr))
	assert.Equal(t, uint32(ResetPC), c.PC)
	assert.Equal(t, ExManualReset, c.EXPEVT)
}

func TestInterruptAcceptance(t *testing.T) {
	c := NewContext()
	c.SetSR(0x40000000 | 4<<4) // privileged, IMASK=4
	assert.False(t, c.InterruptAccepted(4))
	assert.True(t, c.InterruptAccepted(5))
	c.PC = 0x8C001000
	c.Sleeping = true
	c.AcceptInterrupt(0x320)
	assert.Equal(t, uint32(0x600), c.PC)
	assert.Equal(t, uint32(0x8C001000), c.SPC)
	assert.Equal(t, uint32(0x320), c.INTEVT)
	assert.False(t, c.Sleeping)
	assert.False(t, c.InterruptAccepted(15)) // BL now set
}

func TestStateRoundTrip(t *testing.T) {
	c := NewContext()
	for i := range c.R {
		c.R[i] = uint32(i * 0x1111)
	}
	c.SetDRf(2, -3.25)
	c.MACH, c.MACL = 5, 6
	c.PC = 0x8C010000
	c.T = 1
	c.Sleeping = true
	c.Spill[0] = 99

	blob, err := c.MarshalBinary()
	require.NoError(t, err)

	var d Context
	require.NoError(t, d.UnmarshalBinary(blob))
	c.Spill = [SpillSlots]uint64{}
	if diff := cmp.Diff(*c, d); diff != "" {
		t.Fatalf("restored context differs (-want +got):\n%s", diff)
	}
}

func TestStateErrors(t *testing.T) {
	var c Context
	assert.ErrorIs(t, c.UnmarshalBinary([]byte("nope")), sh4errors.ErrSBadMagic)

	good, err := NewContext().MarshalBinary()
	require.NoError(t, err)
	bad := append([]byte(nil), good...)
	bad[4] = 9
	assert.ErrorIs(t, c.UnmarshalBinary(bad), sh4errors.ErrSBadVersion)
	assert.ErrorIs(t, c.UnmarshalBinary(good[:len(good)-3]), sh4errors.ErrSTruncated)
}
