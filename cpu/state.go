package cpu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/colorfulnotion/sh4core/sh4errors"
)

const (
	stateMagic   = "SH4C"
	stateVersion = 1
	headerSize   = 4 + 2 + 4
)

type snapshotV1 struct {
	R      [16]uint32
	FR     [16]uint32
	XF     [16]uint32
	RBank  [8]uint32
	PR     uint32
	GBR    uint32
	VBR    uint32
	MACH   uint32
	MACL   uint32
	FPUL   uint32
	T      uint32
	SR     uint32
	FPSCR  uint32
	SSR    uint32
	SPC    uint32
	SGR    uint32
	DBR    uint32
	PC     uint32
	EXPEVT uint32
	INTEVT uint32
	TRA    uint32
	Sleep  uint8
}

// MarshalBinary encodes the architectural state. Spill slots are scratch and not saved.
func (c *Context) MarshalBinary() ([]byte, error) {
	s := snapshotV1{
		R: c.R, FR: c.FR, XF: c.XF, RBank: c.RBank,
		PR: c.PR, GBR: c.GBR, VBR: c.VBR, MACH: c.MACH, MACL: c.MACL, FPUL: c.FPUL,
		T: c.T, SR: c.SR, FPSCR: c.FPSCR, SSR: c.SSR, SPC: c.SPC, SGR: c.SGR, DBR: c.DBR,
		PC: c.PC, EXPEVT: c.EXPEVT, INTEVT: c.INTEVT, TRA: c.TRA,
	}
	if c.Sleeping {
		s.Sleep = 1
	}
	body := new(bytes.Buffer)
	if err := binary.Write(body, binary.LittleEndian, &s); err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	out := make([]byte, headerSize, headerSize+body.Len())
	copy(out, stateMagic)
	binary.LittleEndian.PutUint16(out[4:], stateVersion)
	binary.LittleEndian.PutUint32(out[6:], uint32(body.Len()))
	return append(out, body.Bytes()...), nil
}

// UnmarshalBinary restores a blob produced by MarshalBinary. The context is
// left untouched on error.
func (c *Context) UnmarshalBinary(blob []byte) error {
	if len(blob) < headerSize || string(blob[:4]) != stateMagic {
		return sh4errors.ErrSBadMagic
	}
	if v := binary.LittleEndian.Uint16(blob[4:]); v != stateVersion {
		return fmt.Errorf("version %d: %w", v, sh4errors.ErrSBadVersion)
	}
	n := int(binary.LittleEndian.Uint32(blob[6:]))
	if len(blob)-headerSize < n || n < binary.Size(snapshotV1{}) {
		return sh4errors.ErrSTruncated
	}
	var s snapshotV1
	if err := binary.Read(bytes.NewReader(blob[headerSize:headerSize+n]), binary.LittleEndian, &s); err != nil {
		return fmt.Errorf("decode context: %w", err)
	}
	*c = Context{
		R: s.R, FR: s.FR, XF: s.XF, RBank: s.RBank,
		PR: s.PR, GBR: s.GBR, VBR: s.VBR, MACH: s.MACH, MACL: s.MACL, FPUL: s.FPUL,
		T: s.T, SR: s.SR, FPSCR: s.FPSCR, SSR: s.SSR, SPC: s.SPC, SGR: s.SGR, DBR: s.DBR,
		PC: s.PC, EXPEVT: s.EXPEVT, INTEVT: s.INTEVT, TRA: s.TRA,
		Sleeping: s.Sleep != 0,
	}
	return nil
}
