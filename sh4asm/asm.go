// Package sh4asm builds SH4 machine code for tests and CLI workloads.
package sh4asm

import (
	"encoding/binary"
	"fmt"

	"github.com/colorfulnotion/sh4core/decoder"
)

type layout uint8

const (
	layoutNone layout = iota
	layoutN
	layoutNM
	layoutNMDisp4
	layoutMDisp4
	layoutImm8
	layoutNImm8
	layoutImm12
	layoutFIPR
)

func layoutOf(op *decoder.Op) layout {
	switch op.Kind {
	case decoder.MOVL_STORE_DISP, decoder.MOVL_LOAD_DISP:
		return layoutNMDisp4
	case decoder.MOVB_STORE_DISP, decoder.MOVW_STORE_DISP, decoder.MOVB_LOAD_DISP, decoder.MOVW_LOAD_DISP:
		return layoutMDisp4
	case decoder.BRA, decoder.BSR:
		return layoutImm12
	case decoder.FIPR:
		return layoutFIPR
	}
	switch op.Mask {
	case decoder.MaskNM, decoder.MaskNBank:
		return layoutNM
	case decoder.MaskN, decoder.MaskNH3, decoder.MaskNH2:
		return layoutN
	case decoder.MaskImm8:
		return layoutImm8
	case decoder.MaskNImm8:
		return layoutNImm8
	}
	return layoutNone
}

// Encode builds the opcode of kind k. n and m are register numbers (for
// banked forms m is the bank register, for fipr n and m are vector bases),
// imm is the raw immediate or displacement field value.
func Encode(k decoder.Kind, n, m int, imm int32) uint16 {
	op := decoder.ByKind(k)
	v := op.Key
	switch layoutOf(op) {
	case layoutN:
		v |= uint16(n&0xF) << 8
	case layoutNM:
		v |= uint16(n&0xF)<<8 | uint16(m&0xF)<<4
	case layoutNMDisp4:
		v |= uint16(n&0xF)<<8 | uint16(m&0xF)<<4 | uint16(imm&0xF)
	case layoutMDisp4:
		v |= uint16(m&0xF)<<4 | uint16(imm&0xF)
	case layoutImm8:
		v |= uint16(imm & 0xFF)
	case layoutNImm8:
		v |= uint16(n&0xF)<<8 | uint16(imm&0xFF)
	case layoutImm12:
		v |= uint16(imm & 0xFFF)
	case layoutFIPR:
		v |= uint16(n&0xC|(m>>2)&3) << 8
	}
	return v
}

type fixup struct {
	at    int
	kind  decoder.Kind
	label string
}

// Builder assembles a sequence of instructions at a fixed origin. Branches
// to labels are resolved by Words.
type Builder struct {
	org    uint32
	code   []uint16
	labels map[string]int
	fixups []fixup
}

func New(org uint32) *Builder {
	return &Builder{org: org, labels: make(map[string]int)}
}

// PC returns the address of the next instruction.
func (b *Builder) PC() uint32 { return b.org + uint32(len(b.code))*2 }

func (b *Builder) Org() uint32 { return b.org }

func (b *Builder) Op(k decoder.Kind, n, m int, imm int32) *Builder {
	b.code = append(b.code, Encode(k, n, m, imm))
	return b
}

// Raw appends literal halfwords.
func (b *Builder) Raw(words ...uint16) *Builder {
	b.code = append(b.code, words...)
	return b
}

// Long appends a 32-bit literal, aligning to 4 bytes with a nop first.
func (b *Builder) Long(v uint32) *Builder {
	if b.PC()&2 != 0 {
		b.code = append(b.code, Encode(decoder.NOP, 0, 0, 0))
	}
	b.code = append(b.code, uint16(v), uint16(v>>16))
	return b
}

func (b *Builder) Label(name string) *Builder {
	b.labels[name] = len(b.code)
	return b
}

// Branch appends bt, bf, bt/s, bf/s, bra or bsr targeting label.
func (b *Builder) Branch(k decoder.Kind, label string) *Builder {
	b.fixups = append(b.fixups, fixup{at: len(b.code), kind: k, label: label})
	b.code = append(b.code, decoder.ByKind(k).Key)
	return b
}

// Words resolves branch fixups and returns the program.
func (b *Builder) Words() ([]uint16, error) {
	out := append([]uint16(nil), b.code...)
	for _, f := range b.fixups {
		target, ok := b.labels[f.label]
		if !ok {
			return nil, fmt.Errorf("sh4asm: undefined label %q", f.label)
		}
		disp := (target - f.at - 2)
		limit := 128
		if f.kind == decoder.BRA || f.kind == decoder.BSR {
			limit = 2048
		}
		if disp < -limit || disp >= limit {
			return nil, fmt.Errorf("sh4asm: label %q out of range for %s", f.label, f.kind)
		}
		out[f.at] = Encode(f.kind, 0, 0, int32(disp))
	}
	return out, nil
}

// Bytes returns the program as little-endian guest memory.
func (b *Builder) Bytes() ([]byte, error) {
	words, err := b.Words()
	if err != nil {
		return nil, err
	}
	return WordsToBytes(words), nil
}

func WordsToBytes(words []uint16) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(out[i*2:], w)
	}
	return out
}

// MustBytes is Bytes for programs known to be valid.
func (b *Builder) MustBytes() []byte {
	out, err := b.Bytes()
	if err != nil {
		panic(err)
	}
	return out
}
