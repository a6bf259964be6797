// Package decoder maps 16-bit SH4 opcodes to operation descriptors.
package decoder

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/sh4core/sh4errors"
	"golang.org/x/exp/constraints"
)

// Class flags describe how an opcode interacts with control flow and mode state.
type Class uint16

const (
	ClassBranch Class = 1 << iota
	ClassDelayed
	ClassConditional
	ClassReadsPC
	ClassUsesFPU
	ClassWritesFPSCR
	ClassWritesSR
	ClassEndsBlock
	ClassSlotIllegal
)

// Op is the immutable descriptor of one opcode pattern.
type Op struct {
	Kind    Kind
	Mask    uint16
	Key     uint16
	Cycles  int
	Latency int
	Class   Class
	Name    string
}

func (o *Op) Is(c Class) bool { return o.Class&c != 0 }

// IllegalOp is returned for every opcode no table entry claims.
var IllegalOp = Op{Kind: ILLEGAL, Cycles: 1, Class: ClassEndsBlock, Name: ".word {raw}"}

type tables struct {
	decode [1 << 16]*Op
	kinds  [NumKinds]*Op
}

var tbl = buildTables(opTable)

func buildTables(ops []Op) *tables {
	t := &tables{}
	t.kinds[ILLEGAL] = &IllegalOp
	for i := range ops {
		op := &ops[i]
		if t.kinds[op.Kind] != nil {
			panic(fmt.Errorf("kind %d listed twice: %w", op.Kind, sh4errors.ErrVDecodeConflict))
		}
		t.kinds[op.Kind] = op
		for v := 0; v < len(t.decode); v++ {
			if uint16(v)&op.Mask != op.Key {
				continue
			}
			if prev := t.decode[v]; prev != nil {
				panic(fmt.Errorf("opcode %04x claimed by %q and %q: %w", v, prev.Name, op.Name, sh4errors.ErrVDecodeConflict))
			}
			t.decode[v] = op
		}
	}
	for v := range t.decode {
		if t.decode[v] == nil {
			t.decode[v] = &IllegalOp
		}
	}
	return t
}

// Decode returns the descriptor for an opcode. It never returns nil.
func Decode(op uint16) *Op {
	return tbl.decode[op]
}

// ByKind returns the descriptor of a kind.
func ByKind(k Kind) *Op {
	if k >= NumKinds {
		return &IllegalOp
	}
	return tbl.kinds[k]
}

// Ops returns the defined opcode descriptors in table order.
func Ops() []Op {
	return opTable
}

func (k Kind) String() string {
	if k >= NumKinds || tbl.kinds[k] == nil {
		return fmt.Sprintf("kind(%d)", uint16(k))
	}
	name := tbl.kinds[k].Name
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

// Operand fields.

func N(op uint16) int       { return int(op>>8) & 0xF }
func M(op uint16) int       { return int(op>>4) & 0xF }
func Imm8(op uint16) uint32 { return uint32(op & 0xFF) }
func Imm4(op uint16) uint32 { return uint32(op & 0xF) }
func Bank(op uint16) int    { return int(op>>4) & 0x7 }

func Simm8(op uint16) int32  { return SignExtend(op, 8) }
func Simm12(op uint16) int32 { return SignExtend(op, 12) }

// SignExtend treats the low bits of v as a two's complement number.
func SignExtend[T constraints.Integer](v T, bits uint) int32 {
	shift := 32 - bits
	return int32(uint32(v)<<shift) >> shift
}

// Disp8Target is the target of bt, bf, bt/s and bf/s at pc.
func Disp8Target(pc uint32, op uint16) uint32 {
	return pc + 4 + uint32(Simm8(op))*2
}

// Disp12Target is the target of bra and bsr at pc.
func Disp12Target(pc uint32, op uint16) uint32 {
	return pc + 4 + uint32(Simm12(op))*2
}

// PCRelWord is the address read by mov.w @(disp,PC),Rn at pc.
func PCRelWord(pc uint32, op uint16) uint32 {
	return pc + 4 + Imm8(op)*2
}

// PCRelLong is the address read by mov.l @(disp,PC),Rn and computed by mova at pc.
func PCRelLong(pc uint32, op uint16) uint32 {
	return (pc+4)&^3 + Imm8(op)*4
}
