package x64

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/colorfulnotion/sh4core/sh4errors"
)

// Label marks a position in the code being assembled.
type Label int

type itemKind uint8

// A label item binds a label and has no bytes. Jumps to labels are rel8 or
// rel32; absolute jumps are rel32 or jmp [rip+lit]. A rip item ends in a
// disp32 naming a literal.
const (
	itemBytes itemKind = iota
	itemLabel
	itemJump
	itemJumpAbs
	itemRIP
)

type item struct {
	kind   itemKind
	code   []byte
	cc     int // -1 for an unconditional jump
	label  Label
	target uintptr
	lit    int
	long   bool
}

type literal struct {
	value uint64
	width int
}

// Layout reports how an assembled block is laid out.
type Layout struct {
	CodeLen    int // instructions, pool excluded
	PoolOffset int
	Size       int
	Literals   int
	ShortJumps int
	LongJumps  int
	FarJumps   int // absolute jumps through the literal pool
}

// MaxCodeSize bounds one assembled block.
const MaxCodeSize = 1 << 20

// Assembler collects instructions and resolves labels, jump sizes and the
// literal pool once the load address is known.
type Assembler struct {
	items  []item
	cur    []byte
	labels int
	lits   []literal
	litIdx map[literal]int
}

func NewAssembler() *Assembler {
	return &Assembler{litIdx: make(map[literal]int)}
}

func (a *Assembler) flush() {
	if len(a.cur) > 0 {
		a.items = append(a.items, item{kind: itemBytes, code: a.cur})
		a.cur = nil
	}
}

// Emit appends raw instruction bytes.
func (a *Assembler) Emit(b ...byte) { a.cur = append(a.cur, b...) }

func (a *Assembler) NewLabel() Label {
	a.labels++
	return Label(a.labels - 1)
}

// Bind places l at the current position.
func (a *Assembler) Bind(l Label) {
	a.flush()
	a.items = append(a.items, item{kind: itemLabel, label: l})
}

// Jmp jumps to l.
func (a *Assembler) Jmp(l Label) {
	a.flush()
	a.items = append(a.items, item{kind: itemJump, cc: -1, label: l})
}

// Jcc jumps to l when cc holds.
func (a *Assembler) Jcc(cc Cond, l Label) {
	a.flush()
	a.items = append(a.items, item{kind: itemJump, cc: int(cc), label: l})
}

// JmpAbs jumps to a host address outside the block.
func (a *Assembler) JmpAbs(target uintptr) {
	a.flush()
	a.items = append(a.items, item{kind: itemJumpAbs, cc: -1, target: target, lit: -1})
}

func (a *Assembler) literal(v uint64, width int) int {
	k := literal{v, width}
	if i, ok := a.litIdx[k]; ok {
		return i
	}
	a.lits = append(a.lits, k)
	a.litIdx[k] = len(a.lits) - 1
	return len(a.lits) - 1
}

// Lit32 and Lit64 return pool entries; equal constants share one entry.
func (a *Assembler) Lit32(v uint32) int { return a.literal(uint64(v), 4) }
func (a *Assembler) Lit64(v uint64) int { return a.literal(v, 8) }

// RIP appends an instruction whose last operand is [rip+disp32] naming
// literal lit. prefix is the instruction without the displacement.
func (a *Assembler) RIP(lit int, prefix ...byte) {
	a.flush()
	code := append(append([]byte(nil), prefix...), 0, 0, 0, 0)
	a.items = append(a.items, item{kind: itemRIP, code: code, lit: lit})
}

func (it *item) size() int {
	switch it.kind {
	case itemLabel:
		return 0
	case itemJump:
		switch {
		case !it.long:
			return 2
		case it.cc < 0:
			return 5
		}
		return 6
	case itemJumpAbs:
		if it.long {
			return 6
		}
		return 5
	}
	return len(it.code)
}

func fitsInt8(v int64) bool  { return v >= math.MinInt8 && v <= math.MaxInt8 }
func fitsInt32(v int64) bool { return v >= math.MinInt32 && v <= math.MaxInt32 }

// layout computes item offsets and grows jumps until every displacement
// fits. Sizes only grow, so the loop terminates.
func (a *Assembler) layout(base uintptr) ([]int, []int, error) {
	offs := make([]int, len(a.items)+1)
	pos := make([]int, a.labels)
	for {
		off := 0
		for i := range pos {
			pos[i] = -1
		}
		for i := range a.items {
			offs[i] = off
			if a.items[i].kind == itemLabel {
				pos[a.items[i].label] = off
			}
			off += a.items[i].size()
		}
		offs[len(a.items)] = off
		changed := false
		for i := range a.items {
			it := &a.items[i]
			end := int64(offs[i] + it.size())
			switch {
			case it.kind == itemJump && !it.long:
				p := pos[it.label]
				if p < 0 {
					return nil, nil, fmt.Errorf("x64: unbound label %d: %w", it.label, sh4errors.ErrCInvalidBlock)
				}
				if !fitsInt8(int64(p) - end) {
					it.long = true
					changed = true
				}
			case it.kind == itemJumpAbs && !it.long:
				if !fitsInt32(int64(it.target) - (int64(base) + end)) {
					it.long = true
					it.lit = a.Lit64(uint64(it.target))
					changed = true
				}
			}
		}
		if !changed {
			return offs, pos, nil
		}
	}
}

// Assemble encodes the block for loading at base.
func (a *Assembler) Assemble(base uintptr) ([]byte, Layout, error) {
	a.flush()
	offs, pos, err := a.layout(base)
	if err != nil {
		return nil, Layout{}, err
	}
	var lay Layout
	lay.CodeLen = offs[len(a.items)]
	lay.PoolOffset = (lay.CodeLen + 7) &^ 7
	litOff := make([]int, len(a.lits))
	off := lay.PoolOffset
	for _, w := range []int{8, 4} {
		for i, l := range a.lits {
			if l.width == w {
				litOff[i] = off
				off += w
			}
		}
	}
	lay.Size = off
	lay.Literals = len(a.lits)
	if lay.Size > MaxCodeSize {
		return nil, lay, fmt.Errorf("x64: %d bytes: %w", lay.Size, sh4errors.ErrCCodeTooLarge)
	}

	out := make([]byte, lay.Size)
	for i := range a.items {
		it := &a.items[i]
		at := offs[i]
		end := at + it.size()
		switch it.kind {
		case itemBytes:
			copy(out[at:], it.code)
		case itemRIP:
			copy(out[at:], it.code)
			binary.LittleEndian.PutUint32(out[end-4:], uint32(int32(litOff[it.lit]-end)))
		case itemJump:
			disp := pos[it.label] - end
			switch {
			case !it.long && it.cc < 0:
				out[at], out[at+1] = X86_OP_JMP_REL8, byte(int8(disp))
			case !it.long:
				out[at], out[at+1] = X86_OP_JCC_REL8+byte(it.cc), byte(int8(disp))
			case it.cc < 0:
				out[at] = X86_OP_JMP_REL32
				binary.LittleEndian.PutUint32(out[at+1:], uint32(int32(disp)))
			default:
				out[at], out[at+1] = X86_PREFIX_0F, X86_OP2_JCC_REL32+byte(it.cc)
				binary.LittleEndian.PutUint32(out[at+2:], uint32(int32(disp)))
			}
			if it.long {
				lay.LongJumps++
			} else {
				lay.ShortJumps++
			}
		case itemJumpAbs:
			if it.long {
				// jmp qword [rip+lit]
				out[at], out[at+1] = X86_OP_GROUP5_RM, X86_REG_JMP_RM<<3|X86_RM_RIP
				binary.LittleEndian.PutUint32(out[at+2:], uint32(int32(litOff[it.lit]-end)))
				lay.FarJumps++
			} else {
				out[at] = X86_OP_JMP_REL32
				binary.LittleEndian.PutUint32(out[at+1:], uint32(int32(int64(it.target)-(int64(base)+int64(end)))))
				lay.LongJumps++
			}
		}
	}
	for i, l := range a.lits {
		if l.width == 8 {
			binary.LittleEndian.PutUint64(out[litOff[i]:], l.value)
		} else {
			binary.LittleEndian.PutUint32(out[litOff[i]:], uint32(l.value))
		}
	}
	return out, lay, nil
}
