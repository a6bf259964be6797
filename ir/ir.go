// Package ir is the intermediate form compiled blocks go through: an SSA list
// of operations over guest registers and memory, produced by the emitter,
// simplified by the optimizer and annotated by the memory resolver.
package ir

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/sh4core/cpu"
)

// Value names an SSA result. Values are defined exactly once.
type Value int32

const NoValue Value = -1

func (v Value) String() string {
	if v == NoValue {
		return "_"
	}
	return fmt.Sprintf("v%d", int32(v))
}

type OpCode uint8

const (
	OpNop OpCode = iota
	OpConst
	OpLoadReg
	OpStoreReg

	// 32-bit integer arithmetic
	OpAdd
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar
	OpNot
	OpNeg
	OpSext8
	OpSext16
	OpZext8
	OpZext16

	// comparisons produce 0 or 1
	OpSetEQ
	OpSetHS
	OpSetHI
	OpSetGE
	OpSetGT

	// memory, loads sign-extend
	OpLoad8
	OpLoad16
	OpLoad32
	OpStore8
	OpStore16
	OpStore32

	// floating point on raw bit patterns
	OpFAdd32
	OpFSub32
	OpFMul32
	OpFDiv32
	OpFSqrt32
	OpFCmpEQ32
	OpFCmpGT32
	OpFAdd64
	OpFSub64
	OpFMul64
	OpFDiv64
	OpFSqrt64
	OpFCmpEQ64
	OpFCmpGT64
	OpIntToF32
	OpIntToF64
	OpFtrc32
	OpFtrc64
	OpF64To32
	OpF32To64

	// 64-bit pairs
	OpPair
	OpHi
	OpLo

	// OpInterp runs one guest instruction in the interpreter. It is a barrier
	// and defines the guest PC after the instruction.
	OpInterp

	NumOpCodes
)

var opNames = [NumOpCodes]string{
	OpNop: "nop", OpConst: "const", OpLoadReg: "ldreg", OpStoreReg: "streg",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpShl: "shl", OpShr: "shr", OpSar: "sar", OpNot: "not", OpNeg: "neg",
	OpSext8: "sext8", OpSext16: "sext16", OpZext8: "zext8", OpZext16: "zext16",
	OpSetEQ: "seteq", OpSetHS: "seths", OpSetHI: "sethi", OpSetGE: "setge", OpSetGT: "setgt",
	OpLoad8: "ld8", OpLoad16: "ld16", OpLoad32: "ld32",
	OpStore8: "st8", OpStore16: "st16", OpStore32: "st32",
	OpFAdd32: "fadd.s", OpFSub32: "fsub.s", OpFMul32: "fmul.s", OpFDiv32: "fdiv.s", OpFSqrt32: "fsqrt.s",
	OpFCmpEQ32: "fcmpeq.s", OpFCmpGT32: "fcmpgt.s",
	OpFAdd64: "fadd.d", OpFSub64: "fsub.d", OpFMul64: "fmul.d", OpFDiv64: "fdiv.d", OpFSqrt64: "fsqrt.d",
	OpFCmpEQ64: "fcmpeq.d", OpFCmpGT64: "fcmpgt.d",
	OpIntToF32: "itof.s", OpIntToF64: "itof.d", OpFtrc32: "ftrc.s", OpFtrc64: "ftrc.d",
	OpF64To32: "cvt.ds", OpF32To64: "cvt.sd",
	OpPair: "pair", OpHi: "hi", OpLo: "lo",
	OpInterp: "interp",
}

func (c OpCode) String() string {
	if c < NumOpCodes && opNames[c] != "" {
		return opNames[c]
	}
	return fmt.Sprintf("op(%d)", uint8(c))
}

// Arity is the number of value operands an opcode reads.
func (c OpCode) Arity() int {
	switch c {
	case OpNop, OpConst, OpLoadReg, OpInterp:
		return 0
	case OpStoreReg, OpNot, OpNeg, OpSext8, OpSext16, OpZext8, OpZext16,
		OpLoad8, OpLoad16, OpLoad32, OpFSqrt32, OpFSqrt64,
		OpIntToF32, OpIntToF64, OpFtrc32, OpFtrc64, OpF64To32, OpF32To64, OpHi, OpLo:
		return 1
	}
	return 2
}

// HasResult reports whether the opcode defines Dst.
func (c OpCode) HasResult() bool {
	switch c {
	case OpNop, OpStoreReg, OpStore8, OpStore16, OpStore32:
		return false
	}
	return true
}

func (c OpCode) IsLoad() bool  { return c >= OpLoad8 && c <= OpLoad32 }
func (c OpCode) IsStore() bool { return c >= OpStore8 && c <= OpStore32 }

// IsPure reports whether the op only computes its result from its operands.
func (c OpCode) IsPure() bool {
	switch {
	case c == OpConst || c == OpLoadReg:
		return true
	case c >= OpAdd && c <= OpSetGT:
		return true
	case c >= OpFAdd32 && c <= OpLo:
		return true
	}
	return false
}

// Width returns the access size of a load or store.
func (c OpCode) Width() int {
	switch c {
	case OpLoad8, OpStore8:
		return 1
	case OpLoad16, OpStore16:
		return 2
	case OpLoad32, OpStore32:
		return 4
	}
	return 0
}

// MemClass says how an access reaches memory.
type MemClass uint8

const (
	// Dispatch goes through the bus at run time.
	Dispatch MemClass = iota
	// Direct reads or writes a RAM region at a fixed offset.
	Direct
)

func (m MemClass) String() string {
	if m == Direct {
		return "direct"
	}
	return "dispatch"
}

// Mem describes a resolved memory access.
type Mem struct {
	Class  MemClass
	Region int
	Offset uint32
	Width  int
}

type Op struct {
	Code OpCode
	Dst  Value
	A    Value
	B    Value
	Reg  cpu.Reg
	Imm  uint64
	// PC is the guest address of the instruction the op was emitted for.
	PC uint32
	// Cycles charged when execution reaches this op.
	Cycles int
	Mem    Mem
}

func (o *Op) String() string {
	var sb strings.Builder
	if o.Code.HasResult() {
		fmt.Fprintf(&sb, "%s = ", o.Dst)
	}
	sb.WriteString(o.Code.String())
	switch o.Code {
	case OpConst:
		fmt.Fprintf(&sb, " 0x%x", o.Imm)
	case OpLoadReg:
		fmt.Fprintf(&sb, " %s", o.Reg)
	case OpStoreReg:
		fmt.Fprintf(&sb, " %s, %s", o.Reg, o.A)
	case OpInterp:
		fmt.Fprintf(&sb, " %04x @%08x", o.Imm, o.PC)
	default:
		switch o.Code.Arity() {
		case 1:
			fmt.Fprintf(&sb, " %s", o.A)
		case 2:
			fmt.Fprintf(&sb, " %s, %s", o.A, o.B)
		}
	}
	if o.Code.IsLoad() || o.Code.IsStore() {
		if o.Mem.Class == Direct {
			fmt.Fprintf(&sb, " [direct r%d+%x]", o.Mem.Region, o.Mem.Offset)
		} else {
			sb.WriteString(" [dispatch]")
		}
	}
	if o.Cycles > 0 {
		fmt.Fprintf(&sb, " ; %dc", o.Cycles)
	}
	return sb.String()
}

type ExitKind uint8

const (
	// ExitStatic jumps to Target.
	ExitStatic ExitKind = iota
	// ExitCond jumps to Target when Cond is 1, else to Next.
	ExitCond
	// ExitDynamic jumps to the address in Dest.
	ExitDynamic
	// ExitFallthrough continues at Next.
	ExitFallthrough
)

func (k ExitKind) String() string {
	switch k {
	case ExitStatic:
		return "static"
	case ExitCond:
		return "cond"
	case ExitDynamic:
		return "dynamic"
	case ExitFallthrough:
		return "fallthrough"
	}
	return fmt.Sprintf("exit(%d)", uint8(k))
}

type Exit struct {
	Kind   ExitKind
	Target uint32
	Next   uint32
	Cond   Value
	Dest   Value
}

// StoreSite is a direct store the driver reports to the code write watch.
type StoreSite struct {
	Addr  uint32
	Width int
}

// Block is one compiled unit of guest code.
type Block struct {
	Start uint32
	// End is the address after the last guest instruction, delay slot included.
	End   uint32
	Mode  cpu.Mode
	Count int
	// Cycles is the issue cycle total, the sum of Ops cycles plus TailCycles.
	Cycles     int
	TailCycles int
	Ops        []Op
	Exit       Exit
	NumValues  int
	UsesFPU    bool

	MapGeneration uint64
	CodeHash      [32]byte
	DirectStores  []StoreSite
}

// Clone returns a deep copy of b.
func (b *Block) Clone() *Block {
	nb := *b
	nb.Ops = append([]Op(nil), b.Ops...)
	nb.DirectStores = append([]StoreSite(nil), b.DirectStores...)
	return &nb
}

func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "block %08x-%08x mode=%s insns=%d cycles=%d\n", b.Start, b.End, b.Mode, b.Count, b.Cycles)
	for i := range b.Ops {
		fmt.Fprintf(&sb, "  %s\n", b.Ops[i].String())
	}
	switch b.Exit.Kind {
	case ExitStatic:
		fmt.Fprintf(&sb, "  exit static %08x\n", b.Exit.Target)
	case ExitCond:
		fmt.Fprintf(&sb, "  exit cond %s ? %08x : %08x\n", b.Exit.Cond, b.Exit.Target, b.Exit.Next)
	case ExitDynamic:
		fmt.Fprintf(&sb, "  exit dynamic %s\n", b.Exit.Dest)
	case ExitFallthrough:
		fmt.Fprintf(&sb, "  exit fallthrough %08x\n", b.Exit.Next)
	}
	return sb.String()
}

// sumCycles recomputes the cycle total from the ops.
func (b *Block) sumCycles() int {
	n := b.TailCycles
	for i := range b.Ops {
		n += b.Ops[i].Cycles
	}
	return n
}
