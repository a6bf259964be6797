package x64

import (
	"fmt"
	"unsafe"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

var (
	pcOffset = int32(unsafe.Offsetof(cpu.Context{}.PC))

	canonMask64 = uint64(0xFFE0000000000000) // bits<<1 above this is a NaN
)

type gen struct {
	a      *Assembler
	b      *ir.Block
	al     *Allocation
	mapper ir.Mapper
	ep     uintptr
}

func unsupported(b *ir.Block, i int, o *ir.Op) error {
	return fmt.Errorf("block %08x op %d %s: %w", b.Start, i, o.Code, sh4errors.ErrCUnsupportedOp)
}

// Supported reports whether every op of b has a native lowering.
func Supported(b *ir.Block) error {
	for i := range b.Ops {
		o := &b.Ops[i]
		switch {
		case o.Code == ir.OpInterp, o.Code == ir.OpFtrc32, o.Code == ir.OpFtrc64:
			return unsupported(b, i, o)
		case (o.Code.IsLoad() || o.Code.IsStore()) && o.Mem.Class != ir.Direct:
			return unsupported(b, i, o)
		}
	}
	return nil
}

// Generate lowers b to machine code to be loaded at base. Every exit stores
// the next PC and returns the block cycles through the shared epilogue at ep;
// with ep zero the epilogue is inlined at each exit.
func Generate(b *ir.Block, m ir.Mapper, base, ep uintptr) ([]byte, Layout, error) {
	if err := Supported(b); err != nil {
		return nil, Layout{}, err
	}
	al, err := Allocate(b, allocatable)
	if err != nil {
		return nil, Layout{}, err
	}
	g := &gen{a: NewAssembler(), b: b, al: al, mapper: m, ep: ep}
	for i := range b.Ops {
		if err := g.op(&b.Ops[i]); err != nil {
			return nil, Layout{}, fmt.Errorf("block %08x op %d: %w", b.Start, i, err)
		}
	}
	g.exit()
	return g.a.Assemble(base)
}

// Epilogue is the shared block exit: eax holds the next PC, ecx the cycles.
func Epilogue(a *Assembler) {
	a.Store32(CtxReg, pcOffset, RAX)
	a.MovRR32(RAX, RCX)
	a.Ret()
}

func (g *gen) load(v ir.Value, scratch X86Reg) {
	if l := g.al.Locs[v]; l.Slot >= 0 {
		g.a.Load64(scratch, CtxReg, int32(cpu.SpillOffset(l.Slot)))
	} else {
		g.a.MovRR64(scratch, l.Reg)
	}
}

func (g *gen) store(v ir.Value) {
	if l := g.al.Locs[v]; l.Slot >= 0 {
		g.a.Store64(CtxReg, int32(cpu.SpillOffset(l.Slot)), RAX)
	} else {
		g.a.MovRR64(l.Reg, RAX)
	}
}

func (g *gen) operands(o *ir.Op) {
	if o.A != ir.NoValue {
		g.load(o.A, RAX)
	}
	if o.B != ir.NoValue {
		g.load(o.B, RCX)
	}
}

func (g *gen) hostAddr(o *ir.Op) (uint64, error) {
	r := g.mapper.Region(o.Mem.Region)
	if r == nil {
		return 0, fmt.Errorf("region %d: %w", o.Mem.Region, sh4errors.ErrCMapUnavailable)
	}
	data := r.Data()
	if int(o.Mem.Offset)+o.Mem.Width > len(data) {
		return 0, fmt.Errorf("offset %x past region %s: %w", o.Mem.Offset, r.Name, sh4errors.ErrCInvalidBlock)
	}
	return uint64(uintptr(unsafe.Pointer(&data[o.Mem.Offset]))), nil
}

// canon replaces a NaN in rax with the canonical NaN.
func (g *gen) canon(double bool) {
	a := g.a
	if double {
		a.MovRR64(RCX, RAX)
		a.ShiftImm64(X86_REG_SHL, RCX, 1)
		a.CmpLit64(RCX, canonMask64)
		a.CmovaLit(true, RAX, cpu.CanonicalNaN64)
		return
	}
	a.MovRR32(RCX, RAX)
	a.ALUImm32(X86_REG_AND, RCX, 0x7FFFFFFF)
	a.ALUImm32(X86_REG_CMP, RCX, 0x7F800000)
	a.CmovaLit(false, RAX, uint64(cpu.CanonicalNaN32))
}

var aluOps = map[ir.OpCode]byte{
	ir.OpAdd: X86_OP_ADD_RM_R,
	ir.OpSub: X86_OP_SUB_RM_R,
	ir.OpAnd: X86_OP_AND_RM_R,
	ir.OpOr:  X86_OP_OR_RM_R,
	ir.OpXor: X86_OP_XOR_RM_R,
}

var shiftOps = map[ir.OpCode]byte{
	ir.OpShl: X86_REG_SHL,
	ir.OpShr: X86_REG_SHR,
	ir.OpSar: X86_REG_SAR,
}

var setOps = map[ir.OpCode]Cond{
	ir.OpSetEQ: CondE,
	ir.OpSetHS: CondAE,
	ir.OpSetHI: CondA,
	ir.OpSetGE: CondGE,
	ir.OpSetGT: CondG,
}

type sseOp struct {
	op     byte
	double bool
}

var sseOps = map[ir.OpCode]sseOp{
	ir.OpFAdd32: {X86_OP2_ADD, false},
	ir.OpFSub32: {X86_OP2_SUB, false},
	ir.OpFMul32: {X86_OP2_MUL, false},
	ir.OpFDiv32: {X86_OP2_DIV, false},
	ir.OpFAdd64: {X86_OP2_ADD, true},
	ir.OpFSub64: {X86_OP2_SUB, true},
	ir.OpFMul64: {X86_OP2_MUL, true},
	ir.OpFDiv64: {X86_OP2_DIV, true},
}

func (g *gen) op(o *ir.Op) error {
	a := g.a
	switch o.Code {
	case ir.OpNop:
		return nil
	case ir.OpConst:
		if o.Imm <= 0xFFFFFFFF {
			a.MovImm32(RAX, uint32(o.Imm))
		} else {
			a.MovLit64(RAX, o.Imm)
		}
	case ir.OpLoadReg:
		a.Load32(RAX, CtxReg, int32(cpu.RegOffset(o.Reg)))
	case ir.OpStoreReg:
		g.load(o.A, RAX)
		a.Store32(CtxReg, int32(cpu.RegOffset(o.Reg)), RAX)
		return nil
	case ir.OpLoad8, ir.OpLoad16, ir.OpLoad32:
		addr, err := g.hostAddr(o)
		if err != nil {
			return err
		}
		a.MovLit64(RCX, addr)
		a.LoadInd(o.Mem.Width)
	case ir.OpStore8, ir.OpStore16, ir.OpStore32:
		addr, err := g.hostAddr(o)
		if err != nil {
			return err
		}
		g.load(o.B, RAX)
		a.MovLit64(RCX, addr)
		a.StoreInd(o.Mem.Width)
		return nil
	case ir.OpMul:
		g.operands(o)
		a.Imul32(RAX, RCX)
	case ir.OpNot, ir.OpNeg:
		g.operands(o)
		ext := byte(X86_REG_NOT)
		if o.Code == ir.OpNeg {
			ext = X86_REG_NEG
		}
		a.Unary32(ext, RAX)
	case ir.OpSext8:
		g.operands(o)
		a.Extend(X86_OP2_MOVSX_R_RM8, RAX, RAX)
	case ir.OpSext16:
		g.operands(o)
		a.Extend(X86_OP2_MOVSX_R_RM16, RAX, RAX)
	case ir.OpZext8:
		g.operands(o)
		a.Extend(X86_OP2_MOVZX_R_RM8, RAX, RAX)
	case ir.OpZext16:
		g.operands(o)
		a.Extend(X86_OP2_MOVZX_R_RM16, RAX, RAX)
	case ir.OpFSqrt32, ir.OpFSqrt64:
		double := o.Code == ir.OpFSqrt64
		g.operands(o)
		a.MovToXMM(double, XMM0, RAX)
		a.SSE(double, X86_OP2_SQRT, XMM0, XMM0)
		a.MovFromXMM(double, RAX, XMM0)
		g.canon(double)
	case ir.OpFCmpEQ32, ir.OpFCmpEQ64, ir.OpFCmpGT32, ir.OpFCmpGT64:
		double := o.Code == ir.OpFCmpEQ64 || o.Code == ir.OpFCmpGT64
		g.operands(o)
		a.MovToXMM(double, XMM0, RAX)
		a.MovToXMM(double, XMM1, RCX)
		a.Ucomis(double, XMM0, XMM1)
		if o.Code == ir.OpFCmpGT32 || o.Code == ir.OpFCmpGT64 {
			a.Setcc(CondA, RAX)
			break
		}
		// Equal and ordered.
		a.Setcc(CondE, RAX)
		a.Setcc(CondNP, RCX)
		a.ALU32(X86_OP_AND_RM_R, RAX, RCX)
	case ir.OpIntToF32, ir.OpIntToF64:
		double := o.Code == ir.OpIntToF64
		g.operands(o)
		a.CvtInt(double, XMM0, RAX)
		a.MovFromXMM(double, RAX, XMM0)
	case ir.OpF64To32:
		g.operands(o)
		a.MovToXMM(true, XMM0, RAX)
		a.SSE(true, X86_OP2_CVTS2S, XMM0, XMM0)
		a.MovFromXMM(false, RAX, XMM0)
		g.canon(false)
	case ir.OpF32To64:
		g.operands(o)
		a.MovToXMM(false, XMM0, RAX)
		a.SSE(false, X86_OP2_CVTS2S, XMM0, XMM0)
		a.MovFromXMM(true, RAX, XMM0)
	case ir.OpPair:
		g.operands(o)
		a.ShiftImm64(X86_REG_SHL, RAX, 32)
		a.MovRR32(RCX, RCX)
		a.ALU64(X86_OP_OR_RM_R, RAX, RCX)
	case ir.OpHi:
		g.operands(o)
		a.ShiftImm64(X86_REG_SHR, RAX, 32)
	case ir.OpLo:
		g.operands(o)
		a.MovRR32(RAX, RAX)
	default:
		if op, ok := aluOps[o.Code]; ok {
			g.operands(o)
			a.ALU32(op, RAX, RCX)
			break
		}
		if ext, ok := shiftOps[o.Code]; ok {
			g.operands(o)
			a.ShiftCL32(ext, RAX)
			break
		}
		if cc, ok := setOps[o.Code]; ok {
			g.operands(o)
			a.ALU32(X86_OP_CMP_RM_R, RAX, RCX)
			a.Setcc(cc, RAX)
			break
		}
		if s, ok := sseOps[o.Code]; ok {
			g.operands(o)
			a.MovToXMM(s.double, XMM0, RAX)
			a.MovToXMM(s.double, XMM1, RCX)
			a.SSE(s.double, s.op, XMM0, XMM1)
			a.MovFromXMM(s.double, RAX, XMM0)
			g.canon(s.double)
			break
		}
		return fmt.Errorf("%s: %w", o.Code, sh4errors.ErrCUnsupportedOp)
	}
	g.store(o.Dst)
	return nil
}

// leave exits with eax holding the next PC.
func (g *gen) leave() {
	g.a.MovImm32(RCX, uint32(g.b.Cycles))
	if g.ep == 0 {
		Epilogue(g.a)
		return
	}
	g.a.JmpAbs(g.ep)
}

func (g *gen) exit() {
	a, e := g.a, &g.b.Exit
	switch e.Kind {
	case ir.ExitStatic:
		a.MovImm32(RAX, e.Target)
	case ir.ExitCond:
		g.load(e.Cond, RAX)
		a.Test32(RAX)
		notTaken := a.NewLabel()
		a.Jcc(CondE, notTaken)
		a.MovImm32(RAX, e.Target)
		g.leave()
		a.Bind(notTaken)
		a.MovImm32(RAX, e.Next)
	case ir.ExitDynamic:
		g.load(e.Dest, RAX)
	default:
		a.MovImm32(RAX, e.Next)
	}
	g.leave()
}
