package ir

import (
	"math"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/interpreter"
	"github.com/colorfulnotion/sh4core/memory"
)

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func fbits32(v uint64) float32 { return math.Float32frombits(uint32(v)) }
func fbits64(v uint64) float64 { return math.Float64frombits(v) }

func nan32(f float32) uint64 { return uint64(cpu.FixNaN32(math.Float32bits(f))) }
func nan64(f float64) uint64 { return cpu.FixNaN64(math.Float64bits(f)) }

// Apply computes a pure opcode. Integer results are 32 bits wide, pairs and
// double precision results 64.
func Apply(code OpCode, a, b uint64) uint64 {
	x, y := uint32(a), uint32(b)
	switch code {
	case OpAdd:
		return uint64(x + y)
	case OpSub:
		return uint64(x - y)
	case OpMul:
		return uint64(x * y)
	case OpAnd:
		return uint64(x & y)
	case OpOr:
		return uint64(x | y)
	case OpXor:
		return uint64(x ^ y)
	case OpShl:
		return uint64(x << (y & 31))
	case OpShr:
		return uint64(x >> (y & 31))
	case OpSar:
		return uint64(uint32(int32(x) >> (y & 31)))
	case OpNot:
		return uint64(^x)
	case OpNeg:
		return uint64(-x)
	case OpSext8:
		return uint64(uint32(int32(int8(x))))
	case OpSext16:
		return uint64(uint32(int32(int16(x))))
	case OpZext8:
		return uint64(x & 0xFF)
	case OpZext16:
		return uint64(x & 0xFFFF)
	case OpSetEQ:
		return b2u(x == y)
	case OpSetHS:
		return b2u(x >= y)
	case OpSetHI:
		return b2u(x > y)
	case OpSetGE:
		return b2u(int32(x) >= int32(y))
	case OpSetGT:
		return b2u(int32(x) > int32(y))

	case OpFAdd32:
		return nan32(fbits32(a) + fbits32(b))
	case OpFSub32:
		return nan32(fbits32(a) - fbits32(b))
	case OpFMul32:
		return nan32(fbits32(a) * fbits32(b))
	case OpFDiv32:
		return nan32(fbits32(a) / fbits32(b))
	case OpFSqrt32:
		return nan32(float32(math.Sqrt(float64(fbits32(a)))))
	case OpFCmpEQ32:
		return b2u(fbits32(a) == fbits32(b))
	case OpFCmpGT32:
		return b2u(fbits32(a) > fbits32(b))
	case OpFAdd64:
		return nan64(fbits64(a) + fbits64(b))
	case OpFSub64:
		return nan64(fbits64(a) - fbits64(b))
	case OpFMul64:
		return nan64(fbits64(a) * fbits64(b))
	case OpFDiv64:
		return nan64(fbits64(a) / fbits64(b))
	case OpFSqrt64:
		return nan64(math.Sqrt(fbits64(a)))
	case OpFCmpEQ64:
		return b2u(fbits64(a) == fbits64(b))
	case OpFCmpGT64:
		return b2u(fbits64(a) > fbits64(b))
	case OpIntToF32:
		return uint64(math.Float32bits(float32(int32(x))))
	case OpIntToF64:
		return math.Float64bits(float64(int32(x)))
	case OpFtrc32:
		return uint64(interpreter.Ftrc(float64(fbits32(a))))
	case OpFtrc64:
		return uint64(interpreter.Ftrc(fbits64(a)))
	case OpF64To32:
		return nan32(float32(fbits64(a)))
	case OpF32To64:
		return math.Float64bits(float64(fbits32(a)))

	case OpPair:
		return a<<32 | uint64(y)
	case OpHi:
		return a >> 32
	case OpLo:
		return uint64(uint32(a))
	}
	return 0
}

func load(bus memory.Bus, code OpCode, addr uint32) uint64 {
	switch code {
	case OpLoad8:
		return uint64(uint32(int32(int8(bus.Read8(addr)))))
	case OpLoad16:
		return uint64(uint32(int32(int16(bus.Read16(addr)))))
	}
	return uint64(bus.Read32(addr))
}

func store(bus memory.Bus, code OpCode, addr uint32, v uint64) {
	switch code {
	case OpStore8:
		bus.Write8(addr, uint8(v))
	case OpStore16:
		bus.Write16(addr, uint16(v))
	default:
		bus.Write32(addr, uint32(v))
	}
}

// Eval runs b against c and bus one op at a time. It is the reference every
// backend is checked against and returns the cycles consumed. All memory
// accesses go through bus regardless of their resolution.
func Eval(b *Block, c *cpu.Context, bus memory.Bus, in *interpreter.Interpreter) int {
	vals := make([]uint64, b.NumValues)
	cycles := 0
	for i := range b.Ops {
		o := &b.Ops[i]
		cycles += o.Cycles
		switch {
		case o.Code == OpNop:
		case o.Code == OpConst:
			vals[o.Dst] = o.Imm
		case o.Code == OpLoadReg:
			vals[o.Dst] = uint64(*c.Reg(o.Reg))
		case o.Code == OpStoreReg:
			*c.Reg(o.Reg) = uint32(vals[o.A])
		case o.Code.IsLoad():
			vals[o.Dst] = load(bus, o.Code, uint32(vals[o.A]))
		case o.Code.IsStore():
			store(bus, o.Code, uint32(vals[o.A]), vals[o.B])
		case o.Code == OpInterp:
			c.PC = o.PC
			in.Execute(c, uint16(o.Imm))
			vals[o.Dst] = uint64(c.PC)
			if c.PC != o.PC+2 {
				return cycles
			}
		default:
			var x, y uint64
			if o.A != NoValue {
				x = vals[o.A]
			}
			if o.B != NoValue {
				y = vals[o.B]
			}
			vals[o.Dst] = Apply(o.Code, x, y)
		}
	}
	c.PC = exitPC(&b.Exit, vals)
	return cycles + b.TailCycles
}

func exitPC(e *Exit, vals []uint64) uint32 {
	switch e.Kind {
	case ExitStatic:
		return e.Target
	case ExitCond:
		if vals[e.Cond] != 0 {
			return e.Target
		}
		return e.Next
	case ExitDynamic:
		return uint32(vals[e.Dest])
	}
	return e.Next
}
