package sh4asm

import (
	"math/rand"

	"github.com/colorfulnotion/sh4core/decoder"
)

// DataBase is where random programs keep their scratch data, addressed
// through r14 and GBR.
const DataBase = 0x0C0F0000

// Kinds random programs draw from. Registers chosen never include r14 and
// r15.
var (
	randomALU = []decoder.Kind{
		decoder.MOV, decoder.ADD, decoder.ADDC, decoder.ADDV, decoder.SUB, decoder.SUBC, decoder.SUBV,
		decoder.NEG, decoder.NEGC, decoder.AND, decoder.OR, decoder.XOR, decoder.NOT,
		decoder.TST, decoder.CMP_EQ, decoder.CMP_HS, decoder.CMP_HI, decoder.CMP_GE, decoder.CMP_GT,
		decoder.CMP_STR, decoder.XTRCT, decoder.EXTU_B, decoder.EXTU_W, decoder.EXTS_B, decoder.EXTS_W,
		decoder.SWAP_B, decoder.SWAP_W, decoder.SHAD, decoder.SHLD, decoder.MUL_L, decoder.MULS_W,
		decoder.MULU_W, decoder.DMULS_L, decoder.DMULU_L, decoder.DIV0S, decoder.DIV1,
	}
	randomUnary = []decoder.Kind{
		decoder.SHLL, decoder.SHAL, decoder.SHLR, decoder.SHAR, decoder.ROTL, decoder.ROTR,
		decoder.ROTCL, decoder.ROTCR, decoder.SHLL2, decoder.SHLL8, decoder.SHLL16,
		decoder.SHLR2, decoder.SHLR8, decoder.SHLR16, decoder.DT, decoder.CMP_PZ, decoder.CMP_PL,
		decoder.MOVT, decoder.STS_MACH, decoder.STS_MACL, decoder.STS_PR,
	}
	randomImm = []decoder.Kind{
		decoder.MOV_IMM, decoder.ADD_IMM,
	}
	randomR0Imm = []decoder.Kind{
		decoder.AND_IMM, decoder.OR_IMM, decoder.XOR_IMM, decoder.TST_IMM, decoder.CMP_EQ_IMM,
	}
	randomBare = []decoder.Kind{
		decoder.CLRT, decoder.SETT, decoder.CLRMAC, decoder.DIV0U, decoder.NOP,
	}
	randomFPU = []decoder.Kind{
		decoder.FADD, decoder.FSUB, decoder.FMUL, decoder.FDIV, decoder.FCMP_EQ, decoder.FCMP_GT, decoder.FMOV,
	}
	randomFPUUnary = []decoder.Kind{
		decoder.FABS, decoder.FNEG, decoder.FLDI0, decoder.FLDI1, decoder.FLDS, decoder.FSTS,
		decoder.FLOAT, decoder.FTRC, decoder.FSQRT,
	}
)

// RandomOptions selects the instruction families in a random program.
type RandomOptions struct {
	Memory bool
	FPU    bool
	Interp bool
}

// Random returns a straight-line program of n random instructions at org
// followed by rts. The prologue points r14 and GBR at DataBase.
func Random(rng *rand.Rand, org uint32, n int, opts RandomOptions) *Builder {
	b := New(org)
	b.Op(decoder.MOV_IMM, 14, 0, DataBase>>24)
	b.Op(decoder.SHLL8, 14, 0, 0)
	b.Op(decoder.ADD_IMM, 14, 0, DataBase>>16&0xFF)
	b.Op(decoder.SHLL16, 14, 0, 0)
	b.Op(decoder.LDC_GBR, 14, 0, 0)
	reg := func() int { return rng.Intn(14) }
	pick := func(ks []decoder.Kind) decoder.Kind { return ks[rng.Intn(len(ks))] }
	for i := 0; i < n; i++ {
		switch f := rng.Intn(10); {
		case f < 4:
			k := pick(randomALU)
			if k == decoder.DIV1 || k == decoder.SHAD || k == decoder.SHLD || k == decoder.DMULS_L || k == decoder.DMULU_L {
				if !opts.Interp {
					k = decoder.ADD
				}
			}
			b.Op(k, reg(), reg(), 0)
		case f < 6:
			b.Op(pick(randomUnary), reg(), 0, 0)
		case f == 6:
			if rng.Intn(2) == 0 {
				b.Op(pick(randomImm), reg(), 0, int32(rng.Intn(256)))
			} else {
				b.Op(pick(randomR0Imm), 0, 0, int32(rng.Intn(256)))
			}
		case f == 7:
			b.Op(pick(randomBare), 0, 0, 0)
		case f == 8 && opts.Memory:
			randomMemory(rng, b, reg)
		case f == 9 && opts.FPU:
			if rng.Intn(2) == 0 {
				b.Op(pick(randomFPU), rng.Intn(16), rng.Intn(16), 0)
			} else {
				b.Op(pick(randomFPUUnary), rng.Intn(16), 0, 0)
			}
		default:
			b.Op(decoder.MOV_IMM, reg(), 0, int32(rng.Intn(256)))
		}
	}
	b.Op(decoder.RTS, 0, 0, 0)
	b.Op(decoder.NOP, 0, 0, 0)
	return b
}

func randomMemory(rng *rand.Rand, b *Builder, reg func() int) {
	disp := int32(rng.Intn(16))
	switch rng.Intn(9) {
	case 0:
		b.Op(decoder.MOVL_STORE_DISP, 14, reg(), disp)
	case 1:
		b.Op(decoder.MOVL_LOAD_DISP, reg(), 14, disp)
	case 2:
		b.Op(decoder.MOVB_STORE_DISP, 0, 14, disp)
	case 3:
		b.Op(decoder.MOVW_LOAD_DISP, 0, 14, disp)
	case 4:
		b.Op(decoder.MOVL_STORE_GBR, 0, 0, int32(rng.Intn(64)))
	case 5:
		b.Op(decoder.MOVL_LOAD_GBR, 0, 0, int32(rng.Intn(64)))
	case 6:
		b.Op(decoder.MOVW_LOAD_PC, reg(), 0, int32(rng.Intn(8)))
	case 7:
		b.Op(decoder.MOVL_LOAD_PC, reg(), 0, int32(rng.Intn(4)))
	default:
		b.Op(decoder.MOVA, 0, 0, int32(rng.Intn(8)))
	}
}
