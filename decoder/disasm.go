package decoder

import (
	"fmt"
	"strings"
)

// Disassemble renders the instruction at pc.
func Disassemble(pc uint32, op uint16) string {
	d := Decode(op)
	tmpl := d.Name
	var sb strings.Builder
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			sb.WriteString(tmpl)
			break
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			sb.WriteString(tmpl)
			break
		}
		sb.WriteString(tmpl[:i])
		sb.WriteString(field(tmpl[i+1:i+j], pc, op))
		tmpl = tmpl[i+j+1:]
	}
	return sb.String()
}

func field(name string, pc uint32, op uint16) string {
	switch name {
	case "n":
		return fmt.Sprint(N(op))
	case "m":
		return fmt.Sprint(M(op))
	case "fn":
		return fmt.Sprintf("fr%d", N(op))
	case "fm":
		return fmt.Sprintf("fr%d", M(op))
	case "dn":
		return fmt.Sprint(N(op) &^ 1)
	case "fvn":
		return fmt.Sprint(N(op) & 0xC)
	case "fvm":
		return fmt.Sprint((N(op) & 3) << 2)
	case "bank":
		return fmt.Sprint(Bank(op))
	case "imm8":
		return fmt.Sprintf("0x%02x", Imm8(op))
	case "simm8":
		return fmt.Sprint(Simm8(op))
	case "disp4b":
		return fmt.Sprint(Imm4(op))
	case "disp4w":
		return fmt.Sprint(Imm4(op) * 2)
	case "disp4l":
		return fmt.Sprint(Imm4(op) * 4)
	case "disp8b":
		return fmt.Sprint(Imm8(op))
	case "disp8w":
		return fmt.Sprint(Imm8(op) * 2)
	case "disp8l":
		return fmt.Sprint(Imm8(op) * 4)
	case "pcw":
		return fmt.Sprintf("0x%08x", PCRelWord(pc, op))
	case "pcl":
		return fmt.Sprintf("0x%08x", PCRelLong(pc, op))
	case "bdisp8":
		return fmt.Sprintf("0x%08x", Disp8Target(pc, op))
	case "bdisp12":
		return fmt.Sprintf("0x%08x", Disp12Target(pc, op))
	case "raw":
		return fmt.Sprintf("0x%04x", op)
	}
	return "{" + name + "}"
}

// DisassembleRange renders consecutive instructions, one per line, each
// prefixed with its address and raw opcode.
func DisassembleRange(start uint32, code []uint16) string {
	var sb strings.Builder
	for i, op := range code {
		pc := start + uint32(i)*2
		fmt.Fprintf(&sb, "%08x: %04x  %s\n", pc, op, Disassemble(pc, op))
	}
	return sb.String()
}
