package x64

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Disassemble lists code one instruction per line with offsets relative to
// base. Bytes that do not decode are shown as db.
func Disassemble(code []byte, base uintptr) string {
	var sb strings.Builder
	offset := 0
	for offset < len(code) {
		inst, err := x86asm.Decode(code[offset:], 64)
		if err != nil || inst.Len == 0 {
			fmt.Fprintf(&sb, "%08x: %-24s db 0x%02x\n", uint64(base)+uint64(offset), fmt.Sprintf("%02x", code[offset]), code[offset])
			offset++
			continue
		}
		hexBytes := make([]string, 0, inst.Len)
		for i := 0; i < inst.Len; i++ {
			hexBytes = append(hexBytes, fmt.Sprintf("%02x", code[offset+i]))
		}
		fmt.Fprintf(&sb, "%08x: %-24s %s\n", uint64(base)+uint64(offset), strings.Join(hexBytes, " "), x86asm.IntelSyntax(inst, uint64(base)+uint64(offset), nil))
		offset += inst.Len
	}
	return sb.String()
}

// Instructions decodes code and returns the instruction mnemonics in order.
func Instructions(code []byte) []string {
	var out []string
	for offset := 0; offset < len(code); {
		inst, err := x86asm.Decode(code[offset:], 64)
		if err != nil || inst.Len == 0 {
			out = append(out, "db")
			offset++
			continue
		}
		out = append(out, strings.ToLower(inst.Op.String()))
		offset += inst.Len
	}
	return out
}
