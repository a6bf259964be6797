//go:build unicorn

package x64

import (
	"fmt"
	"unsafe"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/log"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
)

const (
	sandboxPage  = 0x1000
	sandboxCode  = 0x10000000
	sandboxStack = 0x20000000
	sandboxStop  = 0x30000000
	stackSize    = 0x10000
)

// SandboxAvailable reports whether this build can emulate generated code.
const SandboxAvailable = true

type span struct {
	host []byte
}

// RunSandboxed generates b with an inlined epilogue and runs it under the
// unicorn emulator instead of the host CPU. The context and every region the
// block touches directly are mirrored into the emulator at their host
// addresses and the bytes the code writes are copied back. It returns the
// block cycles.
func RunSandboxed(b *ir.Block, m ir.Mapper, c *cpu.Context) (int, error) {
	code, _, err := Generate(b, m, sandboxCode, 0)
	if err != nil {
		return 0, err
	}
	mu, err := uc.NewUnicorn(uc.ARCH_X86, uc.MODE_64)
	if err != nil {
		return 0, fmt.Errorf("create unicorn: %w", err)
	}
	defer mu.Close()

	mapped := make(map[uint64]bool)
	mapRange := func(addr, size uint64) error {
		for p := addr &^ (sandboxPage - 1); p < addr+size; p += sandboxPage {
			if mapped[p] {
				continue
			}
			if err := mu.MemMap(p, sandboxPage); err != nil {
				return fmt.Errorf("map %x: %w", p, err)
			}
			mapped[p] = true
		}
		return nil
	}

	spans := []span{{host: unsafe.Slice((*byte)(unsafe.Pointer(c)), unsafe.Sizeof(*c))}}
	seen := make(map[int]bool)
	for i := range b.Ops {
		o := &b.Ops[i]
		if (!o.Code.IsLoad() && !o.Code.IsStore()) || o.Mem.Class != ir.Direct || seen[o.Mem.Region] {
			continue
		}
		seen[o.Mem.Region] = true
		if r := m.Region(o.Mem.Region); r != nil && len(r.Data()) > 0 {
			spans = append(spans, span{host: r.Data()})
		}
	}
	for _, s := range spans {
		addr := uint64(uintptr(unsafe.Pointer(&s.host[0])))
		if err := mapRange(addr, uint64(len(s.host))); err != nil {
			return 0, err
		}
		if err := mu.MemWrite(addr, s.host); err != nil {
			return 0, fmt.Errorf("mirror %x: %w", addr, err)
		}
	}

	codeSize := (uint64(len(code)) + sandboxPage - 1) &^ (sandboxPage - 1)
	if err := mu.MemMap(sandboxCode, codeSize); err != nil {
		return 0, fmt.Errorf("map code: %w", err)
	}
	if err := mu.MemWrite(sandboxCode, code); err != nil {
		return 0, fmt.Errorf("write code: %w", err)
	}
	if err := mu.MemMap(sandboxStack-stackSize, stackSize); err != nil {
		return 0, fmt.Errorf("map stack: %w", err)
	}
	if err := mu.MemMap(sandboxStop, sandboxPage); err != nil {
		return 0, fmt.Errorf("map stop page: %w", err)
	}
	// The block returns into the stop page.
	rsp := uint64(sandboxStack - 8)
	ret := make([]byte, 8)
	for i := range ret {
		ret[i] = byte(uint64(sandboxStop) >> (8 * i))
	}
	if err := mu.MemWrite(rsp, ret); err != nil {
		return 0, fmt.Errorf("push return: %w", err)
	}
	if err := mu.RegWrite(uc.X86_REG_RSP, rsp); err != nil {
		return 0, fmt.Errorf("set rsp: %w", err)
	}
	if err := mu.RegWrite(uc.X86_REG_RDI, uint64(uintptr(unsafe.Pointer(c)))); err != nil {
		return 0, fmt.Errorf("set rdi: %w", err)
	}

	type write struct {
		addr uint64
		size int
	}
	var writes []write
	if _, err := mu.HookAdd(uc.HOOK_MEM_WRITE, func(mu uc.Unicorn, access int, addr uint64, size int, value int64) {
		writes = append(writes, write{addr, size})
	}, 1, 0); err != nil {
		return 0, fmt.Errorf("add write hook: %w", err)
	}
	if _, err := mu.HookAdd(uc.HOOK_MEM_INVALID, func(mu uc.Unicorn, access int, addr uint64, size int, value int64) bool {
		log.Warn(log.Dynarec, "sandbox invalid access", "access", access, "addr", fmt.Sprintf("%x", addr), "size", size)
		return false
	}, 1, 0); err != nil {
		return 0, fmt.Errorf("add invalid hook: %w", err)
	}

	if err := mu.Start(sandboxCode, sandboxStop); err != nil {
		return 0, fmt.Errorf("block %08x: emulation failed: %w", b.Start, err)
	}
	cycles, err := mu.RegRead(uc.X86_REG_RAX)
	if err != nil {
		return 0, fmt.Errorf("read rax: %w", err)
	}

	for _, w := range writes {
		for _, s := range spans {
			base := uint64(uintptr(unsafe.Pointer(&s.host[0])))
			if w.addr < base || w.addr+uint64(w.size) > base+uint64(len(s.host)) {
				continue
			}
			data, err := mu.MemRead(w.addr, uint64(w.size))
			if err != nil {
				return 0, fmt.Errorf("read back %x: %w", w.addr, err)
			}
			copy(s.host[w.addr-base:], data)
		}
	}
	return int(uint32(cycles)), nil
}
