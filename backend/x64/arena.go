//go:build unix

package x64

import (
	"fmt"
	"unsafe"

	"github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/sh4errors"
	"golang.org/x/sys/unix"
)

// codeAlign is the alignment of every block placed in the arena.
const codeAlign = 16

// Arena is an mmap'd region for generated code. It is writable only while a
// block is being copied in and executable otherwise. Space is reclaimed only
// by Reset, which drops every block at once.
type Arena struct {
	mem    []byte
	used   int
	resets int
}

func NewArena(size int) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("x64: arena size %d: %w", size, sh4errors.ErrDBadConfig)
	}
	page := unix.Getpagesize()
	size = (size + page - 1) &^ (page - 1)
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_EXEC, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("x64: mmap arena: %w", err)
	}
	log.Debug(log.Dynarec, "arena mapped", "size", size, "base", fmt.Sprintf("%x", uintptr(unsafe.Pointer(&mem[0]))))
	return &Arena{mem: mem}, nil
}

func (a *Arena) Base() uintptr { return uintptr(unsafe.Pointer(&a.mem[0])) }
func (a *Arena) Size() int     { return len(a.mem) }
func (a *Arena) Used() int     { return a.used }
func (a *Arena) Resets() int   { return a.resets }

func (a *Arena) aligned() int { return (a.used + codeAlign - 1) &^ (codeAlign - 1) }

// Next is the address the next Place will return.
func (a *Arena) Next() uintptr { return a.Base() + uintptr(a.aligned()) }

// Free is the space left for code.
func (a *Arena) Free() int { return len(a.mem) - a.aligned() }

// Place copies code into the arena and returns its address.
func (a *Arena) Place(code []byte) (uintptr, error) {
	off := a.aligned()
	if off+len(code) > len(a.mem) {
		return 0, fmt.Errorf("x64: %d bytes, %d free: %w", len(code), a.Free(), sh4errors.ErrCArenaFull)
	}
	if err := unix.Mprotect(a.mem, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return 0, fmt.Errorf("x64: unseal arena: %w", err)
	}
	copy(a.mem[off:], code)
	if err := unix.Mprotect(a.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return 0, fmt.Errorf("x64: seal arena: %w", err)
	}
	a.used = off + len(code)
	return a.Base() + uintptr(off), nil
}

// Bytes returns n bytes of placed code at addr.
func (a *Arena) Bytes(addr uintptr, n int) []byte {
	off := int(addr - a.Base())
	if off < 0 || off+n > a.used {
		return nil
	}
	return a.mem[off : off+n]
}

// Reset drops every block. Code handed out before must not run again.
func (a *Arena) Reset() {
	a.used = 0
	a.resets++
}

func (a *Arena) Close() error {
	if a.mem == nil {
		return nil
	}
	err := unix.Munmap(a.mem)
	a.mem = nil
	return err
}
