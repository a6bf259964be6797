//go:build !unix

package x64

import (
	"fmt"
	"runtime"

	"github.com/colorfulnotion/sh4core/sh4errors"
)

// Arena is unavailable without mmap.
type Arena struct{}

func NewArena(size int) (*Arena, error) {
	return nil, fmt.Errorf("x64: no executable arena on %s: %w", runtime.GOOS, sh4errors.ErrCNoNativeCalls)
}

func (a *Arena) Base() uintptr                      { return 0 }
func (a *Arena) Size() int                          { return 0 }
func (a *Arena) Used() int                          { return 0 }
func (a *Arena) Resets() int                        { return 0 }
func (a *Arena) Next() uintptr                      { return 0 }
func (a *Arena) Free() int                          { return 0 }
func (a *Arena) Place(code []byte) (uintptr, error) { return 0, sh4errors.ErrCNoNativeCalls }
func (a *Arena) Bytes(addr uintptr, n int) []byte   { return nil }
func (a *Arena) Reset()                             {}
func (a *Arena) Close() error                       { return nil }
