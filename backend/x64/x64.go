// Package x64 compiles IR blocks to x86-64 machine code. Generated code
// keeps the guest context in rdi and allocates IR values to the caller-saved
// registers, spilling into the context when they run out.
package x64

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
	"github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

// DefaultArenaSize is used when New is given a size of zero.
const DefaultArenaSize = 16 << 20

// Backend places generated blocks in an executable arena.
type Backend struct {
	mapper   ir.Mapper
	arena    *Arena
	epilogue uintptr
	gen      int

	Stats Stats
}

// Stats accumulates layout counters across compiled blocks.
type Stats struct {
	Blocks     int
	Bytes      int
	ShortJumps int
	LongJumps  int
	FarJumps   int
	Literals   int
}

// New maps an arena of arenaSize bytes. It fails with ErrCNoNativeCalls when
// the host cannot execute generated code.
func New(m ir.Mapper, arenaSize int) (*Backend, error) {
	if !nativeCalls {
		return nil, fmt.Errorf("x64: %s/%s: %w", runtime.GOOS, runtime.GOARCH, sh4errors.ErrCNoNativeCalls)
	}
	if arenaSize == 0 {
		arenaSize = DefaultArenaSize
	}
	arena, err := NewArena(arenaSize)
	if err != nil {
		return nil, err
	}
	x := &Backend{mapper: m, arena: arena}
	if err := x.placeEpilogue(); err != nil {
		arena.Close()
		return nil, err
	}
	return x, nil
}

func (x *Backend) placeEpilogue() error {
	a := NewAssembler()
	Epilogue(a)
	code, _, err := a.Assemble(x.arena.Next())
	if err != nil {
		return err
	}
	x.epilogue, err = x.arena.Place(code)
	return err
}

func (x *Backend) Name() string { return backend.X64 }

func (x *Backend) Arena() *Arena { return x.arena }

// Reset drops every block and starts the arena over.
func (x *Backend) Reset() {
	x.arena.Reset()
	x.gen++
	if err := x.placeEpilogue(); err != nil {
		panic(fmt.Sprintf("x64: epilogue after reset: %v", err))
	}
	log.Debug(log.Dynarec, "x64 arena reset", "resets", x.arena.Resets())
}

func (x *Backend) Close() error { return x.arena.Close() }

func (x *Backend) Compile(b *ir.Block) (backend.Code, error) {
	if err := ir.Verify(b); err != nil {
		return nil, fmt.Errorf("%w: %w", sh4errors.ErrCInvalidBlock, err)
	}
	code, lay, err := Generate(b, x.mapper, x.arena.Next(), x.epilogue)
	if err != nil {
		return nil, err
	}
	entry, err := x.arena.Place(code)
	if err != nil {
		return nil, err
	}
	x.Stats.Blocks++
	x.Stats.Bytes += len(code)
	x.Stats.ShortJumps += lay.ShortJumps
	x.Stats.LongJumps += lay.LongJumps
	x.Stats.FarJumps += lay.FarJumps
	x.Stats.Literals += lay.Literals
	return &nativeCode{x: x, gen: x.gen, entry: entry, size: len(code), start: b.Start}, nil
}

type nativeCode struct {
	x     *Backend
	gen   int
	entry uintptr
	size  int
	start uint32
}

func (n *nativeCode) Size() int { return n.size }

// Bytes returns the placed machine code.
func (n *nativeCode) Bytes() []byte { return n.x.arena.Bytes(n.entry, n.size) }

func (n *nativeCode) Run(c *cpu.Context) backend.Exit {
	if n.gen != n.x.gen {
		panic(fmt.Sprintf("x64: block %08x run after arena reset", n.start))
	}
	cycles := callBlock(n.entry, uintptr(unsafe.Pointer(c)))
	runtime.KeepAlive(c)
	return backend.Exit{Cycles: int(cycles)}
}

// CodeBytes returns the machine code behind a Code compiled by this package.
func CodeBytes(code backend.Code) ([]byte, bool) {
	n, ok := code.(*nativeCode)
	if !ok {
		return nil, false
	}
	return n.Bytes(), true
}
