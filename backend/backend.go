// Package backend turns optimized IR blocks into runnable host code.
package backend

import (
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
)

// Exit describes how a run of compiled code ended.
type Exit struct {
	// Cycles is the issue cycles of the instructions that completed.
	Cycles int
	// Early is set when an interpreted instruction redirected the PC before
	// the end of the block.
	Early bool
}

// Code is one compiled block. A Code is immutable once returned by Compile
// and stays valid until the backend is Reset.
type Code interface {
	Run(c *cpu.Context) Exit
	// Size is the host footprint in bytes, or the number of steps for
	// backends without machine code.
	Size() int
}

// Backend compiles blocks. Compile may return sh4errors.ErrCUnsupportedOp,
// ErrCArenaFull or ErrCInvalidBlock; the caller interprets such blocks.
type Backend interface {
	Name() string
	Compile(b *ir.Block) (Code, error)
	// Reset drops every Code handed out so far.
	Reset()
}

// Names of the built in backends.
const (
	Threaded = "threaded"
	X64      = "x64"
	None     = "none"
)
