//go:build !unicorn

package x64

import (
	"errors"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/ir"
)

const SandboxAvailable = false

var errNoSandbox = errors.New("x64: built without the unicorn tag")

func RunSandboxed(b *ir.Block, m ir.Mapper, c *cpu.Context) (int, error) {
	return 0, errNoSandbox
}
