package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/driver"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4asm"
	"github.com/spf13/cobra"
)

const (
	ramBase = 0x0C000000
	ramSize = 16 << 20

	defaultOrg = 0x8C010000
	// exitPC is where PR points on entry; returning to it ends the program.
	exitPC = 0x8CFFFF00
)

// imageFlags selects the guest program: a raw binary, or a random program
// when --random is given.
type imageFlags struct {
	org    string
	random int64
	length int
	memory bool
	fpu    bool
}

func (f *imageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.org, "org", fmt.Sprintf("%#x", defaultOrg), "load and entry address")
	cmd.Flags().Int64Var(&f.random, "random", -1, "run a random program from this seed instead of a file")
	cmd.Flags().IntVar(&f.length, "length", 200, "instructions in a random program")
	cmd.Flags().BoolVar(&f.memory, "mem", true, "random programs use loads and stores")
	cmd.Flags().BoolVar(&f.fpu, "fpu", true, "random programs use the FPU")
}

func (f *imageFlags) origin() (uint32, error) {
	v, err := strconv.ParseUint(f.org, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("--org %q: %w", f.org, err)
	}
	return uint32(v), nil
}

func (f *imageFlags) image(args []string) (uint32, []byte, error) {
	org, err := f.origin()
	if err != nil {
		return 0, nil, err
	}
	if f.random >= 0 {
		rng := rand.New(rand.NewSource(f.random))
		prog := sh4asm.Random(rng, org, f.length, sh4asm.RandomOptions{Memory: f.memory, FPU: f.fpu, Interp: true})
		code, err := prog.Bytes()
		return org, code, err
	}
	if len(args) != 1 {
		return 0, nil, fmt.Errorf("expected one binary file, or --random")
	}
	code, err := os.ReadFile(args[0])
	if err != nil {
		return 0, nil, err
	}
	return org, code, nil
}

type machine struct {
	*driver.Driver
	ctx *cpu.Context
	bus *memory.Map
	org uint32
}

func newMachine(cfg driver.Config, org uint32, code []byte, opts ...driver.Option) (*machine, error) {
	bus := memory.NewMap()
	if _, err := bus.AddRAM("ram", ramBase, ramSize, 0); err != nil {
		return nil, err
	}
	bus.LoadBytes(org, code)
	c := cpu.NewContext()
	c.PC = org
	c.PR = exitPC
	c.SetSR(cpu.SR_MD)
	c.SetFPSCR(0)
	d, err := driver.New(c, bus, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &machine{Driver: d, ctx: c, bus: bus, org: org}, nil
}

func (m *machine) exited() bool { return m.ctx.PC == exitPC }

// runToExit steps until the program returns or maxCycles elapse.
func (m *machine) runToExit(maxCycles uint64) uint64 {
	var done uint64
	for !m.exited() && (maxCycles == 0 || done < maxCycles) {
		done += uint64(m.Step())
	}
	return done
}

// modeOf parses cpu.Mode.String.
func modeOf(s string) cpu.Mode {
	var pr, sz uint8
	fmt.Sscanf(s, "pr%d/sz%d", &pr, &sz)
	return cpu.Mode(pr | sz<<1)
}
