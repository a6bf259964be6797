package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/nsf/jsondiff"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/backend/x64"
	"github.com/colorfulnotion/sh4core/cpu"
	"github.com/colorfulnotion/sh4core/interpreter"
	"github.com/colorfulnotion/sh4core/ir"
	log "github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/memory"
	"github.com/colorfulnotion/sh4core/sh4asm"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

const verifyCycleLimit = 10_000_000

type mismatch struct {
	seed int64
	diff string
}

func newVerifyCmd(g *globalFlags) *cobra.Command {
	var (
		seeds   int
		first   int64
		length  int
		jobs    int
		sandbox bool
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the configured backend against the interpreter on random programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.cfg.Backend == backend.None {
				return fmt.Errorf("verify needs a compiling backend: %w", sh4errors.ErrDBadConfig)
			}
			if sandbox && !x64.SandboxAvailable {
				return fmt.Errorf("--sandbox: rebuild with -tags unicorn")
			}
			var (
				mu     sync.Mutex
				failed []mismatch
			)
			eg := new(errgroup.Group)
			eg.SetLimit(jobs)
			for i := 0; i < seeds; i++ {
				seed := first + int64(i)
				eg.Go(func() error {
					check := verifySeed
					if sandbox {
						check = verifySandbox
					}
					diff, err := check(g, seed, length)
					if err != nil {
						return fmt.Errorf("seed %d: %w", seed, err)
					}
					if diff != "" {
						mu.Lock()
						failed = append(failed, mismatch{seed: seed, diff: diff})
						mu.Unlock()
					}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range failed {
				fmt.Fprintf(out, "seed %d differs:\n%s\n", f.seed, f.diff)
			}
			fmt.Fprintf(out, "%d/%d seeds match\n", seeds-len(failed), seeds)
			if len(failed) > 0 {
				return fmt.Errorf("%d mismatches", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&seeds, "seeds", 200, "random programs to check")
	cmd.Flags().Int64Var(&first, "first", 1, "first seed")
	cmd.Flags().IntVar(&length, "length", 200, "instructions per program")
	cmd.Flags().IntVar(&jobs, "jobs", runtime.NumCPU(), "parallel checks")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "run the first block of each program under unicorn instead of natively")
	return cmd
}

func randomProgram(seed int64, length int) (*rand.Rand, []byte, error) {
	rng := rand.New(rand.NewSource(seed))
	code, err := sh4asm.Random(rng, defaultOrg, length, sh4asm.RandomOptions{Memory: true, FPU: true, Interp: true}).Bytes()
	return rng, code, err
}

func seedContext(c *cpu.Context, rng *rand.Rand) {
	for i := 0; i < 14; i++ {
		c.R[i] = rng.Uint32()
		c.FR[i] = rng.Uint32()
	}
	c.MACH, c.MACL, c.FPUL = rng.Uint32(), rng.Uint32(), rng.Uint32()
}

// compareJSON renders both contexts as JSON and returns the jsondiff output,
// or "" when they match. Spill slots are backend scratch and ignored.
func compareJSON(want, got *cpu.Context, wantMem, gotMem []byte) (string, error) {
	type view struct {
		Ctx cpu.Context `json:"ctx"`
		Mem []byte      `json:"mem"`
	}
	a, b := view{Ctx: *want, Mem: wantMem}, view{Ctx: *got, Mem: gotMem}
	a.Ctx.Spill, b.Ctx.Spill = [cpu.SpillSlots]uint64{}, [cpu.SpillSlots]uint64{}
	ja, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	opts := jsondiff.DefaultConsoleOptions()
	switch d, text := jsondiff.Compare(ja, jb, &opts); d {
	case jsondiff.FullMatch:
		return "", nil
	case jsondiff.NoMatch, jsondiff.SupersetMatch:
		return text, nil
	default:
		return "", fmt.Errorf("compare: %s", d)
	}
}

func verifySeed(g *globalFlags, seed int64, length int) (string, error) {
	rng, code, err := randomProgram(seed, length)
	if err != nil {
		return "", err
	}
	refCfg := g.cfg
	refCfg.Backend = backend.None
	ref, err := newMachine(refCfg, defaultOrg, code)
	if err != nil {
		return "", err
	}
	defer ref.Close()
	m, err := newMachine(g.cfg, defaultOrg, code)
	if err != nil {
		return "", err
	}
	defer m.Close()

	seedContext(ref.ctx, rng)
	*m.ctx = *ref.ctx
	ref.runToExit(verifyCycleLimit)
	m.runToExit(verifyCycleLimit)
	diff, err := compareJSON(ref.ctx, m.ctx, ref.bus.ReadBytes(sh4asm.DataBase, 0x100), m.bus.ReadBytes(sh4asm.DataBase, 0x100))
	if err != nil || diff != "" {
		return diff, err
	}
	if want, got := ref.Stats().Cycles, m.Stats().Cycles; want != got {
		return fmt.Sprintf("cycles %d != %d", want, got), nil
	}
	log.Debug(log.Driver, "seed ok", "seed", seed, "native", m.Stats().NativeRuns)
	return "", nil
}

func sandboxBus(code []byte) (*memory.Map, error) {
	bus := memory.NewMap()
	if _, err := bus.AddRAM("ram", ramBase, ramSize, 0); err != nil {
		return nil, err
	}
	bus.LoadBytes(defaultOrg, code)
	return bus, nil
}

// verifySandbox compiles the entry block of each program and runs it under
// unicorn, checking it against ir.Eval of the same block.
func verifySandbox(g *globalFlags, seed int64, length int) (string, error) {
	rng, code, err := randomProgram(seed, length)
	if err != nil {
		return "", err
	}
	busA, err := sandboxBus(code)
	if err != nil {
		return "", err
	}
	busB, err := sandboxBus(code)
	if err != nil {
		return "", err
	}
	ca := cpu.NewContext()
	ca.PC, ca.PR = defaultOrg, exitPC
	ca.SetSR(cpu.SR_MD)
	ca.SetFPSCR(0)
	seedContext(ca, rng)
	cb := *ca

	em := ir.NewEmitter(busA, ir.Config{MaxBlockOps: g.cfg.MaxBlockOps})
	b, err := em.EmitBlock(ca.Mode(), ca.PC)
	if err != nil {
		return "", err
	}
	if _, err := ir.Resolve(b, busA); err != nil {
		return "", err
	}
	if g.cfg.Optimize {
		if _, err := ir.Optimize(b, ir.DefaultOptions()); err != nil {
			return "", err
		}
	}
	want := ir.Eval(b, ca, busA, interpreter.New(busA))
	got, err := x64.RunSandboxed(b, busB, &cb)
	if errors.Is(err, sh4errors.ErrCUnsupportedOp) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	diff, err := compareJSON(ca, &cb, busA.ReadBytes(sh4asm.DataBase, 0x100), busB.ReadBytes(sh4asm.DataBase, 0x100))
	if err != nil || diff != "" {
		return diff, err
	}
	if want != got {
		return fmt.Sprintf("cycles %d != %d", want, got), nil
	}
	return "", nil
}
