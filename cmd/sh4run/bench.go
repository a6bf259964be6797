package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/backend/x64"
	"github.com/colorfulnotion/sh4core/driver"
	log "github.com/colorfulnotion/sh4core/log"
)

// benchCycleLimit bounds one run of a program that never returns.
const benchCycleLimit = 50_000_000

type benchResult struct {
	backend string
	cycles  uint64
	insns   uint64
	elapsed time.Duration
}

// mips is guest instructions retired per host microsecond.
func (r benchResult) mips() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.insns) / float64(r.elapsed.Microseconds()+1)
}

func newBenchCmd(g *globalFlags) *cobra.Command {
	var (
		img      imageFlags
		backends string
		repeat   int
		out      string
	)
	cmd := &cobra.Command{
		Use:   "bench [binary]",
		Short: "Time a program on each backend and chart the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, code, err := img.image(args)
			if err != nil {
				return err
			}
			var results []benchResult
			for _, name := range strings.Split(backends, ",") {
				name = strings.TrimSpace(name)
				if name == backend.X64 && !x64Available() {
					log.Warn(log.Driver, "skipping x64 backend on this host")
					continue
				}
				cfg := g.cfg
				cfg.Backend = name
				r, err := bench(cfg, org, code, repeat)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				results = append(results, r)
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %12d cycles %12d insns %12s %8.2f MIPS\n", r.backend, r.cycles, r.insns, r.elapsed, r.mips())
			}
			if out == "" {
				return nil
			}
			return renderBench(out, results)
		},
	}
	img.register(cmd)
	cmd.Flags().StringVar(&backends, "backends", "none,threaded,x64", "comma separated backends to time")
	cmd.Flags().IntVar(&repeat, "repeat", 100, "runs of the program per backend")
	cmd.Flags().StringVar(&out, "out", "", "write an HTML chart to this file")
	return cmd
}

func x64Available() bool {
	x, err := x64.New(nil, 4096)
	if err != nil {
		return false
	}
	x.Close()
	return true
}

// bench runs the program repeat times on one machine so later runs hit a warm cache.
func bench(cfg driver.Config, org uint32, code []byte, repeat int) (benchResult, error) {
	m, err := newMachine(cfg, org, code)
	if err != nil {
		return benchResult{}, err
	}
	defer m.Close()
	r := benchResult{backend: m.BackendName()}
	start := time.Now()
	for i := 0; i < repeat; i++ {
		m.ctx.PC, m.ctx.PR = org, exitPC
		r.cycles += m.runToExit(benchCycleLimit)
	}
	r.elapsed = time.Since(start)
	st := m.Stats()
	r.insns = st.InterpInsns + st.NativeInsns
	return r, nil
}

func renderBench(path string, results []benchResult) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "sh4run bench", Subtitle: "guest MIPS per backend"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	names := make([]string, 0, len(results))
	mips := make([]opts.BarData, 0, len(results))
	for _, r := range results {
		names = append(names, r.backend)
		mips = append(mips, opts.BarData{Value: r.mips()})
	}
	bar.SetXAxis(names).AddSeries("MIPS", mips)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bar.Render(f)
}
