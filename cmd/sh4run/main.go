// sh4run loads raw SH4 binaries into a flat RAM map and runs them through
// the block compiler, with tools for inspecting the block cache and checking
// backends against the interpreter.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/colorfulnotion/sh4core/driver"
	log "github.com/colorfulnotion/sh4core/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

type globalFlags struct {
	logLevel     string
	debugModules string
	quietModules string
	configPath   string
	otlpEndpoint string
	cfg          driver.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{cfg: driver.DefaultConfig()}
	var shutdown func(context.Context) error

	rootCmd := &cobra.Command{
		Use:          "sh4run",
		Short:        "SH4 block compiler test harness",
		Version:      fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildTime),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.InitLogger(g.logLevel); err != nil {
				return err
			}
			log.EnableModules(g.debugModules)
			log.DisableModules(g.quietModules)
			if err := g.loadConfig(cmd); err != nil {
				return err
			}
			var err error
			shutdown, err = initTracing(cmd.Context(), g.otlpEndpoint)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(context.Background())
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error, crit)")
	pf.StringVar(&g.debugModules, "debug", "", "comma separated modules to trace, or \"all\"")
	pf.StringVar(&g.quietModules, "quiet", "", "comma separated modules to leave out of --debug")
	pf.StringVar(&g.configPath, "config", "", "JSON driver configuration")
	pf.StringVar(&g.otlpEndpoint, "otlp", "", "OTLP/HTTP endpoint for compile spans (host:port)")
	pf.StringVar(&g.cfg.Backend, "backend", g.cfg.Backend, "threaded, x64 or none")
	pf.IntVar(&g.cfg.CompileThreshold, "threshold", g.cfg.CompileThreshold, "visits before a block is compiled")
	pf.IntVar(&g.cfg.MaxBlockOps, "max-block-ops", g.cfg.MaxBlockOps, "guest instructions per block")
	pf.IntVar(&g.cfg.CacheCapacity, "cache", g.cfg.CacheCapacity, "block cache capacity")
	pf.IntVar(&g.cfg.ArenaSize, "arena", g.cfg.ArenaSize, "x64 code arena size in bytes")
	pf.BoolVar(&g.cfg.Optimize, "optimize", g.cfg.Optimize, "run the IR optimizer")
	pf.BoolVar(&g.cfg.BlockCheck, "block-check", g.cfg.BlockCheck, "hash guest code before every compiled run")
	pf.BoolVar(&g.cfg.Debug, "check", g.cfg.Debug, "check optimized blocks against the interpreter")
	pf.IntVar(&g.cfg.SleepCycles, "sleep-cycles", g.cfg.SleepCycles, "cycles charged per step while sleeping")

	rootCmd.AddCommand(
		newRunCmd(g),
		newDisasmCmd(g),
		newBlocksCmd(g),
		newBenchCmd(g),
		newDebugCmd(g),
		newServeCmd(g),
		newVerifyCmd(g),
	)
	return rootCmd
}

// loadConfig reads --config and lets explicitly set flags override it.
func (g *globalFlags) loadConfig(cmd *cobra.Command) error {
	if g.configPath == "" {
		return g.cfg.Validate()
	}
	fileCfg, err := driver.LoadConfig(g.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	override := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	override("backend", func() { g.cfg.Backend = fileCfg.Backend })
	override("threshold", func() { g.cfg.CompileThreshold = fileCfg.CompileThreshold })
	override("max-block-ops", func() { g.cfg.MaxBlockOps = fileCfg.MaxBlockOps })
	override("cache", func() { g.cfg.CacheCapacity = fileCfg.CacheCapacity })
	override("arena", func() { g.cfg.ArenaSize = fileCfg.ArenaSize })
	override("optimize", func() { g.cfg.Optimize = fileCfg.Optimize })
	override("block-check", func() { g.cfg.BlockCheck = fileCfg.BlockCheck })
	override("check", func() { g.cfg.Debug = fileCfg.Debug })
	override("sleep-cycles", func() { g.cfg.SleepCycles = fileCfg.SleepCycles })
	return g.cfg.Validate()
}

func initTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	log.Info(log.Driver, "tracing enabled", "endpoint", endpoint)
	return tp.Shutdown, nil
}
