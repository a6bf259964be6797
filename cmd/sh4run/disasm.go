package main

import (
	"encoding/binary"
	"fmt"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/backend/x64"
	"github.com/colorfulnotion/sh4core/blockcache"
	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/spf13/cobra"
)

func newDisasmCmd(g *globalFlags) *cobra.Command {
	var (
		img       imageFlags
		count     int
		host      bool
		maxCycles uint64
	)
	cmd := &cobra.Command{
		Use:   "disasm [binary]",
		Short: "Disassemble guest code, or the x64 code generated for it with --host",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, code, err := img.image(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !host {
				words := make([]uint16, len(code)/2)
				for i := range words {
					words[i] = binary.LittleEndian.Uint16(code[i*2:])
				}
				if count > 0 && count < len(words) {
					words = words[:count]
				}
				fmt.Fprint(out, decoder.DisassembleRange(org, words))
				return nil
			}

			cfg := g.cfg
			cfg.Backend = backend.X64
			m, err := newMachine(cfg, org, code)
			if err != nil {
				return err
			}
			defer m.Close()
			m.runToExit(maxCycles)
			for _, info := range m.Cache().Snapshot() {
				e := m.Cache().Peek(blockcache.Key{Addr: info.Addr, Mode: modeOf(info.Mode)})
				if e == nil || e.Code == nil {
					fmt.Fprintf(out, "; %08x %s: interpreted %s\n\n", info.Addr, info.Mode, info.Err)
					continue
				}
				raw, ok := x64.CodeBytes(e.Code)
				if !ok {
					continue
				}
				fmt.Fprintf(out, "; %08x-%08x %s: %d guest insns, %d bytes\n", e.Block.Start, e.Block.End, info.Mode, e.Block.Count, len(raw))
				fmt.Fprintln(out, x64.Disassemble(raw, 0))
			}
			return nil
		},
	}
	img.register(cmd)
	cmd.Flags().IntVar(&count, "count", 0, "instructions to print (0 prints all)")
	cmd.Flags().BoolVar(&host, "host", false, "run the program on the x64 backend and print the generated code")
	cmd.Flags().Uint64Var(&maxCycles, "cycles", 1_000_000, "cycle limit for --host")
	return cmd
}
