package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/colorfulnotion/sh4core/decoder"
	"github.com/colorfulnotion/sh4core/statestore"
)

const debugHelp = `commands:
  s [n]             step n blocks
  c [cycles]        continue until exit or for cycles
  u <addr>          step until PC == addr
  r                 registers
  d [addr] [n]      disassemble n instructions (default PC, 8)
  x <addr> [n]      dump n bytes
  irq <lvl> <evt>   raise an interrupt
  save <frame>      record a save state
  load <frame>      roll back to a save state
  blocks            block cache tree
  stats             driver and cache counters
  q                 quit`

func newDebugCmd(g *globalFlags) *cobra.Command {
	var (
		img     imageFlags
		history string
	)
	cmd := &cobra.Command{
		Use:   "debug [binary]",
		Short: "Interactive stepping console",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, code, err := img.image(args)
			if err != nil {
				return err
			}
			m, err := newMachine(g.cfg, org, code)
			if err != nil {
				return err
			}
			defer m.Close()
			store, err := statestore.Open("")
			if err != nil {
				return err
			}
			defer store.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "sh4> ",
				HistoryFile: history,
			})
			if err != nil {
				return fmt.Errorf("start readline: %w", err)
			}
			defer rl.Close()

			con := &console{m: m, store: store, out: rl.Stdout()}
			fmt.Fprintln(con.out, debugHelp)
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				quit, err := con.exec(strings.Fields(line))
				if err != nil {
					fmt.Fprintln(con.out, "error:", err)
				}
				if quit {
					return nil
				}
			}
		},
	}
	img.register(cmd)
	cmd.Flags().StringVar(&history, "history", "/tmp/sh4run_history.txt", "readline history file")
	return cmd
}

type console struct {
	m     *machine
	store *statestore.Store
	out   io.Writer
}

func parseNum(args []string, i int, def uint64) (uint64, error) {
	if len(args) <= i {
		return def, nil
	}
	return strconv.ParseUint(args[i], 0, 64)
}

func (con *console) exec(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	m := con.m
	c := m.ctx
	switch args[0] {
	case "q", "quit", "exit":
		return true, nil
	case "h", "help":
		fmt.Fprintln(con.out, debugHelp)
	case "s", "step":
		n, err := parseNum(args, 1, 1)
		if err != nil {
			return false, err
		}
		var cycles int
		for i := uint64(0); i < n && !m.exited(); i++ {
			cycles += m.Step()
		}
		fmt.Fprintf(con.out, "pc %08x  +%d cycles\n", c.PC, cycles)
	case "c", "cont":
		n, err := parseNum(args, 1, 0)
		if err != nil {
			return false, err
		}
		cycles := m.runToExit(n)
		fmt.Fprintf(con.out, "pc %08x  +%d cycles  exited=%v\n", c.PC, cycles, m.exited())
	case "u", "until":
		if len(args) < 2 {
			return false, fmt.Errorf("until needs an address")
		}
		addr, err := parseNum(args, 1, 0)
		if err != nil {
			return false, err
		}
		steps := 0
		for c.PC != uint32(addr) && !m.exited() && steps < 1_000_000 {
			m.Step()
			steps++
		}
		fmt.Fprintf(con.out, "pc %08x after %d steps\n", c.PC, steps)
	case "r", "regs":
		fmt.Fprint(con.out, c.String())
	case "d", "dis":
		addr, err := parseNum(args, 1, uint64(c.PC))
		if err != nil {
			return false, err
		}
		n, err := parseNum(args, 2, 8)
		if err != nil {
			return false, err
		}
		words := make([]uint16, n)
		for i := range words {
			words[i] = m.bus.Read16(uint32(addr) + uint32(i)*2)
		}
		fmt.Fprint(con.out, decoder.DisassembleRange(uint32(addr), words))
	case "x", "mem":
		if len(args) < 2 {
			return false, fmt.Errorf("mem needs an address")
		}
		addr, err := parseNum(args, 1, 0)
		if err != nil {
			return false, err
		}
		n, err := parseNum(args, 2, 64)
		if err != nil {
			return false, err
		}
		data := m.bus.ReadBytes(uint32(addr), int(n))
		for off := 0; off < len(data); off += 16 {
			end := min(off+16, len(data))
			fmt.Fprintf(con.out, "%08x: % x\n", uint32(addr)+uint32(off), data[off:end])
		}
	case "irq":
		if len(args) < 3 {
			return false, fmt.Errorf("irq needs a level and an event code")
		}
		lvl, err := parseNum(args, 1, 0)
		if err != nil {
			return false, err
		}
		evt, err := parseNum(args, 2, 0)
		if err != nil {
			return false, err
		}
		return false, m.RaiseInterrupt(int(lvl), uint32(evt))
	case "save":
		frame, err := parseNum(args, 1, 0)
		if err != nil {
			return false, err
		}
		d, err := con.store.Checkpoint(m, frame)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(con.out, "frame %d digest %s\n", frame, d)
	case "load":
		frame, err := parseNum(args, 1, 0)
		if err != nil {
			return false, err
		}
		if err := con.store.Rollback(m, frame); err != nil {
			return false, err
		}
		fmt.Fprintf(con.out, "pc %08x\n", c.PC)
	case "blocks":
		fmt.Fprintln(con.out, m.Cache().Tree().String())
	case "stats":
		enc := json.NewEncoder(con.out)
		enc.SetIndent("", "  ")
		return false, enc.Encode(map[string]any{"driver": m.Stats(), "cache": m.Cache().Stats()})
	default:
		return false, fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return false, nil
}
