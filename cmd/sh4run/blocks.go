package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newBlocksCmd(g *globalFlags) *cobra.Command {
	var (
		img       imageFlags
		maxCycles uint64
		asJSON    bool
		top       int
	)
	cmd := &cobra.Command{
		Use:   "blocks [binary]",
		Short: "Run a program and dump the block cache map",
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
			m.runToExit(maxCycles)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(m.Cache().Snapshot())
			}
			fmt.Fprintln(out, m.Cache().Tree().String())
			if top > 0 {
				fmt.Fprintf(out, "top %d blocks by cycles:\n", top)
				for i, info := range m.Cache().Top(top) {
					fmt.Fprintf(out, "%3d  %08x %-8s runs %-8d cycles %-10d %s\n", i+1, info.Addr, info.Mode, info.Runs, info.Cycles, info.State)
				}
			}
			return nil
		},
	}
	img.register(cmd)
	cmd.Flags().Uint64Var(&maxCycles, "cycles", 10_000_000, "cycle limit")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cache snapshot as JSON")
	cmd.Flags().IntVar(&top, "top", 10, "list the N hottest blocks")
	return cmd
}
