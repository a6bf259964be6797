package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colorfulnotion/sh4core/blockcache"
	"github.com/colorfulnotion/sh4core/driver"
	log "github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/colorfulnotion/sh4core/statestore"
	"github.com/spf13/cobra"
)

type runReport struct {
	Exited   bool              `json:"exited"`
	Cycles   uint64            `json:"cycles"`
	Elapsed  string            `json:"elapsed"`
	Driver   driver.Stats      `json:"driver"`
	Cache    blockcache.Stats  `json:"cache"`
	Context  string            `json:"context"`
	Frames   []uint64          `json:"frames,omitempty"`
	Top      []blockcache.Info `json:"top,omitempty"`
	Rollback *uint64           `json:"rollback,omitempty"`
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		img        imageFlags
		maxCycles  uint64
		stateDB    string
		checkpoint uint64
		rollback   int64
		top        int
	)
	cmd := &cobra.Command{
		Use:   "run [binary]",
		Short: "Run a guest program until it returns, is interrupted or runs out of cycles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, code, err := img.image(args)
			if err != nil {
				return err
			}
			var store *statestore.Store
			if stateDB != "" || checkpoint > 0 {
				if store, err = statestore.Open(stateDB); err != nil {
					return err
				}
				defer store.Close()
			}

			var m *machine
			var frame, sinceCheckpoint uint64
			onCycles := func(n int) {
				if m.exited() {
					m.Stop()
				}
				if store == nil || checkpoint == 0 {
					return
				}
				if sinceCheckpoint += uint64(n); sinceCheckpoint >= checkpoint {
					sinceCheckpoint = 0
					if _, err := store.Checkpoint(m, frame); err != nil {
						log.Error(log.StateStore, "checkpoint", "frame", frame, "err", err)
					}
					frame++
				}
			}
			m, err = newMachine(g.cfg, org, code, driver.WithCycleCallback(onCycles))
			if err != nil {
				return err
			}
			defer m.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			start := time.Now()
			cycles, err := m.Run(ctx, maxCycles)
			if err != nil && !errors.Is(err, sh4errors.ErrDStopped) {
				return err
			}

			rep := runReport{
				Exited:  m.exited(),
				Cycles:  cycles,
				Elapsed: time.Since(start).String(),
				Driver:  m.Stats(),
				Cache:   m.Cache().Stats(),
				Context: m.ctx.String(),
				Top:     m.Cache().Top(top),
			}
			if store != nil {
				if rollback >= 0 {
					f := uint64(rollback)
					if err := store.Rollback(m, f); err != nil {
						return err
					}
					rep.Rollback = &f
					rep.Context = m.ctx.String()
				}
				if rep.Frames, err = store.Frames(); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			return nil
		},
	}
	img.register(cmd)
	cmd.Flags().Uint64Var(&maxCycles, "cycles", 0, "stop after this many cycles (0 runs to exit)")
	cmd.Flags().StringVar(&stateDB, "state-db", "", "leveldb directory for save-state history (empty keeps it in memory)")
	cmd.Flags().Uint64Var(&checkpoint, "checkpoint", 0, "record a save state every N cycles")
	cmd.Flags().Int64Var(&rollback, "rollback", -1, "after the run, roll back to this frame")
	cmd.Flags().IntVar(&top, "top", 5, "report the N blocks with the most cycles")
	return cmd
}
