package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/colorfulnotion/sh4core/blockcache"
	"github.com/colorfulnotion/sh4core/driver"
	log "github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/sh4errors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// cacheFrame is one message pushed to websocket clients.
type cacheFrame struct {
	Time   time.Time         `json:"time"`
	Stats  blockcache.Stats  `json:"stats"`
	Blocks []blockcache.Info `json:"blocks"`
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		img      imageFlags
		addr     string
		interval time.Duration
		top      int
	)
	cmd := &cobra.Command{
		Use:   "serve [binary]",
		Short: "Run a program in a loop and stream block cache snapshots over a websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, code, err := img.image(args)
			if err != nil {
				return err
			}
			var m *machine
			restart := func(int) {
				if m.exited() {
					m.ctx.PC, m.ctx.PR = org, exitPC
				}
			}
			m, err = newMachine(g.cfg, org, code, driver.WithCycleCallback(restart))
			if err != nil {
				return err
			}
			defer m.Close()

			srv := &http.Server{Addr: addr, Handler: cacheMux(m.Cache(), interval, top)}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error(log.Driver, "http server", "err", err)
				}
			}()
			log.Info(log.Driver, "serving block cache", "addr", addr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err = m.Run(ctx, 0)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
			if errors.Is(err, sh4errors.ErrDStopped) {
				return nil
			}
			return err
		},
	}
	img.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8090", "listen address")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "snapshot period")
	cmd.Flags().IntVar(&top, "top", 32, "blocks per snapshot")
	return cmd
}

// cacheMux serves /ws snapshots and the /blocks tree of cache.
func cacheMux(cache *blockcache.Cache, interval time.Duration, top int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(cache, interval, top, w, r)
	})
	mux.HandleFunc("/blocks", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, cache.Tree().String())
	})
	return mux
}

// serveWs pushes a snapshot every interval until the client goes away.
// Snapshots are taken under the cache read lock while the guest keeps running.
func serveWs(cache *blockcache.Cache, interval time.Duration, top int, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(log.Driver, "websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Trace(log.Driver, "websocket close", "err", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case now := <-ticker.C:
			msg, err := json.Marshal(cacheFrame{Time: now, Stats: cache.Stats(), Blocks: cache.Top(top)})
			if err != nil {
				log.Error(log.Driver, "marshal snapshot", "err", err)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
