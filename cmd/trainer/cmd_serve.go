package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/broadcast"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/listen"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the call to websocket dashboards",
	Long: `Starts an HTTP server with a websocket endpoint at /ws. Every dashboard gets
a JSON snapshot after each state change and may send actions
(initiate, answer, say, hangup, mute, decoy) that drive one shared call.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.New("trainer")
	cl, closer, err := buildCaller(cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	hub := broadcast.NewHub()
	ctrl := orchestrator.New(cfg.SessionSettings(), orchestrator.Deps{
		Caller:   cl,
		Voice:    buildVoice(cfg, cmd.OutOrStdout()),
		Listener: listen.NewLineListener(),
		Ledger:   ledgerDep(st),
		Observer: hub,
	})
	hub.Attach(ctrl)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newServeMux(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := ctrl.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("serving dashboards", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ctrl.HangUp()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newServeMux(hub *broadcast.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	return mux
}
