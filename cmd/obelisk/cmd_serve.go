package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"obelisk/internal/config"
	"obelisk/internal/logging"
	"obelisk/internal/metrics"
	"obelisk/internal/server"
	"obelisk/internal/store"
	"obelisk/internal/wiring"
)

var (
	flagAddr string
	flagDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis pipeline over HTTP",
	Long: `Starts an HTTP server exposing POST /api/analyze for incident payloads,
GET /api/health for probes, and GET /metrics for Prometheus scraping.
Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagDB, "db", "", "SQLite path for execution history (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagDB != "" {
		cfg.Store.Path = flagDB
	}

	log := logging.New("server")
	rt, err := wiring.BuildRuntime(cfg, logging.New("pipeline"))
	if err != nil {
		return err
	}

	var history store.Store
	if cfg.Store.Path != "" {
		history, err = store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer history.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(rt, history, metrics.NewCollector("obelisk"), log)
	return srv.Run(ctx, cfg.Server.Addr)
}
