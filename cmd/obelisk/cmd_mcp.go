package main

import (
	"context"

	"github.com/spf13/cobra"

	"obelisk/internal/config"
	"obelisk/internal/logging"
	mcpserver "obelisk/internal/mcp"
	"obelisk/internal/wiring"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio for editor integration",
	Long: `Starts an MCP server over stdin/stdout exposing analyze_incident and
list_agents tools.

The server monitors for parent process death. When the editor disconnects
or restarts its extension host, the server self-terminates to prevent
zombie processes.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	rt, err := wiring.BuildRuntime(cfg, logging.New("pipeline"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	log := logging.New("mcp")
	mcpserver.WatchParent(ctx, log, cancel)

	log.Info("starting obelisk MCP server over stdio (parent watchdog active)")
	return mcpserver.NewServer(rt, version).Run(ctx)
}
