package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"obelisk/internal/agents"
	"obelisk/internal/format"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the built-in investigation agents",
	RunE: func(*cobra.Command, []string) error {
		tb := format.NewTable(format.ASCII)
		tb.Header("#", "Agent", "Focus")
		tb.Columns(format.ColumnConfig{Number: 1, Align: format.AlignRight})
		for i, ag := range agents.All() {
			tb.Row(i+1, ag.Name(), agentFocus[ag.Name()])
		}
		fmt.Println(tb.String())
		return nil
	},
}

var agentFocus = map[string]string{
	"log_agent":     "error rates and dominant error patterns in logs",
	"metrics_agent": "latency, saturation, and cache metrics",
	"commit_agent":  "risky changes in recent commits",
	"config_agent":  "limits and feature flags in the active config",
}
