package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"obelisk/internal/config"
	"obelisk/internal/format"
	"obelisk/internal/logging"
	"obelisk/internal/wiring"
)

var (
	flagIncident string
	flagOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one incident payload and print ranked hypotheses",
	Long: `Reads an incident payload (JSON) from a file or stdin, runs the full
pipeline, and prints the ranked hypotheses. Output formats: table (default),
markdown, json.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&flagIncident, "incident", "i", "", "Path to incident JSON ('-' for stdin) (required)")
	analyzeCmd.Flags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, markdown, json")
	_ = analyzeCmd.MarkFlagRequired("incident")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	incident, err := wiring.LoadIncident(flagIncident)
	if err != nil {
		return err
	}

	rt, err := wiring.BuildRuntime(cfg, logging.New("pipeline"))
	if err != nil {
		return err
	}

	result := rt.Execute(cmd.Context(), incident, nil)

	switch flagOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "markdown":
		fmt.Print(format.Report(format.Markdown, result))
	case "table":
		fmt.Print(format.Report(format.ASCII, result))
	default:
		return fmt.Errorf("unknown output format %q (want table, markdown, or json)", flagOutput)
	}
	return nil
}
