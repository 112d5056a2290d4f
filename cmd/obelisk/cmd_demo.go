package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"obelisk/internal/config"
	"obelisk/internal/display"
	"obelisk/internal/format"
	"obelisk/internal/logging"
	"obelisk/internal/wiring"
	"obelisk/pkg/pipeline"
)

var flagDemoPlain bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the bundled DB pool exhaustion incident with live agent output",
	Long: `Runs the pipeline against a bundled incident: a deploy that shrank the
database connection pool and removed caching from a hot path. Agent
lifecycle events stream to the terminal while the run is in flight.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&flagDemoPlain, "plain", false, "Disable ANSI styling in the live view")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	incident, err := wiring.DecodeIncident(strings.NewReader(demoIncidentJSON))
	if err != nil {
		return err
	}

	rt, err := wiring.BuildRuntime(cfg, logging.New("pipeline"))
	if err != nil {
		return err
	}

	plain := flagDemoPlain || !term.IsTerminal(int(os.Stdout.Fd()))
	tracker := display.NewTracker(os.Stdout, plain)
	sink := pipeline.NewChannelSink(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tracker.Consume(sink.Events())
	}()

	result := rt.Execute(cmd.Context(), incident, sink)
	sink.Close()
	wg.Wait()

	fmt.Println()
	fmt.Print(format.Report(format.ASCII, result))
	return nil
}

// demoIncidentJSON mirrors examples/incident-db-pool.json so the demo
// works from any working directory.
const demoIncidentJSON = `{
  "deployment_id": "deploy-v2.3.1-demo",
  "logs": [
    "INFO  GET /api/users 200 45ms",
    "INFO  GET /api/orders 200 61ms",
    "ERROR GET /api/users 500 timeout after 5000ms",
    "ERROR DB connection pool exhausted - waited 5000ms",
    "ERROR DB connection pool exhausted - waited 5000ms",
    "ERROR DB connection pool exhausted - waited 3200ms",
    "ERROR GET /api/orders 500 timeout after 5000ms",
    "ERROR DB connection pool exhausted - waited 4100ms"
  ],
  "metrics": {
    "latency_p99_ms": 4800,
    "latency_baseline_p99_ms": 120,
    "db_connection_pool_used": 5,
    "db_connection_pool_max": 5,
    "cache_hit_rate": 0.11,
    "cache_hit_rate_baseline": 0.92
  },
  "recent_commits": [
    {
      "sha": "a1b2c3d",
      "message": "Remove cache from user profile endpoint",
      "diff_summary": "Removed @cache decorator from get_user_profile()"
    },
    {
      "sha": "e4f5g6h",
      "message": "Reduce DB pool for cost optimization",
      "diff_summary": "Changed MAX_DB_CONNECTIONS from 20 to 5"
    }
  ],
  "config_snapshot": {
    "MAX_DB_CONNECTIONS": 5,
    "CACHE_TTL_SECONDS": 0
  }
}`
