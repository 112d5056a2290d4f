// Package wiring assembles the full analysis stack: extractor, built-in
// agents, synthesizer, and runtime. Both the CLI and the server build
// their pipelines here so the two entry points can never drift apart.
package wiring

import (
	"log/slog"

	"obelisk/internal/agents"
	"obelisk/internal/config"
	"obelisk/internal/extract"
	"obelisk/internal/synthesize"
	"obelisk/pkg/pipeline"
)

// BuildRuntime constructs a runtime with the built-in agents registered
// in their canonical order.
func BuildRuntime(cfg config.Config, log *slog.Logger) (*pipeline.Runtime, error) {
	extractor := extract.New(log,
		extract.LogAnalyzer{},
		extract.MetricsAnalyzer{},
		extract.CommitAnalyzer{},
		extract.ConfigAnalyzer{Baseline: cfg.ConfigBaseline},
	)

	rt := pipeline.NewRuntime(pipeline.Config{
		Timeout:     cfg.AgentTimeout.Std(),
		Extractor:   extractor,
		Synthesizer: synthesize.Template{},
		Logger:      log,
	})

	for _, ag := range agents.All() {
		if err := rt.Register(ag); err != nil {
			return nil, err
		}
	}
	return rt, nil
}
