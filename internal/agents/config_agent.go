package agents

import (
	"context"

	"obelisk/pkg/pipeline"
)

// ConfigAgent reasons over configuration signals: reduced limits,
// zeroed TTLs, and freshly enabled feature flags.
type ConfigAgent struct{}

func (ConfigAgent) Name() string { return "config_agent" }

func (a ConfigAgent) Run(_ context.Context, snap pipeline.Snapshot) (pipeline.AgentResult, error) {
	result := pipeline.AgentResult{AgentName: a.Name()}

	for _, s := range signalsOfType(snap, "config_change") {
		switch {
		case mentions(s, "connection"):
			confidence := 0.65
			if s.Severity == pipeline.SeverityHigh {
				confidence = 0.80
			}
			result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
				Label:             LabelPoolUndersized,
				Description:       "Connection limit in the active config is too low for production traffic.",
				Confidence:        confidence,
				Severity:          s.Severity,
				SupportingSignals: []string{s.ID},
				ContributingAgent: a.Name(),
			})
		case mentions(s, "ttl"):
			result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
				Label:             LabelCacheRemoval,
				Description:       "Cache TTL in the active config effectively disables caching.",
				Confidence:        0.55,
				Severity:          s.Severity,
				SupportingSignals: []string{s.ID},
				ContributingAgent: a.Name(),
			})
		case mentions(s, "feature flag"):
			result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
				Label:             LabelFlagRegression,
				Description:       "A feature flag was enabled in this deploy window and may gate the regressing code path.",
				Confidence:        0.45,
				Severity:          s.Severity,
				SupportingSignals: []string{s.ID},
				ContributingAgent: a.Name(),
			})
		}
	}

	return result, nil
}
