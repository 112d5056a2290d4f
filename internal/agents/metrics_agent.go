package agents

import (
	"context"

	"obelisk/pkg/pipeline"
)

// MetricsAgent reasons over metric-derived signals: resource saturation,
// latency spikes, and cache degradation.
type MetricsAgent struct{}

func (MetricsAgent) Name() string { return "metrics_agent" }

func (a MetricsAgent) Run(_ context.Context, snap pipeline.Snapshot) (pipeline.AgentResult, error) {
	result := pipeline.AgentResult{AgentName: a.Name()}

	saturation := signalsOfType(snap, "resource_saturation")
	spikes := signalsOfType(snap, "metric_spike")
	degradation := signalsOfType(snap, "metric_degradation")

	if len(saturation) > 0 {
		evidence := saturation
		confidence := 0.85
		if len(spikes) > 0 {
			// Latency climbing while the pool is saturated points at the
			// same bottleneck.
			evidence = append(evidence, spikes...)
			confidence = 0.90
		}
		result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
			Label:             LabelPoolExhaustion,
			Description:       "Database connection pool is saturated; latency growth is consistent with requests waiting on connections.",
			Confidence:        confidence,
			Severity:          maxSeverity(evidence),
			SupportingSignals: ids(evidence),
			ContributingAgent: a.Name(),
		})
	} else if len(spikes) > 0 {
		result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
			Label:             LabelLatencyIncrease,
			Description:       "p99 latency has spiked above baseline without an obvious saturated resource.",
			Confidence:        0.50,
			Severity:          maxSeverity(spikes),
			SupportingSignals: ids(spikes),
			ContributingAgent: a.Name(),
		})
	}

	for _, s := range degradation {
		if !mentions(s, "cache") {
			continue
		}
		result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
			Label:             LabelCacheRemoval,
			Description:       "Cache hit rate collapsed, pushing reads that were previously served from cache onto the database.",
			Confidence:        0.65,
			Severity:          s.Severity,
			SupportingSignals: []string{s.ID},
			ContributingAgent: a.Name(),
		})
		break
	}

	return result, nil
}
