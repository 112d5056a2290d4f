package agents

import (
	"strings"

	"obelisk/pkg/pipeline"
)

// Hypothesis labels shared across agents. Agents that reach the same
// conclusion from different evidence must use the same label so the
// aggregator can merge their hypotheses and apply the agreement bonus.
const (
	LabelPoolExhaustion  = "DB Connection Pool Exhaustion"
	LabelPoolUndersized  = "Connection Pool Undersized"
	LabelCacheRemoval    = "Cache Removal Impact"
	LabelErrorRateSpike  = "Error Rate Spike"
	LabelUnindexedQuery  = "Unindexed Query Regression"
	LabelFlagRegression  = "Feature Flag Regression"
	LabelLatencyIncrease = "Latency Degradation"
)

// All returns one instance of every built-in agent, in the order they
// should be registered.
func All() []pipeline.Agent {
	return []pipeline.Agent{
		LogAgent{},
		MetricsAgent{},
		CommitAgent{},
		ConfigAgent{},
	}
}

// signalsOfType filters the snapshot by signal type.
func signalsOfType(snap pipeline.Snapshot, sigType string) []pipeline.Signal {
	var out []pipeline.Signal
	for _, s := range snap.Signals {
		if s.Type == sigType {
			out = append(out, s)
		}
	}
	return out
}

func ids(signals []pipeline.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.ID
	}
	return out
}

// maxSeverity returns the highest severity among the cited signals, with
// medium as the floor for an actionable hypothesis.
func maxSeverity(signals []pipeline.Signal) string {
	severity := pipeline.SeverityMedium
	for _, s := range signals {
		if s.Severity == pipeline.SeverityHigh {
			severity = pipeline.SeverityHigh
		}
	}
	return severity
}

func mentions(s pipeline.Signal, fragment string) bool {
	return strings.Contains(strings.ToLower(s.Description), fragment)
}
