package agents

import (
	"context"

	"obelisk/pkg/pipeline"
)

// LogAgent reasons over log anomaly signals. An elevated error rate on
// its own yields a generic spike hypothesis; when the dominant error
// names a resource (connection pool, cache) the agent upgrades to a
// specific root cause.
type LogAgent struct{}

func (LogAgent) Name() string { return "log_agent" }

func (a LogAgent) Run(_ context.Context, snap pipeline.Snapshot) (pipeline.AgentResult, error) {
	result := pipeline.AgentResult{AgentName: a.Name()}

	anomalies := signalsOfType(snap, "log_anomaly")
	if len(anomalies) == 0 {
		return result, nil
	}

	var poolEvidence, cacheEvidence, rateEvidence []pipeline.Signal
	for _, s := range anomalies {
		switch {
		case mentions(s, "pool"):
			poolEvidence = append(poolEvidence, s)
		case mentions(s, "cache"):
			cacheEvidence = append(cacheEvidence, s)
		case mentions(s, "error rate"):
			rateEvidence = append(rateEvidence, s)
		}
	}

	if len(poolEvidence) > 0 {
		// Pool errors dominating the log stream is strong direct evidence.
		confidence := 0.70
		if len(poolEvidence) > 1 {
			confidence = 0.80
		}
		result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
			Label:             LabelPoolExhaustion,
			Description:       "Log stream is dominated by connection pool errors; requests are queueing for database connections.",
			Confidence:        confidence,
			Severity:          maxSeverity(poolEvidence),
			SupportingSignals: ids(poolEvidence),
			ContributingAgent: a.Name(),
		})
	}

	if len(cacheEvidence) > 0 {
		result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
			Label:             LabelCacheRemoval,
			Description:       "Cache-related errors appeared in the log stream after the deploy.",
			Confidence:        0.55,
			Severity:          maxSeverity(cacheEvidence),
			SupportingSignals: ids(cacheEvidence),
			ContributingAgent: a.Name(),
		})
	}

	if len(rateEvidence) > 0 && len(poolEvidence) == 0 && len(cacheEvidence) == 0 {
		// Only fall back to the generic spike when nothing more specific
		// explains the errors.
		result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
			Label:             LabelErrorRateSpike,
			Description:       "Error rate is elevated above baseline with no single dominant cause in the logs.",
			Confidence:        0.45,
			Severity:          maxSeverity(rateEvidence),
			SupportingSignals: ids(rateEvidence),
			ContributingAgent: a.Name(),
		})
	}

	return result, nil
}
