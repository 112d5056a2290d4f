package agents

import (
	"context"

	"obelisk/pkg/pipeline"
)

// CommitAgent reasons over recent change signals. Code changes are the
// most common root cause, so direct evidence of a risky diff scores
// high.
type CommitAgent struct{}

func (CommitAgent) Name() string { return "commit_agent" }

func (a CommitAgent) Run(_ context.Context, snap pipeline.Snapshot) (pipeline.AgentResult, error) {
	result := pipeline.AgentResult{AgentName: a.Name()}

	for _, s := range signalsOfType(snap, "commit_change") {
		switch {
		case mentions(s, "pool reduced"):
			result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
				Label:             LabelPoolUndersized,
				Description:       "A recent commit shrank the database connection pool; the new size cannot carry production load.",
				Confidence:        0.85,
				Severity:          pipeline.SeverityHigh,
				SupportingSignals: []string{s.ID},
				ContributingAgent: a.Name(),
			})
		case mentions(s, "pool size changed"):
			result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
				Label:             LabelPoolUndersized,
				Description:       "A recent commit changed the database connection pool size; worth verifying against load.",
				Confidence:        0.40,
				Severity:          pipeline.SeverityMedium,
				SupportingSignals: []string{s.ID},
				ContributingAgent: a.Name(),
			})
		case mentions(s, "cache decorator removed"):
			result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
				Label:             LabelCacheRemoval,
				Description:       "A recent commit removed caching from a hot path, so every request now hits the backing store.",
				Confidence:        0.75,
				Severity:          maxSeverity([]pipeline.Signal{s}),
				SupportingSignals: []string{s.ID},
				ContributingAgent: a.Name(),
			})
		case mentions(s, "unindexed query"):
			result.Hypotheses = append(result.Hypotheses, pipeline.Hypothesis{
				Label:             LabelUnindexedQuery,
				Description:       "A recent commit added a query that likely lacks index coverage, inflating per-request database time.",
				Confidence:        0.60,
				Severity:          maxSeverity([]pipeline.Signal{s}),
				SupportingSignals: []string{s.ID},
				ContributingAgent: a.Name(),
			})
		}
	}

	return result, nil
}
