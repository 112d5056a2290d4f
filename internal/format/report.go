package format

import (
	"fmt"
	"strings"

	"obelisk/pkg/pipeline"
)

// Report renders an execution result as a human-readable document:
// ranked hypotheses, the signals they drew on, and the synthesis
// narrative when one exists.
func Report(m Mode, result pipeline.ExecutionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Execution %s\n\n", result.ExecutionID)

	b.WriteString("Ranked hypotheses:\n")
	b.WriteString(HypothesesTable(m, result.RankedHypotheses))
	b.WriteString("\n")

	if len(result.SignalsUsed) > 0 {
		b.WriteString("\nSignals:\n")
		b.WriteString(SignalsTable(m, result.SignalsUsed))
		b.WriteString("\n")
	}

	if result.Synthesis != nil {
		b.WriteString("\nSynthesis:\n")
		b.WriteString(result.Synthesis.Summary)
		b.WriteString("\n")
		fmt.Fprintf(&b, "Key finding: %s\n", result.Synthesis.KeyFinding)
	}

	if result.RequiresHumanReview {
		b.WriteString("\n⚠ Human review recommended: no hypothesis reached the confidence bar.\n")
	}
	return b.String()
}

// HypothesesTable renders the ranked hypothesis list.
func HypothesesTable(m Mode, ranked []pipeline.Hypothesis) string {
	tb := NewTable(m)
	tb.Header("#", "Hypothesis", "Confidence", "Severity", "Agents", "Signals")
	tb.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 2, MaxWidth: 40},
		ColumnConfig{Number: 3, Align: AlignRight},
		ColumnConfig{Number: 6, MaxWidth: 30},
	)
	for i, h := range ranked {
		tb.Row(i+1, h.Label, FmtConfidence(h.Confidence), h.Severity,
			h.ContributingAgent, strings.Join(h.SupportingSignals, ", "))
	}
	return tb.String()
}

// SignalsTable renders the extracted signal inventory.
func SignalsTable(m Mode, signals []pipeline.Signal) string {
	tb := NewTable(m)
	tb.Header("ID", "Type", "Severity", "Source", "Description")
	tb.Columns(ColumnConfig{Number: 5, MaxWidth: 60})
	for _, s := range signals {
		tb.Row(s.ID, s.Type, s.Severity, s.Source, s.Description)
	}
	return tb.String()
}
