// Package synthesize turns a ranked hypothesis list into a short
// human-readable narrative. The built-in synthesizer is template based
// and fully deterministic, so the same ranking always yields the same
// summary text.
package synthesize

import (
	"context"
	"fmt"
	"strings"

	"obelisk/pkg/pipeline"
)

// Template renders the ranked hypotheses into a summary without any
// external calls. It implements pipeline.Synthesizer.
type Template struct{}

func (Template) Synthesize(_ context.Context, signals []pipeline.Signal, ranked []pipeline.Hypothesis) (pipeline.SynthesisResult, error) {
	if len(ranked) == 0 {
		return pipeline.SynthesisResult{
			Summary:             "No validated hypotheses were produced from the current signal set. A human should review logs, metrics, and recent changes directly.",
			KeyFinding:          "Insufficient evidence to identify a likely root cause.",
			ConfidenceInRanking: 0,
		}, nil
	}

	top := ranked[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Most likely root cause: %s (confidence %.2f", top.Label, top.Confidence)
	if n := len(top.ContributingAgents); n > 1 {
		fmt.Fprintf(&b, ", corroborated by %d agents", n)
	}
	b.WriteString("). ")
	b.WriteString(top.Description)

	if len(ranked) > 1 {
		second := ranked[1]
		fmt.Fprintf(&b, " Alternative explanation: %s (confidence %.2f).", second.Label, second.Confidence)
	}
	fmt.Fprintf(&b, " Analysis drew on %d extracted signal(s).", len(signals))

	keyFinding := top.Label
	if len(top.SupportingSignals) > 0 {
		keyFinding = fmt.Sprintf("%s, grounded in %s", top.Label, strings.Join(top.SupportingSignals, ", "))
	}

	return pipeline.SynthesisResult{
		Summary:             b.String(),
		KeyFinding:          keyFinding,
		ConfidenceInRanking: rankingConfidence(ranked),
	}, nil
}

// rankingConfidence scores how much to trust the ordering itself. A wide
// gap between the top two hypotheses means the ranking is decisive; a
// narrow gap means the order could easily flip.
func rankingConfidence(ranked []pipeline.Hypothesis) float64 {
	if len(ranked) == 1 {
		return ranked[0].Confidence
	}
	gap := ranked[0].Confidence - ranked[1].Confidence
	score := ranked[0].Confidence * (0.5 + gap)
	if score > 1 {
		score = 1
	}
	return float64(int(score*10000+0.5)) / 10000
}
