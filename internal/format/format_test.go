package format_test

import (
	"strings"
	"testing"
	"time"

	"obelisk/internal/format"
	"obelisk/pkg/pipeline"
)

func sampleResult() pipeline.ExecutionResult {
	return pipeline.ExecutionResult{
		ExecutionID: "exec-1234",
		RankedHypotheses: []pipeline.Hypothesis{
			{
				Label:              "DB Connection Pool Exhaustion",
				Confidence:         0.90,
				Severity:           pipeline.SeverityHigh,
				ContributingAgent:  "log_agent, metrics_agent",
				ContributingAgents: []string{"log_agent", "metrics_agent"},
				SupportingSignals:  []string{"sig_001", "sig_003"},
			},
			{
				Label:             "Cache Removal Impact",
				Confidence:        0.55,
				Severity:          pipeline.SeverityMedium,
				ContributingAgent: "commit_agent",
				SupportingSignals: []string{"sig_002"},
			},
		},
		SignalsUsed: []pipeline.Signal{
			{ID: "sig_001", Type: "log_anomaly", Severity: pipeline.SeverityHigh, Source: "log_analyzer", Description: "Error rate is 60%"},
		},
		Synthesis: &pipeline.SynthesisResult{
			Summary:    "Most likely root cause: DB Connection Pool Exhaustion.",
			KeyFinding: "DB Connection Pool Exhaustion, grounded in sig_001, sig_003",
		},
	}
}

func TestHypothesesTable_ASCII(t *testing.T) {
	out := format.HypothesesTable(format.ASCII, sampleResult().RankedHypotheses)
	for _, want := range []string{"DB Connection Pool Exhaustion", "0.90", "log_agent, metrics_agent", "sig_001, sig_003"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
}

func TestHypothesesTable_Markdown(t *testing.T) {
	out := format.HypothesesTable(format.Markdown, sampleResult().RankedHypotheses)
	if !strings.Contains(out, "| ") {
		t.Errorf("expected Markdown pipes in:\n%s", out)
	}
	if strings.Contains(out, "───") {
		t.Errorf("unexpected box-drawing characters in Markdown output:\n%s", out)
	}
}

func TestReport_Sections(t *testing.T) {
	out := format.Report(format.ASCII, sampleResult())
	for _, want := range []string{"Execution exec-1234", "Ranked hypotheses:", "Signals:", "Synthesis:", "Key finding:"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Human review recommended") {
		t.Errorf("review warning should be absent:\n%s", out)
	}
}

func TestReport_HumanReviewFlag(t *testing.T) {
	result := sampleResult()
	result.RequiresHumanReview = true
	if !strings.Contains(format.Report(format.ASCII, result), "Human review recommended") {
		t.Error("review warning missing")
	}
}

func TestFmtDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{3 * time.Second, "3s"},
		{95 * time.Second, "1m 35s"},
	}
	for _, tc := range cases {
		if got := format.FmtDuration(tc.in); got != tc.want {
			t.Errorf("FmtDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := format.Truncate("connection pool exhausted", 10); got != "connect..." {
		t.Errorf("got %q", got)
	}
	if got := format.Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}
